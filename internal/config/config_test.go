package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

// Полный корректный YAML (не зависит от дефолтов).
const sampleYAML = `
env: "prod"
api:
  base_url: "https://api.alphachap.ir/api/v1"
  timeout: "10s"
  renew_leeway: "1m"
session:
  file: "/var/lib/alphachap/session.json"
`

// Минимально валидный YAML (только обязательные поля).
const minimalYAML = `
api:
  base_url: "http://localhost:8080"
`

// Некорректный YAML — для проверки ошибок парсинга.
const brokenYAML = `
api:
  base_url: "http://localhost:8080
`

// TestLoad_WithExplicitPath_OK — явный путь имеет высший приоритет.
func TestLoad_WithExplicitPath_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://api.alphachap.ir/api/v1", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, time.Minute, cfg.API.RenewLeeway)
	require.Equal(t, "/var/lib/alphachap/session.json", cfg.Session.File)
	require.Empty(t, cfg.Session.RedisURL)
}

// TestLoad_Minimal_Defaults — дефолты применяются к незаданным полям.
func TestLoad_Minimal_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Zero(t, cfg.API.RenewLeeway)
	require.Equal(t, "session.json", cfg.Session.File)
}

// TestLoad_WithExplicitPath_FileDoesNotExist — явный путь на несуществующий файл.
func TestLoad_WithExplicitPath_FileDoesNotExist(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Load(missing)
	require.Error(t, err)
	require.Contains(t, err.Error(), "config file does not exist")
}

// TestLoad_WithExplicitPath_BrokenYAML — битый YAML по явному пути.
func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

// TestLoad_WithCONFIG_PATH_OK — путь берётся из CONFIG_PATH.
func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

// TestLoad_Validate — ошибки валидации значений.
func TestLoad_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing base url scheme",
			yaml: "api:\n  base_url: \"alphachap.ir\"\n",
			want: "api.base_url must be an http(s) URL",
		},
		{
			name: "non-positive timeout",
			yaml: "api:\n  base_url: \"https://api.alphachap.ir\"\n  timeout: \"0s\"\n",
			want: "api.timeout must be > 0",
		},
		{
			name: "negative renew leeway",
			yaml: "api:\n  base_url: \"https://api.alphachap.ir\"\n  renew_leeway: \"-1s\"\n",
			want: "api.renew_leeway must be >= 0",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			cfgPath := writeFile(t, dir, "config.yaml", tc.yaml)

			_, err := Load(cfgPath)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}
