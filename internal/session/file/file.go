// Package file — файловый бэкенд снапшота сессии: JSON на диске.
// Запись идёт через временный файл с последующим rename, чтобы
// оборванная запись не оставила после себя битый снапшот.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/session"
)

// Storage — снапшот сессии в одном JSON-файле.
type Storage struct {
	path string
}

// New создаёт бэкенд; каталог файла должен существовать.
func New(path string) *Storage {
	return &Storage{path: path}
}

// Load читает снапшот. Отсутствующий или нечитаемый JSON — ErrNotFound:
// повреждённый файл эквивалентен отсутствию сессии.
func (s *Storage) Load(_ context.Context) (*session.Snapshot, error) {
	const op = "session.file.Load"

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, session.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%s: %w", op, session.ErrNotFound)
	}

	return &snap, nil
}

// Save атомарно заменяет файл снапшота (tmp + rename, права 0600 —
// в файле лежат токены).
func (s *Storage) Save(_ context.Context, snap *session.Snapshot) error {
	const op = "session.file.Save"

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Clear удаляет файл; отсутствие файла не считается ошибкой.
func (s *Storage) Clear(_ context.Context) error {
	const op = "session.file.Clear"

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
