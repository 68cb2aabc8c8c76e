package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/client"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/config"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/flow"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/otp"
	logctx "github.com/MohammadAminFeliAkbari/alphachap-go/internal/pkg/log"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/session"
	sessionfile "github.com/MohammadAminFeliAkbari/alphachap-go/internal/session/file"
	sessionredis "github.com/MohammadAminFeliAkbari/alphachap-go/internal/session/redis"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const usage = `usage: alphachap [--config path] <command> [args]

commands:
  login <phone>    вход по номеру и паролю
  signup <phone>   регистрация с подтверждением по OTP
  recover <phone>  сброс пароля с подтверждением по OTP
  me               профиль текущего пользователя
  logout           выход и отзыв refresh-токена
`

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()
	ctx := logctx.Into(rootCtx, log)

	storage, err := buildStorage(ctx, cfg)
	if err != nil {
		log.Error("session_storage_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	store, err := session.New(ctx, storage)
	if err != nil {
		log.Error("session_restore_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	c := client.New(cfg.API.BaseURL, store,
		client.WithHTTPClient(httpClient(cfg)),
		client.WithProactiveRenewal(cfg.API.RenewLeeway),
		client.WithForcedLogoutHook(func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		}),
	)

	if err := run(ctx, c, args); err != nil {
		log.Error("command_failed", slog.String("command", args[0]), slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, args []string) error {
	switch args[0] {
	case "login":
		return runLogin(ctx, c, args[1:])
	case "signup":
		return runSignup(ctx, c, args[1:])
	case "recover":
		return runRecover(ctx, c, args[1:])
	case "me":
		return runMe(ctx, c)
	case "logout":
		return runLogout(ctx, c)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func runLogin(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 1 {
		return errors.New("login: expected <phone>")
	}

	password, err := prompt("password: ")
	if err != nil {
		return err
	}

	f := flow.NewLogin(c, c.Session())
	if err := f.Submit(ctx, args[0], password); err != nil {
		return err
	}

	fmt.Printf("logged in as %s\n", c.Session().User().Name)
	return nil
}

func runSignup(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 1 {
		return errors.New("signup: expected <phone>")
	}

	password, err := prompt("password: ")
	if err != nil {
		return err
	}

	f := flow.NewSignup(c, c.Session())
	if err := f.SubmitCredentials(ctx, args[0], password); err != nil {
		return err
	}

	if err := otpLoop(ctx, f.Challenge(),
		func(code string) error { return f.Paste(ctx, code) },
		func() error { return f.Resend(ctx) },
		f.Tick,
		func() bool { return f.State() == flow.SignupAuthenticated },
	); err != nil {
		return err
	}

	fmt.Printf("signed up as %s\n", c.Session().User().PhoneNumber)
	return nil
}

func runRecover(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 1 {
		return errors.New("recover: expected <phone>")
	}

	f := flow.NewRecovery(c, c.Session())
	if err := f.SubmitPhone(ctx, args[0]); err != nil {
		return err
	}

	password, err := prompt("new password: ")
	if err != nil {
		return err
	}
	confirm, err := prompt("confirm password: ")
	if err != nil {
		return err
	}
	f.SetNewPassword(password, confirm)

	if err := otpLoop(ctx, f.Challenge(),
		func(code string) error {
			f.Paste(code)
			return f.Verify(ctx)
		},
		func() error { return f.Resend(ctx) },
		f.Tick,
		func() bool { return f.State() == flow.RecoveryAuthenticated },
	); err != nil {
		return err
	}

	fmt.Println("password reset, logged in")
	return nil
}

func runMe(ctx context.Context, c *client.Client) error {
	user, err := c.Me(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("id:    %s\nname:  %s\nphone: %s\n", user.ID, user.Name, user.PhoneNumber)
	if user.Email != "" {
		fmt.Printf("email: %s\n", user.Email)
	}
	return nil
}

func runLogout(ctx context.Context, c *client.Client) error {
	detail, err := c.Logout(ctx)
	if err != nil {
		return err
	}

	if detail != "" {
		fmt.Println(detail)
	} else {
		fmt.Println("logged out")
	}
	return nil
}

// otpLoop — интерактивный цикл ввода кода. Машины flow принадлежат
// одной горутине, поэтому тики кулдауна и ввод обрабатываются одним
// select-циклом: stdin читается отдельной горутиной и приходит каналом.
func otpLoop(ctx context.Context, ch *otp.Challenge, submit func(string) error, resend func() error, tick func(), done func() bool) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	fmt.Printf("code sent; enter %d digits, 'r' to resend (wait %ds)\n", otp.CodeLength, ch.Remaining())

	for !done() {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			tick()

		case err := <-readErr:
			if err != nil {
				return err
			}
			return errors.New("stdin closed before code was confirmed")

		case line := <-lines:
			if line == "r" {
				if err := resend(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				continue
			}

			if err := submit(line); err != nil {
				if errors.Is(err, flow.ErrStaleChallenge) {
					return err
				}
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}

	return nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func buildStorage(ctx context.Context, cfg *config.Config) (session.Storage, error) {
	if cfg.Session.RedisURL != "" {
		return sessionredis.New(ctx, cfg.Session.RedisURL, cfg.Session.RedisKey)
	}

	return sessionfile.New(cfg.Session.File), nil
}

func httpClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.API.Timeout}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
