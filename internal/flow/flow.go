// Package flow — контроллеры трёх auth-flow: вход, регистрация,
// восстановление пароля.
//
// Каждый flow — явная машина состояний: состояние задаётся тегом,
// переходы строго последовательны (verify недостижим, пока не
// завершился запрос кода), сетевые вызовы уходят через порт AuthAPI
// и не перемешаны с мутациями состояния. Терминальное состояние всех
// трёх машин одно — Authenticated, то есть запись в session.Store.
//
// Контроллеры не потокобезопасны: экземпляр принадлежит одному
// событийному циклу. От двойных кликов по submit/resend защищает
// гейт запроса в полёте (otp.Challenge.BeginRequest и состояния
// Requesting*/Verifying/Submitting).
package flow

//go:generate mockgen -source=flow.go -destination=mocks/mock_auth_api.go -package=mocks

import (
	"context"
	"errors"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/models"
)

var (
	// ErrInvalidTransition — действие не разрешено в текущем состоянии.
	ErrInvalidTransition = errors.New("action is not allowed in the current flow state")

	// ErrRequestInFlight — предыдущий сетевой запрос ещё не завершён.
	ErrRequestInFlight = errors.New("request already in flight")

	// ErrCooldownActive — resend до истечения кулдауна.
	ErrCooldownActive = errors.New("resend cooldown is still active")

	// ErrStaleChallenge — ответ сети пришёл для челленджа, который
	// пользователь уже покинул; результат отброшен, состояние
	// не изменилось.
	ErrStaleChallenge = errors.New("stale challenge response discarded")

	// ErrVerifyNotReady — verify при неполном коде или невалидной
	// паре пароль/подтверждение.
	ErrVerifyNotReady = errors.New("verification prerequisites are not met")
)

// AuthAPI — порт flow-контроллеров к пайплайну запросов.
// Реализуется клиентом API; в тестах подменяется моком.
type AuthAPI interface {
	Login(ctx context.Context, rawPhone, password string) (*models.AuthResponse, error)
	SignupSendOTP(ctx context.Context, rawPhone, password string) (string, error)
	SignupVerifyOTP(ctx context.Context, rawPhone, otp string) (*models.AuthResponse, error)
	RecoverySendOTP(ctx context.Context, rawPhone string) (string, error)
	RecoveryVerifyOTP(ctx context.Context, rawPhone, otp, newPassword string) (*models.AuthResponse, error)
}

// SessionSink — терминальная запись успешной аутентификации.
// Реализуется session.Store.
type SessionSink interface {
	Login(ctx context.Context, user models.User, tokens models.TokenPair) error
}

// PendingCredentials — транзитный носитель учётных данных между шагом
// ввода и шагом подтверждения кода при регистрации. Живёт ровно одну
// попытку регистрации и никогда не персистится.
type PendingCredentials struct {
	Phone    string
	Password string
}
