// auth.go — типизированные операции auth-контракта AlphaChap (/api/v1).
// Каждая операция валидирует свои поля до сети: непрошедшее поле
// возвращает ErrFieldValidation без единого запроса.
package client

import (
	"context"
	"net/http"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/models"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/phone"
	logctx "github.com/MohammadAminFeliAkbari/alphachap-go/internal/pkg/log"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/validate"
	"github.com/MohammadAminFeliAkbari/alphachap-go/pkg/redact"
)

// Login — POST /auth/login/. Идёт без Authorization: залежавшийся
// access-токен не должен сопровождать вход. 401 здесь означает
// "нет активной учётной записи", а не истёкшую сессию.
func (c *Client) Login(ctx context.Context, rawPhone, password string) (*models.AuthResponse, error) {
	if err := validate.Phone(rawPhone); err != nil {
		return nil, fieldError("phone_number", err)
	}
	if err := validate.Password(password); err != nil {
		return nil, fieldError("password", err)
	}

	local := phone.Local(rawPhone)
	logctx.From(ctx).Debug("login_attempt", "phone", redact.Phone(local))

	var resp models.AuthResponse
	req := models.LoginRequest{PhoneNumber: local, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login/", req, &resp, callLogin); err != nil {
		return nil, err
	}

	return &resp, nil
}

// SignupSendOTP — POST /auth/signup/send-otp/: запрос кода регистрации.
// Пароль уходит вместе с номером; сервер выдаст код на телефон.
func (c *Client) SignupSendOTP(ctx context.Context, rawPhone, password string) (string, error) {
	if err := validate.Phone(rawPhone); err != nil {
		return "", fieldError("phone_number", err)
	}
	if err := validate.Password(password); err != nil {
		return "", fieldError("password", err)
	}

	local := phone.Local(rawPhone)
	logctx.From(ctx).Debug("signup_send_otp", "phone", redact.Phone(local))

	var resp models.DetailResponse
	req := models.SignupSendOTPRequest{PhoneNumber: local, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/signup/send-otp/", req, &resp, callAnonymous); err != nil {
		return "", err
	}

	return resp.Detail, nil
}

// SignupVerifyOTP — POST /auth/signup/verify-otp/: подтверждение кода.
// Успех эквивалентен входу: сервер возвращает пару токенов и пользователя.
func (c *Client) SignupVerifyOTP(ctx context.Context, rawPhone, otp string) (*models.AuthResponse, error) {
	if err := validate.Phone(rawPhone); err != nil {
		return nil, fieldError("phone_number", err)
	}
	if err := validate.OTP(otp); err != nil {
		return nil, fieldError("otp", err)
	}

	var resp models.AuthResponse
	req := models.SignupVerifyOTPRequest{PhoneNumber: phone.Local(rawPhone), OTP: otp}
	if err := c.do(ctx, http.MethodPost, "/auth/signup/verify-otp/", req, &resp, callAnonymous); err != nil {
		return nil, err
	}

	return &resp, nil
}

// RecoverySendOTP — POST /auth/forget-password/send-otp: запрос кода
// восстановления; в теле только номер.
func (c *Client) RecoverySendOTP(ctx context.Context, rawPhone string) (string, error) {
	if err := validate.Phone(rawPhone); err != nil {
		return "", fieldError("phone_number", err)
	}

	local := phone.Local(rawPhone)
	logctx.From(ctx).Debug("recovery_send_otp", "phone", redact.Phone(local))

	var resp models.DetailResponse
	req := models.RecoverySendOTPRequest{PhoneNumber: local}
	if err := c.do(ctx, http.MethodPost, "/auth/forget-password/send-otp", req, &resp, callAnonymous); err != nil {
		return "", err
	}

	return resp.Detail, nil
}

// RecoveryVerifyOTP — POST /auth/forget-password/verify-otp: код и новый
// пароль одним запросом; успех сбрасывает пароль и выполняет вход.
func (c *Client) RecoveryVerifyOTP(ctx context.Context, rawPhone, otp, newPassword string) (*models.AuthResponse, error) {
	if err := validate.Phone(rawPhone); err != nil {
		return nil, fieldError("phone_number", err)
	}
	if err := validate.OTP(otp); err != nil {
		return nil, fieldError("otp", err)
	}
	if err := validate.Password(newPassword); err != nil {
		return nil, fieldError("new_password", err)
	}

	var resp models.AuthResponse
	req := models.RecoveryVerifyOTPRequest{
		PhoneNumber: phone.Local(rawPhone),
		OTP:         otp,
		NewPassword: newPassword,
	}
	if err := c.do(ctx, http.MethodPost, "/auth/forget-password/verify-otp", req, &resp, callAnonymous); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Logout — POST /auth/logout/ с текущим refresh-токеном, затем очистка
// сессии. Локальная очистка выполняется и при сбое сети: пользователь,
// нажавший "выйти", должен выйти в любом случае.
//
// Тело читает refresh из сессии в момент отправки: если 401 по
// истёкшему access-токену вызвал обмен с ротацией, повтор отзывает
// уже новый refresh-токен, а не погасший старый.
func (c *Client) Logout(ctx context.Context) (string, error) {
	var detail string
	var callErr error

	if c.session.RefreshToken() != "" {
		var resp models.DetailResponse
		bodyFn := func() any {
			return models.LogoutRequest{Refresh: c.session.RefreshToken()}
		}
		callErr = c.doFunc(ctx, http.MethodPost, "/auth/logout/", bodyFn, &resp, callAuthed)
		detail = resp.Detail
	}

	if err := c.session.Logout(context.WithoutCancel(ctx)); err != nil {
		logctx.From(ctx).Warn("logout_storage_clear_failed", "err", err.Error())
	}

	return detail, callErr
}

// Me — GET /account/me/: профиль текущего пользователя через
// аутентифицированный пайплайн (со всеми правилами обновления токена).
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/account/me/", nil, &user, callAuthed); err != nil {
		return nil, err
	}

	return &user, nil
}
