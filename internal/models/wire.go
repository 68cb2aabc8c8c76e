// Package models описывает доменные модели клиента и wire-форматы
// HTTP API AlphaChap (/api/v1). Имена json-полей фиксированы контрактом
// сервера и не подлежат изменению на стороне клиента.
package models

// LoginRequest — тело POST /auth/login/.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// SignupSendOTPRequest — тело POST /auth/signup/send-otp/.
// Пароль отправляется на этапе запроса кода: сервер создаёт
// отложенную учётную запись и активирует её после верификации.
type SignupSendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// SignupVerifyOTPRequest — тело POST /auth/signup/verify-otp/.
type SignupVerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
}

// RecoverySendOTPRequest — тело POST /auth/forget-password/send-otp.
type RecoverySendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// RecoveryVerifyOTPRequest — тело POST /auth/forget-password/verify-otp.
// Новый пароль уходит вместе с кодом: успешная верификация одновременно
// сбрасывает пароль и выполняет вход.
type RecoveryVerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// RefreshRequest — тело POST /auth/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// LogoutRequest — тело POST /auth/logout/.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// AuthResponse — ответ всех терминальных auth-операций
// (login, signup verify, recovery verify): пара токенов + пользователь.
type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// TokenPair возвращает пару токенов из ответа.
func (r AuthResponse) TokenPair() TokenPair {
	return TokenPair{AccessToken: r.Access, RefreshToken: r.Refresh}
}

// RefreshResponse — ответ POST /auth/refresh/: новая пара токенов
// без пользователя.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// DetailResponse — ответ операций без выдачи токенов
// (send-otp, logout): человекочитаемое сообщение от сервера.
type DetailResponse struct {
	Detail string `json:"detail"`
}
