package flow

import (
	"context"
	"fmt"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/otp"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/phone"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/validate"
)

// RecoveryState — состояния машины восстановления пароля.
type RecoveryState int

const (
	// RecoveryEnteringPhone — ввод номера.
	RecoveryEnteringPhone RecoveryState = iota
	// RecoveryRequestingOTP — запрос кода в полёте.
	RecoveryRequestingOTP
	// RecoveryOTPOpen — челлендж открыт; код и новый пароль
	// вводятся параллельно.
	RecoveryOTPOpen
	// RecoveryVerifying — проверка в полёте.
	RecoveryVerifying
	// RecoveryAuthenticated — терминальное состояние.
	RecoveryAuthenticated
)

// Recovery — машина восстановления:
//
//	EnteringPhone -> RequestingOTP -> OTPOpen (+ ввод нового пароля) ->
//	Verifying -> {Authenticated | OTPOpen с очищенными цифрами}.
//
// В отличие от регистрации, автозапуска проверки по четвёртой цифре
// нет: проверка разрешается только при полном коде и валидной паре
// пароль/подтверждение.
type Recovery struct {
	api     AuthAPI
	session SessionSink

	state     RecoveryState
	phone     string
	challenge *otp.Challenge

	newPassword string
	confirm     string

	err error
}

// NewRecovery создаёт машину восстановления.
func NewRecovery(api AuthAPI, sink SessionSink) *Recovery {
	return &Recovery{api: api, session: sink}
}

// State — текущее состояние.
func (f *Recovery) State() RecoveryState { return f.state }

// Err — ошибка последнего неудачного шага.
func (f *Recovery) Err() error { return f.err }

// Challenge — открытый челлендж или nil.
func (f *Recovery) Challenge() *otp.Challenge { return f.challenge }

// SubmitPhone — шаг номера: запрос кода восстановления.
func (f *Recovery) SubmitPhone(ctx context.Context, rawPhone string) error {
	const op = "flow.Recovery.SubmitPhone"

	switch f.state {
	case RecoveryEnteringPhone:
	case RecoveryRequestingOTP:
		return fmt.Errorf("%s: %w", op, ErrRequestInFlight)
	default:
		return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}

	f.state = RecoveryRequestingOTP
	f.err = nil

	_, err := f.api.RecoverySendOTP(ctx, rawPhone)

	if f.state != RecoveryRequestingOTP {
		// Возврат к вводу номера во время запроса: поздний ответ
		// не открывает челлендж заново.
		return fmt.Errorf("%s: %w", op, ErrStaleChallenge)
	}

	if err != nil {
		f.state = RecoveryEnteringPhone
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	f.phone = phone.Local(rawPhone)
	f.challenge = otp.New(f.phone, otp.PurposeRecovery)
	f.state = RecoveryOTPOpen

	return nil
}

// SetNewPassword сохраняет пару пароль/подтверждение. Поля собираются
// параллельно с вводом кода и валидируются в CanVerify.
func (f *Recovery) SetNewPassword(password, confirm string) {
	f.newPassword = password
	f.confirm = confirm
}

// EnterDigit вводит цифру кода. Автозапуска проверки нет.
func (f *Recovery) EnterDigit(r rune) {
	if f.state == RecoveryOTPOpen {
		f.challenge.EnterDigit(r)
	}
}

// Paste вставляет 4-значный блок.
func (f *Recovery) Paste(block string) {
	if f.state == RecoveryOTPOpen {
		f.challenge.Paste(block)
	}
}

// Backspace — редактирование кода.
func (f *Recovery) Backspace() {
	if f.state == RecoveryOTPOpen {
		f.challenge.Backspace()
	}
}

// Tick — один секундный тик кулдауна открытого челленджа.
func (f *Recovery) Tick() {
	if f.challenge != nil {
		f.challenge.Tick()
	}
}

// CanVerify — проверка разрешена: код полон, пара пароль/подтверждение
// валидна и совпадает, запрос не в полёте.
func (f *Recovery) CanVerify() bool {
	if f.state != RecoveryOTPOpen || f.challenge.Pending() {
		return false
	}

	if _, complete := f.challenge.Code(); !complete {
		return false
	}

	return validate.PasswordConfirmation(f.newPassword, f.confirm) == nil
}

// Resend повторно запрашивает код (тот же payload — только номер)
// и перевзводит кулдаун.
func (f *Recovery) Resend(ctx context.Context) error {
	const op = "flow.Recovery.Resend"

	if f.state != RecoveryOTPOpen {
		return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}
	if f.challenge.Remaining() > 0 {
		return fmt.Errorf("%s: %w", op, ErrCooldownActive)
	}
	if !f.challenge.BeginRequest() {
		return fmt.Errorf("%s: %w", op, ErrRequestInFlight)
	}

	epoch := f.challenge.Epoch
	_, err := f.api.RecoverySendOTP(ctx, f.phone)

	if !f.challenge.Matches(epoch) {
		return fmt.Errorf("%s: %w", op, ErrStaleChallenge)
	}
	f.challenge.EndRequest()

	if err != nil {
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	f.challenge.Rearm()
	return nil
}

// Verify отправляет код вместе с новым паролем. Неудача очищает цифры
// (кулдаун сохраняется) и оставляет машину на шаге ввода пароля.
func (f *Recovery) Verify(ctx context.Context) error {
	const op = "flow.Recovery.Verify"

	if f.state != RecoveryOTPOpen {
		return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}
	if !f.CanVerify() {
		if f.challenge.Pending() {
			return fmt.Errorf("%s: %w", op, ErrRequestInFlight)
		}
		return fmt.Errorf("%s: %w", op, ErrVerifyNotReady)
	}

	code, _ := f.challenge.Code()
	f.challenge.BeginRequest()
	f.state = RecoveryVerifying
	f.err = nil
	epoch := f.challenge.Epoch

	resp, err := f.api.RecoveryVerifyOTP(ctx, f.phone, code, f.newPassword)

	if !f.challenge.Matches(epoch) {
		return fmt.Errorf("%s: %w", op, ErrStaleChallenge)
	}
	f.challenge.EndRequest()

	if err != nil {
		f.challenge.ClearDigits()
		f.state = RecoveryOTPOpen
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.session.Login(ctx, resp.User, resp.TokenPair()); err != nil {
		f.challenge.ClearDigits()
		f.state = RecoveryOTPOpen
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	f.challenge = nil
	f.newPassword = ""
	f.confirm = ""
	f.state = RecoveryAuthenticated

	return nil
}

// Back возвращает машину к вводу номера: открытый челлендж и набранный
// пароль уничтожаются, поздние ответы отбрасываются по эпохе.
func (f *Recovery) Back() {
	if f.state == RecoveryAuthenticated {
		return
	}

	f.challenge = nil
	f.newPassword = ""
	f.confirm = ""
	f.err = nil
	f.state = RecoveryEnteringPhone
}
