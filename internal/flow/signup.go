package flow

import (
	"context"
	"fmt"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/otp"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/phone"
)

// SignupState — состояния машины регистрации.
type SignupState int

const (
	// SignupEnteringCredentials — ввод номера и пароля.
	SignupEnteringCredentials SignupState = iota
	// SignupRequestingOTP — запрос кода в полёте.
	SignupRequestingOTP
	// SignupOTPOpen — челлендж открыт, идёт ввод кода и отсчёт.
	SignupOTPOpen
	// SignupVerifying — проверка кода в полёте.
	SignupVerifying
	// SignupAuthenticated — терминальное состояние.
	SignupAuthenticated
)

// Signup — машина регистрации:
//
//	EnteringCredentials -> RequestingOTP -> OTPOpen -> Verifying ->
//	{Authenticated | OTPOpen с очищенными цифрами}.
//
// Из OTPOpen пользователь может вернуться к вводу учётных данных —
// челлендж и PendingCredentials при этом уничтожаются, поздние ответы
// отбрасываются по эпохе.
type Signup struct {
	api     AuthAPI
	session SessionSink

	state     SignupState
	pending   *PendingCredentials
	challenge *otp.Challenge
	err       error
}

// NewSignup создаёт машину регистрации.
func NewSignup(api AuthAPI, sink SessionSink) *Signup {
	return &Signup{api: api, session: sink}
}

// State — текущее состояние.
func (f *Signup) State() SignupState { return f.state }

// Err — ошибка последнего неудачного шага.
func (f *Signup) Err() error { return f.err }

// Challenge — открытый челлендж или nil.
func (f *Signup) Challenge() *otp.Challenge { return f.challenge }

// SubmitCredentials — шаг учётных данных: запрос кода на номер.
// Успех открывает челлендж с взведённым кулдауном и сохраняет
// PendingCredentials для шага подтверждения.
func (f *Signup) SubmitCredentials(ctx context.Context, rawPhone, password string) error {
	const op = "flow.Signup.SubmitCredentials"

	switch f.state {
	case SignupEnteringCredentials:
	case SignupRequestingOTP:
		return fmt.Errorf("%s: %w", op, ErrRequestInFlight)
	default:
		return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}

	f.state = SignupRequestingOTP
	f.err = nil

	_, err := f.api.SignupSendOTP(ctx, rawPhone, password)

	if f.state != SignupRequestingOTP {
		// Пользователь бросил flow, пока запрос был в полёте: поздний
		// ответ не открывает челлендж заново.
		return fmt.Errorf("%s: %w", op, ErrStaleChallenge)
	}

	if err != nil {
		f.state = SignupEnteringCredentials
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	local := phone.Local(rawPhone)
	f.pending = &PendingCredentials{Phone: local, Password: password}
	f.challenge = otp.New(local, otp.PurposeSignup)
	f.state = SignupOTPOpen

	return nil
}

// EnterDigit вводит цифру кода; заполнение последнего слота
// автоматически запускает проверку — явного submit на этом шаге нет.
func (f *Signup) EnterDigit(ctx context.Context, r rune) error {
	if f.state != SignupOTPOpen {
		return ErrInvalidTransition
	}

	f.challenge.EnterDigit(r)

	if _, complete := f.challenge.Code(); complete {
		return f.Verify(ctx)
	}

	return nil
}

// Paste вставляет 4-значный блок; полный код также запускает проверку.
func (f *Signup) Paste(ctx context.Context, block string) error {
	if f.state != SignupOTPOpen {
		return ErrInvalidTransition
	}

	f.challenge.Paste(block)

	if _, complete := f.challenge.Code(); complete {
		return f.Verify(ctx)
	}

	return nil
}

// Backspace — редактирование кода.
func (f *Signup) Backspace() {
	if f.state == SignupOTPOpen {
		f.challenge.Backspace()
	}
}

// Tick — один секундный тик кулдауна открытого челленджа.
func (f *Signup) Tick() {
	if f.challenge != nil {
		f.challenge.Tick()
	}
}

// Resend повторно запрашивает код с тем же payload, что и исходный
// запрос, и перевзводит кулдаун. Введённые цифры сохраняются.
func (f *Signup) Resend(ctx context.Context) error {
	const op = "flow.Signup.Resend"

	if f.state != SignupOTPOpen {
		return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}
	if f.challenge.Remaining() > 0 {
		return fmt.Errorf("%s: %w", op, ErrCooldownActive)
	}
	if !f.challenge.BeginRequest() {
		return fmt.Errorf("%s: %w", op, ErrRequestInFlight)
	}

	epoch := f.challenge.Epoch
	_, err := f.api.SignupSendOTP(ctx, f.pending.Phone, f.pending.Password)

	if !f.challenge.Matches(epoch) {
		// Пользователь ушёл с шага, пока запрос был в полёте.
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

// Verify проверяет собранный код. Неудача очищает цифры и возвращает
// фокус на первый слот, сохранив кулдаун; успех — терминальный вход.
func (f *Signup) Verify(ctx context.Context) error {
	const op = "flow.Signup.Verify"

	if f.state != SignupOTPOpen {
		return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}

	code, complete := f.challenge.Code()
	if !complete {
		return fmt.Errorf("%s: %w", op, ErrVerifyNotReady)
	}
	if !f.challenge.BeginRequest() {
		return fmt.Errorf("%s: %w", op, ErrRequestInFlight)
	}

	f.state = SignupVerifying
	f.err = nil
	epoch := f.challenge.Epoch

	resp, err := f.api.SignupVerifyOTP(ctx, f.pending.Phone, code)

	if !f.challenge.Matches(epoch) {
		// Челлендж уничтожен возвратом на предыдущий шаг: поздний
		// ответ не воскрешает брошенный flow.
		return fmt.Errorf("%s: %w", op, ErrStaleChallenge)
	}
	f.challenge.EndRequest()

	if err != nil {
		f.challenge.ClearDigits()
		f.state = SignupOTPOpen
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.session.Login(ctx, resp.User, resp.TokenPair()); err != nil {
		f.challenge.ClearDigits()
		f.state = SignupOTPOpen
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	f.challenge = nil
	f.pending = nil
	f.state = SignupAuthenticated

	return nil
}

// Abandon возвращает машину к вводу учётных данных: челлендж и
// PendingCredentials уничтожаются, их эпоха становится недействительной.
func (f *Signup) Abandon() {
	if f.state == SignupAuthenticated {
		return
	}

	f.challenge = nil
	f.pending = nil
	f.err = nil
	f.state = SignupEnteringCredentials
}
