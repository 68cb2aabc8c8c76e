package flow

import (
	"context"
	"fmt"
)

// LoginState — состояния машины входа.
type LoginState int

const (
	// LoginIdle — форма открыта, запроса нет. Сюда же машина
	// возвращается после неудачи: лимита повторов нет.
	LoginIdle LoginState = iota
	// LoginSubmitting — запрос входа в полёте.
	LoginSubmitting
	// LoginAuthenticated — терминальное состояние.
	LoginAuthenticated
)

// Login — машина входа: Idle -> Submitting -> {Authenticated | Idle+err}.
type Login struct {
	api     AuthAPI
	session SessionSink

	state LoginState
	err   error
}

// NewLogin создаёт машину входа.
func NewLogin(api AuthAPI, sink SessionSink) *Login {
	return &Login{api: api, session: sink}
}

// State — текущее состояние.
func (f *Login) State() LoginState { return f.state }

// Err — ошибка последней неудачной попытки (для отображения формой).
func (f *Login) Err() error { return f.err }

// Submit выполняет попытку входа. Повторный Submit, пока запрос
// в полёте, отклоняется гейтом.
func (f *Login) Submit(ctx context.Context, rawPhone, password string) error {
	const op = "flow.Login.Submit"

	switch f.state {
	case LoginIdle:
	case LoginSubmitting:
		return fmt.Errorf("%s: %w", op, ErrRequestInFlight)
	default:
		return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}

	f.state = LoginSubmitting
	f.err = nil

	resp, err := f.api.Login(ctx, rawPhone, password)
	if err != nil {
		f.state = LoginIdle
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.session.Login(ctx, resp.User, resp.TokenPair()); err != nil {
		f.state = LoginIdle
		f.err = err
		return fmt.Errorf("%s: %w", op, err)
	}

	f.state = LoginAuthenticated
	return nil
}
