// Package log — прокидывание *slog.Logger через context.Context.
//
// Пайплайн и flow-машины не держат логгер в полях: точка входа кладёт
// корневой логгер в контекст один раз, дальше каждый вызов достаёт его
// через From. Контекст без логгера — не ошибка: From отдаёт
// slog.Default().
package log

import (
	"context"
	"log/slog"
)

// ctxKey — приватный тип ключа, исключает коллизии с чужими
// значениями контекста.
type ctxKey struct{}

// Into возвращает контекст с положенным в него логгером.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста; nil и отсутствие значения
// равнозначны — возвращается slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}
