// errors.go — таксономия ошибок пайплайна и разбор тел ошибок сервера.
//
// Классы (снаружи различаются через errors.Is по сентинелам,
// детали — через errors.As на *Error):
//   - ErrFieldValidation — клиентская валидация, сеть не задействована;
//   - ErrRequestValidation — 400 с пофилдовыми сообщениями сервера;
//   - ErrInvalidCredentials — 401 на логине: нет активной учётной
//     записи для введённых данных;
//   - ErrUnauthenticated — 401 без работающих учётных данных
//     (нет refresh-токена, восстановление невозможно);
//   - ErrSessionExpired — 401, переживший попытку обновления;
//     всегда завершается принудительным выходом;
//   - ErrUnavailable — сеть/5xx/прочие сбои транспорта.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrFieldValidation    = errors.New("field validation failed")
	ErrRequestValidation  = errors.New("request validation rejected by server")
	ErrInvalidCredentials = errors.New("no active account for the given credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnavailable        = errors.New("transport or server error")
)

// Error — структурированная ошибка пайплайна.
type Error struct {
	// Sentinel — класс ошибки (одна из переменных выше).
	Sentinel error
	// Status — HTTP-статус ответа (0, если до сервера не дошли).
	Status int
	// Detail — общее человекочитаемое сообщение.
	Detail string
	// Fields — пофилдовые сообщения для отображения рядом с полями формы.
	Fields map[string][]string
	// cause — исходная ошибка (сетевая, json и т.п.).
	cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Sentinel.Error())

	if e.Status != 0 {
		fmt.Fprintf(&b, " (http %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, strings.Join(e.Fields[k], "; "))
		}
	}

	return b.String()
}

// Unwrap отдаёт и сентинел, и причину: errors.Is работает по классу,
// errors.Is/As по исходной ошибке тоже.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Sentinel, e.cause}
	}

	return []error{e.Sentinel}
}

// fieldError — ошибка клиентской валидации одного поля.
func fieldError(field string, err error) *Error {
	return &Error{
		Sentinel: ErrFieldValidation,
		Detail:   err.Error(),
		Fields:   map[string][]string{field: {err.Error()}},
		cause:    err,
	}
}

// transportError — сбой до получения валидного ответа сервера.
func transportError(err error) *Error {
	return &Error{Sentinel: ErrUnavailable, cause: err}
}

// parseBadRequest разбирает тело 400-ответа.
//
// Сервер отдаёт ошибки валидации в трёх формах:
//   - {"detail": [...]} либо {"detail": "..."} — общие сообщения;
//   - {"phone_number": [...], ...} — пофилдовые ключи;
//   - ["..."] — голый массив сообщений;
//
// ключ "non_field_errors" трактуется как общие сообщения.
func parseBadRequest(body []byte) *Error {
	out := &Error{Sentinel: ErrRequestValidation, Status: 400}

	// Голый массив сообщений.
	var list []string
	if err := json.Unmarshal(body, &list); err == nil {
		out.Detail = strings.Join(list, "; ")
		return out
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		out.Detail = strings.TrimSpace(string(body))
		return out
	}

	var general []string
	fields := map[string][]string{}

	for key, raw := range obj {
		msgs := rawMessages(raw)
		if len(msgs) == 0 {
			continue
		}

		switch key {
		case "detail", "non_field_errors":
			general = append(general, msgs...)
		default:
			fields[key] = msgs
		}
	}

	out.Detail = strings.Join(general, "; ")
	if len(fields) > 0 {
		out.Fields = fields
	}

	return out
}

// rawMessages достаёт строку или массив строк из произвольного
// json-значения; нестроковые значения отбрасываются.
func rawMessages(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	return nil
}
