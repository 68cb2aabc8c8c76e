// Package phone нормализует телефонные номера, введённые пользователем,
// к двум каноническим формам иранской мобильной нумерации:
//
//   - локальная форма — 11 цифр с ведущим нулём ("09123456789");
//     используется для отображения и хранения;
//   - payload-форма — 10 цифр без префикса ("9123456789");
//     используется при отправке на сервер.
//
// Перед разбором персидские и арабские цифровые глифы приводятся
// к ASCII, все прочие символы отбрасываются.
package phone

import "strings"

// ASCIIDigits транслитерирует персидские (U+06F0..U+06F9) и
// арабско-индийские (U+0660..U+0669) цифры в ASCII. Остальные руны
// возвращаются без изменений.
func ASCIIDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r >= '۰' && r <= '۹':
			b.WriteRune('0' + (r - '۰'))
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// digitsOnly оставляет только ASCII-цифры.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Local приводит свободный ввод к локальной форме ("0" + 10 цифр).
//
// Правила (после транслитерации и отбрасывания нецифровых символов):
//   - начинается с "9", длина <= 10 — добавляем ведущий "0";
//   - начинается с "09", длина <= 11 — строка как есть;
//   - начинается с "98", длина <= 12 — "0" + цифры после кода страны.
//
// Не подошедший ни под одно правило ввод возвращается как есть:
// его отбракует валидация на следующем шаге.
func Local(raw string) string {
	digits := digitsOnly(ASCIIDigits(raw))

	// Порядок ветвей значим: голая "9" проверяется раньше "98",
	// иначе 10-значный ввод "98xxxxxxxx" трактовался бы как код страны.
	switch {
	case strings.HasPrefix(digits, "9") && len(digits) <= 10:
		return "0" + digits
	case strings.HasPrefix(digits, "09") && len(digits) <= 11:
		return digits
	case strings.HasPrefix(digits, "98") && len(digits) <= 12:
		return "0" + digits[2:]
	default:
		return raw
	}
}

// Payload приводит номер к 10-значной форме для тела запроса:
// срезает одиночный ведущий "0" либо префикс "+98"/"98".
func Payload(raw string) string {
	s := ASCIIDigits(strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(s, "+98"):
		return s[3:]
	case strings.HasPrefix(s, "98") && len(s) == 12:
		return s[2:]
	case strings.HasPrefix(s, "0"):
		return s[1:]
	default:
		return s
	}
}

// ValidPayload сообщает, является ли строка корректной payload-формой:
// ровно 10 ASCII-цифр с ведущей девяткой.
func ValidPayload(s string) bool {
	if len(s) != 10 || s[0] != '9' {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// Valid проверяет произвольный ввод: нормализует и применяет
// предикат ValidPayload.
func Valid(raw string) bool {
	return ValidPayload(Payload(Local(raw)))
}
