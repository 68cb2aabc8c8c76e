// Package redact маскирует чувствительные значения перед логированием.
// Токены и пароли не логируются никогда; телефон показывается частично,
// чтобы записи можно было сопоставить с обращением пользователя.
package redact

// Phone маскирует середину номера: "09123456789" -> "0912***6789".
// Слишком короткие строки маскируются целиком. Работает по рунам,
// чтобы не резать многобайтовые цифровые глифы до нормализации.
func Phone(s string) string {
	r := []rune(s)
	if len(r) < 8 {
		return "***"
	}

	return string(r[:4]) + "***" + string(r[len(r)-4:])
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
