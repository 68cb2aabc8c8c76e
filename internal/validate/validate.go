// Package validate — клиентские проверки полей аутентификации.
// Все функции чистые и вызываются до любого сетевого запроса:
// непрошедшее валидацию поле останавливает flow без обращения к серверу.
//
// Ошибки возвращаются сентинелами и далее маппятся вызывающей стороной
// на сообщения рядом с конкретным полем формы.
package validate

import (
	"errors"
	"unicode"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/phone"
)

var (
	// ErrEmptyPhone — номер телефона не введён.
	ErrEmptyPhone = errors.New("phone number is required")

	// ErrInvalidPhone — номер не проходит предикат phone.Valid
	// (payload-форма не равна "9" + 9 цифр).
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrEmptyPassword — пароль не введён.
	ErrEmptyPassword = errors.New("password is required")

	// ErrShortPassword — пароль короче 8 символов.
	ErrShortPassword = errors.New("password must be at least 8 characters")

	// ErrWeakPassword — пароль не содержит одновременно букву и цифру.
	ErrWeakPassword = errors.New("password must contain at least one letter and one digit")

	// ErrPasswordMismatch — пароль и подтверждение не совпадают.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidOTP — код не равен ровно 4 цифрам.
	ErrInvalidOTP = errors.New("code must be exactly 4 digits")
)

// Phone проверяет свободный ввод номера телефона.
func Phone(raw string) error {
	if raw == "" {
		return ErrEmptyPhone
	}

	if !phone.Valid(raw) {
		return ErrInvalidPhone
	}

	return nil
}

// Password проверяет минимальные требования к паролю:
// длина >= 8, хотя бы одна буква и хотя бы одна цифра
// (порядок и позиции не ограничены).
func Password(pw string) error {
	if pw == "" {
		return ErrEmptyPassword
	}

	if len([]rune(pw)) < 8 {
		return ErrShortPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}

	return nil
}

// PasswordConfirmation проверяет пару пароль/подтверждение:
// сначала сам пароль, затем точное совпадение.
func PasswordConfirmation(pw, confirm string) error {
	if err := Password(pw); err != nil {
		return err
	}

	if pw != confirm {
		return ErrPasswordMismatch
	}

	return nil
}

// OTP проверяет одноразовый код: ровно 4 ASCII-цифры,
// все позиции заполнены.
func OTP(code string) error {
	if len(code) != 4 {
		return ErrInvalidOTP
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrInvalidOTP
		}
	}

	return nil
}
