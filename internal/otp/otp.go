// Package otp — движок OTP-челленджа: цикл запрос/повтор/подтверждение
// кода и посекундный обратный отсчёт до разрешения повторной отправки.
//
// Челлендж создаётся при первом запросе кода и живёт до завершения
// flow (успех или возврат на предыдущий шаг). Каждый челлендж несёт
// уникальную эпоху (uuid): ответ сети, пришедший после того как
// пользователь покинул шаг, сверяется с эпохой активного челленджа
// и молча отбрасывается, если эпохи не совпали.
package otp

import (
	"github.com/google/uuid"
)

// CodeLength — число цифр одноразового кода.
const CodeLength = 4

// CooldownSeconds — пауза между отправками кода.
const CooldownSeconds = 60

// Purpose — назначение челленджа: от него зависят эндпоинты
// и payload завершающего шага.
type Purpose int

const (
	// PurposeSignup — подтверждение номера при регистрации.
	PurposeSignup Purpose = iota
	// PurposeRecovery — подтверждение номера при сбросе пароля.
	PurposeRecovery
)

func (p Purpose) String() string {
	switch p {
	case PurposeSignup:
		return "signup"
	case PurposeRecovery:
		return "recovery"
	default:
		return "unknown"
	}
}

// Challenge — состояние одного открытого OTP-цикла.
//
// Не потокобезопасен: владелец — один flow, мутации приходят
// из одного событийного цикла (UI либо цикл CLI).
type Challenge struct {
	// Epoch — идентичность челленджа; поздние ответы с чужой
	// эпохой не применяются.
	Epoch uuid.UUID
	// Phone — номер в локальной форме, на который выслан код.
	Phone string
	// Purpose — назначение.
	Purpose Purpose

	digits  [CodeLength]byte // 0 — пустой слот
	focus   int
	remain  int  // секунд до разрешения resend
	pending bool // сетевой запрос (send/resend/verify) в полёте
}

// New открывает челлендж и взводит кулдаун.
func New(phone string, purpose Purpose) *Challenge {
	return &Challenge{
		Epoch:   uuid.New(),
		Phone:   phone,
		Purpose: purpose,
		remain:  CooldownSeconds,
	}
}

// Remaining — секунд до разрешения повторной отправки.
func (c *Challenge) Remaining() int { return c.remain }

// Tick — один секундный тик отсчёта; ниже нуля не уходит.
func (c *Challenge) Tick() int {
	if c.remain > 0 {
		c.remain--
	}

	return c.remain
}

// CanResend — кулдаун истёк и нет запроса в полёте.
func (c *Challenge) CanResend() bool {
	return c.remain == 0 && !c.pending
}

// Rearm взводит кулдаун заново после успешного resend.
// Введённые цифры не трогаются.
func (c *Challenge) Rearm() {
	c.remain = CooldownSeconds
}

// BeginRequest отмечает сетевой запрос в полёте; возвращает false,
// если запрос уже идёт — гейт от даблкликов по resend/submit.
func (c *Challenge) BeginRequest() bool {
	if c.pending {
		return false
	}

	c.pending = true
	return true
}

// EndRequest снимает флаг запроса в полёте.
func (c *Challenge) EndRequest() { c.pending = false }

// Pending — идёт ли сейчас сетевой запрос этого челленджа.
func (c *Challenge) Pending() bool { return c.pending }

// Focus — индекс активного слота (0..CodeLength-1).
func (c *Challenge) Focus() int { return c.focus }

// Digit возвращает цифру слота i или пустую строку.
func (c *Challenge) Digit(i int) string {
	if i < 0 || i >= CodeLength || c.digits[i] == 0 {
		return ""
	}

	return string(c.digits[i])
}

// EnterDigit вводит символ в активный слот. Нецифровые символы
// игнорируются, слот не меняется. Заполнение слота переводит фокус
// на следующий; с последнего слота фокус не уходит.
func (c *Challenge) EnterDigit(r rune) {
	if r < '0' || r > '9' {
		return
	}

	c.digits[c.focus] = byte(r)
	if c.focus < CodeLength-1 {
		c.focus++
	}
}

// Backspace очищает активный слот; если он уже пуст — отступает
// на предыдущий и очищает его.
func (c *Challenge) Backspace() {
	if c.digits[c.focus] != 0 {
		c.digits[c.focus] = 0
		return
	}

	if c.focus > 0 {
		c.focus--
		c.digits[c.focus] = 0
	}
}

// Paste атомарно заполняет все слоты из 4-значного блока и ставит
// фокус на последний слот. Любой другой ввод игнорируется целиком.
func (c *Challenge) Paste(s string) {
	if len(s) != CodeLength {
		return
	}

	for i := 0; i < CodeLength; i++ {
		if s[i] < '0' || s[i] > '9' {
			return
		}
	}

	for i := 0; i < CodeLength; i++ {
		c.digits[i] = s[i]
	}
	c.focus = CodeLength - 1
}

// Code возвращает собранный код и признак полноты всех слотов.
func (c *Challenge) Code() (string, bool) {
	buf := make([]byte, 0, CodeLength)
	for _, d := range c.digits {
		if d == 0 {
			return "", false
		}
		buf = append(buf, d)
	}

	return string(buf), true
}

// ClearDigits сбрасывает все слоты и возвращает фокус на первый.
// Кулдаун не трогается: неверный код не даёт права на внеочередной
// resend.
func (c *Challenge) ClearDigits() {
	c.digits = [CodeLength]byte{}
	c.focus = 0
}

// Matches сверяет эпоху ответа с активным челленджем.
func (c *Challenge) Matches(epoch uuid.UUID) bool {
	return c != nil && c.Epoch == epoch
}
