package models

// User — модель пользователя, возвращаемая API после аутентификации.
//
// Запись принадлежит сессии целиком: при каждом успешном входе она
// заменяется новой, при выходе — обнуляется.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
}
