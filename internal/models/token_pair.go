package models

// TokenPair — пара токенов, выдаваемая сервером при аутентификации.
//
// Описание:
//   - AccessToken — короткоживущий JWT для авторизации запросов;
//   - RefreshToken — одноразовый секрет для выпуска новой пары
//     (сервер ротирует его при каждом обновлении, старый становится
//     недействительным).
//
// Инвариант: пара либо присутствует целиком, либо отсутствует целиком;
// access-токен без refresh-токена — недопустимое состояние.
type TokenPair struct {
	// AccessToken — JWT для заголовка Authorization.
	AccessToken string `json:"access"`
	// RefreshToken — секрет для обновления пары.
	RefreshToken string `json:"refresh"`
}
