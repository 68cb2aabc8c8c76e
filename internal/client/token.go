package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessTokenExpiry достаёт claim exp из access-токена без проверки
// подписи: ключа у клиента нет, а для планирования досрочного
// обновления подпись и не нужна. Токены без exp или не-JWT
// обновляются только реактивно.
func accessTokenExpiry(access string) (time.Time, bool) {
	var claims jwt.RegisteredClaims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(access, &claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}
