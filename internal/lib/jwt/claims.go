// Package jwt реализует выпуск и проверку сессионных JWT токенов шлюза.
//
// CustomClaims расширяет стандартные claims JWT, добавляя идентификатор
// аккаунта, email и роль пользователя.
//
// Maker описывает интерфейс для выпуска и проверки токенов; MakerImpl —
// конкретная реализация с секретным ключом и временем жизни токена.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Email                string `json:"email"` // Email аккаунта
	Role                 string `json:"role"`  // Роль пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (Subject — uid аккаунта, ExpiresAt и пр.)
}

// Maker описывает интерфейс для выпуска и проверки JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для аккаунта и возвращает его вместе
	// с абсолютным временем истечения.
	GenerateToken(accountUID, email, role string) (string, time.Time, error)
	// ParseToken проверяет подпись и срок действия токена и возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
