// Package models содержит доменные модели шлюза: аккаунт пользователя
// с данными подписки и метаданные видеоконтента.
package models

import "time"

// Роли пользователей.
const (
	RoleUser    = "user"    // Обычный пользователь
	RolePremium = "premium" // Пользователь с премиальной ролью
	RoleAdmin   = "admin"   // Администратор, проверки подписки не применяются
)

// Типы подписки аккаунта.
const (
	SubscriptionFree    = "free"
	SubscriptionBasic   = "basic"
	SubscriptionPremium = "premium"
)

// Account представляет зарегистрированный аккаунт.
//
// PasswordHash устанавливается один раз при регистрации или смене пароля
// и никогда не попадает во внешние представления.
type Account struct {
	UID                string     `json:"id"`    // Уникальный идентификатор аккаунта
	Name               string     `json:"name"`  // Отображаемое имя
	Email              string     `json:"email"` // Нормализованный email (нижний регистр, уникальный)
	PasswordHash       string     `json:"-"`     // bcrypt-хеш пароля
	Role               string     `json:"role"`  // Роль: user, premium или admin
	SubscriptionType   string     `json:"-"`     // Тип подписки: free, basic или premium
	SubscriptionExpiry *time.Time `json:"-"`     // Истечение подписки; nil — бессрочная
}

// AccountView — безопасное внешнее представление аккаунта без хеша пароля.
type AccountView struct {
	UID                string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	SubscriptionType   string     `json:"subscription_type"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
}

// View возвращает безопасное представление аккаунта для выдачи наружу.
func (a *Account) View() AccountView {
	return AccountView{
		UID:                a.UID,
		Name:               a.Name,
		Email:              a.Email,
		Role:               a.Role,
		SubscriptionType:   a.SubscriptionType,
		SubscriptionExpiry: a.SubscriptionExpiry,
	}
}
