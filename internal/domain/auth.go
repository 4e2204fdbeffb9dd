package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CapManageOptions: административная capability, без которой toggle невозможен.
const CapManageOptions = "manage_options"

type CustomClaims struct {
	UserID string          `json:"user_id"`
	Scopes map[string]bool `json:"scopes"` // "manage_options": true
	jwt.RegisteredClaims
}

// Principal: аутентифицированный вызывающий, извлеченный из токена.
type Principal struct {
	UserID string          `json:"user_id"`
	Scopes map[string]bool `json:"scopes"`
}

// Can безопасен для nil: анонимный запрос не имеет прав.
func (p *Principal) Can(capability string) bool {
	if p == nil || p.UserID == "" {
		return false
	}
	return p.Scopes[capability]
}

// Secure Token Issuing
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}

type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"` // Никогда не отправляем на фронт
	Role         string          `json:"role"`
	Scopes       map[string]bool `json:"scopes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
