// Package memory содержит репозитории без внешней БД для store=memory и тестов.
package memory

import (
	"context"
	"time"

	"github.com/xela07ax/airplane-mode/internal/domain"
)

// UserRepo держит одного администратора из конфигурации.
type UserRepo struct {
	users map[string]*domain.User
}

func NewUserRepo(users ...*domain.User) *UserRepo {
	r := &UserRepo{users: make(map[string]*domain.User, len(users))}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

// StaticAdmin строит администратора с capability manage_options из логина и bcrypt-хэша.
func StaticAdmin(username, passwordHash string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           "admin",
		Username:     username,
		PasswordHash: passwordHash,
		Role:         "administrator",
		Scopes:       map[string]bool{domain.CapManageOptions: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (r *UserRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	return u, nil
}
