package ports

import (
	"context"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

// RegisterInput carries the data for a new account.
type RegisterInput struct {
	StudentID string
	Name      string
	Email     string
	Password  string
	Role      string
}

// AuthService implements registration and login.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
