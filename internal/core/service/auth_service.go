package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

// AuthService implements registration and login. Passwords are stored as
// bcrypt hashes only; nothing plaintext is ever persisted.
type AuthService struct {
	users     ports.UserRepository
	clock     ports.Clock
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users ports.UserRepository, clock ports.Clock, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, clock: clock, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, string, error) {
	if input.StudentID == "" || input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, "", fmt.Errorf("%w: student_id, name, email and password are required", domain.ErrValidation)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if role != domain.RoleAdmin && role != domain.RoleStudent {
		return nil, "", fmt.Errorf("%w: role must be student or admin", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := s.clock.Now()
	user := &domain.User{
		StudentID:          input.StudentID,
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       string(hash),
		Role:               role,
		CurrentIssuedBooks: []string{},
		IssueHistory:       []domain.IssueRecord{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// HashPassword is used by bulk user import, which bypasses Register.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"student_id": user.StudentID,
		"role":       user.Role,
		"exp":        s.clock.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
