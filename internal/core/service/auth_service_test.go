package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
	"github.com/omSolanki30/Smart-E-Lib-backend/pkg/clock"
)

func newAuthFixture() (*stubUserRepo, *AuthService) {
	users := newStubUserRepo()
	// Real "now": token expiry is validated against the wall clock on parse.
	return users, NewAuthService(users, clock.NewFixed(time.Now().UTC()), "secret", time.Hour)
}

func registerInput() ports.RegisterInput {
	return ports.RegisterInput{
		StudentID: "STU001",
		Name:      "Alice",
		Email:     "alice@example.com",
		Password:  "pass1234",
	}
}

func TestAuth_Register_Success(t *testing.T) {
	_, svc := newAuthFixture()

	user, token, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if user.Role != domain.RoleStudent {
		t.Errorf("role defaults to student, got %q", user.Role)
	}
	if user.PasswordHash == "pass1234" {
		t.Fatal("password must be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.CurrentIssuedBooks == nil || user.IssueHistory == nil {
		t.Error("projection slices must be initialised empty, not nil")
	}
}

func TestAuth_Register_MissingFields(t *testing.T) {
	_, svc := newAuthFixture()

	input := registerInput()
	input.Email = ""
	if _, _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAuth_Register_BadRole(t *testing.T) {
	_, svc := newAuthFixture()

	input := registerInput()
	input.Role = "librarian"
	if _, _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAuth_Register_Duplicate(t *testing.T) {
	_, svc := newAuthFixture()

	if _, _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), registerInput()); !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestAuth_Login_Success(t *testing.T) {
	_, svc := newAuthFixture()

	input := registerInput()
	input.Role = domain.RoleAdmin
	if _, _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "alice@example.com", "pass1234")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.StudentID != "STU001" {
		t.Errorf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleAdmin {
		t.Errorf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
	if claims["student_id"] != "STU001" {
		t.Errorf("expected student_id STU001, got %v", claims["student_id"])
	}
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	_, svc := newAuthFixture()

	_, _, _ = svc.Register(context.Background(), registerInput())
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuth_Login_UnknownEmail(t *testing.T) {
	_, svc := newAuthFixture()

	// Unknown accounts and bad passwords are indistinguishable to the caller.
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
