package services

import (
	"errors"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/pkg/auth"
)

// ErrInvalidCredentials is returned when the email/password pair does not
// match a known operator.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles operator sessions.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Login verifies the credentials and returns a signed session token.
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateToken(user.ID, user.Email)
}

// CurrentUser resolves the operator behind an actor id.
func (s *AuthService) CurrentUser(actorID string) (models.User, error) {
	return s.users.FindByID(actorID)
}
