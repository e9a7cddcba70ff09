package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/baharkarakas/campus-registration/internal/apperr"
	"github.com/baharkarakas/campus-registration/internal/models"
	repo "github.com/baharkarakas/campus-registration/internal/repository"
)

const minPasswordLen = 4

// Messages returned to callers. They are part of the API.
const (
	MsgMissingField       = "missing field"
	MsgInvalidEmail       = "invalid email format"
	MsgPasswordTooShort   = "password too short"
	MsgBlankField         = "blank field"
	MsgEmailRegistered    = "email already registered"
	MsgInvalidCredentials = "invalid credentials"
)

// UserService validates, registers and authenticates students and faculty.
// It only holds the store handle and is safe for concurrent use.
type UserService struct {
	r repo.Users
}

func NewUserService(r repo.Users) *UserService { return &UserService{r: r} }

// Validate checks c against the registration rules in order; the first failure wins.
// The store is consulted only for the final uniqueness rule.
func (s *UserService) Validate(ctx context.Context, role models.Role, c models.Candidate) error {
	const op = "services.UserService.Validate"
	if c.FirstName == nil || c.LastName == nil || c.Email == nil || c.Password == nil {
		return apperr.Validation(MsgMissingField)
	}
	if !strings.Contains(*c.Email, "@") {
		return apperr.Validation(MsgInvalidEmail)
	}
	if utf8.RuneCountInString(*c.Password) < minPasswordLen {
		return apperr.Validation(MsgPasswordTooShort)
	}
	for _, f := range []string{*c.FirstName, *c.LastName, *c.Email, *c.Password} {
		if strings.TrimSpace(f) == "" {
			return apperr.Validation(MsgBlankField)
		}
	}

	_, taken, err := s.r.FindByEmail(ctx, role, *c.Email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return apperr.Validation(MsgEmailRegistered)
	}
	return nil
}

// Register validates c and saves it. A conflict the store detects after a passing
// validation comes back as apperr.ErrStoreConflict.
func (s *UserService) Register(ctx context.Context, role models.Role, c models.Candidate) (models.Principal, error) {
	const op = "services.UserService.Register"
	if err := s.Validate(ctx, role, c); err != nil {
		return models.Principal{}, err
	}
	u, err := s.r.Save(ctx, c.User(role))
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return u.Principal(), nil
}

// Login never tells an unknown email apart from a wrong password.
func (s *UserService) Login(ctx context.Context, role models.Role, email, password string) (models.Principal, error) {
	const op = "services.UserService.Login"
	u, ok, err := s.r.FindByCredentials(ctx, role, email, password)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return models.Principal{}, apperr.Authentication(MsgInvalidCredentials)
	}
	return u.Principal(), nil
}

// FindByID resolves an already authenticated principal.
func (s *UserService) FindByID(ctx context.Context, role models.Role, id string) (models.Principal, error) {
	const op = "services.UserService.FindByID"
	u, ok, err := s.r.FindByID(ctx, role, id)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return models.Principal{}, apperr.NotAuthenticatedAs(role.String())
	}
	return u.Principal(), nil
}
