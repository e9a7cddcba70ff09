// Package memory is an in-process store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/campus-registration/internal/apperr"
	"github.com/baharkarakas/campus-registration/internal/auth"
	"github.com/baharkarakas/campus-registration/internal/models"
	"github.com/baharkarakas/campus-registration/internal/repository"
)

type emailKey struct {
	role  models.Role
	email string
}

type usersRepo struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[emailKey]string
}

func NewUsers() repository.Users {
	return &usersRepo{
		byID:    make(map[string]models.User),
		byEmail: make(map[emailKey]string),
	}
}

func (r *usersRepo) FindByID(_ context.Context, role models.Role, id string) (models.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok || u.Role != role {
		return models.User{}, false, nil
	}
	return u, true, nil
}

func (r *usersRepo) FindByEmail(_ context.Context, role models.Role, email string) (models.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byEmailLocked(role, email)
}

func (r *usersRepo) FindByCredentials(_ context.Context, role models.Role, email, password string) (models.User, bool, error) {
	r.mu.RLock()
	u, ok, _ := r.byEmailLocked(role, email)
	r.mu.RUnlock()
	if !ok {
		return models.User{}, false, nil
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, false, nil
	}
	return u, true, nil
}

func (r *usersRepo) Save(_ context.Context, u models.User) (models.User, error) {
	const op = "memory.Users.Save"
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := emailKey{role: u.Role, email: normalize(u.Email)}
	if _, taken := r.byEmail[key]; taken {
		return models.User{}, fmt.Errorf("%s: %w", op, apperr.ErrStoreConflict)
	}

	u.ID = uuid.NewString()
	u.Password = ""
	u.PasswordHash = hash
	u.CreatedAt = time.Now().UTC()
	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return u, nil
}

func (r *usersRepo) byEmailLocked(role models.Role, email string) (models.User, bool, error) {
	id, ok := r.byEmail[emailKey{role: role, email: normalize(email)}]
	if !ok {
		return models.User{}, false, nil
	}
	return r.byID[id], true, nil
}

// Emails compare case-insensitively, matching the lower(email) index in postgres.
func normalize(email string) string { return strings.ToLower(email) }
