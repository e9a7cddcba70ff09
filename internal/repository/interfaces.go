package repository

import (
	"context"

	"github.com/baharkarakas/campus-registration/internal/models"
)

// Users is the credential store. Every lookup reports "found" explicitly; a missing
// record is (zero, false, nil), never an error.
type Users interface {
	FindByID(ctx context.Context, role models.Role, id string) (models.User, bool, error)
	FindByEmail(ctx context.Context, role models.Role, email string) (models.User, bool, error)
	// FindByCredentials reports not found both for an unknown email and a wrong password.
	FindByCredentials(ctx context.Context, role models.Role, email, password string) (models.User, bool, error)
	// Save assigns the id and returns apperr.ErrStoreConflict when (role, email) is taken.
	Save(ctx context.Context, u models.User) (models.User, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

type Repositories struct {
	Users     Users
	AuditLogs AuditLogs
}
