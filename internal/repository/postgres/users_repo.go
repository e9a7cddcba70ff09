// internal/repository/postgres/users_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/campus-registration/internal/apperr"
	"github.com/baharkarakas/campus-registration/internal/auth"
	"github.com/baharkarakas/campus-registration/internal/models"
	"github.com/baharkarakas/campus-registration/internal/repository"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, role, first_name, last_name, email, password_hash, created_at FROM users`

type usersRepo struct{ pool *pgxpool.Pool }

func NewUsers(pool *pgxpool.Pool) repository.Users {
	return &usersRepo{pool: pool}
}

func (r *usersRepo) Save(ctx context.Context, u models.User) (models.User, error) {
	const op = "postgres.Users.Save"
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u.ID = uuid.NewString()
	u.Password = ""
	u.PasswordHash = hash
	err = r.pool.QueryRow(ctx,
		`INSERT INTO users(id, role, first_name, last_name, email, password_hash)
         VALUES($1,$2,$3,$4,$5,$6) RETURNING created_at`,
		u.ID, u.Role, u.FirstName, u.LastName, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, fmt.Errorf("%s: %w", op, apperr.ErrStoreConflict)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r *usersRepo) FindByID(ctx context.Context, role models.Role, id string) (models.User, bool, error) {
	if uuid.Validate(id) != nil {
		return models.User{}, false, nil
	}
	return r.one(ctx, "postgres.Users.FindByID", selectUser+` WHERE role=$1 AND id=$2`, role, id)
}

func (r *usersRepo) FindByEmail(ctx context.Context, role models.Role, email string) (models.User, bool, error) {
	return r.one(ctx, "postgres.Users.FindByEmail", selectUser+` WHERE role=$1 AND lower(email)=lower($2)`, role, email)
}

func (r *usersRepo) FindByCredentials(ctx context.Context, role models.Role, email, password string) (models.User, bool, error) {
	u, ok, err := r.FindByEmail(ctx, role, email)
	if err != nil || !ok {
		return models.User{}, false, err
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return models.User{}, false, nil
	}
	return u, true, nil
}

func (r *usersRepo) one(ctx context.Context, op, query string, args ...any) (models.User, bool, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&u.ID, &u.Role, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return u, true, nil
}
