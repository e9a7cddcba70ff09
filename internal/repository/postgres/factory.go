package postgres

import (
	repo "github.com/baharkarakas/campus-registration/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Users:     &usersRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
