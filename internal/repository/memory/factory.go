package memory

import repo "github.com/baharkarakas/campus-registration/internal/repository"

// NewRepositories mirrors postgres.NewRepositories for STORE_DRIVER=memory.
func NewRepositories() repo.Repositories {
	return repo.Repositories{
		Users:     NewUsers(),
		AuditLogs: NewAuditLogs(),
	}
}
