package repository

import (
	"github.com/prperemyshlev/identity-sync-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	UserData UserDataRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres, sealer Sealer) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		UserData: NewUserDataRepository(db, sealer),
	}
}
