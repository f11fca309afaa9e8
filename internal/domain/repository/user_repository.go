package repository

import (
	"context"

	"github.com/roadwatch/warning-service/internal/domain/entity"
)

// UserRepository defines the persistence operations of the credential vault.
type UserRepository interface {
	// Create inserts a new user. Returns ErrAlreadyExists when the username
	// is taken; nothing is written in that case.
	Create(ctx context.Context, u *entity.User) error
	// GetByUsername returns ErrNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
