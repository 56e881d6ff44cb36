package ports

import (
	"context"

	"learnlog/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsername returns nil when no such user exists.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
