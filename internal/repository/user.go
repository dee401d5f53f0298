package repository

import (
	"context"

	"github.com/azamatb/todo-tracker/internal/domain"
)

type UserRepository interface {
	// Create persists a new user. Duplicate email/username surface as
	// domain.ErrEmailTaken / domain.ErrUsernameTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
