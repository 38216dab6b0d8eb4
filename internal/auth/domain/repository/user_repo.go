package repository

import (
	"context"

	"kbadmin/internal/auth/domain/model"
)

// UserRepository defines the lookup contract shared by the persistent and the
// in-memory user stores. Absence of a user is reported via ErrUserNotFound,
// never by a panic or a nil sentinel.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
