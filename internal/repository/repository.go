// Package repository declares the storage contracts the service layer
// depends on. Implementations live in subpackages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/accountkit/internal/model"
)

// UserRepository persists users.
//
// Lookups return apperror.ErrNotFound when no row matches. UpdateEmail and
// Delete report through their bool whether a row was affected; a missing
// row is not an error for them.
type UserRepository interface {
	// Insert stores a new user and returns the row as the database sees it,
	// with the generated ID and CreatedAt filled in.
	Insert(ctx context.Context, email, passwordHash string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns every user, newest first.
	List(ctx context.Context) ([]model.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}
