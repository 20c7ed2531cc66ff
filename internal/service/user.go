// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// UserService takes a repository.UserRepository and an auth.PasswordHasher
// (interfaces), never the concrete sqlite or bcrypt types, so tests can swap
// either one out.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/sakif/accountkit/internal/apperror"
	"github.com/sakif/accountkit/internal/auth"
	"github.com/sakif/accountkit/internal/model"
	"github.com/sakif/accountkit/internal/repository"
)

// MinPasswordLength is the shortest password Create accepts, in bytes.
const MinPasswordLength = 6

// UserService handles the user lifecycle and credential checks.
//
// Error policy: validation failures come back as apperror.ErrValidation
// before anything touches the database; duplicate emails as
// apperror.ErrConflict; every other storage failure, from every method, as
// apperror.ErrStorage wrapping the engine error. Absence is never an error:
// lookups return a nil user, Delete returns false.
type UserService struct {
	repo      repository.UserRepository
	passwords auth.PasswordHasher
	logger    *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo repository.UserRepository, passwords auth.PasswordHasher, logger *zap.Logger) *UserService {
	return &UserService{
		repo:      repo,
		passwords: passwords,
		logger:    logger,
	}
}

// Create validates the input, hashes the password and stores a new user.
//
// The returned user carries the database-assigned ID and CreatedAt and the
// same hash that was persisted; the plaintext is not retained anywhere.
func (s *UserService) Create(ctx context.Context, email, password string) (*model.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	user, err := s.repo.Insert(ctx, email, hash)
	if err != nil {
		s.logger.Warn("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, storageError("creating user", err)
	}

	s.logger.Info("user created", zap.Int64("id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// FindByID returns the user with the given id, or (nil, nil) if there is none.
func (s *UserService) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, storageError("finding user "+strconv.FormatInt(id, 10), err)
	}
	return user, nil
}

// FindByEmail returns the user with the given email, or (nil, nil) if there is none.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, storageError("finding user by email", err)
	}
	return user, nil
}

// FindAll returns every user, newest first. Users created in the same
// millisecond come back in reverse insertion order.
func (s *UserService) FindAll(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, storageError("listing users", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Update persists user.Email for the row identified by user.ID. Other
// fields are ignored. Updating an id that does not exist is a silent no-op.
func (s *UserService) Update(ctx context.Context, user *model.User) error {
	if user == nil {
		return apperror.ValidationFailed("user", "user is required")
	}
	if err := validateEmail(user.Email); err != nil {
		return err
	}

	updated, err := s.repo.UpdateEmail(ctx, user.ID, user.Email)
	if err != nil {
		return storageError("updating user "+strconv.FormatInt(user.ID, 10), err)
	}
	if !updated {
		s.logger.Debug("update matched no user", zap.Int64("id", user.ID))
		return nil
	}

	s.logger.Info("user updated", zap.Int64("id", user.ID))
	return nil
}

// Delete removes the user with the given id and reports whether a row was
// removed.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, storageError("deleting user "+strconv.FormatInt(id, 10), err)
	}
	if deleted {
		s.logger.Info("user deleted", zap.Int64("id", id))
	}
	return deleted, nil
}

// Count returns the total number of users.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count users", zap.Error(err))
		return 0, storageError("counting users", err)
	}
	return n, nil
}

// ValidateCredentials reports whether a user with this email exists and the
// password matches the stored hash. An unknown email and a wrong password
// both give false with a nil error. A stored hash bcrypt cannot parse is
// logged and treated as a mismatch.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) (bool, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash is unusable", zap.Int64("id", user.ID), zap.Error(err))
		}
		return false, nil
	}
	return true, nil
}

func validateEmail(email string) error {
	if !auth.IsWellFormedEmail(email) {
		return apperror.ValidationFailed("email", "invalid email format")
	}
	return nil
}

// storageError passes typed application errors (conflicts, not-found)
// through and wraps anything else as apperror.ErrStorage.
func storageError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.StorageFailed(op, err)
}
