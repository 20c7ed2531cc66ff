package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sakif/accountkit/internal/apperror"
	"github.com/sakif/accountkit/internal/model"
	"github.com/sakif/accountkit/internal/repository"
)

// compile-time check that *UserRepository implements repository.UserRepository
var _ repository.UserRepository = (*UserRepository)(nil)

// created_at comes from the database clock, with millisecond precision so
// users created within the same second still sort in creation order.
const (
	insertUserQuery = `
		INSERT INTO users (email, password, created_at)
		VALUES (?, ?, strftime('%Y-%m-%d %H:%M:%f', 'now'))`

	selectUserByIDQuery = `
		SELECT id, email, password, created_at
		FROM users
		WHERE id = ?`

	selectUserByEmailQuery = `
		SELECT id, email, password, created_at
		FROM users
		WHERE email = ?`

	// Rows with identical created_at fall back to id, newest insert first.
	selectAllUsersQuery = `
		SELECT id, email, password, created_at
		FROM users
		ORDER BY created_at DESC, id DESC`

	updateUserEmailQuery = `UPDATE users SET email = ? WHERE id = ?`

	deleteUserQuery = `DELETE FROM users WHERE id = ?`

	countUsersQuery = `SELECT COUNT(*) FROM users`
)

// timestampLayouts are tried in order when hydrating created_at. The driver
// hands DATETIME columns back either as the stored text or as a time.Time,
// which database/sql renders as RFC 3339 when scanning into a string.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

// userRow mirrors one row of the users table.
type userRow struct {
	ID        int64  `db:"id"`
	Email     string `db:"email"`
	Password  string `db:"password"`
	CreatedAt string `db:"created_at"`
}

// toModel hydrates a row into a model.User. Each call parses created_at on
// its own; nothing is cached between rows.
func (r userRow) toModel() (*model.User, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", r.ID, err)
	}
	return &model.User{
		ID:        r.ID,
		Email:     r.Email,
		Password:  r.Password,
		CreatedAt: createdAt,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised created_at value %q", s)
}

// UserRepository stores users in the users table.
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository returns a repository over any sqlx handle whose driver
// accepts "?" placeholders.
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// Insert adds a user row and reads it back.
//
// The INSERT, the generated-id lookup and the read-back run in one
// transaction, so a failure at any step leaves no row behind.
func (r *UserRepository) Insert(ctx context.Context, email, passwordHash string) (*model.User, error) {
	var row userRow

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, insertUserQuery, email, passwordHash)
		r.logQuery(insertUserQuery, []any{email, "[REDACTED]"}, err)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("user", "email", email, err)
			}
			return fmt.Errorf("inserting user: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading generated id: %w", err)
		}

		err = tx.GetContext(ctx, &row, selectUserByIDQuery, id)
		r.logQuery(selectUserByIDQuery, []any{id}, err)
		if err != nil {
			return fmt.Errorf("reading back user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: creating user: %w", err)
	}

	user, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating user: %w", err)
	}
	return user, nil
}

// GetByID returns the user with the given id, or apperror.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var row userRow

	err := r.db.GetContext(ctx, &row, selectUserByIDQuery, id)
	r.logQuery(selectUserByIDQuery, []any{id}, err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	user, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return user, nil
}

// GetByEmail returns the user with the given email, or apperror.ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var row userRow

	err := r.db.GetContext(ctx, &row, selectUserByEmailQuery, email)
	r.logQuery(selectUserByEmailQuery, []any{email}, err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundBy("user", "email", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}

	user, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// List returns every user ordered by created_at, newest first.
// An empty table yields an empty, non-nil slice.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var rows []userRow

	err := r.db.SelectContext(ctx, &rows, selectAllUsersQuery)
	r.logQuery(selectAllUsersQuery, nil, err)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("sqlite: listing users: %w", err)
		}
		users = append(users, *u)
	}
	return users, nil
}

// UpdateEmail sets the email of user id. It reports false, with no error,
// when no row has that id.
func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, updateUserEmailQuery, email, id)
	r.logQuery(updateUserEmailQuery, []any{email, id}, err)
	if err != nil {
		if isUniqueViolation(err) {
			return false, apperror.Conflict("user", "email", email, err)
		}
		return false, fmt.Errorf("sqlite: updating user %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// Delete removes user id and reports whether a row was removed.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	r.logQuery(deleteUserQuery, []any{id}, err)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of rows in the users table.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64

	err := r.db.GetContext(ctx, &n, countUsersQuery)
	r.logQuery(countUsersQuery, nil, err)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

// logQuery writes one debug line per statement with the SQL collapsed onto
// a single line. Callers pass args with secrets already redacted.
func (r *UserRepository) logQuery(query string, args []any, err error) {
	r.logger.Debug("query",
		zap.String("query", strings.Join(strings.Fields(query), " ")),
		zap.Any("args", args),
		zap.Error(err),
	)
}
