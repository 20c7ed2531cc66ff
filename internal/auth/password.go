// Package auth holds the credential primitives used by the user service:
// bcrypt password hashing and the email-format predicate.
//
// WHY BCRYPT?
// bcrypt is a password hashing function specifically designed to be slow.
// That slowness is a security feature: it makes brute-force attacks expensive.
//
// bcrypt automatically:
//   - Generates a random salt (so two users with the same password get different hashes)
//   - Embeds the salt in the output hash (no separate salt column needed)
//   - Controls the work factor via "cost" (higher = slower = harder to crack)
//
// Hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 = 4096 iterations)
//	 version
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production.
// Cost 12 takes roughly ~250ms on a modern server.
const DefaultCost = 12

// MaxPasswordBytes is the bcrypt input limit. bcrypt silently truncates
// anything longer, so Hash rejects it instead.
const MaxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordHasher is the one-way hash primitive the user service depends on.
// The service never looks inside the hash string.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) error
}

// compile-time check that *PasswordService implements PasswordHasher
var _ PasswordHasher = (*PasswordService)(nil)

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// from config, and tests can use cost 4 to run in milliseconds.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with DefaultCost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: DefaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// The cost must lie within [bcrypt.MinCost, bcrypt.MaxCost].
//
// Do NOT use cost 4 in production: it is far too weak.
func NewPasswordServiceWithCost(cost int) (*PasswordService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordService{cost: cost}, nil
}

// Cost reports the configured work factor.
func (p *PasswordService) Cost() int {
	return p.cost
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string like:
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// Store this string directly in the database. It includes the salt and
// cost; bcrypt.CompareHashAndPassword knows how to decode it.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
//
// Returns nil on a match, ErrPasswordMismatch on a wrong password, and a
// wrapped bcrypt error when the stored hash itself is malformed.
//
// A candidate over MaxPasswordBytes never matches: bcrypt would compare only
// its first 72 bytes, and Hash never stores anything that long.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword uses a constant-time comparison internally.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if len(plaintext) > MaxPasswordBytes {
		return ErrPasswordMismatch
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
