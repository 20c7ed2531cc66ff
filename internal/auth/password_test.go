package auth

import (
	"errors"
	"strings"
	"testing"
)

// =========================================================================
// HELPER
// =========================================================================

// newTestPasswordService returns a PasswordService with bcrypt cost 4,
// the minimum allowed by the bcrypt library.
func newTestPasswordService(t *testing.T) *PasswordService {
	t.Helper()
	ps, err := NewPasswordServiceWithCost(4)
	if err != nil {
		t.Fatalf("NewPasswordServiceWithCost(4) error = %v", err)
	}
	return ps
}

// =========================================================================
// CONSTRUCTOR TESTS
// =========================================================================

func TestNewPasswordService_DefaultCost(t *testing.T) {
	if got := NewPasswordService().Cost(); got != DefaultCost {
		t.Errorf("Cost() = %d, want %d", got, DefaultCost)
	}
}

func TestNewPasswordServiceWithCost_RejectsOutOfRange(t *testing.T) {
	for _, cost := range []int{0, 3, 32, 100} {
		if _, err := NewPasswordServiceWithCost(cost); err == nil {
			t.Errorf("NewPasswordServiceWithCost(%d) should return an error", cost)
		}
	}
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
	if hash == "password123" {
		t.Error("Hash() returned the plaintext")
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService(t)

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_RejectsPasswordOver72Bytes(t *testing.T) {
	ps := newTestPasswordService(t)

	if _, err := ps.Hash(strings.Repeat("a", MaxPasswordBytes+1)); err == nil {
		t.Fatal("Hash() should return an error for passwords longer than 72 bytes")
	}
}

func TestHash_AcceptsPasswordExactly72Bytes(t *testing.T) {
	ps := newTestPasswordService(t)

	if _, err := ps.Hash(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("Hash() should accept a 72-byte password, got error: %v", err)
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_CorrectPassword(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, err := ps.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "correct-horse-battery-staple"); err != nil {
		t.Errorf("Verify() should return nil for a correct password, got: %v", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, _ := ps.Hash("the-real-password")

	err := ps.Verify(hash, "the-wrong-password")
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("Verify() error = %v, want ErrPasswordMismatch", err)
	}
}

func TestVerify_RejectsCandidateOver72Bytes(t *testing.T) {
	ps := newTestPasswordService(t)
	password := strings.Repeat("p", MaxPasswordBytes)

	hash, err := ps.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt alone would accept this: only the first 72 bytes are compared.
	err = ps.Verify(hash, password+"DIFFERENT")
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("Verify() error = %v, want ErrPasswordMismatch", err)
	}
	if err := ps.Verify(hash, password); err != nil {
		t.Errorf("Verify() of the exact 72-byte password error = %v", err)
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService(t)

	err := ps.Verify("not-a-valid-bcrypt-hash", "password")
	if err == nil {
		t.Fatal("Verify() should return an error for a garbage hash")
	}
	if errors.Is(err, ErrPasswordMismatch) {
		t.Error("a malformed hash should not be reported as a plain mismatch")
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService(t)

	cases := []struct {
		name     string
		password string
	}{
		{"simple alphanumeric", "hello123"},
		{"special characters", "p@$$w0rd!#%"},
		{"unicode", "пароль-密码"},
		{"whitespace", "  leading and trailing  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := ps.Hash(tc.password)
			if err != nil {
				t.Fatalf("Hash(%q) error = %v", tc.password, err)
			}

			if err := ps.Verify(hash, tc.password); err != nil {
				t.Errorf("Verify() failed for %q: %v", tc.password, err)
			}
		})
	}
}
