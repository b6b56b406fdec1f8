package htpasswd

import (
	"errors"
	"strings"
	"testing"
)

func TestHashRoundTrip(t *testing.T) {
	password := "test-password-123"

	hash, err := Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Check hash format (bcrypt hashes start with $2a$ or $2b$)
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Errorf("Hash() = %q, want bcrypt format", hash)
	}

	if !Verify(password, hash) {
		t.Error("Verify() returned false for correct password")
	}
	if Verify("wrong-password", hash) {
		t.Error("Verify() returned true for wrong password")
	}
}

func TestHashSalted(t *testing.T) {
	password := "same-password"

	hash1, _ := Hash(password)
	hash2, _ := Hash(password)

	// Bcrypt generates a fresh salt each time.
	if hash1 == hash2 {
		t.Error("Hash() generated same hash twice, expected different due to salt")
	}
	if !Verify(password, hash1) || !Verify(password, hash2) {
		t.Error("Verify() failed for freshly generated hash")
	}
}

func TestHashTooLong(t *testing.T) {
	_, err := Hash(strings.Repeat("a", MaxPasswordLength+1))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Hash() error = %v, want ErrPasswordTooLong", err)
	}

	if _, err := Hash(strings.Repeat("a", MaxPasswordLength)); err != nil {
		t.Errorf("Hash() at limit error = %v", err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"not a hash", "not-a-valid-hash"},
		{"empty hash", ""},
		{"truncated bcrypt", "$2a$10$tooshort"},
		{"plain text", "password123"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if Verify("password123", tc.hash) {
				t.Errorf("Verify() = true for malformed hash %q", tc.hash)
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	current, err := Hash("pw")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if NeedsRehash(current) {
		t.Error("NeedsRehash() = true for hash at default cost")
	}
	if !NeedsRehash("garbage") {
		t.Error("NeedsRehash() = false for unparseable hash")
	}
}
