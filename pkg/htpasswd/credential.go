package htpasswd

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the default cost parameter for bcrypt hashing.
// Cost 10 provides a good balance between security and performance.
const DefaultBcryptCost = 10

// MaxPasswordLength is the maximum allowed password length in bytes.
// bcrypt rejects longer inputs, so we surface the limit explicitly.
const MaxPasswordLength = 72

// ErrPasswordTooLong is returned when a password exceeds the bcrypt limit.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// Hash creates a bcrypt hash of the given password.
//
// Returns:
//   - string: The bcrypt hash, stable across restarts and verifiable later
//   - error: If the password exceeds the bcrypt length limit or hashing fails
func Hash(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultBcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify checks if a password matches a bcrypt hash.
//
// A malformed or unrecognized hash encoding makes Verify return false rather
// than fail: on-disk content is untrusted input.
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NeedsRehash checks if a stored hash was generated with a lower cost than
// DefaultBcryptCost and should be regenerated on next password change.
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < DefaultBcryptCost
}
