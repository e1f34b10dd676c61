package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"coachingsite/internal/domain"
)

type passwordChecker struct {
	plain []byte
	hash  []byte
}

// NewPasswordChecker returns a PasswordChecker for the configured admin credential.
// A bcrypt hash takes precedence over a plain password. When neither is set every
// check fails, which disables admin login.
func NewPasswordChecker(plain, bcryptHash string) domain.PasswordChecker {
	c := &passwordChecker{}
	if bcryptHash != "" {
		c.hash = []byte(bcryptHash)
	} else if plain != "" {
		sum := sha256.Sum256([]byte(plain))
		c.plain = sum[:]
	}
	return c
}

func (c *passwordChecker) Check(password string) error {
	switch {
	case c.hash != nil:
		if err := bcrypt.CompareHashAndPassword(c.hash, []byte(password)); err != nil {
			return domain.ErrInvalidCredentials
		}
		return nil
	case c.plain != nil:
		// Comparing digests keeps the comparison length-independent.
		sum := sha256.Sum256([]byte(password))
		if subtle.ConstantTimeCompare(sum[:], c.plain) != 1 {
			return domain.ErrInvalidCredentials
		}
		return nil
	default:
		return domain.ErrInvalidCredentials
	}
}
