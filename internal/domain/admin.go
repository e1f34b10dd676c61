package domain

import (
	"context"
	"time"
)

// AdminSubject is the token subject for the single admin account.
const AdminSubject = "admin"

// TokenIssuer issues signed, expiring tokens for a subject.
type TokenIssuer interface {
	Issue(subject string, expiry time.Duration) (token string, expiresAt time.Time, err error)
}

// TokenVerifier verifies a token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// PasswordChecker compares a submitted password against the configured admin credential.
type PasswordChecker interface {
	Check(password string) error
}

// AdminAuthService exchanges the admin password for a session token.
type AdminAuthService interface {
	Login(ctx context.Context, password string) (token string, expiresAt time.Time, err error)
}
