package services

import (
	"context"
	"time"

	"coachingsite/internal/domain"
)

type adminAuthService struct {
	checker domain.PasswordChecker
	issuer  domain.TokenIssuer
	ttl     time.Duration
}

// NewAdminAuthService returns an AdminAuthService issuing tokens valid for ttl.
func NewAdminAuthService(checker domain.PasswordChecker, issuer domain.TokenIssuer, ttl time.Duration) domain.AdminAuthService {
	return &adminAuthService{checker: checker, issuer: issuer, ttl: ttl}
}

func (s *adminAuthService) Login(ctx context.Context, password string) (string, time.Time, error) {
	if err := s.checker.Check(password); err != nil {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	return s.issuer.Issue(domain.AdminSubject, s.ttl)
}
