package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	DeleteSession(ctx context.Context, sid string) error
}

// Service issues and validates access tokens for API callers. Issue is the
// seam the identity layer in front of the marketplace uses; request handling
// only ever calls ValidateAccessToken.
type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, sessions SessionStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}

	return &Service{
		jwt:        jwtManager,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *Service) Issue(ctx context.Context, userID int64, role string) (AuthResult, error) {
	if userID <= 0 {
		return AuthResult{}, ErrInvalidInput
	}

	sessionID, err := NewSessionID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session id: %w", err)
	}

	session := SessionRecord{
		SID:       sessionID,
		UserID:    userID,
		Role:      role,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(userID, sessionID, role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		AccessExpires: accessExpires,
		UserID:        userID,
		Role:          role,
	}, nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID || session.Role != claims.Role {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
