// Package auth implements token issuance and validation for the admin
// backend: short-lived HS256 access tokens and opaque one-time refresh
// tokens persisted server-side.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/loopline-app/loopline-admin/internal/store"
)

const tokenIssuer = "loopline-admin"

// ErrInvalidToken is returned for malformed, expired, revoked, or unknown
// tokens of either kind.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenPair is the access/refresh pair handed to clients.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenService issues and validates token pairs against the store.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      store.Store
}

// NewTokenService creates a token service signing with secret.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, st store.Store) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      st,
	}
}

type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// IssuePair creates a fresh access/refresh pair for the admin and persists
// the refresh session.
func (s *TokenService) IssuePair(ctx context.Context, admin *store.Admin) (*TokenPair, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.accessTTL)

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: admin.Role,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign access token: %w", err)
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	if err = s.store.CreateSession(ctx, &store.RefreshSession{
		Token:     refresh,
		AdminID:   admin.ID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("auth: persist refresh session: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

// ValidateAccess parses an access token and returns the admin id and role.
func (s *TokenService) ValidateAccess(tokenString string) (string, string, error) {
	if tokenString == "" {
		return "", "", ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.Issuer != tokenIssuer {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.Role, nil
}

// Refresh exchanges a refresh token for a new pair. The presented session is
// revoked first: refresh tokens are one-time use, and a revoked, expired, or
// unknown token fails without issuing anything.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*store.Admin, *TokenPair, error) {
	session, err := s.store.SessionByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("auth: load refresh session: %w", err)
	}
	if session.Revoked || time.Now().After(session.ExpiresAt) {
		return nil, nil, ErrInvalidToken
	}

	admin, err := s.store.AdminByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("auth: load admin: %w", err)
	}

	if err = s.store.RevokeSession(ctx, refreshToken); err != nil {
		return nil, nil, fmt.Errorf("auth: revoke refresh session: %w", err)
	}
	pair, err := s.IssuePair(ctx, admin)
	if err != nil {
		return nil, nil, err
	}
	return admin, pair, nil
}

// Revoke invalidates a refresh token. Unknown tokens are not an error; logout
// must be idempotent.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.store.RevokeSession(ctx, refreshToken); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("auth: revoke session: %w", err)
	}
	return nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
