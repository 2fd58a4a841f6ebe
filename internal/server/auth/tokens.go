// Package auth holds the credential primitives of the server: the bcrypt
// password hasher, the two-secret JWT token service and the bearer-token
// identity verifier shared by the HTTP and gRPC transports.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrSecretsMisconfigured is returned by NewTokenService when a signing secret
// is empty or both secrets are the same.
var ErrSecretsMisconfigured = errors.New("access and refresh secrets must be non-empty and distinct")

// Identity is the authenticated subject recovered from a verified token.
type Identity struct {
	SubjectID string
	Email     string
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims is the signed claim set. Subject carries the user id, ID a unique
// token id (jti) used by the optional rotation registry.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity returns the subject part of the claim set.
func (c *Claims) Identity() *Identity {
	return &Identity{SubjectID: c.Subject, Email: c.Email}
}

// TokenService issues and verifies access/refresh token pairs. Access and
// refresh tokens are signed with different secrets, so one never verifies
// as the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// Option customizes a TokenService.
type Option func(*TokenService)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService constructs a TokenService. Secrets are copied and never
// mutated afterwards.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" || accessSecret == refreshSecret {
		return nil, ErrSecretsMisconfigured
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive: access=%s refresh=%s", accessTTL, refreshTTL)
	}

	s := &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// IssuePair signs a fresh access token and refresh token for the subject.
func (s *TokenService) IssuePair(subjectID, email string) (*TokenPair, error) {
	now := s.now()

	access, err := s.sign(subjectID, email, now, s.accessTTL, s.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: sign access token: %v", common.ErrorInternal, err)
	}

	refresh, err := s.sign(subjectID, email, now, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: sign refresh token: %v", common.ErrorInternal, err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks an access token and returns its identity.
func (s *TokenService) VerifyAccess(token string) (*Identity, error) {
	claims, err := s.parse(token, s.accessSecret)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

// VerifyRefresh checks a refresh token and returns its identity.
func (s *TokenService) VerifyRefresh(token string) (*Identity, error) {
	claims, err := s.RefreshClaims(token)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

// RefreshClaims checks a refresh token and returns the full claim set,
// including the token id and expiry.
func (s *TokenService) RefreshClaims(token string) (*Claims, error) {
	return s.parse(token, s.refreshSecret)
}

// Refresh verifies a refresh token and issues a new pair for the same
// identity. The presented token is not revoked.
func (s *TokenService) Refresh(refreshToken string) (*TokenPair, error) {
	id, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	return s.IssuePair(id.SubjectID, id.Email)
}

func (s *TokenService) sign(subjectID, email string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	})

	return token.SignedString(secret)
}

func (s *TokenService) parse(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
