// Package services contains server-side business logic. This file implements
// UserService, which registers identities, verifies credentials and issues
// and rotates token pairs.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Tokens *auth.TokenPair
	User   *models.PublicUser
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint tokens
// - Refresh: exchange a refresh token for a new pair
// - Me: resolve the authenticated subject
type UserService struct {
	users   users.Repository
	retired refreshtokens.Repository
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenService
	log     logging.Logger
	now     func() time.Time
}

// NewUserService constructs a UserService. retired may be nil, in which case
// refresh tokens stay valid until they expire even after being exchanged.
func NewUserService(u users.Repository, retired refreshtokens.Repository, hasher *auth.PasswordHasher, tokens *auth.TokenService, log logging.Logger) *UserService {
	return &UserService{
		users:   u,
		retired: retired,
		hasher:  hasher,
		tokens:  tokens,
		log:     log,
		now:     time.Now,
	}
}

// Register creates a new identity. The store's unique email constraint is
// the only duplicate check, so concurrent registrations of one email yield
// exactly one success and common.ErrorConflict for the rest.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.PublicUser, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if !errors.Is(err, common.ErrorValidation) {
			s.log.Error(ctx, "hash password", "error", err)
		}
		return nil, err
	}

	u, err := s.users.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		s.log.Error(ctx, "create user", "error", err)
		return nil, fmt.Errorf("%w: create user", common.ErrorInternal)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u.Public(), nil
}

// Login verifies email and password and issues a token pair. An unknown
// email and a wrong password fail with the same common.ErrorUnauthorized
// value after the same amount of bcrypt work.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.SimulateVerify(password)
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "lookup user", "error", err)
		return nil, fmt.Errorf("%w: lookup user", common.ErrorInternal)
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "verify password", "user_id", u.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.tokens.IssuePair(u.ID, u.Email)
	if err != nil {
		s.log.Error(ctx, "issue tokens", "user_id", u.ID, "error", err)
		return nil, err
	}

	return &LoginResult{Tokens: pair, User: u.Public()}, nil
}

// Refresh exchanges a valid refresh token for a new pair. With a rotation
// registry configured the presented token is retired first and any later
// use of it fails.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", common.ErrorValidation)
	}

	if s.retired == nil {
		pair, err := s.tokens.Refresh(refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
			}
			return nil, err
		}
		return pair, nil
	}

	claims, err := s.tokens.RefreshClaims(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}

	fresh, err := s.retired.Retire(ctx, &models.RetiredRefreshToken{
		TokenID:   claims.ID,
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		if errors.Is(err, refreshtokens.ErrUnknownUser) {
			s.log.Warn(ctx, "refresh for removed user", "user_id", claims.Subject, "error", err)
			return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
		}
		s.log.Error(ctx, "retire refresh token", "user_id", claims.Subject, "error", err)
		return nil, fmt.Errorf("%w: retire refresh token", common.ErrorInternal)
	}
	if !fresh {
		s.log.Warn(ctx, "refresh token reused", "user_id", claims.Subject, "token_id", claims.ID)
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}

	id := claims.Identity()
	return s.tokens.IssuePair(id.SubjectID, id.Email)
}

// Me returns the public view of the authenticated subject.
func (s *UserService) Me(ctx context.Context, subjectID string) (*models.PublicUser, error) {
	u, err := s.users.GetUserByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "lookup user", "user_id", subjectID, "error", err)
		return nil, fmt.Errorf("%w: lookup user", common.ErrorInternal)
	}
	return u.Public(), nil
}

// PurgeRetiredTokens drops rotation records of tokens that have expired.
// It is a no-op without a rotation registry.
func (s *UserService) PurgeRetiredTokens(ctx context.Context) (int64, error) {
	if s.retired == nil {
		return 0, nil
	}
	return s.retired.PurgeExpired(ctx, s.now())
}
