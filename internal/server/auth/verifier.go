package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (*Identity, error)
}

// Verifier turns an authorization header into an Identity. It performs no
// storage I/O.
type Verifier struct {
	tokens AccessVerifier
}

// NewVerifier constructs a Verifier backed by tokens.
func NewVerifier(tokens AccessVerifier) *Verifier {
	return &Verifier{tokens: tokens}
}

// Authenticate extracts the bearer token from header and verifies it.
// It fails with common.ErrMissingCredential for absent or malformed headers
// and with common.ErrInvalidToken for bad tokens.
func (v *Verifier) Authenticate(header string) (*Identity, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	return v.tokens.VerifyAccess(token)
}

// BearerToken returns the token of a header shaped exactly "Bearer <token>".
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != common.BearerScheme || token == "" || strings.ContainsAny(token, " \t") {
		return "", common.ErrMissingCredential
	}
	return token, nil
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity stores the authenticated identity in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}
