// Package refreshtokens implements the rotation registry: a record of
// refresh token ids (jti) that were already exchanged, so a rotated token
// cannot be replayed.
package refreshtokens

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// ErrUnknownUser reports that the token's subject no longer exists.
var ErrUnknownUser = errors.New("unknown user")

// Repository records retired refresh token ids.
type Repository interface {
	// Retire marks token.TokenID as consumed until token.ExpiresAt. It
	// reports false, without error, when the id was already retired; of any
	// number of concurrent calls for one id exactly one sees true.
	Retire(ctx context.Context, token *models.RetiredRefreshToken) (bool, error)

	// PurgeExpired drops records whose token expired before now and returns
	// how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
