// Package revocations records token ids that were logged out before their
// natural expiry. The Authorization Gate consults it on every request.
package revocations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/agritrack/internal/server/models"
)

type Repository interface {
	Revoke(ctx context.Context, r models.Revocation) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// PurgeExpired drops revocations whose tokens have expired by now and
	// returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
