package auth

import (
	"context"
	"time"
)

// Store describes persistence operations required by the auth subsystem.
type Store interface {
	Users() UserStore
	Captains() CaptainStore
	Ledger() RevocationLedger
}

// UserStore manages rider accounts.
//
// Find is the public projection: the returned record never carries the
// password hash. FindByEmail is the internal projection used only by login;
// it is the single read path that exposes the hash.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// CaptainStore manages driver accounts with the same two projections.
type CaptainStore interface {
	Create(ctx context.Context, c *Captain) error
	Find(ctx context.Context, id string) (*Captain, error)
	FindByEmail(ctx context.Context, email string) (*Captain, error)
}

// RevocationLedger is the append-only set of revoked token strings.
type RevocationLedger interface {
	// Revoke inserts the token. Inserting an already-revoked token is a
	// no-op, not an error.
	Revoke(ctx context.Context, token string) error
	// IsRevoked is a point lookup, checked before signature verification on
	// every authenticated request.
	IsRevoked(ctx context.Context, token string) (bool, error)
	// PurgeExpired deletes entries revoked before the given instant. Entries
	// that old describe tokens past natural expiry and can never matter again.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
