package auth

import (
	"context"
	"time"

	"swiftride.org/internal/obs"
)

// Sweeper periodically purges ledger entries whose tokens have passed natural
// expiry. A token revoked at T was issued no later than T, so it cannot
// outlive T+TTL; entries older than that can never affect a lookup again.
type Sweeper struct {
	ledger   RevocationLedger
	tokenTTL time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(ledger RevocationLedger, tokenTTL, interval time.Duration) *Sweeper {
	return &Sweeper{
		ledger:   ledger,
		tokenTTL: tokenTTL,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, sweeping at the configured interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	before := s.now().UTC().Add(-s.tokenTTL)
	purged, err := s.ledger.PurgeExpired(ctx, before)
	if err != nil {
		obs.LogRequest(map[string]any{
			"level": "error",
			"msg":   "ledger sweep failed",
			"error": err.Error(),
		})
		return
	}
	if purged > 0 {
		obs.LogRequest(map[string]any{
			"level":  "info",
			"msg":    "ledger sweep complete",
			"purged": purged,
		})
	}
}
