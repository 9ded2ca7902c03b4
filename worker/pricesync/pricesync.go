package pricesync

import (
	"context"
	"time"

	"lendledger/core"

	"github.com/fox-one/pkg/logger"
)

// Sync periodically refreshes asset prices from the remote feed
type Sync struct {
	oraclez  core.IPriceOracleService
	interval time.Duration
}

// New new price sync worker
func New(oraclez core.IPriceOracleService, interval time.Duration) *Sync {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Sync{
		oraclez:  oraclez,
		interval: interval,
	}
}

// Run run worker
func (w *Sync) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "pricesync")
	ctx = logger.WithContext(ctx, log)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.oraclez.PullPrices(ctx); err != nil {
				log.WithError(err).Errorln("pull prices failed")
			}
		}
	}
}
