// Package scheduler runs the daily ingestion loop: every interval it ingests
// the previous day's games for each registered league, relying on the store's
// idempotent writes to make overlapping runs harmless.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/penaltybox/officials-stats-service/internal/registry"
	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// Ingester runs one ingestion batch; satisfied by service.Ingestion.
type Ingester interface {
	Run(ctx context.Context, leagueID, date string, seasonID int) (*models.BatchResult, error)
}

// Daily ingests yesterday's games for every registered league on a fixed
// interval.
type Daily struct {
	ingester Ingester
	leagues  *registry.Registry
	interval time.Duration
	now      func() time.Time // overridable in tests
}

// NewDaily creates the daily scheduler. An interval of zero or less selects
// 24 hours.
func NewDaily(ingester Ingester, leagues *registry.Registry, interval time.Duration) *Daily {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Daily{
		ingester: ingester,
		leagues:  leagues,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the scheduler loop. An initial cycle runs immediately; the loop
// exits when the context is canceled.
func (d *Daily) Run(ctx context.Context) {
	log.Printf("[scheduler] starting, interval %s", d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[scheduler] stopping")
			return
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

// runOnce ingests yesterday's date for every league. League failures are
// logged and do not stop the cycle.
func (d *Daily) runOnce(ctx context.Context) {
	date := d.now().AddDate(0, 0, -1).Format("2006-01-02")

	for _, key := range d.leagues.AllLeagueKeys() {
		if ctx.Err() != nil {
			return
		}
		result, err := d.ingester.Run(ctx, key, date, 0)
		if err != nil {
			log.Printf("[scheduler] %s: ingestion for %s failed: %v", key, date, err)
			continue
		}
		log.Printf("[scheduler] %s: %s ingested, %d/%d games, %d inserted",
			key, date, len(result.Games), result.TotalGames, result.Inserted)
	}
}
