// Package service ties a batch together: validate the request, fetch and
// parse the day's games, persist them idempotently, and publish what was
// newly inserted.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/penaltybox/officials-stats-service/internal/aggregate"
	"github.com/penaltybox/officials-stats-service/internal/ingest"
	"github.com/penaltybox/officials-stats-service/internal/registry"
	"github.com/penaltybox/officials-stats-service/internal/store"
	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// ErrInvalidDate is returned when the requested date is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// GamePublisher receives newly inserted game records. A nil publisher is
// allowed and drops events.
type GamePublisher interface {
	PublishGameRecord(ctx context.Context, rec models.GameRecord) error
}

// Ingestion is the batch ingestion entry point used by the HTTP API and the
// scheduler.
type Ingestion struct {
	orchestrator *ingest.Orchestrator
	leagues      *registry.Registry
	store        store.Store
	publisher    GamePublisher
}

// NewIngestion creates the ingestion service. publisher may be nil.
func NewIngestion(orchestrator *ingest.Orchestrator, leagues *registry.Registry, st store.Store, publisher GamePublisher) *Ingestion {
	return &Ingestion{
		orchestrator: orchestrator,
		leagues:      leagues,
		store:        st,
		publisher:    publisher,
	}
}

// Run ingests one league day. seasonID of zero selects the league's current
// season. Per-game store failures are recorded on the result and do not
// abort the batch; games already ingested count as silent no-ops. The
// returned result is valid even when every game failed.
func (s *Ingestion) Run(ctx context.Context, leagueID, date string, seasonID int) (*models.BatchResult, error) {
	start := time.Now()

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	module, err := s.leagues.GetModule(leagueID)
	if err != nil {
		return nil, ingest.ErrUnknownLeague
	}
	if seasonID == 0 {
		seasonID = module.Config().CurrentSeason
	}

	result, err := s.orchestrator.FetchBatch(ctx, leagueID, day, seasonID)
	if err != nil {
		return nil, err
	}
	result.RunID = uuid.New().String()

	for i := range result.Games {
		game := result.Games[i]
		rec := models.GameRecord{
			Game:       game,
			LeagueID:   leagueID,
			SeasonID:   seasonID,
			IngestDate: date,
			IngestedAt: time.Now().UTC(),
		}
		deltas := aggregate.OfficialDeltas(&game, seasonID)

		inserted, err := s.store.ApplyGame(ctx, leagueID, rec, deltas)
		if err != nil {
			log.Printf("[service] %s: storing game %s failed: %v", leagueID, game.GameID, err)
			result.AddError(game.GameID, models.StageStore, err)
			continue
		}
		if !inserted {
			continue
		}
		result.Inserted++

		if s.publisher != nil {
			if err := s.publisher.PublishGameRecord(ctx, rec); err != nil {
				// Best-effort; the record is already durable.
				log.Printf("[service] %s: publishing game %s failed: %v", leagueID, game.GameID, err)
			}
		}
	}

	result.ElapsedSeconds = time.Since(start).Seconds()
	log.Printf("[service] %s %s: %d games, %d inserted, %d errors in %.2fs",
		leagueID, date, len(result.Games), result.Inserted, len(result.Errors), result.ElapsedSeconds)
	return result, nil
}
