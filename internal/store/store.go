// Package store defines the persistence contract the ingestion pipeline
// depends on, plus the Redis, Postgres, and in-memory backends.
//
// The contract is deliberately narrow: an existence check, an idempotent
// put-if-absent for game records, an accumulating upsert for official
// records, and an ApplyGame that commits one game plus its official updates
// as a single unit. All running-total mutation goes through these calls;
// nothing else in the service writes to the same records.
package store

import (
	"context"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// Store is the durable keyed document storage for game and official records.
// Implementations must serialize concurrent upserts against the same
// official key so no accumulation is lost.
type Store interface {
	// GameExists reports whether a game record was already ingested.
	GameExists(ctx context.Context, leagueID, gameID string) (bool, error)

	// PutGameIfAbsent stores a game record unless its key already exists.
	// Returns true when the record was inserted by this call.
	PutGameIfAbsent(ctx context.Context, leagueID string, rec models.GameRecord) (bool, error)

	// UpsertOfficial accumulates a delta into an official's season record,
	// creating it on first sight, and returns the updated record. The
	// read-modify-write is atomic per key.
	UpsertOfficial(ctx context.Context, leagueID string, delta models.OfficialDelta) (models.OfficialRecord, error)

	// ApplyGame commits the game record and all of its official deltas as
	// one unit. When the game already exists nothing is touched and
	// inserted is false; this is the no-double-count gate for re-runs.
	ApplyGame(ctx context.Context, leagueID string, rec models.GameRecord, deltas []models.OfficialDelta) (inserted bool, err error)

	// OfficialsForSeason returns every official record for a league season,
	// unsorted; callers sort and filter client-side.
	OfficialsForSeason(ctx context.Context, leagueID string, seasonID int) ([]models.OfficialRecord, error)

	// CareerForOfficial returns all season records for one official name,
	// most recent season first.
	CareerForOfficial(ctx context.Context, leagueID, name string) ([]models.OfficialRecord, error)
}

// applyDelta folds one delta into a record and refreshes the average. Shared
// by the backends that compute the new record client-side.
func applyDelta(rec *models.OfficialRecord, delta models.OfficialDelta) {
	rec.Name = delta.Name
	rec.Role = delta.Role
	rec.SeasonID = delta.SeasonID
	rec.GamesCalled += delta.Games
	rec.TotalPims += delta.Pims
	rec.Recompute()
}
