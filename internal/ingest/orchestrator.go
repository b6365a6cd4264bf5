// Package ingest coordinates one ingestion batch: resolve the day's game ids
// from the league's schedule feed, then fetch and parse each game summary
// with bounded concurrency.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/penaltybox/officials-stats-service/internal/aggregate"
	"github.com/penaltybox/officials-stats-service/internal/envelope"
	"github.com/penaltybox/officials-stats-service/internal/feed"
	"github.com/penaltybox/officials-stats-service/internal/registry"
	"github.com/penaltybox/officials-stats-service/pkg/contracts"
	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// DefaultConcurrency caps the per-batch worker pool when no explicit limit is
// configured. The pool never exceeds the number of games in the batch.
const DefaultConcurrency = 16

// ErrUnknownLeague is returned when a batch names a league no module handles.
var ErrUnknownLeague = errors.New("unknown league")

// Orchestrator runs schedule resolution and parallel game-summary fetches
// for one league at a time.
type Orchestrator struct {
	client  *feed.Client
	leagues *registry.Registry
	limit   int
}

// New creates an orchestrator. A concurrency of zero or less selects
// DefaultConcurrency.
func New(client *feed.Client, leagues *registry.Registry, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		client:  client,
		leagues: leagues,
		limit:   concurrency,
	}
}

// FetchBatch resolves the game ids for one league day and fetches every game
// summary. Individual game failures are recorded in the result's error list
// and never abort the batch; a schedule-level failure yields a zero-game
// result carrying the error. The returned games keep schedule order
// regardless of fetch completion order.
func (o *Orchestrator) FetchBatch(ctx context.Context, leagueID string, date time.Time, seasonID int) (*models.BatchResult, error) {
	module, err := o.leagues.GetModule(leagueID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeague, leagueID)
	}
	cfg := module.Config()

	result := &models.BatchResult{
		LeagueID: leagueID,
		SeasonID: seasonID,
		Date:     date.Format("2006-01-02"),
	}

	scheduleURL := module.ScheduleURL(seasonID, date.Month())
	decoded, err := o.client.FetchValue(ctx, scheduleURL, cfg.Headers)
	if err != nil {
		log.Printf("[ingest] %s: schedule fetch failed: %v", leagueID, err)
		result.AddError("", scheduleStage(err), err)
		return result, nil
	}

	gameIDs, err := module.ExtractScheduleGameIDs(decoded, date)
	if err != nil {
		log.Printf("[ingest] %s: schedule decode failed: %v", leagueID, err)
		result.AddError("", models.StageDecode, err)
		return result, nil
	}

	result.TotalGames = len(gameIDs)
	if len(gameIDs) == 0 {
		log.Printf("[ingest] %s: no games scheduled on %s", leagueID, result.Date)
		return result, nil
	}

	games := o.fetchGames(ctx, module, cfg.Headers, gameIDs, result)
	result.Games = games
	result.SeverityScore, result.MostPenalizedTeam = aggregate.Summarize(games)

	log.Printf("[ingest] %s: fetched %d/%d games for %s",
		leagueID, len(games), len(gameIDs), result.Date)
	return result, nil
}

type fetchOutcome struct {
	game  *models.Game
	stage string
	err   error
}

// fetchGames runs the worker pool over the batch's game ids. The pool size is
// the smaller of the configured limit and the batch size.
func (o *Orchestrator) fetchGames(ctx context.Context, module contracts.LeagueModule, headers map[string]string, gameIDs []string, result *models.BatchResult) []models.Game {
	workers := o.limit
	if len(gameIDs) < workers {
		workers = len(gameIDs)
	}

	outcomes := make([]fetchOutcome, len(gameIDs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = o.fetchOne(ctx, module, headers, gameIDs[i])
			}
		}()
	}
	for i := range gameIDs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	games := make([]models.Game, 0, len(gameIDs))
	for i, out := range outcomes {
		if out.err != nil {
			result.AddError(gameIDs[i], out.stage, out.err)
			continue
		}
		games = append(games, *out.game)
	}
	return games
}

// fetchOne retrieves and normalizes a single game summary, attributing any
// failure to the fetch, decode, or parse stage. Parsers that cannot recover
// the id from the payload get it backfilled from the schedule.
func (o *Orchestrator) fetchOne(ctx context.Context, module contracts.LeagueModule, headers map[string]string, gameID string) fetchOutcome {
	raw, err := o.client.Fetch(ctx, module.GameSummaryURL(gameID), headers)
	if err != nil {
		return fetchOutcome{stage: models.StageFetch, err: err}
	}

	decoded, err := envelope.DecodeObject(raw)
	if err != nil {
		return fetchOutcome{stage: models.StageDecode, err: err}
	}

	game, err := module.ParseGameSummary(decoded)
	if err != nil {
		return fetchOutcome{stage: models.StageParse, err: err}
	}
	if game.GameID == "" {
		game.GameID = gameID
	}
	return fetchOutcome{game: game}
}

// scheduleStage classifies a schedule retrieval failure: envelope problems
// are decode failures, everything else is the fetch itself.
func scheduleStage(err error) string {
	if errors.Is(err, envelope.ErrNoPayload) {
		return models.StageDecode
	}
	return models.StageFetch
}
