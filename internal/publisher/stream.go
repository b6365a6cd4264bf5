// Package publisher emits ingested game records onto Redis streams so
// downstream consumers can react to new games without polling the store.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// maxStreamLen bounds each stream with approximate trimming; consumers that
// lag further than this re-read from the store instead.
const maxStreamLen = 10000

// StreamPublisher writes newly inserted game records to per-league Redis
// streams. A nil *StreamPublisher is valid and publishes nothing, so
// deployments without Redis skip the event stream entirely.
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher creates a publisher on an existing Redis client.
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client}
}

// StreamKey returns the stream a league's ingested games are published to.
func StreamKey(leagueID string) string {
	return "games.ingested." + leagueID
}

// PublishGameRecord appends one record to its league's stream.
func (p *StreamPublisher) PublishGameRecord(ctx context.Context, rec models.GameRecord) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("publisher: marshaling record: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(rec.LeagueID),
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"game_id": rec.GameID,
			"league":  rec.LeagueID,
			"season":  rec.SeasonID,
			"record":  payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publisher: xadd %s: %w", StreamKey(rec.LeagueID), err)
	}
	return nil
}
