package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// casAttempts bounds the optimistic-lock retries on contended official keys.
const casAttempts = 8

// RedisStore persists game and official documents as JSON values under a
// per-league namespace prefix. Same-key official upserts are serialized with
// WATCH/MULTI optimistic locking.
type RedisStore struct {
	client   *redis.Client
	prefixes map[string]string // leagueID → storage namespace
}

// NewRedisStore creates a Redis-backed store. prefixes maps each league id
// to its document namespace (e.g. "leagues/kijhl"); leagues without an entry
// fall back to "leagues/{id}".
func NewRedisStore(client *redis.Client, prefixes map[string]string) *RedisStore {
	return &RedisStore{client: client, prefixes: prefixes}
}

func (s *RedisStore) prefix(leagueID string) string {
	if p, ok := s.prefixes[leagueID]; ok {
		return p
	}
	return "leagues/" + leagueID
}

func (s *RedisStore) gameKey(leagueID, gameID string) string {
	return fmt.Sprintf("%s/games/%s", s.prefix(leagueID), gameID)
}

func (s *RedisStore) officialDocKey(leagueID, name string, seasonID int) string {
	return fmt.Sprintf("%s/officials/%s", s.prefix(leagueID), models.OfficialDocID(name, seasonID))
}

func (s *RedisStore) seasonIndexKey(leagueID string, seasonID int) string {
	return fmt.Sprintf("%s/officials-by-season/%s", s.prefix(leagueID), strconv.Itoa(seasonID))
}

func (s *RedisStore) nameIndexKey(leagueID, name string) string {
	return fmt.Sprintf("%s/officials-by-name/%s", s.prefix(leagueID), models.NormalizeOfficialName(name))
}

func (s *RedisStore) GameExists(ctx context.Context, leagueID, gameID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.gameKey(leagueID, gameID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis store: exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) PutGameIfAbsent(ctx context.Context, leagueID string, rec models.GameRecord) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("redis store: marshaling game: %w", err)
	}

	inserted, err := s.client.SetNX(ctx, s.gameKey(leagueID, rec.GameID), data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis store: put game: %w", err)
	}
	return inserted, nil
}

func (s *RedisStore) UpsertOfficial(ctx context.Context, leagueID string, delta models.OfficialDelta) (models.OfficialRecord, error) {
	key := s.officialDocKey(leagueID, delta.Name, delta.SeasonID)
	var updated models.OfficialRecord

	txf := func(tx *redis.Tx) error {
		rec, err := readOfficial(ctx, tx, key)
		if err != nil {
			return err
		}
		applyDelta(&rec, delta)

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, s.seasonIndexKey(leagueID, delta.SeasonID), key)
			pipe.SAdd(ctx, s.nameIndexKey(leagueID, delta.Name), key)
			return nil
		})
		if err == nil {
			updated = rec
		}
		return err
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if err == redis.TxFailedErr {
			continue // another writer touched the key; re-read and retry
		}
		return models.OfficialRecord{}, fmt.Errorf("redis store: upsert official: %w", err)
	}

	return models.OfficialRecord{}, fmt.Errorf("redis store: upsert official %s: contention not resolved after %d attempts", key, casAttempts)
}

// ApplyGame commits the game record and its official updates in one
// MULTI/EXEC block guarded by a WATCH on all touched keys, so a re-run or a
// racing writer observes either the whole unit or none of it.
func (s *RedisStore) ApplyGame(ctx context.Context, leagueID string, rec models.GameRecord, deltas []models.OfficialDelta) (bool, error) {
	gameKey := s.gameKey(leagueID, rec.GameID)

	keys := []string{gameKey}
	for _, d := range deltas {
		keys = append(keys, s.officialDocKey(leagueID, d.Name, d.SeasonID))
	}

	gameData, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("redis store: marshaling game: %w", err)
	}

	inserted := false

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, gameKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			inserted = false
			return nil // already ingested; touch nothing
		}

		type pending struct {
			key  string
			data []byte
			d    models.OfficialDelta
		}
		updates := make([]pending, 0, len(deltas))
		for _, d := range deltas {
			key := s.officialDocKey(leagueID, d.Name, d.SeasonID)
			cur, err := readOfficial(ctx, tx, key)
			if err != nil {
				return err
			}
			applyDelta(&cur, d)
			data, err := json.Marshal(cur)
			if err != nil {
				return err
			}
			updates = append(updates, pending{key: key, data: data, d: d})
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey, gameData, 0)
			for _, u := range updates {
				pipe.Set(ctx, u.key, u.data, 0)
				pipe.SAdd(ctx, s.seasonIndexKey(leagueID, u.d.SeasonID), u.key)
				pipe.SAdd(ctx, s.nameIndexKey(leagueID, u.d.Name), u.key)
			}
			return nil
		})
		if err == nil {
			inserted = true
		}
		return err
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, keys...)
		if err == nil {
			return inserted, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return false, fmt.Errorf("redis store: apply game %s: %w", rec.GameID, err)
	}

	return false, fmt.Errorf("redis store: apply game %s: contention not resolved after %d attempts", rec.GameID, casAttempts)
}

func (s *RedisStore) OfficialsForSeason(ctx context.Context, leagueID string, seasonID int) ([]models.OfficialRecord, error) {
	keys, err := s.client.SMembers(ctx, s.seasonIndexKey(leagueID, seasonID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: season index: %w", err)
	}
	return s.readOfficials(ctx, keys)
}

func (s *RedisStore) CareerForOfficial(ctx context.Context, leagueID, name string) ([]models.OfficialRecord, error) {
	keys, err := s.client.SMembers(ctx, s.nameIndexKey(leagueID, name)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: name index: %w", err)
	}

	records, err := s.readOfficials(ctx, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].SeasonID > records[j].SeasonID })
	return records, nil
}

func (s *RedisStore) readOfficials(ctx context.Context, keys []string) ([]models.OfficialRecord, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: mget officials: %w", err)
	}

	records := make([]models.OfficialRecord, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // index entry for a deleted document
		}
		var rec models.OfficialRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("redis store: corrupt official document: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// readOfficial loads an official document inside a watched transaction,
// returning a zero record when the key does not exist yet.
func readOfficial(ctx context.Context, tx *redis.Tx, key string) (models.OfficialRecord, error) {
	var rec models.OfficialRecord
	data, err := tx.Get(ctx, key).Result()
	if err == redis.Nil {
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return rec, fmt.Errorf("corrupt official document %s: %w", key, err)
	}
	return rec, nil
}
