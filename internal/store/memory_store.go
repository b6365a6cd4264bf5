package store

import (
	"context"
	"sort"
	"sync"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// MemoryStore is a mutex-guarded in-memory Store, used in tests and for
// local development without a backing service.
type MemoryStore struct {
	mu        sync.Mutex
	games     map[string]models.GameRecord    // key: leagueID + "/" + gameID
	officials map[string]models.OfficialRecord // key: leagueID + "/" + OfficialDocID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:     make(map[string]models.GameRecord),
		officials: make(map[string]models.OfficialRecord),
	}
}

func gameKey(leagueID, gameID string) string {
	return leagueID + "/" + gameID
}

func officialKey(leagueID, name string, seasonID int) string {
	return leagueID + "/" + models.OfficialDocID(name, seasonID)
}

func (s *MemoryStore) GameExists(ctx context.Context, leagueID, gameID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.games[gameKey(leagueID, gameID)]
	return ok, nil
}

func (s *MemoryStore) PutGameIfAbsent(ctx context.Context, leagueID string, rec models.GameRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putGameLocked(leagueID, rec), nil
}

func (s *MemoryStore) putGameLocked(leagueID string, rec models.GameRecord) bool {
	key := gameKey(leagueID, rec.GameID)
	if _, ok := s.games[key]; ok {
		return false
	}
	s.games[key] = rec
	return true
}

func (s *MemoryStore) UpsertOfficial(ctx context.Context, leagueID string, delta models.OfficialDelta) (models.OfficialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertLocked(leagueID, delta), nil
}

func (s *MemoryStore) upsertLocked(leagueID string, delta models.OfficialDelta) models.OfficialRecord {
	key := officialKey(leagueID, delta.Name, delta.SeasonID)
	rec := s.officials[key]
	applyDelta(&rec, delta)
	s.officials[key] = rec
	return rec
}

func (s *MemoryStore) ApplyGame(ctx context.Context, leagueID string, rec models.GameRecord, deltas []models.OfficialDelta) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.putGameLocked(leagueID, rec) {
		return false, nil
	}
	for _, d := range deltas {
		s.upsertLocked(leagueID, d)
	}
	return true, nil
}

func (s *MemoryStore) OfficialsForSeason(ctx context.Context, leagueID string, seasonID int) ([]models.OfficialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.OfficialRecord
	prefix := leagueID + "/"
	for key, rec := range s.officials {
		if rec.SeasonID == seasonID && len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) CareerForOfficial(ctx context.Context, leagueID, name string) ([]models.OfficialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm := models.NormalizeOfficialName(name)
	var out []models.OfficialRecord
	prefix := leagueID + "/"
	for key, rec := range s.officials {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && models.NormalizeOfficialName(rec.Name) == norm {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeasonID > out[j].SeasonID })
	return out, nil
}

// GameCount reports how many game records are stored; test helper.
func (s *MemoryStore) GameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}
