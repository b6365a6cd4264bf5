package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/penaltybox/officials-stats-service/internal/feed"
	"github.com/penaltybox/officials-stats-service/internal/ingest"
	"github.com/penaltybox/officials-stats-service/internal/registry"
	"github.com/penaltybox/officials-stats-service/internal/store"
	"github.com/penaltybox/officials-stats-service/pkg/contracts"
	"github.com/penaltybox/officials-stats-service/pkg/models"
)

type fakeModule struct {
	baseURL string
}

func (f *fakeModule) GetLeagueKey() string   { return "fake" }
func (f *fakeModule) GetDisplayName() string { return "Fake League" }

func (f *fakeModule) Config() contracts.LeagueConfig {
	return contracts.LeagueConfig{
		LeagueID:      "fake",
		Name:          "Fake League",
		StoragePrefix: "leagues/fake",
		CurrentSeason: 7,
	}
}

func (f *fakeModule) ScheduleURL(seasonID int, month time.Month) string {
	return f.baseURL + "/schedule"
}

func (f *fakeModule) GameSummaryURL(gameID string) string {
	return f.baseURL + "/game/" + gameID
}

func (f *fakeModule) ExtractScheduleGameIDs(decoded interface{}, date time.Time) ([]string, error) {
	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, errors.New("schedule payload is not an object")
	}
	raw, _ := obj["games"].([]interface{})
	var ids []string
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeModule) ParseGameSummary(decoded map[string]interface{}) (*models.Game, error) {
	num := func(key string) int {
		if v, ok := decoded[key].(float64); ok {
			return int(v)
		}
		return 0
	}
	str := func(key string) string {
		if v, ok := decoded[key].(string); ok {
			return v
		}
		return ""
	}
	return &models.Game{
		HomeTeamAbbr: str("home_abbr"),
		AwayTeamAbbr: str("away_abbr"),
		HomePims:     num("home_pims"),
		AwayPims:     num("away_pims"),
		Referees:     [2]models.Official{{Name: str("referee")}, {Name: models.UnknownOfficial}},
		Linesmen:     [2]models.Official{{Name: models.UnknownOfficial}, {Name: models.UnknownOfficial}},
	}, nil
}

// capturePublisher records every published game record.
type capturePublisher struct {
	records []models.GameRecord
}

func (p *capturePublisher) PublishGameRecord(ctx context.Context, rec models.GameRecord) error {
	p.records = append(p.records, rec)
	return nil
}

// failingStore wraps a Store and fails ApplyGame for one game id.
type failingStore struct {
	store.Store
	failGameID string
}

func (s *failingStore) ApplyGame(ctx context.Context, leagueID string, rec models.GameRecord, deltas []models.OfficialDelta) (bool, error) {
	if rec.GameID == s.failGameID {
		return false, errors.New("backend unavailable")
	}
	return s.Store.ApplyGame(ctx, leagueID, rec, deltas)
}

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	wrap := func(json string) string { return "angular.callbacks._2(" + json + ")" }
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/schedule":
			fmt.Fprint(w, wrap(`{"games":["A","B"]}`))
		case "/game/A":
			fmt.Fprint(w, wrap(`{"home_abbr":"AAA","away_abbr":"XXX","home_pims":10,"away_pims":4,"referee":"J. Smith"}`))
		case "/game/B":
			fmt.Fprint(w, wrap(`{"home_abbr":"BBB","away_abbr":"YYY","home_pims":2,"away_pims":4,"referee":"J. Smith"}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestService(srvURL string, st store.Store, pub GamePublisher) *Ingestion {
	leagues := registry.NewEmpty()
	leagues.Register(&fakeModule{baseURL: srvURL})
	orch := ingest.New(feed.New(), leagues, 4)
	return NewIngestion(orch, leagues, st, pub)
}

func TestRunInvalidDate(t *testing.T) {
	svc := newTestService("http://unused", store.NewMemoryStore(), nil)
	_, err := svc.Run(context.Background(), "fake", "01/10/2026", 0)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("got %v, want ErrInvalidDate", err)
	}
}

func TestRunUnknownLeague(t *testing.T) {
	svc := newTestService("http://unused", store.NewMemoryStore(), nil)
	_, err := svc.Run(context.Background(), "nope", "2026-01-10", 0)
	if !errors.Is(err, ingest.ErrUnknownLeague) {
		t.Fatalf("got %v, want ErrUnknownLeague", err)
	}
}

func TestRunIngestsAndPublishes(t *testing.T) {
	srv := newFeedServer(t)
	defer srv.Close()

	st := store.NewMemoryStore()
	pub := &capturePublisher{}
	svc := newTestService(srv.URL, st, pub)

	result, err := svc.Run(context.Background(), "fake", "2026-01-10", 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Inserted != 2 || len(result.Errors) != 0 {
		t.Fatalf("got inserted=%d errors=%d", result.Inserted, len(result.Errors))
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if len(pub.records) != 2 {
		t.Fatalf("published %d records, want 2", len(pub.records))
	}
	// Season defaulted from the league config.
	if pub.records[0].SeasonID != 7 {
		t.Errorf("season = %d, want the config default 7", pub.records[0].SeasonID)
	}

	// J. Smith refereed both games: 14 + 6 penalty minutes.
	career, err := st.CareerForOfficial(context.Background(), "fake", "J. Smith")
	if err != nil {
		t.Fatalf("CareerForOfficial: %v", err)
	}
	if len(career) != 1 {
		t.Fatalf("got %d career records, want 1", len(career))
	}
	if career[0].GamesCalled != 2 || career[0].TotalPims != 20 || career[0].AvgPims != 10.0 {
		t.Errorf("got games=%d pims=%d avg=%v, want 2/20/10.0",
			career[0].GamesCalled, career[0].TotalPims, career[0].AvgPims)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	srv := newFeedServer(t)
	defer srv.Close()

	st := store.NewMemoryStore()
	svc := newTestService(srv.URL, st, nil)
	ctx := context.Background()

	if _, err := svc.Run(ctx, "fake", "2026-01-10", 0); err != nil {
		t.Fatalf("first run: %v", err)
	}
	rerun, err := svc.Run(ctx, "fake", "2026-01-10", 0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if rerun.Inserted != 0 {
		t.Errorf("rerun inserted %d games, want 0", rerun.Inserted)
	}
	if len(rerun.Errors) != 0 {
		t.Errorf("rerun produced errors: %+v", rerun.Errors)
	}

	career, _ := st.CareerForOfficial(ctx, "fake", "J. Smith")
	if career[0].GamesCalled != 2 || career[0].TotalPims != 20 {
		t.Errorf("rerun changed totals: games=%d pims=%d, want 2/20",
			career[0].GamesCalled, career[0].TotalPims)
	}
}

func TestRunStoreFailureIsolated(t *testing.T) {
	srv := newFeedServer(t)
	defer srv.Close()

	st := &failingStore{Store: store.NewMemoryStore(), failGameID: "A"}
	svc := newTestService(srv.URL, st, nil)

	result, err := svc.Run(context.Background(), "fake", "2026-01-10", 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", result.Inserted)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(result.Errors))
	}
	if result.Errors[0].GameID != "A" || result.Errors[0].Stage != models.StageStore {
		t.Errorf("error = %+v, want game A at store stage", result.Errors[0])
	}
}
