package whl

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

const scheduleFixture = `{
  "SiteKit": {
    "Schedule": [
      {"game_id": "1022630", "date_played": "2025-11-06"},
      {"game_id": "1022633", "date_played": "2025-11-07"},
      {"game_id": 1022634, "date_played": "2025-11-07"},
      {"date_played": "2025-11-07"},
      {"game_id": "1022640", "date_played": "2025-11-08"}
    ]
  }
}`

func TestExtractScheduleGameIDs(t *testing.T) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(scheduleFixture), &decoded); err != nil {
		t.Fatal(err)
	}

	date := time.Date(2025, time.November, 7, 0, 0, 0, 0, time.UTC)
	ids, err := New().ExtractScheduleGameIDs(decoded, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"1022633", "1022634"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestExtractScheduleGameIDsBadStructure(t *testing.T) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(`{"SiteKit": {}}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if _, err := New().ExtractScheduleGameIDs(decoded, time.Now()); err == nil {
		t.Error("expected error when SiteKit.Schedule is missing")
	}
}

const gameSummaryFixture = `{
  "GC": {
    "Gamesummary": {
      "meta": {"id": 1022633, "status": "Final"},
      "home": {"name": "Kamloops Blazers", "code": "KAM"},
      "visitor": {"name": "Kelowna Rockets", "code": "KEL"},
      "totalGoals": {"home": "5", "visitor": "3"},
      "pimTotal": {"home": "6", "visitor": "4"},
      "venue": "Sandman Centre",
      "attendance": "4356",
      "officials": [
        {"first_name": "Mike", "last_name": "Langin", "jersey_number": "26", "description": "Referee"},
        {"first_name": "Adam", "last_name": "Griffiths", "jersey_number": "40", "description": "Linesman"},
        {"first_name": "Reid", "last_name": "Anderson", "jersey_number": "37", "description": "Referee"},
        {"first_name": "Cody", "last_name": "Huschle", "jersey_number": "91", "description": "Linesman"},
        {"first_name": "Off", "last_name": "IceGuy", "description": "Game Timekeeper"}
      ]
    }
  }
}`

func TestParseGameSummary(t *testing.T) {
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(gameSummaryFixture), &decoded); err != nil {
		t.Fatal(err)
	}

	game, err := New().ParseGameSummary(decoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if game.GameID != "1022633" {
		t.Errorf("GameID = %q, want 1022633", game.GameID)
	}
	if game.HomeTeamAbbr != "KAM" || game.AwayTeamAbbr != "KEL" {
		t.Errorf("abbrs = %s/%s", game.HomeTeamAbbr, game.AwayTeamAbbr)
	}
	// every count in this feed is string-typed
	if game.HomeScore != 5 || game.AwayScore != 3 {
		t.Errorf("score = %d-%d, want 5-3", game.HomeScore, game.AwayScore)
	}
	if game.HomePims != 6 || game.AwayPims != 4 {
		t.Errorf("pims = %d/%d, want 6/4", game.HomePims, game.AwayPims)
	}
	if game.Attendance != 4356 || game.Venue != "Sandman Centre" {
		t.Errorf("venue/attendance = %s/%d", game.Venue, game.Attendance)
	}

	if game.Referees[0].Name != "Mike Langin" || game.Referees[1].Name != "Reid Anderson" {
		t.Errorf("referees = %+v", game.Referees)
	}
	if game.Linesmen[0].Name != "Adam Griffiths" || game.Linesmen[1].Name != "Cody Huschle" {
		t.Errorf("linesmen = %+v", game.Linesmen)
	}
}

// The off-ice crew shares the officials list; only on-ice roles are kept.
func TestClassifyOfficialsSkipsUnrecognizedRoles(t *testing.T) {
	list := []interface{}{
		map[string]interface{}{"first_name": "A", "last_name": "B", "description": "Game Timekeeper"},
		map[string]interface{}{"first_name": "C", "last_name": "D", "description": "Referee"},
	}

	refs, lines := classifyOfficials(list)

	if refs[0].Name != "C D" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].Name != models.UnknownOfficial {
		t.Errorf("refs[1] = %+v, want sentinel", refs[1])
	}
	for _, l := range lines {
		if l.Name != models.UnknownOfficial {
			t.Errorf("linesman = %+v, want sentinel", l)
		}
	}
}

func TestParseGameSummaryMissingGamesummary(t *testing.T) {
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(`{"GC": {}}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if _, err := New().ParseGameSummary(decoded); err == nil {
		t.Error("expected error when Gamesummary is absent")
	}
}

// A sparse summary still normalizes with defaults.
func TestParseGameSummarySparsePayload(t *testing.T) {
	var decoded map[string]interface{}
	payload := `{"GC": {"Gamesummary": {"home": {"name": "Kamloops Blazers"}}}}`
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatal(err)
	}

	game, err := New().ParseGameSummary(decoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if game.HomePims != 0 || game.AwayScore != 0 {
		t.Errorf("expected zero defaults, got %+v", game)
	}
	if game.Referees[0].Name != models.UnknownOfficial {
		t.Errorf("expected sentinel referees, got %+v", game.Referees)
	}
}

func TestURLBuilders(t *testing.T) {
	m := New()

	sched := m.ScheduleURL(289, time.November)
	for _, want := range []string{"feed=modulekit", "season_id=289", "month=11", "client_code=whl"} {
		if !strings.Contains(sched, want) {
			t.Errorf("ScheduleURL missing %q: %s", want, sched)
		}
	}

	detail := m.GameSummaryURL("1022633")
	for _, want := range []string{"feed=gc", "game_id=1022633", "tab=gamesummary"} {
		if !strings.Contains(detail, want) {
			t.Errorf("GameSummaryURL missing %q: %s", want, detail)
		}
	}
}
