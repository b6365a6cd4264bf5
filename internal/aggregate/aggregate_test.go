package aggregate

import (
	"testing"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

func game(id string, homeAbbr string, homePims int, awayAbbr string, awayPims int) models.Game {
	return models.Game{
		GameID:       id,
		HomeTeamAbbr: homeAbbr,
		AwayTeamAbbr: awayAbbr,
		HomePims:     homePims,
		AwayPims:     awayPims,
	}
}

// Scenario from the daily sheet: game 101 at 10/14, game 102 at 6/4.
func TestSummarize(t *testing.T) {
	games := []models.Game{
		game("101", "TRL", 10, "NEL", 14),
		game("102", "KAM", 6, "KEL", 4),
	}

	severity, team := Summarize(games)

	if severity != 17.0 {
		t.Errorf("severity = %v, want 17.0", severity)
	}
	if team != "NEL" {
		t.Errorf("most penalized = %s, want NEL (away side of game 101)", team)
	}
}

func TestSummarizeEmptyBatch(t *testing.T) {
	severity, team := Summarize(nil)
	if severity != 0 || team != "" {
		t.Errorf("empty batch = (%v, %q), want (0, \"\")", severity, team)
	}
}

func TestSummarizeRoundsToOneDecimal(t *testing.T) {
	games := []models.Game{
		game("1", "A", 5, "B", 0),
		game("2", "C", 4, "D", 0),
		game("3", "E", 2, "F", 0),
	}

	severity, _ := Summarize(games)
	if severity != 3.7 { // 11/3 = 3.666...
		t.Errorf("severity = %v, want 3.7", severity)
	}
}

// Severity and (absent exact ties) the most-penalized team must not depend
// on the order fetches completed.
func TestSummarizeOrderIndependent(t *testing.T) {
	games := []models.Game{
		game("1", "AAA", 2, "BBB", 8),
		game("2", "CCC", 20, "DDD", 6),
		game("3", "EEE", 12, "FFF", 4),
	}

	perms := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, perm := range perms {
		shuffled := make([]models.Game, 0, len(games))
		for _, i := range perm {
			shuffled = append(shuffled, games[i])
		}

		severity, team := Summarize(shuffled)
		if severity != 17.3 { // (10+26+16)/3 = 17.333...
			t.Errorf("perm %v: severity = %v, want 17.3", perm, severity)
		}
		if team != "CCC" {
			t.Errorf("perm %v: team = %s, want CCC", perm, team)
		}
	}
}

func TestSummarizeFirstSeenWinsTies(t *testing.T) {
	games := []models.Game{
		game("1", "FIRST", 10, "X", 2),
		game("2", "SECOND", 10, "Y", 3),
	}

	_, team := Summarize(games)
	if team != "FIRST" {
		t.Errorf("team = %s, want FIRST (later equal max must not displace)", team)
	}
}

func TestOfficialDeltas(t *testing.T) {
	g := game("19059", "TRL", 10, "NEL", 14)
	g.Referees = [2]models.Official{
		{Name: "Steve Smith"},
		{Name: models.UnknownOfficial},
	}
	g.Linesmen = [2]models.Official{
		{Name: "Kyle Ferguson"},
		{Name: "Dale Ross"},
	}

	deltas := OfficialDeltas(&g, 65)

	if len(deltas) != 3 {
		t.Fatalf("len(deltas) = %d, want 3 (sentinel filtered)", len(deltas))
	}

	byName := map[string]models.OfficialDelta{}
	for _, d := range deltas {
		byName[d.Name] = d
	}

	ref, ok := byName["Steve Smith"]
	if !ok || ref.Role != models.RoleReferee {
		t.Errorf("Steve Smith delta = %+v", ref)
	}
	lin, ok := byName["Dale Ross"]
	if !ok || lin.Role != models.RoleLinesman {
		t.Errorf("Dale Ross delta = %+v", lin)
	}

	for _, d := range deltas {
		if d.Games != 1 || d.Pims != 24 || d.SeasonID != 65 {
			t.Errorf("delta = %+v, want 1 game / 24 pims / season 65", d)
		}
	}
}

func TestOfficialDeltasAllUnknown(t *testing.T) {
	g := game("1", "A", 0, "B", 0)
	unknown := models.Official{Name: models.UnknownOfficial}
	g.Referees = [2]models.Official{unknown, unknown}
	g.Linesmen = [2]models.Official{unknown, unknown}

	if deltas := OfficialDeltas(&g, 65); len(deltas) != 0 {
		t.Errorf("deltas = %v, want none", deltas)
	}
}
