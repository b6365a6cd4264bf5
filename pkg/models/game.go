package models

import "time"

// UnknownOfficial is the sentinel name stored when an upstream payload omits
// an officiating slot. Aggregation filters on it instead of guessing from
// empty strings.
const UnknownOfficial = "Unknown"

// OfficialRole classifies an on-ice official.
type OfficialRole string

const (
	RoleReferee  OfficialRole = "referee"
	RoleLinesman OfficialRole = "linesman"
)

// Official is one officiating slot on a game sheet.
type Official struct {
	Name   string `json:"name"`
	Jersey string `json:"jersey,omitempty"`
}

// Known reports whether the slot was actually filled by the upstream feed.
func (o Official) Known() bool {
	return o.Name != "" && o.Name != UnknownOfficial
}

// Game is the canonical, league-agnostic result of parsing one upstream
// game-summary payload. Every league module produces this shape so nothing
// downstream re-navigates raw feed JSON.
type Game struct {
	GameID       string      `json:"game_id"`
	HomeTeam     string      `json:"home_team"`
	HomeTeamAbbr string      `json:"home_team_abbr"`
	AwayTeam     string      `json:"away_team"`
	AwayTeamAbbr string      `json:"away_team_abbr"`
	HomeScore    int         `json:"home_score"`
	AwayScore    int         `json:"away_score"`
	HomePims     int         `json:"home_pims"`
	AwayPims     int         `json:"away_pims"`
	Referees     [2]Official `json:"referees"`
	Linesmen     [2]Official `json:"linesmen"`
	Venue        string      `json:"venue,omitempty"`
	Attendance   int         `json:"attendance,omitempty"`
	Status       string      `json:"status,omitempty"`
}

// TotalPims returns the combined penalty minutes for both sides.
func (g *Game) TotalPims() int {
	return g.HomePims + g.AwayPims
}

// GameRecord is a Game plus ingestion metadata. Identity is
// (league id, game id); a record is created at most once per key.
type GameRecord struct {
	Game
	LeagueID   string    `json:"league_id"`
	SeasonID   int       `json:"season_id"`
	IngestDate string    `json:"ingest_date"` // YYYY-MM-DD the batch was run for
	IngestedAt time.Time `json:"ingested_at"`
}
