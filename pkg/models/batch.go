package models

// Ingestion stages a per-game error can be attributed to.
const (
	StageFetch  = "fetch"
	StageDecode = "decode"
	StageParse  = "parse"
	StageStore  = "store"
)

// GameError records a single game's failure without aborting its siblings.
type GameError struct {
	GameID  string `json:"game_id"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// BatchResult is the outcome of one ingestion run. A run with zero successes
// and N errors is still a valid result; callers inspect Errors rather than
// treating the batch as failed.
type BatchResult struct {
	RunID             string      `json:"run_id"`
	LeagueID          string      `json:"league_id"`
	SeasonID          int         `json:"season_id"`
	Date              string      `json:"date"`
	Games             []Game      `json:"games"`
	Errors            []GameError `json:"errors"`
	TotalGames        int         `json:"total_games"`
	Inserted          int         `json:"inserted"`
	ElapsedSeconds    float64     `json:"elapsed_seconds"`
	SeverityScore     float64     `json:"severity_score"`
	MostPenalizedTeam string      `json:"most_penalized_team"`
}

// AddError appends a per-game failure entry.
func (b *BatchResult) AddError(gameID, stage string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	b.Errors = append(b.Errors, GameError{GameID: gameID, Stage: stage, Message: msg})
}
