package contracts

import (
	"time"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// LeagueModule is the pluggable interface for adding new leagues. Each
// upstream feed family differs in URL shape, payload nesting, and officials
// representation; everything league-specific lives behind this interface so
// the rest of the pipeline stays league-agnostic.
//
// Resolution and parsing are split on purpose: the URL builders and parsers
// are pure, and all network I/O happens in the orchestrator through the
// shared feed client.
type LeagueModule interface {
	// Identification
	GetLeagueKey() string   // "kijhl", "whl"
	GetDisplayName() string // "KIJHL", "WHL"

	// Configuration
	Config() LeagueConfig

	// ScheduleURL builds the month-scoped schedule feed URL.
	ScheduleURL(seasonID int, month time.Month) string

	// GameSummaryURL builds the detail feed URL for one game.
	GameSummaryURL(gameID string) string

	// ExtractScheduleGameIDs walks a decoded schedule payload and returns the
	// ids of every game whose embedded display date matches the given day.
	ExtractScheduleGameIDs(decoded interface{}, date time.Time) ([]string, error)

	// ParseGameSummary normalizes a decoded game-summary payload. Missing
	// optional subtrees substitute defaults (zero counts, the Unknown
	// official sentinel) instead of failing the parse.
	ParseGameSummary(decoded map[string]interface{}) (*models.Game, error)
}

// LeagueConfig is the static, read-only configuration for one league. Loaded
// once at startup and shared across workers without locking.
type LeagueConfig struct {
	LeagueID      string
	Name          string
	ClientCode    string
	APIKey        string
	Headers       map[string]string // request header profile for the feed host
	StoragePrefix string            // document-store namespace, e.g. "leagues/kijhl"
	Seasons       map[string]int    // season label → upstream season id
	CurrentSeason int
}
