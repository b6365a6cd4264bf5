// Package whl implements the league module for the Western Hockey League
// gamecentre feed. The WHL rides the same feed host as the KIJHL but uses the
// older gc/modulekit endpoints with a different payload nesting.
package whl

import (
	"fmt"
	"time"

	"github.com/penaltybox/officials-stats-service/pkg/contracts"
)

const (
	clientCode = "whl"
	apiKey     = "f1aa699db3d81487"
	baseURL    = "https://lscluster.hockeytech.com/feed/"
)

// Pre-season is +1 from the regular-season id, playoffs +3.
var seasons = map[string]int{
	"2020-2021 (Regular Season)": 257,
	"2020-2021 (Playoffs)":       260,
	"2021-2022 (Regular Season)": 261,
	"2021-2022 (Playoffs)":       264,
	"2022-2023 (Regular Season)": 265,
	"2022-2023 (Playoffs)":       268,
	"2023-2024 (Regular Season)": 281,
	"2023-2024 (Playoffs)":       284,
	"2024-2025 (Regular Season)": 285,
	"2024-2025 (Playoffs)":       288,
	"2025-2026 (Regular Season)": 289,
	"2025-2026 (Playoffs)":       292,
}

const currentSeason = 289

// Module implements contracts.LeagueModule for the WHL.
type Module struct {
	cfg contracts.LeagueConfig
}

// New creates the WHL league module.
func New() *Module {
	return &Module{
		cfg: contracts.LeagueConfig{
			LeagueID:   clientCode,
			Name:       "Western Hockey League",
			ClientCode: clientCode,
			APIKey:     apiKey,
			Headers: map[string]string{
				"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36",
				"Referer":    "https://whl.ca/",
				"Accept":     "application/json, text/plain, */*",
			},
			StoragePrefix: "leagues/whl",
			Seasons:       seasons,
			CurrentSeason: currentSeason,
		},
	}
}

func (m *Module) GetLeagueKey() string {
	return clientCode
}

func (m *Module) GetDisplayName() string {
	return "WHL"
}

func (m *Module) Config() contracts.LeagueConfig {
	return m.cfg
}

// ScheduleURL builds the modulekit schedule feed URL for one month.
func (m *Module) ScheduleURL(seasonID int, month time.Month) string {
	return fmt.Sprintf(
		"%s?feed=modulekit&view=schedule&key=%s&fmt=json&client_code=%s&lang=en&season_id=%d&month=%d&callback=jsonp_1769465924711_51167",
		baseURL, apiKey, clientCode, seasonID, int(month),
	)
}

// GameSummaryURL builds the gamecentre summary feed URL for one game.
func (m *Module) GameSummaryURL(gameID string) string {
	return fmt.Sprintf(
		"%s?feed=gc&key=%s&game_id=%s&client_code=%s&tab=gamesummary&lang_code=en&fmt=json&callback=jsonp_1769465924711_51167",
		baseURL, apiKey, gameID, clientCode,
	)
}
