// Package kijhl implements the league module for the Kootenay International
// Junior Hockey League statview feed.
package kijhl

import (
	"fmt"
	"time"

	"github.com/penaltybox/officials-stats-service/pkg/contracts"
)

const (
	clientCode = "kijhl"
	apiKey     = "2589e0f644b1bb71"
	baseURL    = "https://lscluster.hockeytech.com/feed/index.php"
)

// Season ids are assigned upstream per season segment; playoffs get their
// own id.
var seasons = map[string]int{
	"2021-2022 (Reg Season)": 49,
	"2021-2022 (Playoffs)":   51,
	"2022-2023 (Reg Season)": 52,
	"2022-2023 (Playoffs)":   54,
	"2023-2024 (Reg Season)": 56,
	"2023-2024 (Playoffs)":   59,
	"2024-2025 (Reg Season)": 61,
	"2024-2025 (Playoffs)":   63,
	"2025-2026 (Reg Season)": 65,
	"2025-2026 (Playoffs)":   66,
}

const currentSeason = 65

// Module implements contracts.LeagueModule for the KIJHL.
type Module struct {
	cfg contracts.LeagueConfig
}

// New creates the KIJHL league module.
func New() *Module {
	return &Module{
		cfg: contracts.LeagueConfig{
			LeagueID:   clientCode,
			Name:       "Kootenay International Junior Hockey League",
			ClientCode: clientCode,
			APIKey:     apiKey,
			Headers: map[string]string{
				"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36",
				"Referer":         "https://www.kijhl.ca/",
				"Accept":          "application/json, text/plain, */*",
				"Accept-Language": "en-US,en;q=0.9",
				"Connection":      "keep-alive",
			},
			StoragePrefix: "leagues/kijhl",
			Seasons:       seasons,
			CurrentSeason: currentSeason,
		},
	}
}

func (m *Module) GetLeagueKey() string {
	return clientCode
}

func (m *Module) GetDisplayName() string {
	return "KIJHL"
}

func (m *Module) Config() contracts.LeagueConfig {
	return m.cfg
}

// ScheduleURL builds the month-scoped statview schedule feed URL.
func (m *Module) ScheduleURL(seasonID int, month time.Month) string {
	return fmt.Sprintf(
		"%s?feed=statviewfeed&view=schedule&team=-1&season=%d&month=%d&location=homeaway&key=%s&client_code=%s&site_id=2&league_id=1&conference_id=-1&division_id=-1&lang=en&callback=angular.callbacks._3",
		baseURL, seasonID, int(month), apiKey, clientCode,
	)
}

// GameSummaryURL builds the statview gameSummary feed URL for one game.
func (m *Module) GameSummaryURL(gameID string) string {
	return fmt.Sprintf(
		"%s?feed=statviewfeed&view=gameSummary&game_id=%s&key=%s&site_id=2&client_code=%s&lang=en&league_id=&callback=angular.callbacks._4",
		baseURL, gameID, apiKey, clientCode,
	)
}
