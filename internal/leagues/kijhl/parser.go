package kijhl

import (
	"fmt"
	"strconv"
	"time"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// scheduleDateLayout is the display date the statview schedule embeds for
// each row, e.g. "Fri, Nov 7".
const scheduleDateLayout = "Mon, Jan 2"

// ExtractScheduleGameIDs walks the decoded statview schedule payload and
// returns the ids of every game on the given date. The relevant rows are
// nested at [0].sections[0].data[].row.
func (m *Module) ExtractScheduleGameIDs(decoded interface{}, date time.Time) ([]string, error) {
	top, ok := decoded.([]interface{})
	if !ok || len(top) == 0 {
		return nil, fmt.Errorf("kijhl: schedule payload is not the expected array")
	}

	month, ok := top[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("kijhl: schedule month entry is not an object")
	}

	sections := extractArray(month, "sections")
	if len(sections) == 0 {
		return nil, fmt.Errorf("kijhl: schedule has no sections")
	}

	section, ok := sections[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("kijhl: schedule section is not an object")
	}

	target := date.Format(scheduleDateLayout)
	var ids []string

	for _, entry := range extractArray(section, "data") {
		game, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		row := extractMap(game, "row")
		if extractString(row, "date_with_day") != target {
			continue
		}
		if id := extractID(row, "game_id"); id != "" {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// ParseGameSummary normalizes a statview gameSummary payload. The statview
// feed keeps team stats flat under info/stats and provides fixed two-slot
// referee and linesman lists; any missing slot becomes the Unknown sentinel.
func (m *Module) ParseGameSummary(decoded map[string]interface{}) (*models.Game, error) {
	if len(decoded) == 0 {
		return nil, fmt.Errorf("kijhl: empty game summary payload")
	}

	home := extractMap(decoded, "homeTeam")
	visiting := extractMap(decoded, "visitingTeam")
	homeInfo := extractMap(home, "info")
	visitingInfo := extractMap(visiting, "info")
	homeStats := extractMap(home, "stats")
	visitingStats := extractMap(visiting, "stats")

	game := &models.Game{
		HomeTeam:     stringOr(extractString(homeInfo, "name"), "Unknown"),
		HomeTeamAbbr: stringOr(extractString(homeInfo, "abbreviation"), "Unknown"),
		AwayTeam:     stringOr(extractString(visitingInfo, "name"), "Unknown"),
		AwayTeamAbbr: stringOr(extractString(visitingInfo, "abbreviation"), "Unknown"),
		HomeScore:    extractInt(homeStats, "goals"),
		AwayScore:    extractInt(visitingStats, "goals"),
		HomePims:     extractInt(homeStats, "penaltyMinuteCount"),
		AwayPims:     extractInt(visitingStats, "penaltyMinuteCount"),
		Referees:     parseOfficialList(extractArray(decoded, "referees")),
		Linesmen:     parseOfficialList(extractArray(decoded, "linesmen")),
	}

	details := extractMap(decoded, "details")
	game.GameID = extractID(details, "id")
	game.Venue = extractString(details, "venue")
	game.Attendance = extractInt(details, "attendance")
	game.Status = extractString(details, "status")

	return game, nil
}

// parseOfficialList fills the two officiating slots from the feed's list,
// substituting the Unknown sentinel for absent entries.
func parseOfficialList(list []interface{}) [2]models.Official {
	out := [2]models.Official{
		{Name: models.UnknownOfficial},
		{Name: models.UnknownOfficial},
	}
	for i := 0; i < len(list) && i < 2; i++ {
		entry, ok := list[i].(map[string]interface{})
		if !ok {
			continue
		}
		first := stringOr(extractString(entry, "firstName"), models.UnknownOfficial)
		last := stringOr(extractString(entry, "lastName"), models.UnknownOfficial)
		out[i] = models.Official{
			Name:   first + " " + last,
			Jersey: extractID(entry, "jerseyNumber"),
		}
		if first == models.UnknownOfficial && last == models.UnknownOfficial {
			out[i].Name = models.UnknownOfficial
		}
	}
	return out
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// extractString safely extracts a string from a map
func extractString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// extractInt safely extracts an int, tolerating the feed's habit of encoding
// numbers as strings
func extractInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		i, _ := strconv.Atoi(v)
		return i
	case int:
		return v
	default:
		return 0
	}
}

// extractID extracts an identifier that may arrive as a string or a number
func extractID(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

// extractMap safely extracts a map from a map
func extractMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key]; ok {
		if mapVal, ok := v.(map[string]interface{}); ok {
			return mapVal
		}
	}
	return map[string]interface{}{}
}

// extractArray safely extracts an array from a map
func extractArray(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key]; ok {
		if arrVal, ok := v.([]interface{}); ok {
			return arrVal
		}
	}
	return []interface{}{}
}
