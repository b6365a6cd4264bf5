package whl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// scheduleDateLayout is the date_played format the modulekit schedule uses.
const scheduleDateLayout = "2006-01-02"

// ExtractScheduleGameIDs walks a decoded modulekit schedule payload
// (SiteKit.Schedule[]) and returns the ids of every game played on the given
// date.
func (m *Module) ExtractScheduleGameIDs(decoded interface{}, date time.Time) ([]string, error) {
	top, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("whl: schedule payload is not an object")
	}

	siteKit := extractMap(top, "SiteKit")
	rows, ok := siteKit["Schedule"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("whl: schedule payload lacks SiteKit.Schedule")
	}

	target := date.Format(scheduleDateLayout)
	var ids []string

	for _, entry := range rows {
		row, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if extractString(row, "date_played") != target {
			continue
		}
		if id := extractID(row, "game_id"); id != "" {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// ParseGameSummary normalizes a gamecentre summary payload. Unlike the
// statview feed, the gamecentre nests everything under GC.Gamesummary, keeps
// goal and pim totals in side-keyed summary objects with string-typed
// numerics, and lists all officials in one unordered array classified by a
// role description.
func (m *Module) ParseGameSummary(decoded map[string]interface{}) (*models.Game, error) {
	gc := extractMap(decoded, "GC")
	summary := extractMap(gc, "Gamesummary")
	if len(summary) == 0 {
		return nil, fmt.Errorf("whl: payload lacks GC.Gamesummary")
	}

	home := extractMap(summary, "home")
	visitor := extractMap(summary, "visitor")
	goals := extractMap(summary, "totalGoals")
	pims := extractMap(summary, "pimTotal")
	meta := extractMap(summary, "meta")

	game := &models.Game{
		GameID:       extractID(meta, "id"),
		HomeTeam:     stringOr(extractString(home, "name"), "Unknown"),
		HomeTeamAbbr: stringOr(extractString(home, "code"), "Unknown"),
		AwayTeam:     stringOr(extractString(visitor, "name"), "Unknown"),
		AwayTeamAbbr: stringOr(extractString(visitor, "code"), "Unknown"),
		HomeScore:    extractInt(goals, "home"),
		AwayScore:    extractInt(goals, "visitor"),
		HomePims:     extractInt(pims, "home"),
		AwayPims:     extractInt(pims, "visitor"),
		Venue:        extractString(summary, "venue"),
		Attendance:   extractInt(summary, "attendance"),
		Status:       extractString(meta, "status"),
	}

	game.Referees, game.Linesmen = classifyOfficials(extractArray(summary, "officials"))

	return game, nil
}

// classifyOfficials splits the unordered officials list into referee and
// linesman slots by role-description substring, filling unused slots with the
// Unknown sentinel. Officials with an unrecognized description are skipped.
func classifyOfficials(list []interface{}) (referees, linesmen [2]models.Official) {
	unknown := models.Official{Name: models.UnknownOfficial}
	referees = [2]models.Official{unknown, unknown}
	linesmen = [2]models.Official{unknown, unknown}

	nextRef, nextLine := 0, 0

	for _, entry := range list {
		o, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		name := strings.TrimSpace(extractString(o, "first_name") + " " + extractString(o, "last_name"))
		if name == "" {
			continue
		}
		official := models.Official{
			Name:   name,
			Jersey: extractID(o, "jersey_number"),
		}

		desc := strings.ToLower(extractString(o, "description"))
		switch {
		case strings.Contains(desc, "referee"):
			if nextRef < 2 {
				referees[nextRef] = official
				nextRef++
			}
		case strings.Contains(desc, "linesman"), strings.Contains(desc, "lines"):
			if nextLine < 2 {
				linesmen[nextLine] = official
				nextLine++
			}
		}
	}

	return referees, linesmen
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

// extractInt safely extracts an int; the gamecentre feed encodes most counts
// as strings
func extractInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
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
