package models

import (
	"math"
	"strconv"
	"strings"
)

// OfficialRecord is the running aggregate for one official, scoped to a
// single league and season so seasons never blend. Identity is
// (league id, normalized name, season id); it is only ever mutated through
// the store's accumulating upsert, triggered by a newly inserted GameRecord.
type OfficialRecord struct {
	Name        string       `json:"name"`
	Role        OfficialRole `json:"role"`
	SeasonID    int          `json:"season_id"`
	GamesCalled int          `json:"games_called"`
	TotalPims   int          `json:"total_pims"`
	AvgPims     float64      `json:"avg_pims"`
}

// Recompute refreshes the derived average from the running totals.
func (r *OfficialRecord) Recompute() {
	if r.GamesCalled <= 0 {
		r.AvgPims = 0
		return
	}
	r.AvgPims = Round1(float64(r.TotalPims) / float64(r.GamesCalled))
}

// NormalizeOfficialName produces the storage form of an official's name:
// trimmed, with spaces collapsed to underscores ("Steve Smith" → "Steve_Smith").
func NormalizeOfficialName(name string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(name)), "_")
}

// OfficialDocID is the document key for an official within a league
// namespace, e.g. "Steve_Smith_65".
func OfficialDocID(name string, seasonID int) string {
	return NormalizeOfficialName(name) + "_" + strconv.Itoa(seasonID)
}

// Round1 rounds to one decimal place, the precision every derived
// penalty-minute average is stored at.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// OfficialDelta is one pending accumulation against an official's season
// record, produced when a new game record is inserted.
type OfficialDelta struct {
	Name     string
	Role     OfficialRole
	SeasonID int
	Games    int
	Pims     int
}
