// Package aggregate computes batch summary metrics and the per-official
// updates a newly ingested game triggers.
package aggregate

import (
	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// Summarize derives the batch metrics from a set of parsed games: the
// severity score (one-decimal mean of per-game total penalty minutes, zero
// for an empty batch) and the most-penalized team.
//
// Team selection is an explicit fold carrying (currentMax, holder): each
// game contributes max(homePims, awayPims) with that side's abbreviation,
// and the holder changes only on strict inequality, so the first team seen
// at the maximum wins ties. The result is deterministic for a fixed input
// order and order-independent whenever the maximum is unique.
func Summarize(games []models.Game) (severityScore float64, mostPenalizedTeam string) {
	if len(games) == 0 {
		return 0, ""
	}

	total := 0
	currentMax := -1

	for _, g := range games {
		total += g.TotalPims()

		candidatePims := g.HomePims
		candidateTeam := g.HomeTeamAbbr
		if g.AwayPims > g.HomePims {
			candidatePims = g.AwayPims
			candidateTeam = g.AwayTeamAbbr
		}
		if candidatePims > currentMax {
			currentMax = candidatePims
			mostPenalizedTeam = candidateTeam
		}
	}

	severityScore = models.Round1(float64(total) / float64(len(games)))
	return severityScore, mostPenalizedTeam
}

// OfficialDeltas computes the accumulations a game applies to its officiating
// crew: one game called and the game's total penalty minutes for each of up
// to four known officials. Slots holding the Unknown sentinel are filtered
// here so the store never sees them.
func OfficialDeltas(game *models.Game, seasonID int) []models.OfficialDelta {
	var deltas []models.OfficialDelta
	total := game.TotalPims()

	appendKnown := func(o models.Official, role models.OfficialRole) {
		if !o.Known() {
			return
		}
		deltas = append(deltas, models.OfficialDelta{
			Name:     o.Name,
			Role:     role,
			SeasonID: seasonID,
			Games:    1,
			Pims:     total,
		})
	}

	for _, ref := range game.Referees {
		appendKnown(ref, models.RoleReferee)
	}
	for _, lin := range game.Linesmen {
		appendKnown(lin, models.RoleLinesman)
	}

	return deltas
}
