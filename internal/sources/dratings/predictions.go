package dratings

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisGrossi/sportsbet/pkg/models"
)

// teamPairPattern splits the combined "Away Team (W-L) Home Team (W-L)"
// text into the two franchise names. Anchored on both ends so a shape
// the pattern does not recognize fails visibly instead of mis-splitting.
var teamPairPattern = regexp.MustCompile(`^(.*?)\s*\(\d+-\d+\)\s*(.*?)\s*\(\d+-\d+\)$`)

// Predictions extracts typed prediction records from a collected table.
// Rows whose team pair or win column cannot be parsed are left out of the
// typed set; the raw table row is unaffected.
func Predictions(collected *Collected) []models.GamePredictionRecord {
	table := collected.Table
	teamsIdx := table.ColumnIndex("Teams")
	winIdx := table.ColumnIndex("Win")
	if teamsIdx < 0 || winIdx < 0 {
		return nil
	}

	var records []models.GamePredictionRecord
	for i, cells := range table.Rows {
		if teamsIdx >= len(cells) || winIdx >= len(cells) {
			continue
		}

		away, home, ok := splitTeamPair(cells[teamsIdx])
		if !ok {
			continue
		}

		awayProb, homeProb, ok := splitWinColumn(cells[winIdx])
		if !ok {
			continue
		}

		records = append(records, models.GamePredictionRecord{
			StartTime:          collected.Times[i],
			AwayTeam:           away,
			HomeTeam:           home,
			TeamsText:          cells[teamsIdx],
			AwayWinProbability: awayProb,
			HomeWinProbability: homeProb,
		})
	}

	return records
}

func splitTeamPair(text string) (away, home string, ok bool) {
	match := teamPairPattern.FindStringSubmatch(text)
	if match == nil {
		return "", "", false
	}
	return strings.TrimSpace(match[1]), strings.TrimSpace(match[2]), true
}

// splitWinColumn parses the "57.1% 42.9%" win column: away probability
// first, home second, both converted to [0,1]
func splitWinColumn(text string) (away, home float64, ok bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return 0, 0, false
	}

	away, err := parsePercent(fields[0])
	if err != nil {
		return 0, 0, false
	}

	home, err = parsePercent(fields[1])
	if err != nil {
		return 0, 0, false
	}

	return away, home, true
}

func parsePercent(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
	if err != nil {
		return 0, err
	}
	return v / 100.0, nil
}
