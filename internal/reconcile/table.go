package reconcile

import (
	"strconv"
	"time"

	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
	"github.com/ChrisGrossi/sportsbet/pkg/models"
)

var tableColumns = []string{
	"GameStart",
	"Game",
	"AwayTeam",
	"HomeTeam",
	"Status",
	"Away MLOdds",
	"Home MLOdds",
	"AwayWinProb",
	"HomeWinProb",
	"AwayImpliedProb",
	"HomeImpliedProb",
	"AwayValue",
	"HomeValue",
	"BestBet",
	"BestBetValue",
}

// ToTable renders reconciled rows for a tabular sink. Absent fields
// render as empty cells so incomplete rows stay visibly incomplete.
func ToTable(rows []models.ReconciledGameRow) *htmltable.Table {
	t := &htmltable.Table{Columns: tableColumns}

	for i := range rows {
		r := &rows[i]

		var awayML, homeML, awayProb, homeProb string
		if r.Odds != nil {
			awayML = formatOptional(r.Odds.AwayMoneyline)
			homeML = formatOptional(r.Odds.HomeMoneyline)
		}
		if r.Prediction != nil {
			awayProb = formatFloat(r.Prediction.AwayWinProbability)
			homeProb = formatFloat(r.Prediction.HomeWinProbability)
		}

		t.Rows = append(t.Rows, []string{
			r.StartTime.Format(time.RFC3339),
			r.GameLabel,
			r.AwayTeam,
			r.HomeTeam,
			string(r.Status),
			awayML,
			homeML,
			awayProb,
			homeProb,
			formatOptional(r.AwayImpliedProbability),
			formatOptional(r.HomeImpliedProbability),
			formatOptional(r.AwayValue),
			formatOptional(r.HomeValue),
			r.BestBetTeam,
			formatOptional(r.BestBetValue),
		})
	}

	return t
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
