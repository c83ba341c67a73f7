package sbri

import (
	"strconv"
	"time"

	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
	"github.com/ChrisGrossi/sportsbet/pkg/models"
)

// ToTable converts odds records to the rectangular form handed to the
// spreadsheet sink. Column labels follow the worksheet layout readers of
// the sheet already depend on.
func ToTable(records []models.GameOddsRecord) *htmltable.Table {
	table := &htmltable.Table{
		Columns: []string{
			"Sport", "GameStart", "Game", "AwayTeam", "HomeTeam",
			"Away MLOdds", "Home MLOdds", "HomeSpread",
			"AwaySpreadOdds", "HomeSpreadOdds", "UnderOdds", "OverOdds",
			"Handicap",
		},
	}

	for _, r := range records {
		table.Rows = append(table.Rows, []string{
			r.Sport,
			formatTime(r.StartTime),
			r.GameLabel,
			r.AwayTeam,
			r.HomeTeam,
			formatOptional(r.AwayMoneyline),
			formatOptional(r.HomeMoneyline),
			formatOptional(r.HomeSpreadPoints),
			formatOptional(r.AwaySpreadOdds),
			formatOptional(r.HomeSpreadOdds),
			formatOptional(r.UnderOdds),
			formatOptional(r.OverOdds),
			formatOptional(r.TotalPoints),
		})
	}

	return table
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
