package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ChrisGrossi/sportsbet/pkg/models"
	"github.com/ChrisGrossi/sportsbet/pkg/oddsmath"
)

// Engine joins an odds dataset with a prediction dataset and derives the
// betting-value signal for rows with enough data on both sides
type Engine struct {
	loc *time.Location
	log *logrus.Entry
}

// NewEngine creates a reconciliation engine normalizing all timestamps to
// the given zone
func NewEngine(loc *time.Location, log *logrus.Entry) *Engine {
	return &Engine{
		loc: loc,
		log: log.WithField("component", "reconcile"),
	}
}

// joinKey is the composite key both datasets are matched on. The
// timestamp disambiguates doubleheaders sharing a team pair.
type joinKey struct {
	unix int64
	home string
	away string
}

// Reconcile outer-joins the two datasets on (timestamp, home, away),
// classifies every joined row by completeness, and computes implied
// probability and value for the rows ready for analysis. Every joined
// row is retained; filtering to positive-value bets is a presentation
// concern, not the engine's.
func (e *Engine) Reconcile(odds []models.GameOddsRecord, predictions []models.GamePredictionRecord) []models.ReconciledGameRow {
	rows := e.join(odds, predictions)

	for i := range rows {
		rows[i].Status = classify(&rows[i])
		if rows[i].Status == models.StatusReadyForAnalysis {
			e.computeValues(&rows[i])
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartTime.Before(rows[j].StartTime)
	})

	e.log.WithFields(logrus.Fields{
		"rows":        len(rows),
		"odds":        len(odds),
		"predictions": len(predictions),
	}).Info("reconciled datasets")

	return rows
}

// join performs the full outer join. Each odds record becomes a row,
// matched to at most one prediction; predictions left unmatched become
// rows of their own. A doubleheader producing two odds rows on one key
// attaches the same prediction to both.
func (e *Engine) join(odds []models.GameOddsRecord, predictions []models.GamePredictionRecord) []models.ReconciledGameRow {
	predByKey := make(map[joinKey]*models.GamePredictionRecord, len(predictions))
	matched := make(map[joinKey]bool)

	for i := range predictions {
		key := e.keyFor(predictions[i].StartTime, predictions[i].HomeTeam, predictions[i].AwayTeam)
		if _, exists := predByKey[key]; !exists {
			predByKey[key] = &predictions[i]
		}
	}

	var rows []models.ReconciledGameRow

	for i := range odds {
		o := &odds[i]
		key := e.keyFor(o.StartTime, o.HomeTeam, o.AwayTeam)

		row := models.ReconciledGameRow{
			StartTime: o.StartTime.In(e.loc),
			HomeTeam:  o.HomeTeam,
			AwayTeam:  o.AwayTeam,
			GameLabel: o.GameLabel,
			Odds:      o,
		}

		if pred, ok := predByKey[key]; ok {
			row.Prediction = pred
			matched[key] = true
			if row.GameLabel == "" {
				row.GameLabel = pred.TeamsText
			}
		}

		rows = append(rows, row)
	}

	for i := range predictions {
		p := &predictions[i]
		key := e.keyFor(p.StartTime, p.HomeTeam, p.AwayTeam)
		if matched[key] || predByKey[key] != p {
			continue
		}

		rows = append(rows, models.ReconciledGameRow{
			StartTime:  p.StartTime.In(e.loc),
			HomeTeam:   p.HomeTeam,
			AwayTeam:   p.AwayTeam,
			GameLabel:  p.TeamsText,
			Prediction: p,
		})
	}

	return rows
}

func (e *Engine) keyFor(t time.Time, home, away string) joinKey {
	return joinKey{unix: t.In(e.loc).Unix(), home: home, away: away}
}

// classify derives the row status from field presence. Conditions are
// evaluated in priority order; the first match wins.
func classify(row *models.ReconciledGameRow) models.RowStatus {
	hasOdds := row.Odds != nil && row.Odds.HomeMoneyline != nil && row.Odds.AwayMoneyline != nil
	hasPrediction := row.Prediction != nil

	switch {
	case hasOdds && hasPrediction:
		return models.StatusReadyForAnalysis
	case row.Odds == nil || (row.Odds.HomeMoneyline == nil && row.Odds.AwayMoneyline == nil):
		return models.StatusMissingOdds
	case row.Prediction == nil:
		return models.StatusMissingPrediction
	default:
		return models.StatusUnknown
	}
}

// computeValues fills the derived fields for a ready row: decimal odds,
// implied probability per side, expected-value edge per side, and the
// best-value side. A conversion failure nulls this row's derived fields
// only and never aborts the batch.
func (e *Engine) computeValues(row *models.ReconciledGameRow) {
	homeDecimal, err := oddsmath.AmericanToDecimal(*row.Odds.HomeMoneyline)
	if err != nil {
		e.rowError(row, fmt.Errorf("home moneyline: %w", err))
		return
	}

	awayDecimal, err := oddsmath.AmericanToDecimal(*row.Odds.AwayMoneyline)
	if err != nil {
		e.rowError(row, fmt.Errorf("away moneyline: %w", err))
		return
	}

	homeImplied, err := oddsmath.ImpliedProbability(homeDecimal)
	if err != nil {
		e.rowError(row, err)
		return
	}

	awayImplied, err := oddsmath.ImpliedProbability(awayDecimal)
	if err != nil {
		e.rowError(row, err)
		return
	}

	homeValue := oddsmath.Value(row.Prediction.HomeWinProbability, homeDecimal)
	awayValue := oddsmath.Value(row.Prediction.AwayWinProbability, awayDecimal)

	row.HomeImpliedProbability = &homeImplied
	row.AwayImpliedProbability = &awayImplied
	row.HomeValue = &homeValue
	row.AwayValue = &awayValue

	if homeValue > awayValue {
		row.BestBetTeam = row.HomeTeam
		row.BestBetValue = &homeValue
	} else {
		row.BestBetTeam = row.AwayTeam
		row.BestBetValue = &awayValue
	}
}

func (e *Engine) rowError(row *models.ReconciledGameRow, err error) {
	e.log.WithFields(logrus.Fields{
		"home": row.HomeTeam,
		"away": row.AwayTeam,
	}).Warnf("skipping value computation: %v", err)
}
