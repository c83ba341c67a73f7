package models

import "time"

// RowStatus classifies a reconciled row by data completeness
type RowStatus string

const (
	StatusReadyForAnalysis  RowStatus = "Ready for Analysis"
	StatusMissingOdds       RowStatus = "Missing Odds"
	StatusMissingPrediction RowStatus = "Missing Prediction"
	StatusUnknown           RowStatus = "Unknown"
)

// GameOddsRecord is one game's market data in canonical form.
// Every price field holds American odds (magnitude >= 100) or nil,
// never a raw decimal price and never zero.
type GameOddsRecord struct {
	Sport     string
	StartTime time.Time
	GameLabel string
	AwayTeam  string
	HomeTeam  string

	AwayMoneyline    *float64
	HomeMoneyline    *float64
	HomeSpreadPoints *float64
	AwaySpreadOdds   *float64
	HomeSpreadOdds   *float64
	OverOdds         *float64
	UnderOdds        *float64
	TotalPoints      *float64
}

// GamePredictionRecord is one game's model-derived forecast
type GamePredictionRecord struct {
	StartTime time.Time
	AwayTeam  string
	HomeTeam  string

	// TeamsText is the raw combined "Team (W-L) Team (W-L)" field the
	// team names were extracted from, kept as a label fallback
	TeamsText string

	AwayWinProbability float64
	HomeWinProbability float64
}

// ReconciledGameRow is the result of joining one odds record with one
// prediction record, or either alone. Value fields are populated only
// when Status is StatusReadyForAnalysis.
type ReconciledGameRow struct {
	StartTime time.Time
	HomeTeam  string
	AwayTeam  string
	GameLabel string

	Status RowStatus

	Odds       *GameOddsRecord
	Prediction *GamePredictionRecord

	HomeImpliedProbability *float64
	AwayImpliedProbability *float64
	HomeValue              *float64
	AwayValue              *float64
	BestBetTeam            string
	BestBetValue           *float64
}

// IsActionable reports whether the row is flagged as a value bet.
// A strictly positive best-bet value is the sole admission criterion.
func (r *ReconciledGameRow) IsActionable() bool {
	return r.Status == StatusReadyForAnalysis && r.BestBetValue != nil && *r.BestBetValue > 0
}

// Float returns a pointer to v, for optional record fields
func Float(v float64) *float64 {
	return &v
}
