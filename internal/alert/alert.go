package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ChrisGrossi/sportsbet/pkg/models"
)

// Filter selects the reconciled rows worth alerting on
type Filter struct {
	minEdge float64
}

// NewFilter creates a filter admitting actionable rows whose best-bet
// value meets the threshold. A zero threshold admits every row with a
// strictly positive edge.
func NewFilter(minEdge float64) *Filter {
	return &Filter{minEdge: minEdge}
}

// Select returns the rows that should trigger an alert
func (f *Filter) Select(rows []models.ReconciledGameRow) []models.ReconciledGameRow {
	var selected []models.ReconciledGameRow
	for i := range rows {
		if rows[i].IsActionable() && *rows[i].BestBetValue >= f.minEdge {
			selected = append(selected, rows[i])
		}
	}
	return selected
}

// SlackNotifier sends value-bet alerts to Slack via webhook
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(webhookURL string, log *logrus.Entry) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.WithField("component", "alert"),
	}
}

// Notify sends one Slack message summarizing the selected rows. An
// empty selection sends nothing.
func (s *SlackNotifier) Notify(ctx context.Context, sport string, rows []models.ReconciledGameRow) error {
	if len(rows) == 0 {
		return nil
	}

	payload := map[string]interface{}{
		"text": formatMessage(sport, rows),
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	s.log.WithFields(logrus.Fields{
		"sport": sport,
		"bets":  len(rows),
	}).Info("sent Slack alert")

	return nil
}

// formatMessage renders the selected rows as one Slack message
func formatMessage(sport string, rows []models.ReconciledGameRow) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*%s VALUE BETS* | %d game(s)\n",
		strings.ToUpper(sport), len(rows)))

	for i := range rows {
		r := &rows[i]
		sb.WriteString(fmt.Sprintf("\n*%s*\n", r.GameLabel))
		sb.WriteString(fmt.Sprintf("Start: %s\n", r.StartTime.Format("Mon 15:04 MST")))
		sb.WriteString(fmt.Sprintf("Bet: %s | Edge: %.2f%%\n",
			r.BestBetTeam, *r.BestBetValue*100))

		if r.Odds != nil {
			line := moneylineFor(r)
			if line != nil {
				sb.WriteString(fmt.Sprintf("Line: %s\n", formatOdds(*line)))
			}
		}
	}

	return sb.String()
}

func moneylineFor(r *models.ReconciledGameRow) *float64 {
	if r.BestBetTeam == r.HomeTeam {
		return r.Odds.HomeMoneyline
	}
	return r.Odds.AwayMoneyline
}

// formatOdds formats American odds with sign
func formatOdds(americanOdds float64) string {
	if americanOdds > 0 {
		return fmt.Sprintf("+%.0f", americanOdds)
	}
	return fmt.Sprintf("%.0f", americanOdds)
}
