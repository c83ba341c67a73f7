package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ChrisGrossi/sportsbet/pkg/models"
)

func actionableRow(team string, value float64) models.ReconciledGameRow {
	return models.ReconciledGameRow{
		StartTime:    time.Date(2026, 4, 1, 19, 5, 0, 0, time.UTC),
		HomeTeam:     team,
		AwayTeam:     "Chicago Cubs",
		GameLabel:    "Chicago Cubs at " + team,
		Status:       models.StatusReadyForAnalysis,
		Odds:         &models.GameOddsRecord{HomeMoneyline: models.Float(-140), AwayMoneyline: models.Float(120)},
		BestBetTeam:  team,
		BestBetValue: models.Float(value),
	}
}

func TestFilterSelect(t *testing.T) {
	rows := []models.ReconciledGameRow{
		actionableRow("Milwaukee Brewers", 0.08),
		actionableRow("Boston Red Sox", 0.02),
		{Status: models.StatusMissingOdds},
		// negative best-bet value is never actionable
		actionableRow("New York Yankees", -0.05),
	}

	selected := NewFilter(0.05).Select(rows)
	require.Len(t, selected, 1)
	require.Equal(t, "Milwaukee Brewers", selected[0].BestBetTeam)

	selected = NewFilter(0).Select(rows)
	require.Len(t, selected, 2)
}

func TestNotifySendsWebhook(t *testing.T) {
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL, logrus.NewEntry(logrus.New()))
	rows := []models.ReconciledGameRow{actionableRow("Milwaukee Brewers", 0.08)}
	require.NoError(t, n.Notify(context.Background(), "mlb", rows))

	text := payload["text"]
	require.True(t, strings.Contains(text, "MLB VALUE BETS"))
	require.True(t, strings.Contains(text, "Milwaukee Brewers"))
	require.True(t, strings.Contains(text, "8.00%"))
	require.True(t, strings.Contains(text, "-140"))
}

func TestNotifySkipsEmptySelection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("webhook should not be called")
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL, logrus.NewEntry(logrus.New()))
	require.NoError(t, n.Notify(context.Background(), "mlb", nil))
}

func TestNotifyReportsWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL, logrus.NewEntry(logrus.New()))
	rows := []models.ReconciledGameRow{actionableRow("Milwaukee Brewers", 0.08)}
	err := n.Notify(context.Background(), "mlb", rows)
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}
