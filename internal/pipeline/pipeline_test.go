package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ChrisGrossi/sportsbet/internal/alert"
	"github.com/ChrisGrossi/sportsbet/internal/config"
	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
	"github.com/ChrisGrossi/sportsbet/internal/sink"
)

const sbriFixture = `{
  "events": [
    {
      "sportname": "Baseball",
      "tsstart": "2026-04-01T19:05:00",
      "externaldescription": "New York Yankees at Boston Red Sox",
      "shortnameaway": "New York Yankees",
      "shortnamehome": "Boston Red Sox",
      "markets": [
        {
          "name": "Money Line",
          "selections": [
            {"name": "New York Yankees", "price": 2.05},
            {"name": "Boston Red Sox", "price": 1.91}
          ]
        }
      ]
    }
  ]
}`

const drateFixture = `<html><body><table>
<tr><th>Time</th><th>Teams</th><th>Pitchers</th><th>Win</th></tr>
<tr><td>2026-04-01 23:05</td><td>New York Yankees (3-1) Boston Red Sox (2-2)</td><td>Cole Crochet</td><td>45.0% 55.0%</td></tr>
</table></body></html>`

// memorySink records every published table in order
type memorySink struct {
	mu     sync.Mutex
	tables map[string]*htmltable.Table
}

func newMemorySink() *memorySink {
	return &memorySink{tables: make(map[string]*htmltable.Table)}
}

func (m *memorySink) Write(_ context.Context, worksheet string, table *htmltable.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[worksheet] = table
	return nil
}

func testConfig(sbriURL, drateURL string) *config.Config {
	return &config.Config{
		Sports: map[string]config.SportConfig{
			"mlb": {
				SBRIURL:         sbriURL,
				DRatingsURL:     drateURL,
				DRatingsPages:   1,
				WorksheetSuffix: "MLB",
			},
		},
	}
}

func TestRunPublishesAllWorksheets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sbri":
			fmt.Fprint(w, sbriFixture)
		case "/drate/":
			fmt.Fprint(w, drateFixture)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var alertText string
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		alertText = payload["text"]
	}))
	defer webhook.Close()

	log := logrus.NewEntry(logrus.New())
	mem := newMemorySink()
	notifier := alert.NewSlackNotifier(webhook.URL, log)

	p, err := New(testConfig(srv.URL+"/sbri", srv.URL+"/drate/"), []sink.TabularWriter{mem}, notifier, log)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))

	require.Contains(t, mem.tables, "SBRI_MLB")
	require.Contains(t, mem.tables, "DRate_MLB")
	require.Contains(t, mem.tables, "Calc_MLB")

	calc := mem.tables["Calc_MLB"]
	require.Len(t, calc.Rows, 1)
	require.Equal(t, "Ready for Analysis", calc.Cell(0, "Status"))
	require.Equal(t, "Boston Red Sox", calc.Cell(0, "BestBet"))

	// home value is positive, so the run alerts on it
	require.True(t, strings.Contains(alertText, "MLB VALUE BETS"))
	require.True(t, strings.Contains(alertText, "Boston Red Sox"))
}

func TestRunSurvivesSourceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/drate/":
			fmt.Fprint(w, drateFixture)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	log := logrus.NewEntry(logrus.New())
	mem := newMemorySink()

	p, err := New(testConfig(srv.URL+"/sbri", srv.URL+"/drate/"), []sink.TabularWriter{mem}, nil, log)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))

	// odds feed failed, so no SBRI worksheet, but the run still
	// produced the prediction and reconciliation tables
	require.NotContains(t, mem.tables, "SBRI_MLB")
	require.Contains(t, mem.tables, "DRate_MLB")

	calc := mem.tables["Calc_MLB"]
	require.Len(t, calc.Rows, 1)
	require.Equal(t, "Missing Odds", calc.Cell(0, "Status"))
}

func TestRunHistoricFeedsWarehouseTable(t *testing.T) {
	const completedFixture = `<html><body><table>
<tr><th>Teams</th><th>Final Runs</th><th>Win</th></tr>
<tr><td>New York Yankees (3-1) Boston Red Sox (2-2)</td><td>4 7</td><td>45.0% 55.0%</td></tr>
</table></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/drate/completed/2" {
			fmt.Fprint(w, completedFixture)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	log := logrus.NewEntry(logrus.New())
	mem := newMemorySink()

	p, err := New(testConfig("", srv.URL+"/drate/"), []sink.TabularWriter{mem}, nil, log)
	require.NoError(t, err)
	require.NoError(t, p.RunHistoric(context.Background()))

	hist := mem.tables["DRateHist_MLB"]
	require.NotNil(t, hist)
	require.Len(t, hist.Rows, 1)
	require.True(t, hist.HasColumn("Final Runs"))
}

func TestRunRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	log := logrus.NewEntry(logrus.New())
	p, err := New(testConfig(srv.URL+"/sbri", ""), []sink.TabularWriter{newMemorySink()}, nil, log)
	require.NoError(t, err)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- p.Run(context.Background())
	}()

	<-started
	// wait until the first run holds the lock
	for p.mu.TryLock() {
		p.mu.Unlock()
	}

	require.ErrorIs(t, p.Run(context.Background()), ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)
}
