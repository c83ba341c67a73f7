package dratings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ChrisGrossi/sportsbet/internal/fetch"
	"github.com/ChrisGrossi/sportsbet/internal/sources"
)

func pageHTML(rows string) string {
	return fmt.Sprintf(`<html><body>
<table><tr><th>Nav</th></tr><tr><td>ignore</td></tr></table>
<table>
<tr><th>Time</th><th>Teams</th><th>Pitchers</th><th>Win</th><th>Bet $100 Returns</th><th>Best ML</th></tr>
%s
</table>
</body></html>`, rows)
}

const page0Rows = `<tr><td>2026-04-01 23:05</td><td>New York Yankees (3-1) Boston Red Sox (2-2)</td><td>Cole Crochet</td><td>55.0% 45.0%</td><td>$110</td><td>+105</td></tr>
<tr><td>2026-04-01 23:05</td><td>Chicago Cubs (1-3) Milwaukee Brewers (2-2)</td><td>A B</td><td>48.0% 52.0%</td><td>$95</td><td>-110</td></tr>`

const page2Rows = `<tr><td>2026-04-01 23:05</td><td>Chicago Cubs (1-3) Milwaukee Brewers (2-2)</td><td>A B</td><td>48.0% 52.0%</td><td>$95</td><td>-110</td></tr>
<tr><td>2026-04-02 00:10</td><td>Oakland Athletics (2-2) Seattle Mariners (2-2)</td><td>C D</td><td>44.5% 55.5%</td><td>$88</td><td>+120</td></tr>
<tr><td>garbage text</td><td>Broken Row (0-0) Broken (0-0)</td><td>E F</td><td>50% 50%</td><td>$0</td><td>0</td></tr>`

// Three pages: page 0 and page 2 return data, page 1 fails with a 500.
// Collection must skip the failure and keep going.
func newThreePageServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, pageHTML(page0Rows))
		case "/upcoming/1":
			w.WriteHeader(http.StatusInternalServerError)
		case "/upcoming/2":
			fmt.Fprint(w, pageHTML(page2Rows))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testCollector(t *testing.T, baseURL string, pages int) *Collector {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	log := logrus.NewEntry(logrus.New())
	c := NewCollector(fetch.NewClient(), baseURL, pages, "Pitchers", loc, log)
	c.Pause = time.Millisecond
	return c
}

func TestCollectSkipsFailedPage(t *testing.T) {
	srv := newThreePageServer(t)
	defer srv.Close()

	collected, err := testCollector(t, srv.URL+"/", 3).Collect(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, collected.PagesSkipped)

	// 5 raw rows: 1 duplicate collapsed, 1 unparseable-time row dropped
	require.Len(t, collected.Table.Rows, 3)
	require.Len(t, collected.Times, 3)
}

func TestCollectCleansTable(t *testing.T) {
	srv := newThreePageServer(t)
	defer srv.Close()

	collected, err := testCollector(t, srv.URL+"/", 3).Collect(context.Background())
	require.NoError(t, err)

	table := collected.Table
	require.False(t, table.HasColumn("Pitchers"))
	require.False(t, table.HasColumn("Best ML"))
	require.True(t, table.HasColumn("BetValue"))

	// Chronological order, team-pair text breaking the doubleheader tie
	require.Contains(t, table.Cell(0, "Teams"), "Cubs")
	require.Contains(t, table.Cell(1, "Teams"), "Yankees")
	require.Contains(t, table.Cell(2, "Teams"), "Mariners")

	// Franchise rewrite applied inside the team-pair text
	require.Equal(t, "Athletics (2-2) Seattle Mariners (2-2)", table.Cell(2, "Teams"))

	// Times converted from UTC to Eastern
	require.Equal(t, "2026-04-01T19:05:00-04:00", table.Cell(0, "Time"))
}

func TestCollectNoQualifyingTables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><table><tr><th>Other</th></tr><tr><td>x</td></tr></table></body></html>`)
	}))
	defer srv.Close()

	_, err := testCollector(t, srv.URL+"/", 2).Collect(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, sources.ErrNoData))
}

func TestCompletedModeURLs(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, `<html><body><table>
<tr><th>Time</th><th>Teams</th><th>Final Runs</th></tr>
<tr><td>Apr 1</td><td>A (1-0) B (0-1)</td><td>5-3</td></tr>
</table></body></html>`)
	}))
	defer srv.Close()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	c := NewCompletedCollector(fetch.NewClient(), srv.URL+"/", 2, "Final Runs", loc, logrus.NewEntry(logrus.New()))
	c.Pause = time.Millisecond

	collected, err := c.Collect(context.Background())
	require.NoError(t, err)

	// Completed crawl starts at page 2
	require.Equal(t, []string{"/completed/2", "/completed/3"}, paths)

	// No time parsing in completed mode; the row survives as-is and the
	// duplicate from page 3 collapses
	require.Len(t, collected.Table.Rows, 1)
	require.True(t, collected.Times[0].IsZero())
}

func TestPredictions(t *testing.T) {
	srv := newThreePageServer(t)
	defer srv.Close()

	collected, err := testCollector(t, srv.URL+"/", 3).Collect(context.Background())
	require.NoError(t, err)

	records := Predictions(collected)
	require.Len(t, records, 3)

	first := records[0]
	require.Equal(t, "Chicago Cubs", first.AwayTeam)
	require.Equal(t, "Milwaukee Brewers", first.HomeTeam)
	require.InDelta(t, 0.48, first.AwayWinProbability, 0.0001)
	require.InDelta(t, 0.52, first.HomeWinProbability, 0.0001)
	require.Equal(t, "America/New_York", first.StartTime.Location().String())

	second := records[1]
	require.Equal(t, "New York Yankees", second.AwayTeam)
	require.Equal(t, "Boston Red Sox", second.HomeTeam)
	require.InDelta(t, 0.55, second.AwayWinProbability, 0.0001)
}

func TestSplitTeamPairRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"New York Yankees Boston Red Sox",
		"New York Yankees (3-1)",
		"Postponed",
	}

	for _, text := range tests {
		if _, _, ok := splitTeamPair(text); ok {
			t.Errorf("splitTeamPair(%q) unexpectedly matched", text)
		}
	}

	away, home, ok := splitTeamPair("Tampa Bay Rays (10-2) Texas Rangers (5-7)")
	require.True(t, ok)
	require.Equal(t, "Tampa Bay Rays", away)
	require.Equal(t, "Texas Rangers", home)
}
