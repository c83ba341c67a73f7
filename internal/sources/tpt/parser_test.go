package tpt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ChrisGrossi/sportsbet/internal/fetch"
	"github.com/ChrisGrossi/sportsbet/internal/sources"
)

// fwLine lays cell values out at the parser's fixed column offsets
func fwLine(values ...string) string {
	var b strings.Builder
	for i, v := range values {
		if i >= len(colSpecs) {
			break
		}
		for b.Len() < colSpecs[i].start {
			b.WriteByte(' ')
		}
		b.WriteString(v)
	}
	return b.String()
}

func fixtureText() string {
	return strings.Join([]string{
		"Week 5 predictions from all models",
		"",
		"Home                Visitor              Opening  Updated  Midweek",
		"----------------------------------------------------------------",
		fwLine("Pittsburgh", "Jets", "-3.0", "-3.5", "-3.5", "-4.1", "-4.0", "2.3", "-7.0", "-1.0", "65.2", "52.1"),
		fwLine("Green Bay", "Niners", "-6.5", "-7.0", "-6.5", "-7.8", "-7.5", "3.1", "-12.0", "-3.0", "74.5", "55.0"),
		"",
		"__________",
		"Footer notes go here",
	}, "\n")
}

func TestParseText(t *testing.T) {
	table, err := ParseText(fixtureText())
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	// Team names resolved to canonical franchise names
	require.Equal(t, "Pittsburgh Steelers", table.Cell(0, "Home"))
	require.Equal(t, "New York Jets", table.Cell(0, "Visitor"))
	require.Equal(t, "New York Jets at Pittsburgh Steelers", table.Cell(0, "Matchup"))

	require.Equal(t, "-3.0", table.Cell(0, "OpeningLine"))
	require.Equal(t, "65.2", table.Cell(0, "ProbabilityWins"))
	require.Equal(t, "52.1", table.Cell(0, "ProbabilityCovers"))

	require.Equal(t, "San Francisco 49ers at Green Bay Packers", table.Cell(1, "Matchup"))
}

func TestParseTextMissingHeader(t *testing.T) {
	_, err := ParseText("no table in this text at all")
	require.Error(t, err)
	require.True(t, errors.Is(err, sources.ErrNoData))
}

func TestParseTextMissingSeparator(t *testing.T) {
	// Without a separator the remainder of the block is data
	text := strings.Join([]string{
		"Home                Visitor",
		"-------",
		fwLine("Dallas", "Eagles", "-2.0"),
	}, "\n")

	table, err := ParseText(text)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	require.Equal(t, "Dallas Cowboys", table.Cell(0, "Home"))
	require.Equal(t, "Philadelphia Eagles", table.Cell(0, "Visitor"))
}

func TestParseTextZeroRows(t *testing.T) {
	text := strings.Join([]string{
		"Home                Visitor",
		"-------",
		"",
		"__________",
	}, "\n")

	_, err := ParseText(text)
	require.Error(t, err)
	require.True(t, errors.Is(err, sources.ErrNoData))
}

func TestScrapeMissingPreBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body><p>no pre here</p></body></html>")
	}))
	defer srv.Close()

	parser := NewParser(fetch.NewClient(), srv.URL, logrus.NewEntry(logrus.New()))
	_, err := parser.Scrape(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, sources.ErrNoData))
}

func TestScrapeParsesPreBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<html><body><pre>%s</pre></body></html>", fixtureText())
	}))
	defer srv.Close()

	parser := NewParser(fetch.NewClient(), srv.URL, logrus.NewEntry(logrus.New()))
	table, err := parser.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
}
