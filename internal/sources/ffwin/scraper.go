package ffwin

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ChrisGrossi/sportsbet/internal/fetch"
	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
	"github.com/ChrisGrossi/sportsbet/internal/sources"
	"github.com/ChrisGrossi/sportsbet/internal/teams"
)

// The forecast table is the first one on the page with at least this
// many columns; everything narrower is page furniture.
const minColumns = 3

// Scraper fetches the FFWin forecast page and returns its matchup table
type Scraper struct {
	client *fetch.Client
	url    string
	log    *logrus.Entry
}

// NewScraper creates a scraper for the configured page URL
func NewScraper(client *fetch.Client, url string, log *logrus.Entry) *Scraper {
	return &Scraper{
		client: client,
		url:    url,
		log:    log.WithField("source", "ffwin"),
	}
}

// Scrape fetches the page, keeps the first qualifying table, resolves the
// HOME/AWAY columns to canonical franchise names, and synthesizes the
// matchup label
func (s *Scraper) Scrape(ctx context.Context) (*htmltable.Table, error) {
	doc, err := s.client.GetDocument(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	var table *htmltable.Table
	for _, t := range htmltable.ParseAll(doc) {
		if len(t.Columns) >= minColumns {
			table = t
			break
		}
	}

	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("ffwin: no forecast table on page: %w", sources.ErrNoData)
	}

	homeIdx := table.ColumnIndex("HOME")
	awayIdx := table.ColumnIndex("AWAY")
	if homeIdx < 0 || awayIdx < 0 {
		return nil, fmt.Errorf("ffwin: table missing HOME/AWAY columns: %w", sources.ErrNoData)
	}

	table.Columns = append(table.Columns, "Matchup")
	for i, row := range table.Rows {
		row[homeIdx] = teams.Resolve(strings.TrimSpace(row[homeIdx]))
		row[awayIdx] = teams.Resolve(strings.TrimSpace(row[awayIdx]))
		table.Rows[i] = append(row, row[awayIdx]+" at "+row[homeIdx])
	}

	s.log.WithField("rows", len(table.Rows)).Info("parsed forecast table")
	return table, nil
}
