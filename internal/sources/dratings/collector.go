package dratings

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ChrisGrossi/sportsbet/internal/fetch"
	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
	"github.com/ChrisGrossi/sportsbet/internal/sources"
	"github.com/ChrisGrossi/sportsbet/internal/teams"
)

// Noise columns dropped from the combined table before publishing.
// Matchup commentary and "best price" summaries are of no use downstream.
var noiseColumns = []string{"Pitchers", "Quarterbacks", "Best ML", "Best Spread", "Best O/U"}

// interPagePause is the mandatory wait between consecutive page fetches.
// DRatings throttles faster crawls; omitting the pause produces observed
// failures, so it is load-bearing behavior, not tuning.
const interPagePause = 2 * time.Second

// completedPagePause is the slower cadence used for the completed-games
// archive crawl
const completedPagePause = 5 * time.Second

// Mode selects which game listing the collector walks
type Mode int

const (
	// ModeUpcoming walks pages 0..maxPages-1 of the upcoming-games
	// listing; page 0 is the bare URL
	ModeUpcoming Mode = iota
	// ModeCompleted walks the completed-games archive, which starts at
	// page index 2
	ModeCompleted
)

// Collected is the outcome of one collection run: the combined cleaned
// table, parsed row timestamps aligned with Table.Rows (zero time in
// completed mode), and how many pages were skipped on failure.
type Collected struct {
	Table        *htmltable.Table
	Times        []time.Time
	PagesSkipped int
}

// Collector fetches a bounded sequence of paginated DRatings pages and
// concatenates the per-page table that matches a required-column signature
type Collector struct {
	client          *fetch.Client
	baseURL         string
	maxPages        int
	signatureColumn string
	mode            Mode
	loc             *time.Location
	log             *logrus.Entry

	// Pause between page fetches. Defaults per mode; tests shorten it.
	Pause time.Duration
}

// NewCollector creates an upcoming-games collector. signatureColumn is the
// column label that identifies the one table of interest on each page
// ("Pitchers" for MLB, "Quarterbacks" for NFL).
func NewCollector(client *fetch.Client, baseURL string, maxPages int, signatureColumn string, loc *time.Location, log *logrus.Entry) *Collector {
	return &Collector{
		client:          client,
		baseURL:         baseURL,
		maxPages:        maxPages,
		signatureColumn: signatureColumn,
		mode:            ModeUpcoming,
		loc:             loc,
		log:             log.WithField("source", "dratings"),
		Pause:           interPagePause,
	}
}

// NewCompletedCollector creates a completed-games archive collector. The
// signature column for settled games is "Final Runs" (or the sport's
// final-score label).
func NewCompletedCollector(client *fetch.Client, baseURL string, maxPages int, signatureColumn string, loc *time.Location, log *logrus.Entry) *Collector {
	c := NewCollector(client, baseURL, maxPages, signatureColumn, loc, log)
	c.mode = ModeCompleted
	c.Pause = completedPagePause
	return c
}

// pageURL builds the URL for one page index
func (c *Collector) pageURL(page int) string {
	switch c.mode {
	case ModeCompleted:
		return fmt.Sprintf("%scompleted/%d", c.baseURL, page)
	default:
		if page == 0 {
			return c.baseURL
		}
		return fmt.Sprintf("%supcoming/%d", c.baseURL, page)
	}
}

// pageRange returns the inclusive first and exclusive last page index
func (c *Collector) pageRange() (int, int) {
	if c.mode == ModeCompleted {
		return 2, c.maxPages + 2
	}
	return 0, c.maxPages
}

// Collect walks the configured pages, keeps the first qualifying table per
// page, and returns the concatenated, cleaned, de-duplicated result. A
// fetch or parse failure on one page is logged and skipped; only zero
// qualifying tables across every page is reported as ErrNoData.
func (c *Collector) Collect(ctx context.Context) (*Collected, error) {
	var combined *htmltable.Table
	skipped := 0

	first, last := c.pageRange()
	for page := first; page < last; page++ {
		if page > first {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.Pause):
			}
		}

		url := c.pageURL(page)
		pageLog := c.log.WithFields(logrus.Fields{"page": page, "url": url})
		pageLog.Info("fetching page")

		doc, err := c.client.GetDocument(ctx, url)
		if err != nil {
			pageLog.Warnf("skipping page: %v", err)
			skipped++
			continue
		}

		table := c.findQualifyingTable(htmltable.ParseAll(doc))
		if table == nil {
			pageLog.Warnf("no table with %q column on page", c.signatureColumn)
			skipped++
			continue
		}

		if combined == nil {
			combined = table
		} else {
			appendAligned(combined, table)
		}
	}

	if combined == nil {
		return nil, fmt.Errorf("dratings: %w (skipped %d pages)", sources.ErrNoData, skipped)
	}

	collected := c.clean(combined)
	collected.PagesSkipped = skipped

	c.log.WithFields(logrus.Fields{
		"rows":    len(collected.Table.Rows),
		"skipped": skipped,
	}).Info("collected prediction table")

	return collected, nil
}

// findQualifyingTable returns the first table whose column set contains
// the signature column
func (c *Collector) findQualifyingTable(tables []*htmltable.Table) *htmltable.Table {
	for _, table := range tables {
		if table.HasColumn(c.signatureColumn) {
			return table
		}
	}
	return nil
}

// appendAligned appends src's rows to dst, matching cells by column name.
// Pages occasionally gain or lose a column mid-season; cells with no
// matching destination column are dropped and missing ones stay empty.
func appendAligned(dst, src *htmltable.Table) {
	indexes := make([]int, len(dst.Columns))
	for i, col := range dst.Columns {
		indexes[i] = src.ColumnIndex(col)
	}

	for _, row := range src.Rows {
		cells := make([]string, len(dst.Columns))
		for i, srcIdx := range indexes {
			if srcIdx >= 0 && srcIdx < len(row) {
				cells[i] = row[srcIdx]
			}
		}
		dst.Rows = append(dst.Rows, cells)
	}
}

// clean applies the post-collection grooming: noise columns out, the
// "Bet…" column renamed, franchise rewrites, timestamps parsed, bad rows
// dropped, duplicates collapsed, chronological ordering.
func (c *Collector) clean(table *htmltable.Table) *Collected {
	table.DropColumns(noiseColumns...)
	table.RenameColumnPrefix("Bet", "BetValue")

	teamsIdx := table.ColumnIndex("Teams")
	timeIdx := table.ColumnIndex("Time")

	type keyedRow struct {
		cells []string
		t     time.Time
	}

	var rows []keyedRow
	seen := make(map[string]bool)

	for _, cells := range table.Rows {
		if teamsIdx >= 0 && teamsIdx < len(cells) {
			cells[teamsIdx] = teams.RewriteFranchises(cells[teamsIdx])
		}

		var rowTime time.Time
		if c.mode == ModeUpcoming {
			if timeIdx < 0 || timeIdx >= len(cells) {
				continue
			}
			parsed, err := parseMixedTime(cells[timeIdx])
			if err != nil {
				c.log.WithField("time", cells[timeIdx]).Debug("dropping row with unparseable time")
				continue
			}
			rowTime = parsed.In(c.loc)
			cells[timeIdx] = rowTime.Format(time.RFC3339)
		}

		// De-duplicate by the team-pair text, first occurrence wins.
		// Pagination overlaps between crawls repeat rows verbatim.
		if teamsIdx >= 0 && teamsIdx < len(cells) {
			key := cells[teamsIdx]
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		rows = append(rows, keyedRow{cells: cells, t: rowTime})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].t.Equal(rows[j].t) {
			return rows[i].t.Before(rows[j].t)
		}
		return teamText(rows[i].cells, teamsIdx) < teamText(rows[j].cells, teamsIdx)
	})

	out := &Collected{
		Table: &htmltable.Table{Columns: table.Columns},
	}
	for _, row := range rows {
		out.Table.Rows = append(out.Table.Rows, row.cells)
		out.Times = append(out.Times, row.t)
	}

	return out
}

func teamText(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// mixedTimeLayouts are the textual shapes the Time column has been
// observed to carry. All are interpreted as UTC before conversion to the
// target zone.
var mixedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"Monday, January 2, 2006 3:04 PM",
	"Jan 2 3:04 PM 2006",
}

func parseMixedTime(text string) (time.Time, error) {
	for _, layout := range mixedTimeLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", text)
}
