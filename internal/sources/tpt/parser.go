package tpt

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

// The prediction-tracker page embeds its data as one preformatted text
// block. The table of interest starts at this header phrase (column
// alignment included) and the data region ends at the separator line.
const (
	headerPhrase = "Home                Visitor"
	separator    = "__________"
)

// colSpec is one fixed-position column: [start, end) character offsets
// into each data line
type colSpec struct {
	name  string
	start int
	end   int
}

// Column positions are fixed by the source's text layout
var colSpecs = []colSpec{
	{"Home", 0, 19},
	{"Visitor", 19, 39},
	{"OpeningLine", 39, 48},
	{"UpdatedLine", 48, 57},
	{"MidweekLine", 57, 66},
	{"PredictionAvg", 66, 78},
	{"PredictionMedian", 78, 89},
	{"PredictionStdDev", 89, 108},
	{"PredictionMin", 108, 117},
	{"PredictionMax", 117, 124},
	{"ProbabilityWins", 124, 136},
	{"ProbabilityCovers", 136, 146},
}

// Parser fetches the prediction-tracker page and parses its fixed-width
// text table
type Parser struct {
	client *fetch.Client
	url    string
	log    *logrus.Entry
}

// NewParser creates a parser for the configured page URL
func NewParser(client *fetch.Client, url string, log *logrus.Entry) *Parser {
	return &Parser{
		client: client,
		url:    url,
		log:    log.WithField("source", "tpt"),
	}
}

// Scrape fetches the page and returns the parsed table. Every recognized
// failure shape (missing pre block, missing header phrase, zero data
// rows) reports ErrNoData with the reason; none of them panic.
func (p *Parser) Scrape(ctx context.Context) (*htmltable.Table, error) {
	doc, err := p.client.GetDocument(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	pre := doc.Find("pre").First()
	if pre.Length() == 0 {
		return nil, fmt.Errorf("tpt: no pre block on page: %w", sources.ErrNoData)
	}

	table, err := ParseText(pre.Text())
	if err != nil {
		return nil, err
	}

	p.log.WithField("rows", len(table.Rows)).Info("parsed prediction table")
	return table, nil
}

// ParseText parses the fixed-width table out of a pre block's text
func ParseText(text string) (*htmltable.Table, error) {
	headerIdx := strings.Index(text, headerPhrase)
	if headerIdx < 0 {
		return nil, fmt.Errorf("tpt: header phrase not found: %w", sources.ErrNoData)
	}

	// Data starts two lines below the header line itself
	lines := strings.Split(text[headerIdx:], "\n")
	if len(lines) <= 2 {
		return nil, fmt.Errorf("tpt: no data lines after header: %w", sources.ErrNoData)
	}
	dataText := strings.Join(lines[2:], "\n")

	// The separator terminates the data region; without one, the rest of
	// the block is taken as data
	if sepIdx := strings.Index(dataText, separator); sepIdx >= 0 {
		dataText = dataText[:sepIdx]
	}

	table := &htmltable.Table{}
	for _, spec := range colSpecs {
		table.Columns = append(table.Columns, spec.name)
	}

	for _, line := range strings.Split(dataText, "\n") {
		cells := sliceLine(line)
		if cells == nil {
			continue
		}
		table.Rows = append(table.Rows, cells)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("tpt: zero data rows: %w", sources.ErrNoData)
	}

	finishTable(table)
	return table, nil
}

// sliceLine cuts one text line at the fixed column offsets. Lines that
// are empty across every column are dropped.
func sliceLine(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	cells := make([]string, len(colSpecs))
	empty := true
	for i, spec := range colSpecs {
		cells[i] = strings.TrimSpace(sliceAt(line, spec.start, spec.end))
		if cells[i] != "" {
			empty = false
		}
	}

	if empty {
		return nil
	}
	return cells
}

func sliceAt(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// finishTable resolves the team-name columns to canonical franchise names
// and synthesizes the "<away> at <home>" matchup label
func finishTable(table *htmltable.Table) {
	homeIdx := table.ColumnIndex("Home")
	visitorIdx := table.ColumnIndex("Visitor")

	table.Columns = append(table.Columns, "Matchup")
	for i, row := range table.Rows {
		row[homeIdx] = teams.Resolve(row[homeIdx])
		row[visitorIdx] = teams.Resolve(row[visitorIdx])
		table.Rows[i] = append(row, row[visitorIdx]+" at "+row[homeIdx])
	}
}
