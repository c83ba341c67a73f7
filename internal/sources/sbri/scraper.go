package sbri

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ChrisGrossi/sportsbet/internal/fetch"
	"github.com/ChrisGrossi/sportsbet/pkg/models"
	"github.com/ChrisGrossi/sportsbet/pkg/oddsmath"
)

// Scraper fetches the SBRI JSON odds feed and normalizes each event into
// a canonical GameOddsRecord
type Scraper struct {
	client  *fetch.Client
	url     string
	markets MarketNames
	loc     *time.Location
	log     *logrus.Entry
}

// NewScraper creates a scraper for one sport's feed URL
func NewScraper(client *fetch.Client, url, sport string, loc *time.Location, log *logrus.Entry) *Scraper {
	return &Scraper{
		client:  client,
		url:     url,
		markets: MarketsFor(sport),
		loc:     loc,
		log:     log.WithField("source", "sbri"),
	}
}

// Scrape fetches the feed and returns one record per event, sorted by
// (start time, away team). A response with zero events returns an empty
// slice, not an error.
func (s *Scraper) Scrape(ctx context.Context) ([]models.GameOddsRecord, error) {
	var feed feedResponse
	if err := s.client.GetJSON(ctx, s.url, &feed); err != nil {
		return nil, fmt.Errorf("fetching odds feed: %w", err)
	}

	records := make([]models.GameOddsRecord, 0, len(feed.Events))
	for _, event := range feed.Events {
		records = append(records, s.normalizeEvent(event))
	}

	if len(records) == 0 {
		s.log.Warn("no events in odds feed")
		return records, nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].StartTime.Equal(records[j].StartTime) {
			return records[i].StartTime.Before(records[j].StartTime)
		}
		return records[i].AwayTeam < records[j].AwayTeam
	})

	s.log.WithField("events", len(records)).Info("normalized odds feed")
	return records, nil
}

// normalizeEvent converts one raw feed event into a GameOddsRecord.
// An event with no recognized markets still produces a record with the
// team and time fields populated and every price field nil.
func (s *Scraper) normalizeEvent(event feedEvent) models.GameOddsRecord {
	record := models.GameOddsRecord{
		Sport:     event.SportName,
		StartTime: s.parseStart(event.TSStart),
		GameLabel: event.ExternalDescription,
		AwayTeam:  event.ShortNameAway,
		HomeTeam:  event.ShortNameHome,
	}

	for _, market := range event.Markets {
		switch market.Name {
		case s.markets.Moneyline:
			for _, sel := range market.Selections {
				switch sel.Name {
				case record.AwayTeam:
					record.AwayMoneyline = s.toAmerican(sel.Price)
				case record.HomeTeam:
					record.HomeMoneyline = s.toAmerican(sel.Price)
				}
			}

		case s.markets.Spread:
			for _, sel := range market.Selections {
				switch sel.Name {
				case record.AwayTeam:
					record.AwaySpreadOdds = s.toAmerican(sel.Price)
				case record.HomeTeam:
					record.HomeSpreadPoints = sel.CurrentHandicap
					record.HomeSpreadOdds = s.toAmerican(sel.Price)
				}
			}

		case s.markets.Total:
			for _, sel := range market.Selections {
				switch sel.Name {
				case "Over":
					record.OverOdds = s.toAmerican(sel.Price)
					record.TotalPoints = sel.CurrentMatchHandicap
				case "Under":
					record.UnderOdds = s.toAmerican(sel.Price)
				}
			}
		}
	}

	return record
}

// toAmerican converts a decimal feed price to American odds. Invalid or
// missing prices leave the field absent rather than carrying a sentinel.
func (s *Scraper) toAmerican(price *float64) *float64 {
	if price == nil {
		return nil
	}

	american, err := oddsmath.DecimalToAmerican(*price)
	if err != nil {
		s.log.WithField("price", *price).Debugf("skipping unconvertible price: %v", err)
		return nil
	}

	return &american
}

// startLayouts are the timestamp shapes the feed has been observed to use
// for tsstart. Zoneless layouts are interpreted in the feed's home zone.
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseStart parses the feed's tsstart field, which arrives either as an
// epoch number or an ISO-ish string. Unparseable values yield the zero
// time; the row survives and downstream joins simply miss.
func (s *Scraper) parseStart(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	text := strings.Trim(string(raw), `"`)

	if epoch, err := strconv.ParseInt(text, 10, 64); err == nil {
		return time.Unix(epoch, 0).In(s.loc)
	}

	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, text, s.loc); err == nil {
			return t.In(s.loc)
		}
	}

	s.log.WithField("tsstart", text).Warn("unparseable event start time")
	return time.Time{}
}
