package sbri

import "encoding/json"

// Wire types for the SBRI odds feed. The feed carries many more markets
// per event than the three we read; unrecognized markets and selections
// are ignored.
type feedResponse struct {
	Events []feedEvent `json:"events"`
}

type feedEvent struct {
	SportName            string       `json:"sportname"`
	TSStart              json.RawMessage `json:"tsstart"`
	ExternalDescription  string       `json:"externaldescription"`
	ShortNameAway        string       `json:"shortnameaway"`
	ShortNameHome        string       `json:"shortnamehome"`
	Markets              []feedMarket `json:"markets"`
}

type feedMarket struct {
	Name       string          `json:"name"`
	Selections []feedSelection `json:"selections"`
}

type feedSelection struct {
	Name                 string   `json:"name"`
	Price                *float64 `json:"price"`
	CurrentHandicap      *float64 `json:"currenthandicap"`
	CurrentMatchHandicap *float64 `json:"currentmatchhandicap"`
}

// MarketNames identifies the three markets read from the feed. The labels
// differ per sport (runs vs points).
type MarketNames struct {
	Moneyline string
	Spread    string
	Total     string
}

// marketNamesBySport maps a sport key to its feed market labels
var marketNamesBySport = map[string]MarketNames{
	"mlb": {Moneyline: "Money Line", Spread: "Run Line", Total: "Total Runs"},
	"nfl": {Moneyline: "Money Line", Spread: "Spread", Total: "Total Points"},
}

// MarketsFor returns the feed market labels for a sport key, defaulting
// to the NFL labels for unknown sports
func MarketsFor(sport string) MarketNames {
	if names, ok := marketNamesBySport[sport]; ok {
		return names
	}
	return marketNamesBySport["nfl"]
}
