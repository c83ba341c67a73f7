package teams

import "strings"

// NFL franchise name mappings. Model sources abbreviate inconsistently,
// emitting city-only or nickname-only names, so both forms map to
// the same canonical "City Nickname" string.
var nflCanonicalNames = map[string]string{
	"Arizona":      "Arizona Cardinals",
	"Atlanta":      "Atlanta Falcons",
	"Baltimore":    "Baltimore Ravens",
	"Buffalo":      "Buffalo Bills",
	"Carolina":     "Carolina Panthers",
	"Chicago":      "Chicago Bears",
	"Cincinnati":   "Cincinnati Bengals",
	"Cleveland":    "Cleveland Browns",
	"Dallas":       "Dallas Cowboys",
	"Denver":       "Denver Broncos",
	"Detroit":      "Detroit Lions",
	"Green Bay":    "Green Bay Packers",
	"Houston":      "Houston Texans",
	"Indianapolis": "Indianapolis Colts",
	"Jacksonville": "Jacksonville Jaguars",
	"Kansas City":  "Kansas City Chiefs",
	"Las Vegas":    "Las Vegas Raiders",
	"LA Chargers":  "Los Angeles Chargers",
	"LA Rams":      "Los Angeles Rams",
	"Miami":        "Miami Dolphins",
	"Minnesota":    "Minnesota Vikings",
	"New England":  "New England Patriots",
	"New Orleans":  "New Orleans Saints",
	"N.Y. Giants":  "New York Giants",
	"N.Y. Jets":    "New York Jets",
	"Philadelphia": "Philadelphia Eagles",
	"Pittsburgh":   "Pittsburgh Steelers",
	"San Francisco": "San Francisco 49ers",
	"Seattle":      "Seattle Seahawks",
	"Tampa Bay":    "Tampa Bay Buccaneers",
	"Tennessee":    "Tennessee Titans",
	"Washington":   "Washington Commanders",
	"Eagles":       "Philadelphia Eagles",
	"Cowboys":      "Dallas Cowboys",
	"Chargers":     "Los Angeles Chargers",
	"Chiefs":       "Kansas City Chiefs",
	"Colts":        "Indianapolis Colts",
	"Dolphins":     "Miami Dolphins",
	"Jets":         "New York Jets",
	"Steelers":     "Pittsburgh Steelers",
	"Giants":       "New York Giants",
	"Falcons":      "Atlanta Falcons",
	"Buccaneers":   "Tampa Bay Buccaneers",
	"Saints":       "New Orleans Saints",
	"Cardinals":    "Arizona Cardinals",
	"Browns":       "Cleveland Browns",
	"Bengals":      "Cincinnati Bengals",
	"Jaguars":      "Jacksonville Jaguars",
	"Panthers":     "Carolina Panthers",
	"Patriots":     "New England Patriots",
	"Raiders":      "Las Vegas Raiders",
	"Broncos":      "Denver Broncos",
	"Titans":       "Tennessee Titans",
	"Seahawks":     "Seattle Seahawks",
	"Niners":       "San Francisco 49ers",
	"Rams":         "Los Angeles Rams",
	"Texans":       "Houston Texans",
	"Packers":      "Green Bay Packers",
	"Lions":        "Detroit Lions",
	"Bills":        "Buffalo Bills",
	"Ravens":       "Baltimore Ravens",
	"Bears":        "Chicago Bears",
	"Vikings":      "Minnesota Vikings",
}

// Franchise rewrites applied inside free text rather than on exact cells.
// The A's dropped their city name in 2025 and odds feeds caught up before
// the model sites did.
var franchiseRewrites = map[string]string{
	"Oakland Athletics": "Athletics",
}

// Resolve maps a short or partial franchise name to its canonical
// "City Nickname" form. Lookup is exact and case-sensitive; unknown
// names pass through unchanged so a renamed franchise degrades to an
// unmatched join rather than a runtime failure.
func Resolve(name string) string {
	if canonical, ok := nflCanonicalNames[name]; ok {
		return canonical
	}
	return name
}

// RewriteFranchises applies the free-text franchise rewrites to s
func RewriteFranchises(s string) string {
	for old, current := range franchiseRewrites {
		s = strings.ReplaceAll(s, old, current)
	}
	return s
}
