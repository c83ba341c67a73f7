package sink

import (
	"context"

	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
)

// TabularWriter persists one named table of scraped or derived data.
// Implementations replace or append per their destination's semantics.
type TabularWriter interface {
	Write(ctx context.Context, worksheet string, table *htmltable.Table) error
}
