// Package sources holds the shared outcomes of the source collectors.
package sources

import "errors"

// ErrNoData marks the "source yielded nothing usable" terminal state:
// no qualifying table on any page, a missing pre block or header phrase,
// or zero parsed rows. It is a normal, expected outcome for a source,
// distinguishable both from a hard failure and from an empty-but-
// successful result.
var ErrNoData = errors.New("no data from source")
