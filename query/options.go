// Copyright (c) 2024 Neomantra Corp
//
// QueryOptions makes the original's dynamic kwargs query parameters
// explicit, per spec.md §9's "Dynamic kwargs query parameters... replace
// with an explicit QueryOptions configuration". Start/End accept either a
// raw ts_init or an ISO-8601 UTC string, parsed with
// github.com/relvacode/iso8601 the way spec.md §4.7 calls for — faster
// than time.Parse and tolerant of the timestamp variants raw feeds use.

package query

import (
	"fmt"

	"github.com/relvacode/iso8601"

	"github.com/marketcore/mdcat-go"
)

// Options configures a range query over a single record table.
type Options struct {
	InstrumentIds  []mdcat.InstrumentId
	Start          *uint64 // inclusive ts_init lower bound, nanoseconds
	End            *uint64 // inclusive ts_init upper bound, nanoseconds
	Predicate      Expr
	RaiseOnEmpty   bool
	SortColumns    []string
	AsRecords      bool
}

// WithStartString parses start as an ISO-8601 UTC timestamp and sets
// Options.Start to its nanosecond ts_init.
func (o *Options) WithStartString(start string) error {
	t, err := iso8601.ParseString(start)
	if err != nil {
		return fmt.Errorf("query: bad start timestamp %q: %w", start, err)
	}
	ns := uint64(t.UnixNano())
	o.Start = &ns
	return nil
}

// WithEndString parses end as an ISO-8601 UTC timestamp and sets
// Options.End to its nanosecond ts_init.
func (o *Options) WithEndString(end string) error {
	t, err := iso8601.ParseString(end)
	if err != nil {
		return fmt.Errorf("query: bad end timestamp %q: %w", end, err)
	}
	ns := uint64(t.UnixNano())
	o.End = &ns
	return nil
}

// inRange reports whether ts falls within the inclusive [Start, End] bound,
// treating a nil bound as unbounded on that side.
func (o *Options) inRange(ts uint64) bool {
	if o.Start != nil && ts < *o.Start {
		return false
	}
	if o.End != nil && ts > *o.End {
		return false
	}
	return true
}

// matchesInstrument reports whether id is included by InstrumentIds,
// treating an empty list as "all instruments".
func (o *Options) matchesInstrument(id mdcat.InstrumentId) bool {
	if len(o.InstrumentIds) == 0 {
		return true
	}
	for _, want := range o.InstrumentIds {
		if want == id {
			return true
		}
	}
	return false
}
