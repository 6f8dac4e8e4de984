// Copyright (c) 2024 Neomantra Corp
//
// Consumer-facing collaborator interfaces named by spec.md §6: the
// boundary a live trading strategy or risk engine would implement against.
// No concrete implementation ships in this repo — a live writer, strategy
// runner, or risk engine are out-of-scope collaborators per spec.md's own
// scoping — but the interfaces themselves are part of this package's
// public surface.

package mdcat

// RecordSink receives a fully-decoded record one at a time, the
// streaming counterpart to Visitor for a consumer that doesn't need
// per-type dispatch (e.g. a live writer fanning records out to a socket).
type RecordSink interface {
	Accept(record Record) error
}

// InstrumentRegistry resolves instrument ids to their static Instrument
// definition and tracks the closed set a ParserFactory-built Parser has
// been told about.
type InstrumentRegistry interface {
	Find(id InstrumentId) (Instrument, bool)
	Add(instrument Instrument) error
	All() map[InstrumentId]Instrument
}

// ParserFactory produces a raw-file parser bound to an InstrumentRegistry,
// so a parser can resolve instrument_id references without the parser
// package depending concretely on whatever registry implementation the
// caller wired up. The returned value satisfies internal/rawfile.Parser;
// it is typed any here since this is the root package and internal/rawfile
// imports it, not the reverse.
type ParserFactory interface {
	NewParser(registry InstrumentRegistry) (any, error)
}
