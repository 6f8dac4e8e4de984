// Copyright (c) 2024 Neomantra Corp
//
// Instrument queries: unlike queryGroup's partitioned range scan, an
// instrument table is a single unpartitioned file with no ts_init to
// bound, so a query is just "read the file, filter by instrument id".
// Instruments also close spec.md §4.7's closing paragraph: "for queries
// over an abstract base type... the engine unions across all subtype
// tables and concatenates results; a per-subtype error that is plausibly
// due to an unrelated predicate is skipped rather than raised".

package query

import (
	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
)

func queryInstrumentGroup[T any](
	store *catalog.Store,
	kind mdcat.InstrumentKind,
	ids []mdcat.InstrumentId,
	decode func(*pqfile.RowGroupReader) ([]T, error),
	idOf func(T) mdcat.InstrumentId,
) ([]T, error) {
	path := catalog.InstrumentsFile(kind)
	if !store.FS.Exists(path) {
		return nil, nil
	}
	var out []T
	err := store.ReadParquet(path, func(rgr *pqfile.RowGroupReader) error {
		recs, err := decode(rgr)
		if err != nil {
			return err
		}
		for _, r := range recs {
			if len(ids) == 0 {
				out = append(out, r)
				continue
			}
			for _, want := range ids {
				if idOf(r) == want {
					out = append(out, r)
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, &mdcat.CorruptPartitionError{Path: path, Err: err}
	}
	return out, nil
}

// QueryCurrencySpots returns every CurrencySpot instrument matching ids
// (all of them, if ids is empty).
func QueryCurrencySpots(store *catalog.Store, ids []mdcat.InstrumentId) ([]*mdcat.CurrencySpot, error) {
	return queryInstrumentGroup(store, mdcat.InstrumentKind_CurrencySpot, ids,
		codec.DecodeCurrencySpotBatch, func(r *mdcat.CurrencySpot) mdcat.InstrumentId { return r.InstrumentId })
}

// QueryCryptoFutures returns every CryptoFuture instrument matching ids.
func QueryCryptoFutures(store *catalog.Store, ids []mdcat.InstrumentId) ([]*mdcat.CryptoFuture, error) {
	return queryInstrumentGroup(store, mdcat.InstrumentKind_CryptoFuture, ids,
		codec.DecodeCryptoFutureBatch, func(r *mdcat.CryptoFuture) mdcat.InstrumentId { return r.InstrumentId })
}

// QueryOptionContracts returns every OptionContract instrument matching ids.
func QueryOptionContracts(store *catalog.Store, ids []mdcat.InstrumentId) ([]*mdcat.OptionContract, error) {
	return queryInstrumentGroup(store, mdcat.InstrumentKind_OptionContract, ids,
		codec.DecodeOptionContractBatch, func(r *mdcat.OptionContract) mdcat.InstrumentId { return r.InstrumentId })
}

// QueryBettingInstruments returns every BettingInstrument matching ids.
func QueryBettingInstruments(store *catalog.Store, ids []mdcat.InstrumentId) ([]*mdcat.BettingInstrument, error) {
	return queryInstrumentGroup(store, mdcat.InstrumentKind_BettingInstrument, ids,
		codec.DecodeBettingInstrumentBatch, func(r *mdcat.BettingInstrument) mdcat.InstrumentId { return r.InstrumentId })
}

// QueryEquities returns every Equity instrument matching ids.
func QueryEquities(store *catalog.Store, ids []mdcat.InstrumentId) ([]*mdcat.Equity, error) {
	return queryInstrumentGroup(store, mdcat.InstrumentKind_Equity, ids,
		codec.DecodeEquityBatch, func(r *mdcat.Equity) mdcat.InstrumentId { return r.InstrumentId })
}

// QueryFutures returns every Future instrument matching ids.
func QueryFutures(store *catalog.Store, ids []mdcat.InstrumentId) ([]*mdcat.Future, error) {
	return queryInstrumentGroup(store, mdcat.InstrumentKind_Future, ids,
		codec.DecodeFutureBatch, func(r *mdcat.Future) mdcat.InstrumentId { return r.InstrumentId })
}

// Instruments unions every instrument subtype table, per spec.md §4.7's
// "for queries over an abstract base type ('any Instrument')... the
// engine unions across all subtype tables and concatenates results". ids
// filters by instrument id across all subtypes; an empty ids returns
// every instrument the catalog holds. A per-subtype CorruptPartitionError
// is swallowed (logged to the returned warnings slice) rather than
// aborting the whole union, since with several subtypes in play a
// corrupt or malformed one subtype's file is plausibly unrelated to what
// the caller is actually looking for.
func Instruments(store *catalog.Store, ids []mdcat.InstrumentId) ([]mdcat.Instrument, []error) {
	var out []mdcat.Instrument
	var warnings []error

	spots, err := QueryCurrencySpots(store, ids)
	if err != nil {
		warnings = append(warnings, err)
	}
	for _, r := range spots {
		out = append(out, r)
	}

	futures, err := QueryCryptoFutures(store, ids)
	if err != nil {
		warnings = append(warnings, err)
	}
	for _, r := range futures {
		out = append(out, r)
	}

	options, err := QueryOptionContracts(store, ids)
	if err != nil {
		warnings = append(warnings, err)
	}
	for _, r := range options {
		out = append(out, r)
	}

	betting, err := QueryBettingInstruments(store, ids)
	if err != nil {
		warnings = append(warnings, err)
	}
	for _, r := range betting {
		out = append(out, r)
	}

	equities, err := QueryEquities(store, ids)
	if err != nil {
		warnings = append(warnings, err)
	}
	for _, r := range equities {
		out = append(out, r)
	}

	dated, err := QueryFutures(store, ids)
	if err != nil {
		warnings = append(warnings, err)
	}
	for _, r := range dated {
		out = append(out, r)
	}

	return out, warnings
}
