// Copyright (c) 2024 Neomantra Corp
//
// Instrument writes: unlike the time-series WriteXxx helpers in
// write_objects.go, an instrument table is a single unpartitioned file
// per subtype (§3), so a write must read back whatever is already there,
// merge in the new rows, and drop duplicates on full-row equality (§4.5
// step 3's "merge with existing rows... and drop duplicates on the key
// set columns \ {ts_init, ts_event, type}" — an instrument row has
// neither column, so the key set is every column).

package ingest

import (
	"fmt"
	"sort"

	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
)

func writeInstrumentGroup[T any](
	store *catalog.Store,
	locks *partitionLockSet,
	kind mdcat.InstrumentKind,
	records []T,
	idOf func(T) mdcat.InstrumentId,
	decode func(*pqfile.RowGroupReader) ([]T, error),
	encode func(pqfile.BufferedRowGroupWriter, []T) error,
) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	dir := catalog.InstrumentsDir(kind)
	unlock := locks.lock(dir)
	defer unlock()

	path := catalog.InstrumentsFile(kind)
	var existing []T
	if store.FS.Exists(path) {
		if err := store.ReadParquet(path, func(rgr *pqfile.RowGroupReader) error {
			rows, err := decode(rgr)
			if err != nil {
				return err
			}
			existing = append(existing, rows...)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	merged := dedupInstruments(append(existing, records...), idOf)
	sort.Slice(merged, func(i, j int) bool {
		return idOf(merged[i]).String() < idOf(merged[j]).String()
	})

	if err := store.FS.MkdirAll(dir); err != nil {
		return 0, err
	}
	if err := store.WriteInstrumentParquet(path, kind, func(rgw pqfile.BufferedRowGroupWriter) error {
		return encode(rgw, merged)
	}); err != nil {
		return 0, err
	}
	return len(records), nil
}

// dedupInstruments drops duplicate rows on full-row equality, keeping the
// last occurrence so a re-ingested row overwrites its predecessor's
// values (§3 invariant 4's append-only-with-dedup semantics applied to an
// unpartitioned table).
func dedupInstruments[T any](records []T, idOf func(T) mdcat.InstrumentId) []T {
	seen := make(map[string]int, len(records))
	out := make([]T, 0, len(records))
	for _, r := range records {
		key := fmt.Sprintf("%s|%+v", idOf(r).String(), r)
		if i, ok := seen[key]; ok {
			out[i] = r
			continue
		}
		seen[key] = len(out)
		out = append(out, r)
	}
	return out
}

// WriteCurrencySpots writes an in-memory batch of CurrencySpot
// instruments, merged with whatever the catalog already holds for that
// subtype.
func WriteCurrencySpots(store *catalog.Store, records []*mdcat.CurrencySpot) (int, error) {
	return writeInstrumentGroup(store, newPartitionLockSet(), mdcat.InstrumentKind_CurrencySpot, records,
		func(r *mdcat.CurrencySpot) mdcat.InstrumentId { return r.InstrumentId },
		codec.DecodeCurrencySpotBatch, codec.EncodeCurrencySpotBatch)
}

// WriteCryptoFutures writes an in-memory batch of CryptoFuture instruments.
func WriteCryptoFutures(store *catalog.Store, records []*mdcat.CryptoFuture) (int, error) {
	return writeInstrumentGroup(store, newPartitionLockSet(), mdcat.InstrumentKind_CryptoFuture, records,
		func(r *mdcat.CryptoFuture) mdcat.InstrumentId { return r.InstrumentId },
		codec.DecodeCryptoFutureBatch, codec.EncodeCryptoFutureBatch)
}

// WriteOptionContracts writes an in-memory batch of OptionContract instruments.
func WriteOptionContracts(store *catalog.Store, records []*mdcat.OptionContract) (int, error) {
	return writeInstrumentGroup(store, newPartitionLockSet(), mdcat.InstrumentKind_OptionContract, records,
		func(r *mdcat.OptionContract) mdcat.InstrumentId { return r.InstrumentId },
		codec.DecodeOptionContractBatch, codec.EncodeOptionContractBatch)
}

// WriteBettingInstruments writes an in-memory batch of BettingInstrument instruments.
func WriteBettingInstruments(store *catalog.Store, records []*mdcat.BettingInstrument) (int, error) {
	return writeInstrumentGroup(store, newPartitionLockSet(), mdcat.InstrumentKind_BettingInstrument, records,
		func(r *mdcat.BettingInstrument) mdcat.InstrumentId { return r.InstrumentId },
		codec.DecodeBettingInstrumentBatch, codec.EncodeBettingInstrumentBatch)
}

// WriteEquities writes an in-memory batch of Equity instruments.
func WriteEquities(store *catalog.Store, records []*mdcat.Equity) (int, error) {
	return writeInstrumentGroup(store, newPartitionLockSet(), mdcat.InstrumentKind_Equity, records,
		func(r *mdcat.Equity) mdcat.InstrumentId { return r.InstrumentId },
		codec.DecodeEquityBatch, codec.EncodeEquityBatch)
}

// WriteFutures writes an in-memory batch of Future instruments.
func WriteFutures(store *catalog.Store, records []*mdcat.Future) (int, error) {
	return writeInstrumentGroup(store, newPartitionLockSet(), mdcat.InstrumentKind_Future, records,
		func(r *mdcat.Future) mdcat.InstrumentId { return r.InstrumentId },
		codec.DecodeFutureBatch, codec.EncodeFutureBatch)
}

// WriteInstruments groups a heterogeneous batch of Instrument values by
// concrete kind and writes each group to its subtype table, returning the
// total number of rows accepted across all kinds. Unrecognized concrete
// types are reported as a SchemaMismatch.
func WriteInstruments(store *catalog.Store, instruments []mdcat.Instrument) (int, error) {
	return writeInstrumentsLocked(store, newPartitionLockSet(), instruments)
}

// writeInstrumentsLocked is WriteInstruments with a caller-supplied lock
// set, so a multi-file ingestion run (ProcessFiles) serializes concurrent
// instrument-table writers through the same partitionLockSet it uses for
// every other table instead of each file racing its own fresh set of
// locks.
func writeInstrumentsLocked(store *catalog.Store, locks *partitionLockSet, instruments []mdcat.Instrument) (int, error) {
	var spots []*mdcat.CurrencySpot
	var futures []*mdcat.CryptoFuture
	var options []*mdcat.OptionContract
	var betting []*mdcat.BettingInstrument
	var equities []*mdcat.Equity
	var dated []*mdcat.Future

	for _, inst := range instruments {
		switch v := inst.(type) {
		case *mdcat.CurrencySpot:
			spots = append(spots, v)
		case *mdcat.CryptoFuture:
			futures = append(futures, v)
		case *mdcat.OptionContract:
			options = append(options, v)
		case *mdcat.BettingInstrument:
			betting = append(betting, v)
		case *mdcat.Equity:
			equities = append(equities, v)
		case *mdcat.Future:
			dated = append(dated, v)
		default:
			return 0, fmt.Errorf("%w: unrecognized instrument type %T", mdcat.ErrSchemaMismatch, inst)
		}
	}

	total := 0
	for _, step := range []func() (int, error){
		func() (int, error) {
			return writeInstrumentGroup(store, locks, mdcat.InstrumentKind_CurrencySpot, spots,
				func(r *mdcat.CurrencySpot) mdcat.InstrumentId { return r.InstrumentId },
				codec.DecodeCurrencySpotBatch, codec.EncodeCurrencySpotBatch)
		},
		func() (int, error) {
			return writeInstrumentGroup(store, locks, mdcat.InstrumentKind_CryptoFuture, futures,
				func(r *mdcat.CryptoFuture) mdcat.InstrumentId { return r.InstrumentId },
				codec.DecodeCryptoFutureBatch, codec.EncodeCryptoFutureBatch)
		},
		func() (int, error) {
			return writeInstrumentGroup(store, locks, mdcat.InstrumentKind_OptionContract, options,
				func(r *mdcat.OptionContract) mdcat.InstrumentId { return r.InstrumentId },
				codec.DecodeOptionContractBatch, codec.EncodeOptionContractBatch)
		},
		func() (int, error) {
			return writeInstrumentGroup(store, locks, mdcat.InstrumentKind_BettingInstrument, betting,
				func(r *mdcat.BettingInstrument) mdcat.InstrumentId { return r.InstrumentId },
				codec.DecodeBettingInstrumentBatch, codec.EncodeBettingInstrumentBatch)
		},
		func() (int, error) {
			return writeInstrumentGroup(store, locks, mdcat.InstrumentKind_Equity, equities,
				func(r *mdcat.Equity) mdcat.InstrumentId { return r.InstrumentId },
				codec.DecodeEquityBatch, codec.EncodeEquityBatch)
		},
		func() (int, error) {
			return writeInstrumentGroup(store, locks, mdcat.InstrumentKind_Future, dated,
				func(r *mdcat.Future) mdcat.InstrumentId { return r.InstrumentId },
				codec.DecodeFutureBatch, codec.EncodeFutureBatch)
		},
	} {
		n, err := step()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
