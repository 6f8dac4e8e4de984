// Copyright (c) 2024 Neomantra Corp
//
// WriteObjects bypasses the raw-file parser entirely for callers that
// already hold in-memory records (e.g. a backtest run writing its own
// fills), mirroring the original's write_objects path referenced in
// original_source/nautilus_trader/persistence/catalog.py's catalog
// write helpers. It reuses the same group-sort-write path as the normal
// ingestion flow, just skipping the rawfile.Reader/Parser stage.

package ingest

import (
	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
)

// WriteQuoteTicks writes an in-memory batch of quote ticks straight to the
// catalog, grouped by instrument id exactly as ProcessFiles would have
// grouped them had they come from a raw file.
func WriteQuoteTicks(store *catalog.Store, records []*mdcat.QuoteTick) (int, error) {
	locks := newPartitionLockSet()
	byId := make(map[mdcat.InstrumentId][]*mdcat.QuoteTick)
	for _, r := range records {
		id := r.Header.InstrumentId
		byId[id] = append(byId[id], r)
	}
	total := 0
	for id, recs := range byId {
		n, err := writeGroup(store, locks, mdcat.RecordType_QuoteTick, id, recs,
			func(r *mdcat.QuoteTick) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.QuoteTick) error {
				return codec.EncodeQuoteTickBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// WriteTradeTicks writes an in-memory batch of trade ticks straight to the
// catalog.
func WriteTradeTicks(store *catalog.Store, records []*mdcat.TradeTick) (int, error) {
	locks := newPartitionLockSet()
	byId := make(map[mdcat.InstrumentId][]*mdcat.TradeTick)
	for _, r := range records {
		id := r.Header.InstrumentId
		byId[id] = append(byId[id], r)
	}
	total := 0
	for id, recs := range byId {
		n, err := writeGroup(store, locks, mdcat.RecordType_TradeTick, id, recs,
			func(r *mdcat.TradeTick) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.TradeTick) error {
				return codec.EncodeTradeTickBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// WriteBars writes an in-memory batch of bars straight to the catalog.
func WriteBars(store *catalog.Store, records []*mdcat.Bar) (int, error) {
	locks := newPartitionLockSet()
	byId := make(map[mdcat.InstrumentId][]*mdcat.Bar)
	for _, r := range records {
		id := r.Header.InstrumentId
		byId[id] = append(byId[id], r)
	}
	total := 0
	for id, recs := range byId {
		n, err := writeGroup(store, locks, mdcat.RecordType_Bar, id, recs,
			func(r *mdcat.Bar) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.Bar) error {
				return codec.EncodeBarBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
