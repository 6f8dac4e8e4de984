// Copyright (c) 2024 Neomantra Corp
//
// Per-record-type flush: sorts a collected group by ts_init, computes the
// partition's filename bounds, updates the table's mapping sidecar, and
// writes the group as one parquet file via the catalog Store. One
// writeGroup[T] generic replaces what would otherwise be ten
// near-identical flush functions.

package ingest

import (
	"slices"
	"sort"
	"strconv"

	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
)

// uniqueBoundsFileName picks the lowest monotonic suffix {i} for which
// BoundsFileName(min, max, i) isn't already present in existing, per
// spec.md:148's "if basename_template would collide, suffix {i}
// monotonically".
func uniqueBoundsFileName(existing []string, min, max uint64) string {
	for i := 0; ; i++ {
		name := catalog.BoundsFileName(min, max, strconv.Itoa(i))
		if !slices.Contains(existing, name) {
			return name
		}
	}
}

func writeGroup[T any](
	store *catalog.Store,
	locks *partitionLockSet,
	rt mdcat.RecordType,
	instrumentId mdcat.InstrumentId,
	recs []T,
	tsInitOf func(T) uint64,
	encode func(pqfile.BufferedRowGroupWriter, []T) error,
) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	sort.Slice(recs, func(i, j int) bool { return tsInitOf(recs[i]) < tsInitOf(recs[j]) })

	tableDir := catalog.TableDir(rt)
	unlock := locks.lock(tableDir + "|" + instrumentId.String())
	defer unlock()

	mappings, err := catalog.LoadMappings(store.FS, tableDir)
	if err != nil {
		return 0, err
	}
	if _, err := mappings.Record(instrumentId); err != nil {
		return 0, err
	}
	partitionDir := tableDir
	if rt.IsPartitionedByInstrument() {
		partitionDir = catalog.PartitionDir(tableDir, instrumentId)
	}

	min, max := tsInitOf(recs[0]), tsInitOf(recs[0])
	for _, r := range recs[1:] {
		ts := tsInitOf(r)
		if ts < min {
			min = ts
		}
		if ts > max {
			max = ts
		}
	}

	if err := store.FS.MkdirAll(partitionDir); err != nil {
		return 0, err
	}
	existing, err := store.FS.List(partitionDir)
	if err != nil {
		return 0, err
	}
	path := partitionDir + "/" + uniqueBoundsFileName(existing, min, max)
	if err := store.WriteParquet(path, rt, func(rgw pqfile.BufferedRowGroupWriter) error {
		return encode(rgw, recs)
	}); err != nil {
		return 0, err
	}
	if err := mappings.Flush(store.FS, tableDir); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// flushAll writes every buffered group in c, returning the total row count
// durably written.
func flushAll(store *catalog.Store, locks *partitionLockSet, c *collectingVisitor) (int, error) {
	total := 0

	if len(c.instruments) > 0 {
		n, err := writeInstrumentsLocked(store, locks, c.instruments)
		if err != nil {
			return total, err
		}
		total += n
	}

	for id, recs := range c.quoteTicks {
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
	for id, recs := range c.tradeTicks {
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
	for id, recs := range c.bars {
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
	for id, recs := range c.orderBookDeltas {
		n, err := writeGroup(store, locks, mdcat.RecordType_OrderBookDelta, id, recs,
			func(r *mdcat.OrderBookDelta) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.OrderBookDelta) error {
				return codec.EncodeOrderBookDeltaBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	for id, recs := range c.orderBookDepth10s {
		n, err := writeGroup(store, locks, mdcat.RecordType_OrderBookDepth10, id, recs,
			func(r *mdcat.OrderBookDepth10) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.OrderBookDepth10) error {
				return codec.EncodeOrderBookDepth10Batch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	for id, recs := range c.instrumentStatuses {
		n, err := writeGroup(store, locks, mdcat.RecordType_InstrumentStatus, id, recs,
			func(r *mdcat.InstrumentStatus) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.InstrumentStatus) error {
				return codec.EncodeInstrumentStatusBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	for id, recs := range c.instrumentCloses {
		n, err := writeGroup(store, locks, mdcat.RecordType_InstrumentClose, id, recs,
			func(r *mdcat.InstrumentClose) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.InstrumentClose) error {
				return codec.EncodeInstrumentCloseBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	for id, recs := range c.fundingRateUpdates {
		n, err := writeGroup(store, locks, mdcat.RecordType_FundingRateUpdate, id, recs,
			func(r *mdcat.FundingRateUpdate) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.FundingRateUpdate) error {
				return codec.EncodeFundingRateUpdateBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	for id, recs := range c.markPriceUpdates {
		n, err := writeGroup(store, locks, mdcat.RecordType_MarkPriceUpdate, id, recs,
			func(r *mdcat.MarkPriceUpdate) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.MarkPriceUpdate) error {
				return codec.EncodeMarkPriceUpdateBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}
	for id, recs := range c.indexPriceUpdates {
		n, err := writeGroup(store, locks, mdcat.RecordType_IndexPriceUpdate, id, recs,
			func(r *mdcat.IndexPriceUpdate) uint64 { return r.Header.TsInit },
			func(rgw pqfile.BufferedRowGroupWriter, recs []*mdcat.IndexPriceUpdate) error {
				return codec.EncodeIndexPriceUpdateBatch(rgw, recs)
			})
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}
