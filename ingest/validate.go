// Copyright (c) 2024 Neomantra Corp
//
// Validate/repartition: an offline compaction operation, not part of
// normal ingestion. For each partition of a table, reads and unions every
// existing file, drops duplicates (last file wins), and rewrites the rows
// as one file per UTC day of each row's own ts_init, deleting the
// originals. Files are not grouped by the date of their ts_init minimum: a
// file whose rows span several days is split across those days' files.
// Grounded on the same BufferedRowGroupWriter/RowGroupReader path as
// flush.go and internal/codec, generalized across a whole partition
// instead of one freshly-ingested batch.

package ingest

import (
	"fmt"
	"path"
	"sort"
	"strings"

	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
)

// validateGroup reads every existing file under partitionDir via decode,
// unions and dedups by dedupKey (last file wins — files are visited in
// name order: bounds-named ingestion files sort by ts_init_min among
// themselves, and date-named compaction outputs sort after them), then
// rewrites one file per UTC day and removes the sources.
func validateGroup[T any](
	store *catalog.Store,
	rt mdcat.RecordType,
	partitionDir string,
	decode func(*pqfile.RowGroupReader) ([]T, error),
	encode func(pqfile.BufferedRowGroupWriter, []T) error,
	tsInitOf func(T) uint64,
	dedupKey func(T) string,
) error {
	names, err := store.FS.List(partitionDir)
	if err != nil {
		return err
	}
	var files []string
	for _, n := range names {
		if strings.HasSuffix(n, ".parquet") {
			files = append(files, path.Join(partitionDir, n))
		}
	}
	if len(files) <= 1 {
		return nil // nothing to compact
	}
	sort.Strings(files)

	seen := make(map[string]T)
	order := make([]string, 0)
	for _, file := range files {
		err := store.ReadParquet(file, func(rgr *pqfile.RowGroupReader) error {
			recs, err := decode(rgr)
			if err != nil {
				return err
			}
			for _, r := range recs {
				k := dedupKey(r)
				if _, exists := seen[k]; !exists {
					order = append(order, k)
				}
				seen[k] = r // last file wins
			}
			return nil
		})
		if err != nil {
			return &mdcat.CorruptPartitionError{Path: file, Err: err}
		}
	}

	merged := make([]T, 0, len(order))
	for _, k := range order {
		merged = append(merged, seen[k])
	}
	sort.Slice(merged, func(i, j int) bool { return tsInitOf(merged[i]) < tsInitOf(merged[j]) })

	byDay := make(map[uint32][]T)
	var days []uint32
	for _, r := range merged {
		ymd := mdcat.TimeToYMD(mdcat.TimestampToTime(tsInitOf(r)))
		if _, ok := byDay[ymd]; !ok {
			days = append(days, ymd)
		}
		byDay[ymd] = append(byDay[ymd], r)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	written := make(map[string]bool, len(days))
	for _, day := range days {
		dayRecs := byDay[day]
		dest := path.Join(partitionDir, catalog.DateFileName(day))
		if err := store.WriteParquet(dest, rt, func(rgw pqfile.BufferedRowGroupWriter) error {
			return encode(rgw, dayRecs)
		}); err != nil {
			return err
		}
		written[dest] = true
	}

	for _, file := range files {
		if written[file] {
			continue // a source that shared its name with a day file was overwritten, not orphaned
		}
		if err := store.FS.Remove(file); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePartition compacts a single partition directory of rt down to
// one file per UTC day.
func ValidatePartition(store *catalog.Store, rt mdcat.RecordType, partitionDir string) error {
	switch rt {
	case mdcat.RecordType_QuoteTick:
		return validateGroup(store, rt, partitionDir, codec.DecodeQuoteTickBatch, codec.EncodeQuoteTickBatch,
			func(r *mdcat.QuoteTick) uint64 { return r.Header.TsInit },
			func(r *mdcat.QuoteTick) string { return quoteTickKey(r) })
	case mdcat.RecordType_TradeTick:
		return validateGroup(store, rt, partitionDir, codec.DecodeTradeTickBatch, codec.EncodeTradeTickBatch,
			func(r *mdcat.TradeTick) uint64 { return r.Header.TsInit },
			func(r *mdcat.TradeTick) string { return tradeTickKey(r) })
	case mdcat.RecordType_Bar:
		return validateGroup(store, rt, partitionDir, codec.DecodeBarBatch, codec.EncodeBarBatch,
			func(r *mdcat.Bar) uint64 { return r.Header.TsInit },
			func(r *mdcat.Bar) string { return barKey(r) })
	case mdcat.RecordType_OrderBookDelta:
		return validateGroup(store, rt, partitionDir, codec.DecodeOrderBookDeltaBatch, codec.EncodeOrderBookDeltaBatch,
			func(r *mdcat.OrderBookDelta) uint64 { return r.Header.TsInit },
			func(r *mdcat.OrderBookDelta) string { return orderBookDeltaKey(r) })
	case mdcat.RecordType_OrderBookDepth10:
		return validateGroup(store, rt, partitionDir, codec.DecodeOrderBookDepth10Batch, codec.EncodeOrderBookDepth10Batch,
			func(r *mdcat.OrderBookDepth10) uint64 { return r.Header.TsInit },
			func(r *mdcat.OrderBookDepth10) string { return orderBookDepth10Key(r) })
	case mdcat.RecordType_InstrumentStatus:
		return validateGroup(store, rt, partitionDir, codec.DecodeInstrumentStatusBatch, codec.EncodeInstrumentStatusBatch,
			func(r *mdcat.InstrumentStatus) uint64 { return r.Header.TsInit },
			func(r *mdcat.InstrumentStatus) string { return instrumentStatusKey(r) })
	case mdcat.RecordType_InstrumentClose:
		return validateGroup(store, rt, partitionDir, codec.DecodeInstrumentCloseBatch, codec.EncodeInstrumentCloseBatch,
			func(r *mdcat.InstrumentClose) uint64 { return r.Header.TsInit },
			func(r *mdcat.InstrumentClose) string { return instrumentCloseKey(r) })
	case mdcat.RecordType_FundingRateUpdate:
		return validateGroup(store, rt, partitionDir, codec.DecodeFundingRateUpdateBatch, codec.EncodeFundingRateUpdateBatch,
			func(r *mdcat.FundingRateUpdate) uint64 { return r.Header.TsInit },
			func(r *mdcat.FundingRateUpdate) string { return fundingRateUpdateKey(r) })
	case mdcat.RecordType_MarkPriceUpdate:
		return validateGroup(store, rt, partitionDir, codec.DecodeMarkPriceUpdateBatch, codec.EncodeMarkPriceUpdateBatch,
			func(r *mdcat.MarkPriceUpdate) uint64 { return r.Header.TsInit },
			func(r *mdcat.MarkPriceUpdate) string { return markPriceUpdateKey(r) })
	case mdcat.RecordType_IndexPriceUpdate:
		return validateGroup(store, rt, partitionDir, codec.DecodeIndexPriceUpdateBatch, codec.EncodeIndexPriceUpdateBatch,
			func(r *mdcat.IndexPriceUpdate) uint64 { return r.Header.TsInit },
			func(r *mdcat.IndexPriceUpdate) string { return indexPriceUpdateKey(r) })
	default:
		return mdcat.ErrSchemaMismatch
	}
}

// ValidateTable compacts every partition of rt under the table directory.
func ValidateTable(store *catalog.Store, rt mdcat.RecordType) error {
	tableDir := catalog.TableDir(rt)
	entries, err := store.FS.List(tableDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !strings.HasPrefix(e, "instrument_id=") {
			continue
		}
		if err := ValidatePartition(store, rt, path.Join(tableDir, e)); err != nil {
			return err
		}
	}
	return nil
}

// Dedup keys compare every field except the ts_event/ts_init header
// timestamps, per spec.md's "columns \ {ts_init, ts_event, type}" rule.

func quoteTickKey(r *mdcat.QuoteTick) string {
	return mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()) + "|" +
		r.BidPrice.String() + "|" + r.AskPrice.String() + "|" +
		r.BidSize.String() + "|" + r.AskSize.String()
}

func tradeTickKey(r *mdcat.TradeTick) string {
	return mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()) + "|" +
		r.Price.String() + "|" + r.Size.String() + "|" + r.AggressorSide.String() + "|" + r.TradeId
}

func barKey(r *mdcat.Bar) string {
	return r.BarType.String() + "|" + r.Open.String() + "|" + r.High.String() + "|" +
		r.Low.String() + "|" + r.Close.String() + "|" + r.Volume.String()
}

func instrumentCloseKey(r *mdcat.InstrumentClose) string {
	return mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()) + "|" + r.ClosePrice.String()
}

func orderBookDeltaKey(r *mdcat.OrderBookDelta) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d|%d",
		mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()),
		r.Action.String(), r.Order.Side.String(),
		r.Order.Price.String(), r.Order.Size.String(), r.Order.OrderId,
		r.Flags, r.Sequence)
}

func orderBookDepth10Key(r *mdcat.OrderBookDepth10) string {
	var b strings.Builder
	b.WriteString(mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()))
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "|%s|%s|%d|%s|%s|%d",
			r.Bids[i].Price.String(), r.Bids[i].Size.String(), r.BidCounts[i],
			r.Asks[i].Price.String(), r.Asks[i].Size.String(), r.AskCounts[i])
	}
	fmt.Fprintf(&b, "|%d|%d", r.Flags, r.Sequence)
	return b.String()
}

func instrumentStatusKey(r *mdcat.InstrumentStatus) string {
	return mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()) + "|" +
		r.Action.String() + "|" + r.Reason.String()
}

func fundingRateUpdateKey(r *mdcat.FundingRateUpdate) string {
	return fmt.Sprintf("%s|%s|%d",
		mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()), r.Rate.String(), r.NextFunding)
}

func markPriceUpdateKey(r *mdcat.MarkPriceUpdate) string {
	return mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()) + "|" + r.Value.String()
}

func indexPriceUpdateKey(r *mdcat.IndexPriceUpdate) string {
	return mdcat.SanitizePartitionKey(r.Header.InstrumentId.String()) + "|" + r.Value.String()
}
