// Copyright (c) 2024 Neomantra Corp
//
// Range query over a catalog table: resolves the requested instrument ids
// against the table's partition-key mapping sidecar, reads and decodes the
// matching partitions, and applies the ts_init range bound, predicate
// pushdown, and sort in memory. Grounded on persistence/catalog.py's
// _query (instrument-id filtering via the dataset's partition expression,
// then a pyarrow.compute filter for everything else); here the
// instrument-id filter and the predicate both run as plain Go filters
// since arrow-go's parquet.file reader used by catalog.Store doesn't
// expose predicate pushdown into row-group statistics.

package query

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

// ErrEmpty is returned when Options.RaiseOnEmpty is set and a query
// matched no rows.
var ErrEmpty = fmt.Errorf("query: no rows matched")

func queryGroup[T any](
	store *catalog.Store,
	rt mdcat.RecordType,
	opts Options,
	decode func(*pqfile.RowGroupReader) ([]T, error),
	tsInitOf func(T) uint64,
	instrumentOf func(T) mdcat.InstrumentId,
	fieldsOf func(T) map[string]any,
) ([]T, error) {
	tableDir := catalog.TableDir(rt)
	mappings, err := catalog.LoadMappings(store.FS, tableDir)
	if err != nil {
		return nil, err
	}

	entries, err := store.FS.List(tableDir)
	if err != nil {
		return nil, err
	}

	var out []T
	for _, e := range entries {
		if !strings.HasPrefix(e, "instrument_id=") {
			continue
		}
		key := strings.TrimPrefix(e, "instrument_id=")
		original, ok := mappings.Original(key)
		if !ok {
			original = key
		}
		partitionDir := path.Join(tableDir, e)
		instrumentId, err := mdcat.ParseInstrumentId(original)
		if err != nil {
			return nil, &mdcat.CorruptPartitionError{Path: partitionDir, Err: err}
		}
		if !opts.matchesInstrument(instrumentId) {
			continue
		}
		files, err := store.FS.List(partitionDir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if !strings.HasSuffix(f, ".parquet") {
				continue
			}
			file := path.Join(partitionDir, f)
			err := store.ReadParquet(file, func(rgr *pqfile.RowGroupReader) error {
				recs, err := decode(rgr)
				if err != nil {
					return err
				}
				for _, r := range recs {
					if !opts.inRange(tsInitOf(r)) {
						continue
					}
					if !opts.matchesInstrument(instrumentOf(r)) {
						continue
					}
					if opts.Predicate != nil && !Match(opts.Predicate, fieldsOf(r)) {
						continue
					}
					out = append(out, r)
				}
				return nil
			})
			if err != nil {
				return nil, &mdcat.CorruptPartitionError{Path: file, Err: err}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if len(opts.SortColumns) == 0 {
			return tsInitOf(out[i]) < tsInitOf(out[j])
		}
		fi, fj := fieldsOf(out[i]), fieldsOf(out[j])
		for _, col := range opts.SortColumns {
			c := compare(fi[col], fj[col])
			if c != 0 {
				return c < 0
			}
		}
		return tsInitOf(out[i]) < tsInitOf(out[j])
	})

	if len(out) == 0 && opts.RaiseOnEmpty {
		return nil, ErrEmpty
	}
	return out, nil
}

func quoteTickFields(r *mdcat.QuoteTick) map[string]any {
	return map[string]any{
		"BidPrice": r.BidPrice.Raw, "AskPrice": r.AskPrice.Raw,
		"BidSize": r.BidSize.Raw, "AskSize": r.AskSize.Raw,
	}
}

// QueryQuoteTicks runs a range query over the quote_tick table.
func QueryQuoteTicks(store *catalog.Store, opts Options) ([]*mdcat.QuoteTick, error) {
	return queryGroup(store, mdcat.RecordType_QuoteTick, opts,
		codec.DecodeQuoteTickBatch,
		func(r *mdcat.QuoteTick) uint64 { return r.Header.TsInit },
		func(r *mdcat.QuoteTick) mdcat.InstrumentId { return r.Header.InstrumentId },
		quoteTickFields)
}

func tradeTickFields(r *mdcat.TradeTick) map[string]any {
	return map[string]any{
		"Price": r.Price.Raw, "Size": r.Size.Raw,
		"AggressorSide": r.AggressorSide.String(), "TradeId": r.TradeId,
	}
}

// QueryTradeTicks runs a range query over the trade_tick table.
func QueryTradeTicks(store *catalog.Store, opts Options) ([]*mdcat.TradeTick, error) {
	return queryGroup(store, mdcat.RecordType_TradeTick, opts,
		codec.DecodeTradeTickBatch,
		func(r *mdcat.TradeTick) uint64 { return r.Header.TsInit },
		func(r *mdcat.TradeTick) mdcat.InstrumentId { return r.Header.InstrumentId },
		tradeTickFields)
}

func barFields(r *mdcat.Bar) map[string]any {
	return map[string]any{
		"BarType": r.BarType.String(), "Open": r.Open.Raw, "High": r.High.Raw,
		"Low": r.Low.Raw, "Close": r.Close.Raw, "Volume": r.Volume.Raw,
	}
}

// QueryBars runs a range query over the bar table.
func QueryBars(store *catalog.Store, opts Options) ([]*mdcat.Bar, error) {
	return queryGroup(store, mdcat.RecordType_Bar, opts,
		codec.DecodeBarBatch,
		func(r *mdcat.Bar) uint64 { return r.Header.TsInit },
		func(r *mdcat.Bar) mdcat.InstrumentId { return r.Header.InstrumentId },
		barFields)
}

func orderBookDeltaFields(r *mdcat.OrderBookDelta) map[string]any {
	return map[string]any{
		"Action": r.Action.String(), "Side": r.Order.Side.String(),
		"Price": r.Order.Price.Raw, "Size": r.Order.Size.Raw, "OrderId": r.Order.OrderId,
	}
}

// QueryOrderBookDeltas runs a range query over the order_book_delta table.
func QueryOrderBookDeltas(store *catalog.Store, opts Options) ([]*mdcat.OrderBookDelta, error) {
	return queryGroup(store, mdcat.RecordType_OrderBookDelta, opts,
		codec.DecodeOrderBookDeltaBatch,
		func(r *mdcat.OrderBookDelta) uint64 { return r.Header.TsInit },
		func(r *mdcat.OrderBookDelta) mdcat.InstrumentId { return r.Header.InstrumentId },
		orderBookDeltaFields)
}

func orderBookDepth10Fields(r *mdcat.OrderBookDepth10) map[string]any {
	return map[string]any{"Flags": r.Flags, "Sequence": r.Sequence}
}

// QueryOrderBookDepth10s runs a range query over the order_book_depth10 table.
func QueryOrderBookDepth10s(store *catalog.Store, opts Options) ([]*mdcat.OrderBookDepth10, error) {
	return queryGroup(store, mdcat.RecordType_OrderBookDepth10, opts,
		codec.DecodeOrderBookDepth10Batch,
		func(r *mdcat.OrderBookDepth10) uint64 { return r.Header.TsInit },
		func(r *mdcat.OrderBookDepth10) mdcat.InstrumentId { return r.Header.InstrumentId },
		orderBookDepth10Fields)
}

func instrumentStatusFields(r *mdcat.InstrumentStatus) map[string]any {
	return map[string]any{"Action": r.Action.String(), "Reason": r.Reason.String()}
}

// QueryInstrumentStatuses runs a range query over the instrument_status table.
func QueryInstrumentStatuses(store *catalog.Store, opts Options) ([]*mdcat.InstrumentStatus, error) {
	return queryGroup(store, mdcat.RecordType_InstrumentStatus, opts,
		codec.DecodeInstrumentStatusBatch,
		func(r *mdcat.InstrumentStatus) uint64 { return r.Header.TsInit },
		func(r *mdcat.InstrumentStatus) mdcat.InstrumentId { return r.Header.InstrumentId },
		instrumentStatusFields)
}

func instrumentCloseFields(r *mdcat.InstrumentClose) map[string]any {
	return map[string]any{"ClosePrice": r.ClosePrice.Raw}
}

// QueryInstrumentCloses runs a range query over the instrument_close table.
func QueryInstrumentCloses(store *catalog.Store, opts Options) ([]*mdcat.InstrumentClose, error) {
	return queryGroup(store, mdcat.RecordType_InstrumentClose, opts,
		codec.DecodeInstrumentCloseBatch,
		func(r *mdcat.InstrumentClose) uint64 { return r.Header.TsInit },
		func(r *mdcat.InstrumentClose) mdcat.InstrumentId { return r.Header.InstrumentId },
		instrumentCloseFields)
}

func fundingRateUpdateFields(r *mdcat.FundingRateUpdate) map[string]any {
	return map[string]any{"Rate": r.Rate.Raw, "NextFunding": r.NextFunding}
}

// QueryFundingRateUpdates runs a range query over the funding_rate_update table.
func QueryFundingRateUpdates(store *catalog.Store, opts Options) ([]*mdcat.FundingRateUpdate, error) {
	return queryGroup(store, mdcat.RecordType_FundingRateUpdate, opts,
		codec.DecodeFundingRateUpdateBatch,
		func(r *mdcat.FundingRateUpdate) uint64 { return r.Header.TsInit },
		func(r *mdcat.FundingRateUpdate) mdcat.InstrumentId { return r.Header.InstrumentId },
		fundingRateUpdateFields)
}

func markPriceUpdateFields(r *mdcat.MarkPriceUpdate) map[string]any {
	return map[string]any{"Value": r.Value.Raw}
}

// QueryMarkPriceUpdates runs a range query over the mark_price_update table.
func QueryMarkPriceUpdates(store *catalog.Store, opts Options) ([]*mdcat.MarkPriceUpdate, error) {
	return queryGroup(store, mdcat.RecordType_MarkPriceUpdate, opts,
		codec.DecodeMarkPriceUpdateBatch,
		func(r *mdcat.MarkPriceUpdate) uint64 { return r.Header.TsInit },
		func(r *mdcat.MarkPriceUpdate) mdcat.InstrumentId { return r.Header.InstrumentId },
		markPriceUpdateFields)
}

func indexPriceUpdateFields(r *mdcat.IndexPriceUpdate) map[string]any {
	return map[string]any{"Value": r.Value.Raw}
}

// QueryIndexPriceUpdates runs a range query over the index_price_update table.
func QueryIndexPriceUpdates(store *catalog.Store, opts Options) ([]*mdcat.IndexPriceUpdate, error) {
	return queryGroup(store, mdcat.RecordType_IndexPriceUpdate, opts,
		codec.DecodeIndexPriceUpdateBatch,
		func(r *mdcat.IndexPriceUpdate) uint64 { return r.Header.TsInit },
		func(r *mdcat.IndexPriceUpdate) mdcat.InstrumentId { return r.Header.InstrumentId },
		indexPriceUpdateFields)
}

// Query dispatches to the typed QueryXxx function for rt, returning the
// matching records as []any (every element a *mdcat.Xxx pointer). Callers
// that know rt at compile time should prefer the typed QueryXxx function
// directly; Query exists for the CLI, which only has rt at runtime.
func Query(store *catalog.Store, rt mdcat.RecordType, opts Options) ([]any, error) {
	switch rt {
	case mdcat.RecordType_QuoteTick:
		return boxSlice(QueryQuoteTicks(store, opts))
	case mdcat.RecordType_TradeTick:
		return boxSlice(QueryTradeTicks(store, opts))
	case mdcat.RecordType_Bar:
		return boxSlice(QueryBars(store, opts))
	case mdcat.RecordType_OrderBookDelta:
		return boxSlice(QueryOrderBookDeltas(store, opts))
	case mdcat.RecordType_OrderBookDepth10:
		return boxSlice(QueryOrderBookDepth10s(store, opts))
	case mdcat.RecordType_InstrumentStatus:
		return boxSlice(QueryInstrumentStatuses(store, opts))
	case mdcat.RecordType_InstrumentClose:
		return boxSlice(QueryInstrumentCloses(store, opts))
	case mdcat.RecordType_FundingRateUpdate:
		return boxSlice(QueryFundingRateUpdates(store, opts))
	case mdcat.RecordType_MarkPriceUpdate:
		return boxSlice(QueryMarkPriceUpdates(store, opts))
	case mdcat.RecordType_IndexPriceUpdate:
		return boxSlice(QueryIndexPriceUpdates(store, opts))
	default:
		return nil, mdcat.ErrSchemaMismatch
	}
}

func boxSlice[T any](recs []T, err error) ([]any, error) {
	if err != nil {
		return nil, err
	}
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out, nil
}
