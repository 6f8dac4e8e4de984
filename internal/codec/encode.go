// Copyright (c) 2024 Neomantra Corp
//
// Batch encoders from catalog records to Parquet row groups. Adapted from
// dbn-go's internal/file/parquet_writer.go ParquetWriteRow_* family: same
// "one typed ColumnChunkWriter per column, WriteBatch per column" shape,
// but collecting a whole batch of records into column slices first instead
// of writing one record at a time, since the ingestion pipeline always has
// a bounded batch of decoded records in hand before it flushes.

package codec

import (
	"github.com/apache/arrow-go/v18/parquet"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
)

func writeHeaderColumns(rgw pqfile.BufferedRowGroupWriter, startCol int, instrumentIds []string, tsEvent, tsInit []int64) (int, error) {
	if err := writeByteArrayColumn(rgw, startCol, instrumentIds); err != nil {
		return startCol, err
	}
	if err := writeInt64Column(rgw, startCol+1, tsEvent); err != nil {
		return startCol, err
	}
	if err := writeInt64Column(rgw, startCol+2, tsInit); err != nil {
		return startCol, err
	}
	return startCol + 3, nil
}

// headerSlices collapses the per-encoder header extraction: instrument id
// text (empty for a record minted without one), ts_event, ts_init.
func headerSlices(n int, headerOf func(i int) mdcat.RHeader) ([]string, []int64, []int64) {
	ids := make([]string, n)
	tsEvent := make([]int64, n)
	tsInit := make([]int64, n)
	for i := 0; i < n; i++ {
		h := headerOf(i)
		if !h.InstrumentId.IsEmpty() {
			ids[i] = h.InstrumentId.String()
		}
		tsEvent[i] = int64(h.TsEvent)
		tsInit[i] = int64(h.TsInit)
	}
	return ids, tsEvent, tsInit
}

func writeInt64Column(rgw pqfile.BufferedRowGroupWriter, col int, values []int64) error {
	cw, err := rgw.Column(col)
	if err != nil {
		return err
	}
	_, err = cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch(values, nil, nil)
	return err
}

func writeInt32Column(rgw pqfile.BufferedRowGroupWriter, col int, values []int32) error {
	cw, err := rgw.Column(col)
	if err != nil {
		return err
	}
	_, err = cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch(values, nil, nil)
	return err
}

func writeByteArrayColumn(rgw pqfile.BufferedRowGroupWriter, col int, values []string) error {
	cw, err := rgw.Column(col)
	if err != nil {
		return err
	}
	ba := make([]parquet.ByteArray, len(values))
	for i, v := range values {
		ba[i] = parquet.ByteArray(v)
	}
	_, err = cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch(ba, nil, nil)
	return err
}

///////////////////////////////////////////////////////////////////////////////

// EncodeQuoteTickBatch writes a batch of QuoteTick records as one Parquet
// row group, column by column.
func EncodeQuoteTickBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.QuoteTick) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	bidPrice := make([]int64, n)
	askPrice := make([]int64, n)
	precision := make([]int32, n)
	bidSize := make([]int64, n)
	askSize := make([]int64, n)
	sizePrecision := make([]int32, n)
	for i, r := range records {
		bidPrice[i] = r.BidPrice.Raw
		askPrice[i] = r.AskPrice.Raw
		precision[i] = int32(r.BidPrice.Precision)
		bidSize[i] = int64(r.BidSize.Raw)
		askSize[i] = int64(r.AskSize.Raw)
		sizePrecision[i] = int32(r.BidSize.Precision)
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col, bidPrice); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+1, askPrice); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+2, precision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+3, bidSize); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+4, askSize); err != nil {
		return err
	}
	return writeInt32Column(rgw, col+5, sizePrecision)
}

// EncodeTradeTickBatch writes a batch of TradeTick records as one row group.
func EncodeTradeTickBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.TradeTick) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	price := make([]int64, n)
	precision := make([]int32, n)
	size := make([]int64, n)
	sizePrecision := make([]int32, n)
	aggressor := make([]int32, n)
	tradeId := make([]string, n)
	for i, r := range records {
		price[i] = r.Price.Raw
		precision[i] = int32(r.Price.Precision)
		size[i] = int64(r.Size.Raw)
		sizePrecision[i] = int32(r.Size.Precision)
		aggressor[i] = int32(r.AggressorSide)
		tradeId[i] = r.TradeId
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col, price); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+1, precision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+2, size); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+3, sizePrecision); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+4, aggressor); err != nil {
		return err
	}
	return writeByteArrayColumn(rgw, col+5, tradeId)
}

// EncodeBarBatch writes a batch of Bar records as one row group.
func EncodeBarBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.Bar) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	barType := make([]string, n)
	open := make([]int64, n)
	high := make([]int64, n)
	low := make([]int64, n)
	cls := make([]int64, n)
	precision := make([]int32, n)
	volume := make([]int64, n)
	sizePrecision := make([]int32, n)
	for i, r := range records {
		barType[i] = r.BarType.String()
		open[i] = r.Open.Raw
		high[i] = r.High.Raw
		low[i] = r.Low.Raw
		cls[i] = r.Close.Raw
		precision[i] = int32(r.Open.Precision)
		volume[i] = int64(r.Volume.Raw)
		sizePrecision[i] = int32(r.Volume.Precision)
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, col, barType); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+1, open); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+2, high); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+3, low); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+4, cls); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+5, precision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+6, volume); err != nil {
		return err
	}
	return writeInt32Column(rgw, col+7, sizePrecision)
}

// EncodeOrderBookDeltaBatch writes a batch of OrderBookDelta records.
func EncodeOrderBookDeltaBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.OrderBookDelta) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	action := make([]int32, n)
	side := make([]int32, n)
	price := make([]int64, n)
	precision := make([]int32, n)
	size := make([]int64, n)
	sizePrecision := make([]int32, n)
	orderId := make([]int64, n)
	flags := make([]int32, n)
	sequence := make([]int32, n)
	for i, r := range records {
		action[i] = int32(r.Action)
		side[i] = int32(r.Order.Side)
		price[i] = r.Order.Price.Raw
		precision[i] = int32(r.Order.Price.Precision)
		size[i] = int64(r.Order.Size.Raw)
		sizePrecision[i] = int32(r.Order.Size.Precision)
		orderId[i] = int64(r.Order.OrderId)
		flags[i] = int32(r.Flags)
		sequence[i] = int32(r.Sequence)
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col, action); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+1, side); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+2, price); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+3, precision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+4, size); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+5, sizePrecision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col+6, orderId); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+7, flags); err != nil {
		return err
	}
	return writeInt32Column(rgw, col+8, sequence)
}

// EncodeOrderBookDepth10Batch writes a batch of OrderBookDepth10 snapshots,
// flattening each record's 10 bid and 10 ask levels into the schema's 60
// level columns plus precision/flags/sequence.
func EncodeOrderBookDepth10Batch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.OrderBookDepth10) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	writeSide := func(pick func(*mdcat.OrderBookDepth10) ([10]mdcat.BookOrder, [10]uint32)) error {
		for level := 0; level < 10; level++ {
			price := make([]int64, n)
			size := make([]int64, n)
			count := make([]int32, n)
			for i, r := range records {
				orders, counts := pick(r)
				price[i] = orders[level].Price.Raw
				size[i] = int64(orders[level].Size.Raw)
				count[i] = int32(counts[level])
			}
			if err := writeInt64Column(rgw, col, price); err != nil {
				return err
			}
			if err := writeInt64Column(rgw, col+1, size); err != nil {
				return err
			}
			if err := writeInt32Column(rgw, col+2, count); err != nil {
				return err
			}
			col += 3
		}
		return nil
	}
	if err := writeSide(func(r *mdcat.OrderBookDepth10) ([10]mdcat.BookOrder, [10]uint32) { return r.Bids, r.BidCounts }); err != nil {
		return err
	}
	if err := writeSide(func(r *mdcat.OrderBookDepth10) ([10]mdcat.BookOrder, [10]uint32) { return r.Asks, r.AskCounts }); err != nil {
		return err
	}
	precision := make([]int32, n)
	sizePrecision := make([]int32, n)
	flags := make([]int32, n)
	sequence := make([]int32, n)
	for i, r := range records {
		precision[i] = int32(r.Bids[0].Price.Precision)
		sizePrecision[i] = int32(r.Bids[0].Size.Precision)
		flags[i] = int32(r.Flags)
		sequence[i] = int32(r.Sequence)
	}
	if err := writeInt32Column(rgw, col, precision); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+1, sizePrecision); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+2, flags); err != nil {
		return err
	}
	return writeInt32Column(rgw, col+3, sequence)
}

// EncodeInstrumentStatusBatch writes a batch of InstrumentStatus records.
func EncodeInstrumentStatusBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.InstrumentStatus) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	action := make([]int32, n)
	reason := make([]int32, n)
	for i, r := range records {
		action[i] = int32(r.Action)
		reason[i] = int32(r.Reason)
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col, action); err != nil {
		return err
	}
	return writeInt32Column(rgw, col+1, reason)
}

// EncodeInstrumentCloseBatch writes a batch of InstrumentClose records.
func EncodeInstrumentCloseBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.InstrumentClose) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	price := make([]int64, n)
	precision := make([]int32, n)
	for i, r := range records {
		price[i] = r.ClosePrice.Raw
		precision[i] = int32(r.ClosePrice.Precision)
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col, price); err != nil {
		return err
	}
	return writeInt32Column(rgw, col+1, precision)
}

// EncodeFundingRateUpdateBatch writes a batch of FundingRateUpdate records.
func EncodeFundingRateUpdateBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.FundingRateUpdate) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	rate := make([]int64, n)
	precision := make([]int32, n)
	nextFunding := make([]int64, n)
	for i, r := range records {
		rate[i] = r.Rate.Raw
		precision[i] = int32(r.Rate.Precision)
		nextFunding[i] = int64(r.NextFunding)
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col, rate); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, col+1, precision); err != nil {
		return err
	}
	return writeInt64Column(rgw, col+2, nextFunding)
}

// EncodeMarkPriceUpdateBatch writes a batch of MarkPriceUpdate records.
func EncodeMarkPriceUpdateBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.MarkPriceUpdate) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	value := make([]int64, n)
	precision := make([]int32, n)
	for i, r := range records {
		value[i] = r.Value.Raw
		precision[i] = int32(r.Value.Precision)
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col, value); err != nil {
		return err
	}
	return writeInt32Column(rgw, col+1, precision)
}

// EncodeIndexPriceUpdateBatch writes a batch of IndexPriceUpdate records.
func EncodeIndexPriceUpdateBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.IndexPriceUpdate) error {
	n := len(records)
	ids, tsEvent, tsInit := headerSlices(n, func(i int) mdcat.RHeader { return records[i].Header })
	value := make([]int64, n)
	precision := make([]int32, n)
	for i, r := range records {
		value[i] = r.Value.Raw
		precision[i] = int32(r.Value.Precision)
	}
	col, err := writeHeaderColumns(rgw, 0, ids, tsEvent, tsInit)
	if err != nil {
		return err
	}
	if err := writeInt64Column(rgw, col, value); err != nil {
		return err
	}
	return writeInt32Column(rgw, col+1, precision)
}
