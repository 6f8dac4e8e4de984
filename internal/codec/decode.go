// Copyright (c) 2024 Neomantra Corp
//
// Batch decoders from a Parquet row group back to catalog records, the
// mirror image of encode.go's column layout.

package codec

import (
	"github.com/apache/arrow-go/v18/parquet"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
)

func readInt64Column(rgr *pqfile.RowGroupReader, col int, n int64) ([]int64, error) {
	cr, err := rgr.Column(col)
	if err != nil {
		return nil, err
	}
	values := make([]int64, n)
	if _, _, err := cr.(*pqfile.Int64ColumnChunkReader).ReadBatch(n, values, nil, nil); err != nil {
		return nil, err
	}
	return values, nil
}

func readInt32Column(rgr *pqfile.RowGroupReader, col int, n int64) ([]int32, error) {
	cr, err := rgr.Column(col)
	if err != nil {
		return nil, err
	}
	values := make([]int32, n)
	if _, _, err := cr.(*pqfile.Int32ColumnChunkReader).ReadBatch(n, values, nil, nil); err != nil {
		return nil, err
	}
	return values, nil
}

func readByteArrayColumn(rgr *pqfile.RowGroupReader, col int, n int64) ([]string, error) {
	cr, err := rgr.Column(col)
	if err != nil {
		return nil, err
	}
	values := make([]parquet.ByteArray, n)
	if _, _, err := cr.(*pqfile.ByteArrayColumnChunkReader).ReadBatch(n, values, nil, nil); err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i, v := range values {
		out[i] = string(v)
	}
	return out, nil
}

// readHeaderColumns reads the shared instrument_id/ts_event/ts_init
// columns, parsing each non-empty instrument id back to its value form.
func readHeaderColumns(rgr *pqfile.RowGroupReader, n int64) ([]mdcat.RHeader, error) {
	ids, err := readByteArrayColumn(rgr, 0, n)
	if err != nil {
		return nil, err
	}
	tsEvent, err := readInt64Column(rgr, 1, n)
	if err != nil {
		return nil, err
	}
	tsInit, err := readInt64Column(rgr, 2, n)
	if err != nil {
		return nil, err
	}
	headers := make([]mdcat.RHeader, n)
	for i := range headers {
		headers[i] = mdcat.RHeader{TsEvent: uint64(tsEvent[i]), TsInit: uint64(tsInit[i])}
		if ids[i] == "" {
			continue
		}
		id, err := mdcat.ParseInstrumentId(ids[i])
		if err != nil {
			return nil, err
		}
		headers[i].InstrumentId = id
	}
	return headers, nil
}

///////////////////////////////////////////////////////////////////////////////

// DecodeQuoteTickBatch reads every row of a row group back into QuoteTick
// records.
func DecodeQuoteTickBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.QuoteTick, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	bidPrice, err := readInt64Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	askPrice, err := readInt64Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	precision, err := readInt32Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	bidSize, err := readInt64Column(rgr, 6, n)
	if err != nil {
		return nil, err
	}
	askSize, err := readInt64Column(rgr, 7, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, 8, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.QuoteTick, n)
	for i := range out {
		out[i] = &mdcat.QuoteTick{
			Header:   headers[i],
			BidPrice: mdcat.Price{Raw: bidPrice[i], Precision: uint8(precision[i])},
			AskPrice: mdcat.Price{Raw: askPrice[i], Precision: uint8(precision[i])},
			BidSize:  mdcat.Quantity{Raw: uint64(bidSize[i]), Precision: uint8(sizePrecision[i])},
			AskSize:  mdcat.Quantity{Raw: uint64(askSize[i]), Precision: uint8(sizePrecision[i])},
		}
	}
	return out, nil
}

// DecodeTradeTickBatch reads every row of a row group back into TradeTick
// records.
func DecodeTradeTickBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.TradeTick, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	price, err := readInt64Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	precision, err := readInt32Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	size, err := readInt64Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, 6, n)
	if err != nil {
		return nil, err
	}
	aggressor, err := readInt32Column(rgr, 7, n)
	if err != nil {
		return nil, err
	}
	tradeId, err := readByteArrayColumn(rgr, 8, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.TradeTick, n)
	for i := range out {
		out[i] = &mdcat.TradeTick{
			Header:        headers[i],
			Price:         mdcat.Price{Raw: price[i], Precision: uint8(precision[i])},
			Size:          mdcat.Quantity{Raw: uint64(size[i]), Precision: uint8(sizePrecision[i])},
			AggressorSide: mdcat.AggressorSide(aggressor[i]),
			TradeId:       tradeId[i],
		}
	}
	return out, nil
}

// DecodeBarBatch reads every row of a row group back into Bar records.
func DecodeBarBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.Bar, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	barTypeStr, err := readByteArrayColumn(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	open, err := readInt64Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	high, err := readInt64Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	low, err := readInt64Column(rgr, 6, n)
	if err != nil {
		return nil, err
	}
	cls, err := readInt64Column(rgr, 7, n)
	if err != nil {
		return nil, err
	}
	precision, err := readInt32Column(rgr, 8, n)
	if err != nil {
		return nil, err
	}
	volume, err := readInt64Column(rgr, 9, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, 10, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.Bar, n)
	for i := range out {
		bt, err := mdcat.ParseBarType(barTypeStr[i])
		if err != nil {
			return nil, &mdcat.CorruptPartitionError{Err: err}
		}
		out[i] = &mdcat.Bar{
			Header:  headers[i],
			BarType: bt,
			Open:    mdcat.Price{Raw: open[i], Precision: uint8(precision[i])},
			High:    mdcat.Price{Raw: high[i], Precision: uint8(precision[i])},
			Low:     mdcat.Price{Raw: low[i], Precision: uint8(precision[i])},
			Close:   mdcat.Price{Raw: cls[i], Precision: uint8(precision[i])},
			Volume:  mdcat.Quantity{Raw: uint64(volume[i]), Precision: uint8(sizePrecision[i])},
		}
	}
	return out, nil
}

// DecodeInstrumentCloseBatch reads every row of a row group back into
// InstrumentClose records.
func DecodeInstrumentCloseBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.InstrumentClose, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	price, err := readInt64Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	precision, err := readInt32Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.InstrumentClose, n)
	for i := range out {
		out[i] = &mdcat.InstrumentClose{
			Header:     headers[i],
			ClosePrice: mdcat.Price{Raw: price[i], Precision: uint8(precision[i])},
		}
	}
	return out, nil
}

// DecodeOrderBookDeltaBatch reads every row of a row group back into
// OrderBookDelta records.
func DecodeOrderBookDeltaBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.OrderBookDelta, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	action, err := readInt32Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	side, err := readInt32Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	price, err := readInt64Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	precision, err := readInt32Column(rgr, 6, n)
	if err != nil {
		return nil, err
	}
	size, err := readInt64Column(rgr, 7, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, 8, n)
	if err != nil {
		return nil, err
	}
	orderId, err := readInt64Column(rgr, 9, n)
	if err != nil {
		return nil, err
	}
	flags, err := readInt32Column(rgr, 10, n)
	if err != nil {
		return nil, err
	}
	sequence, err := readInt32Column(rgr, 11, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.OrderBookDelta, n)
	for i := range out {
		out[i] = &mdcat.OrderBookDelta{
			Header: headers[i],
			Action: mdcat.BookAction(action[i]),
			Order: mdcat.BookOrder{
				Side:    mdcat.Side(side[i]),
				Price:   mdcat.Price{Raw: price[i], Precision: uint8(precision[i])},
				Size:    mdcat.Quantity{Raw: uint64(size[i]), Precision: uint8(sizePrecision[i])},
				OrderId: uint64(orderId[i]),
			},
			Flags:    uint8(flags[i]),
			Sequence: uint32(sequence[i]),
		}
	}
	return out, nil
}

// DecodeOrderBookDepth10Batch reads every row of a row group back into
// OrderBookDepth10 snapshots, unflattening the schema's 60 level columns.
func DecodeOrderBookDepth10Batch(rgr *pqfile.RowGroupReader) ([]*mdcat.OrderBookDepth10, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.OrderBookDepth10, n)
	for i := range out {
		out[i] = &mdcat.OrderBookDepth10{Header: headers[i]}
	}

	col := 3
	readSide := func(side mdcat.Side, assign func(*mdcat.OrderBookDepth10, int, mdcat.BookOrder, uint32)) error {
		for level := 0; level < 10; level++ {
			price, err := readInt64Column(rgr, col, n)
			if err != nil {
				return err
			}
			size, err := readInt64Column(rgr, col+1, n)
			if err != nil {
				return err
			}
			count, err := readInt32Column(rgr, col+2, n)
			if err != nil {
				return err
			}
			for i := range out {
				order := mdcat.BookOrder{
					Side:  side,
					Price: mdcat.Price{Raw: price[i]},
					Size:  mdcat.Quantity{Raw: uint64(size[i])},
				}
				assign(out[i], level, order, uint32(count[i]))
			}
			col += 3
		}
		return nil
	}
	if err := readSide(mdcat.Side_Bid, func(r *mdcat.OrderBookDepth10, level int, o mdcat.BookOrder, c uint32) {
		r.Bids[level] = o
		r.BidCounts[level] = c
	}); err != nil {
		return nil, err
	}
	if err := readSide(mdcat.Side_Ask, func(r *mdcat.OrderBookDepth10, level int, o mdcat.BookOrder, c uint32) {
		r.Asks[level] = o
		r.AskCounts[level] = c
	}); err != nil {
		return nil, err
	}

	precision, err := readInt32Column(rgr, col, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, col+1, n)
	if err != nil {
		return nil, err
	}
	flags, err := readInt32Column(rgr, col+2, n)
	if err != nil {
		return nil, err
	}
	sequence, err := readInt32Column(rgr, col+3, n)
	if err != nil {
		return nil, err
	}
	for i, r := range out {
		p, sp := uint8(precision[i]), uint8(sizePrecision[i])
		for level := 0; level < 10; level++ {
			r.Bids[level].Price.Precision = p
			r.Bids[level].Size.Precision = sp
			r.Asks[level].Price.Precision = p
			r.Asks[level].Size.Precision = sp
		}
		r.Flags = uint8(flags[i])
		r.Sequence = uint32(sequence[i])
	}
	return out, nil
}

// DecodeInstrumentStatusBatch reads every row of a row group back into
// InstrumentStatus records.
func DecodeInstrumentStatusBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.InstrumentStatus, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	action, err := readInt32Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	reason, err := readInt32Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.InstrumentStatus, n)
	for i := range out {
		out[i] = &mdcat.InstrumentStatus{
			Header: headers[i],
			Action: mdcat.StatusAction(action[i]),
			Reason: mdcat.StatusReason(reason[i]),
		}
	}
	return out, nil
}

// DecodeFundingRateUpdateBatch reads every row of a row group back into
// FundingRateUpdate records.
func DecodeFundingRateUpdateBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.FundingRateUpdate, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	rate, err := readInt64Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	precision, err := readInt32Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	nextFunding, err := readInt64Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.FundingRateUpdate, n)
	for i := range out {
		out[i] = &mdcat.FundingRateUpdate{
			Header:      headers[i],
			Rate:        mdcat.Price{Raw: rate[i], Precision: uint8(precision[i])},
			NextFunding: uint64(nextFunding[i]),
		}
	}
	return out, nil
}

// DecodeMarkPriceUpdateBatch reads every row of a row group back into
// MarkPriceUpdate records.
func DecodeMarkPriceUpdateBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.MarkPriceUpdate, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	value, err := readInt64Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	precision, err := readInt32Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.MarkPriceUpdate, n)
	for i := range out {
		out[i] = &mdcat.MarkPriceUpdate{
			Header: headers[i],
			Value:  mdcat.Price{Raw: value[i], Precision: uint8(precision[i])},
		}
	}
	return out, nil
}

// DecodeIndexPriceUpdateBatch reads every row of a row group back into
// IndexPriceUpdate records.
func DecodeIndexPriceUpdateBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.IndexPriceUpdate, error) {
	n := rgr.NumRows()
	headers, err := readHeaderColumns(rgr, n)
	if err != nil {
		return nil, err
	}
	value, err := readInt64Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	precision, err := readInt32Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.IndexPriceUpdate, n)
	for i := range out {
		out[i] = &mdcat.IndexPriceUpdate{
			Header: headers[i],
			Value:  mdcat.Price{Raw: value[i], Precision: uint8(precision[i])},
		}
	}
	return out, nil
}
