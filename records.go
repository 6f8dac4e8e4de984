// Copyright (c) 2024 Neomantra Corp
//
// Record layout, adapted from dbn-go's structs.go: a common header plus a
// typed body, with a Fill_Json method per concrete record so a single
// generic decode path (see internal/rawfile) can dispatch on RType without
// a type switch at every call site. Fill_Raw is the fixed-width binary
// counterpart, driven by internal/rawfile.BinaryParser the same way
// Fill_Json is driven by internal/rawfile.JSONLinesParser; every body
// ends in an 8-byte ts_event field followed by an 8-byte ts_init field,
// little-endian throughout (see DESIGN.md's Open Question 4).

package mdcat

import (
	"encoding/binary"

	"github.com/valyala/fastjson"
)

///////////////////////////////////////////////////////////////////////////////

// Record is the marker interface implemented by every concrete record type
// stored in the catalog.
type Record interface {
	RType() RecordType
}

// RecordPtr constrains a generic parameter to "pointer to T, where T
// implements Record" and has Fill_Json. No function in this module takes
// it as a constraint; internal/codec has one decoder per record type.
type RecordPtr[T any] interface {
	*T
	Record

	Fill_Json(val *fastjson.Value, header *RHeader) error
}

///////////////////////////////////////////////////////////////////////////////

// RHeader is the header common to every time-series record: the instrument
// it concerns and its two catalog timestamps.
type RHeader struct {
	InstrumentId InstrumentId `json:"instrument_id"`
	TsEvent      uint64       `json:"ts_event"` // Venue-assigned event time, ns since UNIX epoch.
	TsInit       uint64       `json:"ts_init"`  // Time the record was captured/constructed, ns since UNIX epoch.
}

func (h RHeader) EventTime() uint64 { return h.TsEvent }
func (h RHeader) InitTime() uint64  { return h.TsInit }

///////////////////////////////////////////////////////////////////////////////

// QuoteTick is a top-of-book bid/ask snapshot.
type QuoteTick struct {
	Header      RHeader  `json:"hd"`
	BidPrice    Price    `json:"bid_price"`
	AskPrice    Price    `json:"ask_price"`
	BidSize     Quantity `json:"bid_size"`
	AskSize     Quantity `json:"ask_size"`
}

func (*QuoteTick) RType() RecordType { return RecordType_QuoteTick }

func (r *QuoteTick) Fill_Raw(b []byte, precision uint8) error {
	const size = 48
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.BidPrice = Price{Raw: int64(binary.LittleEndian.Uint64(b[0:8])), Precision: precision}
	r.AskPrice = Price{Raw: int64(binary.LittleEndian.Uint64(b[8:16])), Precision: precision}
	r.BidSize = Quantity{Raw: binary.LittleEndian.Uint64(b[16:24]), Precision: 0}
	r.AskSize = Quantity{Raw: binary.LittleEndian.Uint64(b[24:32]), Precision: 0}
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[32:40])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[40:48])
	return nil
}

func (r *QuoteTick) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	bidPrice, err := NewPriceFromString(string(val.GetStringBytes("bid_price")), 9)
	if err != nil {
		return err
	}
	askPrice, err := NewPriceFromString(string(val.GetStringBytes("ask_price")), 9)
	if err != nil {
		return err
	}
	bidSize, err := NewQuantityFromString(string(val.GetStringBytes("bid_size")), 0)
	if err != nil {
		return err
	}
	askSize, err := NewQuantityFromString(string(val.GetStringBytes("ask_size")), 0)
	if err != nil {
		return err
	}
	r.BidPrice, r.AskPrice, r.BidSize, r.AskSize = bidPrice, askPrice, bidSize, askSize
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// TradeTick is a single executed trade.
type TradeTick struct {
	Header        RHeader       `json:"hd"`
	Price         Price         `json:"price"`
	Size          Quantity      `json:"size"`
	AggressorSide AggressorSide `json:"aggressor_side"`
	TradeId       string        `json:"trade_id"`
}

func (*TradeTick) RType() RecordType { return RecordType_TradeTick }

func (r *TradeTick) Fill_Raw(b []byte, precision uint8) error {
	const size = 40
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.Price = Price{Raw: int64(binary.LittleEndian.Uint64(b[0:8])), Precision: precision}
	r.Size = Quantity{Raw: binary.LittleEndian.Uint64(b[8:16]), Precision: 0}
	r.AggressorSide = AggressorSide(b[16])
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[24:32])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[32:40])
	return nil
}

func (r *TradeTick) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	price, err := NewPriceFromString(string(val.GetStringBytes("price")), 9)
	if err != nil {
		return err
	}
	size, err := NewQuantityFromString(string(val.GetStringBytes("size")), 0)
	if err != nil {
		return err
	}
	r.Price, r.Size = price, size
	r.AggressorSide = AggressorSide(val.GetUint("aggressor_side"))
	r.TradeId = string(val.GetStringBytes("trade_id"))
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// Bar is an OHLCV aggregation for a BarType.
type Bar struct {
	Header  RHeader  `json:"hd"`
	BarType BarType  `json:"bar_type"`
	Open    Price    `json:"open"`
	High    Price    `json:"high"`
	Low     Price    `json:"low"`
	Close   Price    `json:"close"`
	Volume  Quantity `json:"volume"`
}

func (*Bar) RType() RecordType { return RecordType_Bar }

func (r *Bar) Fill_Raw(b []byte, precision uint8) error {
	const size = 56
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.Open = Price{Raw: int64(binary.LittleEndian.Uint64(b[0:8])), Precision: precision}
	r.High = Price{Raw: int64(binary.LittleEndian.Uint64(b[8:16])), Precision: precision}
	r.Low = Price{Raw: int64(binary.LittleEndian.Uint64(b[16:24])), Precision: precision}
	r.Close = Price{Raw: int64(binary.LittleEndian.Uint64(b[24:32])), Precision: precision}
	r.Volume = Quantity{Raw: binary.LittleEndian.Uint64(b[32:40]), Precision: 0}
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[40:48])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[48:56])
	return nil
}

func (r *Bar) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	var err error
	if r.Open, err = NewPriceFromString(string(val.GetStringBytes("open")), 9); err != nil {
		return err
	}
	if r.High, err = NewPriceFromString(string(val.GetStringBytes("high")), 9); err != nil {
		return err
	}
	if r.Low, err = NewPriceFromString(string(val.GetStringBytes("low")), 9); err != nil {
		return err
	}
	if r.Close, err = NewPriceFromString(string(val.GetStringBytes("close")), 9); err != nil {
		return err
	}
	if r.Volume, err = NewQuantityFromString(string(val.GetStringBytes("volume")), 0); err != nil {
		return err
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// BookOrder is a single price level's resting size within an OrderBookDelta
// or OrderBookDepth10 level.
type BookOrder struct {
	Side     Side     `json:"side"`
	Price    Price    `json:"price"`
	Size     Quantity `json:"size"`
	OrderId  uint64   `json:"order_id"`
}

// OrderBookDelta is a single add/update/delete/clear applied to a book.
type OrderBookDelta struct {
	Header RHeader    `json:"hd"`
	Action BookAction `json:"action"`
	Order  BookOrder  `json:"order"`
	Flags  uint8      `json:"flags"`
	Sequence uint32   `json:"sequence"`
}

func (*OrderBookDelta) RType() RecordType { return RecordType_OrderBookDelta }

func (r *OrderBookDelta) Fill_Raw(b []byte, precision uint8) error {
	const size = 56
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.Action = BookAction(b[0])
	r.Order.Side = Side(b[1])
	r.Order.Price = Price{Raw: int64(binary.LittleEndian.Uint64(b[8:16])), Precision: precision}
	r.Order.Size = Quantity{Raw: binary.LittleEndian.Uint64(b[16:24]), Precision: 0}
	r.Order.OrderId = binary.LittleEndian.Uint64(b[24:32])
	r.Flags = b[32]
	r.Sequence = binary.LittleEndian.Uint32(b[33:37])
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[40:48])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[48:56])
	return nil
}

func (r *OrderBookDelta) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	action, err := BookActionFromString(string(val.GetStringBytes("action")))
	if err != nil {
		return err
	}
	side, err := SideFromString(string(val.GetStringBytes("side")))
	if err != nil {
		return err
	}
	price, err := NewPriceFromString(string(val.GetStringBytes("price")), 9)
	if err != nil {
		return err
	}
	size, err := NewQuantityFromString(string(val.GetStringBytes("size")), 0)
	if err != nil {
		return err
	}
	r.Action = action
	r.Order = BookOrder{Side: side, Price: price, Size: size, OrderId: val.GetUint64("order_id")}
	r.Flags = uint8(val.GetUint("flags"))
	r.Sequence = uint32(val.GetUint("sequence"))
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// OrderBookDepth10 is a fixed 10-level snapshot of both sides of the book.
type OrderBookDepth10 struct {
	Header  RHeader      `json:"hd"`
	Bids    [10]BookOrder `json:"bids"`
	Asks    [10]BookOrder `json:"asks"`
	BidCounts [10]uint32 `json:"bid_counts"`
	AskCounts [10]uint32 `json:"ask_counts"`
	Flags   uint8        `json:"flags"`
	Sequence uint32      `json:"sequence"`
}

func (*OrderBookDepth10) RType() RecordType { return RecordType_OrderBookDepth10 }

func (r *OrderBookDepth10) Fill_Raw(b []byte, precision uint8) error {
	const levelSize = 24
	const size = 2*10*levelSize + 24
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	pos := 0
	for i := 0; i < 10; i++ {
		r.Bids[i].Side = Side_Bid
		r.Bids[i].Price = Price{Raw: int64(binary.LittleEndian.Uint64(b[pos : pos+8])), Precision: precision}
		r.Bids[i].Size = Quantity{Raw: binary.LittleEndian.Uint64(b[pos+8 : pos+16]), Precision: 0}
		r.BidCounts[i] = binary.LittleEndian.Uint32(b[pos+16 : pos+20])
		pos += levelSize
	}
	for i := 0; i < 10; i++ {
		r.Asks[i].Side = Side_Ask
		r.Asks[i].Price = Price{Raw: int64(binary.LittleEndian.Uint64(b[pos : pos+8])), Precision: precision}
		r.Asks[i].Size = Quantity{Raw: binary.LittleEndian.Uint64(b[pos+8 : pos+16]), Precision: 0}
		r.AskCounts[i] = binary.LittleEndian.Uint32(b[pos+16 : pos+20])
		pos += levelSize
	}
	r.Flags = b[pos]
	r.Sequence = binary.LittleEndian.Uint32(b[pos+1 : pos+5])
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[pos+8 : pos+16])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[pos+16 : pos+24])
	return nil
}

func (r *OrderBookDepth10) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	fillLevels := func(arr *fastjson.Value, side Side, orders *[10]BookOrder, counts *[10]uint32) error {
		items, err := arr.Array()
		if err != nil {
			return err
		}
		for i, item := range items {
			if i >= 10 {
				break
			}
			price, err := NewPriceFromString(string(item.GetStringBytes("price")), 9)
			if err != nil {
				return err
			}
			size, err := NewQuantityFromString(string(item.GetStringBytes("size")), 0)
			if err != nil {
				return err
			}
			orders[i] = BookOrder{Side: side, Price: price, Size: size}
			counts[i] = uint32(item.GetUint("count"))
		}
		return nil
	}
	if err := fillLevels(val.Get("bids"), Side_Bid, &r.Bids, &r.BidCounts); err != nil {
		return err
	}
	if err := fillLevels(val.Get("asks"), Side_Ask, &r.Asks, &r.AskCounts); err != nil {
		return err
	}
	r.Flags = uint8(val.GetUint("flags"))
	r.Sequence = uint32(val.GetUint("sequence"))
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// InstrumentStatus reports a venue-driven trading-status change, e.g. halt
// or resumption.
type InstrumentStatus struct {
	Header RHeader      `json:"hd"`
	Action StatusAction `json:"action"`
	Reason StatusReason `json:"reason"`
}

func (*InstrumentStatus) RType() RecordType { return RecordType_InstrumentStatus }

func (r *InstrumentStatus) Fill_Raw(b []byte, _ uint8) error {
	const size = 18
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.Action = StatusAction(b[0])
	r.Reason = StatusReason(b[1])
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[2:10])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[10:18])
	return nil
}

func (r *InstrumentStatus) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.Action = StatusAction(val.GetUint("action"))
	r.Reason = StatusReason(val.GetUint("reason"))
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// InstrumentClose reports the final settlement/close price for a trading
// session.
type InstrumentClose struct {
	Header     RHeader `json:"hd"`
	ClosePrice Price   `json:"close_price"`
}

func (*InstrumentClose) RType() RecordType { return RecordType_InstrumentClose }

func (r *InstrumentClose) Fill_Raw(b []byte, precision uint8) error {
	const size = 24
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.ClosePrice = Price{Raw: int64(binary.LittleEndian.Uint64(b[0:8])), Precision: precision}
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[8:16])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[16:24])
	return nil
}

func (r *InstrumentClose) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	price, err := NewPriceFromString(string(val.GetStringBytes("close_price")), 9)
	if err != nil {
		return err
	}
	r.ClosePrice = price
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// FundingRateUpdate reports a perpetual-futures funding rate.
type FundingRateUpdate struct {
	Header      RHeader `json:"hd"`
	Rate        Price   `json:"rate"`
	NextFunding uint64  `json:"next_funding_ns"`
}

func (*FundingRateUpdate) RType() RecordType { return RecordType_FundingRateUpdate }

func (r *FundingRateUpdate) Fill_Raw(b []byte, precision uint8) error {
	const size = 32
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.Rate = Price{Raw: int64(binary.LittleEndian.Uint64(b[0:8])), Precision: precision}
	r.NextFunding = binary.LittleEndian.Uint64(b[8:16])
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[16:24])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[24:32])
	return nil
}

func (r *FundingRateUpdate) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	rate, err := NewPriceFromString(string(val.GetStringBytes("rate")), 9)
	if err != nil {
		return err
	}
	r.Rate = rate
	r.NextFunding = val.GetUint64("next_funding_ns")
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// MarkPriceUpdate reports a venue's mark price, used for margining.
type MarkPriceUpdate struct {
	Header RHeader `json:"hd"`
	Value  Price   `json:"value"`
}

func (*MarkPriceUpdate) RType() RecordType { return RecordType_MarkPriceUpdate }

func (r *MarkPriceUpdate) Fill_Raw(b []byte, precision uint8) error {
	const size = 24
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.Value = Price{Raw: int64(binary.LittleEndian.Uint64(b[0:8])), Precision: precision}
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[8:16])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[16:24])
	return nil
}

func (r *MarkPriceUpdate) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	value, err := NewPriceFromString(string(val.GetStringBytes("value")), 9)
	if err != nil {
		return err
	}
	r.Value = value
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// IndexPriceUpdate reports a venue's index price, an input to mark-price
// calculation for derivatives.
type IndexPriceUpdate struct {
	Header RHeader `json:"hd"`
	Value  Price   `json:"value"`
}

func (*IndexPriceUpdate) RType() RecordType { return RecordType_IndexPriceUpdate }

func (r *IndexPriceUpdate) Fill_Raw(b []byte, precision uint8) error {
	const size = 24
	if len(b) < size {
		return unexpectedBytesError(len(b), size)
	}
	r.Value = Price{Raw: int64(binary.LittleEndian.Uint64(b[0:8])), Precision: precision}
	r.Header.TsEvent = binary.LittleEndian.Uint64(b[8:16])
	r.Header.TsInit = binary.LittleEndian.Uint64(b[16:24])
	return nil
}

func (r *IndexPriceUpdate) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	value, err := NewPriceFromString(string(val.GetStringBytes("value")), 9)
	if err != nil {
		return err
	}
	r.Value = value
	return nil
}
