// Copyright (c) 2024 Neomantra Corp
//
// Round-trip coverage for every record codec: whatever EncodeXxxBatch
// writes, DecodeXxxBatch must hand back unchanged, field for field.

package codec_test

import (
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
)

func mustInstrumentId(s string) mdcat.InstrumentId {
	id, err := mdcat.ParseInstrumentId(s)
	Expect(err).NotTo(HaveOccurred())
	return id
}

func mustPrice(s string, precision uint8) mdcat.Price {
	p, err := mdcat.NewPriceFromString(s, precision)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func mustQuantity(s string, precision uint8) mdcat.Quantity {
	q, err := mdcat.NewQuantityFromString(s, precision)
	Expect(err).NotTo(HaveOccurred())
	return q
}

// roundTrip writes recs through encode into an in-memory parquet file and
// reads them back through decode, asserting the result is deep-equal.
func roundTrip[T any](rt mdcat.RecordType, recs []T,
	encode func(pqfile.BufferedRowGroupWriter, []T) error,
	decode func(*pqfile.RowGroupReader) ([]T, error),
) {
	GinkgoHelper()
	store := catalog.Open(catalog.NewMemory())
	Expect(store.WriteParquet("roundtrip.parquet", rt, func(rgw pqfile.BufferedRowGroupWriter) error {
		return encode(rgw, recs)
	})).To(Succeed())

	var got []T
	Expect(store.ReadParquet("roundtrip.parquet", func(rgr *pqfile.RowGroupReader) error {
		batch, err := decode(rgr)
		got = append(got, batch...)
		return err
	})).To(Succeed())

	Expect(cmp.Diff(recs, got)).To(BeEmpty())
}

var _ = Describe("record codecs", func() {
	var header mdcat.RHeader

	BeforeEach(func() {
		header = mdcat.RHeader{
			InstrumentId: mustInstrumentId("BTC-USDT.BINANCE"),
			TsEvent:      1704182400000000000,
			TsInit:       1704182400000000100,
		}
	})

	It("round-trips QuoteTick batches", func() {
		recs := []*mdcat.QuoteTick{
			{
				Header:   header,
				BidPrice: mustPrice("42000.50", 2), AskPrice: mustPrice("42000.75", 2),
				BidSize: mustQuantity("1.2345", 4), AskSize: mustQuantity("0.5", 4),
			},
			{
				Header:   mdcat.RHeader{InstrumentId: header.InstrumentId, TsEvent: header.TsEvent + 10, TsInit: header.TsInit + 10},
				BidPrice: mustPrice("41999.25", 2), AskPrice: mustPrice("42000.00", 2),
				BidSize: mustQuantity("3.0000", 4), AskSize: mustQuantity("2.7500", 4),
			},
		}
		roundTrip(mdcat.RecordType_QuoteTick, recs, codec.EncodeQuoteTickBatch, codec.DecodeQuoteTickBatch)
	})

	It("round-trips TradeTick batches, aggressor side and trade id included", func() {
		recs := []*mdcat.TradeTick{
			{
				Header: header,
				Price:  mustPrice("42000.50", 2), Size: mustQuantity("0.001", 3),
				AggressorSide: mdcat.AggressorSide_Buyer, TradeId: "T-0001",
			},
			{
				Header: mdcat.RHeader{InstrumentId: header.InstrumentId, TsEvent: header.TsEvent + 1, TsInit: header.TsInit + 1},
				Price:  mustPrice("42000.25", 2), Size: mustQuantity("0.250", 3),
				AggressorSide: mdcat.AggressorSide_Seller, TradeId: "T-0002",
			},
		}
		roundTrip(mdcat.RecordType_TradeTick, recs, codec.EncodeTradeTickBatch, codec.DecodeTradeTickBatch)
	})

	It("round-trips Bar batches including the bar type", func() {
		bt, err := mdcat.ParseBarType("BTC-USDT.BINANCE-1-MINUTE-LAST-EXTERNAL")
		Expect(err).NotTo(HaveOccurred())
		recs := []*mdcat.Bar{{
			Header:  header,
			BarType: bt,
			Open:    mustPrice("42000.00", 2), High: mustPrice("42100.00", 2),
			Low: mustPrice("41900.00", 2), Close: mustPrice("42050.00", 2),
			Volume: mustQuantity("123.456", 3),
		}}
		roundTrip(mdcat.RecordType_Bar, recs, codec.EncodeBarBatch, codec.DecodeBarBatch)
	})

	It("round-trips OrderBookDelta batches", func() {
		recs := []*mdcat.OrderBookDelta{{
			Header: header,
			Action: mdcat.BookAction_Add,
			Order: mdcat.BookOrder{
				Side:    mdcat.Side_Bid,
				Price:   mustPrice("42000.50", 2),
				Size:    mustQuantity("1.5", 1),
				OrderId: 9_000_000_001,
			},
			Flags:    0x80,
			Sequence: 42,
		}}
		roundTrip(mdcat.RecordType_OrderBookDelta, recs, codec.EncodeOrderBookDeltaBatch, codec.DecodeOrderBookDeltaBatch)
	})

	It("round-trips OrderBookDepth10 batches across all twenty levels", func() {
		rec := &mdcat.OrderBookDepth10{Header: header, Flags: 1, Sequence: 7}
		for level := 0; level < 10; level++ {
			bidPrice := mustPrice("42000.50", 2)
			askPrice := mustPrice("42001.50", 2)
			size := mustQuantity("2.5000", 4)
			bidPrice.Raw -= int64(level) * 25
			askPrice.Raw += int64(level) * 25
			rec.Bids[level] = mdcat.BookOrder{Side: mdcat.Side_Bid, Price: bidPrice, Size: size}
			rec.Asks[level] = mdcat.BookOrder{Side: mdcat.Side_Ask, Price: askPrice, Size: size}
			rec.BidCounts[level] = uint32(level + 1)
			rec.AskCounts[level] = uint32(level + 2)
		}
		roundTrip(mdcat.RecordType_OrderBookDepth10,
			[]*mdcat.OrderBookDepth10{rec},
			codec.EncodeOrderBookDepth10Batch, codec.DecodeOrderBookDepth10Batch)
	})

	It("round-trips InstrumentStatus batches", func() {
		recs := []*mdcat.InstrumentStatus{{
			Header: header,
			Action: mdcat.StatusAction_Halt,
			Reason: mdcat.StatusReason_Technical,
		}}
		roundTrip(mdcat.RecordType_InstrumentStatus, recs, codec.EncodeInstrumentStatusBatch, codec.DecodeInstrumentStatusBatch)
	})

	It("round-trips InstrumentClose batches", func() {
		recs := []*mdcat.InstrumentClose{{
			Header:     header,
			ClosePrice: mustPrice("42031.41", 2),
		}}
		roundTrip(mdcat.RecordType_InstrumentClose, recs, codec.EncodeInstrumentCloseBatch, codec.DecodeInstrumentCloseBatch)
	})

	It("round-trips FundingRateUpdate batches", func() {
		recs := []*mdcat.FundingRateUpdate{{
			Header:      header,
			Rate:        mustPrice("0.000125", 6),
			NextFunding: header.TsInit + 8*3600*1_000_000_000,
		}}
		roundTrip(mdcat.RecordType_FundingRateUpdate, recs, codec.EncodeFundingRateUpdateBatch, codec.DecodeFundingRateUpdateBatch)
	})

	It("round-trips MarkPriceUpdate batches", func() {
		recs := []*mdcat.MarkPriceUpdate{{Header: header, Value: mustPrice("42000.12", 2)}}
		roundTrip(mdcat.RecordType_MarkPriceUpdate, recs, codec.EncodeMarkPriceUpdateBatch, codec.DecodeMarkPriceUpdateBatch)
	})

	It("round-trips IndexPriceUpdate batches", func() {
		recs := []*mdcat.IndexPriceUpdate{{Header: header, Value: mustPrice("41999.88", 2)}}
		roundTrip(mdcat.RecordType_IndexPriceUpdate, recs, codec.EncodeIndexPriceUpdateBatch, codec.DecodeIndexPriceUpdateBatch)
	})

	It("preserves a negative funding rate's sign through the raw column", func() {
		recs := []*mdcat.FundingRateUpdate{{
			Header: header,
			Rate:   mustPrice("-0.000075", 6),
		}}
		roundTrip(mdcat.RecordType_FundingRateUpdate, recs, codec.EncodeFundingRateUpdateBatch, codec.DecodeFundingRateUpdateBatch)
	})

	It("keeps a record minted without an instrument id empty on decode", func() {
		recs := []*mdcat.QuoteTick{{
			Header:   mdcat.RHeader{TsEvent: 1, TsInit: 1},
			BidPrice: mustPrice("1.0", 1), AskPrice: mustPrice("1.1", 1),
			BidSize: mustQuantity("1", 0), AskSize: mustQuantity("1", 0),
		}}
		roundTrip(mdcat.RecordType_QuoteTick, recs, codec.EncodeQuoteTickBatch, codec.DecodeQuoteTickBatch)
	})
})

var _ = Describe("instrument codecs", func() {
	It("round-trips a CurrencySpot batch", func() {
		recs := []*mdcat.CurrencySpot{{
			InstrumentId:   mustInstrumentId("AUD/USD.OANDA"),
			BaseCurrency:   "AUD",
			QuoteCurrency:  "USD",
			PricePrecision: 5,
			SizePrecision:  0,
			PriceIncrement: mustPrice("0.00001", 5),
			SizeIncrement:  mustQuantity("1", 0),
			MinQuantity:    mustQuantity("1000", 0),
			MaxQuantity:    mustQuantity("1000000", 0),
		}}
		store := catalog.Open(catalog.NewMemory())
		path := catalog.InstrumentsFile(mdcat.InstrumentKind_CurrencySpot)
		Expect(store.WriteInstrumentParquet(path, mdcat.InstrumentKind_CurrencySpot, func(rgw pqfile.BufferedRowGroupWriter) error {
			return codec.EncodeCurrencySpotBatch(rgw, recs)
		})).To(Succeed())

		var got []*mdcat.CurrencySpot
		Expect(store.ReadParquet(path, func(rgr *pqfile.RowGroupReader) error {
			batch, err := codec.DecodeCurrencySpotBatch(rgr)
			got = append(got, batch...)
			return err
		})).To(Succeed())
		Expect(cmp.Diff(recs, got)).To(BeEmpty())
	})
})
