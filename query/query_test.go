// Copyright (c) 2024 Neomantra Corp

package query_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/ingest"
	"github.com/marketcore/mdcat-go/query"
)

func mustUint64(n uint64) *uint64 { return &n }

var _ = Describe("Options", func() {
	It("parses an ISO-8601 start/end string into a nanosecond ts_init", func() {
		var opts query.Options
		Expect(opts.WithStartString("2024-01-01T00:00:00Z")).To(Succeed())
		Expect(*opts.Start).To(BeNumerically(">", uint64(0)))
	})

	It("rejects a malformed timestamp string", func() {
		var opts query.Options
		Expect(opts.WithStartString("not-a-date")).To(HaveOccurred())
	})
})

var _ = Describe("predicate Expr", func() {
	fields := map[string]any{"BidPrice": int64(100), "Symbol": "BTC-USDT.BINANCE"}

	It("evaluates Eq", func() {
		Expect(query.Match(query.Eq("BidPrice", int64(100)), fields)).To(BeTrue())
		Expect(query.Match(query.Eq("BidPrice", int64(99)), fields)).To(BeFalse())
	})

	It("evaluates Le and Ge", func() {
		Expect(query.Match(query.Le("BidPrice", int64(100)), fields)).To(BeTrue())
		Expect(query.Match(query.Le("BidPrice", int64(99)), fields)).To(BeFalse())
		Expect(query.Match(query.Ge("BidPrice", int64(100)), fields)).To(BeTrue())
		Expect(query.Match(query.Ge("BidPrice", int64(101)), fields)).To(BeFalse())
	})

	It("evaluates In", func() {
		Expect(query.Match(query.In("Symbol", "ETH-USDT.BINANCE", "BTC-USDT.BINANCE"), fields)).To(BeTrue())
		Expect(query.Match(query.In("Symbol", "ETH-USDT.BINANCE"), fields)).To(BeFalse())
	})

	It("evaluates And, short-circuiting on the first false term", func() {
		ok := query.And(query.Eq("BidPrice", int64(100)), query.Eq("Symbol", "BTC-USDT.BINANCE"))
		Expect(query.Match(ok, fields)).To(BeTrue())

		notOk := query.And(query.Eq("BidPrice", int64(100)), query.Eq("Symbol", "nope"))
		Expect(query.Match(notOk, fields)).To(BeFalse())
	})

	It("treats a nil predicate as always matching", func() {
		Expect(query.Match(nil, fields)).To(BeTrue())
	})

	It("is missing-field safe: an absent field never matches", func() {
		Expect(query.Match(query.Eq("Missing", int64(1)), fields)).To(BeFalse())
	})
})

var _ = Describe("QueryQuoteTicks", func() {
	var store *catalog.Store
	var btc, eth mdcat.InstrumentId

	BeforeEach(func() {
		store = catalog.Open(catalog.NewMemory())
		btc, _ = mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		eth, _ = mdcat.ParseInstrumentId("ETH-USDT.BINANCE")

		price, _ := mdcat.NewPriceFromString("1.0", 2)
		size, _ := mdcat.NewQuantityFromString("1.0", 2)
		mk := func(id mdcat.InstrumentId, ts uint64) *mdcat.QuoteTick {
			return &mdcat.QuoteTick{Header: mdcat.RHeader{InstrumentId: id, TsInit: ts}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size}
		}

		recs := []*mdcat.QuoteTick{mk(btc, 10), mk(btc, 20), mk(eth, 15)}
		_, err := ingest.WriteQuoteTicks(store, recs)
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns every row across instruments sorted by ts_init when unfiltered", func() {
		got, err := query.QueryQuoteTicks(store, query.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(3))
		Expect(got[0].Header.TsInit).To(Equal(uint64(10)))
		Expect(got[2].Header.TsInit).To(Equal(uint64(20)))
	})

	It("filters by instrument id", func() {
		got, err := query.QueryQuoteTicks(store, query.Options{InstrumentIds: []mdcat.InstrumentId{eth}})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
		Expect(got[0].Header.InstrumentId).To(Equal(eth))
	})

	It("filters by inclusive ts_init range", func() {
		start, end := mustUint64(11), mustUint64(20)
		got, err := query.QueryQuoteTicks(store, query.Options{Start: start, End: end})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))
	})

	It("raises ErrEmpty when RaiseOnEmpty is set and nothing matches", func() {
		unknown, _ := mdcat.ParseInstrumentId("DOGE-USDT.BINANCE")
		_, err := query.QueryQuoteTicks(store, query.Options{InstrumentIds: []mdcat.InstrumentId{unknown}, RaiseOnEmpty: true})
		Expect(err).To(MatchError(query.ErrEmpty))
	})

	It("returns an empty slice, not an error, when RaiseOnEmpty is unset", func() {
		unknown, _ := mdcat.ParseInstrumentId("DOGE-USDT.BINANCE")
		got, err := query.QueryQuoteTicks(store, query.Options{InstrumentIds: []mdcat.InstrumentId{unknown}})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeEmpty())
	})
})

var _ = Describe("Instruments", func() {
	It("unions across subtype tables, filtered by instrument id", func() {
		store := catalog.Open(catalog.NewMemory())
		audUsd, _ := mdcat.ParseInstrumentId("AUD/USD.OANDA")
		btcUsd, _ := mdcat.ParseInstrumentId("BTC-USD-PERP.BINANCE")
		increment, _ := mdcat.NewPriceFromString("0.01", 2)
		sizeIncrement, _ := mdcat.NewQuantityFromString("1", 0)
		multiplier, _ := mdcat.NewQuantityFromString("1", 0)
		fee, _ := mdcat.NewPriceFromString("0.0004", 4)

		_, err := ingest.WriteCurrencySpots(store, []*mdcat.CurrencySpot{{
			InstrumentId: audUsd, BaseCurrency: "AUD", QuoteCurrency: "USD",
			PricePrecision: 5, SizePrecision: 0,
			PriceIncrement: increment, SizeIncrement: sizeIncrement,
			MinQuantity: sizeIncrement, MaxQuantity: sizeIncrement,
		}})
		Expect(err).NotTo(HaveOccurred())

		_, err = ingest.WriteCryptoFutures(store, []*mdcat.CryptoFuture{{
			InstrumentId: btcUsd, UnderlyingAsset: "BTC", SettlementAsset: "USDT",
			PricePrecision: 2, SizePrecision: 3,
			PriceIncrement: increment, SizeIncrement: sizeIncrement,
			MultiplierSize: multiplier, MakerFee: fee, TakerFee: fee,
		}})
		Expect(err).NotTo(HaveOccurred())

		got, warnings := query.Instruments(store, nil)
		Expect(warnings).To(BeEmpty())
		Expect(got).To(HaveLen(2))

		filtered, warnings := query.Instruments(store, []mdcat.InstrumentId{audUsd})
		Expect(warnings).To(BeEmpty())
		Expect(filtered).To(HaveLen(1))
		Expect(filtered[0].Id()).To(Equal(audUsd))
		_, ok := filtered[0].(*mdcat.CurrencySpot)
		Expect(ok).To(BeTrue())
	})

	It("returns nothing, not an error, for a subtype table that was never written", func() {
		store := catalog.Open(catalog.NewMemory())
		got, warnings := query.Instruments(store, nil)
		Expect(warnings).To(BeEmpty())
		Expect(got).To(BeEmpty())
	})
})

var _ = Describe("Query dispatcher", func() {
	It("boxes typed results as []any for the record type requested", func() {
		store := catalog.Open(catalog.NewMemory())
		id, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		price, _ := mdcat.NewPriceFromString("1.0", 2)
		size, _ := mdcat.NewQuantityFromString("1.0", 2)
		_, err := ingest.WriteQuoteTicks(store, []*mdcat.QuoteTick{
			{Header: mdcat.RHeader{InstrumentId: id, TsInit: 1}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
		})
		Expect(err).NotTo(HaveOccurred())

		rows, err := query.Query(store, mdcat.RecordType_QuoteTick, query.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		_, ok := rows[0].(*mdcat.QuoteTick)
		Expect(ok).To(BeTrue())
	})
})
