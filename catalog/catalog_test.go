// Copyright (c) 2024 Neomantra Corp

package catalog_test

import (
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/ingest"
	"github.com/marketcore/mdcat-go/internal/codec"
)

var _ = Describe("Store", func() {
	It("round-trips a quote tick batch through Memory FS", func() {
		store := catalog.Open(catalog.NewMemory())
		instrumentId, err := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		Expect(err).NotTo(HaveOccurred())

		price, _ := mdcat.NewPriceFromString("42000.50", 2)
		size, _ := mdcat.NewQuantityFromString("1.5", 4)
		want := []*mdcat.QuoteTick{
			{
				Header:   mdcat.RHeader{InstrumentId: instrumentId, TsEvent: 1, TsInit: 1},
				BidPrice: price, AskPrice: price, BidSize: size, AskSize: size,
			},
		}

		path := "data/quote_tick.parquet/instrument_id=BTC-USDT.BINANCE/20240101.parquet"
		err = store.WriteParquet(path, mdcat.RecordType_QuoteTick, func(rgw pqfile.BufferedRowGroupWriter) error {
			return codec.EncodeQuoteTickBatch(rgw, want)
		})
		Expect(err).NotTo(HaveOccurred())

		var got []*mdcat.QuoteTick
		err = store.ReadParquet(path, func(rgr *pqfile.RowGroupReader) error {
			recs, err := codec.DecodeQuoteTickBatch(rgr)
			got = append(got, recs...)
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
		Expect(got[0].BidPrice.Raw).To(Equal(want[0].BidPrice.Raw))
		Expect(got[0].Header.InstrumentId).To(Equal(instrumentId))
	})

	It("returns a clear error reading a missing file", func() {
		store := catalog.Open(catalog.NewMemory())
		err := store.ReadParquet("data/quote_tick.parquet/nope.parquet", func(*pqfile.RowGroupReader) error { return nil })
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Store instrument tables", func() {
	It("round-trips a CurrencySpot batch through Memory FS", func() {
		store := catalog.Open(catalog.NewMemory())
		instrumentId, err := mdcat.ParseInstrumentId("AUD/USD.OANDA")
		Expect(err).NotTo(HaveOccurred())

		increment, _ := mdcat.NewPriceFromString("0.00001", 5)
		sizeIncrement, _ := mdcat.NewQuantityFromString("1", 0)
		minQty, _ := mdcat.NewQuantityFromString("1000", 0)
		maxQty, _ := mdcat.NewQuantityFromString("1000000", 0)
		want := []*mdcat.CurrencySpot{
			{
				InstrumentId:   instrumentId,
				BaseCurrency:   "AUD",
				QuoteCurrency:  "USD",
				PricePrecision: 5,
				SizePrecision:  0,
				PriceIncrement: increment,
				SizeIncrement:  sizeIncrement,
				MinQuantity:    minQty,
				MaxQuantity:    maxQty,
			},
		}

		path := catalog.InstrumentsFile(mdcat.InstrumentKind_CurrencySpot)
		err = store.WriteInstrumentParquet(path, mdcat.InstrumentKind_CurrencySpot, func(rgw pqfile.BufferedRowGroupWriter) error {
			return codec.EncodeCurrencySpotBatch(rgw, want)
		})
		Expect(err).NotTo(HaveOccurred())

		var got []*mdcat.CurrencySpot
		err = store.ReadParquet(path, func(rgr *pqfile.RowGroupReader) error {
			recs, err := codec.DecodeCurrencySpotBatch(rgr)
			got = append(got, recs...)
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
		Expect(got[0].InstrumentId).To(Equal(instrumentId))
		Expect(got[0].BaseCurrency).To(Equal("AUD"))
		Expect(got[0].PriceIncrement.Raw).To(Equal(want[0].PriceIncrement.Raw))
	})
})

var _ = Describe("Mappings", func() {
	It("round-trips sanitized keys through Flush/LoadMappings", func() {
		fs := catalog.NewMemory()
		tableDir := "data/quote_tick.parquet"
		m, err := catalog.LoadMappings(fs, tableDir)
		Expect(err).NotTo(HaveOccurred())

		instrumentId, _ := mdcat.ParseInstrumentId("ES Z24/SPREAD.CME")
		key, err := m.Record(instrumentId)
		Expect(err).NotTo(HaveOccurred())
		Expect(key).To(Equal(mdcat.SanitizePartitionKey(instrumentId.String())))
		Expect(m.Flush(fs, tableDir)).To(Succeed())

		reloaded, err := catalog.LoadMappings(fs, tableDir)
		Expect(err).NotTo(HaveOccurred())
		original, ok := reloaded.Original(key)
		Expect(ok).To(BeTrue())
		Expect(original).To(Equal(instrumentId.String()))
	})

	It("refuses a second instrument id colliding on the same sanitized key", func() {
		fs := catalog.NewMemory()
		m, err := catalog.LoadMappings(fs, "data/trade_tick.parquet")
		Expect(err).NotTo(HaveOccurred())

		// "AUD/USD.SIM" and "AUD USD.SIM" both sanitize to "AUD-USD.SIM"
		slashed, _ := mdcat.ParseInstrumentId("AUD/USD.SIM")
		spaced, _ := mdcat.ParseInstrumentId("AUD USD.SIM")

		key, err := m.Record(slashed)
		Expect(err).NotTo(HaveOccurred())
		Expect(key).To(Equal("AUD-USD.SIM"))

		_, err = m.Record(spaced)
		Expect(err).To(HaveOccurred())

		// the first mapping survives the refused overwrite
		original, ok := m.Original("AUD-USD.SIM")
		Expect(ok).To(BeTrue())
		Expect(original).To(Equal(slashed.String()))

		// re-recording the winner stays idempotent
		_, err = m.Record(slashed)
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns an empty Mappings when no sidecar exists yet", func() {
		fs := catalog.NewMemory()
		m, err := catalog.LoadMappings(fs, "data/bar.parquet")
		Expect(err).NotTo(HaveOccurred())
		_, ok := m.Original("anything")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Store listings", func() {
	It("enumerates data types and decoded partition values", func() {
		store := catalog.Open(catalog.NewMemory())
		audUsd, _ := mdcat.ParseInstrumentId("AUD/USD.SIM")
		price, _ := mdcat.NewPriceFromString("0.65432", 5)
		size, _ := mdcat.NewQuantityFromString("1000000", 0)
		_, err := ingest.WriteQuoteTicks(store, []*mdcat.QuoteTick{
			{Header: mdcat.RHeader{InstrumentId: audUsd, TsInit: 1}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
		})
		Expect(err).NotTo(HaveOccurred())

		types, err := store.ListDataTypes()
		Expect(err).NotTo(HaveOccurred())
		Expect(types).To(Equal([]string{"quote_tick"}))

		// the sanitized on-disk key decodes back to the slashed original
		partitions, err := store.ListPartitions(mdcat.RecordType_QuoteTick)
		Expect(err).NotTo(HaveOccurred())
		Expect(partitions).To(Equal([]string{"AUD/USD.SIM"}))
	})
})

var _ = Describe("path helpers", func() {
	It("builds the hive-style partition directory", func() {
		instrumentId, _ := mdcat.ParseInstrumentId("AAPL.XNAS")
		dir := catalog.PartitionDir(catalog.TableDir(mdcat.RecordType_QuoteTick), instrumentId)
		Expect(dir).To(Equal("data/quote_tick.parquet/instrument_id=AAPL.XNAS"))
	})

	It("formats day file names zero-padded to eight digits", func() {
		Expect(catalog.DateFileName(20240102)).To(Equal("20240102.parquet"))
	})
})
