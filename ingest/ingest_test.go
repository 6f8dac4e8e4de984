// Copyright (c) 2024 Neomantra Corp

package ingest_test

import (
	"context"
	"os"
	"path/filepath"

	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/ingest"
	"github.com/marketcore/mdcat-go/internal/codec"
	"github.com/marketcore/mdcat-go/internal/rawfile"
	"github.com/marketcore/mdcat-go/query"
)

var _ = Describe("ProcessFiles", func() {
	It("parses, partitions, and writes a JSON-lines fixture", func() {
		dir := GinkgoT().TempDir()
		raw := filepath.Join(dir, "ticks.jsonl")
		lines := `{"type":"quote_tick","instrument_id":"BTC-USDT.BINANCE","ts_event":2,"ts_init":2,"bid_price":"100.0","ask_price":"100.5","bid_size":"1.0","ask_size":"1.0"}
{"type":"quote_tick","instrument_id":"BTC-USDT.BINANCE","ts_event":1,"ts_init":1,"bid_price":"99.0","ask_price":"99.5","bid_size":"1.0","ask_size":"1.0"}
`
		Expect(os.WriteFile(raw, []byte(lines), 0o644)).To(Succeed())

		store := catalog.Open(catalog.NewMemory())
		executor := ingest.NewSynchronousExecutor()
		cfg := ingest.Config{CatalogRoot: dir}

		result, err := ingest.ProcessFiles(context.Background(), cfg, []string{raw}, &rawfile.JSONLinesParser{}, store, executor)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.RowsWritten[raw]).To(Equal(2))

		// a second run skips the already-processed file via the ledger
		result2, err := ingest.ProcessFiles(context.Background(), cfg, []string{raw}, &rawfile.JSONLinesParser{}, store, executor)
		Expect(err).NotTo(HaveOccurred())
		Expect(result2.RowsWritten).NotTo(HaveKey(raw))
	})

	It("rejects a Config with no CatalogRoot", func() {
		store := catalog.Open(catalog.NewMemory())
		_, err := ingest.ProcessFiles(context.Background(), ingest.Config{}, nil, &rawfile.JSONLinesParser{}, store, ingest.NewSynchronousExecutor())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("WriteQuoteTicks", func() {
	It("groups records by instrument id and writes one partition per group", func() {
		store := catalog.Open(catalog.NewMemory())
		btc, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		eth, _ := mdcat.ParseInstrumentId("ETH-USDT.BINANCE")
		price, _ := mdcat.NewPriceFromString("1.0", 2)
		size, _ := mdcat.NewQuantityFromString("1.0", 2)

		recs := []*mdcat.QuoteTick{
			{Header: mdcat.RHeader{InstrumentId: btc, TsInit: 2}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
			{Header: mdcat.RHeader{InstrumentId: btc, TsInit: 1}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
			{Header: mdcat.RHeader{InstrumentId: eth, TsInit: 1}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
		}

		n, err := ingest.WriteQuoteTicks(store, recs)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))

		entries, err := store.FS.List(catalog.TableDir(mdcat.RecordType_QuoteTick))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(ContainElements(
			"instrument_id="+mdcat.SanitizePartitionKey(btc.String()),
			"instrument_id="+mdcat.SanitizePartitionKey(eth.String()),
		))
	})
})

var _ = Describe("WriteInstruments", func() {
	It("merges into the existing subtype file and drops exact-duplicate rows on re-write", func() {
		store := catalog.Open(catalog.NewMemory())
		audUsd, _ := mdcat.ParseInstrumentId("AUD/USD.OANDA")
		eurUsd, _ := mdcat.ParseInstrumentId("EUR/USD.OANDA")
		increment, _ := mdcat.NewPriceFromString("0.00001", 5)
		sizeIncrement, _ := mdcat.NewQuantityFromString("1", 0)
		minQty, _ := mdcat.NewQuantityFromString("1000", 0)
		maxQty, _ := mdcat.NewQuantityFromString("1000000", 0)

		spot := func(id mdcat.InstrumentId, base, quote string) *mdcat.CurrencySpot {
			return &mdcat.CurrencySpot{
				InstrumentId: id, BaseCurrency: base, QuoteCurrency: quote,
				PricePrecision: 5, SizePrecision: 0,
				PriceIncrement: increment, SizeIncrement: sizeIncrement,
				MinQuantity: minQty, MaxQuantity: maxQty,
			}
		}

		n, err := ingest.WriteCurrencySpots(store, []*mdcat.CurrencySpot{spot(audUsd, "AUD", "USD")})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))

		// re-ingesting the same row plus one new instrument should merge, not
		// duplicate the first row.
		n, err = ingest.WriteCurrencySpots(store, []*mdcat.CurrencySpot{
			spot(audUsd, "AUD", "USD"),
			spot(eurUsd, "EUR", "USD"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))

		got, err := query.QueryCurrencySpots(store, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))
	})

	It("groups a heterogeneous Instrument batch by concrete kind", func() {
		store := catalog.Open(catalog.NewMemory())
		audUsd, _ := mdcat.ParseInstrumentId("AUD/USD.OANDA")
		btcUsd, _ := mdcat.ParseInstrumentId("BTC-USD-PERP.BINANCE")
		increment, _ := mdcat.NewPriceFromString("0.01", 2)
		sizeIncrement, _ := mdcat.NewQuantityFromString("1", 0)
		multiplier, _ := mdcat.NewQuantityFromString("1", 0)
		fee, _ := mdcat.NewPriceFromString("0.0004", 4)

		instruments := []mdcat.Instrument{
			&mdcat.CurrencySpot{
				InstrumentId: audUsd, BaseCurrency: "AUD", QuoteCurrency: "USD",
				PricePrecision: 5, SizePrecision: 0,
				PriceIncrement: increment, SizeIncrement: sizeIncrement,
				MinQuantity: sizeIncrement, MaxQuantity: sizeIncrement,
			},
			&mdcat.CryptoFuture{
				InstrumentId: btcUsd, UnderlyingAsset: "BTC", SettlementAsset: "USDT",
				PricePrecision: 2, SizePrecision: 3,
				PriceIncrement: increment, SizeIncrement: sizeIncrement,
				MultiplierSize: multiplier, MakerFee: fee, TakerFee: fee,
			},
		}

		n, err := ingest.WriteInstruments(store, instruments)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))

		spots, err := query.QueryCurrencySpots(store, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(spots).To(HaveLen(1))

		futures, err := query.QueryCryptoFutures(store, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(futures).To(HaveLen(1))
	})
})

var _ = Describe("ValidateTable", func() {
	It("compacts a partition's multiple same-day files down to one, deduping by last-write-wins", func() {
		store := catalog.Open(catalog.NewMemory())
		id, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		price, _ := mdcat.NewPriceFromString("1.0", 2)
		size, _ := mdcat.NewQuantityFromString("1.0", 2)

		mk := func(ts uint64, bid string) *mdcat.QuoteTick {
			p, _ := mdcat.NewPriceFromString(bid, 2)
			return &mdcat.QuoteTick{Header: mdcat.RHeader{InstrumentId: id, TsInit: ts}, BidPrice: p, AskPrice: price, BidSize: size, AskSize: size}
		}

		// simulate two partition files landing on the same UTC day from two
		// separate historical imports, named so they sort before the real
		// per-day output file and are picked up by ValidateTable's listing.
		partitionDir := catalog.PartitionDir(catalog.TableDir(mdcat.RecordType_QuoteTick), id)
		writeFile := func(name string, recs []*mdcat.QuoteTick) {
			err := store.WriteParquet(partitionDir+"/"+name, mdcat.RecordType_QuoteTick, func(rgw pqfile.BufferedRowGroupWriter) error {
				return codec.EncodeQuoteTickBatch(rgw, recs)
			})
			Expect(err).NotTo(HaveOccurred())
		}
		writeFile("19700101-import1.parquet", []*mdcat.QuoteTick{mk(1, "1.0"), mk(2, "2.0")})
		// ts=2 here is a byte-for-byte duplicate of import1's ts=2 row (same
		// bid/ask/size), exercising dedupKey's "last file wins" collapse.
		writeFile("19700101-import2.parquet", []*mdcat.QuoteTick{mk(2, "2.0"), mk(3, "3.0")})

		Expect(ingest.ValidateTable(store, mdcat.RecordType_QuoteTick)).To(Succeed())

		entries, err := store.FS.List(partitionDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(Equal([]string{"19700101.parquet"}))

		var got []*mdcat.QuoteTick
		err = store.ReadParquet(partitionDir+"/19700101.parquet", func(rgr *pqfile.RowGroupReader) error {
			recs, err := codec.DecodeQuoteTickBatch(rgr)
			got = append(got, recs...)
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(3)) // ts=1, ts=2 (deduped from two identical rows), ts=3
	})
})
