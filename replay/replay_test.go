// Copyright (c) 2024 Neomantra Corp

package replay_test

import (
	"bytes"
	"log/slog"

	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
	"github.com/marketcore/mdcat-go/ingest"
	"github.com/marketcore/mdcat-go/replay"
)

func writeQuoteTickFile(store *catalog.Store, path string, id mdcat.InstrumentId, tsStart, count uint64) {
	price, _ := mdcat.NewPriceFromString("1.0", 2)
	size, _ := mdcat.NewQuantityFromString("1.0", 2)
	recs := make([]*mdcat.QuoteTick, 0, count)
	for i := uint64(0); i < count; i++ {
		recs = append(recs, &mdcat.QuoteTick{
			Header:   mdcat.RHeader{InstrumentId: id, TsInit: tsStart + i},
			BidPrice: price, AskPrice: price, BidSize: size, AskSize: size,
		})
	}
	err := store.WriteParquet(path, mdcat.RecordType_QuoteTick, func(rgw pqfile.BufferedRowGroupWriter) error {
		return codec.EncodeQuoteTickBatch(rgw, recs)
	})
	Expect(err).NotTo(HaveOccurred())
}

var _ = Describe("BatchFiles", func() {
	tsInitOf := func(r *mdcat.QuoteTick) uint64 { return r.Header.TsInit }
	instrumentIdOf := func(r *mdcat.QuoteTick) mdcat.InstrumentId { return r.Header.InstrumentId }
	approxBytesOf := func(*mdcat.QuoteTick) int { return 48 }

	It("merges two interleaved instrument files into one monotonic, tie-broken stream", func() {
		store := catalog.Open(catalog.NewMemory())
		a, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		b, _ := mdcat.ParseInstrumentId("ETH-USDT.BINANCE")

		// both files start at ts_init=0 and share every other timestamp,
		// exercising the config-index tie-break.
		writeQuoteTickFile(store, "a.parquet", a, 0, 10_000)
		writeQuoteTickFile(store, "b.parquet", b, 0, 10_000)

		configs := []replay.FileConfig{{Path: "a.parquet"}, {Path: "b.parquet"}}
		var all []*mdcat.QuoteTick
		err := replay.BatchFiles(store, configs, codec.DecodeQuoteTickBatch, tsInitOf, instrumentIdOf, approxBytesOf, 0, 0, nil,
			func(batch []*mdcat.QuoteTick) error {
				all = append(all, batch...)
				return nil
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(20_000))

		for i := 1; i < len(all); i++ {
			Expect(all[i].Header.TsInit).To(BeNumerically(">=", all[i-1].Header.TsInit))
		}
		// at the first tied timestamp, file index 0 (config "a") must come first
		Expect(all[0].Header.InstrumentId).To(Equal(a))
		Expect(all[1].Header.InstrumentId).To(Equal(b))
	})

	It("splits output into batches bounded by readRows", func() {
		store := catalog.Open(catalog.NewMemory())
		id, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		writeQuoteTickFile(store, "a.parquet", id, 0, 2_500)

		configs := []replay.FileConfig{{Path: "a.parquet"}}
		var batches [][]*mdcat.QuoteTick
		err := replay.BatchFiles(store, configs, codec.DecodeQuoteTickBatch, tsInitOf, instrumentIdOf, approxBytesOf, 1_000, 0, nil,
			func(batch []*mdcat.QuoteTick) error {
				batches = append(batches, batch)
				return nil
			})
		Expect(err).NotTo(HaveOccurred())

		Expect(batches).To(HaveLen(3))
		Expect(batches[0]).To(HaveLen(1_000))
		Expect(batches[1]).To(HaveLen(1_000))
		Expect(batches[2]).To(HaveLen(500))
	})

	It("logs and skips a corrupt file instead of aborting the merge", func() {
		store := catalog.Open(catalog.NewMemory())
		good, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		writeQuoteTickFile(store, "good.parquet", good, 0, 5)

		w, err := store.FS.Create("bad.parquet")
		Expect(err).NotTo(HaveOccurred())
		_, err = w.Write([]byte("not a parquet file"))
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())

		var logBuf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logBuf, nil))

		configs := []replay.FileConfig{{Path: "bad.parquet"}, {Path: "good.parquet"}}
		var all []*mdcat.QuoteTick
		err = replay.BatchFiles(store, configs, codec.DecodeQuoteTickBatch, tsInitOf, instrumentIdOf, approxBytesOf, 0, 0, logger,
			func(batch []*mdcat.QuoteTick) error {
				all = append(all, batch...)
				return nil
			})
		Expect(err).NotTo(HaveOccurred())

		Expect(all).To(HaveLen(5))
		Expect(logBuf.String()).To(ContainSubstring("skipping corrupt file"))
	})

	It("yields no batches for an empty config list", func() {
		store := catalog.Open(catalog.NewMemory())
		called := false
		err := replay.BatchFiles[*mdcat.QuoteTick](store, nil, codec.DecodeQuoteTickBatch, tsInitOf, instrumentIdOf, approxBytesOf, 0, 0, nil,
			func([]*mdcat.QuoteTick) error {
				called = true
				return nil
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(called).To(BeFalse())
	})

	It("filters a file's rows to the InstrumentId a config names", func() {
		store := catalog.Open(catalog.NewMemory())
		a, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		b, _ := mdcat.ParseInstrumentId("ETH-USDT.BINANCE")

		// one partition file holding rows for two instruments, as a
		// multi-instrument partition would.
		price, _ := mdcat.NewPriceFromString("1.0", 2)
		size, _ := mdcat.NewQuantityFromString("1.0", 2)
		recs := []*mdcat.QuoteTick{
			{Header: mdcat.RHeader{InstrumentId: a, TsInit: 0}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
			{Header: mdcat.RHeader{InstrumentId: b, TsInit: 1}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
			{Header: mdcat.RHeader{InstrumentId: a, TsInit: 2}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
		}
		err := store.WriteParquet("mixed.parquet", mdcat.RecordType_QuoteTick, func(rgw pqfile.BufferedRowGroupWriter) error {
			return codec.EncodeQuoteTickBatch(rgw, recs)
		})
		Expect(err).NotTo(HaveOccurred())

		configs := []replay.FileConfig{{Path: "mixed.parquet", InstrumentId: a}}
		var all []*mdcat.QuoteTick
		err = replay.BatchFiles(store, configs, codec.DecodeQuoteTickBatch, tsInitOf, instrumentIdOf, approxBytesOf, 0, 0, nil,
			func(batch []*mdcat.QuoteTick) error {
				all = append(all, batch...)
				return nil
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
		for _, r := range all {
			Expect(r.Header.InstrumentId).To(Equal(a))
		}
	})

	It("filters a file's rows to the [Start, End] bound a config names", func() {
		store := catalog.Open(catalog.NewMemory())
		id, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		writeQuoteTickFile(store, "a.parquet", id, 0, 10)

		start, end := uint64(3), uint64(6)
		configs := []replay.FileConfig{{Path: "a.parquet", Start: &start, End: &end}}
		var all []*mdcat.QuoteTick
		err := replay.BatchFiles(store, configs, codec.DecodeQuoteTickBatch, tsInitOf, instrumentIdOf, approxBytesOf, 0, 0, nil,
			func(batch []*mdcat.QuoteTick) error {
				all = append(all, batch...)
				return nil
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(4))
		Expect(all[0].Header.TsInit).To(Equal(uint64(3)))
		Expect(all[len(all)-1].Header.TsInit).To(Equal(uint64(6)))
	})
})

var _ = Describe("WriteQuoteTicks + BatchFiles", func() {
	It("replays records written through the normal ingestion path", func() {
		store := catalog.Open(catalog.NewMemory())
		id, _ := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		price, _ := mdcat.NewPriceFromString("1.0", 2)
		size, _ := mdcat.NewQuantityFromString("1.0", 2)

		_, err := ingest.WriteQuoteTicks(store, []*mdcat.QuoteTick{
			{Header: mdcat.RHeader{InstrumentId: id, TsInit: 5}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
			{Header: mdcat.RHeader{InstrumentId: id, TsInit: 1}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
		})
		Expect(err).NotTo(HaveOccurred())

		partitionDir := catalog.PartitionDir(catalog.TableDir(mdcat.RecordType_QuoteTick), id)
		files, err := store.FS.List(partitionDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(HaveLen(1))

		configs := []replay.FileConfig{{Path: partitionDir + "/" + files[0]}}
		var batches [][]*mdcat.QuoteTick
		err = replay.BatchFiles(store, configs, codec.DecodeQuoteTickBatch,
			func(r *mdcat.QuoteTick) uint64 { return r.Header.TsInit },
			func(r *mdcat.QuoteTick) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.QuoteTick) int { return 48 }, 0, 0, nil,
			func(batch []*mdcat.QuoteTick) error {
				batches = append(batches, batch)
				return nil
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(batches).To(HaveLen(1))
		Expect(batches[0][0].Header.TsInit).To(Equal(uint64(1)))
		Expect(batches[0][1].Header.TsInit).To(Equal(uint64(5)))
	})
})
