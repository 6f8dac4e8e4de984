// Copyright (c) 2024 Neomantra Corp

package streamwriter_test

import (
	"io"
	"time"

	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
	"github.com/marketcore/mdcat-go/streamwriter"
)

var _ = Describe("Writer", func() {
	var fs *catalog.Memory
	var id mdcat.InstrumentId
	var price mdcat.Price
	var size mdcat.Quantity

	BeforeEach(func() {
		fs = catalog.NewMemory()
		id, _ = mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		price, _ = mdcat.NewPriceFromString("1.0", 2)
		size, _ = mdcat.NewQuantityFromString("1.0", 2)
	})

	It("makes appended records durable once FlushAll runs, without waiting for the timer", func() {
		w := streamwriter.New(fs, "run1", time.Hour)
		err := streamwriter.AppendQuoteTicks(w, []*mdcat.QuoteTick{
			{Header: mdcat.RHeader{InstrumentId: id, TsInit: 1}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(w.FlushAll()).To(Succeed())
		Expect(w.Close()).To(Succeed())

		store := catalog.Open(fs)
		var got []*mdcat.QuoteTick
		err = store.ReadParquet("run1/quote_tick.parquet", func(rgr *pqfile.RowGroupReader) error {
			recs, err := codec.DecodeQuoteTickBatch(rgr)
			got = append(got, recs...)
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
	})

	It("accumulates multiple flushes as separate row groups under one footer", func() {
		w := streamwriter.New(fs, "run2", time.Hour)
		for i := uint64(0); i < 3; i++ {
			err := streamwriter.AppendQuoteTicks(w, []*mdcat.QuoteTick{
				{Header: mdcat.RHeader{InstrumentId: id, TsInit: i}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(w.FlushAll()).To(Succeed())
		}
		Expect(w.Close()).To(Succeed())

		store := catalog.Open(fs)
		groups := 0
		var got []*mdcat.QuoteTick
		err := store.ReadParquet("run2/quote_tick.parquet", func(rgr *pqfile.RowGroupReader) error {
			groups++
			recs, err := codec.DecodeQuoteTickBatch(rgr)
			got = append(got, recs...)
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(groups).To(Equal(3))
		Expect(got).To(HaveLen(3))
	})

	It("tolerates Close being called twice", func() {
		w := streamwriter.New(fs, "run3", time.Hour)
		Expect(streamwriter.AppendQuoteTicks(w, []*mdcat.QuoteTick{
			{Header: mdcat.RHeader{InstrumentId: id, TsInit: 1}, BidPrice: price, AskPrice: price, BidSize: size, AskSize: size},
		})).To(Succeed())
		Expect(w.Close()).To(Succeed())
		Expect(w.Close()).To(Succeed())
	})

	It("flushes a dynamically-named user record stream as newline-delimited JSON", func() {
		w := streamwriter.New(fs, "run4", time.Hour)
		rec := mdcat.NewUserRecord("custom_fill", mdcat.RHeader{InstrumentId: id, TsInit: 1}, map[string]any{"qty": 5})
		err := streamwriter.AppendUserRecords(w, "custom_fill", []*mdcat.UserRecord[map[string]any]{rec})
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())

		r, err := fs.Open("run4/custom_fill.jsonl")
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		data, err := io.ReadAll(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"custom_fill"`))
		Expect(string(data)).To(ContainSubstring("\n"))
	})
})
