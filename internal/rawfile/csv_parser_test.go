// Copyright (c) 2024 Neomantra Corp

package rawfile_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/internal/rawfile"
)

// quoteCollector keeps every visited quote tick, for asserting on parse
// output without the full ingestion pipeline.
type quoteCollector struct {
	mdcat.NullVisitor
	quotes []*mdcat.QuoteTick
	trades []*mdcat.TradeTick
}

func (c *quoteCollector) OnQuoteTick(r *mdcat.QuoteTick) error {
	c.quotes = append(c.quotes, r)
	return nil
}

func (c *quoteCollector) OnTradeTick(r *mdcat.TradeTick) error {
	c.trades = append(c.trades, r)
	return nil
}

var _ = Describe("CSVParser", func() {
	It("reads the header from the first chunk and decodes quote rows", func() {
		parser := &rawfile.CSVParser{RecordType: mdcat.RecordType_QuoteTick, PricePrecision: 5}
		collector := &quoteCollector{}

		chunk := []byte("instrument_id,ts_event,ts_init,bid_price,ask_price,bid_size,ask_size\n" +
			"AUD/USD.SIM,1,2,0.65432,0.65440,1000000,1500000\n")
		consumed, err := parser.Parse(chunk, collector)
		Expect(err).NotTo(HaveOccurred())
		Expect(consumed).To(Equal(len(chunk)))

		Expect(collector.quotes).To(HaveLen(1))
		q := collector.quotes[0]
		Expect(q.Header.InstrumentId.String()).To(Equal("AUD/USD.SIM"))
		Expect(q.Header.TsInit).To(Equal(uint64(2)))
		Expect(q.BidPrice.String()).To(Equal("0.65432"))
		Expect(q.BidSize.Raw).To(Equal(uint64(1000000)))
	})

	It("holds back a trailing partial row for the next chunk", func() {
		parser := &rawfile.CSVParser{RecordType: mdcat.RecordType_QuoteTick, PricePrecision: 5}
		collector := &quoteCollector{}

		full := "instrument_id,ts_event,ts_init,bid_price,ask_price,bid_size,ask_size\n" +
			"AUD/USD.SIM,1,1,0.65432,0.65440,1,1\n" +
			"AUD/USD.SIM,2,2,0.65433,0.65441,1,1\n"
		split := len(full) - 10 // cuts the second data row mid-field

		consumed, err := parser.Parse([]byte(full[:split]), collector)
		Expect(err).NotTo(HaveOccurred())
		Expect(collector.quotes).To(HaveLen(1))

		rest := full[consumed:]
		consumed2, err := parser.Parse([]byte(rest), collector)
		Expect(err).NotTo(HaveOccurred())
		Expect(consumed2).To(Equal(len(rest)))
		Expect(collector.quotes).To(HaveLen(2))
		Expect(collector.quotes[1].Header.TsInit).To(Equal(uint64(2)))
	})

	It("decodes trade rows with enum-named aggressor sides", func() {
		parser := &rawfile.CSVParser{RecordType: mdcat.RecordType_TradeTick, PricePrecision: 2}
		collector := &quoteCollector{}

		chunk := []byte("instrument_id,ts_event,ts_init,price,size,aggressor_side,trade_id\n" +
			"BTC-USDT.BINANCE,1,1,42000.50,3,SELLER,T-1\n")
		_, err := parser.Parse(chunk, collector)
		Expect(err).NotTo(HaveOccurred())

		Expect(collector.trades).To(HaveLen(1))
		t := collector.trades[0]
		Expect(t.AggressorSide).To(Equal(mdcat.AggressorSide_Seller))
		Expect(t.TradeId).To(Equal("T-1"))
		Expect(t.Price.Raw).To(Equal(int64(4200050)))
	})

	It("starts each file with a fresh header via NewFile", func() {
		parser := &rawfile.CSVParser{RecordType: mdcat.RecordType_QuoteTick, PricePrecision: 5}
		collector := &quoteCollector{}

		first := []byte("instrument_id,ts_event,ts_init,bid_price,ask_price,bid_size,ask_size\n" +
			"AUD/USD.SIM,1,1,0.65432,0.65440,1,1\n")
		_, err := parser.Parse(first, collector)
		Expect(err).NotTo(HaveOccurred())

		// a second file's header row must be consumed as a header again,
		// not parsed as data against the first file's header.
		second := parser.NewFile()
		_, err = second.Parse(first, collector)
		Expect(err).NotTo(HaveOccurred())
		Expect(collector.quotes).To(HaveLen(2))
	})
})
