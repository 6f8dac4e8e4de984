// Copyright (c) 2024 Neomantra Corp

package mdcat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
)

var _ = Describe("Price", func() {
	It("round-trips a decimal string exactly through Raw", func() {
		p, err := mdcat.NewPriceFromString("2100.166666", 6)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Raw).To(Equal(int64(2100166666)))
		Expect(p.String()).To(Equal("2100.166666"))
	})

	It("stringifies exactly past float64's 2^53 mantissa", func() {
		p, err := mdcat.NewPriceRaw(9_007_199_254_740_993, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.String()).To(Equal("90071992547409.93"))
	})

	It("rounds half away from zero when a string overflows its precision", func() {
		p, err := mdcat.NewPriceFromString("1.005", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.String()).To(Equal("1.01"))

		n, err := mdcat.NewPriceFromString("-1.005", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.String()).To(Equal("-1.01"))
	})

	It("rejects precision beyond the build's fixed-point ceiling", func() {
		_, err := mdcat.NewPriceFromString("1.0", mdcat.MaxPrecision+1)
		var overflow *mdcat.PrecisionOverflowError
		Expect(err).To(BeAssignableToTypeOf(overflow))
	})

	It("adds and subtracts only at matching precision", func() {
		a, _ := mdcat.NewPriceFromString("1.50", 2)
		b, _ := mdcat.NewPriceFromString("0.25", 2)
		sum, err := a.Add(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.String()).To(Equal("1.75"))

		c, _ := mdcat.NewPriceFromString("1.5", 1)
		_, err = a.Add(c)
		var mismatch *mdcat.PrecisionMismatchError
		Expect(err).To(BeAssignableToTypeOf(mismatch))
	})

	It("rescales via Round, exact when widening, half-away-from-zero when narrowing", func() {
		p, _ := mdcat.NewPriceFromString("1.25", 2)
		wide, err := p.Round(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(wide.String()).To(Equal("1.2500"))

		narrow, err := p.Round(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(narrow.String()).To(Equal("1.3"))
	})

	It("compares across precisions by exact decimal value", func() {
		a, _ := mdcat.NewPriceFromString("1.50", 2)
		b, _ := mdcat.NewPriceFromString("1.5", 1)
		c, _ := mdcat.NewPriceFromString("1.51", 2)
		Expect(a.Cmp(b)).To(Equal(0))
		Expect(a.Cmp(c)).To(Equal(-1))
		Expect(c.Cmp(a)).To(Equal(1))
	})

	It("negates and takes absolute values without touching precision", func() {
		p, _ := mdcat.NewPriceFromString("-3.14", 2)
		Expect(p.Neg().String()).To(Equal("3.14"))
		Expect(p.Abs().String()).To(Equal("3.14"))
		Expect(p.Abs().Precision).To(Equal(uint8(2)))
	})
})

var _ = Describe("Quantity", func() {
	It("parses scientific notation at matching precision", func() {
		q, err := mdcat.NewQuantityFromString("1e-8", 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(q.Raw).To(Equal(uint64(1)))
		Expect(q.String()).To(Equal("0.00000001"))

		viaFloat, err := mdcat.NewQuantityFromFloat64(1e-8, 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(q).To(Equal(viaFloat))
	})

	It("rejects negative quantities", func() {
		_, err := mdcat.NewQuantityFromString("-1", 0)
		Expect(err).To(HaveOccurred())
	})

	It("refuses a subtraction that would go negative", func() {
		a, _ := mdcat.NewQuantityFromString("1.0", 1)
		b, _ := mdcat.NewQuantityFromString("2.0", 1)
		_, err := a.Sub(b)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Money", func() {
	It("stringifies with its currency", func() {
		m, err := mdcat.NewMoneyFromString("1000.55", 2, "USD")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.String()).To(Equal("1000.55 USD"))
	})

	It("refuses arithmetic across currencies", func() {
		usd, _ := mdcat.NewMoneyFromString("1.00", 2, "USD")
		eur, _ := mdcat.NewMoneyFromString("1.00", 2, "EUR")
		_, err := usd.Add(eur)
		var mismatch *mdcat.CurrencyMismatchError
		Expect(err).To(BeAssignableToTypeOf(mismatch))
	})
})

var _ = Describe("Notional", func() {
	It("multiplies price by quantity exactly", func() {
		p, _ := mdcat.NewPriceFromString("42000.50", 2)
		q, _ := mdcat.NewQuantityFromString("0.001", 3)
		Expect(mdcat.Notional(p, q).String()).To(Equal("42.0005"))
	})
})

var _ = Describe("identifier grammar", func() {
	It("parses a symbol containing dots, splitting the venue at the last one", func() {
		id, err := mdcat.ParseInstrumentId("ESZ4.C.0.GLBX")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(id.Symbol)).To(Equal("ESZ4.C.0"))
		Expect(string(id.Venue)).To(Equal("GLBX"))
		Expect(id.String()).To(Equal("ESZ4.C.0.GLBX"))
	})

	It("rejects an id with no venue", func() {
		_, err := mdcat.ParseInstrumentId("AAPL")
		Expect(err).To(HaveOccurred())
	})

	It("round-trips a bar type through its canonical text", func() {
		const text = "EUR/USD.SIM-5-MINUTE-MID-INTERNAL"
		bt, err := mdcat.ParseBarType(text)
		Expect(err).NotTo(HaveOccurred())
		Expect(bt.Step).To(Equal(uint64(5)))
		Expect(bt.Aggregation).To(Equal(mdcat.Aggregation_Minute))
		Expect(bt.PriceType).To(Equal(mdcat.PriceType_Mid))
		Expect(bt.String()).To(Equal(text))
	})
})
