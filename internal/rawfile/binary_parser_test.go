// Copyright (c) 2024 Neomantra Corp

package rawfile_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/internal/rawfile"
)

// recordingVisitor captures every record it's handed, so tests can assert
// on what a parser decoded without a full ingest pipeline.
type recordingVisitor struct {
	mdcat.NullVisitor
	quoteTicks []*mdcat.QuoteTick
	tradeTicks []*mdcat.TradeTick
}

func (v *recordingVisitor) OnQuoteTick(r *mdcat.QuoteTick) error {
	v.quoteTicks = append(v.quoteTicks, r)
	return nil
}

func (v *recordingVisitor) OnTradeTick(r *mdcat.TradeTick) error {
	v.tradeTicks = append(v.tradeTicks, r)
	return nil
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// frame builds one binary_parser.go frame: tag, precision, 4-byte body
// length, then body.
func frame(rtype mdcat.RecordType, precision uint8, body []byte) []byte {
	out := []byte{byte(rtype), precision}
	out = append(out, le32(uint32(len(body)))...)
	return append(out, body...)
}

var _ = Describe("BinaryParser", func() {
	It("decodes a QuoteTick frame and fills TsInit", func() {
		body := append([]byte{}, le64(1000)...) // bid price
		body = append(body, le64(1005)...)       // ask price
		body = append(body, le64(10)...)         // bid size
		body = append(body, le64(12)...)         // ask size
		body = append(body, le64(42)...)         // ts_event
		body = append(body, le64(43)...)         // ts_init
		chunk := frame(mdcat.RecordType_QuoteTick, 2, body)

		parser := &rawfile.BinaryParser{}
		visitor := &recordingVisitor{}
		consumed, err := parser.Parse(chunk, visitor)
		Expect(err).NotTo(HaveOccurred())
		Expect(consumed).To(Equal(len(chunk)))
		Expect(visitor.quoteTicks).To(HaveLen(1))

		rec := visitor.quoteTicks[0]
		Expect(rec.BidPrice.Raw).To(Equal(int64(1000)))
		Expect(rec.AskPrice.Raw).To(Equal(int64(1005)))
		Expect(rec.Header.TsEvent).To(Equal(uint64(42)))
		Expect(rec.Header.TsInit).To(Equal(uint64(43)))
	})

	It("decodes a TradeTick frame and fills TsInit", func() {
		body := append([]byte{}, le64(500)...) // price
		body = append(body, le64(3)...)         // size
		body = append(body, byte(mdcat.AggressorSide_Buyer))
		body = append(body, make([]byte, 7)...) // padding up to ts_event offset
		body = append(body, le64(7)...)          // ts_event
		body = append(body, le64(8)...)          // ts_init
		chunk := frame(mdcat.RecordType_TradeTick, 2, body)

		parser := &rawfile.BinaryParser{}
		visitor := &recordingVisitor{}
		_, err := parser.Parse(chunk, visitor)
		Expect(err).NotTo(HaveOccurred())
		Expect(visitor.tradeTicks).To(HaveLen(1))
		Expect(visitor.tradeTicks[0].Header.TsInit).To(Equal(uint64(8)))
	})

	It("defaults InstrumentId from the parser and carries a partial frame across Parse calls", func() {
		id, err := mdcat.ParseInstrumentId("BTC-USDT.BINANCE")
		Expect(err).NotTo(HaveOccurred())

		body := append([]byte{}, le64(500)...)
		body = append(body, le64(3)...)
		body = append(body, byte(mdcat.AggressorSide_Seller))
		body = append(body, make([]byte, 7)...)
		body = append(body, le64(7)...)
		body = append(body, le64(8)...)
		chunk := frame(mdcat.RecordType_TradeTick, 2, body)

		parser := &rawfile.BinaryParser{InstrumentId: id}
		visitor := &recordingVisitor{}

		// Split the chunk mid-frame: the parser must hold it back and
		// report it as unconsumed rather than erroring.
		consumed, err := parser.Parse(chunk[:len(chunk)-4], visitor)
		Expect(err).NotTo(HaveOccurred())
		Expect(consumed).To(Equal(0))
		Expect(visitor.tradeTicks).To(BeEmpty())

		consumed, err = parser.Parse(chunk, visitor)
		Expect(err).NotTo(HaveOccurred())
		Expect(consumed).To(Equal(len(chunk)))
		Expect(visitor.tradeTicks).To(HaveLen(1))
		Expect(visitor.tradeTicks[0].Header.InstrumentId).To(Equal(id))
	})

	It("rejects an unknown record type tag", func() {
		chunk := frame(mdcat.RecordType(200), 0, make([]byte, 4))
		parser := &rawfile.BinaryParser{}
		_, err := parser.Parse(chunk, &recordingVisitor{})
		Expect(err).To(HaveOccurred())
	})
})
