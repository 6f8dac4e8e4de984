// Copyright (c) 2024 Neomantra Corp

package mdcat_test

import (
	"time"

	"github.com/marketcore/mdcat-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Helpers", func() {
	Context("conversion", func() {
		It("converts timestamp to sec, nanos correctly", func() {
			sec, nanos := mdcat.TimestampToSecNanos(1234567890123456789)
			Expect(sec).To(Equal(int64(1234567890)))
			Expect(nanos).To(Equal(int64(123456789)))
		})
		It("converts Times to Time correctly", func() {
			Expect(mdcat.TimestampToTime(0).UTC()).To(Equal(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
			Expect(mdcat.TimestampToTime(1234567890123456789).UTC()).To(Equal(time.Date(2009, 02, 13, 23, 31, 30, 123456789, time.UTC)))
		})
		It("converts Times to YMD correctly", func() {
			Expect(mdcat.TimeToYMD(time.Time{})).To(Equal(uint32(0)))
			Expect(mdcat.TimeToYMD(time.Date(2024, 04, 12, 0, 0, 0, 0, time.UTC))).To(Equal(uint32(20240412)))
		})
		It("round-trips YMD through TimeToYMD/YMDToTime", func() {
			t := mdcat.YMDToTime(20240412, time.UTC)
			Expect(mdcat.TimeToYMD(t)).To(Equal(uint32(20240412)))
		})
	})
	Context("modification", func() {
		It("trims null bytes correctly", func() {
			Expect(mdcat.TrimNullBytes([]byte("hello\x00\x00\x00\x00"))).To(Equal("hello"))
		})
		It("does not malform regular strings", func() {
			Expect(mdcat.TrimNullBytes([]byte("hello"))).To(Equal("hello"))
		})
	})
	Context("partition key sanitization", func() {
		It("leaves safe keys untouched", func() {
			Expect(mdcat.SanitizePartitionKey("AAPL.XNAS")).To(Equal("AAPL.XNAS"))
		})
		It("replaces unsafe characters with a dash", func() {
			Expect(mdcat.SanitizePartitionKey("ES Z24/SPREAD")).To(Equal("ES-Z24-SPREAD"))
		})
	})
})
