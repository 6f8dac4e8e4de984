// Copyright (c) 2024 Neomantra Corp
//
// BinaryParser decodes fixed-width binary records, one per frame, each
// tagged with the record's RecordType byte. Adapted from dbn-go's
// DbnScanner/DbnScannerDecode: a length-prefixed frame dispatched by a
// single tag byte straight to a Fill_Raw method, generalized from DBN's
// 1-byte word count (max 1020 bytes) to a 4-byte byte count so the
// catalog's largest record, OrderBookDepth10 at 504 bytes of body, still
// fits comfortably with room to grow.
//
// Frame layout: 1 byte RecordType tag, 1 byte price precision, 4 bytes
// little-endian body length, then the body Fill_Raw expects.

package rawfile

import (
	"encoding/binary"
	"fmt"

	"github.com/marketcore/mdcat-go"
)

// binaryFrameHeaderSize is the tag + precision + length prefix every frame
// carries ahead of its body.
const binaryFrameHeaderSize = 6

// BinaryParser implements Parser over the fixed-width binary framing.
type BinaryParser struct {
	InstrumentId mdcat.InstrumentId // default instrument; frames carry none of their own
}

func (p *BinaryParser) Parse(chunk []byte, visitor mdcat.Visitor) (int, error) {
	consumed := 0
	for {
		rest := chunk[consumed:]
		if len(rest) < binaryFrameHeaderSize {
			break
		}
		bodyLen := int(binary.LittleEndian.Uint32(rest[2:6]))
		frameLen := binaryFrameHeaderSize + bodyLen
		if len(rest) < frameLen {
			break
		}
		if err := p.parseFrame(rest[:frameLen], visitor); err != nil {
			return consumed, err
		}
		consumed += frameLen
	}
	return consumed, nil
}

func (p *BinaryParser) parseFrame(frame []byte, visitor mdcat.Visitor) error {
	rtype := mdcat.RecordType(frame[0])
	precision := frame[1]
	body := frame[binaryFrameHeaderSize:]

	switch rtype {
	case mdcat.RecordType_QuoteTick:
		record := mdcat.QuoteTick{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnQuoteTick(&record)
	case mdcat.RecordType_TradeTick:
		record := mdcat.TradeTick{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnTradeTick(&record)
	case mdcat.RecordType_Bar:
		record := mdcat.Bar{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnBar(&record)
	case mdcat.RecordType_OrderBookDelta:
		record := mdcat.OrderBookDelta{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnOrderBookDelta(&record)
	case mdcat.RecordType_OrderBookDepth10:
		record := mdcat.OrderBookDepth10{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnOrderBookDepth10(&record)
	case mdcat.RecordType_InstrumentStatus:
		record := mdcat.InstrumentStatus{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnInstrumentStatus(&record)
	case mdcat.RecordType_InstrumentClose:
		record := mdcat.InstrumentClose{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnInstrumentClose(&record)
	case mdcat.RecordType_FundingRateUpdate:
		record := mdcat.FundingRateUpdate{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnFundingRateUpdate(&record)
	case mdcat.RecordType_MarkPriceUpdate:
		record := mdcat.MarkPriceUpdate{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnMarkPriceUpdate(&record)
	case mdcat.RecordType_IndexPriceUpdate:
		record := mdcat.IndexPriceUpdate{Header: mdcat.RHeader{InstrumentId: p.InstrumentId}}
		if err := record.Fill_Raw(body, precision); err != nil {
			return err
		}
		return visitor.OnIndexPriceUpdate(&record)
	default:
		return fmt.Errorf("%w: tag %d", mdcat.ErrUnknownRecordType, rtype)
	}
}
