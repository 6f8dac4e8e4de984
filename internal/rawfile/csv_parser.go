// Copyright (c) 2024 Neomantra Corp
//
// CSVParser decodes comma-separated raw files, one catalog record per
// row, with the column layout named by the file's header row. The header
// is read once from the file's first chunk; every later chunk is data
// rows only. Prices and sizes are decimal strings, as in JSONLinesParser;
// aggressor sides are enum names, where JSONLinesParser reads a number.

package rawfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/marketcore/mdcat-go"
)

// FileScoped is implemented by parsers that keep per-file state, such as
// CSVParser's header row. The ingestion pipeline calls NewFile once per
// input file so state never leaks across files (or across concurrently
// ingested files sharing one configured parser).
type FileScoped interface {
	NewFile() Parser
}

// CSVParser implements Parser over header-led CSV. A single parser decodes
// one record type per file; the file's header row names the columns.
type CSVParser struct {
	RecordType     mdcat.RecordType
	InstrumentId   mdcat.InstrumentId // default instrument if rows omit the column
	PricePrecision uint8
	SizePrecision  uint8

	header map[string]int
}

// NewFile returns a fresh parser with the same configuration and no
// captured header, for the next file.
func (p *CSVParser) NewFile() Parser {
	return &CSVParser{
		RecordType:     p.RecordType,
		InstrumentId:   p.InstrumentId,
		PricePrecision: p.PricePrecision,
		SizePrecision:  p.SizePrecision,
	}
}

func (p *CSVParser) Parse(chunk []byte, visitor mdcat.Visitor) (int, error) {
	last := bytes.LastIndexByte(chunk, '\n')
	if last < 0 {
		return 0, nil // no complete row yet; Reader re-presents the fragment
	}
	consumed := last + 1

	r := csv.NewReader(bytes.NewReader(chunk[:consumed]))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		if p.header == nil {
			p.header = make(map[string]int, len(row))
			for i, name := range row {
				p.header[strings.TrimSpace(name)] = i
			}
			continue
		}
		if err := p.parseRow(row, visitor); err != nil {
			return 0, err
		}
	}
	return consumed, nil
}

func (p *CSVParser) field(row []string, name string) string {
	idx, ok := p.header[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (p *CSVParser) price(row []string, name string) (mdcat.Price, error) {
	return mdcat.NewPriceFromString(p.field(row, name), p.PricePrecision)
}

func (p *CSVParser) quantity(row []string, name string) (mdcat.Quantity, error) {
	return mdcat.NewQuantityFromString(p.field(row, name), p.SizePrecision)
}

func (p *CSVParser) uint(row []string, name string) (uint64, error) {
	text := p.field(row, name)
	if text == "" {
		return 0, nil
	}
	return strconv.ParseUint(text, 10, 64)
}

func (p *CSVParser) parseHeaderColumns(row []string) (mdcat.RHeader, error) {
	header := mdcat.RHeader{InstrumentId: p.InstrumentId}
	if text := p.field(row, "instrument_id"); text != "" {
		id, err := mdcat.ParseInstrumentId(text)
		if err != nil {
			return header, err
		}
		header.InstrumentId = id
	}
	var err error
	if header.TsEvent, err = p.uint(row, "ts_event"); err != nil {
		return header, fmt.Errorf("bad ts_event: %w", err)
	}
	if header.TsInit, err = p.uint(row, "ts_init"); err != nil {
		return header, fmt.Errorf("bad ts_init: %w", err)
	}
	return header, nil
}

func (p *CSVParser) parseRow(row []string, visitor mdcat.Visitor) error {
	header, err := p.parseHeaderColumns(row)
	if err != nil {
		return err
	}

	switch p.RecordType {
	case mdcat.RecordType_QuoteTick:
		bidPrice, err := p.price(row, "bid_price")
		if err != nil {
			return err
		}
		askPrice, err := p.price(row, "ask_price")
		if err != nil {
			return err
		}
		bidSize, err := p.quantity(row, "bid_size")
		if err != nil {
			return err
		}
		askSize, err := p.quantity(row, "ask_size")
		if err != nil {
			return err
		}
		return visitor.OnQuoteTick(&mdcat.QuoteTick{
			Header: header, BidPrice: bidPrice, AskPrice: askPrice, BidSize: bidSize, AskSize: askSize,
		})
	case mdcat.RecordType_TradeTick:
		price, err := p.price(row, "price")
		if err != nil {
			return err
		}
		size, err := p.quantity(row, "size")
		if err != nil {
			return err
		}
		aggressor, err := mdcat.AggressorSideFromString(p.field(row, "aggressor_side"))
		if err != nil {
			return err
		}
		return visitor.OnTradeTick(&mdcat.TradeTick{
			Header: header, Price: price, Size: size,
			AggressorSide: aggressor, TradeId: p.field(row, "trade_id"),
		})
	case mdcat.RecordType_Bar:
		barType, err := mdcat.ParseBarType(p.field(row, "bar_type"))
		if err != nil {
			return err
		}
		open, err := p.price(row, "open")
		if err != nil {
			return err
		}
		high, err := p.price(row, "high")
		if err != nil {
			return err
		}
		low, err := p.price(row, "low")
		if err != nil {
			return err
		}
		cls, err := p.price(row, "close")
		if err != nil {
			return err
		}
		volume, err := p.quantity(row, "volume")
		if err != nil {
			return err
		}
		return visitor.OnBar(&mdcat.Bar{
			Header: header, BarType: barType,
			Open: open, High: high, Low: low, Close: cls, Volume: volume,
		})
	default:
		return fmt.Errorf("%w: csv does not support %s", mdcat.ErrUnknownRecordType, p.RecordType.String())
	}
}
