// Copyright (c) 2024 Neomantra Corp
//
// JSONLinesParser decodes newline-delimited JSON records, one catalog
// record per line, each tagged with a "type" field naming the record kind
// (e.g. "quote_tick"). Adapted from dbn-go's json_scanner.go
// dispatchJsonVisitor switch, generalized from DBN's RType field to the
// catalog's RecordType and from a rigid 20-field binary header to the
// flexible "instrument_id"/"ts_event"/"ts_init" fields a raw feed actually
// reports per record.

package rawfile

import (
	"bytes"
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/marketcore/mdcat-go"
)

// JSONLinesParser implements Parser over newline-delimited JSON.
type JSONLinesParser struct {
	InstrumentId mdcat.InstrumentId // default instrument if a line omits one
	parserPool   fastjson.ParserPool
}

func (p *JSONLinesParser) Parse(chunk []byte, visitor mdcat.Visitor) (int, error) {
	consumed := 0
	for {
		idx := bytes.IndexByte(chunk[consumed:], '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimSpace(chunk[consumed : consumed+idx])
		consumed += idx + 1
		if len(line) == 0 {
			continue
		}
		if err := p.parseLine(line, visitor); err != nil {
			return consumed, err
		}
	}
	return consumed, nil
}

func (p *JSONLinesParser) parseLine(line []byte, visitor mdcat.Visitor) error {
	parser := p.parserPool.Get()
	defer p.parserPool.Put(parser)

	val, err := parser.ParseBytes(line)
	if err != nil {
		return fmt.Errorf("malformed json line: %w", err)
	}

	header := mdcat.RHeader{
		InstrumentId: p.InstrumentId,
		TsEvent:      val.GetUint64("ts_event"),
		TsInit:       val.GetUint64("ts_init"),
	}
	if instrumentIdStr := val.GetStringBytes("instrument_id"); len(instrumentIdStr) > 0 {
		if id, err := mdcat.ParseInstrumentId(string(instrumentIdStr)); err == nil {
			header.InstrumentId = id
		}
	}

	switch recordType := string(val.GetStringBytes("type")); recordType {
	case "quote_tick":
		record := mdcat.QuoteTick{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnQuoteTick(&record)
	case "trade_tick":
		record := mdcat.TradeTick{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnTradeTick(&record)
	case "bar":
		record := mdcat.Bar{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnBar(&record)
	case "order_book_delta":
		record := mdcat.OrderBookDelta{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnOrderBookDelta(&record)
	case "order_book_depth10":
		record := mdcat.OrderBookDepth10{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnOrderBookDepth10(&record)
	case "instrument_status":
		record := mdcat.InstrumentStatus{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnInstrumentStatus(&record)
	case "instrument_close":
		record := mdcat.InstrumentClose{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnInstrumentClose(&record)
	case "funding_rate_update":
		record := mdcat.FundingRateUpdate{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnFundingRateUpdate(&record)
	case "mark_price_update":
		record := mdcat.MarkPriceUpdate{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnMarkPriceUpdate(&record)
	case "index_price_update":
		record := mdcat.IndexPriceUpdate{}
		if err := record.Fill_Json(val, &header); err != nil {
			return err
		}
		return visitor.OnIndexPriceUpdate(&record)
	case "currency_spot", "crypto_future", "option_contract", "betting_instrument", "equity", "future":
		instrument, err := parseInstrumentJSON(recordType, val, header.InstrumentId)
		if err != nil {
			return err
		}
		return visitor.OnInstrument(instrument)
	default:
		return fmt.Errorf("%w: %q", mdcat.ErrUnknownRecordType, recordType)
	}
}

// parseInstrumentJSON decodes one of the Instrument variants from a JSON
// line, mirroring the price/size field-by-field parsing the time-series
// Fill_Json methods in records.go use, except precision is read per
// instrument rather than assumed fixed.
func parseInstrumentJSON(kind string, val *fastjson.Value, defaultId mdcat.InstrumentId) (mdcat.Instrument, error) {
	instrumentId := defaultId
	if raw := val.GetStringBytes("instrument_id"); len(raw) > 0 {
		id, err := mdcat.ParseInstrumentId(string(raw))
		if err != nil {
			return nil, fmt.Errorf("instrument %s: %w", kind, err)
		}
		instrumentId = id
	}
	pricePrecision := uint8(val.GetUint("price_precision"))
	sizePrecision := uint8(val.GetUint("size_precision"))

	price := func(field string) (mdcat.Price, error) {
		return mdcat.NewPriceFromString(string(val.GetStringBytes(field)), pricePrecision)
	}
	quantity := func(field string) (mdcat.Quantity, error) {
		return mdcat.NewQuantityFromString(string(val.GetStringBytes(field)), sizePrecision)
	}

	switch kind {
	case "currency_spot":
		priceIncrement, err := price("price_increment")
		if err != nil {
			return nil, err
		}
		sizeIncrement, err := quantity("size_increment")
		if err != nil {
			return nil, err
		}
		minQty, err := quantity("min_quantity")
		if err != nil {
			return nil, err
		}
		maxQty, err := quantity("max_quantity")
		if err != nil {
			return nil, err
		}
		return &mdcat.CurrencySpot{
			InstrumentId:   instrumentId,
			BaseCurrency:   string(val.GetStringBytes("base_currency")),
			QuoteCurrency:  string(val.GetStringBytes("quote_currency")),
			PricePrecision: pricePrecision,
			SizePrecision:  sizePrecision,
			PriceIncrement: priceIncrement,
			SizeIncrement:  sizeIncrement,
			MinQuantity:    minQty,
			MaxQuantity:    maxQty,
		}, nil
	case "crypto_future":
		priceIncrement, err := price("price_increment")
		if err != nil {
			return nil, err
		}
		sizeIncrement, err := quantity("size_increment")
		if err != nil {
			return nil, err
		}
		multiplier, err := quantity("multiplier_size")
		if err != nil {
			return nil, err
		}
		makerFee, err := price("maker_fee")
		if err != nil {
			return nil, err
		}
		takerFee, err := price("taker_fee")
		if err != nil {
			return nil, err
		}
		return &mdcat.CryptoFuture{
			InstrumentId:    instrumentId,
			UnderlyingAsset: string(val.GetStringBytes("underlying_asset")),
			SettlementAsset: string(val.GetStringBytes("settlement_asset")),
			IsInverse:       val.GetBool("is_inverse"),
			Expiration:      val.GetUint64("expiration"),
			PricePrecision:  pricePrecision,
			SizePrecision:   sizePrecision,
			PriceIncrement:  priceIncrement,
			SizeIncrement:   sizeIncrement,
			MultiplierSize:  multiplier,
			MakerFee:        makerFee,
			TakerFee:        takerFee,
		}, nil
	case "option_contract":
		underlyingId, err := mdcat.ParseInstrumentId(string(val.GetStringBytes("underlying_id")))
		if err != nil {
			return nil, fmt.Errorf("instrument %s: %w", kind, err)
		}
		strike, err := price("strike_price")
		if err != nil {
			return nil, err
		}
		priceIncrement, err := price("price_increment")
		if err != nil {
			return nil, err
		}
		multiplier, err := quantity("multiplier_size")
		if err != nil {
			return nil, err
		}
		return &mdcat.OptionContract{
			InstrumentId:   instrumentId,
			UnderlyingId:   underlyingId,
			IsCall:         val.GetBool("is_call"),
			StrikePrice:    strike,
			Expiration:     val.GetUint64("expiration"),
			PricePrecision: pricePrecision,
			SizePrecision:  sizePrecision,
			PriceIncrement: priceIncrement,
			MultiplierSize: multiplier,
		}, nil
	case "betting_instrument":
		return &mdcat.BettingInstrument{
			InstrumentId:  instrumentId,
			EventId:       string(val.GetStringBytes("event_id")),
			MarketId:      string(val.GetStringBytes("market_id")),
			SelectionId:   string(val.GetStringBytes("selection_id")),
			SelectionName: string(val.GetStringBytes("selection_name")),
			MarketStart:   val.GetUint64("market_start"),
		}, nil
	case "equity":
		priceIncrement, err := price("price_increment")
		if err != nil {
			return nil, err
		}
		lotSize, err := quantity("lot_size")
		if err != nil {
			return nil, err
		}
		return &mdcat.Equity{
			InstrumentId:   instrumentId,
			Isin:           string(val.GetStringBytes("isin")),
			PricePrecision: pricePrecision,
			SizePrecision:  sizePrecision,
			PriceIncrement: priceIncrement,
			LotSize:        lotSize,
		}, nil
	case "future":
		priceIncrement, err := price("price_increment")
		if err != nil {
			return nil, err
		}
		multiplier, err := quantity("multiplier_size")
		if err != nil {
			return nil, err
		}
		return &mdcat.Future{
			InstrumentId:    instrumentId,
			UnderlyingAsset: string(val.GetStringBytes("underlying_asset")),
			Expiration:      val.GetUint64("expiration"),
			PricePrecision:  pricePrecision,
			PriceIncrement:  priceIncrement,
			MultiplierSize:  multiplier,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", mdcat.ErrUnknownRecordType, kind)
	}
}
