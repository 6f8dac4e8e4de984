// Copyright (c) 2024 Neomantra Corp
//
// Batch decoders for the Instrument variant set, the mirror image of
// encode_instruments.go's column layout.

package codec

import (
	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
)

func parseInstrumentIds(raw []string) ([]mdcat.InstrumentId, error) {
	out := make([]mdcat.InstrumentId, len(raw))
	for i, s := range raw {
		id, err := mdcat.ParseInstrumentId(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// DecodeCurrencySpotBatch reads every row of a row group back into
// CurrencySpot instruments.
func DecodeCurrencySpotBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.CurrencySpot, error) {
	n := rgr.NumRows()
	rawId, err := readByteArrayColumn(rgr, 0, n)
	if err != nil {
		return nil, err
	}
	base, err := readByteArrayColumn(rgr, 1, n)
	if err != nil {
		return nil, err
	}
	quote, err := readByteArrayColumn(rgr, 2, n)
	if err != nil {
		return nil, err
	}
	pricePrecision, err := readInt32Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	priceIncrement, err := readInt64Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	sizeIncrement, err := readInt64Column(rgr, 6, n)
	if err != nil {
		return nil, err
	}
	minQty, err := readInt64Column(rgr, 7, n)
	if err != nil {
		return nil, err
	}
	maxQty, err := readInt64Column(rgr, 8, n)
	if err != nil {
		return nil, err
	}
	ids, err := parseInstrumentIds(rawId)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.CurrencySpot, n)
	for i := range out {
		out[i] = &mdcat.CurrencySpot{
			InstrumentId:   ids[i],
			BaseCurrency:   base[i],
			QuoteCurrency:  quote[i],
			PricePrecision: uint8(pricePrecision[i]),
			SizePrecision:  uint8(sizePrecision[i]),
			PriceIncrement: mdcat.Price{Raw: priceIncrement[i], Precision: uint8(pricePrecision[i])},
			SizeIncrement:  mdcat.Quantity{Raw: uint64(sizeIncrement[i]), Precision: uint8(sizePrecision[i])},
			MinQuantity:    mdcat.Quantity{Raw: uint64(minQty[i]), Precision: uint8(sizePrecision[i])},
			MaxQuantity:    mdcat.Quantity{Raw: uint64(maxQty[i]), Precision: uint8(sizePrecision[i])},
		}
	}
	return out, nil
}

// DecodeCryptoFutureBatch reads every row of a row group back into
// CryptoFuture instruments.
func DecodeCryptoFutureBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.CryptoFuture, error) {
	n := rgr.NumRows()
	rawId, err := readByteArrayColumn(rgr, 0, n)
	if err != nil {
		return nil, err
	}
	underlying, err := readByteArrayColumn(rgr, 1, n)
	if err != nil {
		return nil, err
	}
	settlement, err := readByteArrayColumn(rgr, 2, n)
	if err != nil {
		return nil, err
	}
	isInverse, err := readInt32Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	expiration, err := readInt64Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	pricePrecision, err := readInt32Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, 6, n)
	if err != nil {
		return nil, err
	}
	priceIncrement, err := readInt64Column(rgr, 7, n)
	if err != nil {
		return nil, err
	}
	sizeIncrement, err := readInt64Column(rgr, 8, n)
	if err != nil {
		return nil, err
	}
	multiplier, err := readInt64Column(rgr, 9, n)
	if err != nil {
		return nil, err
	}
	makerFee, err := readInt64Column(rgr, 10, n)
	if err != nil {
		return nil, err
	}
	takerFee, err := readInt64Column(rgr, 11, n)
	if err != nil {
		return nil, err
	}
	ids, err := parseInstrumentIds(rawId)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.CryptoFuture, n)
	for i := range out {
		out[i] = &mdcat.CryptoFuture{
			InstrumentId:    ids[i],
			UnderlyingAsset: underlying[i],
			SettlementAsset: settlement[i],
			IsInverse:       isInverse[i] != 0,
			Expiration:      uint64(expiration[i]),
			PricePrecision:  uint8(pricePrecision[i]),
			SizePrecision:   uint8(sizePrecision[i]),
			PriceIncrement:  mdcat.Price{Raw: priceIncrement[i], Precision: uint8(pricePrecision[i])},
			SizeIncrement:   mdcat.Quantity{Raw: uint64(sizeIncrement[i]), Precision: uint8(sizePrecision[i])},
			MultiplierSize:  mdcat.Quantity{Raw: uint64(multiplier[i]), Precision: uint8(sizePrecision[i])},
			MakerFee:        mdcat.Price{Raw: makerFee[i], Precision: uint8(pricePrecision[i])},
			TakerFee:        mdcat.Price{Raw: takerFee[i], Precision: uint8(pricePrecision[i])},
		}
	}
	return out, nil
}

// DecodeOptionContractBatch reads every row of a row group back into
// OptionContract instruments.
func DecodeOptionContractBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.OptionContract, error) {
	n := rgr.NumRows()
	rawId, err := readByteArrayColumn(rgr, 0, n)
	if err != nil {
		return nil, err
	}
	rawUnderlying, err := readByteArrayColumn(rgr, 1, n)
	if err != nil {
		return nil, err
	}
	isCall, err := readInt32Column(rgr, 2, n)
	if err != nil {
		return nil, err
	}
	strike, err := readInt64Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	expiration, err := readInt64Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	pricePrecision, err := readInt32Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, 6, n)
	if err != nil {
		return nil, err
	}
	priceIncrement, err := readInt64Column(rgr, 7, n)
	if err != nil {
		return nil, err
	}
	multiplier, err := readInt64Column(rgr, 8, n)
	if err != nil {
		return nil, err
	}
	ids, err := parseInstrumentIds(rawId)
	if err != nil {
		return nil, err
	}
	underlyingIds, err := parseInstrumentIds(rawUnderlying)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.OptionContract, n)
	for i := range out {
		out[i] = &mdcat.OptionContract{
			InstrumentId:   ids[i],
			UnderlyingId:   underlyingIds[i],
			IsCall:         isCall[i] != 0,
			StrikePrice:    mdcat.Price{Raw: strike[i], Precision: uint8(pricePrecision[i])},
			Expiration:     uint64(expiration[i]),
			PricePrecision: uint8(pricePrecision[i]),
			SizePrecision:  uint8(sizePrecision[i]),
			PriceIncrement: mdcat.Price{Raw: priceIncrement[i], Precision: uint8(pricePrecision[i])},
			MultiplierSize: mdcat.Quantity{Raw: uint64(multiplier[i]), Precision: uint8(sizePrecision[i])},
		}
	}
	return out, nil
}

// DecodeBettingInstrumentBatch reads every row of a row group back into
// BettingInstrument instruments.
func DecodeBettingInstrumentBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.BettingInstrument, error) {
	n := rgr.NumRows()
	rawId, err := readByteArrayColumn(rgr, 0, n)
	if err != nil {
		return nil, err
	}
	eventId, err := readByteArrayColumn(rgr, 1, n)
	if err != nil {
		return nil, err
	}
	marketId, err := readByteArrayColumn(rgr, 2, n)
	if err != nil {
		return nil, err
	}
	selectionId, err := readByteArrayColumn(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	selectionName, err := readByteArrayColumn(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	marketStart, err := readInt64Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	ids, err := parseInstrumentIds(rawId)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.BettingInstrument, n)
	for i := range out {
		out[i] = &mdcat.BettingInstrument{
			InstrumentId:  ids[i],
			EventId:       eventId[i],
			MarketId:      marketId[i],
			SelectionId:   selectionId[i],
			SelectionName: selectionName[i],
			MarketStart:   uint64(marketStart[i]),
		}
	}
	return out, nil
}

// DecodeEquityBatch reads every row of a row group back into Equity
// instruments.
func DecodeEquityBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.Equity, error) {
	n := rgr.NumRows()
	rawId, err := readByteArrayColumn(rgr, 0, n)
	if err != nil {
		return nil, err
	}
	isin, err := readByteArrayColumn(rgr, 1, n)
	if err != nil {
		return nil, err
	}
	pricePrecision, err := readInt32Column(rgr, 2, n)
	if err != nil {
		return nil, err
	}
	sizePrecision, err := readInt32Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	priceIncrement, err := readInt64Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	lotSize, err := readInt64Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	ids, err := parseInstrumentIds(rawId)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.Equity, n)
	for i := range out {
		out[i] = &mdcat.Equity{
			InstrumentId:   ids[i],
			Isin:           isin[i],
			PricePrecision: uint8(pricePrecision[i]),
			SizePrecision:  uint8(sizePrecision[i]),
			PriceIncrement: mdcat.Price{Raw: priceIncrement[i], Precision: uint8(pricePrecision[i])},
			LotSize:        mdcat.Quantity{Raw: uint64(lotSize[i]), Precision: uint8(sizePrecision[i])},
		}
	}
	return out, nil
}

// DecodeFutureBatch reads every row of a row group back into Future
// instruments.
func DecodeFutureBatch(rgr *pqfile.RowGroupReader) ([]*mdcat.Future, error) {
	n := rgr.NumRows()
	rawId, err := readByteArrayColumn(rgr, 0, n)
	if err != nil {
		return nil, err
	}
	underlying, err := readByteArrayColumn(rgr, 1, n)
	if err != nil {
		return nil, err
	}
	expiration, err := readInt64Column(rgr, 2, n)
	if err != nil {
		return nil, err
	}
	pricePrecision, err := readInt32Column(rgr, 3, n)
	if err != nil {
		return nil, err
	}
	priceIncrement, err := readInt64Column(rgr, 4, n)
	if err != nil {
		return nil, err
	}
	multiplier, err := readInt64Column(rgr, 5, n)
	if err != nil {
		return nil, err
	}
	ids, err := parseInstrumentIds(rawId)
	if err != nil {
		return nil, err
	}
	out := make([]*mdcat.Future, n)
	for i := range out {
		out[i] = &mdcat.Future{
			InstrumentId:    ids[i],
			UnderlyingAsset: underlying[i],
			Expiration:      uint64(expiration[i]),
			PricePrecision:  uint8(pricePrecision[i]),
			PriceIncrement:  mdcat.Price{Raw: priceIncrement[i], Precision: uint8(pricePrecision[i])},
			MultiplierSize:  mdcat.Quantity{Raw: uint64(multiplier[i]), Precision: uint8(pricePrecision[i])},
		}
	}
	return out, nil
}
