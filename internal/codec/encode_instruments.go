// Copyright (c) 2024 Neomantra Corp
//
// Batch encoders for the Instrument variant set, the static-definition
// counterpart to encode.go's time-series encoders. Each function takes a
// concrete instrument slice (never the mdcat.Instrument interface) since
// the column layout is specific to one variant's fields.

package codec

import (
	pqfile "github.com/apache/arrow-go/v18/parquet/file"

	"github.com/marketcore/mdcat-go"
)

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// EncodeCurrencySpotBatch writes a batch of CurrencySpot instruments.
func EncodeCurrencySpotBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.CurrencySpot) error {
	n := len(records)
	id := make([]string, n)
	base := make([]string, n)
	quote := make([]string, n)
	pricePrecision := make([]int32, n)
	sizePrecision := make([]int32, n)
	priceIncrement := make([]int64, n)
	sizeIncrement := make([]int64, n)
	minQty := make([]int64, n)
	maxQty := make([]int64, n)
	for i, r := range records {
		id[i] = r.InstrumentId.String()
		base[i] = r.BaseCurrency
		quote[i] = r.QuoteCurrency
		pricePrecision[i] = int32(r.PricePrecision)
		sizePrecision[i] = int32(r.SizePrecision)
		priceIncrement[i] = r.PriceIncrement.Raw
		sizeIncrement[i] = int64(r.SizeIncrement.Raw)
		minQty[i] = int64(r.MinQuantity.Raw)
		maxQty[i] = int64(r.MaxQuantity.Raw)
	}
	if err := writeByteArrayColumn(rgw, 0, id); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 1, base); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 2, quote); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 3, pricePrecision); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 4, sizePrecision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 5, priceIncrement); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 6, sizeIncrement); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 7, minQty); err != nil {
		return err
	}
	return writeInt64Column(rgw, 8, maxQty)
}

// EncodeCryptoFutureBatch writes a batch of CryptoFuture instruments.
func EncodeCryptoFutureBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.CryptoFuture) error {
	n := len(records)
	id := make([]string, n)
	underlying := make([]string, n)
	settlement := make([]string, n)
	isInverse := make([]int32, n)
	expiration := make([]int64, n)
	pricePrecision := make([]int32, n)
	sizePrecision := make([]int32, n)
	priceIncrement := make([]int64, n)
	sizeIncrement := make([]int64, n)
	multiplier := make([]int64, n)
	makerFee := make([]int64, n)
	takerFee := make([]int64, n)
	for i, r := range records {
		id[i] = r.InstrumentId.String()
		underlying[i] = r.UnderlyingAsset
		settlement[i] = r.SettlementAsset
		isInverse[i] = boolToInt32(r.IsInverse)
		expiration[i] = int64(r.Expiration)
		pricePrecision[i] = int32(r.PricePrecision)
		sizePrecision[i] = int32(r.SizePrecision)
		priceIncrement[i] = r.PriceIncrement.Raw
		sizeIncrement[i] = int64(r.SizeIncrement.Raw)
		multiplier[i] = int64(r.MultiplierSize.Raw)
		makerFee[i] = r.MakerFee.Raw
		takerFee[i] = r.TakerFee.Raw
	}
	if err := writeByteArrayColumn(rgw, 0, id); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 1, underlying); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 2, settlement); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 3, isInverse); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 4, expiration); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 5, pricePrecision); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 6, sizePrecision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 7, priceIncrement); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 8, sizeIncrement); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 9, multiplier); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 10, makerFee); err != nil {
		return err
	}
	return writeInt64Column(rgw, 11, takerFee)
}

// EncodeOptionContractBatch writes a batch of OptionContract instruments.
func EncodeOptionContractBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.OptionContract) error {
	n := len(records)
	id := make([]string, n)
	underlying := make([]string, n)
	isCall := make([]int32, n)
	strike := make([]int64, n)
	expiration := make([]int64, n)
	pricePrecision := make([]int32, n)
	sizePrecision := make([]int32, n)
	priceIncrement := make([]int64, n)
	multiplier := make([]int64, n)
	for i, r := range records {
		id[i] = r.InstrumentId.String()
		underlying[i] = r.UnderlyingId.String()
		isCall[i] = boolToInt32(r.IsCall)
		strike[i] = r.StrikePrice.Raw
		expiration[i] = int64(r.Expiration)
		pricePrecision[i] = int32(r.PricePrecision)
		sizePrecision[i] = int32(r.SizePrecision)
		priceIncrement[i] = r.PriceIncrement.Raw
		multiplier[i] = int64(r.MultiplierSize.Raw)
	}
	if err := writeByteArrayColumn(rgw, 0, id); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 1, underlying); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 2, isCall); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 3, strike); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 4, expiration); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 5, pricePrecision); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 6, sizePrecision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 7, priceIncrement); err != nil {
		return err
	}
	return writeInt64Column(rgw, 8, multiplier)
}

// EncodeBettingInstrumentBatch writes a batch of BettingInstrument instruments.
func EncodeBettingInstrumentBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.BettingInstrument) error {
	n := len(records)
	id := make([]string, n)
	eventId := make([]string, n)
	marketId := make([]string, n)
	selectionId := make([]string, n)
	selectionName := make([]string, n)
	marketStart := make([]int64, n)
	for i, r := range records {
		id[i] = r.InstrumentId.String()
		eventId[i] = r.EventId
		marketId[i] = r.MarketId
		selectionId[i] = r.SelectionId
		selectionName[i] = r.SelectionName
		marketStart[i] = int64(r.MarketStart)
	}
	if err := writeByteArrayColumn(rgw, 0, id); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 1, eventId); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 2, marketId); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 3, selectionId); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 4, selectionName); err != nil {
		return err
	}
	return writeInt64Column(rgw, 5, marketStart)
}

// EncodeEquityBatch writes a batch of Equity instruments.
func EncodeEquityBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.Equity) error {
	n := len(records)
	id := make([]string, n)
	isin := make([]string, n)
	pricePrecision := make([]int32, n)
	sizePrecision := make([]int32, n)
	priceIncrement := make([]int64, n)
	lotSize := make([]int64, n)
	for i, r := range records {
		id[i] = r.InstrumentId.String()
		isin[i] = r.Isin
		pricePrecision[i] = int32(r.PricePrecision)
		sizePrecision[i] = int32(r.SizePrecision)
		priceIncrement[i] = r.PriceIncrement.Raw
		lotSize[i] = int64(r.LotSize.Raw)
	}
	if err := writeByteArrayColumn(rgw, 0, id); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 1, isin); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 2, pricePrecision); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 3, sizePrecision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 4, priceIncrement); err != nil {
		return err
	}
	return writeInt64Column(rgw, 5, lotSize)
}

// EncodeFutureBatch writes a batch of Future instruments.
func EncodeFutureBatch(rgw pqfile.BufferedRowGroupWriter, records []*mdcat.Future) error {
	n := len(records)
	id := make([]string, n)
	underlying := make([]string, n)
	expiration := make([]int64, n)
	pricePrecision := make([]int32, n)
	priceIncrement := make([]int64, n)
	multiplier := make([]int64, n)
	for i, r := range records {
		id[i] = r.InstrumentId.String()
		underlying[i] = r.UnderlyingAsset
		expiration[i] = int64(r.Expiration)
		pricePrecision[i] = int32(r.PricePrecision)
		priceIncrement[i] = r.PriceIncrement.Raw
		multiplier[i] = int64(r.MultiplierSize.Raw)
	}
	if err := writeByteArrayColumn(rgw, 0, id); err != nil {
		return err
	}
	if err := writeByteArrayColumn(rgw, 1, underlying); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 2, expiration); err != nil {
		return err
	}
	if err := writeInt32Column(rgw, 3, pricePrecision); err != nil {
		return err
	}
	if err := writeInt64Column(rgw, 4, priceIncrement); err != nil {
		return err
	}
	return writeInt64Column(rgw, 5, multiplier)
}
