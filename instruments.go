// Copyright (c) 2024 Neomantra Corp
//
// Instrument variants: a closed tagged union similar in shape to the
// Record/RecordType pairing in records.go/consts.go, but describing an
// instrument's static definition rather than a time-series event. Each
// variant stores one file under instruments.parquet/<kind>/.

package mdcat

// Instrument is implemented by every concrete instrument definition. Id
// and Kind let a caller holding an Instrument value route it to the right
// Arrow schema and encoder without a type switch.
type Instrument interface {
	Id() InstrumentId
	Kind() InstrumentKind
}

///////////////////////////////////////////////////////////////////////////////

// CurrencySpot is a spot FX pair, e.g. EUR/USD.
type CurrencySpot struct {
	InstrumentId     InstrumentId
	BaseCurrency     string
	QuoteCurrency    string
	PricePrecision   uint8
	SizePrecision    uint8
	PriceIncrement   Price
	SizeIncrement    Quantity
	MinQuantity      Quantity
	MaxQuantity      Quantity
}

func (i *CurrencySpot) Id() InstrumentId    { return i.InstrumentId }
func (i *CurrencySpot) Kind() InstrumentKind { return InstrumentKind_CurrencySpot }

// CryptoFuture is a crypto-margined or USD-margined futures/perpetual
// contract.
type CryptoFuture struct {
	InstrumentId    InstrumentId
	UnderlyingAsset string
	SettlementAsset string
	IsInverse       bool
	Expiration      uint64 // 0 means perpetual (no expiry)
	PricePrecision  uint8
	SizePrecision   uint8
	PriceIncrement  Price
	SizeIncrement   Quantity
	MultiplierSize  Quantity
	MakerFee        Price
	TakerFee        Price
}

func (i *CryptoFuture) Id() InstrumentId    { return i.InstrumentId }
func (i *CryptoFuture) Kind() InstrumentKind { return InstrumentKind_CryptoFuture }

// OptionContract is an exchange-listed or OTC option.
type OptionContract struct {
	InstrumentId    InstrumentId
	UnderlyingId    InstrumentId
	IsCall          bool
	StrikePrice     Price
	Expiration      uint64
	PricePrecision  uint8
	SizePrecision   uint8
	PriceIncrement  Price
	MultiplierSize  Quantity
}

func (i *OptionContract) Id() InstrumentId    { return i.InstrumentId }
func (i *OptionContract) Kind() InstrumentKind { return InstrumentKind_OptionContract }

// BettingInstrument is a fixed-odds or exchange-odds betting market
// selection, per the original source's sports/betting venue support.
type BettingInstrument struct {
	InstrumentId  InstrumentId
	EventId       string
	MarketId      string
	SelectionId   string
	SelectionName string
	MarketStart   uint64
}

func (i *BettingInstrument) Id() InstrumentId    { return i.InstrumentId }
func (i *BettingInstrument) Kind() InstrumentKind { return InstrumentKind_BettingInstrument }

// Equity is a listed equity security.
type Equity struct {
	InstrumentId   InstrumentId
	Isin           string
	PricePrecision uint8
	SizePrecision  uint8
	PriceIncrement Price
	LotSize        Quantity
}

func (i *Equity) Id() InstrumentId    { return i.InstrumentId }
func (i *Equity) Kind() InstrumentKind { return InstrumentKind_Equity }

// Future is a dated, physically or cash-settled futures contract.
type Future struct {
	InstrumentId    InstrumentId
	UnderlyingAsset string
	Expiration      uint64
	PricePrecision  uint8
	PriceIncrement  Price
	MultiplierSize  Quantity
}

func (i *Future) Id() InstrumentId    { return i.InstrumentId }
func (i *Future) Kind() InstrumentKind { return InstrumentKind_Future }
