// Copyright (c) 2024 Neomantra Corp

package mdcat

import (
	"fmt"
	"strings"
	"sync"
)

// internTable deduplicates the backing strings of the identifier types
// below so that two identifiers with equal text share one allocation,
// matching the "value-typed interned strings" identifiers a busy ingest
// pipeline mints millions of per session.
var internTable sync.Map // string -> string

func intern(s string) string {
	if v, ok := internTable.Load(s); ok {
		return v.(string)
	}
	actual, _ := internTable.LoadOrStore(s, s)
	return actual.(string)
}

///////////////////////////////////////////////////////////////////////////////

// Symbol is a venue-local instrument symbol, e.g. "ESZ24" or "AAPL".
type Symbol string

// Venue is the market or exchange a Symbol trades on, e.g. "XNAS" or "BINANCE".
type Venue string

// InstrumentId uniquely identifies an instrument across all venues in the
// catalog as "<symbol>.<venue>".
type InstrumentId struct {
	Symbol Symbol
	Venue  Venue
}

func NewInstrumentId(symbol Symbol, venue Venue) InstrumentId {
	return InstrumentId{Symbol: symbol, Venue: venue}
}

func (id InstrumentId) String() string {
	return string(id.Symbol) + "." + string(id.Venue)
}

func (id InstrumentId) IsEmpty() bool {
	return id.Symbol == "" && id.Venue == ""
}

// ParseInstrumentId parses the canonical "<symbol>.<venue>" grammar. The
// symbol may itself contain '.' (e.g. option/future roots), so the venue is
// always the final dot-delimited segment.
func ParseInstrumentId(s string) (InstrumentId, error) {
	idx := strings.LastIndexByte(s, '.')
	if idx <= 0 || idx == len(s)-1 {
		return InstrumentId{}, fmt.Errorf("malformed instrument id %q: want <symbol>.<venue>", s)
	}
	return InstrumentId{Symbol: Symbol(s[:idx]), Venue: Venue(s[idx+1:])}, nil
}

func (id InstrumentId) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

func (id *InstrumentId) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseInstrumentId(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// BarType fully specifies a bar series: its instrument, step, aggregation
// unit, price basis, and whether it is internally aggregated or sourced
// externally, rendered as
// "<instrument_id>-<step>-<aggregation>-<price_type>-<source>".
type BarType struct {
	InstrumentId InstrumentId
	Step         uint64
	Aggregation  Aggregation
	PriceType    PriceType
	Source       BarSource
}

func (bt BarType) String() string {
	return fmt.Sprintf("%s-%d-%s-%s-%s",
		bt.InstrumentId.String(), bt.Step, bt.Aggregation.String(), bt.PriceType.String(), bt.Source.String())
}

// ParseBarType parses the canonical
// "<symbol>.<venue>-<step>-<aggregation>-<price_type>-<source>" grammar.
// The symbol may itself contain '-' (e.g. "BTC-USDT"), so the four trailing
// fields are taken from the right and the rest is the instrument id.
func ParseBarType(s string) (BarType, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 5 {
		return BarType{}, fmt.Errorf("malformed bar type %q: want 5 dash-delimited fields", s)
	}
	n := len(parts)
	parts = append([]string{strings.Join(parts[:n-4], "-")}, parts[n-4:]...)
	instrumentId, err := ParseInstrumentId(parts[0])
	if err != nil {
		return BarType{}, fmt.Errorf("malformed bar type %q: %w", s, err)
	}
	var step uint64
	if _, err := fmt.Sscanf(parts[1], "%d", &step); err != nil {
		return BarType{}, fmt.Errorf("malformed bar type %q: bad step: %w", s, err)
	}
	aggregation, err := AggregationFromString(parts[2])
	if err != nil {
		return BarType{}, fmt.Errorf("malformed bar type %q: %w", s, err)
	}
	priceType, err := PriceTypeFromString(parts[3])
	if err != nil {
		return BarType{}, fmt.Errorf("malformed bar type %q: %w", s, err)
	}
	source, err := BarSourceFromString(parts[4])
	if err != nil {
		return BarType{}, fmt.Errorf("malformed bar type %q: %w", s, err)
	}
	return BarType{
		InstrumentId: instrumentId,
		Step:         step,
		Aggregation:  aggregation,
		PriceType:    priceType,
		Source:       source,
	}, nil
}

func (bt BarType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + bt.String() + `"`), nil
}

func (bt *BarType) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseBarType(s)
	if err != nil {
		return err
	}
	*bt = parsed
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Order/account/execution identifiers. These carry no grammar of their own
// — they are opaque interned strings minted by a trader, strategy, venue,
// or account — so each is just a named string type over intern() plus the
// IsEmpty/String pair the rest of the codebase expects of an identifier.

// TraderId identifies the trader a strategy/account is running under.
type TraderId string

func NewTraderId(s string) TraderId { return TraderId(intern(s)) }
func (id TraderId) String() string  { return string(id) }
func (id TraderId) IsEmpty() bool   { return id == "" }

// StrategyId identifies a running strategy instance.
type StrategyId string

func NewStrategyId(s string) StrategyId { return StrategyId(intern(s)) }
func (id StrategyId) String() string    { return string(id) }
func (id StrategyId) IsEmpty() bool     { return id == "" }

// AccountId identifies a trading account at a venue.
type AccountId string

func NewAccountId(s string) AccountId { return AccountId(intern(s)) }
func (id AccountId) String() string   { return string(id) }
func (id AccountId) IsEmpty() bool    { return id == "" }

// PositionId identifies an open or closed position.
type PositionId string

func NewPositionId(s string) PositionId { return PositionId(intern(s)) }
func (id PositionId) String() string    { return string(id) }
func (id PositionId) IsEmpty() bool     { return id == "" }

// ClientOrderId identifies an order as assigned by the client/strategy
// that submitted it, before the venue assigns its own VenueOrderId.
type ClientOrderId string

func NewClientOrderId(s string) ClientOrderId { return ClientOrderId(intern(s)) }
func (id ClientOrderId) String() string       { return string(id) }
func (id ClientOrderId) IsEmpty() bool        { return id == "" }

// VenueOrderId identifies an order as assigned by the venue.
type VenueOrderId string

func NewVenueOrderId(s string) VenueOrderId { return VenueOrderId(intern(s)) }
func (id VenueOrderId) String() string      { return string(id) }
func (id VenueOrderId) IsEmpty() bool       { return id == "" }

// TradeId identifies an individual trade/execution/fill at the venue.
type TradeId string

func NewTradeId(s string) TradeId { return TradeId(intern(s)) }
func (id TradeId) String() string { return string(id) }
func (id TradeId) IsEmpty() bool  { return id == "" }
