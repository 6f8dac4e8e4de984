// Copyright (c) 2024 Neomantra Corp
//
// Canonical enumerations for the catalog's record set. Each has a String()
// method and, except InstrumentKind, a FromString() parser. Side,
// AggressorSide, BookAction, StatusAction and StatusReason also implement
// MarshalJSON()/UnmarshalJSON(), so they round-trip by name through the
// JSON ingestion shims; the other enums have no JSON methods.

package mdcat

import (
	"encoding/json"
	"fmt"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////

// Side is the market side of a quote, order, or trade.
type Side uint8

const (
	Side_None Side = 0 // No side specified by the original source.
	Side_Bid  Side = 1 // The buy side.
	Side_Ask  Side = 2 // The sell side.
)

func (s Side) String() string {
	switch s {
	case Side_Bid:
		return "BID"
	case Side_Ask:
		return "ASK"
	default:
		return "NONE"
	}
}

func SideFromString(str string) (Side, error) {
	switch strings.ToUpper(str) {
	case "BID", "B":
		return Side_Bid, nil
	case "ASK", "A":
		return Side_Ask, nil
	case "NONE", "N", "":
		return Side_None, nil
	default:
		return Side_None, fmt.Errorf("unknown Side: %s", str)
	}
}

func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := SideFromString(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// AggressorSide canonicalizes the side of the aggressing order in a trade.
// Some raw feeds encode this as a boolean ("is_buyer_maker") instead of
// this enum; that boolean form is normalized at the ingestion parser, see
// AggressorSideFromIsBuyerMaker.
type AggressorSide uint8

const (
	AggressorSide_None   AggressorSide = 0
	AggressorSide_Buyer  AggressorSide = 1
	AggressorSide_Seller AggressorSide = 2
)

func (a AggressorSide) String() string {
	switch a {
	case AggressorSide_Buyer:
		return "BUYER"
	case AggressorSide_Seller:
		return "SELLER"
	default:
		return "NONE"
	}
}

func AggressorSideFromString(str string) (AggressorSide, error) {
	switch strings.ToUpper(str) {
	case "BUYER":
		return AggressorSide_Buyer, nil
	case "SELLER":
		return AggressorSide_Seller, nil
	case "NONE", "":
		return AggressorSide_None, nil
	default:
		return AggressorSide_None, fmt.Errorf("unknown AggressorSide: %s", str)
	}
}

// AggressorSideFromIsBuyerMaker canonicalizes the boolean ingestion-shim
// form some raw feeds use: if the maker was the buyer, the aggressor (the
// taker) was the seller, and vice versa.
func AggressorSideFromIsBuyerMaker(isBuyerMaker bool) AggressorSide {
	if isBuyerMaker {
		return AggressorSide_Seller
	}
	return AggressorSide_Buyer
}

func (a AggressorSide) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AggressorSide) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := AggressorSideFromString(str)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// BookAction is the action applied to an order-book delta.
type BookAction uint8

const (
	BookAction_Add    BookAction = 'A'
	BookAction_Update BookAction = 'U'
	BookAction_Delete BookAction = 'D'
	BookAction_Clear  BookAction = 'C'
)

func (a BookAction) String() string {
	switch a {
	case BookAction_Add:
		return "ADD"
	case BookAction_Update:
		return "UPDATE"
	case BookAction_Delete:
		return "DELETE"
	case BookAction_Clear:
		return "CLEAR"
	default:
		return ""
	}
}

func BookActionFromString(str string) (BookAction, error) {
	switch strings.ToUpper(str) {
	case "ADD":
		return BookAction_Add, nil
	case "UPDATE":
		return BookAction_Update, nil
	case "DELETE":
		return BookAction_Delete, nil
	case "CLEAR":
		return BookAction_Clear, nil
	default:
		return 0, fmt.Errorf("unknown BookAction: %s", str)
	}
}

func (a BookAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *BookAction) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := BookActionFromString(str)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// Aggregation is the bar-aggregation unit of a BarType.
type Aggregation uint8

const (
	Aggregation_Tick Aggregation = iota
	Aggregation_Second
	Aggregation_Minute
	Aggregation_Hour
	Aggregation_Day
	Aggregation_Week
	Aggregation_Month
	Aggregation_Volume
	Aggregation_Value
)

var aggregationNames = [...]string{
	"TICK", "SECOND", "MINUTE", "HOUR", "DAY", "WEEK", "MONTH", "VOLUME", "VALUE",
}

func (a Aggregation) String() string {
	if int(a) < len(aggregationNames) {
		return aggregationNames[a]
	}
	return ""
}

func AggregationFromString(str string) (Aggregation, error) {
	upper := strings.ToUpper(str)
	for i, name := range aggregationNames {
		if name == upper {
			return Aggregation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown Aggregation: %s", str)
}

///////////////////////////////////////////////////////////////////////////////

// PriceType is the price basis of a bar (bid/ask/mid/last).
type PriceType uint8

const (
	PriceType_Bid PriceType = iota
	PriceType_Ask
	PriceType_Mid
	PriceType_Last
)

var priceTypeNames = [...]string{"BID", "ASK", "MID", "LAST"}

func (p PriceType) String() string {
	if int(p) < len(priceTypeNames) {
		return priceTypeNames[p]
	}
	return ""
}

func PriceTypeFromString(str string) (PriceType, error) {
	upper := strings.ToUpper(str)
	for i, name := range priceTypeNames {
		if name == upper {
			return PriceType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown PriceType: %s", str)
}

///////////////////////////////////////////////////////////////////////////////

// BarSource distinguishes internally-aggregated bars from externally-sourced ones.
type BarSource uint8

const (
	BarSource_Internal BarSource = iota
	BarSource_External
)

func (s BarSource) String() string {
	if s == BarSource_External {
		return "EXTERNAL"
	}
	return "INTERNAL"
}

func BarSourceFromString(str string) (BarSource, error) {
	switch strings.ToUpper(str) {
	case "EXTERNAL":
		return BarSource_External, nil
	case "INTERNAL":
		return BarSource_Internal, nil
	default:
		return 0, fmt.Errorf("unknown BarSource: %s", str)
	}
}

///////////////////////////////////////////////////////////////////////////////

// StatusAction is the trading-status action reported for an instrument or
// venue (trading halted, resumed, etc.).
type StatusAction uint8

const (
	StatusAction_None StatusAction = iota
	StatusAction_PreOpen
	StatusAction_Open
	StatusAction_Pause
	StatusAction_Halt
	StatusAction_Resume
	StatusAction_Close
	StatusAction_PostClose
)

var statusActionNames = [...]string{
	"NONE", "PRE_OPEN", "OPEN", "PAUSE", "HALT", "RESUME", "CLOSE", "POST_CLOSE",
}

func (a StatusAction) String() string {
	if int(a) < len(statusActionNames) {
		return statusActionNames[a]
	}
	return ""
}

func StatusActionFromString(str string) (StatusAction, error) {
	upper := strings.ToUpper(str)
	for i, name := range statusActionNames {
		if name == upper {
			return StatusAction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown StatusAction: %s", str)
}

func (a StatusAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *StatusAction) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := StatusActionFromString(str)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// StatusReason is the reason code accompanying a StatusAction.
type StatusReason uint8

const (
	StatusReason_None StatusReason = iota
	StatusReason_Scheduled
	StatusReason_SurveillanceIntervention
	StatusReason_MarketWide
	StatusReason_Regulatory
	StatusReason_Technical
	StatusReason_NewsPending
	StatusReason_NewsReleased
)

var statusReasonNames = [...]string{
	"NONE", "SCHEDULED", "SURVEILLANCE_INTERVENTION", "MARKET_WIDE",
	"REGULATORY", "TECHNICAL", "NEWS_PENDING", "NEWS_RELEASED",
}

func (r StatusReason) String() string {
	if int(r) < len(statusReasonNames) {
		return statusReasonNames[r]
	}
	return ""
}

func StatusReasonFromString(str string) (StatusReason, error) {
	upper := strings.ToUpper(str)
	for i, name := range statusReasonNames {
		if name == upper {
			return StatusReason(i), nil
		}
	}
	return 0, fmt.Errorf("unknown StatusReason: %s", str)
}

func (r StatusReason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *StatusReason) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := StatusReasonFromString(str)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// InstrumentKind tags the closed set of Instrument variants.
type InstrumentKind uint8

const (
	InstrumentKind_CurrencySpot InstrumentKind = iota
	InstrumentKind_CryptoFuture
	InstrumentKind_OptionContract
	InstrumentKind_BettingInstrument
	InstrumentKind_Equity
	InstrumentKind_Future
)

func (k InstrumentKind) String() string {
	switch k {
	case InstrumentKind_CurrencySpot:
		return "CURRENCY_SPOT"
	case InstrumentKind_CryptoFuture:
		return "CRYPTO_FUTURE"
	case InstrumentKind_OptionContract:
		return "OPTION_CONTRACT"
	case InstrumentKind_BettingInstrument:
		return "BETTING_INSTRUMENT"
	case InstrumentKind_Equity:
		return "EQUITY"
	case InstrumentKind_Future:
		return "FUTURE"
	default:
		return ""
	}
}

// TableName returns the snake_case table stem this kind is stored under,
// matching the catalog's <snake_case_type>.parquet directory convention.
func (k InstrumentKind) TableName() string {
	return strings.ToLower(k.String())
}

///////////////////////////////////////////////////////////////////////////////

// RecordType tags the closed set of time-series record variants stored in
// the catalog, one per <snake_case_type>.parquet directory.
type RecordType uint8

const (
	RecordType_QuoteTick RecordType = iota
	RecordType_TradeTick
	RecordType_Bar
	RecordType_OrderBookDelta
	RecordType_OrderBookDepth10
	RecordType_InstrumentStatus
	RecordType_InstrumentClose
	RecordType_FundingRateUpdate
	RecordType_MarkPriceUpdate
	RecordType_IndexPriceUpdate
	RecordType_UserDefined
)

var recordTypeNames = [...]string{
	"quote_tick", "trade_tick", "bar", "order_book_delta", "order_book_depth10",
	"instrument_status", "instrument_close", "funding_rate_update",
	"mark_price_update", "index_price_update", "user_defined",
}

// TableName returns the snake_case table stem this record type is stored
// under, e.g. "quote_tick" for "<root>/data/quote_tick.parquet/".
func (t RecordType) TableName() string {
	if int(t) < len(recordTypeNames) {
		return recordTypeNames[t]
	}
	return ""
}

func (t RecordType) String() string {
	return t.TableName()
}

// RecordTypeFromString parses a table stem (e.g. "quote_tick") back into
// its RecordType.
func RecordTypeFromString(s string) (RecordType, error) {
	for i, name := range recordTypeNames {
		if name == s {
			return RecordType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRecordType, s)
}

// IsPartitionedByInstrument reports whether this record type's on-disk
// layout partitions by instrument_id. All time-series record types do;
// instruments themselves are unpartitioned, one file per subtype.
func (t RecordType) IsPartitionedByInstrument() bool {
	return true
}
