// Copyright (c) 2024 Neomantra Corp
//
// Adapted from dbn-go's Visitor/NullVisitor: a double-dispatch interface so
// a raw-file scan can push records straight to a consumer (the ingestion
// pipeline, a streaming query) without the consumer needing a type switch.

package mdcat

// Visitor receives each decoded record during a scan, one On* call per
// concrete record type, followed by exactly one OnStreamEnd.
type Visitor interface {
	OnQuoteTick(record *QuoteTick) error
	OnTradeTick(record *TradeTick) error
	OnBar(record *Bar) error
	OnOrderBookDelta(record *OrderBookDelta) error
	OnOrderBookDepth10(record *OrderBookDepth10) error
	OnInstrumentStatus(record *InstrumentStatus) error
	OnInstrumentClose(record *InstrumentClose) error
	OnFundingRateUpdate(record *FundingRateUpdate) error
	OnMarkPriceUpdate(record *MarkPriceUpdate) error
	OnIndexPriceUpdate(record *IndexPriceUpdate) error
	OnInstrument(instrument Instrument) error

	OnStreamEnd() error
}

// NullVisitor implements Visitor with no-ops; embed it and override only
// the On* methods a consumer cares about.
type NullVisitor struct{}

func (v *NullVisitor) OnQuoteTick(record *QuoteTick) error                 { return nil }
func (v *NullVisitor) OnTradeTick(record *TradeTick) error                 { return nil }
func (v *NullVisitor) OnBar(record *Bar) error                            { return nil }
func (v *NullVisitor) OnOrderBookDelta(record *OrderBookDelta) error       { return nil }
func (v *NullVisitor) OnOrderBookDepth10(record *OrderBookDepth10) error  { return nil }
func (v *NullVisitor) OnInstrumentStatus(record *InstrumentStatus) error  { return nil }
func (v *NullVisitor) OnInstrumentClose(record *InstrumentClose) error    { return nil }
func (v *NullVisitor) OnFundingRateUpdate(record *FundingRateUpdate) error { return nil }
func (v *NullVisitor) OnMarkPriceUpdate(record *MarkPriceUpdate) error    { return nil }
func (v *NullVisitor) OnIndexPriceUpdate(record *IndexPriceUpdate) error  { return nil }
func (v *NullVisitor) OnInstrument(instrument Instrument) error          { return nil }
func (v *NullVisitor) OnStreamEnd() error                                 { return nil }
