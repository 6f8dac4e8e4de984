// Copyright (c) 2024 Neomantra Corp
//
// collectingVisitor buffers every record a raw-file parser produces,
// grouped by (record type, instrument_id) the way the ingestion algorithm
// in spec.md §4.5 step 2 requires, before the pipeline sorts and writes
// each group as one partition file.

package ingest

import "github.com/marketcore/mdcat-go"

type collectingVisitor struct {
	quoteTicks         map[mdcat.InstrumentId][]*mdcat.QuoteTick
	tradeTicks         map[mdcat.InstrumentId][]*mdcat.TradeTick
	bars               map[mdcat.InstrumentId][]*mdcat.Bar
	orderBookDeltas    map[mdcat.InstrumentId][]*mdcat.OrderBookDelta
	orderBookDepth10s  map[mdcat.InstrumentId][]*mdcat.OrderBookDepth10
	instrumentStatuses map[mdcat.InstrumentId][]*mdcat.InstrumentStatus
	instrumentCloses   map[mdcat.InstrumentId][]*mdcat.InstrumentClose
	fundingRateUpdates map[mdcat.InstrumentId][]*mdcat.FundingRateUpdate
	markPriceUpdates   map[mdcat.InstrumentId][]*mdcat.MarkPriceUpdate
	indexPriceUpdates  map[mdcat.InstrumentId][]*mdcat.IndexPriceUpdate
	instruments        []mdcat.Instrument
}

func newCollectingVisitor() *collectingVisitor {
	return &collectingVisitor{
		quoteTicks:         make(map[mdcat.InstrumentId][]*mdcat.QuoteTick),
		tradeTicks:         make(map[mdcat.InstrumentId][]*mdcat.TradeTick),
		bars:               make(map[mdcat.InstrumentId][]*mdcat.Bar),
		orderBookDeltas:    make(map[mdcat.InstrumentId][]*mdcat.OrderBookDelta),
		orderBookDepth10s:  make(map[mdcat.InstrumentId][]*mdcat.OrderBookDepth10),
		instrumentStatuses: make(map[mdcat.InstrumentId][]*mdcat.InstrumentStatus),
		instrumentCloses:   make(map[mdcat.InstrumentId][]*mdcat.InstrumentClose),
		fundingRateUpdates: make(map[mdcat.InstrumentId][]*mdcat.FundingRateUpdate),
		markPriceUpdates:   make(map[mdcat.InstrumentId][]*mdcat.MarkPriceUpdate),
		indexPriceUpdates:  make(map[mdcat.InstrumentId][]*mdcat.IndexPriceUpdate),
	}
}

func (c *collectingVisitor) OnQuoteTick(r *mdcat.QuoteTick) error {
	id := r.Header.InstrumentId
	c.quoteTicks[id] = append(c.quoteTicks[id], r)
	return nil
}

func (c *collectingVisitor) OnTradeTick(r *mdcat.TradeTick) error {
	id := r.Header.InstrumentId
	c.tradeTicks[id] = append(c.tradeTicks[id], r)
	return nil
}

func (c *collectingVisitor) OnBar(r *mdcat.Bar) error {
	id := r.Header.InstrumentId
	c.bars[id] = append(c.bars[id], r)
	return nil
}

func (c *collectingVisitor) OnOrderBookDelta(r *mdcat.OrderBookDelta) error {
	id := r.Header.InstrumentId
	c.orderBookDeltas[id] = append(c.orderBookDeltas[id], r)
	return nil
}

func (c *collectingVisitor) OnOrderBookDepth10(r *mdcat.OrderBookDepth10) error {
	id := r.Header.InstrumentId
	c.orderBookDepth10s[id] = append(c.orderBookDepth10s[id], r)
	return nil
}

func (c *collectingVisitor) OnInstrumentStatus(r *mdcat.InstrumentStatus) error {
	id := r.Header.InstrumentId
	c.instrumentStatuses[id] = append(c.instrumentStatuses[id], r)
	return nil
}

func (c *collectingVisitor) OnInstrumentClose(r *mdcat.InstrumentClose) error {
	id := r.Header.InstrumentId
	c.instrumentCloses[id] = append(c.instrumentCloses[id], r)
	return nil
}

func (c *collectingVisitor) OnFundingRateUpdate(r *mdcat.FundingRateUpdate) error {
	id := r.Header.InstrumentId
	c.fundingRateUpdates[id] = append(c.fundingRateUpdates[id], r)
	return nil
}

func (c *collectingVisitor) OnMarkPriceUpdate(r *mdcat.MarkPriceUpdate) error {
	id := r.Header.InstrumentId
	c.markPriceUpdates[id] = append(c.markPriceUpdates[id], r)
	return nil
}

func (c *collectingVisitor) OnIndexPriceUpdate(r *mdcat.IndexPriceUpdate) error {
	id := r.Header.InstrumentId
	c.indexPriceUpdates[id] = append(c.indexPriceUpdates[id], r)
	return nil
}

// OnInstrument buffers an instrument definition for later routing to its
// subtype table. Per spec.md §4.4's "when the parser returns a value
// recognizable as an instrument, the Ingestion Pipeline routes it to the
// instruments partition before any later records from the same chunk
// that reference that instrument", flushAll writes every buffered
// instrument before any time-series group, so a later replay never sees
// a record referencing an instrument id that isn't in the catalog yet.
func (c *collectingVisitor) OnInstrument(instrument mdcat.Instrument) error {
	c.instruments = append(c.instruments, instrument)
	return nil
}

func (c *collectingVisitor) OnStreamEnd() error { return nil }

// count totals every buffered record across all groups and types.
func (c *collectingVisitor) count() int {
	n := 0
	for _, v := range c.quoteTicks {
		n += len(v)
	}
	for _, v := range c.tradeTicks {
		n += len(v)
	}
	for _, v := range c.bars {
		n += len(v)
	}
	for _, v := range c.orderBookDeltas {
		n += len(v)
	}
	for _, v := range c.orderBookDepth10s {
		n += len(v)
	}
	for _, v := range c.instrumentStatuses {
		n += len(v)
	}
	for _, v := range c.instrumentCloses {
		n += len(v)
	}
	for _, v := range c.fundingRateUpdates {
		n += len(v)
	}
	for _, v := range c.markPriceUpdates {
		n += len(v)
	}
	for _, v := range c.indexPriceUpdates {
		n += len(v)
	}
	n += len(c.instruments)
	return n
}

// approxBytes is a rough size estimate for progress logging, not an exact
// serialized size.
func (c *collectingVisitor) approxBytes() int {
	const perRecord = 64
	return c.count() * perRecord
}
