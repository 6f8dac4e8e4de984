// Copyright (c) 2024 Neomantra Corp
//
// Parquet GroupNode definitions for the catalog's record set, one schema
// per mdcat.RecordType. Prices and quantities are stored as their raw
// fixed-point int64/uint64 plus a sibling precision column rather than as
// float64, so a round-trip through the catalog never rounds a price.
//
// Adapted from dbn-go's internal/file/parquet_writer.go
// ParquetGroupNode_* family, generalized from one schema per wire-format
// message to one schema per catalog record type.

package arrowschema

import (
	"fmt"

	"github.com/apache/arrow-go/v18/parquet"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/marketcore/mdcat-go"
)

// headerFields carries the per-row instrument id alongside the two catalog
// timestamps. The partition directory already names the instrument, but a
// file must stay self-describing: a replay config may point at a file
// directly (no partition context), and a compacted multi-instrument file
// could not otherwise reattach ids on decode.
func headerFields() pqschema.FieldList {
	return pqschema.FieldList{
		utf8Node("instrument_id"),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
			"ts_event", parquet.Repetitions.Required, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitNanos), parquet.Types.Int64, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
			"ts_init", parquet.Repetitions.Required, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitNanos), parquet.Types.Int64, 0, -1)),
	}
}

func priceNode(name string) pqschema.Node {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Required, pqschema.NewIntLogicalType(64, true), parquet.Types.Int64, 0, -1))
}

func priceScaleNode(name string) pqschema.Node {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Required, pqschema.NewIntLogicalType(8, false), parquet.Types.Int32, 0, -1))
}

func quantityNode(name string) pqschema.Node {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Required, pqschema.NewIntLogicalType(64, false), parquet.Types.Int64, 0, -1))
}

func uint32Node(name string) pqschema.Node {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Required, pqschema.NewIntLogicalType(32, false), parquet.Types.Int32, 0, -1))
}

func uint8Node(name string) pqschema.Node {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Required, pqschema.NewIntLogicalType(8, false), parquet.Types.Int32, 0, -1))
}

func utf8Node(name string) pqschema.Node {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted(
		name, parquet.Repetitions.Required, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1))
}

///////////////////////////////////////////////////////////////////////////////

// ForRecordType returns the Parquet GroupNode for the named record type, or
// an error if there is no schema registered for it.
func ForRecordType(rt mdcat.RecordType) (*pqschema.GroupNode, error) {
	switch rt {
	case mdcat.RecordType_QuoteTick:
		return quoteTickSchema(), nil
	case mdcat.RecordType_TradeTick:
		return tradeTickSchema(), nil
	case mdcat.RecordType_Bar:
		return barSchema(), nil
	case mdcat.RecordType_OrderBookDelta:
		return orderBookDeltaSchema(), nil
	case mdcat.RecordType_OrderBookDepth10:
		return orderBookDepth10Schema(), nil
	case mdcat.RecordType_InstrumentStatus:
		return instrumentStatusSchema(), nil
	case mdcat.RecordType_InstrumentClose:
		return instrumentCloseSchema(), nil
	case mdcat.RecordType_FundingRateUpdate:
		return fundingRateUpdateSchema(), nil
	case mdcat.RecordType_MarkPriceUpdate:
		return markPriceUpdateSchema(), nil
	case mdcat.RecordType_IndexPriceUpdate:
		return indexPriceUpdateSchema(), nil
	default:
		return nil, fmt.Errorf("arrowschema: no schema for record type %s", rt.String())
	}
}

func quoteTickSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields,
		priceNode("bid_price"), priceNode("ask_price"), priceScaleNode("price_precision"),
		quantityNode("bid_size"), quantityNode("ask_size"), uint8Node("size_precision"))
	return pqschema.MustGroup(pqschema.NewGroupNode("quote_tick", parquet.Repetitions.Required, fields, -1))
}

func tradeTickSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields,
		priceNode("price"), priceScaleNode("price_precision"), quantityNode("size"),
		uint8Node("size_precision"), uint8Node("aggressor_side"), utf8Node("trade_id"))
	return pqschema.MustGroup(pqschema.NewGroupNode("trade_tick", parquet.Repetitions.Required, fields, -1))
}

func barSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields,
		utf8Node("bar_type"),
		priceNode("open"), priceNode("high"), priceNode("low"), priceNode("close"),
		priceScaleNode("price_precision"), quantityNode("volume"), uint8Node("size_precision"))
	return pqschema.MustGroup(pqschema.NewGroupNode("bar", parquet.Repetitions.Required, fields, -1))
}

func orderBookDeltaSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields,
		uint8Node("action"), uint8Node("side"),
		priceNode("price"), priceScaleNode("price_precision"), quantityNode("size"),
		uint8Node("size_precision"), quantityNode("order_id"), uint8Node("flags"), uint32Node("sequence"))
	return pqschema.MustGroup(pqschema.NewGroupNode("order_book_delta", parquet.Repetitions.Required, fields, -1))
}

// orderBookDepth10Schema flattens the fixed 10x2 levels into 60 columns
// (bid/ask price, size, count per level), mirroring how Databento's own
// MBP-10 schema lays out levels as repeated scalar fields rather than a
// nested list, which keeps the column pruning cheap for depth-limited
// queries that only want the top few levels.
func orderBookDepth10Schema() *pqschema.GroupNode {
	fields := headerFields()
	for side := 0; side < 2; side++ {
		prefix := "bid"
		if side == 1 {
			prefix = "ask"
		}
		for level := 0; level < 10; level++ {
			fields = append(fields,
				priceNode(fmt.Sprintf("%s_price_%02d", prefix, level)),
				quantityNode(fmt.Sprintf("%s_size_%02d", prefix, level)),
				uint32Node(fmt.Sprintf("%s_count_%02d", prefix, level)))
		}
	}
	fields = append(fields, priceScaleNode("price_precision"), uint8Node("size_precision"), uint8Node("flags"), uint32Node("sequence"))
	return pqschema.MustGroup(pqschema.NewGroupNode("order_book_depth10", parquet.Repetitions.Required, fields, -1))
}

func instrumentStatusSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields, uint8Node("action"), uint32Node("reason"))
	return pqschema.MustGroup(pqschema.NewGroupNode("instrument_status", parquet.Repetitions.Required, fields, -1))
}

func instrumentCloseSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields, priceNode("close_price"), priceScaleNode("price_precision"))
	return pqschema.MustGroup(pqschema.NewGroupNode("instrument_close", parquet.Repetitions.Required, fields, -1))
}

func fundingRateUpdateSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields, priceNode("rate"), priceScaleNode("price_precision"),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
			"next_funding_ns", parquet.Repetitions.Required, pqschema.NewIntLogicalType(64, false), parquet.Types.Int64, 0, -1)))
	return pqschema.MustGroup(pqschema.NewGroupNode("funding_rate_update", parquet.Repetitions.Required, fields, -1))
}

func markPriceUpdateSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields, priceNode("value"), priceScaleNode("price_precision"))
	return pqschema.MustGroup(pqschema.NewGroupNode("mark_price_update", parquet.Repetitions.Required, fields, -1))
}

func indexPriceUpdateSchema() *pqschema.GroupNode {
	fields := headerFields()
	fields = append(fields, priceNode("value"), priceScaleNode("price_precision"))
	return pqschema.MustGroup(pqschema.NewGroupNode("index_price_update", parquet.Repetitions.Required, fields, -1))
}
