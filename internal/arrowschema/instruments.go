// Copyright (c) 2024 Neomantra Corp
//
// Parquet GroupNode definitions for the Instrument variant set, one
// schema per mdcat.InstrumentKind. Unlike the time-series schemas in
// schema.go, there is no ts_event/ts_init header: instruments are static
// definitions, not time-series events, so every row carries its
// instrument_id as an ordinary column instead of relying on a
// partition directory to say which instrument a row belongs to (§3's
// "instruments themselves live unpartitioned in a single file per
// subtype").

package arrowschema

import (
	"fmt"

	"github.com/apache/arrow-go/v18/parquet"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/marketcore/mdcat-go"
)

func instrumentIdNode() pqschema.Node {
	return utf8Node("instrument_id")
}

func boolNode(name string) pqschema.Node {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Required, pqschema.NewIntLogicalType(8, false), parquet.Types.Int32, 0, -1))
}

func uint64Node(name string) pqschema.Node {
	return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(
		name, parquet.Repetitions.Required, pqschema.NewIntLogicalType(64, false), parquet.Types.Int64, 0, -1))
}

// ForInstrumentKind returns the Parquet GroupNode for the named
// instrument variant, or an error if there is no schema registered for
// it.
func ForInstrumentKind(kind mdcat.InstrumentKind) (*pqschema.GroupNode, error) {
	switch kind {
	case mdcat.InstrumentKind_CurrencySpot:
		return currencySpotSchema(), nil
	case mdcat.InstrumentKind_CryptoFuture:
		return cryptoFutureSchema(), nil
	case mdcat.InstrumentKind_OptionContract:
		return optionContractSchema(), nil
	case mdcat.InstrumentKind_BettingInstrument:
		return bettingInstrumentSchema(), nil
	case mdcat.InstrumentKind_Equity:
		return equitySchema(), nil
	case mdcat.InstrumentKind_Future:
		return futureSchema(), nil
	default:
		return nil, fmt.Errorf("arrowschema: no schema for instrument kind %s", kind.String())
	}
}

func currencySpotSchema() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		instrumentIdNode(), utf8Node("base_currency"), utf8Node("quote_currency"),
		priceScaleNode("price_precision"), priceScaleNode("size_precision"),
		priceNode("price_increment"), quantityNode("size_increment"),
		quantityNode("min_quantity"), quantityNode("max_quantity"),
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("currency_spot", parquet.Repetitions.Required, fields, -1))
}

func cryptoFutureSchema() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		instrumentIdNode(), utf8Node("underlying_asset"), utf8Node("settlement_asset"),
		boolNode("is_inverse"), uint64Node("expiration"),
		priceScaleNode("price_precision"), priceScaleNode("size_precision"),
		priceNode("price_increment"), quantityNode("size_increment"),
		quantityNode("multiplier_size"), priceNode("maker_fee"), priceNode("taker_fee"),
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("crypto_future", parquet.Repetitions.Required, fields, -1))
}

func optionContractSchema() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		instrumentIdNode(), utf8Node("underlying_id"), boolNode("is_call"),
		priceNode("strike_price"), uint64Node("expiration"),
		priceScaleNode("price_precision"), priceScaleNode("size_precision"),
		priceNode("price_increment"), quantityNode("multiplier_size"),
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("option_contract", parquet.Repetitions.Required, fields, -1))
}

func bettingInstrumentSchema() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		instrumentIdNode(), utf8Node("event_id"), utf8Node("market_id"),
		utf8Node("selection_id"), utf8Node("selection_name"), uint64Node("market_start"),
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("betting_instrument", parquet.Repetitions.Required, fields, -1))
}

func equitySchema() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		instrumentIdNode(), utf8Node("isin"),
		priceScaleNode("price_precision"), priceScaleNode("size_precision"),
		priceNode("price_increment"), quantityNode("lot_size"),
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("equity", parquet.Repetitions.Required, fields, -1))
}

func futureSchema() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		instrumentIdNode(), utf8Node("underlying_asset"), uint64Node("expiration"),
		priceScaleNode("price_precision"), priceNode("price_increment"), quantityNode("multiplier_size"),
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("future", parquet.Repetitions.Required, fields, -1))
}
