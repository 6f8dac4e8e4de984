// Copyright (c) 2024 Neomantra Corp

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/relvacode/iso8601"
	"github.com/spf13/cobra"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/codec"
	"github.com/marketcore/mdcat-go/replay"
)

var (
	catalogRoot  string
	readRows     int
	targetBytes  int
	instrumentId string
	start        string
	end          string
)

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func main() {
	cobra.OnInitialize()

	rootCmd.Flags().StringVarP(&catalogRoot, "catalog", "c", "", "Catalog root directory")
	rootCmd.MarkFlagRequired("catalog")
	rootCmd.Flags().IntVar(&readRows, "read-rows", 10_000, "Per-file buffered row target")
	rootCmd.Flags().IntVar(&targetBytes, "target-bytes", 100<<20, "Approximate output batch size in bytes")
	rootCmd.Flags().StringVar(&instrumentId, "instrument", "", "Filter replay to a single instrument id, e.g. BTC-USDT.BINANCE")
	rootCmd.Flags().StringVar(&start, "start", "", "Inclusive lower bound, ISO-8601 UTC")
	rootCmd.Flags().StringVar(&end, "end", "", "Inclusive upper bound, ISO-8601 UTC")

	requireNoError(rootCmd.Execute())
}

var rootCmd = &cobra.Command{
	Use:   "mdcat-replay table file...",
	Short: "mdcat-replay k-way merges partition files into one ts_init-ordered stream",
	Long:  "mdcat-replay k-way merges partition files of the given table into one ts_init-ordered stream, e.g. `mdcat-replay trade_tick data/trade_tick.parquet/instrument_id=EUR-USD.SIM/20240102.parquet ...`",
	Args:  cobra.MinimumNArgs(2),
	Run:   runReplay,
}

func runReplay(cmd *cobra.Command, args []string) {
	rt, err := mdcat.RecordTypeFromString(args[0])
	requireNoError(err)

	var id mdcat.InstrumentId
	if instrumentId != "" {
		id, err = mdcat.ParseInstrumentId(instrumentId)
		requireNoError(err)
	}
	startBound, err := parseBound(start)
	requireNoError(err)
	endBound, err := parseBound(end)
	requireNoError(err)

	configs := make([]replay.FileConfig, 0, len(args)-1)
	for _, path := range args[1:] {
		configs = append(configs, replay.FileConfig{
			Path:         strings.TrimSpace(path),
			InstrumentId: id,
			Start:        startBound,
			End:          endBound,
		})
	}

	store := catalog.OpenLocal(catalogRoot)
	err = runBatchFiles(store, rt, configs, printBatch)
	requireNoError(err)
}

// parseBound parses an ISO-8601 UTC timestamp flag into a nanosecond
// ts_init bound, or returns nil for an unset flag.
func parseBound(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}
	t, err := iso8601.ParseString(s)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	ns := uint64(t.UnixNano())
	return &ns, nil
}

// printBatch is the yield callback given to replay.BatchFiles: each batch
// is printed and discarded as soon as it arrives, so the CLI never holds
// more than one batch of decoded records in memory.
func printBatch(batch []any) error {
	for _, row := range batch {
		line, err := json.Marshal(row)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}
	return nil
}

// runBatchFiles dispatches to the typed replay.BatchFiles instantiation
// for rt, boxing every record as any so yield can be untyped across
// record types.
func runBatchFiles(store *catalog.Store, rt mdcat.RecordType, configs []replay.FileConfig, yield func([]any) error) error {
	switch rt {
	case mdcat.RecordType_QuoteTick:
		return replay.BatchFiles(store, configs, codec.DecodeQuoteTickBatch,
			func(r *mdcat.QuoteTick) uint64 { return r.Header.TsInit },
			func(r *mdcat.QuoteTick) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.QuoteTick) int { return 64 },
			readRows, targetBytes, nil, boxYield[*mdcat.QuoteTick](yield))
	case mdcat.RecordType_TradeTick:
		return replay.BatchFiles(store, configs, codec.DecodeTradeTickBatch,
			func(r *mdcat.TradeTick) uint64 { return r.Header.TsInit },
			func(r *mdcat.TradeTick) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.TradeTick) int { return 64 },
			readRows, targetBytes, nil, boxYield[*mdcat.TradeTick](yield))
	case mdcat.RecordType_Bar:
		return replay.BatchFiles(store, configs, codec.DecodeBarBatch,
			func(r *mdcat.Bar) uint64 { return r.Header.TsInit },
			func(r *mdcat.Bar) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.Bar) int { return 96 },
			readRows, targetBytes, nil, boxYield[*mdcat.Bar](yield))
	case mdcat.RecordType_OrderBookDelta:
		return replay.BatchFiles(store, configs, codec.DecodeOrderBookDeltaBatch,
			func(r *mdcat.OrderBookDelta) uint64 { return r.Header.TsInit },
			func(r *mdcat.OrderBookDelta) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.OrderBookDelta) int { return 64 },
			readRows, targetBytes, nil, boxYield[*mdcat.OrderBookDelta](yield))
	case mdcat.RecordType_OrderBookDepth10:
		return replay.BatchFiles(store, configs, codec.DecodeOrderBookDepth10Batch,
			func(r *mdcat.OrderBookDepth10) uint64 { return r.Header.TsInit },
			func(r *mdcat.OrderBookDepth10) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.OrderBookDepth10) int { return 640 },
			readRows, targetBytes, nil, boxYield[*mdcat.OrderBookDepth10](yield))
	case mdcat.RecordType_InstrumentStatus:
		return replay.BatchFiles(store, configs, codec.DecodeInstrumentStatusBatch,
			func(r *mdcat.InstrumentStatus) uint64 { return r.Header.TsInit },
			func(r *mdcat.InstrumentStatus) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.InstrumentStatus) int { return 32 },
			readRows, targetBytes, nil, boxYield[*mdcat.InstrumentStatus](yield))
	case mdcat.RecordType_InstrumentClose:
		return replay.BatchFiles(store, configs, codec.DecodeInstrumentCloseBatch,
			func(r *mdcat.InstrumentClose) uint64 { return r.Header.TsInit },
			func(r *mdcat.InstrumentClose) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.InstrumentClose) int { return 32 },
			readRows, targetBytes, nil, boxYield[*mdcat.InstrumentClose](yield))
	case mdcat.RecordType_FundingRateUpdate:
		return replay.BatchFiles(store, configs, codec.DecodeFundingRateUpdateBatch,
			func(r *mdcat.FundingRateUpdate) uint64 { return r.Header.TsInit },
			func(r *mdcat.FundingRateUpdate) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.FundingRateUpdate) int { return 32 },
			readRows, targetBytes, nil, boxYield[*mdcat.FundingRateUpdate](yield))
	case mdcat.RecordType_MarkPriceUpdate:
		return replay.BatchFiles(store, configs, codec.DecodeMarkPriceUpdateBatch,
			func(r *mdcat.MarkPriceUpdate) uint64 { return r.Header.TsInit },
			func(r *mdcat.MarkPriceUpdate) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.MarkPriceUpdate) int { return 24 },
			readRows, targetBytes, nil, boxYield[*mdcat.MarkPriceUpdate](yield))
	case mdcat.RecordType_IndexPriceUpdate:
		return replay.BatchFiles(store, configs, codec.DecodeIndexPriceUpdateBatch,
			func(r *mdcat.IndexPriceUpdate) uint64 { return r.Header.TsInit },
			func(r *mdcat.IndexPriceUpdate) mdcat.InstrumentId { return r.Header.InstrumentId },
			func(*mdcat.IndexPriceUpdate) int { return 24 },
			readRows, targetBytes, nil, boxYield[*mdcat.IndexPriceUpdate](yield))
	default:
		return mdcat.ErrSchemaMismatch
	}
}

// boxYield adapts an any-typed yield to the []T signature replay.BatchFiles
// expects for a concrete T, boxing each record as it's handed off.
func boxYield[T any](yield func([]any) error) func([]T) error {
	return func(batch []T) error {
		boxed := make([]any, len(batch))
		for i, r := range batch {
			boxed[i] = r
		}
		return yield(boxed)
	}
}
