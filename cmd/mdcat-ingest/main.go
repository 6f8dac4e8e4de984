// Copyright (c) 2024 Neomantra Corp

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/ingest"
	"github.com/marketcore/mdcat-go/internal/rawfile"
)

var (
	catalogRoot string
	workers     int
	verbose     bool
	format      string
	blockSize   int
	compression string
	csvType     string
)

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func main() {
	cobra.OnInitialize()

	// accept snake_case spellings of the kebab-case flags
	rootCmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVarP(&catalogRoot, "catalog", "c", "", "Catalog root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.MarkPersistentFlagRequired("catalog")

	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of files to ingest concurrently")
	ingestCmd.Flags().StringVarP(&format, "format", "f", "json", "Raw file format: json, csv, or binary")
	ingestCmd.Flags().IntVar(&blockSize, "block-size", 0, "Bytes parsed per chunk (0 uses the reader default)")
	ingestCmd.Flags().StringVar(&compression, "compression", "auto", "Raw input compression: auto|none|gzip|bzip2|zstd")
	ingestCmd.Flags().StringVar(&csvType, "csv-type", "quote_tick", "Record type held by --format csv files")

	rootCmd.AddCommand(validateCmd)

	requireNoError(rootCmd.Execute())
}

var rootCmd = &cobra.Command{
	Use:   "mdcat-ingest",
	Short: "mdcat-ingest loads newline-delimited-JSON, CSV, or fixed-width binary raw files into an mdcat catalog",
	Long:  "mdcat-ingest loads newline-delimited-JSON, CSV, or fixed-width binary raw files into an mdcat catalog",
}

func newParser() (rawfile.Parser, error) {
	switch format {
	case "json":
		return &rawfile.JSONLinesParser{}, nil
	case "binary":
		return &rawfile.BinaryParser{}, nil
	case "csv":
		rt, err := mdcat.RecordTypeFromString(csvType)
		if err != nil {
			return nil, err
		}
		return &rawfile.CSVParser{RecordType: rt, PricePrecision: 9}, nil
	default:
		return nil, fmt.Errorf("unknown --format %q, want json, csv, or binary", format)
	}
}

var ingestCmd = &cobra.Command{
	Use:   "run file...",
	Short: "Parse and partition the given raw files into the catalog",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := catalog.OpenLocal(catalogRoot)
		parser, err := newParser()
		requireNoError(err)

		var executor ingest.Executor
		if workers <= 1 {
			executor = ingest.NewSynchronousExecutor()
		} else {
			executor = ingest.NewThreadPoolExecutor(context.Background(), workers, 1)
		}

		comp, err := mdcat.CompressionFromString(compression)
		requireNoError(err)

		cfg := ingest.Config{CatalogRoot: catalogRoot, BlockSize: blockSize, Compression: comp}
		result, err := ingest.ProcessFiles(context.Background(), cfg, args, parser, store, executor)
		requireNoError(err)

		for file, rows := range result.RowsWritten {
			fmt.Printf("%s: %d rows\n", file, rows)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate table",
	Short: "Compact a table's partitions down to one file per day",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := catalog.OpenLocal(catalogRoot)
		rt, err := mdcat.RecordTypeFromString(args[0])
		requireNoError(err)
		requireNoError(ingest.ValidateTable(store, rt))
	},
}
