// Copyright (c) 2024 Neomantra Corp

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/query"
)

var (
	catalogRoot   string
	instrumentIds []string
	start         string
	end           string
	raiseOnEmpty  bool
)

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func main() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().StringVarP(&catalogRoot, "catalog", "c", "", "Catalog root directory")
	rootCmd.MarkPersistentFlagRequired("catalog")
	rootCmd.PersistentFlags().StringSliceVarP(&instrumentIds, "instrument", "i", nil, "Instrument id to filter on (repeatable)")
	rootCmd.PersistentFlags().StringVar(&start, "start", "", "ISO-8601 inclusive start bound")
	rootCmd.PersistentFlags().StringVar(&end, "end", "", "ISO-8601 inclusive end bound")
	rootCmd.PersistentFlags().BoolVar(&raiseOnEmpty, "raise-on-empty", false, "Fail instead of printing an empty result")

	requireNoError(rootCmd.Execute())
}

var rootCmd = &cobra.Command{
	Use:   "mdcat-query table",
	Short: "mdcat-query runs a range query over an mdcat catalog table",
	Long:  "mdcat-query runs a range query over an mdcat catalog table, e.g. `mdcat-query quote_tick -i BTC-USDT.BINANCE`",
	Args:  cobra.ExactArgs(1),
	Run:   runQuery,
}

func runQuery(cmd *cobra.Command, args []string) {
	rt, err := mdcat.RecordTypeFromString(args[0])
	requireNoError(err)

	opts := query.Options{RaiseOnEmpty: raiseOnEmpty}
	for _, s := range instrumentIds {
		id, err := mdcat.ParseInstrumentId(strings.TrimSpace(s))
		requireNoError(err)
		opts.InstrumentIds = append(opts.InstrumentIds, id)
	}
	if start != "" {
		requireNoError(opts.WithStartString(start))
	}
	if end != "" {
		requireNoError(opts.WithEndString(end))
	}

	store := catalog.OpenLocal(catalogRoot)
	rows, err := query.Query(store, rt, opts)
	requireNoError(err)

	for _, row := range rows {
		line, err := json.Marshal(row)
		requireNoError(err)
		fmt.Println(string(line))
	}
}
