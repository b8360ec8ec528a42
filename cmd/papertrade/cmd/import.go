package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantor/papertrade/config"
	"github.com/quantor/papertrade/indicators"
	"github.com/quantor/papertrade/internal/logging"
	"github.com/quantor/papertrade/market"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load daily bars from a CSV file into the store",
	Long: `Import daily history so backtests can run against it.

The CSV columns are:
  symbol,date,open,high,low,close,volume[,ma5,ma10,ma20]

with dates formatted YYYY-MM-DD. A header row is detected and skipped.

Example:
  papertrade import -c config.yaml --file bars.csv`,
	RunE: runImport,
}

var (
	importConfigPath string
	importFile       string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importConfigPath, "config", "c", "papertrade.yaml", "path to config file")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to bar CSV (required)")
	importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(importConfigPath)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, cfg.Log.Level)

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	f, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	bars, err := readBarCSV(f)
	if err != nil {
		return err
	}
	fillMissingAverages(bars)

	if err := st.SaveBars(bars); err != nil {
		return fmt.Errorf("save bars: %w", err)
	}
	if err := st.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Info("bars imported", "file", importFile, "rows", len(bars))
	fmt.Printf("Imported %d bars from %s\n", len(bars), importFile)
	return nil
}

// fillMissingAverages computes MA5/MA10/MA20 per symbol for rows that came
// in without them.
func fillMissingAverages(bars []market.Bar) {
	bySymbol := make(map[string][]int)
	for i, b := range bars {
		bySymbol[b.Symbol] = append(bySymbol[b.Symbol], i)
	}
	for _, idxs := range bySymbol {
		group := make([]market.Bar, len(idxs))
		for j, i := range idxs {
			group[j] = bars[i]
		}
		sort.Slice(group, func(a, b int) bool { return group[a].Date.Before(group[b].Date) })
		indicators.FillMovingAverages(group)
		for j, i := range idxs {
			bars[i] = group[j]
		}
	}
}

func readBarCSV(r io.Reader) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []market.Bar
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++

		if len(record) < 7 {
			return nil, fmt.Errorf("line %d: expected at least 7 columns, got %d", line, len(record))
		}

		// Header row: the date column does not parse.
		date, err := time.Parse("2006-01-02", record[1])
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: bad date %q", line, record[1])
		}

		bar := market.Bar{Symbol: record[0], Date: date}
		floats := []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close}
		for i, dst := range floats {
			v, err := strconv.ParseFloat(record[2+i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad value %q", line, record[2+i])
			}
			*dst = v
		}
		vol, err := strconv.ParseInt(record[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad volume %q", line, record[6])
		}
		bar.Volume = vol

		if len(record) >= 10 {
			mas := []*float64{&bar.MA5, &bar.MA10, &bar.MA20}
			for i, dst := range mas {
				v, err := strconv.ParseFloat(record[7+i], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad moving average %q", line, record[7+i])
				}
				*dst = v
			}
		}

		bars = append(bars, bar)
	}
	return bars, nil
}
