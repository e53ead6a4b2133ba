// Command eval-report compares speed estimation logs against the ground
// truth table shipped with the source video and produces comparison charts
// plus an error summary.
//
// Usage:
//
//	eval-report [-out dir] [-db history.db] [-units kmh] log1.log [log2.log ...]
//
// Without -out, an interactive HTML report is produced instead of files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/estimation.report/internal/report"
	"github.com/banshee-data/estimation.report/internal/store"
	"github.com/banshee-data/estimation.report/internal/units"
)

func main() {
	outputDir := flag.String("out", "", "Output directory for charts and summary (empty: interactive display)")
	dbPath := flag.String("db", "", "Optional SQLite file recording evaluation history")
	displayUnits := flag.String("units", units.KMH, "Display units for chart axes")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] log1.log [log2.log ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logs := flag.Args()
	if len(logs) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if !units.IsValid(*displayUnits) {
		log.Fatalf("invalid units %q (valid: %s)", *displayUnits, units.GetValidUnitsString())
	}

	opts := report.Options{
		OutputDir: *outputDir,
		Units:     *displayUnits,
	}

	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}
	if *dbPath != "" {
		s, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open history db: %v", err)
		}
		defer s.Close()
		opts.Store = s
	}

	summary, err := report.Evaluate(logs, opts)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	log.Printf("Evaluated %d runs of video %s", len(summary.Table.RunIDs), summary.VideoID)
	for _, id := range summary.Table.RunIDs {
		log.Printf("  %s: mean error %+.3f over %d windows", id, summary.MeanErrors[id], len(summary.Table.Timestamps))
	}
	if summary.ErrorSummaryCSV != "" {
		log.Printf("Artifacts: %s, %s, %s", summary.EstimationsChart, summary.ErrorChart, summary.ErrorSummaryCSV)
	}
}
