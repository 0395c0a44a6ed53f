package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/pipeline"
)

// batchOutcome is one report's row in the closing summary table.
type batchOutcome struct {
	File           string
	Company        string
	RevenueM       float64
	Recommendation string
	ImpliedPrice   float64
	Err            error
}

// reportExts are the filename extensions the ingest layer understands.
var reportExts = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".html": true, ".htm": true,
}

func main() {
	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env not found, using environment variables")
	}

	dir := flag.String("dir", "", "directory of financial reports to analyze")
	concurrency := flag.Int("concurrency", 4, "number of reports analyzed in parallel")
	years := flag.Int("years", 3, "forecast horizon in years")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		log.Fatal("Error: -dir is required.")
	}
	if *concurrency < 1 {
		*concurrency = 1
	}

	cfg, err := config.Load(os.Getenv("ANALYZER_CONFIG"))
	if err != nil {
		log.Printf("Warning: analyzer config not loaded: %v", err)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Error reading %s: %v", *dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !reportExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(*dir, e.Name()))
	}
	if len(files) == 0 {
		log.Fatalf("Error: no reports found in %s", *dir)
	}

	fmt.Printf("Analyzing %d reports with %d workers (%d-year forecasts)...\n", len(files), *concurrency, *years)
	start := time.Now()

	orch := pipeline.New(cfg)
	outcomes := make([]batchOutcome, len(files))

	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)
	for i, path := range files {
		g.Go(func() error {
			out := batchOutcome{File: filepath.Base(path)}
			res, runErr := orch.Run(gctx, path, pipeline.Options{Years: *years})
			if runErr != nil {
				// One bad filing never stops the batch.
				out.Err = runErr
				outcomes[i] = out
				return nil
			}
			m := res.Model
			out.Company = m.CompanyName
			if is := m.LastHistoricalIncome(); is != nil && is.Revenue != nil {
				out.RevenueM = *is.Revenue / 1e6
			}
			out.Recommendation = string(m.Recommendation)
			if m.DCFValuation != nil {
				out.ImpliedPrice = m.DCFValuation.ImpliedPricePerShare
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("Warning: batch interrupted: %v", err)
	}

	fmt.Println("\nBATCH SUMMARY")
	fmt.Printf("%-20s | %-28s | %12s | %-8s | %12s\n", "File", "Company", "Revenue (M)", "Rating", "Implied ($)")
	fmt.Println(strings.Repeat("-", 92))
	succeeded := 0
	for _, out := range outcomes {
		if out.Err != nil {
			fmt.Printf("%-20s | FAILED: %v\n", out.File, out.Err)
			continue
		}
		succeeded++
		fmt.Printf("%-20s | %-28s | $ %10.0f | %-8s | $ %10.2f\n",
			out.File, out.Company, out.RevenueM, out.Recommendation, out.ImpliedPrice)
	}
	fmt.Println(strings.Repeat("-", 92))
	fmt.Printf("\n[Done] %d/%d analyses succeeded in %s.\n",
		succeeded, len(outcomes), time.Since(start).Round(time.Millisecond))
}
