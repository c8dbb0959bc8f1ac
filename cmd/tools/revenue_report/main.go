// revenue_report runs one revenue report against the configured data source
// and writes it as JSON or CSV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/services"
	"github.com/airopshq/airops/internal/storage/driver"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	periods := flag.Int("periods", 0, "Number of trailing months (0 = configured default)")
	airlineID := flag.Int64("airline", 0, "Restrict to one airline ID (0 = all)")
	method := flag.String("method", "", "Forecast method (linear, seasonal)")
	ahead := flag.Int("ahead", 1, "Months to forecast")
	format := flag.String("format", "json", "Output format: json or csv")
	output := flag.String("output", "", "Output file (default stdout)")
	flag.Parse()

	if *format != "json" && *format != "csv" {
		log.Fatalf("Error: -format must be json or csv, got %q", *format)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error: load config: %v", err)
	}

	logger, err := logging.NewFromConfig(config.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     "console",
		OutputPath: "stderr",
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		log.Fatalf("Error: init logger: %v", err)
	}

	ctx := context.Background()
	source, err := driver.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Error: open data source: %v", err)
	}
	defer func() { _ = source.Close() }()

	svc := services.NewAnalyticsService(logger, source, nil, nil, services.AnalyticsServiceConfig{
		Analytics:    cfg.Analytics,
		QueryTimeout: cfg.Database.QueryTimeout,
	})

	resp, err := svc.RevenueReport(ctx, services.RevenueReportRequest{
		Periods:      *periods,
		AirlineID:    *airlineID,
		Method:       *method,
		PeriodsAhead: *ahead,
	})
	if err != nil {
		log.Fatalf("Error: revenue report: %v", err)
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Error: create output: %v", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := write(w, *format, resp); err != nil {
		log.Fatalf("Error: write report: %v", err)
	}

	if *output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d periods to %s\n", len(resp.Series), *output)
	}
}

func write(w io.Writer, format string, resp *services.RevenueReportResponse) error {
	if format == "csv" {
		return services.WriteRevenueCSV(w, resp)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
