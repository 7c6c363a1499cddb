package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/database"
	"github.com/alexivanou/aqimap-api/internal/stats"
)

func main() {
	format := flag.String("format", os.Getenv("OUTPUT_FORMAT"), "Output format: json or text")
	flag.Parse()
	if *format == "" {
		*format = "json"
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DB.IsMemory() {
		// A fresh in-memory database has no tables until migrated
		if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// No search service runs in this process, so suggest stats stay empty
	statistics, err := stats.NewCollector(db, cfg.DB, nil).Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	switch *format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(statistics); err != nil {
			logger.Fatal("Failed to encode statistics", zap.Error(err))
		}
	case "text", "human":
		printText(statistics)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
}

func printText(s *stats.Stats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Collected\t%s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Database\t%s (%s)\n", s.Database.Type, formatBytes(uint64(s.Database.SizeBytes)))
	fmt.Fprintf(w, "Provinces with reading\t%d\n", s.Database.Provinces)
	fmt.Fprintf(w, "Provinces with forecast\t%d\n", s.Database.ForecastProvinces)
	fmt.Fprintf(w, "Rows\t%d\n", s.Database.TotalRecords)
	for _, ts := range s.Database.TableStats {
		fmt.Fprintf(w, "  %s\t%d\n", ts.Name, ts.RowCount)
	}
	fmt.Fprintf(w, "Heap in use\t%s\n", formatBytes(s.Memory.HeapInuse))
	fmt.Fprintf(w, "Goroutines\t%d\n", s.Runtime.NumGoroutines)
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
