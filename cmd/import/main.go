// Command import loads a sanctoral calendar YAML file into the SQLite
// database.
//
// Usage:
//
//	go run ./cmd/import -yaml data/local-feasts.yaml -db data/churchyear.db
//
// This tool:
// 1. Parses and validates the YAML file
// 2. Creates/opens the SQLite database
// 3. Runs migrations to ensure schema is current
// 4. Inserts all entries in a single transaction
//
// The import is idempotent: entries whose month, day and name already exist
// are skipped. A validation failure aborts before anything is written.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/churchyear/internal/database"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

func main() {
	// Parse command line flags
	yamlPath := flag.String("yaml", "", "Path to sanctoral YAML file (default: built-in TLH calendar)")
	dbPath := flag.String("db", "data/churchyear.db", "Path to SQLite database")
	custom := flag.Bool("custom", false, "Mark imported entries as custom")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Run import
	if err := run(*yamlPath, *dbPath, *custom, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(yamlPath, dbPath string, custom bool, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and validate YAML
	// =========================================================================
	days, err := loadDays(yamlPath, logger)
	if err != nil {
		return err
	}
	if custom {
		for i := range days {
			days[i].IsCustom = true
		}
	}

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Import entries in a transaction
	// =========================================================================
	var stats ImportStats
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		return importDays(ctx, tx, days, logger, &stats)
	})
	if err != nil {
		return fmt.Errorf("import data: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import
	// =========================================================================
	total, err := db.CountSanctoralDays(ctx)
	if err != nil {
		return fmt.Errorf("count sanctoral days: %w", err)
	}

	elapsed := time.Since(startTime)

	logger.Info("import verified",
		slog.Int("sanctoral_days", total),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Entries read:        %d\n", len(days))
	fmt.Printf("Inserted:            %d\n", stats.Inserted)
	fmt.Printf("Already present:     %d\n", stats.Skipped)
	fmt.Printf("Moveable rules:      %d\n", stats.Moveable)
	fmt.Printf("Total in database:   %d\n", total)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

// ImportStats tracks import statistics.
type ImportStats struct {
	Inserted int
	Skipped  int
	Moveable int
}

func loadDays(path string, logger *slog.Logger) ([]sanctoral.Day, error) {
	if path == "" {
		logger.Info("using built-in calendar")
		return sanctoral.Default()
	}

	logger.Info("reading YAML file", slog.String("path", path))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open YAML file: %w", err)
	}
	defer f.Close()

	days, err := sanctoral.LoadYAML(f)
	if err != nil {
		return nil, err
	}
	logger.Info("parsed YAML", slog.Int("entries", len(days)))
	return days, nil
}

// importDays inserts every entry, skipping ones already stored.
func importDays(ctx context.Context, tx *database.Tx, days []sanctoral.Day, logger *slog.Logger, stats *ImportStats) error {
	for i := range days {
		d := &days[i]

		inserted, err := tx.InsertSanctoralDay(ctx, d)
		if err != nil {
			return fmt.Errorf("entry %d (%s): %w", i+1, d.Name, err)
		}

		if inserted {
			stats.Inserted++
			logger.Debug("inserted",
				slog.String("name", d.Name),
				slog.Int("month", d.Month),
				slog.Int("day", d.Day),
			)
		} else {
			stats.Skipped++
		}
		if d.IsMoveable() {
			stats.Moveable++
		}
	}

	return nil
}
