// Command churchyear prints the Lutheran church year from the terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/database"
	"github.com/zapponejosh/churchyear/internal/logger"
	"github.com/zapponejosh/churchyear/internal/precedence"
	"github.com/zapponejosh/churchyear/internal/render"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

var version = "0.1.0"

// app holds global flags and lazily opened resources.
type app struct {
	dbPath  string
	noColor bool
	asJSON  bool

	out io.Writer
	now func() time.Time
	log *slog.Logger

	db *database.DB
}

func main() {
	a := &app{
		out: os.Stdout,
		now: time.Now,
		log: logger.New(os.Stderr, "warn", "text"),
	}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "churchyear",
		Short: "Lutheran church year calendar",
		Long: `churchyear computes the historic one-year church calendar of The
Lutheran Hymnal: Easter, the moveable feasts, the seasons and what is
observed on any given day.

Examples:
  churchyear day
  churchyear day 2025-03-25
  churchyear range 2024-03-24 2024-03-31
  churchyear easter --from 2024 --to 2030
  churchyear ics --start 2025-01-01 --end 2025-12-31 -o 2025.ics`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			render.SetNoColor(a.noColor || !stdoutColor(a.out))
			render.SetWidth(stdoutWidth(a.out))
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}
	rootCmd.SetOut(a.out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.dbPath, "db", "", "SQLite database holding the sanctorale (default: built-in calendar)")
	flags.BoolVarP(&a.noColor, "no-color", "N", false, "Disable all color output")
	flags.BoolVar(&a.asJSON, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(easterCmd(a))
	rootCmd.AddCommand(dayCmd(a))
	rootCmd.AddCommand(rangeCmd(a))
	rootCmd.AddCommand(upcomingCmd(a))
	rootCmd.AddCommand(holyDaysCmd(a))
	rootCmd.AddCommand(moveableCmd(a))
	rootCmd.AddCommand(icsCmd(a))
	rootCmd.AddCommand(seedCmd(a))

	return rootCmd
}

func stdoutColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && render.ColorEnabled(f)
}

func stdoutWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		return render.DetectWidth(f)
	}
	return 0
}

// resolver builds a resolver over the database when --db is set and the
// embedded calendar otherwise.
func (a *app) resolver(ctx context.Context) (*precedence.Resolver, error) {
	var lookup sanctoral.Lookup
	if a.dbPath != "" {
		db, err := a.openDB(ctx)
		if err != nil {
			return nil, err
		}
		lookup = db
	} else {
		static, err := sanctoral.DefaultLookup()
		if err != nil {
			return nil, err
		}
		lookup = static
	}
	return precedence.NewResolver(lookup, precedence.Options{Logger: a.log}), nil
}

func (a *app) openDB(ctx context.Context) (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.Open(database.DefaultConfig(a.dbPath), a.log)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

// dateArg parses args[i] as a date, defaulting to today.
func (a *app) dateArg(args []string, i int) (time.Time, error) {
	if len(args) <= i {
		return calendar.Normalize(a.now()), nil
	}
	d, err := calendar.ParseDate(args[i])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[i])
	}
	return d, nil
}

// yearArg parses args[0] as a year, defaulting to the current one.
func (a *app) yearArg(args []string) (int, error) {
	if len(args) == 0 {
		return a.now().Year(), nil
	}
	y, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", args[0])
	}
	return y, nil
}
