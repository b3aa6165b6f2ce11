package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/ics"
	"github.com/zapponejosh/churchyear/internal/render"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

func easterCmd(a *app) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "easter [year]",
		Short: "Show the date of Easter",
		Long: `Show the date of Easter for one year or a range of years.

Example:
  churchyear easter 2025
  churchyear easter --from 2024 --to 2030`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := a.yearArg(args)
			if err != nil {
				return err
			}

			first, last := year, year
			if cmd.Flags().Changed("from") {
				first, last = from, from
			}
			if cmd.Flags().Changed("to") {
				last = to
			}

			dates, err := calendar.CalculateEasterRange(first, last)
			if err != nil {
				return err
			}

			if a.asJSON {
				out := make(map[string]string, len(dates))
				for y, d := range dates {
					out[fmt.Sprint(y)] = calendar.FormatDate(d)
				}
				return a.printJSON(out)
			}
			a.println(render.Easter(dates))
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "First year of the range")
	cmd.Flags().IntVar(&to, "to", 0, "Last year of the range")
	return cmd
}

func dayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Show what is observed on a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := a.dateArg(args, 0)
			if err != nil {
				return err
			}

			r, err := a.resolver(cmd.Context())
			if err != nil {
				return err
			}
			day, err := r.ResolveDate(cmd.Context(), date)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(day)
			}
			a.println(render.Day(day))
			return nil
		},
	}
}

func rangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "range <start> <end>",
		Short: "Show every day in an inclusive date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := a.dateArg(args, 0)
			if err != nil {
				return err
			}
			end, err := a.dateArg(args, 1)
			if err != nil {
				return err
			}

			r, err := a.resolver(cmd.Context())
			if err != nil {
				return err
			}
			days, err := r.ResolveRange(cmd.Context(), start, end)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(days)
			}
			a.println(render.Days(days))
			return nil
		},
	}
}

func upcomingCmd(a *app) *cobra.Command {
	var (
		fromStr string
		count   int
	)

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the next feasts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dateArgs []string
			if fromStr != "" {
				dateArgs = []string{fromStr}
			}
			from, err := a.dateArg(dateArgs, 0)
			if err != nil {
				return err
			}

			r, err := a.resolver(cmd.Context())
			if err != nil {
				return err
			}
			feasts, err := r.UpcomingFeasts(cmd.Context(), from, count)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(feasts)
			}
			if len(feasts) == 0 {
				a.println("No feasts found.")
				return nil
			}
			a.println(render.Days(feasts))
			return nil
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "Start date YYYY-MM-DD (default today)")
	cmd.Flags().IntVarP(&count, "count", "c", 5, "Number of feasts")
	return cmd
}

func holyDaysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "holy-days [year]",
		Short: "List the canonical holy days of a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := a.yearArg(args)
			if err != nil {
				return err
			}
			days, err := calendar.HolyDaysFor(year)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(days)
			}
			a.println(render.HolyDays(days))
			return nil
		},
	}
}

func moveableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "moveable [year]",
		Short: "List the Easter-relative feasts of a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := a.yearArg(args)
			if err != nil {
				return err
			}
			dates, err := calendar.AllMoveableFeasts(year)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(dates)
			}
			a.println(render.MoveableFeasts(dates))
			return nil
		},
	}
}

func icsCmd(a *app) *cobra.Command {
	var (
		startStr, endStr string
		output           string
		feastsOnly       bool
	)

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export a date range as an iCalendar file",
		Long: `Export resolved days as all-day iCalendar events.

Example:
  churchyear ics --start 2025-01-01 --end 2025-12-31 -o 2025.ics
  churchyear ics --start 2025-01-01 --end 2025-12-31 --feasts-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if startStr == "" || endStr == "" {
				return fmt.Errorf("--start and --end flags are required")
			}
			start, err := a.dateArg([]string{startStr}, 0)
			if err != nil {
				return err
			}
			end, err := a.dateArg([]string{endStr}, 0)
			if err != nil {
				return err
			}

			r, err := a.resolver(cmd.Context())
			if err != nil {
				return err
			}
			days, err := r.ResolveRange(cmd.Context(), start, end)
			if err != nil {
				return err
			}

			opts := ics.Options{FeastsOnly: feastsOnly, Stamp: a.now()}
			if output == "" || output == "-" {
				return ics.Write(a.out, days, opts)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := ics.Write(f, days, opts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d days to %s\n", len(days), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&startStr, "start", "", "First date YYYY-MM-DD")
	cmd.Flags().StringVar(&endStr, "end", "", "Last date YYYY-MM-DD")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&feastsOnly, "feasts-only", false, "Only include days ranked Feast or higher")
	return cmd
}

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in sanctorale into the --db database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.dbPath == "" {
				return fmt.Errorf("--db flag is required")
			}
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}

			days, err := sanctoral.Default()
			if err != nil {
				return err
			}
			n, err := db.SeedSanctoral(cmd.Context(), days)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Seeded %d of %d entries into %s\n", n, len(days), a.dbPath)
			return nil
		},
	}
}
