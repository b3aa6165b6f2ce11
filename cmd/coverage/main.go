// Command coverage sweeps a running API over whole years and checks every
// resolved day against the local resolver and the calendar invariants.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/precedence"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

// APIResponse matches the API response structure
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type observance struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Rank   string `json:"rank"`
	Color  string `json:"color"`
}

type resolvedDay struct {
	Date           string       `json:"date"`
	Primary        observance   `json:"primary"`
	Commemorations []observance `json:"commemorations"`
	Season         string       `json:"season"`
	Color          string       `json:"color"`
	Rule           string       `json:"rule"`
}

type rangeResponse struct {
	Days []resolvedDay `json:"days"`
}

// TestResult holds the result for a single date
type TestResult struct {
	Date    string `json:"date"`
	Success bool   `json:"success"`
	Season  string `json:"season"`
	Primary string `json:"primary"`
	Rule    string `json:"rule"`
	Error   string `json:"error,omitempty"`
}

// SeasonStats tracks statistics for each season
type SeasonStats struct {
	Season      string   `json:"season"`
	TotalDays   int      `json:"total_days"`
	FailedDays  int      `json:"failed_days"`
	FailedDates []string `json:"failed_dates,omitempty"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	startYear := flag.Int("start", 2024, "Start year")
	years := flag.Int("years", 4, "Number of years to test")
	compare := flag.Bool("compare", true, "Compare against the built-in calendar")
	verbose := flag.Bool("v", false, "Verbose output (show each date)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	endYear := *startYear + *years - 1

	fmt.Println("================================================================")
	fmt.Println("Church Year API - Full Coverage Sweep")
	fmt.Println("================================================================")
	fmt.Printf("Base URL:    %s\n", *baseURL)
	fmt.Printf("Date Range:  %d-01-01 to %d-12-31\n", *startYear, endYear)
	fmt.Println()

	client := &http.Client{Timeout: 30 * time.Second}
	if _, err := client.Get(*baseURL + "/health"); err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}

	var local *precedence.Resolver
	if *compare {
		lookup, err := sanctoral.DefaultLookup()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		local = precedence.NewResolver(lookup, precedence.Options{})
	}

	results, err := sweep(client, *baseURL, local, *startYear, endYear, *verbose)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	bySeason, failures := analyze(results)
	printSummary(results, bySeason, failures)

	if *outputFile != "" {
		saveResults(*outputFile, bySeason, failures)
	}

	if len(failures) > 0 {
		os.Exit(1)
	}
}

// sweep fetches each month of each year in one range request.
func sweep(client *http.Client, baseURL string, local *precedence.Resolver, startYear, endYear int, verbose bool) ([]TestResult, error) {
	var results []TestResult

	for year := startYear; year <= endYear; year++ {
		for month := time.January; month <= time.December; month++ {
			start := calendar.Date(year, month, 1)
			end := start.AddDate(0, 1, -1)

			days, err := fetchRange(client, baseURL, start, end)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", start.Format("2006-01"), err)
			}

			var want []precedence.ResolvedDay
			if local != nil {
				want, err = local.ResolveRange(context.Background(), start, end)
				if err != nil {
					return nil, err
				}
			}

			if len(days) != calendar.DaysBetween(start, end)+1 {
				return nil, fmt.Errorf("%s: got %d days", start.Format("2006-01"), len(days))
			}

			for i, d := range days {
				r := check(d, start.AddDate(0, 0, i))
				if r.Success && want != nil {
					compareLocal(&r, d, want[i])
				}
				results = append(results, r)

				if verbose {
					status := "✓"
					if !r.Success {
						status = "✗"
					}
					fmt.Printf("  %s %s: %s [%s, %s]\n", status, r.Date, r.Primary, r.Season, r.Rule)
				}
			}
		}
		fmt.Printf("  %d done\n", year)
	}

	fmt.Println()
	return results, nil
}

func fetchRange(client *http.Client, baseURL string, start, end time.Time) ([]resolvedDay, error) {
	url := fmt.Sprintf("%s/api/v1/days?start=%s&end=%s", baseURL, calendar.FormatDate(start), calendar.FormatDate(end))
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	var data rangeResponse
	if err := json.Unmarshal(apiResp.Data, &data); err != nil {
		return nil, fmt.Errorf("data parse error: %w", err)
	}
	return data.Days, nil
}

// check applies the invariants that hold for every resolved day.
func check(d resolvedDay, date time.Time) TestResult {
	r := TestResult{
		Date:    d.Date,
		Season:  d.Season,
		Primary: d.Primary.Name,
		Rule:    d.Rule,
	}

	switch {
	case d.Date != calendar.FormatDate(date):
		r.Error = fmt.Sprintf("out of order: expected %s", calendar.FormatDate(date))
	case d.Primary.Name == "":
		r.Error = "no primary observance"
	case d.Color != d.Primary.Color:
		r.Error = fmt.Sprintf("color %s differs from primary color %s", d.Color, d.Primary.Color)
	case d.Season == "holy_week" && d.Primary.Source != string(precedence.SourceTemporal):
		r.Error = "fixed observance won in Holy Week"
	case date.Weekday() == time.Sunday && d.Primary.Source != string(precedence.SourceTemporal) &&
		d.Primary.Rank != "principal_feast":
		r.Error = "Sunday displaced by a non-principal fixed day"
	default:
		r.Success = true
	}
	return r
}

func compareLocal(r *TestResult, got resolvedDay, want precedence.ResolvedDay) {
	if got.Primary.Name != want.Primary.Name {
		r.Success = false
		r.Error = fmt.Sprintf("primary %q, built-in calendar gives %q", got.Primary.Name, want.Primary.Name)
		return
	}
	if got.Rule != want.Rule {
		r.Success = false
		r.Error = fmt.Sprintf("rule %q, built-in calendar gives %q", got.Rule, want.Rule)
	}
}

func analyze(results []TestResult) (map[string]*SeasonStats, []TestResult) {
	bySeason := make(map[string]*SeasonStats)
	var failures []TestResult

	for _, r := range results {
		stats, ok := bySeason[r.Season]
		if !ok {
			stats = &SeasonStats{Season: r.Season}
			bySeason[r.Season] = stats
		}
		stats.TotalDays++

		if !r.Success {
			stats.FailedDays++
			stats.FailedDates = append(stats.FailedDates, r.Date)
			failures = append(failures, r)
		}
	}
	return bySeason, failures
}

func printSummary(results []TestResult, bySeason map[string]*SeasonStats, failures []TestResult) {
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	fmt.Printf("Total Days Tested: %d\n", len(results))
	fmt.Printf("Failed:            %d\n", len(failures))
	fmt.Println()

	seasons := make([]*SeasonStats, 0, len(bySeason))
	for _, s := range bySeason {
		seasons = append(seasons, s)
	}
	sort.Slice(seasons, func(i, j int) bool { return seasons[i].Season < seasons[j].Season })

	fmt.Println("By Season:")
	for _, s := range seasons {
		status := "✓"
		if s.FailedDays > 0 {
			status = "✗"
		}
		fmt.Printf("  %s %-12s %5d days, %d failed\n", status, s.Season, s.TotalDays, s.FailedDays)
	}
	fmt.Println()

	if len(failures) == 0 {
		fmt.Println("No failures!")
		return
	}

	fmt.Println("================================================================")
	fmt.Println("FAILURES (Date | Primary | Error)")
	fmt.Println("================================================================")
	for i, f := range failures {
		if i == 50 {
			fmt.Printf("  ... and %d more\n", len(failures)-50)
			break
		}
		fmt.Printf("  %s | %s | %s\n", f.Date, f.Primary, f.Error)
	}
	fmt.Println()
}

func saveResults(filename string, bySeason map[string]*SeasonStats, failures []TestResult) {
	output := struct {
		GeneratedAt string                  `json:"generated_at"`
		BySeason    map[string]*SeasonStats `json:"by_season"`
		Failures    []TestResult            `json:"failures"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		BySeason:    bySeason,
		Failures:    failures,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		return
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		fmt.Printf("Error writing file: %v\n", err)
		return
	}

	fmt.Printf("Results saved to: %s\n", filename)
}
