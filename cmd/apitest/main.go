// Command apitest runs a smoke suite against a running church year API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Observance struct {
	Name string `json:"name"`
	Rank string `json:"rank"`
}

// ResolvedDay is the response for /days/{date} and /days/today
type ResolvedDay struct {
	Date           string       `json:"date"`
	Primary        Observance   `json:"primary"`
	Commemorations []Observance `json:"commemorations"`
	Season         string       `json:"season"`
	Color          string       `json:"color"`
	Rule           string       `json:"rule"`
	Note           string       `json:"note"`
}

// RangeResponse is the response for /days?start=&end=
type RangeResponse struct {
	Start string        `json:"start"`
	End   string        `json:"end"`
	Days  []ResolvedDay `json:"days"`
}

type EasterDate struct {
	Year int    `json:"year"`
	Date string `json:"date"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status    string `json:"status"`
	Sanctoral string `json:"sanctoral"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Church Year API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	tr.testHealth()
	tr.testToday()
	tr.testSpecificDates()
	tr.testDateRange()
	tr.testEaster()
	tr.testCalendarExport()
	tr.testEdgeCases()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getData("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (sanctorale: %s)", health.Sanctoral))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testToday() {
	tr.printSection("Today")

	var day ResolvedDay
	if err := tr.getData("/api/v1/days/today", &day); err != nil {
		tr.recordError("Today", err.Error())
		return
	}

	tr.recordSuccess(fmt.Sprintf("Today (%s): %s [%s, %s]", day.Date, day.Primary.Name, day.Season, day.Color))
	tr.printDayDetail(day)
}

func (tr *TestRunner) testSpecificDates() {
	tr.printSection("Specific Date Tests")

	testCases := []struct {
		date        string
		primary     string
		rule        string
		description string
	}{
		{"2024-12-01", "Advent 1", "sunday", "First Sunday in Advent 2024"},
		{"2024-12-25", "Christmas Day", "both-principal", "Christmas Day"},
		{"2024-12-26", "St. Stephen, Martyr", "weekday", "St. Stephen"},
		{"2025-01-06", "Epiphany", "both-principal", "Epiphany"},
		{"2025-03-05", "Ash Wednesday", "", "Ash Wednesday 2025"},
		{"2025-03-25", "The Annunciation", "weekday", "Annunciation on a Lent weekday"},
		{"2024-03-25", "Holy Week - Monday", "holy-week", "Annunciation displaced by Holy Week"},
		{"2025-04-18", "Good Friday", "holy-week", "Good Friday 2025"},
		{"2025-04-20", "Easter Sunday", "moveable-principal", "Easter Sunday 2025"},
		{"2025-06-08", "Pentecost", "", "Pentecost 2025"},
		{"2025-06-15", "Trinity Sunday", "", "Trinity Sunday 2025"},
		{"2023-11-30", "St. Andrew, Apostle", "weekday", "Apostle on a weekday"},
		{"2021-10-31", "Trinity 22", "moveable-default", "Reformation Day on a Sunday"},
	}

	for _, tc := range testCases {
		var day ResolvedDay
		if err := tr.getData("/api/v1/days/"+tc.date, &day); err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		switch {
		case !strings.HasPrefix(day.Primary.Name, tc.primary):
			tr.recordError(tc.date, fmt.Sprintf("Expected primary '%s', got '%s'", tc.primary, day.Primary.Name))
		case tc.rule != "" && day.Rule != tc.rule:
			tr.recordError(tc.date, fmt.Sprintf("Expected rule '%s', got '%s'", tc.rule, day.Rule))
		default:
			tr.recordSuccess(fmt.Sprintf("%s: %s (%s)", tc.date, day.Primary.Name, tc.description))
		}

		if tr.verbose {
			tr.printDayDetail(day)
		}
	}
}

func (tr *TestRunner) testDateRange() {
	tr.printSection("Date Range Tests")

	var rangeData RangeResponse
	if err := tr.getData("/api/v1/days?start=2025-04-13&end=2025-04-20", &rangeData); err != nil {
		tr.recordError("Range (Holy Week)", err.Error())
	} else if len(rangeData.Days) == 8 && rangeData.Days[7].Primary.Name == "Easter Sunday" {
		tr.recordSuccess(fmt.Sprintf("Holy Week range returned %d days ending at Easter", len(rangeData.Days)))
	} else {
		tr.recordError("Range (Holy Week)", fmt.Sprintf("Expected 8 days ending at Easter, got %d", len(rangeData.Days)))
	}

	tr.expectStatus("Range limit enforced", "/api/v1/days?start=2024-01-01&end=2026-01-01", http.StatusBadRequest)
	tr.expectStatus("Invalid range rejected (end before start)", "/api/v1/days?start=2025-12-31&end=2025-01-01", http.StatusBadRequest)
}

func (tr *TestRunner) testEaster() {
	tr.printSection("Easter")

	var dates []EasterDate
	if err := tr.getData("/api/v1/easter?start=2024&end=2026", &dates); err != nil {
		tr.recordError("Easter", err.Error())
		return
	}

	want := map[int]string{2024: "2024-03-31", 2025: "2025-04-20", 2026: "2026-04-05"}
	for _, d := range dates {
		if want[d.Year] == d.Date {
			tr.recordSuccess(fmt.Sprintf("Easter %d: %s", d.Year, d.Date))
		} else {
			tr.recordError(fmt.Sprintf("Easter %d", d.Year), fmt.Sprintf("Expected %s, got %s", want[d.Year], d.Date))
		}
	}
}

func (tr *TestRunner) testCalendarExport() {
	tr.printSection("iCalendar Export")

	resp, err := tr.getRaw("/api/v1/calendar.ics?start=2025-04-13&end=2025-04-20")
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode != http.StatusOK:
		tr.recordError("ICS", fmt.Sprintf("HTTP %d", resp.StatusCode))
	case strings.Count(string(body), "BEGIN:VEVENT") != 8:
		tr.recordError("ICS", fmt.Sprintf("Expected 8 events, got %d", strings.Count(string(body), "BEGIN:VEVENT")))
	default:
		tr.recordSuccess("ICS export returned 8 all-day events")
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	tr.expectStatus("Invalid date format rejected", "/api/v1/days/invalid", http.StatusBadRequest)
	tr.expectStatus("Pre-Gregorian year rejected", "/api/v1/days/1500-04-01", http.StatusBadRequest)
	tr.expectStatus("Missing end parameter rejected", "/api/v1/days?start=2025-01-01", http.StatusBadRequest)
	tr.expectStatus("Upcoming count bounded", "/api/v1/feasts/upcoming?count=1000", http.StatusBadRequest)

	var day ResolvedDay
	if err := tr.getData("/api/v1/days/2024-02-29", &day); err != nil {
		tr.recordError("Leap year", err.Error())
	} else {
		tr.recordSuccess(fmt.Sprintf("Leap year date (2024-02-29): %s", day.Primary.Name))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) getData(path string, target interface{}) error {
	resp, err := tr.getRaw(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return fmt.Errorf("API error: %s", errMsg)
	}

	return json.Unmarshal(apiResp.Data, target)
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	return tr.client.Get(tr.baseURL + path)
}

func (tr *TestRunner) expectStatus(name, path string, status int) {
	resp, err := tr.getRaw(path)
	if err != nil {
		tr.recordError(name, err.Error())
		return
	}
	resp.Body.Close()

	if resp.StatusCode == status {
		tr.recordSuccess(name)
	} else {
		tr.recordError(name, fmt.Sprintf("Expected HTTP %d, got %d", status, resp.StatusCode))
	}
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printDayDetail(d ResolvedDay) {
	fmt.Printf("    Rank: %s, Rule: %s\n", d.Primary.Rank, d.Rule)
	for _, c := range d.Commemorations {
		fmt.Printf("    Commemorate: %s (%s)\n", c.Name, c.Rank)
	}
	if d.Note != "" {
		fmt.Printf("    Note: %s\n", d.Note)
	}
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
		return
	}
	fmt.Println("All tests passed! ✓")
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output (show commemorations and notes)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	if _, err := client.Get(*baseURL + "/health"); err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}

	runner := NewTestRunner(*baseURL, *verbose)
	runner.Run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
