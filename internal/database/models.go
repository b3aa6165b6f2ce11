package database

import (
	"context"
	"fmt"
)

// resolvedRow is the flat shape of a resolved_days row.
type resolvedRow struct {
	Date            string
	PrimaryName     string
	PrimarySource   string
	PrimaryRank     string
	PrimaryProperID string
	Color           string
	Season          string
	WeekOfSeason    int
	Rule            string
	Note            string
	Commemorations  string // JSON array
}

// Stats summarizes what the database holds.
type Stats struct {
	SanctoralDays    int    `json:"sanctoral_days"`
	CustomDays       int    `json:"custom_days"`
	HolyDayYears     int    `json:"holy_day_years"`
	ResolvedDays     int    `json:"resolved_days"`
	EarliestResolved string `json:"earliest_resolved,omitempty"`
	LatestResolved   string `json:"latest_resolved,omitempty"`
}

// GetStats returns row counts for the health endpoint and the CLI.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM sanctoral_days),
			(SELECT COUNT(*) FROM sanctoral_days WHERE is_custom = 1),
			(SELECT COUNT(DISTINCT year) FROM holy_days),
			(SELECT COUNT(*) FROM resolved_days),
			(SELECT COALESCE(MIN(date), '') FROM resolved_days),
			(SELECT COALESCE(MAX(date), '') FROM resolved_days)
	`

	var s Stats
	err := db.QueryRowContext(ctx, query).Scan(
		&s.SanctoralDays,
		&s.CustomDays,
		&s.HolyDayYears,
		&s.ResolvedDays,
		&s.EarliestResolved,
		&s.LatestResolved,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &s, nil
}
