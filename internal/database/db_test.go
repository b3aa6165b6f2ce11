package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/precedence"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

// testDB creates a temporary in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	cfg := Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// seedDefault loads the built-in sanctorale.
func seedDefault(t *testing.T, db *DB) []sanctoral.Day {
	t.Helper()

	days, err := sanctoral.Default()
	if err != nil {
		t.Fatalf("load default sanctorale: %v", err)
	}
	if _, err := db.SeedSanctoral(context.Background(), days); err != nil {
		t.Fatalf("seed sanctorale: %v", err)
	}
	return days
}

func customDay() *sanctoral.Day {
	return &sanctoral.Day{
		Month:    5,
		Day:      9,
		Name:     "Dedication of the Church",
		Rank:     calendar.RankFeast,
		Color:    calendar.ColorWhite,
		IsCustom: true,
		Notes:    "Parish anniversary",
	}
}

// -----------------------------------------------------------------
// DB tests
// -----------------------------------------------------------------

func TestOpen(t *testing.T) {
	db := testDB(t)

	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Running again should be a no-op
	count, err := db.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Migrate() count = %d, want 0 (already applied)", count)
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if version != len(migrationsSQL) {
		t.Errorf("SchemaVersion() = %d, want %d", version, len(migrationsSQL))
	}
}

func TestHealth_SchemaBehind(t *testing.T) {
	db, err := Open(DefaultConfig(":memory:"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if v, err := db.SchemaVersion(ctx); err != nil || v != 0 {
		t.Fatalf("SchemaVersion() = %d, %v, want 0", v, err)
	}
	if err := db.Health(ctx); !errors.Is(err, ErrSchemaBehind) {
		t.Errorf("Health() error = %v, want ErrSchemaBehind", err)
	}
}

func TestWithTx_Rollback(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	boom := errors.New("abort")

	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.InsertSanctoralDay(ctx, customDay()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	n, err := db.CountSanctoralDays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count after rollback = %d, want 0", n)
	}
}

// -----------------------------------------------------------------
// Sanctoral tests
// -----------------------------------------------------------------

func TestSeedSanctoral_Idempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	days := seedDefault(t, db)

	n, err := db.CountSanctoralDays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(days) {
		t.Errorf("count = %d, want %d", n, len(days))
	}

	again, err := db.SeedSanctoral(ctx, days)
	if err != nil {
		t.Fatalf("second SeedSanctoral() error = %v", err)
	}
	if again != 0 {
		t.Errorf("second SeedSanctoral() inserted %d, want 0", again)
	}
}

func TestSeedSanctoral_InvalidRollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	days := []sanctoral.Day{
		*customDay(),
		{Month: 2, Day: 30, Name: "Nowhere", Rank: calendar.RankFeast, Color: calendar.ColorRed},
	}
	if _, err := db.SeedSanctoral(ctx, days); !errors.Is(err, sanctoral.ErrInvalidDay) {
		t.Fatalf("SeedSanctoral() error = %v, want ErrInvalidDay", err)
	}

	n, _ := db.CountSanctoralDays(ctx)
	if n != 0 {
		t.Errorf("count = %d, want 0 after failed seed", n)
	}
}

func TestLookupFixedByMonthDay(t *testing.T) {
	db := testDB(t)
	seedDefault(t, db)
	ctx := context.Background()

	tests := []struct {
		name  string
		month time.Month
		day   int
		want  []string
	}{
		{"fixed entry with its month's moveable entry", time.November, 30, []string{"St. Andrew, Apostle", "Thanksgiving Day (USA)"}},
		{"moveable entry joins its month", time.November, 28, []string{"Thanksgiving Day (USA)"}},
		{"ordered by name", time.November, 1, []string{"All Saints' Day", "Thanksgiving Day (USA)"}},
		{"nothing stored", time.July, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.LookupFixedByMonthDay(ctx, tt.month, tt.day)
			if err != nil {
				t.Fatalf("LookupFixedByMonthDay() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d days, want %d", len(got), len(tt.want))
			}
			for i, d := range got {
				if d.Name != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, d.Name, tt.want[i])
				}
			}
		})
	}
}

func TestCandidates_FiltersMoveable(t *testing.T) {
	db := testDB(t)
	seedDefault(t, db)

	got, err := sanctoral.Candidates(context.Background(), db, calendar.Date(2023, time.November, 30))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "St. Andrew, Apostle" {
		t.Errorf("Candidates(2023-11-30) = %v, want only St. Andrew", got)
	}
}

func TestLookup_MatchesStatic(t *testing.T) {
	db := testDB(t)
	seedDefault(t, db)
	ctx := context.Background()

	static, err := sanctoral.DefaultLookup()
	if err != nil {
		t.Fatal(err)
	}

	for date := calendar.Date(2024, time.January, 1); date.Year() == 2024; date = date.AddDate(0, 0, 1) {
		fromDB, err := sanctoral.Candidates(ctx, db, date)
		if err != nil {
			t.Fatalf("%s: %v", calendar.FormatDate(date), err)
		}
		fromStatic, _ := sanctoral.Candidates(ctx, static, date)

		if len(fromDB) != len(fromStatic) {
			t.Fatalf("%s: db has %d candidates, static has %d", calendar.FormatDate(date), len(fromDB), len(fromStatic))
		}
		for i := range fromDB {
			if fromDB[i].ID != fromStatic[i].ID || fromDB[i].Rank != fromStatic[i].Rank {
				t.Errorf("%s: [%d] db %+v, static %+v", calendar.FormatDate(date), i, fromDB[i], fromStatic[i])
			}
		}
	}
}

func TestCreateSanctoralDay(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	day := customDay()
	if err := db.CreateSanctoralDay(ctx, day); err != nil {
		t.Fatalf("CreateSanctoralDay() error = %v", err)
	}
	if day.ID == "" {
		t.Fatal("CreateSanctoralDay() did not set ID")
	}

	got, err := db.GetSanctoralDay(ctx, day.ID)
	if err != nil {
		t.Fatalf("GetSanctoralDay() error = %v", err)
	}
	if got.Name != day.Name || got.Rank != calendar.RankFeast || got.Color != calendar.ColorWhite {
		t.Errorf("GetSanctoralDay() = %+v", got)
	}
	if !got.IsCustom || got.Notes != "Parish anniversary" {
		t.Errorf("custom fields not stored: %+v", got)
	}

	dup := customDay()
	if err := db.CreateSanctoralDay(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate CreateSanctoralDay() error = %v, want ErrDuplicate", err)
	}
}

func TestCreateSanctoralDay_Invalid(t *testing.T) {
	db := testDB(t)

	day := customDay()
	day.MoveableRule = "first Sunday of June"
	if err := db.CreateSanctoralDay(context.Background(), day); !errors.Is(err, sanctoral.ErrInvalidDay) {
		t.Errorf("CreateSanctoralDay() error = %v, want ErrInvalidDay", err)
	}
}

func TestDeleteSanctoralDay(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	day := customDay()
	if err := db.CreateSanctoralDay(ctx, day); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteSanctoralDay(ctx, day.ID); err != nil {
		t.Fatalf("DeleteSanctoralDay() error = %v", err)
	}
	if _, err := db.GetSanctoralDay(ctx, day.ID); !IsNotFound(err) {
		t.Errorf("GetSanctoralDay() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteSanctoralDay(ctx, day.ID); err != ErrNotFound {
		t.Errorf("second DeleteSanctoralDay() error = %v, want ErrNotFound", err)
	}
}

func TestListSanctoralDays(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	empty, err := db.ListSanctoralDays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListSanctoralDays() on empty db = %v, want empty slice", empty)
	}

	seedDefault(t, db)
	days, err := db.ListSanctoralDays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if days[0].Name != "Circumcision and Name of Jesus" {
		t.Errorf("first = %q, want January 1", days[0].Name)
	}
	if last := days[len(days)-1]; last.Name != "The Holy Innocents" {
		t.Errorf("last = %q, want December 28", last.Name)
	}
}

// -----------------------------------------------------------------
// Snapshot tests
// -----------------------------------------------------------------

func TestHolyDays_SaveAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	days, err := calendar.HolyDaysFor(2025)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SaveHolyDays(ctx, 2025, days); err != nil {
		t.Fatalf("SaveHolyDays() error = %v", err)
	}
	// Saving twice replaces rather than duplicates.
	if err := db.SaveHolyDays(ctx, 2025, days); err != nil {
		t.Fatalf("second SaveHolyDays() error = %v", err)
	}

	got, err := db.GetHolyDays(ctx, 2025)
	if err != nil {
		t.Fatalf("GetHolyDays() error = %v", err)
	}
	if len(got) != len(days) {
		t.Fatalf("got %d holy days, want %d", len(got), len(days))
	}
	for i := range got {
		if got[i].Name != days[i].Name || !got[i].Date.Equal(days[i].Date) || got[i].Type != days[i].Type {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], days[i])
		}
	}

	none, err := db.GetHolyDays(ctx, 2030)
	if err != nil || len(none) != 0 {
		t.Errorf("GetHolyDays(2030) = %v, %v", none, err)
	}
}

func TestResolvedDays_SaveAndGet(t *testing.T) {
	db := testDB(t)
	seedDefault(t, db)
	ctx := context.Background()

	r := precedence.NewResolver(db, precedence.Options{Workers: 2})
	start, end := calendar.Date(2024, time.December, 24), calendar.Date(2024, time.December, 27)
	days, err := r.ResolveRange(ctx, start, end)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SaveResolvedDays(ctx, days); err != nil {
		t.Fatalf("SaveResolvedDays() error = %v", err)
	}
	if err := db.SaveResolvedDays(ctx, days[1:2]); err != nil {
		t.Fatalf("upsert SaveResolvedDays() error = %v", err)
	}

	got, err := db.GetResolvedDays(ctx, start, end)
	if err != nil {
		t.Fatalf("GetResolvedDays() error = %v", err)
	}
	if len(got) != len(days) {
		t.Fatalf("got %d days, want %d", len(got), len(days))
	}

	for i := range got {
		want := days[i]
		if !got[i].Date.Equal(want.Date) || got[i].Primary != want.Primary || got[i].Rule != want.Rule {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want)
		}
		if got[i].Season != want.Season || got[i].Note != want.Note {
			t.Errorf("[%d] season/note = %s/%q, want %s/%q", i, got[i].Season, got[i].Note, want.Season, want.Note)
		}
		if len(got[i].Commemorations) != len(want.Commemorations) {
			t.Errorf("[%d] commemorations = %v, want %v", i, got[i].Commemorations, want.Commemorations)
		}
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ResolvedDays != 4 || stats.EarliestResolved != "2024-12-24" || stats.LatestResolved != "2024-12-27" {
		t.Errorf("GetStats() = %+v", stats)
	}
}
