package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/config"
	"github.com/zapponejosh/churchyear/internal/database"
	"github.com/zapponejosh/churchyear/internal/ics"
	"github.com/zapponejosh/churchyear/internal/logger"
	"github.com/zapponejosh/churchyear/internal/precedence"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
	"github.com/zapponejosh/churchyear/internal/scheduler"
)

const (
	defaultUpcoming = 5
	maxUpcoming     = 100
	maxEasterYears  = 1000
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db       *database.DB // nil when the sanctorale is built in
	builtin  *sanctoral.Static
	resolver *precedence.Resolver
	snap     *scheduler.Snapshotter
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance. With a nil db, or when the
// config selects the builtin source, fixed days come from the embedded
// calendar and the write endpoints are unavailable.
func NewHandlers(db *database.DB, cfg *config.Config, log *slog.Logger) (*Handlers, error) {
	h := &Handlers{
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}

	var lookup sanctoral.Lookup
	if db != nil && cfg.UsesDatabase() {
		h.db = db
		lookup = db
	} else {
		static, err := sanctoral.DefaultLookup()
		if err != nil {
			return nil, fmt.Errorf("load builtin sanctorale: %w", err)
		}
		h.builtin = static
		lookup = static
	}

	h.resolver = precedence.NewResolver(lookup, precedence.Options{
		Workers: cfg.ResolveWorkers,
		Logger:  log,
	})
	if h.db != nil {
		h.snap = scheduler.NewSnapshotter(h.db, h.resolver, cfg.SnapshotYearsAhead, log)
	}
	return h, nil
}

// Resolver exposes the resolver so the server can share it with the
// snapshot schedule.
func (h *Handlers) Resolver() *precedence.Resolver {
	return h.resolver
}

// Snapshotter returns the snapshot job, or nil without a database.
func (h *Handlers) Snapshotter() *scheduler.Snapshotter {
	return h.snap
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db == nil {
		WriteSuccess(w, map[string]string{
			"status":    "healthy",
			"sanctoral": config.SourceBuiltin,
		})
		return
	}

	if err := h.db.Health(ctx); err != nil {
		logger.Warn(ctx, "health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	stats, err := h.db.GetStats(ctx)
	if err != nil {
		logger.Error(ctx, "failed to get stats", err)
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"status":    "healthy",
		"sanctoral": config.SourceDatabase,
		"stats":     stats,
	})
}

// GetToday handles GET /api/v1/days/today
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	day, err := h.resolver.ResolveDate(r.Context(), h.now())
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to resolve today")
		return
	}
	WriteSuccess(w, day)
}

// GetDay handles GET /api/v1/days/{YYYY-MM-DD}
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	date, err := calendar.ParseDate(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}

	day, err := h.resolver.ResolveDate(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to resolve date")
		return
	}
	WriteSuccess(w, day)
}

// GetDays handles GET /api/v1/days?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) GetDays(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	days, err := h.resolver.ResolveRange(r.Context(), start, end)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to resolve range")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"start": calendar.FormatDate(start),
		"end":   calendar.FormatDate(end),
		"days":  days,
	})
}

// GetUpcomingFeasts handles GET /api/v1/feasts/upcoming?from=&count=
func (h *Handlers) GetUpcomingFeasts(w http.ResponseWriter, r *http.Request) {
	from := h.now()
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid from date: %s. Use YYYY-MM-DD", s))
			return
		}
		from = d
	}

	count := defaultUpcoming
	if s := r.URL.Query().Get("count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxUpcoming {
			WriteBadRequest(w, fmt.Sprintf("count must be between 1 and %d", maxUpcoming))
			return
		}
		count = n
	}

	feasts, err := h.resolver.UpcomingFeasts(r.Context(), from, count)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to find upcoming feasts")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"from":   calendar.FormatDate(from),
		"feasts": feasts,
	})
}

type easterDate struct {
	Year int    `json:"year"`
	Date string `json:"date"`
}

// GetEaster handles GET /api/v1/easter?start=YYYY&end=YYYY
func (h *Handlers) GetEaster(w http.ResponseWriter, r *http.Request) {
	current := h.now().Year()
	start, err := intParam(r, "start", current)
	if err != nil {
		WriteBadRequest(w, "start must be a year")
		return
	}
	end, err := intParam(r, "end", start)
	if err != nil {
		WriteBadRequest(w, "end must be a year")
		return
	}
	if end-start >= maxEasterYears {
		WriteBadRequest(w, fmt.Sprintf("Year range cannot exceed %d years", maxEasterYears))
		return
	}

	dates, err := calendar.CalculateEasterRange(start, end)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to calculate Easter")
		return
	}

	out := make([]easterDate, 0, len(dates))
	for y := start; y <= end; y++ {
		out = append(out, easterDate{Year: y, Date: calendar.FormatDate(dates[y])})
	}
	WriteSuccess(w, out)
}

type holyDayResponse struct {
	Name string               `json:"name"`
	Date string               `json:"date"`
	Type calendar.HolyDayType `json:"type"`
}

// GetHolyDays handles GET /api/v1/years/{year}/holy-days
func (h *Handlers) GetHolyDays(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	days, err := calendar.HolyDaysFor(year)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to calculate holy days")
		return
	}

	out := make([]holyDayResponse, len(days))
	for i, d := range days {
		out[i] = holyDayResponse{Name: d.Name, Date: calendar.FormatDate(d.Date), Type: d.Type}
	}
	WriteSuccess(w, map[string]interface{}{
		"year":      year,
		"holy_days": out,
	})
}

type moveableFeastResponse struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Date   string `json:"date"`
}

// GetMoveableFeasts handles GET /api/v1/years/{year}/moveable-feasts
func (h *Handlers) GetMoveableFeasts(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	dates, err := calendar.AllMoveableFeasts(year)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to calculate moveable feasts")
		return
	}

	feasts := calendar.MoveableFeasts()
	out := make([]moveableFeastResponse, 0, len(feasts))
	for _, f := range feasts {
		out = append(out, moveableFeastResponse{
			Name:   f.Name,
			Offset: f.Offset,
			Date:   calendar.FormatDate(dates[f.Name]),
		})
	}
	WriteSuccess(w, map[string]interface{}{
		"year":   year,
		"feasts": out,
	})
}

// GetCalendarICS handles GET /api/v1/calendar.ics?start=&end=&feasts_only=
func (h *Handlers) GetCalendarICS(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	feastsOnly, _ := strconv.ParseBool(r.URL.Query().Get("feasts_only"))

	days, err := h.resolver.ResolveRange(r.Context(), start, end)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to resolve range")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="churchyear.ics"`)
	if err := ics.Write(w, days, ics.Options{FeastsOnly: feastsOnly}); err != nil {
		logger.Error(r.Context(), "failed to write calendar", err)
	}
}

// ListSanctoral handles GET /api/v1/sanctoral
func (h *Handlers) ListSanctoral(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		days := h.builtin.All()
		sort.SliceStable(days, func(i, j int) bool {
			if days[i].Month != days[j].Month {
				return days[i].Month < days[j].Month
			}
			return days[i].Day < days[j].Day
		})
		WriteSuccess(w, days)
		return
	}

	days, err := h.db.ListSanctoralDays(r.Context())
	if err != nil {
		logger.Error(r.Context(), "failed to list sanctoral days", err)
		WriteInternalError(w, "Failed to list sanctoral days")
		return
	}
	WriteSuccess(w, days)
}

// GetSanctoral handles GET /api/v1/sanctoral/{id}
func (h *Handlers) GetSanctoral(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.db == nil {
		for _, d := range h.builtin.All() {
			if d.ID == id {
				WriteSuccess(w, d)
				return
			}
		}
		WriteNotFound(w, "Sanctoral day not found")
		return
	}

	day, err := h.db.GetSanctoralDay(r.Context(), id)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Sanctoral day not found")
			return
		}
		logger.Error(r.Context(), "failed to get sanctoral day", err, slog.String("id", id))
		WriteInternalError(w, "Failed to get sanctoral day")
		return
	}
	WriteSuccess(w, day)
}

// CreateSanctoral handles POST /api/v1/sanctoral
//
// Entries created through the API are always marked custom.
func (h *Handlers) CreateSanctoral(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db == nil {
		WriteReadOnly(w, "Sanctorale is read-only with the builtin source")
		return
	}

	var day sanctoral.Day
	if err := decodeJSON(r, &day); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	day.IsCustom = true

	if err := h.db.CreateSanctoralDay(ctx, &day); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			WriteConflict(w, fmt.Sprintf("%s already exists on %02d-%02d", day.Name, day.Month, day.Day))
			return
		}
		h.writeDomainError(w, r, err, "Failed to create sanctoral day")
		return
	}

	WriteCreated(w, day)
}

// DeleteSanctoral handles DELETE /api/v1/sanctoral/{id}
func (h *Handlers) DeleteSanctoral(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db == nil {
		WriteReadOnly(w, "Sanctorale is read-only with the builtin source")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.db.DeleteSanctoralDay(ctx, id); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Sanctoral day not found")
			return
		}
		logger.Error(ctx, "failed to delete sanctoral day", err, slog.String("id", id))
		WriteInternalError(w, "Failed to delete sanctoral day")
		return
	}

	logger.Info(ctx, "sanctoral day deleted", slog.String("id", id))
	WriteSuccess(w, map[string]string{"id": id, "status": "deleted"})
}

// CreateSnapshot handles POST /api/v1/years/{year}/snapshot
func (h *Handlers) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	if h.snap == nil {
		WriteReadOnly(w, "Snapshots require the database source")
		return
	}

	result, err := h.snap.SnapshotYear(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to snapshot year")
		return
	}

	logger.Info(r.Context(), "year snapshotted",
		slog.Int("year", result.Year),
		slog.Int("resolved_days", result.ResolvedDays),
	)
	WriteCreated(w, result)
}

type snapshotResponse struct {
	Year     int                      `json:"year"`
	HolyDays []holyDayResponse        `json:"holy_days"`
	Days     []precedence.ResolvedDay `json:"days"`
}

// GetSnapshot handles GET /api/v1/years/{year}/snapshot
//
// It serves what was stored by CreateSnapshot or the scheduler, without
// resolving anything.
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	if h.db == nil {
		WriteReadOnly(w, "Snapshots require the database source")
		return
	}

	holyDays, err := h.db.GetHolyDays(ctx, year)
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to read snapshot")
		return
	}
	if len(holyDays) == 0 {
		WriteNotFound(w, fmt.Sprintf("No snapshot stored for %d", year))
		return
	}

	days, err := h.db.GetResolvedDays(ctx, calendar.Date(year, time.January, 1), calendar.Date(year, time.December, 31))
	if err != nil {
		h.writeDomainError(w, r, err, "Failed to read snapshot")
		return
	}

	resp := snapshotResponse{Year: year, Days: days}
	for _, d := range holyDays {
		resp.HolyDays = append(resp.HolyDays, holyDayResponse{Name: d.Name, Date: calendar.FormatDate(d.Date), Type: d.Type})
	}
	WriteSuccess(w, resp)
}

// dateRange reads start and end query parameters and enforces the range
// limit. It writes the error response itself and reports whether to go on.
func (h *Handlers) dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		WriteBadRequest(w, "Both start and end date parameters are required")
		return time.Time{}, time.Time{}, false
	}

	start, err := calendar.ParseDate(startStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid start date format: %s. Use YYYY-MM-DD", startStr))
		return time.Time{}, time.Time{}, false
	}

	end, err := calendar.ParseDate(endStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid end date format: %s. Use YYYY-MM-DD", endStr))
		return time.Time{}, time.Time{}, false
	}

	if start.After(end) {
		WriteBadRequest(w, "Start date must be before or equal to end date")
		return time.Time{}, time.Time{}, false
	}

	if n := calendar.DaysBetween(start, end) + 1; n > h.cfg.RangeLimit {
		WriteBadRequest(w, fmt.Sprintf("Date range cannot exceed %d days", h.cfg.RangeLimit))
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// writeDomainError answers client errors with their own status and logs
// everything else as a 500.
func (h *Handlers) writeDomainError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if status, code, ok := clientError(err); ok {
		WriteError(w, status, err.Error(), code)
		return
	}
	logger.Error(r.Context(), msg, err, slog.String("path", r.URL.Path))
	WriteInternalError(w, msg)
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, "Year must be a number")
		return 0, false
	}
	return year, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// decodeJSON decodes JSON request body.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
