package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"csconfs/internal/catalog"
	"csconfs/internal/config"
	"csconfs/internal/deadline"
	"csconfs/internal/ics"
	appLog "csconfs/internal/log"
	"csconfs/internal/model"
	"csconfs/internal/stats"
)

// Server provides the HTTP API over the conference catalog.
type Server struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	now     func() time.Time
	mux     *http.ServeMux

	// /api/stats only changes when the catalog is reloaded, so the response
	// is cached per snapshot.
	statsMu    sync.RWMutex
	statsCache *statsCache
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces time.Now as the source of "now" for every request.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, cat *catalog.Catalog, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: cat,
		now:     time.Now,
		mux:     http.NewServeMux(),
	}
	for _, o := range opts {
		o(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="csconfs", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve runs an HTTP server on cfg.Listen until ctx is cancelled, then shuts
// it down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		appLog.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/conferences", s.handleConferences)
	s.mux.HandleFunc("/api/calendar", s.handleCalendar)
	s.mux.HandleFunc("/api/day", s.handleDay)
	s.mux.HandleFunc("/api/countdown", s.handleCountdown)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/areas", s.handleAreas)
	s.mux.HandleFunc("/api/years", s.handleYears)
	s.mux.HandleFunc("/deadlines.ics", s.handleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// conferenceDTO is a record as listed in the conference table.
type conferenceDTO struct {
	model.Conference
	DeadlineDisplay string             `json:"deadline_display"`
	Countdown       deadline.Countdown `json:"countdown"`
	Country         string             `json:"country"`
}

// conferencesResponse is the JSON response shape for /api/conferences.
type conferencesResponse struct {
	Conferences []conferenceDTO `json:"conferences"`
	Sort        string          `json:"sort"`
	Now         time.Time       `json:"now"`
	LoadedAt    time.Time       `json:"loaded_at"`
}

// handleConferences returns the filtered and sorted conference list.
//
// GET /api/conferences?sort=submission_deadline&year=2025&area=Databases
//   - sort: a sort key name, default from config
//   - year: edition year, 0 or empty for all
//   - area: area title from the ranking tables
func (s *Server) handleConferences(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	q := r.URL.Query()

	sortName := q.Get("sort")
	if sortName == "" {
		sortName = s.cfg.DefaultSort
	}
	key, err := deadline.ParseSortKey(sortName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.catalog.Snapshot()
	records := snap.Select(catalog.Filter{
		Year: parseIntDefault(q.Get("year"), 0),
		Area: q.Get("area"),
	})
	sorted, err := deadline.SortBy(records, key, now)
	if err != nil {
		appLog.Error("api conferences: sort failed", err, "sort", sortName)
		writeError(w, http.StatusInternalServerError, "failed to sort conferences")
		return
	}

	dtos := make([]conferenceDTO, 0, len(sorted))
	for _, c := range sorted {
		dtos = append(dtos, conferenceDTO{
			Conference:      c,
			DeadlineDisplay: deadline.FormatAoEDate(c.Deadline),
			Countdown:       deadline.CountdownFor(c.Deadline, now),
			Country:         stats.CountryRegion(c.Place),
		})
	}

	writeJSON(w, http.StatusOK, conferencesResponse{
		Conferences: dtos,
		Sort:        key.String(),
		Now:         now,
		LoadedAt:    snap.LoadedAt,
	})
}

// calendarResponse is the JSON response shape for /api/calendar.
type calendarResponse struct {
	Month     string               `json:"month"`
	WeekStart string               `json:"week_start"`
	Days      []deadline.DayEvents `json:"days"`
	Legend    []deadline.KindStyle `json:"legend"`
}

// handleCalendar returns a month grid with the events of every day.
//
// GET /api/calendar?month=2025-03&year=2025
//   - month: YYYY-MM, default is the current month in the display timezone
//   - year:  optional edition filter, as on /api/conferences
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	loc := resolveLocationOrLocal(s.cfg.Timezone)
	today := s.now().In(loc)
	q := r.URL.Query()

	month := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	if m := q.Get("month"); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		month = t
	}

	records := s.catalog.Snapshot().Select(catalog.Filter{Year: parseIntDefault(q.Get("year"), 0)})
	writeJSON(w, http.StatusOK, calendarResponse{
		Month:     month.Format("2006-01"),
		WeekStart: s.cfg.WeekStart,
		Days:      deadline.MonthEvents(records, month.Year(), month.Month(), weekStart(s.cfg.WeekStart), today),
		Legend:    deadline.Kinds,
	})
}

// dayResponse is the JSON response shape for /api/day.
type dayResponse struct {
	Date   string                `json:"date"`
	Events []model.CalendarEvent `json:"events"`
}

// handleDay returns the events of one day.
//
// GET /api/day?date=2025-03-14
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := time.Parse(deadline.DateLayout, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	records := s.catalog.Snapshot().Conferences
	writeJSON(w, http.StatusOK, dayResponse{
		Date:   day.Format(deadline.DateLayout),
		Events: deadline.EventsOnDay(records, day),
	})
}

// countdownResponse is the JSON response shape for /api/countdown.
type countdownResponse struct {
	Name            string `json:"name"`
	Note            string `json:"note,omitempty"`
	Deadline        string `json:"deadline"`
	DeadlineDisplay string `json:"deadline_display"`
	deadline.Countdown
}

// handleCountdown returns the live countdown of one record. Rolling cycles
// share a name and are told apart by note ("Cycle 2").
//
// GET /api/countdown?name=ICSE&note=
func (s *Server) handleCountdown(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, ok := findConference(s.catalog.Snapshot().Conferences, name, q.Get("note"))
	if !ok {
		writeError(w, http.StatusNotFound, "conference not found")
		return
	}
	writeJSON(w, http.StatusOK, countdownResponse{
		Name:            c.Name,
		Note:            c.Note,
		Deadline:        c.Deadline,
		DeadlineDisplay: deadline.FormatAoEDate(c.Deadline),
		Countdown:       deadline.CountdownFor(c.Deadline, now),
	})
}

func findConference(records []model.Conference, name, note string) (model.Conference, bool) {
	for _, c := range records {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		if note != "" && !strings.EqualFold(c.Note, note) {
			continue
		}
		return c, true
	}
	return model.Conference{}, false
}

// statsResponse is the JSON response shape for /api/stats.
type statsResponse struct {
	Yearly    []stats.YearStat `json:"yearly"`
	Countries []stats.Count    `json:"countries"`
	Cities    []stats.Count    `json:"cities"`
}

// statsCache holds the /api/stats response of one catalog snapshot.
type statsCache struct {
	resp     statsResponse
	loadedAt time.Time
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap := s.catalog.Snapshot()

	s.statsMu.RLock()
	sc := s.statsCache
	s.statsMu.RUnlock()
	if sc != nil && sc.loadedAt.Equal(snap.LoadedAt) {
		writeJSON(w, http.StatusOK, sc.resp)
		return
	}

	resp := statsResponse{
		Yearly:    stats.Yearly(snap.Conferences),
		Countries: stats.Countries(snap.Conferences),
		Cities:    stats.Cities(snap.Conferences),
	}

	s.statsMu.Lock()
	s.statsCache = &statsCache{resp: resp, loadedAt: snap.LoadedAt}
	s.statsMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// areasResponse is the JSON response shape for /api/areas.
type areasResponse struct {
	Titles   []string `json:"titles"`
	Rankings any      `json:"rankings"`
}

func (s *Server) handleAreas(w http.ResponseWriter, _ *http.Request) {
	snap := s.catalog.Snapshot()
	writeJSON(w, http.StatusOK, areasResponse{
		Titles:   snap.AreaTitles(),
		Rankings: snap.Areas,
	})
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{
		"years": deadline.YearOptions(s.catalog.Snapshot().Conferences),
	})
}

// handleICS serves every event of the catalog as an iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := ics.Export(&buf, s.catalog.Snapshot().Conferences, s.now()); err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="deadlines.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func weekStart(s string) time.Weekday {
	if s == "monday" {
		return time.Monday
	}
	return time.Sunday
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
