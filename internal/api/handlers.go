package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/envsense/envsense/internal/airquality"
	"github.com/envsense/envsense/internal/incident"
	"github.com/envsense/envsense/internal/ledger"
	"github.com/envsense/envsense/internal/metrics"
)

var validate = validator.New()

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	reports   ReportService
	scores    LedgerStore
	incidents IncidentStore
	log       *slog.Logger
	now       func() time.Time
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(reports ReportService, scores LedgerStore, incidents IncidentStore, log *slog.Logger) *Handlers {
	return &Handlers{
		reports:   reports,
		scores:    scores,
		incidents: incidents,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the handlers' clock (used in tests).
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	h.now = now
	return h
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// today returns the current calendar day in UTC with no time component.
// It is the date half of the (email, date) submission key.
func (h *Handlers) today() time.Time {
	y, m, d := h.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ---- air quality ----

// GetAirQuality handles GET /api/v1/airquality?place=.
// Place not found and AQI unavailable are distinct user-facing errors;
// everything else in the report degrades by omission inside the service.
func (h *Handlers) GetAirQuality(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")
	if place == "" {
		writeError(w, http.StatusBadRequest, "place query parameter is required")
		return
	}

	report, err := h.reports.Report(r.Context(), place)
	if err != nil {
		switch {
		case errors.Is(err, airquality.ErrPlaceNotFound):
			writeError(w, http.StatusNotFound, "place not found")
		case errors.Is(err, airquality.ErrAQIUnavailable):
			writeError(w, http.StatusBadGateway, "aqi data unavailable for this location")
		default:
			h.log.Error("report failed", "place", place, "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ---- eco scoreboard ----

// GetActions handles GET /api/v1/actions.
func (h *Handlers) GetActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"actions": ledger.Catalog()})
}

type submitRequest struct {
	Name    string   `json:"name" validate:"required"`
	Email   string   `json:"email" validate:"required,email"`
	Actions []string `json:"actions"`
}

type submitResponse struct {
	Entry  ledger.ScoreEntry `json:"entry"`
	Badge  string            `json:"badge"`
	Impact ledger.Impact     `json:"impact"`
}

// SubmitScore handles POST /api/v1/scores. The server assigns today's UTC
// date; at most one entry per (email, date) is ever written.
func (h *Handlers) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	score, err := ledger.ScoreActions(req.Actions)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrEmptySelection):
			metrics.SubmissionsTotal.WithLabelValues("empty_selection").Inc()
			writeError(w, http.StatusUnprocessableEntity, "select at least one action before submitting")
		case errors.Is(err, ledger.ErrUnknownAction):
			metrics.SubmissionsTotal.WithLabelValues("unknown_action").Inc()
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	entry := &ledger.ScoreEntry{
		Name:    req.Name,
		Email:   req.Email,
		Date:    h.today(),
		Score:   score,
		Actions: req.Actions,
	}

	if err := h.scores.SubmitScore(r.Context(), entry); err != nil {
		if errors.Is(err, ledger.ErrDuplicateSubmission) {
			metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
			writeError(w, http.StatusConflict, "already submitted today - come back tomorrow")
			return
		}
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		h.log.Error("submit failed", "email", req.Email, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to record submission")
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusCreated, submitResponse{
		Entry:  *entry,
		Badge:  ledger.BadgeFor(entry.Score),
		Impact: ledger.ImpactFor(entry.Score),
	})
}

type correctNameRequest struct {
	Email   string `json:"email" validate:"required,email"`
	NewName string `json:"new_name" validate:"required"`
}

// CorrectName handles PATCH /api/v1/scores/name. Every entry for the email
// is rewritten, not only today's.
func (h *Handlers) CorrectName(w http.ResponseWriter, r *http.Request) {
	var req correctNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.scores.CorrectName(r.Context(), req.Email, req.NewName)
	if err != nil {
		h.log.Error("name correction failed", "email", req.Email, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update name")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"updated": updated, "name": req.NewName})
}

// GetHistory handles GET /api/v1/scores/history?email=.
// days_active counts distinct submission days, not a consecutive run.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	points, err := h.scores.History(r.Context(), email)
	if err != nil {
		h.log.Error("history query failed", "email", email, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	days, err := h.scores.DaysActive(r.Context(), email)
	if err != nil {
		h.log.Error("days-active query failed", "email", email, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	if points == nil {
		points = []ledger.HistoryPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":       email,
		"entries":     points,
		"days_active": days,
	})
}

// GetLeaderboard handles GET /api/v1/leaderboard?month=YYYY-MM, defaulting
// to the current month.
func (h *Handlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ym := r.URL.Query().Get("month")
	var year int
	var month time.Month
	if ym == "" {
		now := h.now().UTC()
		year, month = now.Year(), now.Month()
	} else {
		parsed, err := time.Parse("2006-01", ym)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be formatted YYYY-MM")
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}

	rows, err := h.scores.Leaderboard(r.Context(), year, month)
	if err != nil {
		h.log.Error("leaderboard query failed", "year", year, "month", month, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	if rows == nil {
		rows = []ledger.LeaderboardRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		"rows":  rows,
	})
}

// ---- incident reports ----

type incidentRequest struct {
	Reporter    string `json:"reporter"`
	Location    string `json:"location" validate:"required"`
	Region      string `json:"region"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// CreateIncident handles POST /api/v1/incidents.
func (h *Handlers) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req incidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !incident.ValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "category must be one of: air, water, waste, noise, other")
		return
	}

	rep := &incident.Report{
		ID:          uuid.NewString(),
		Reporter:    req.Reporter,
		Location:    req.Location,
		Region:      req.Region,
		Category:    req.Category,
		Description: req.Description,
	}

	if err := h.incidents.CreateIncident(r.Context(), rep); err != nil {
		h.log.Error("incident insert failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to record incident")
		return
	}

	writeJSON(w, http.StatusCreated, rep)
}

// ListIncidents handles GET /api/v1/incidents (admin only, bearer auth).
func (h *Handlers) ListIncidents(w http.ResponseWriter, r *http.Request) {
	reports, err := h.incidents.ListIncidents(r.Context())
	if err != nil {
		h.log.Error("incident list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load incidents")
		return
	}

	if reports == nil {
		reports = []incident.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// ---- health ----

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity: 200 when both respond, 503 otherwise.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
