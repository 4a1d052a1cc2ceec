package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/flow/internal/models"
	"github.com/benvon/flow/internal/tracker"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TimerService is the part of the tracker the status API drives
type TimerService interface {
	State() models.TimerState
	Refresh(ctx context.Context) error
	StartTimer(ctx context.Context) error
	StopTimer(ctx context.Context) error
	Select(id string) error
	DeleteSelected(ctx context.Context) error
	TagSelected(ctx context.Context, tag string) error
	UntagSelected(ctx context.Context, tag string) error
	ModifySelectedDates(ctx context.Context, start, end *time.Time) error
}

var _ TimerService = (*tracker.Tracker)(nil)

// TimerHandler exposes the tracked timer and its records over HTTP
type TimerHandler struct {
	timer  TimerService
	logger *zap.Logger
	now    func() time.Time
}

// TimerHandlerOption configures a TimerHandler
type TimerHandlerOption func(*TimerHandler)

// WithTimerClock overrides the clock used for display fields
func WithTimerClock(now func() time.Time) TimerHandlerOption {
	return func(h *TimerHandler) { h.now = now }
}

// NewTimerHandler creates a new timer handler
func NewTimerHandler(timer TimerService, logger *zap.Logger, opts ...TimerHandlerOption) *TimerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &TimerHandler{timer: timer, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers timer and record routes on the given router.
// The router should already have the /api/v1 prefix.
func (h *TimerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/timer", h.GetTimer).Methods("GET")
	r.HandleFunc("/timer/start", h.StartTimer).Methods("POST")
	r.HandleFunc("/timer/stop", h.StopTimer).Methods("POST")
	r.HandleFunc("/timer/refresh", h.RefreshTimer).Methods("POST")

	r.HandleFunc("/records", h.ListRecords).Methods("GET")
	r.HandleFunc("/records/selected", h.DeleteSelected).Methods("DELETE")
	r.HandleFunc("/records/selected/tags", h.TagSelected).Methods("POST")
	r.HandleFunc("/records/selected/tags/{tag}", h.UntagSelected).Methods("DELETE")
	r.HandleFunc("/records/selected/dates", h.ModifySelectedDates).Methods("PATCH")
	r.HandleFunc("/records/{id}/select", h.SelectRecord).Methods("POST")
}

// TimerResponse is what renderers need to draw the running timer
type TimerResponse struct {
	IsTracking         bool   `json:"is_tracking"`
	IsLoading          bool   `json:"is_loading"`
	CurrentTimeSeconds int    `json:"current_time_seconds"`
	Elapsed            string `json:"elapsed"`
	StartedAt          string `json:"started_at,omitempty"`
	ActiveRecordID     string `json:"active_record_id,omitempty"`
}

func timerResponse(s models.TimerState) TimerResponse {
	return TimerResponse{
		IsTracking:         s.IsTracking,
		IsLoading:          s.IsLoading,
		CurrentTimeSeconds: s.CurrentTimeSeconds,
		Elapsed:            tracker.FormatSeconds(s.CurrentTimeSeconds),
		StartedAt:          s.StartedAt,
		ActiveRecordID:     s.ActiveID(),
	}
}

// GetTimer returns the current timer state
func (h *TimerHandler) GetTimer(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, timerResponse(h.timer.State()))
}

// StartTimer starts tracking on the backend
func (h *TimerHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	h.runTimerAction(w, r, "start", h.timer.StartTimer)
}

// StopTimer stops tracking on the backend
func (h *TimerHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	h.runTimerAction(w, r, "stop", h.timer.StopTimer)
}

// RefreshTimer re-fetches records and reconciles the timer
func (h *TimerHandler) RefreshTimer(w http.ResponseWriter, r *http.Request) {
	h.runTimerAction(w, r, "refresh", h.timer.Refresh)
}

func (h *TimerHandler) runTimerAction(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context) error) {
	if err := fn(r.Context()); err != nil {
		h.logger.Warn("timer_action_failed",
			zap.String("action", action),
			zap.Error(err),
		)
		respondTrackerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, timerResponse(h.timer.State()))
}
