package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/flow/internal/models"
	"github.com/benvon/flow/internal/tracker"
	"github.com/benvon/flow/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TagRequest represents a tag request for the selected record
type TagRequest struct {
	Tag string `json:"tag" validate:"required,tag"`
}

// ModifyDatesRequest changes the bounds of the selected record; omitted fields are kept
type ModifyDatesRequest struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// RecordResponse is a time record with display fields
type RecordResponse struct {
	ID           string     `json:"id"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	Tags         []string   `json:"tags"`
	Active       bool       `json:"active"`
	StartDisplay string     `json:"start_display"`
	EndDisplay   string     `json:"end_display"`
	Duration     string     `json:"duration"`
}

// RecordsResponse lists records along with the selection and recent tags
type RecordsResponse struct {
	Records          []RecordResponse `json:"records"`
	SelectedRecordID string           `json:"selected_record_id,omitempty"`
	RecentTags       []string         `json:"recent_tags"`
}

func (h *TimerHandler) recordResponse(rec models.TimeRecord, now time.Time) RecordResponse {
	end := rec.EndTime
	if rec.IsActive() {
		end = &now
	}
	return RecordResponse{
		ID:           rec.ID,
		Start:        rec.StartTime,
		End:          rec.EndTime,
		Tags:         rec.Tags,
		Active:       rec.IsActive(),
		StartDisplay: tracker.DisplayDateTime(rec.StartTime, now),
		EndDisplay:   tracker.DisplayDateTime(rec.EndTime, now),
		Duration:     tracker.DisplayDifference(rec.StartTime, end),
	}
}

func (h *TimerHandler) recordsResponse(s models.TimerState) RecordsResponse {
	now := h.now()
	out := RecordsResponse{
		Records:    make([]RecordResponse, 0, len(s.Records)),
		RecentTags: s.RecentTags,
	}
	for _, rec := range s.Records {
		out.Records = append(out.Records, h.recordResponse(rec, now))
	}
	if s.SelectedRecord != nil {
		out.SelectedRecordID = s.SelectedRecord.ID
	}
	return out
}

// ListRecords returns all records known to the tracker
func (h *TimerHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.recordsResponse(h.timer.State()))
}

// SelectRecord marks a record as the target of the selected-record operations
func (h *TimerHandler) SelectRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.timer.Select(id); err != nil {
		respondTrackerError(w, err)
		return
	}
	h.respondSelected(w, http.StatusOK)
}

// DeleteSelected deletes the selected record
func (h *TimerHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	if !h.requireSelection(w) {
		return
	}
	if err := h.timer.DeleteSelected(r.Context()); err != nil {
		h.logSelectedFailure("delete", err)
		respondTrackerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.recordsResponse(h.timer.State()))
}

// TagSelected adds a tag to the selected record
func (h *TimerHandler) TagSelected(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireSelection(w) {
		return
	}
	if err := h.timer.TagSelected(r.Context(), req.Tag); err != nil {
		h.logSelectedFailure("tag", err)
		respondTrackerError(w, err)
		return
	}
	h.respondSelected(w, http.StatusOK)
}

// UntagSelected removes a tag from the selected record
func (h *TimerHandler) UntagSelected(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if err := validation.ValidateTag(tag); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if !h.requireSelection(w) {
		return
	}
	if err := h.timer.UntagSelected(r.Context(), tag); err != nil {
		h.logSelectedFailure("untag", err)
		respondTrackerError(w, err)
		return
	}
	h.respondSelected(w, http.StatusOK)
}

// ModifySelectedDates changes the start and/or end of the selected record
func (h *TimerHandler) ModifySelectedDates(w http.ResponseWriter, r *http.Request) {
	var req ModifyDatesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Start == nil && req.End == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "At least one of start or end is required")
		return
	}
	if req.Start != nil && req.End != nil && req.End.Before(*req.Start) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "End must not be before start")
		return
	}
	if !h.requireSelection(w) {
		return
	}
	if err := h.timer.ModifySelectedDates(r.Context(), req.Start, req.End); err != nil {
		h.logSelectedFailure("modify_dates", err)
		respondTrackerError(w, err)
		return
	}
	h.respondSelected(w, http.StatusOK)
}

func (h *TimerHandler) requireSelection(w http.ResponseWriter) bool {
	if h.timer.State().SelectedRecord == nil {
		respondJSONError(w, http.StatusConflict, "Conflict", "No record selected")
		return false
	}
	return true
}

func (h *TimerHandler) respondSelected(w http.ResponseWriter, status int) {
	s := h.timer.State()
	if s.SelectedRecord == nil {
		respondJSON(w, status, nil)
		return
	}
	respondJSON(w, status, h.recordResponse(*s.SelectedRecord, h.now()))
}

func (h *TimerHandler) logSelectedFailure(action string, err error) {
	h.logger.Warn("selected_record_action_failed",
		zap.String("action", action),
		zap.Error(err),
	)
}
