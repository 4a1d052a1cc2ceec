package models

// TimerState is the view-state of the time records screen.
// IsTracking, CurrentTimeSeconds and StartedAt are derived from the active
// entry of Records and are never authoritative on their own.
type TimerState struct {
	Records            []TimeRecord `json:"records"`
	IsLoading          bool         `json:"is_loading"`
	IsTracking         bool         `json:"is_tracking"`
	SelectedRecord     *TimeRecord  `json:"selected_record,omitempty"`
	CurrentTimeSeconds int          `json:"current_time_seconds"`
	StartedAt          string       `json:"started_at,omitempty"`
	RecentTags         []string     `json:"recent_tags"`
}

// Clone returns a deep copy safe to hand to other goroutines
func (s TimerState) Clone() TimerState {
	c := s
	c.Records = make([]TimeRecord, len(s.Records))
	for i, r := range s.Records {
		c.Records[i] = r.Clone()
	}
	if s.SelectedRecord != nil {
		sel := s.SelectedRecord.Clone()
		c.SelectedRecord = &sel
	}
	c.RecentTags = append([]string{}, s.RecentTags...)
	return c
}

// ActiveID returns the ID of the active record while tracking, or ""
func (s TimerState) ActiveID() string {
	if !s.IsTracking {
		return ""
	}
	if r, ok := ActiveRecord(s.Records); ok {
		return r.ID
	}
	return ""
}
