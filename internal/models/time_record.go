package models

import (
	"strings"
	"time"
)

// TimeRecord represents a tracked interval as reported by the backend.
// An empty End marks the record as still running.
type TimeRecord struct {
	ID        string     `json:"id"`
	Start     string     `json:"start"`
	End       string     `json:"end"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Tags      []string   `json:"tags"`
}

// IsActive reports whether the record is an in-progress tracking session
func (r TimeRecord) IsActive() bool {
	return strings.TrimSpace(r.End) == ""
}

// Duration returns the tracked duration. Active records are measured against now.
func (r TimeRecord) Duration(now time.Time) time.Duration {
	if r.StartTime == nil {
		return 0
	}
	end := now
	if r.EndTime != nil {
		end = *r.EndTime
	}
	if end.Before(*r.StartTime) {
		return 0
	}
	return end.Sub(*r.StartTime)
}

// HasTag reports whether the record carries tag
func (r TimeRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record
func (r TimeRecord) Clone() TimeRecord {
	c := r
	if r.StartTime != nil {
		st := *r.StartTime
		c.StartTime = &st
	}
	if r.EndTime != nil {
		et := *r.EndTime
		c.EndTime = &et
	}
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	return c
}

// ActiveRecord returns the first active record in records, if any
func ActiveRecord(records []TimeRecord) (TimeRecord, bool) {
	for _, r := range records {
		if r.IsActive() {
			return r, true
		}
	}
	return TimeRecord{}, false
}

// DistinctTags flattens the tags of records, keeping the order of first appearance
func DistinctTags(records []TimeRecord) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, r := range records {
		for _, t := range r.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}
