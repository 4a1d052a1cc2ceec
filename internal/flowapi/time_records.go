package flowapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/flow/internal/graphql"
	"github.com/benvon/flow/internal/models"
)

type timeRecordData struct {
	ID    string   `json:"id"`
	Start string   `json:"start"`
	End   string   `json:"end"`
	Tags  []string `json:"tags"`
}

// TimeRecordRepository handles time record operations against the backend
type TimeRecordRepository struct {
	exec graphql.Executor
	loc  *time.Location
}

// NewTimeRecordRepository creates a new time record repository.
// Derived times are expressed in loc, or time.Local when loc is nil.
func NewTimeRecordRepository(exec graphql.Executor, loc *time.Location) *TimeRecordRepository {
	if loc == nil {
		loc = time.Local
	}
	return &TimeRecordRepository{exec: exec, loc: loc}
}

// List fetches all time records
func (r *TimeRecordRepository) List(ctx context.Context) ([]models.TimeRecord, error) {
	data, err := r.exec.Execute(ctx, opTimeRecords, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time records: %w", err)
	}

	var out struct {
		TimeRecords []timeRecordData `json:"timeRecords"`
	}
	if err := graphql.Decode(data, &out); err != nil {
		return nil, err
	}

	records := make([]models.TimeRecord, 0, len(out.TimeRecords))
	for _, d := range out.TimeRecords {
		record, err := toTimeRecord(d, r.loc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Start begins tracking and returns the new active record
func (r *TimeRecordRepository) Start(ctx context.Context) (models.TimeRecord, error) {
	return r.mutate(ctx, opTimeStart, "timeStart", nil)
}

// Stop ends the active record
func (r *TimeRecordRepository) Stop(ctx context.Context) (models.TimeRecord, error) {
	return r.mutate(ctx, opTimeStop, "timeStop", nil)
}

// Delete removes a record by ID and returns it
func (r *TimeRecordRepository) Delete(ctx context.Context, id string) (models.TimeRecord, error) {
	return r.mutate(ctx, opDeleteTimeRecord, "deleteTimeRecord", map[string]any{"id": id})
}

// Tag adds a tag to a record
func (r *TimeRecordRepository) Tag(ctx context.Context, id, tag string) (models.TimeRecord, error) {
	return r.mutate(ctx, opTagTimeRecord, "tagTimeRecord", map[string]any{"id": id, "tag": tag})
}

// Untag removes a tag from a record
func (r *TimeRecordRepository) Untag(ctx context.Context, id, tag string) (models.TimeRecord, error) {
	return r.mutate(ctx, opUntagTimeRecord, "untagTimeRecord", map[string]any{"id": id, "tag": tag})
}

// ModifyDates changes the start and/or end of a record. Nil times are left unchanged.
func (r *TimeRecordRepository) ModifyDates(ctx context.Context, id string, start, end *time.Time) (models.TimeRecord, error) {
	vars := map[string]any{"id": id}
	if start != nil {
		vars["start"] = FormatTimestamp(*start)
	}
	if end != nil {
		vars["end"] = FormatTimestamp(*end)
	}
	return r.mutate(ctx, opModifyTimeRecordDate, "modifyTimeRecordDate", vars)
}

func (r *TimeRecordRepository) mutate(ctx context.Context, op graphql.Operation, field string, vars map[string]any) (models.TimeRecord, error) {
	data, err := r.exec.Execute(ctx, op, vars)
	if err != nil {
		return models.TimeRecord{}, fmt.Errorf("failed to execute %s: %w", field, err)
	}

	var out map[string]*timeRecordData
	if err := graphql.Decode(data, &out); err != nil {
		return models.TimeRecord{}, err
	}

	d := out[field]
	if d == nil {
		return models.TimeRecord{}, fmt.Errorf("%s: %w", field, ErrRecordNotReturned)
	}
	return toTimeRecord(*d, r.loc)
}

func toTimeRecord(d timeRecordData, loc *time.Location) (models.TimeRecord, error) {
	start, err := ParseTimestamp(d.Start, loc)
	if err != nil {
		return models.TimeRecord{}, fmt.Errorf("time record %s start: %w", d.ID, err)
	}
	end, err := ParseTimestamp(d.End, loc)
	if err != nil {
		return models.TimeRecord{}, fmt.Errorf("time record %s end: %w", d.ID, err)
	}

	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.TimeRecord{
		ID:        d.ID,
		Start:     d.Start,
		End:       d.End,
		StartTime: start,
		EndTime:   end,
		Tags:      tags,
	}, nil
}

// decodeField unmarshals a single top-level field of a data object
func decodeField(data json.RawMessage, field string, out any) (bool, error) {
	var fields map[string]json.RawMessage
	if err := graphql.Decode(data, &fields); err != nil {
		return false, err
	}
	raw, ok := fields[field]
	if !ok || string(raw) == "null" {
		return false, nil
	}
	if err := graphql.Decode(raw, out); err != nil {
		return false, err
	}
	return true, nil
}
