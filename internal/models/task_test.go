package models

import "testing"

func TestTask_HasID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"working set id", "3", true},
		{"completed task", "0", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := (Task{ID: tt.id}).HasID(); got != tt.want {
				t.Errorf("HasID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultTaskFilter(t *testing.T) {
	t.Parallel()

	f := DefaultTaskFilter()
	if f.Status == nil || *f.Status != string(TaskStatusPending) {
		t.Errorf("expected pending status, got %v", f.Status)
	}
	if f.Tags == nil {
		t.Error("expected non-nil tags slice")
	}
}
