package flowapi

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	berlin := time.FixedZone("CET", 3600)

	tests := []struct {
		name    string
		input   string
		want    *time.Time
		wantErr bool
	}{
		{name: "empty string is nil", input: ""},
		{name: "whitespace is nil", input: "   "},
		{
			name:  "utc designator",
			input: "20240305T081500Z",
			want:  ptrTime(time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC)),
		},
		{
			name:  "hour offset",
			input: "20240305T091500+01",
			want:  ptrTime(time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC)),
		},
		{
			name:  "full offset",
			input: "20240305T091500+01:00",
			want:  ptrTime(time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC)),
		},
		{name: "rfc3339 is rejected", input: "2024-03-05T08:15:00Z", wantErr: true},
		{name: "garbage is rejected", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimestamp(tt.input, berlin)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.want == nil {
				if got != nil {
					t.Errorf("Expected nil, got %v", got)
				}
				return
			}
			if got == nil || !got.Equal(*tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if got != nil && got.Location() != berlin {
				t.Errorf("Expected location %v, got %v", berlin, got.Location())
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	local := time.Date(2024, 3, 5, 9, 15, 30, 0, time.FixedZone("CET", 3600))
	if got := FormatTimestamp(local); got != "20240305T081530Z" {
		t.Errorf("Expected 20240305T081530Z, got %s", got)
	}

	parsed, err := ParseTimestamp(FormatTimestamp(local), time.UTC)
	if err != nil {
		t.Fatalf("Round trip failed: %v", err)
	}
	if !parsed.Equal(local) {
		t.Errorf("Expected %v after round trip, got %v", local, parsed)
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
