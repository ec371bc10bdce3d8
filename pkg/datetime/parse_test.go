package datetime

import (
	"testing"
	"time"
)

func TestMustParseTime(t *testing.T) {
	tests := []struct {
		name     string
		layout   string
		dateStr  string
		expected string
	}{
		{
			name:     "Valid date",
			layout:   DateTimeLayout,
			dateStr:  "2025-01",
			expected: "2025-01",
		},
		{
			name:     "Another valid date",
			layout:   DateTimeLayout,
			dateStr:  "2030-12",
			expected: "2030-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MustParseTime(tt.layout, tt.dateStr)
			if result.Format(tt.layout) != tt.expected {
				t.Errorf("MustParseTime() = %s, expected %s", result.Format(tt.layout), tt.expected)
			}
		})
	}
}

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateTimeLayout, "invalid-date")
}

func TestFirstOfMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "Mid-month collapses to the first",
			input:    time.Date(2025, time.March, 17, 14, 30, 0, 0, time.UTC),
			expected: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Already the first",
			input:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Last day of month",
			input:    time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC),
			expected: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FirstOfMonth(tt.input)
			if !result.Equal(tt.expected) {
				t.Errorf("FirstOfMonth(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFirstOfMonthPreservesCalendarArithmetic(t *testing.T) {
	// A schedule anchored at the first of the month must advance by calendar
	// months, never drifting the way day-31 anchors do under AddDate.
	start := FirstOfMonth(time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC))

	got := start.AddDate(0, 1, 0)
	want := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("one-month offset = %v, expected %v", got, want)
	}

	got = start.AddDate(0, 13, 0)
	want = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("thirteen-month offset = %v, expected %v", got, want)
	}
}

func TestOffsetDate(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		layout   string
		months   int
		expected string
		wantErr  bool
	}{
		{
			name:     "Add multiple years",
			date:     "2025-01",
			layout:   DateTimeLayout,
			months:   24,
			expected: "2027-01",
			wantErr:  false,
		},
		{
			name:     "Subtract multiple years",
			date:     "2025-01",
			layout:   DateTimeLayout,
			months:   -24,
			expected: "2023-01",
			wantErr:  false,
		},
		{
			name:     "Cross year boundary forward",
			date:     "2025-06",
			layout:   DateTimeLayout,
			months:   8,
			expected: "2026-02",
			wantErr:  false,
		},
		{
			name:     "Zero months",
			date:     "2025-06",
			layout:   DateTimeLayout,
			months:   0,
			expected: "2025-06",
			wantErr:  false,
		},
		{
			name:    "Invalid date",
			date:    "not-a-date",
			layout:  DateTimeLayout,
			months:  1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := OffsetDate(tt.date, tt.layout, tt.months)
			if tt.wantErr {
				if err == nil {
					t.Errorf("OffsetDate() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("OffsetDate() error = %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("OffsetDate() = %v, expected %v", result, tt.expected)
			}
		})
	}
}
