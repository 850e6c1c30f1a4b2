package bulletin

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBusinessDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		from, to time.Time
		want     []time.Time
	}{
		{
			name: "friday to monday skips weekend",
			from: date(2025, time.January, 3),
			to:   date(2025, time.January, 6),
			want: []time.Time{date(2025, time.January, 3), date(2025, time.January, 6)},
		},
		{
			name: "single weekday",
			from: date(2025, time.January, 8),
			to:   date(2025, time.January, 8),
			want: []time.Time{date(2025, time.January, 8)},
		},
		{
			name: "weekend only",
			from: date(2025, time.January, 4),
			to:   date(2025, time.January, 5),
			want: []time.Time{},
		},
		{
			name: "reversed range",
			from: date(2025, time.January, 10),
			to:   date(2025, time.January, 6),
			want: []time.Time{},
		},
		{
			name: "time of day is ignored",
			from: time.Date(2025, time.January, 6, 18, 30, 0, 0, time.UTC),
			to:   time.Date(2025, time.January, 7, 1, 0, 0, 0, time.UTC),
			want: []time.Time{date(2025, time.January, 6), date(2025, time.January, 7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BusinessDaysBetween(tt.from, tt.to)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d days %v, want %d", len(got), got, len(tt.want))
			}

			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("day %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBusinessDaysBetween_FullWeeks(t *testing.T) {
	got := BusinessDaysBetween(date(2025, time.March, 3), date(2025, time.March, 30))
	if len(got) != 20 {
		t.Errorf("got %d business days in four weeks, want 20", len(got))
	}

	for _, d := range got {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			t.Errorf("weekend day %v returned", d)
		}
	}
}
