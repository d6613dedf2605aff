package month

import (
	"testing"
	"time"
)

func TestRange(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		start, end, err := Range("2025-02")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !start.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected start: %v", start)
		}
		if !end.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected end: %v", end)
		}
	})

	t.Run("december_rolls_over", func(t *testing.T) {
		_, end, err := Range("2025-12")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected end: %v", end)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, key := range []string{"2025-13", "2025-00", "202-01", "2025/01", "2025-1", "abcd-ef", ""} {
			if _, _, err := Range(key); err == nil {
				t.Errorf("expected error for %q", key)
			}
		}
	})
}

func TestKey(t *testing.T) {
	got := Key(time.Date(2025, 7, 15, 22, 30, 0, 0, time.UTC))
	if got != "2025-07" {
		t.Errorf("expected 2025-07, got %s", got)
	}
}

func TestDiffDays(t *testing.T) {
	today := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		date time.Time
		want int
	}{
		{"same_day", time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC), 0},
		{"three_days_ahead", time.Date(2025, 6, 13, 23, 59, 0, 0, time.UTC), 3},
		{"ten_days_overdue", time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), -10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DiffDays(tc.date, today); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got, err := ParseDate("2025-03-05T10:00:00Z")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Day() != 5 || got.Month() != 3 {
			t.Errorf("unexpected date: %v", got)
		}
	})

	t.Run("ymd", func(t *testing.T) {
		got, err := ParseDate("2025-03-05")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date: %v", got)
		}
	})

	t.Run("dmy", func(t *testing.T) {
		got, err := ParseDate("05-03-2025")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date: %v", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := ParseDate("not-a-date"); err == nil {
			t.Error("expected error")
		}
	})
}
