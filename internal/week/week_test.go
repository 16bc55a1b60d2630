package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDates_SundayStartMidweek(t *testing.T) {
	got := Dates(date(2024, 6, 12), 0) // Wednesday

	require.Len(t, got, 7)
	assert.Equal(t, date(2024, 6, 9), got[0])
	assert.Equal(t, date(2024, 6, 15), got[6])
}

func TestDates_MondayStart(t *testing.T) {
	got := Dates(date(2024, 6, 9), 1) // Sunday belongs to the week starting Monday 3rd

	assert.Equal(t, date(2024, 6, 3), got[0])
	assert.Equal(t, date(2024, 6, 9), got[6])
}

func TestDates_Properties(t *testing.T) {
	base := date(2023, 12, 20)
	for offset := 0; offset < 60; offset++ {
		day := base.AddDate(0, 0, offset)
		for start := 0; start < 7; start++ {
			got := Dates(day, start)
			require.Len(t, got, 7)

			assert.Equal(t, time.Weekday(start), got[0].Weekday(), "first weekday for start %d", start)

			found := false
			for i, d := range got {
				if i > 0 {
					assert.Equal(t, got[i-1].AddDate(0, 0, 1), d, "consecutive days")
				}
				if SameDay(d, day) {
					found = true
				}
			}
			assert.True(t, found, "%s missing from its own week", day.Format(DateLayout))
			assert.False(t, got[0].After(day))
			assert.False(t, got[6].Before(day))
		}
	}
}

func TestDates_IgnoresTimeOfDay(t *testing.T) {
	midnight := Dates(date(2024, 6, 12), 1)
	evening := Dates(time.Date(2024, 6, 12, 23, 59, 59, 999, time.UTC), 1)
	morning := Dates(time.Date(2024, 6, 12, 0, 0, 1, 0, time.UTC), 1)

	assert.Equal(t, midnight, evening)
	assert.Equal(t, midnight, morning)
}

func TestDates_Idempotent(t *testing.T) {
	base := time.Date(2025, 3, 1, 13, 30, 0, 0, time.UTC)
	assert.Equal(t, Dates(base, 3), Dates(base, 3))
}

func TestDates_NormalizesStart(t *testing.T) {
	base := date(2024, 6, 12)
	assert.Equal(t, Dates(base, 1), Dates(base, 8))
	assert.Equal(t, Dates(base, 6), Dates(base, -1))
	assert.Equal(t, Dates(base, 0), Dates(base, -14))
}

func TestDates_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// DST starts Sunday 2024-03-10 in New York.
	got := Dates(time.Date(2024, 3, 13, 8, 0, 0, 0, loc), 0)

	for i, d := range got {
		assert.Equal(t, 10+i, d.Day())
		assert.Equal(t, 0, d.Hour())
	}
}

func TestWeekdays(t *testing.T) {
	assert.Equal(t, []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}, Weekdays(time.Monday))
	assert.Equal(t, time.Sunday, Weekdays(time.Sunday)[0])
	assert.Equal(t, time.Saturday, Weekdays(time.Sunday)[6])
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Monday", "Monday"},
		{"  monday ", "Monday"},
		{"mon", "Monday"},
		{"THU", "Thursday"},
		{"2024-06-12", "2024-06-12"},
		{"2024-13-40", "2024-13-40"},
		{"Lundi", "Lundi"},
		{"3", "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.in), tt.in)
	}
}

func TestParseDateKey(t *testing.T) {
	got, ok := ParseDateKey("2024-02-29", time.UTC)
	require.True(t, ok)
	assert.Equal(t, date(2024, 2, 29), got)

	_, ok = ParseDateKey("Monday", time.UTC)
	assert.False(t, ok)
}
