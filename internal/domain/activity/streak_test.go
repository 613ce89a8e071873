package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

func days(values ...string) []timeutil.Day {
	result := make([]timeutil.Day, 0, len(values))
	for _, v := range values {
		d, err := timeutil.ParseDay(v)
		if err != nil {
			panic(err)
		}
		result = append(result, d)
	}
	return result
}

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name            string
		daysDescending  []timeutil.Day
		today           string
		wantCurrent     int
		wantLongest     int
		wantTotal       int
		wantLastActive  string
		wantNilLastDate bool
	}{
		{
			name:            "empty history",
			daysDescending:  nil,
			today:           "2025-01-03",
			wantCurrent:     0,
			wantLongest:     0,
			wantTotal:       0,
			wantNilLastDate: true,
		},
		{
			name:           "three consecutive days ending today",
			daysDescending: days("2025-01-03", "2025-01-02", "2025-01-01"),
			today:          "2025-01-03",
			wantCurrent:    3,
			wantLongest:    3,
			wantTotal:      3,
			wantLastActive: "2025-01-03",
		},
		{
			name:           "gap before current run",
			daysDescending: days("2025-01-05", "2025-01-02", "2025-01-01"),
			today:          "2025-01-05",
			wantCurrent:    1,
			wantLongest:    2,
			wantTotal:      3,
			wantLastActive: "2025-01-05",
		},
		{
			name:           "streak broken by inactivity",
			daysDescending: days("2025-01-01"),
			today:          "2025-01-10",
			wantCurrent:    0,
			wantLongest:    1,
			wantTotal:      1,
			wantLastActive: "2025-01-01",
		},
		{
			name:           "newest day is yesterday",
			daysDescending: days("2025-01-02", "2025-01-01"),
			today:          "2025-01-03",
			wantCurrent:    2,
			wantLongest:    2,
			wantTotal:      2,
			wantLastActive: "2025-01-02",
		},
		{
			name:           "newest two days ago",
			daysDescending: days("2025-01-04", "2025-01-03", "2025-01-02"),
			today:          "2025-01-06",
			wantCurrent:    0,
			wantLongest:    3,
			wantTotal:      3,
			wantLastActive: "2025-01-04",
		},
		{
			name:           "longest run in the past",
			daysDescending: days("2025-02-10", "2025-01-05", "2025-01-04", "2025-01-03", "2025-01-02"),
			today:          "2025-02-10",
			wantCurrent:    1,
			wantLongest:    4,
			wantTotal:      5,
			wantLastActive: "2025-02-10",
		},
		{
			name:           "isolated single day today",
			daysDescending: days("2025-01-03"),
			today:          "2025-01-03",
			wantCurrent:    1,
			wantLongest:    1,
			wantTotal:      1,
			wantLastActive: "2025-01-03",
		},
		{
			name:           "run crossing a month boundary",
			daysDescending: days("2025-02-01", "2025-01-31", "2025-01-30"),
			today:          "2025-02-01",
			wantCurrent:    3,
			wantLongest:    3,
			wantTotal:      3,
			wantLastActive: "2025-02-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today, err := timeutil.ParseDay(tt.today)
			require.NoError(t, err)

			got := ComputeStreak(tt.daysDescending, today)

			assert.Equal(t, tt.wantCurrent, got.CurrentStreak, "current streak")
			assert.Equal(t, tt.wantLongest, got.LongestStreak, "longest streak")
			assert.Equal(t, tt.wantTotal, got.TotalActiveDays, "total active days")

			if tt.wantNilLastDate {
				assert.Nil(t, got.LastActiveDate)
			} else {
				require.NotNil(t, got.LastActiveDate)
				assert.Equal(t, tt.wantLastActive, got.LastActiveDate.String())
			}
		})
	}
}

func TestDayEntryIncrement(t *testing.T) {
	day := timeutil.Date(2025, 1, 3)
	created := day.Time().Add(8 * time.Hour)
	entry := NewDayEntry("user-1", day, created)

	require.Equal(t, 1, entry.LessonsCompletedCount)
	assert.Equal(t, created, entry.CreatedAt)

	later := created.Add(time.Minute)
	entry.Increment(later)

	assert.Equal(t, 2, entry.LessonsCompletedCount)
	assert.Equal(t, created, entry.CreatedAt, "CreatedAt is set once")
	assert.Equal(t, later, entry.LastUpdated)
}
