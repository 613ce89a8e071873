package activity

import (
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

// StreakSummary is the derived streak state for one user.
// It is computed on demand and never persisted.
type StreakSummary struct {
	CurrentStreak   int
	LongestStreak   int
	LastActiveDate  *timeutil.Day // nil when the user has no history
	TotalActiveDays int
}

// ComputeStreak derives the streak summary from the user's activity days,
// newest first, against a caller-supplied reference day ("today").
//
// The current streak counts consecutive days ending at the reference day
// or the day before it; a most-recent day older than that means the streak
// is already broken and the current streak is 0 regardless of history.
// The longest streak is the largest consecutive run anywhere in history.
func ComputeStreak(daysDescending []timeutil.Day, today timeutil.Day) StreakSummary {
	if len(daysDescending) == 0 {
		return StreakSummary{}
	}

	newest := daysDescending[0]
	summary := StreakSummary{
		LastActiveDate:  &newest,
		TotalActiveDays: len(daysDescending),
	}

	// Current streak: anchored at today or yesterday, then walk backwards
	// while each day is exactly one day before the previous counted day.
	sinceNewest := newest.DaysBetween(today)
	if sinceNewest == 0 || sinceNewest == 1 {
		summary.CurrentStreak = 1
		prev := newest
		for _, day := range daysDescending[1:] {
			if !day.IsNextDay(prev) {
				break
			}
			summary.CurrentStreak++
			prev = day
		}
	}

	// Longest streak: single scan over the descending history, counting
	// maximal runs of consecutive days.
	run := 1
	longest := 1
	prev := newest
	for _, day := range daysDescending[1:] {
		if day.IsNextDay(prev) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = day
	}
	summary.LongestStreak = longest

	return summary
}
