package services

import (
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
)

// The day scheduler is a set of pure functions. Callers rebuild the completed
// set from the progress ledger before each call instead of holding a
// long-lived cache, so the unlock check, the chart and the report never
// disagree about the underlying data.

// CompletedSet builds the snapshot the scheduler functions consume.
func CompletedSet(exerciseIDs []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(exerciseIDs))
	for _, id := range exerciseIDs {
		set[id] = struct{}{}
	}
	return set
}

// BucketIntoDays partitions the ordered exercise list into consecutive groups
// of exercisesPerDay; the final group may be smaller. Day indices are 1-based
// and contiguous. A non-positive group size means the program has no usable
// schedule and yields an empty list rather than a guessed default.
func BucketIntoDays(orderedExerciseIDs []int64, exercisesPerDay int) []models.DaySection {
	if exercisesPerDay <= 0 || len(orderedExerciseIDs) == 0 {
		return []models.DaySection{}
	}

	sections := make([]models.DaySection, 0, (len(orderedExerciseIDs)+exercisesPerDay-1)/exercisesPerDay)
	for start := 0; start < len(orderedExerciseIDs); start += exercisesPerDay {
		end := start + exercisesPerDay
		if end > len(orderedExerciseIDs) {
			end = len(orderedExerciseIDs)
		}
		section := models.DaySection{
			DayIndex:    len(sections) + 1,
			ExerciseIDs: orderedExerciseIDs[start:end],
		}
		sections = append(sections, section)
	}

	return sections
}

// ExpectedCountForDay returns how many exercises the 1-based day should hold,
// clamped to zero for days past the end of the program.
func ExpectedCountForDay(totalExercises, exercisesPerDay, dayIndex int) int {
	if exercisesPerDay <= 0 || dayIndex <= 0 {
		return 0
	}

	remaining := totalExercises - (dayIndex-1)*exercisesPerDay
	if remaining <= 0 {
		return 0
	}
	if remaining < exercisesPerDay {
		return remaining
	}
	return exercisesPerDay
}

// IsDayComplete reports whether every exercise in the section has been
// completed. An empty section is never complete.
func IsDayComplete(section models.DaySection, completed map[int64]struct{}) bool {
	if len(section.ExerciseIDs) == 0 {
		return false
	}
	for _, id := range section.ExerciseIDs {
		if _, ok := completed[id]; !ok {
			return false
		}
	}
	return true
}

// IsDayLocked implements the per-day gate: day 1 is never locked, and day
// N>1 is locked iff day N-1 is incomplete. The check looks exactly one day
// back; there is no deeper dependency chain.
func IsDayLocked(dayIndex int, sections []models.DaySection, completed map[int64]struct{}) bool {
	if dayIndex <= 1 {
		return false
	}
	previous := dayIndex - 2
	if previous < 0 || previous >= len(sections) {
		return true
	}
	return !IsDayComplete(sections[previous], completed)
}
