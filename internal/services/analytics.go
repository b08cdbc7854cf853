package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
)

// ComputeAdherence returns the completion percentage clamped to [0,100].
// A zero exercise total is defined as 0% adherence, never an error, and a
// stale completed count larger than the total still clamps to 100.
func ComputeAdherence(totalExercises, completedCount int) int {
	if totalExercises <= 0 || completedCount <= 0 {
		return 0
	}

	percent := int(math.Round(float64(completedCount) / float64(totalExercises) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

// BuildDailySeries computes the pain and adherence series for totalDays
// consecutive calendar days starting at startDate. Both slices are always
// exactly totalDays long, oldest first, with 0 for days without data, so a
// chart can consume them without reindexing. expectedForDay supplies the
// adherence denominator for each 1-based day index.
func BuildDailySeries(
	entries []models.ProgressEntry,
	startDate time.Time,
	totalDays int,
	expectedForDay func(dayIndex int) int,
) (painSeries, adherenceSeries []float64) {
	painSeries = make([]float64, 0, totalDays)
	adherenceSeries = make([]float64, 0, totalDays)

	for offset := 0; offset < totalDays; offset++ {
		date := startDate.AddDate(0, 0, offset)

		painSum := 0
		painCount := 0
		completedCount := 0
		for _, entry := range entries {
			if !sameDay(entry.ProgressDate, date) {
				continue
			}
			if entry.PainLevel != nil {
				painSum += *entry.PainLevel
				painCount++
			}
			if entry.IsCompleted {
				completedCount++
			}
		}

		pain := 0.0
		if painCount > 0 {
			pain = float64(painSum) / float64(painCount)
		}

		adherence := 0.0
		if expected := expectedForDay(offset + 1); expected > 0 {
			adherence = float64(completedCount) / float64(expected) * 100
			if adherence > 100 {
				adherence = 100
			}
		}

		painSeries = append(painSeries, pain)
		adherenceSeries = append(adherenceSeries, adherence)
	}

	return painSeries, adherenceSeries
}

// BuildHomeDashboardSeries is the fixed 7-day trailing window ending today
// for the home-screen widget. Unlike the full report it uses the program's
// exercises-per-day as a flat adherence denominator for every day.
func BuildHomeDashboardSeries(
	entries []models.ProgressEntry,
	exercisesPerDay int,
	today time.Time,
) models.HomeDashboard {
	start := today.AddDate(0, 0, -6)
	pain, adherence := BuildDailySeries(entries, start, 7, func(int) int {
		return exercisesPerDay
	})
	return models.HomeDashboard{PainSeries: pain, AdherenceSeries: adherence}
}

// BuildSessionNotes rolls the dated entries up into one clinician-facing note
// per day that recorded any feedback: days with no notes text and no pain
// level are skipped. Results are sorted newest first for display.
func BuildSessionNotes(
	entries []models.ProgressEntry,
	startDate time.Time,
	totalDays int,
	titleByExercise map[int64]string,
) []models.SessionNote {
	notes := make([]models.SessionNote, 0)

	for offset := 0; offset < totalDays; offset++ {
		date := startDate.AddDate(0, 0, offset)

		painSum := 0
		painCount := 0
		watchedSeconds := 0
		titles := make([]string, 0)
		seenTitles := make(map[string]struct{})
		texts := make([]string, 0)

		for _, entry := range entries {
			if !sameDay(entry.ProgressDate, date) {
				continue
			}
			if entry.PainLevel != nil {
				painSum += *entry.PainLevel
				painCount++
			}
			watchedSeconds += entry.WatchedSeconds
			if entry.IsCompleted {
				if title, ok := titleByExercise[entry.ExerciseID]; ok && title != "" {
					if _, seen := seenTitles[title]; !seen {
						seenTitles[title] = struct{}{}
						titles = append(titles, title)
					}
				}
			}
			if entry.Notes != nil && strings.TrimSpace(*entry.Notes) != "" {
				texts = append(texts, strings.TrimSpace(*entry.Notes))
			}
		}

		if painCount == 0 && len(texts) == 0 {
			continue
		}

		averagePain := 0.0
		if painCount > 0 {
			averagePain = float64(painSum) / float64(painCount)
		}

		notes = append(notes, models.SessionNote{
			Date:            dateOf(date),
			AveragePain:     averagePain,
			ExerciseTitles:  strings.Join(titles, ", "),
			DurationMinutes: watchedSeconds / 60,
			Notes:           strings.Join(texts, "\n"),
		})
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Date.After(notes[j].Date)
	})

	return notes
}

// ComputeCompletedSessions counts program days as sessions. A session is
// completed when the number of entries completed on that calendar date meets
// the day's expected count; an incomplete session only counts as missed once
// its date has passed.
func ComputeCompletedSessions(
	sections []models.DaySection,
	startDate time.Time,
	entries []models.ProgressEntry,
	today time.Time,
) (completedSessions, missedSessions int) {
	for i, section := range sections {
		date := startDate.AddDate(0, 0, i)
		expected := len(section.ExerciseIDs)
		if expected == 0 {
			continue
		}

		completedCount := 0
		for _, entry := range entries {
			if entry.IsCompleted && sameDay(entry.ProgressDate, date) {
				completedCount++
			}
		}

		switch {
		case completedCount >= expected:
			completedSessions++
		case dateOf(date).Before(dateOf(today)):
			missedSessions++
		}
	}

	return completedSessions, missedSessions
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
