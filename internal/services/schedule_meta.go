package services

import (
	"fmt"
	"regexp"
	"strconv"
)

// Legacy programs carry their two schedule parameters encoded as a prefix on
// the free-text description: "DurationDays=7;ExercisesPerDay=2;rest of text".
// New programs store both as first-class columns; the parser remains so old
// descriptions keep importing cleanly.
var scheduleMetaPattern = regexp.MustCompile(`^DurationDays=(\d+);ExercisesPerDay=(\d+);`)

// ParseScheduleMeta extracts the two integers from a legacy description.
// Absence is a valid, common case: both pointers come back nil and the text
// is returned untouched. It never fails.
func ParseScheduleMeta(description string) (durationDays, exercisesPerDay *int, cleaned string) {
	match := scheduleMetaPattern.FindStringSubmatch(description)
	if match == nil {
		return nil, nil, description
	}

	days, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, nil, description
	}
	perDay, err := strconv.Atoi(match[2])
	if err != nil {
		return nil, nil, description
	}
	if days <= 0 || perDay <= 0 {
		return nil, nil, description
	}

	return &days, &perDay, description[len(match[0]):]
}

// EncodeScheduleMeta is the inverse of ParseScheduleMeta: the two integers
// become the prefix and the free text is appended unchanged.
func EncodeScheduleMeta(durationDays, exercisesPerDay int, freeText string) string {
	return fmt.Sprintf("DurationDays=%d;ExercisesPerDay=%d;%s", durationDays, exercisesPerDay, freeText)
}
