package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultDurationMinutes is assumed when an appointment's type (and so
	// its duration) is unknown.
	DefaultDurationMinutes = 30

	defaultOpenHour  = 8
	defaultCloseHour = 17
)

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Contains reports whether the instant falls inside the interval.
// The start is included, the end is not, so back-to-back appointments
// never collide at the boundary.
func (i Interval) Contains(minute int) bool {
	return minute >= i.Start && minute < i.End
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// BookedInterval is one active appointment's occupied range.
type BookedInterval struct {
	StartTime       string
	DurationMinutes int
}

// Slot is a candidate bookable start time, computed fresh per request and
// never persisted.
type Slot struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	IsAvailable bool   `json:"is_available"`
}

// DefaultWorkingHours returns hourly slot origins from the clinic's default
// open hour up to (not including) the close hour. Used when a doctor has no
// configured working hours.
func DefaultWorkingHours() []string {
	hours := make([]string, 0, defaultCloseHour-defaultOpenHour)
	for h := defaultOpenHour; h < defaultCloseHour; h++ {
		hours = append(hours, fmt.Sprintf("%02d:00", h))
	}
	return hours
}

// ComputeSlots derives the bookable slots for one doctor and date. It seeds
// one candidate per working-hour origin and removes any candidate whose
// start instant falls inside a booked interval. The result preserves the
// working-hour order. Pure: same inputs always give the same output.
func ComputeSlots(date string, workingHours []string, booked []BookedInterval) []Slot {
	if len(workingHours) == 0 {
		workingHours = DefaultWorkingHours()
	}

	occupied := make([]Interval, 0, len(booked))
	for _, b := range booked {
		start, err := ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		duration := b.DurationMinutes
		if duration <= 0 {
			duration = DefaultDurationMinutes
		}
		occupied = append(occupied, Interval{Start: start, End: start + duration})
	}

	slots := make([]Slot, 0, len(workingHours))
	for _, origin := range workingHours {
		start, err := ParseClock(origin)
		if err != nil {
			continue
		}
		available := true
		for _, occ := range occupied {
			if occ.Contains(start) {
				available = false
				break
			}
		}
		if available {
			slots = append(slots, Slot{Date: date, StartTime: FormatClock(start), IsAvailable: true})
		}
	}
	return slots
}
