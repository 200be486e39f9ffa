package appointment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/Amoako-T/Medlink-server/service/schedule"
)

// ErrSlotUnavailable is returned when a requested booking interval
// intersects an existing active appointment. Callers should re-query
// availability and pick another slot.
var ErrSlotUnavailable = errors.New("slot unavailable")

// BookingRequest is a prospective booking to validate against a doctor's
// current schedule.
type BookingRequest struct {
	DoctorID        uint
	Date            string
	StartTime       string
	DurationMinutes int
}

// ValidateBooking checks the requested half-open interval against every
// existing active interval for the same doctor and date. It is pure; the
// caller supplies the current schedule. Two intervals [a,b) and [c,d)
// conflict iff a < d && c < b, so an appointment ending exactly when the
// next starts is not a conflict.
func ValidateBooking(req BookingRequest, existing []schedule.BookedInterval) error {
	start, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = schedule.DefaultDurationMinutes
	}
	requested := schedule.Interval{Start: start, End: start + duration}

	for _, b := range existing {
		occStart, err := schedule.ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		occDuration := b.DurationMinutes
		if occDuration <= 0 {
			occDuration = schedule.DefaultDurationMinutes
		}
		occupied := schedule.Interval{Start: occStart, End: occStart + occDuration}
		if schedule.Overlaps(requested, occupied) {
			return ErrSlotUnavailable
		}
	}
	return nil
}

// CanTransition reports whether an appointment in the given status may be
// cancelled or completed. Only scheduled appointments transition; cancelled
// and completed are terminal.
func CanTransition(status string) bool {
	return status == models.AppointmentScheduled
}

// isDuplicateKey matches the driver error text for a unique-index
// violation, the same way the reminder log recognizes a lost dedup race.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
