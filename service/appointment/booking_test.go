package appointment

import (
	"errors"
	"testing"

	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/Amoako-T/Medlink-server/service/schedule"
)

func TestValidateBookingEmptySchedule(t *testing.T) {
	req := BookingRequest{DoctorID: 1, Date: "2026-09-01", StartTime: "10:00", DurationMinutes: 30}
	if err := ValidateBooking(req, nil); err != nil {
		t.Fatalf("booking against empty schedule must succeed, got %v", err)
	}
}

func TestValidateBookingIdempotence(t *testing.T) {
	// First attempt succeeds; the identical second attempt, checked against
	// the schedule that now holds the first booking, must conflict.
	req := BookingRequest{DoctorID: 1, Date: "2026-09-01", StartTime: "10:00", DurationMinutes: 30}
	if err := ValidateBooking(req, nil); err != nil {
		t.Fatalf("first attempt: %v", err)
	}

	existing := []schedule.BookedInterval{{StartTime: "10:00", DurationMinutes: 30}}
	err := ValidateBooking(req, existing)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("second attempt: expected ErrSlotUnavailable, got %v", err)
	}
}

func TestValidateBookingBoundary(t *testing.T) {
	// 10:30+30min ends exactly at 11:00 and must not block an 11:00 start.
	existing := []schedule.BookedInterval{{StartTime: "10:30", DurationMinutes: 30}}
	req := BookingRequest{DoctorID: 1, Date: "2026-09-01", StartTime: "11:00", DurationMinutes: 30}
	if err := ValidateBooking(req, existing); err != nil {
		t.Fatalf("back-to-back booking must succeed, got %v", err)
	}
}

func TestValidateBookingPartialOverlap(t *testing.T) {
	existing := []schedule.BookedInterval{{StartTime: "10:00", DurationMinutes: 60}}

	cases := []struct {
		start    string
		duration int
		conflict bool
	}{
		{"09:30", 30, false}, // ends at 10:00 exactly
		{"09:45", 30, true},  // overlaps the head
		{"10:30", 30, true},  // inside
		{"10:45", 30, true},  // overlaps the tail
		{"11:00", 30, false}, // starts at the boundary
	}

	for _, tc := range cases {
		req := BookingRequest{DoctorID: 1, Date: "2026-09-01", StartTime: tc.start, DurationMinutes: tc.duration}
		err := ValidateBooking(req, existing)
		if tc.conflict && !errors.Is(err, ErrSlotUnavailable) {
			t.Errorf("%s+%dmin: expected conflict, got %v", tc.start, tc.duration, err)
		}
		if !tc.conflict && err != nil {
			t.Errorf("%s+%dmin: expected no conflict, got %v", tc.start, tc.duration, err)
		}
	}
}

func TestValidateBookingDefaultDuration(t *testing.T) {
	// Zero duration falls back to the 30 minute default on both sides.
	existing := []schedule.BookedInterval{{StartTime: "10:00", DurationMinutes: 0}}
	req := BookingRequest{DoctorID: 1, Date: "2026-09-01", StartTime: "10:15"}
	if !errors.Is(ValidateBooking(req, existing), ErrSlotUnavailable) {
		t.Fatal("expected conflict within defaulted interval")
	}

	req.StartTime = "10:30"
	if err := ValidateBooking(req, existing); err != nil {
		t.Fatalf("expected no conflict at defaulted boundary, got %v", err)
	}
}

func TestValidateBookingRejectsMalformedStart(t *testing.T) {
	req := BookingRequest{DoctorID: 1, Date: "2026-09-01", StartTime: "25:99", DurationMinutes: 30}
	err := ValidateBooking(req, nil)
	if err == nil || errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCanTransitionOnlyFromScheduled(t *testing.T) {
	if !CanTransition(models.AppointmentScheduled) {
		t.Error("scheduled appointments must be able to transition")
	}
	// Cancelled and completed are terminal: a cancelled appointment can
	// never be completed, and vice versa.
	if CanTransition(models.AppointmentCancelled) {
		t.Error("cancelled appointments must not transition")
	}
	if CanTransition(models.AppointmentCompleted) {
		t.Error("completed appointments must not transition")
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if !isDuplicateKey(errors.New(`duplicate key value violates unique constraint "idx_doctor_slot_active"`)) {
		t.Error("postgres duplicate key error not recognized")
	}
	if !isDuplicateKey(errors.New("UNIQUE constraint failed: appointments.start_time")) {
		t.Error("sqlite unique constraint error not recognized")
	}
	if isDuplicateKey(errors.New("connection refused")) {
		t.Error("unrelated error misclassified as duplicate key")
	}
	if isDuplicateKey(nil) {
		t.Error("nil error misclassified as duplicate key")
	}
}
