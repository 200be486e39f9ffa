package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAlreadyReminded is returned by a ReminderLog when the appointment has
// already been reminded within the current window.
var ErrAlreadyReminded = errors.New("already reminded in this window")

// UpcomingAppointment is the slice of an appointment the sweeper needs.
type UpcomingAppointment struct {
	ID        uint
	PatientID uint
	DoctorID  uint
	Date      string
	StartTime string
}

// AppointmentSource lists scheduled appointments starting inside the
// lookahead window. Cancelled and completed appointments never appear.
type AppointmentSource interface {
	Upcoming(now time.Time, lookahead time.Duration) ([]UpcomingAppointment, error)
}

// ReminderLog is the dedup gate. Record must be atomic: when two sweeps
// race, exactly one Record call wins and the other gets ErrAlreadyReminded.
type ReminderLog interface {
	Record(appointmentID uint, windowKey, reference string) error
	MarkFailed(appointmentID uint, windowKey string) error
}

// Dispatcher delivers one reminder through an external channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, reminder Reminder) error
}

// Reminder is one queued notification about an upcoming appointment.
type Reminder struct {
	Reference     string
	AppointmentID uint
	PatientID     uint
	Title         string
	Body          string
}

// SweepResult reports what a single sweep did. Failures never abort the
// sweep; they are collected here per appointment.
type SweepResult struct {
	Dispatched int
	Deduped    int
	Failed     int
	Errors     []error
}

// Sweeper scans upcoming appointments and emits at most one reminder per
// appointment per window. Safe to run from a cron trigger and the HTTP
// trigger at the same time: the ReminderLog write is the arbiter.
type Sweeper struct {
	source     AppointmentSource
	reminders  ReminderLog
	dispatcher Dispatcher
	lookahead  time.Duration
}

func NewSweeper(source AppointmentSource, reminders ReminderLog, dispatcher Dispatcher, lookahead time.Duration) *Sweeper {
	if lookahead <= 0 {
		lookahead = 24 * time.Hour
	}
	return &Sweeper{source: source, reminders: reminders, dispatcher: dispatcher, lookahead: lookahead}
}

// WindowKey names the configured reminder window. The dedup key is
// (appointment, window key), so adding a second window later (say "2h")
// produces its own reminder stream without touching this one.
func (s *Sweeper) WindowKey() string {
	return fmt.Sprintf("%dh", int(s.lookahead.Hours()))
}

// Run performs one sweep at the given instant.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	upcoming, err := s.source.Upcoming(now, s.lookahead)
	if err != nil {
		return result, fmt.Errorf("listing upcoming appointments: %w", err)
	}

	windowKey := s.WindowKey()
	for _, appt := range upcoming {
		reference := uuid.New().String()

		// Claim the dedup record before dispatching. Losing the claim
		// means another sweep already owns this reminder.
		if err := s.reminders.Record(appt.ID, windowKey, reference); err != nil {
			if errors.Is(err, ErrAlreadyReminded) {
				result.Deduped++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("appointment %d: recording reminder: %w", appt.ID, err))
			continue
		}

		reminder := Reminder{
			Reference:     reference,
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			Title:         "Upcoming appointment",
			Body:          fmt.Sprintf("You have an appointment on %s at %s.", appt.Date, appt.StartTime),
		}

		if err := s.dispatcher.Dispatch(ctx, reminder); err != nil {
			log.Printf("Error dispatching reminder for appointment %d: %v", appt.ID, err)
			if markErr := s.reminders.MarkFailed(appt.ID, windowKey); markErr != nil {
				log.Printf("Error marking reminder failed for appointment %d: %v", appt.ID, markErr)
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("appointment %d: %w", appt.ID, err))
			continue
		}
		result.Dispatched++
	}

	return result, nil
}

// GormAppointmentSource reads scheduled appointments from the database and
// keeps the ones whose start instant falls inside [now, now+lookahead).
type GormAppointmentSource struct {
	db *gorm.DB
}

func NewGormAppointmentSource(db *gorm.DB) *GormAppointmentSource {
	return &GormAppointmentSource{db: db}
}

func (s *GormAppointmentSource) Upcoming(now time.Time, lookahead time.Duration) ([]UpcomingAppointment, error) {
	from := now.Format("2006-01-02")
	until := now.Add(lookahead).Format("2006-01-02")

	var appointments []models.Appointment
	if err := s.db.Where("status = ? AND date >= ? AND date <= ?",
		models.AppointmentScheduled, from, until).
		Find(&appointments).Error; err != nil {
		return nil, err
	}

	cutoff := now.Add(lookahead)
	upcoming := make([]UpcomingAppointment, 0, len(appointments))
	for _, appt := range appointments {
		start, err := time.ParseInLocation("2006-01-02 15:04",
			strings.TrimSpace(appt.Date+" "+appt.StartTime), now.Location())
		if err != nil {
			log.Printf("Skipping appointment %d with unparseable start: %v", appt.ID, err)
			continue
		}
		if start.Before(now) || !start.Before(cutoff) {
			continue
		}
		upcoming = append(upcoming, UpcomingAppointment{
			ID:        appt.ID,
			PatientID: appt.PatientID,
			DoctorID:  appt.DoctorID,
			Date:      appt.Date,
			StartTime: appt.StartTime,
		})
	}
	return upcoming, nil
}

// GormReminderLog persists ReminderRecord rows; the unique index on
// (appointment_id, window_key) makes Record atomic across sweeps.
type GormReminderLog struct {
	db *gorm.DB
}

func NewGormReminderLog(db *gorm.DB) *GormReminderLog {
	return &GormReminderLog{db: db}
}

func (l *GormReminderLog) Record(appointmentID uint, windowKey, reference string) error {
	record := models.ReminderRecord{
		AppointmentID: appointmentID,
		WindowKey:     windowKey,
		Reference:     reference,
		Status:        "sent",
		SentAt:        time.Now(),
	}
	if err := l.db.Create(&record).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") ||
			strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrAlreadyReminded
		}
		return err
	}
	return nil
}

func (l *GormReminderLog) MarkFailed(appointmentID uint, windowKey string) error {
	return l.db.Model(&models.ReminderRecord{}).
		Where("appointment_id = ? AND window_key = ?", appointmentID, windowKey).
		Update("status", "failed").Error
}
