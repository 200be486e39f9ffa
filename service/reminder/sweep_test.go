package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type mockSource struct {
	appointments []UpcomingAppointment
	err          error
}

func (m *mockSource) Upcoming(now time.Time, lookahead time.Duration) ([]UpcomingAppointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.appointments, nil
}

type mockLog struct {
	records map[string]string // "apptID/windowKey" -> status
}

func newMockLog() *mockLog {
	return &mockLog{records: make(map[string]string)}
}

func (m *mockLog) key(appointmentID uint, windowKey string) string {
	return fmt.Sprintf("%d/%s", appointmentID, windowKey)
}

func (m *mockLog) Record(appointmentID uint, windowKey, reference string) error {
	k := m.key(appointmentID, windowKey)
	if _, ok := m.records[k]; ok {
		return ErrAlreadyReminded
	}
	m.records[k] = "sent"
	return nil
}

func (m *mockLog) MarkFailed(appointmentID uint, windowKey string) error {
	m.records[m.key(appointmentID, windowKey)] = "failed"
	return nil
}

type mockDispatcher struct {
	dispatched []Reminder
	failFor    map[uint]bool
}

func (m *mockDispatcher) Dispatch(_ context.Context, reminder Reminder) error {
	if m.failFor[reminder.AppointmentID] {
		return fmt.Errorf("delivery refused")
	}
	m.dispatched = append(m.dispatched, reminder)
	return nil
}

func TestSweepDispatchesUpcoming(t *testing.T) {
	source := &mockSource{appointments: []UpcomingAppointment{
		{ID: 1, PatientID: 10, Date: "2026-09-02", StartTime: "09:00"},
		{ID: 2, PatientID: 11, Date: "2026-09-02", StartTime: "10:00"},
	}}
	dispatcher := &mockDispatcher{}
	sweeper := NewSweeper(source, newMockLog(), dispatcher, 24*time.Hour)

	result, err := sweeper.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Dispatched != 2 || result.Failed != 0 {
		t.Fatalf("expected 2 dispatched, got %+v", result)
	}
	if len(dispatcher.dispatched) != 2 {
		t.Fatalf("dispatcher saw %d reminders", len(dispatcher.dispatched))
	}
	if dispatcher.dispatched[0].Reference == "" {
		t.Error("reminders must carry a reference")
	}
}

func TestSweepDedupAcrossRuns(t *testing.T) {
	// Two back-to-back sweeps with no state change dispatch exactly once.
	source := &mockSource{appointments: []UpcomingAppointment{
		{ID: 1, PatientID: 10, Date: "2026-09-02", StartTime: "09:00"},
	}}
	dispatcher := &mockDispatcher{}
	sweeper := NewSweeper(source, newMockLog(), dispatcher, 24*time.Hour)

	now := time.Now()
	first, err := sweeper.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	second, err := sweeper.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	if first.Dispatched != 1 || second.Dispatched != 0 || second.Deduped != 1 {
		t.Fatalf("expected one dispatch total, got first=%+v second=%+v", first, second)
	}
	if len(dispatcher.dispatched) != 1 {
		t.Fatalf("dispatcher saw %d reminders across both runs", len(dispatcher.dispatched))
	}
}

func TestSweepCancellationSuppressesReminder(t *testing.T) {
	// The source only yields scheduled appointments, so an appointment
	// cancelled before the sweep simply never reaches the dispatcher.
	source := &mockSource{appointments: []UpcomingAppointment{
		{ID: 1, PatientID: 10, Date: "2026-09-02", StartTime: "09:00"},
	}}
	dispatcher := &mockDispatcher{}
	sweeper := NewSweeper(source, newMockLog(), dispatcher, 24*time.Hour)

	source.appointments = nil // cancelled before the sweep ran

	result, err := sweeper.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Dispatched != 0 || len(dispatcher.dispatched) != 0 {
		t.Fatalf("cancelled appointment must not be reminded: %+v", result)
	}
}

func TestSweepPartialFailureIsolation(t *testing.T) {
	source := &mockSource{appointments: []UpcomingAppointment{
		{ID: 1, PatientID: 10, Date: "2026-09-02", StartTime: "09:00"},
		{ID: 2, PatientID: 11, Date: "2026-09-02", StartTime: "10:00"},
		{ID: 3, PatientID: 12, Date: "2026-09-02", StartTime: "11:00"},
	}}
	dispatcher := &mockDispatcher{failFor: map[uint]bool{2: true}}
	reminderLog := newMockLog()
	sweeper := NewSweeper(source, reminderLog, dispatcher, 24*time.Hour)

	result, err := sweeper.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("a failing item must not fail the sweep: %v", err)
	}
	if result.Dispatched != 2 || result.Failed != 1 || len(result.Errors) != 1 {
		t.Fatalf("expected 2 dispatched / 1 failed, got %+v", result)
	}
	if reminderLog.records[reminderLog.key(2, sweeper.WindowKey())] != "failed" {
		t.Error("failed dispatch must be marked failed in the log")
	}
}

func TestSweepSourceFailure(t *testing.T) {
	source := &mockSource{err: fmt.Errorf("connection refused")}
	sweeper := NewSweeper(source, newMockLog(), &mockDispatcher{}, 24*time.Hour)

	if _, err := sweeper.Run(context.Background(), time.Now()); err == nil {
		t.Fatal("scan failure must surface as a sweep error")
	}
}

func TestWindowKeyFollowsLookahead(t *testing.T) {
	sweeper := NewSweeper(&mockSource{}, newMockLog(), &mockDispatcher{}, 24*time.Hour)
	if got := sweeper.WindowKey(); got != "24h" {
		t.Errorf("WindowKey() = %q, want 24h", got)
	}

	short := NewSweeper(&mockSource{}, newMockLog(), &mockDispatcher{}, 2*time.Hour)
	if got := short.WindowKey(); got != "2h" {
		t.Errorf("WindowKey() = %q, want 2h", got)
	}
}
