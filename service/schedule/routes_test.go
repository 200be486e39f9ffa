package schedule

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/gorilla/mux"
)

type mockDoctorProvider struct {
	hours map[uint][]string
	err   error
}

func (m *mockDoctorProvider) WorkingHours(doctorID uint) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hours[doctorID], nil
}

type mockAppointmentProvider struct {
	booked map[string][]BookedInterval
	err    error
}

func (m *mockAppointmentProvider) ActiveIntervals(doctorID uint, date string) ([]BookedInterval, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.booked[fmt.Sprintf("%d/%s", doctorID, date)], nil
}

func newTestRouter(doctors DoctorProvider, appointments AppointmentProvider) *mux.Router {
	router := mux.NewRouter()
	NewScheduleHandler(doctors, appointments).RegisterRoutes(router)
	return router
}

func TestGetSlots(t *testing.T) {
	doctors := &mockDoctorProvider{hours: map[uint][]string{
		7: {"09:00", "10:00", "11:00"},
	}}
	appointments := &mockAppointmentProvider{booked: map[string][]BookedInterval{
		"7/2026-09-01": {{StartTime: "10:00", DurationMinutes: 30}},
	}}
	router := newTestRouter(doctors, appointments)

	req := httptest.NewRequest(http.MethodGet, "/slots?doctorId=7&date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success        bool   `json:"success"`
		AvailableSlots []Slot `json:"available_slots"`
		Count          int    `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Count != 2 || len(resp.AvailableSlots) != 2 {
		t.Fatalf("expected 2 slots, got count=%d len=%d", resp.Count, len(resp.AvailableSlots))
	}
	if resp.AvailableSlots[0].StartTime != "09:00" || resp.AvailableSlots[1].StartTime != "11:00" {
		t.Errorf("unexpected slots: %v", resp.AvailableSlots)
	}
}

func TestGetSlotsMissingParams(t *testing.T) {
	router := newTestRouter(&mockDoctorProvider{}, &mockAppointmentProvider{})

	for _, target := range []string{"/slots", "/slots?doctorId=7", "/slots?date=2026-09-01"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestGetSlotsProviderFailure(t *testing.T) {
	doctors := &mockDoctorProvider{err: fmt.Errorf("connection refused")}
	router := newTestRouter(doctors, &mockAppointmentProvider{})

	req := httptest.NewRequest(http.MethodGet, "/slots?doctorId=7&date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestGetSlotsInvalidDate(t *testing.T) {
	router := newTestRouter(&mockDoctorProvider{}, &mockAppointmentProvider{})

	req := httptest.NewRequest(http.MethodGet, "/slots?doctorId=7&date=01-09-2026", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// fixtureAppointmentProvider feeds raw appointment rows through the same
// conversion the GORM provider uses.
type fixtureAppointmentProvider struct {
	appointments []models.Appointment
}

func (f *fixtureAppointmentProvider) ActiveIntervals(doctorID uint, date string) ([]BookedInterval, error) {
	return IntervalsFromAppointments(f.appointments), nil
}

func TestGetSlotsCancelledAppointmentFreesSlot(t *testing.T) {
	doctors := &mockDoctorProvider{hours: map[uint][]string{
		7: {"09:00", "10:00", "11:00"},
	}}
	appointments := &fixtureAppointmentProvider{appointments: []models.Appointment{
		{DoctorID: 7, Date: "2026-09-01", StartTime: "09:00", DurationMinutes: 30, Status: models.AppointmentScheduled},
		{DoctorID: 7, Date: "2026-09-01", StartTime: "10:00", DurationMinutes: 30, Status: models.AppointmentCancelled},
	}}
	router := newTestRouter(doctors, appointments)

	req := httptest.NewRequest(http.MethodGet, "/slots?doctorId=7&date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AvailableSlots []Slot `json:"available_slots"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.AvailableSlots) != 2 {
		t.Fatalf("expected 2 slots, got %v", resp.AvailableSlots)
	}
	// The cancelled 10:00 appointment holds no time; only the scheduled
	// 09:00 one blocks its slot.
	if resp.AvailableSlots[0].StartTime != "10:00" || resp.AvailableSlots[1].StartTime != "11:00" {
		t.Errorf("unexpected slots: %v", resp.AvailableSlots)
	}
}

func TestIntervalsFromAppointmentsSkipsCancelled(t *testing.T) {
	booked := IntervalsFromAppointments([]models.Appointment{
		{StartTime: "09:00", DurationMinutes: 30, Status: models.AppointmentScheduled},
		{StartTime: "10:00", DurationMinutes: 60, Status: models.AppointmentCancelled},
		{StartTime: "12:00", DurationMinutes: 30, Status: models.AppointmentCompleted},
	})
	if len(booked) != 2 {
		t.Fatalf("expected 2 intervals, got %v", booked)
	}
	if booked[0].StartTime != "09:00" || booked[1].StartTime != "12:00" {
		t.Errorf("unexpected intervals: %v", booked)
	}
}
