package schedule

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// DoctorProvider returns the configured slot origins for a doctor.
type DoctorProvider interface {
	WorkingHours(doctorID uint) ([]string, error)
}

// AppointmentProvider returns the non-cancelled appointments occupying a
// doctor's day.
type AppointmentProvider interface {
	ActiveIntervals(doctorID uint, date string) ([]BookedInterval, error)
}

type ScheduleHandler struct {
	doctors      DoctorProvider
	appointments AppointmentProvider
}

func NewScheduleHandler(doctors DoctorProvider, appointments AppointmentProvider) *ScheduleHandler {
	return &ScheduleHandler{doctors: doctors, appointments: appointments}
}

func (h *ScheduleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/slots", h.GetSlots).Methods("GET")
}

// GetSlots computes the bookable slots for a doctor on a date.
func (h *ScheduleHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	doctorIDParam := r.URL.Query().Get("doctorId")
	date := r.URL.Query().Get("date")
	if doctorIDParam == "" || date == "" {
		http.Error(w, "doctorId and date are required", http.StatusBadRequest)
		return
	}

	doctorID, err := strconv.ParseUint(doctorIDParam, 10, 64)
	if err != nil {
		http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	workingHours, err := h.doctors.WorkingHours(uint(doctorID))
	if err != nil {
		log.Printf("Error loading doctor %d: %v", doctorID, err)
		http.Error(w, "Error retrieving doctor schedule", http.StatusInternalServerError)
		return
	}

	booked, err := h.appointments.ActiveIntervals(uint(doctorID), date)
	if err != nil {
		log.Printf("Error loading appointments for doctor %d on %s: %v", doctorID, date, err)
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	slots := ComputeSlots(date, workingHours, booked)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":         true,
		"available_slots": slots,
		"count":           len(slots),
	})
}

// GormDoctorProvider reads working hours from the doctors table.
type GormDoctorProvider struct {
	db *gorm.DB
}

func NewGormDoctorProvider(db *gorm.DB) *GormDoctorProvider {
	return &GormDoctorProvider{db: db}
}

func (p *GormDoctorProvider) WorkingHours(doctorID uint) ([]string, error) {
	var doctor models.Doctor
	if err := p.db.First(&doctor, doctorID).Error; err != nil {
		return nil, err
	}
	return doctor.SlotOrigins(), nil
}

// GormAppointmentProvider reads the occupied intervals from the
// appointments table, excluding cancelled rows.
type GormAppointmentProvider struct {
	db *gorm.DB
}

func NewGormAppointmentProvider(db *gorm.DB) *GormAppointmentProvider {
	return &GormAppointmentProvider{db: db}
}

func (p *GormAppointmentProvider) ActiveIntervals(doctorID uint, date string) ([]BookedInterval, error) {
	var appointments []models.Appointment
	if err := p.db.Where("doctor_id = ? AND date = ?", doctorID, date).
		Find(&appointments).Error; err != nil {
		return nil, err
	}
	return IntervalsFromAppointments(appointments), nil
}

// IntervalsFromAppointments converts a day's appointments into occupied
// intervals. Cancelled appointments hold no time and never reduce
// availability.
func IntervalsFromAppointments(appointments []models.Appointment) []BookedInterval {
	booked := make([]BookedInterval, 0, len(appointments))
	for _, appt := range appointments {
		if appt.Status == models.AppointmentCancelled {
			continue
		}
		booked = append(booked, BookedInterval{
			StartTime:       appt.StartTime,
			DurationMinutes: appt.DurationMinutes,
		})
	}
	return booked
}
