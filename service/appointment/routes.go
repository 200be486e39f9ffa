package appointment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/Amoako-T/Medlink-server/cmd/utils"
	"github.com/Amoako-T/Medlink-server/service/schedule"
	"github.com/Amoako-T/Medlink-server/service/ws"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentHandler struct {
    db   *gorm.DB
    feed *ws.Hub
}

func NewAppointmentHandler(db *gorm.DB, feed *ws.Hub) *AppointmentHandler {
    return &AppointmentHandler{db: db, feed: feed}
}

func (h *AppointmentHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/appointments/book", utils.AuthMiddleware(h.BookAppointment)).Methods("POST")
    router.HandleFunc("/appointments", utils.AuthMiddleware(h.GetAllAppointments)).Methods("GET")
    router.HandleFunc("/appointments/{id}", utils.AuthMiddleware(h.GetAppointment)).Methods("GET")
    router.HandleFunc("/appointments/{id}/cancel", utils.AuthMiddleware(h.CancelAppointment)).Methods("PATCH")
    router.HandleFunc("/appointments/{id}/complete", utils.AuthMiddleware(h.CompleteAppointment)).Methods("PATCH")
    router.HandleFunc("/appointments/patient/{patientId}", utils.AuthMiddleware(h.GetPatientAppointments)).Methods("GET")
    router.HandleFunc("/appointments/doctor/{doctorId}", utils.AuthMiddleware(h.GetDoctorAppointments)).Methods("GET")
}

// BookAppointment validates and persists a booking. The conflict check runs
// inside the transaction against the latest rows, not against whatever slot
// list the client saw earlier, so racing clients cannot double-book.
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
    var bookingRequest struct {
        PatientID         uint   `json:"patient_id"`
        DoctorID          uint   `json:"doctor_id"`
        AppointmentTypeID uint   `json:"appointment_type_id"`
        Date              string `json:"date"`
        StartTime         string `json:"start_time"`
        Notes             string `json:"notes"`
    }

    if err := json.NewDecoder(r.Body).Decode(&bookingRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if bookingRequest.PatientID == 0 || bookingRequest.DoctorID == 0 ||
        bookingRequest.Date == "" || bookingRequest.StartTime == "" {
        http.Error(w, "patient_id, doctor_id, date and start_time are required", http.StatusBadRequest)
        return
    }
    if _, err := time.Parse("2006-01-02", bookingRequest.Date); err != nil {
        http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
        return
    }
    if _, err := schedule.ParseClock(bookingRequest.StartTime); err != nil {
        http.Error(w, "Invalid start time. Use HH:MM", http.StatusBadRequest)
        return
    }

    tx := h.db.Begin()

    // Lock the doctor row so concurrent bookings for the same doctor
    // serialize: the second transaction blocks here until the first
    // commits, then sees its appointment in the conflict check below.
    var doctor models.Doctor
    if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
        First(&doctor, bookingRequest.DoctorID).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Doctor not found", http.StatusNotFound)
        return
    }

    duration := schedule.DefaultDurationMinutes
    if bookingRequest.AppointmentTypeID != 0 {
        var apptType models.AppointmentType
        if err := tx.First(&apptType, bookingRequest.AppointmentTypeID).Error; err != nil {
            tx.Rollback()
            http.Error(w, "Appointment type not found", http.StatusNotFound)
            return
        }
        if apptType.DurationMinutes >= 1 {
            duration = apptType.DurationMinutes
        }
    }

    // Re-validate against the latest schedule inside the transaction.
    var existing []models.Appointment
    if err := tx.Where("doctor_id = ? AND date = ?",
        bookingRequest.DoctorID, bookingRequest.Date).
        Find(&existing).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error checking schedule", http.StatusInternalServerError)
        return
    }

    booked := schedule.IntervalsFromAppointments(existing)

    err := ValidateBooking(BookingRequest{
        DoctorID:        bookingRequest.DoctorID,
        Date:            bookingRequest.Date,
        StartTime:       bookingRequest.StartTime,
        DurationMinutes: duration,
    }, booked)
    if errors.Is(err, ErrSlotUnavailable) {
        tx.Rollback()
        http.Error(w, "Time slot already booked", http.StatusConflict)
        return
    }
    if err != nil {
        tx.Rollback()
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }

    appointment := models.Appointment{
        PatientID:         bookingRequest.PatientID,
        DoctorID:          bookingRequest.DoctorID,
        AppointmentTypeID: bookingRequest.AppointmentTypeID,
        Date:              bookingRequest.Date,
        StartTime:         bookingRequest.StartTime,
        DurationMinutes:   duration,
        Status:            models.AppointmentScheduled,
        Notes:             bookingRequest.Notes,
    }

    if err := tx.Create(&appointment).Error; err != nil {
        tx.Rollback()
        if isDuplicateKey(err) {
            http.Error(w, "Time slot already booked", http.StatusConflict)
            return
        }
        http.Error(w, "Error creating appointment", http.StatusInternalServerError)
        return
    }

    if err := tx.Commit().Error; err != nil {
        http.Error(w, "Error completing booking", http.StatusInternalServerError)
        return
    }

    h.db.Preload("Patient").Preload("Doctor").First(&appointment, appointment.ID)

    if h.feed != nil {
        h.feed.Publish(ws.ScheduleEvent{
            Type:          "booked",
            AppointmentID: appointment.ID,
            DoctorID:      appointment.DoctorID,
            Date:          appointment.Date,
            StartTime:     appointment.StartTime,
        })
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    if page < 1 {
        page = 1
    }
    pageSize := 100

    query := h.db.Model(&models.Appointment{}).Preload("Patient").Preload("Doctor")

    if status := r.URL.Query().Get("status"); status != "" {
        query = query.Where("status = ?", status)
    }
    if date := r.URL.Query().Get("date"); date != "" {
        query = query.Where("date = ?", date)
    }

    var total int64
    query.Count(&total)

    var appointments []models.Appointment
    if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
        Order("date DESC, start_time DESC").Find(&appointments).Error; err != nil {
        http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "appointments": appointments,
        "total":       total,
        "page":        page,
        "page_size":   pageSize,
        "total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
    })
}

// GetAppointment retrieves a specific appointment by ID
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
        return
    }

    var appointment models.Appointment
    if err := h.db.Preload("Patient").Preload("Doctor").Preload("AppointmentType").
        First(&appointment, appointmentID).Error; err != nil {
        http.Error(w, "Appointment not found", http.StatusNotFound)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(appointment)
}

// CancelAppointment moves a scheduled appointment to cancelled, freeing its
// slot. Completed or already cancelled appointments cannot be cancelled.
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
    h.transitionStatus(w, r, models.AppointmentCancelled, "cancelled")
}

// CompleteAppointment moves a scheduled appointment to completed.
func (h *AppointmentHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
    h.transitionStatus(w, r, models.AppointmentCompleted, "completed")
}

func (h *AppointmentHandler) transitionStatus(w http.ResponseWriter, r *http.Request, target, eventType string) {
    vars := mux.Vars(r)
    appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
        return
    }

    var appointment models.Appointment
    if err := h.db.First(&appointment, appointmentID).Error; err != nil {
        http.Error(w, "Appointment not found", http.StatusNotFound)
        return
    }

    if !CanTransition(appointment.Status) {
        http.Error(w, "Only scheduled appointments can be "+target, http.StatusBadRequest)
        return
    }

    if err := h.db.Model(&appointment).Update("status", target).Error; err != nil {
        log.Printf("Error updating appointment %d to %s: %v", appointment.ID, target, err)
        http.Error(w, "Error updating appointment", http.StatusInternalServerError)
        return
    }

    if h.feed != nil {
        h.feed.Publish(ws.ScheduleEvent{
            Type:          eventType,
            AppointmentID: appointment.ID,
            DoctorID:      appointment.DoctorID,
            Date:          appointment.Date,
            StartTime:     appointment.StartTime,
        })
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Appointment " + target + " successfully",
    })
}

// GetPatientAppointments retrieves all appointments for a specific patient
func (h *AppointmentHandler) GetPatientAppointments(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    patientID, err := strconv.ParseUint(vars["patientId"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid patient ID", http.StatusBadRequest)
        return
    }
    h.listAppointments(w, r, "patient_id = ?", patientID, "Doctor")
}

// GetDoctorAppointments retrieves all appointments for a specific doctor
func (h *AppointmentHandler) GetDoctorAppointments(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    doctorID, err := strconv.ParseUint(vars["doctorId"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
        return
    }
    h.listAppointments(w, r, "doctor_id = ?", doctorID, "Patient")
}

func (h *AppointmentHandler) listAppointments(w http.ResponseWriter, r *http.Request, where string, id uint64, preload string) {
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    if page < 1 {
        page = 1
    }
    pageSize := 100

    query := h.db.Model(&models.Appointment{}).Where(where, id).
        Preload(preload).Preload("AppointmentType")

    var total int64
    query.Count(&total)

    var appointments []models.Appointment
    if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
        Order("date DESC, start_time DESC").Find(&appointments).Error; err != nil {
        http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "appointments": appointments,
        "total":       total,
        "page":        page,
        "page_size":   pageSize,
        "total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
    })
}
