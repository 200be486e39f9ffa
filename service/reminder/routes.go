package reminder

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/Amoako-T/Medlink-server/cmd/utils"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// ReminderHandler exposes the manual sweep trigger and the device registry
// that the push channel delivers to.
type ReminderHandler struct {
	db      *gorm.DB
	sweeper *Sweeper
}

func NewReminderHandler(db *gorm.DB, sweeper *Sweeper) *ReminderHandler {
	return &ReminderHandler{db: db, sweeper: sweeper}
}

func (h *ReminderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/notifications/reminders", h.TriggerSweep).Methods("POST", "GET")
	router.HandleFunc("/devices", utils.AuthMiddleware(h.RegisterDevice)).Methods("POST")
	router.HandleFunc("/devices/{id}", utils.AuthMiddleware(h.DeleteDevice)).Methods("DELETE")
	router.HandleFunc("/patients/{patientId}/devices", utils.AuthMiddleware(h.GetPatientDevices)).Methods("GET")
}

// TriggerSweep runs one reminder sweep. Per-appointment dispatch failures
// are reported in the payload but do not fail the request; the sweep only
// errors as a whole when the appointment scan itself fails.
func (h *ReminderHandler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweeper.Run(r.Context(), time.Now())
	if err != nil {
		log.Printf("Reminder sweep failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Error running reminder sweep",
		})
		return
	}

	for _, itemErr := range result.Errors {
		log.Printf("Reminder sweep item error: %v", itemErr)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Sweep complete: %d dispatched, %d deduped, %d failed",
			result.Dispatched, result.Deduped, result.Failed),
		"dispatched": result.Dispatched,
		"deduped":    result.Deduped,
		"failed":     result.Failed,
	})
}

// RegisterDevice registers a device token for push reminders.
func (h *ReminderHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var device models.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if device.UserID == "" {
		// Default to the authenticated caller
		callerID, err := utils.GetUserIDFromContext(r)
		if err != nil {
			http.Error(w, "UserID is required", http.StatusBadRequest)
			return
		}
		device.UserID = strconv.FormatUint(uint64(callerID), 10)
	}

	if device.Token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	if _, err := expo.NewExponentPushToken(device.Token); err != nil {
		http.Error(w, "Invalid Expo push token format", http.StatusBadRequest)
		return
	}

	var existingDevice models.Device
	result := h.db.Where("token = ? AND user_id = ?", device.Token, device.UserID).First(&existingDevice)

	if result.Error == nil {
		existingDevice.UpdatedAt = time.Now()
		existingDevice.DeviceType = device.DeviceType
		existingDevice.DeviceName = device.DeviceName
		if err := h.db.Save(&existingDevice).Error; err != nil {
			http.Error(w, "Error updating device", http.StatusInternalServerError)
			return
		}
		device = existingDevice
	} else {
		if err := h.db.Create(&device).Error; err != nil {
			http.Error(w, "Error creating device", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Device registered successfully",
		"device":  device,
	})
}

// GetPatientDevices gets all registered devices for a patient
func (h *ReminderHandler) GetPatientDevices(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID := vars["patientId"]

	if patientID == "" {
		http.Error(w, "Patient ID is required", http.StatusBadRequest)
		return
	}

	var devices []models.Device
	if err := h.db.Where("user_id = ?", patientID).Find(&devices).Error; err != nil {
		http.Error(w, "Error retrieving devices", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(devices)
}

// DeleteDevice deletes a device token
func (h *ReminderHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid device ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.Device{}, deviceID)
	if result.Error != nil {
		http.Error(w, "Error deleting device", http.StatusInternalServerError)
		return
	}

	if result.RowsAffected == 0 {
		http.Error(w, "Device not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Device deleted successfully",
	})
}
