package models

import (
	"time"

	"gorm.io/gorm"
)

type Device struct {
    gorm.Model
    Token      string `gorm:"not null;uniqueIndex:idx_token_user" json:"token"`
    UserID     string `gorm:"not null;index;uniqueIndex:idx_token_user" json:"userId"`
    DeviceType string `gorm:"type:varchar(50)" json:"deviceType"`
    DeviceName string `gorm:"type:varchar(100)" json:"deviceName,omitempty"`
}

// ReminderRecord is the dedup gate for reminder dispatch: the unique index
// on (appointment_id, window_key) guarantees at most one reminder per
// appointment per reminder window, even across overlapping sweeps.
type ReminderRecord struct {
    gorm.Model
    AppointmentID uint      `gorm:"not null;uniqueIndex:idx_appt_window" json:"appointment_id"`
    WindowKey     string    `gorm:"size:32;not null;uniqueIndex:idx_appt_window" json:"window_key"`
    Reference     string    `gorm:"size:64" json:"reference"`
    Status        string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
    SentAt        time.Time `json:"sent_at"`
}

type NotificationHistory struct {
    gorm.Model
    UserID  string    `gorm:"index" json:"userId"`
    Title   string    `json:"title"`
    Body    string    `json:"body"`
    Data    string    `gorm:"type:text" json:"data,omitempty"`
    Status  string    `gorm:"type:varchar(20)" json:"status"`
    SentAt  time.Time `json:"sentAt"`
}
