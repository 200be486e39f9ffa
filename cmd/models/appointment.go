package models

import (
    "gorm.io/gorm"
)

const (
    AppointmentScheduled = "scheduled"
    AppointmentCancelled = "cancelled"
    AppointmentCompleted = "completed"
)

type AppointmentType struct {
    gorm.Model
    Name            string `gorm:"column:name;size:255;not null" json:"name"`
    DurationMinutes int    `gorm:"column:duration_minutes;not null;default:30" json:"duration_minutes"`
}

type Appointment struct {
    gorm.Model
    PatientID         uint   `gorm:"not null" json:"patient_id"`
    DoctorID          uint   `gorm:"not null;index:idx_doctor_day" json:"doctor_id"`
    AppointmentTypeID uint   `json:"appointment_type_id"`
    Date              string `gorm:"size:10;not null;index:idx_doctor_day" json:"date"`
    StartTime         string `gorm:"size:5;not null" json:"start_time"`
    DurationMinutes   int    `gorm:"not null;default:30" json:"duration_minutes"`
    Status            string `gorm:"size:20;not null;default:'scheduled'" json:"status"`
    Notes             string `gorm:"type:text" json:"notes,omitempty"`

    Patient         *User            `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
    Doctor          *Doctor          `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
    AppointmentType *AppointmentType `gorm:"foreignKey:AppointmentTypeID" json:"appointment_type,omitempty"`
}
