package models

import (
	"strings"

	"gorm.io/gorm"
)

type Doctor struct {
	gorm.Model
	UserID    uint   `gorm:"column:user_id;not null" json:"user_id"`
	Specialty string `gorm:"column:specialty;size:255" json:"specialty"`
	Bio       string `gorm:"column:bio;type:text" json:"bio"`
	Verified  bool   `gorm:"column:verified;default:false" json:"verified"`

	// Comma separated HH:MM slot origins, e.g. "09:00,10:00,11:00".
	// Empty means the clinic default hours apply.
	WorkingHours string `gorm:"column:working_hours;type:text" json:"working_hours"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// SlotOrigins splits the stored working hours into ordered HH:MM strings.
func (d *Doctor) SlotOrigins() []string {
	if strings.TrimSpace(d.WorkingHours) == "" {
		return nil
	}
	parts := strings.Split(d.WorkingHours, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
