package models

import "time"

// Preference is a named JSON blob of user preferences.
type Preference struct {
	Name      string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:text"`
	UpdatedAt time.Time
}
