package model

import "time"

// Room represents a bookable meeting room.
type Room struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:256;not null"`
	Capacity  int    `gorm:"not null"`
	Location  string `gorm:"size:256"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Equipments []Equipment `gorm:"many2many:room_equipments;"`
}
