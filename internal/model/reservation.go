package model

import "time"

// ReservationStatus is the lifecycle state of a reservation. Cancelled is
// terminal.
type ReservationStatus int

const (
	StatusActive    ReservationStatus = 0
	StatusCancelled ReservationStatus = 1
)

func (s ReservationStatus) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Reservation books a room for a half-open [StartTimeUtc, EndTimeUtc) slot.
// The partial unique index on (room_id, start_time_utc, end_time_utc) is the
// persistence-layer backstop against concurrent double-booking. It covers
// Active rows only: cancelling a reservation drops it out of the key space,
// so the exact slot can be booked again. The store additionally re-checks
// overlap inside the insert transaction.
type Reservation struct {
	ID           int64             `gorm:"primaryKey"`
	RoomID       int64             `gorm:"not null;index;uniqueIndex:idx_room_slot,where:status = 0"`
	UserID       string            `gorm:"size:36;not null;index"`
	StartTimeUtc time.Time         `gorm:"not null;uniqueIndex:idx_room_slot"`
	EndTimeUtc   time.Time         `gorm:"not null;uniqueIndex:idx_room_slot"`
	Status       ReservationStatus `gorm:"not null;default:0"`
	CreatedAtUtc time.Time         `gorm:"not null"`

	// Associations
	Room Room `gorm:"constraint:OnDelete:CASCADE"`
	User User
}
