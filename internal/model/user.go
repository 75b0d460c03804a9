package model

import "time"

// Role values stored on users and carried in JWT claims.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account that can authenticate and own reservations.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;size:256;not null"`
	DisplayName  string    `gorm:"size:256;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	Role         string    `gorm:"size:16;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}
