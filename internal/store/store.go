// Package store owns all database access. Handlers and services depend on
// the Store interface, never on GORM directly, so tests can run against an
// in-memory database.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"booking-rooms-backend/internal/model"
)

// Sentinel errors returned by store operations. Services translate these
// into the tagged business-error taxonomy.
var (
	ErrNotFound         = errors.New("record not found")
	ErrOverlap          = errors.New("reservation overlaps an existing active reservation")
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")
	ErrRoomInUse        = errors.New("room has non-cancelled reservations")
	ErrDuplicateEmail   = errors.New("email is already registered")
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// Rooms
	ListRooms(ctx context.Context) ([]model.Room, error)
	GetRoom(ctx context.Context, id int64) (*model.Room, error)
	CreateRoom(ctx context.Context, room *model.Room, equipmentIDs []int64) error
	UpdateRoom(ctx context.Context, room *model.Room, equipmentIDs []int64) error
	DeleteRoom(ctx context.Context, id int64) error
	RoomExists(ctx context.Context, id int64) (bool, error)

	// Equipment
	ListEquipments(ctx context.Context) ([]model.Equipment, error)
	GetEquipment(ctx context.Context, id int64) (*model.Equipment, error)

	// Reservations
	HasOverlap(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
	CreateReservation(ctx context.Context, res *model.Reservation) error
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]model.Reservation, error)
	ListAllReservations(ctx context.Context) ([]model.Reservation, error)
	CancelReservation(ctx context.Context, id int64) (*model.Reservation, error)

	// Room watch subscriptions
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription, roomIDs []int64) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// overlapQuery builds the half-open interval overlap predicate: two slots
// [s1,e1) and [s2,e2) collide iff s1 < e2 AND e1 > s2. Only Active
// reservations count; cancelled ones never block a booking.
func overlapQuery(tx *gorm.DB, roomID int64, start, end time.Time) *gorm.DB {
	return tx.Model(&model.Reservation{}).
		Where("room_id = ? AND status = ? AND start_time_utc < ? AND end_time_utc > ?",
			roomID, model.StatusActive, end, start)
}

// HasOverlap reports whether any active reservation on the room collides
// with [start, end). Always reads live state; this path must never be
// cached, staleness here means double-booking.
func (s *gormStore) HasOverlap(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	var count int64
	if err := overlapQuery(s.db.WithContext(ctx), roomID, start, end).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check overlap for room %d: %w", roomID, err)
	}
	return count > 0, nil
}

// CreateReservation persists a validated reservation. The overlap check is
// repeated inside the insert transaction, behind a per-room advisory lock
// on postgres, so two concurrent requests for colliding slots cannot both
// pass the validator's pre-check and insert. On success the reservation is
// reloaded with its Room and User associations.
func (s *gormStore) CreateReservation(ctx context.Context, res *model.Reservation) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRoom(tx, res.RoomID); err != nil {
			return err
		}

		var count int64
		if err := overlapQuery(tx, res.RoomID, res.StartTimeUtc, res.EndTimeUtc).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to re-check overlap for room %d: %w", res.RoomID, err)
		}
		if count > 0 {
			return ErrOverlap
		}

		if err := tx.Create(res).Error; err != nil {
			if isDuplicateKey(err) {
				// The active-rows unique index fired: another request
				// won the exact slot.
				return ErrOverlap
			}
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		First(res, res.ID).Error
}

// lockRoom serializes reservation writes per room. Only postgres exposes
// advisory locks; on other dialects (sqlite in tests) the single-writer
// transaction plus the in-transaction re-check gives the same exclusion.
func lockRoom(tx *gorm.DB, roomID int64) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", reservationLockClass, roomID).Error; err != nil {
		return fmt.Errorf("failed to take advisory lock for room %d: %w", roomID, err)
	}
	return nil
}

// reservationLockClass namespaces the advisory lock so other subsystems can
// use pg_advisory_xact_lock with their own class without colliding.
const reservationLockClass = 1

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// The sqlite driver used in tests predates GORM error translation.
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (s *gormStore) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	var res model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation %d: %w", id, err)
	}
	return &res, nil
}

// ListReservationsByUser returns the user's reservations ordered by start
// time ascending, with Room and User hydrated for display.
func (s *gormStore) ListReservationsByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Where("user_id = ?", userID).
		Order("start_time_utc ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for user %s: %w", userID, err)
	}
	return reservations, nil
}

func (s *gormStore) ListAllReservations(ctx context.Context) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Order("start_time_utc ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// CancelReservation transitions Active -> Cancelled. Cancelled is terminal:
// cancelling again fails with ErrAlreadyCancelled, deliberately not a no-op.
// Returns the cancelled reservation so callers can notify room watchers.
func (s *gormStore) CancelReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	var res model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Room").First(&res, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load reservation %d: %w", id, err)
		}

		if res.Status == model.StatusCancelled {
			return ErrAlreadyCancelled
		}

		res.Status = model.StatusCancelled
		if err := tx.Model(&model.Reservation{}).
			Where("id = ?", id).
			Update("status", model.StatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
