package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"booking-rooms-backend/internal/model"
)

func (s *gormStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := s.db.WithContext(ctx).Preload("Equipments").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *gormStore) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).Preload("Equipments").First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room %d: %w", id, err)
	}
	return &room, nil
}

func (s *gormStore) RoomExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Room{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check room %d: %w", id, err)
	}
	return count > 0, nil
}

// CreateRoom inserts a room and attaches the given equipment in one
// transaction. Unknown equipment IDs are silently skipped, matching the
// reference-data semantics of the association.
func (s *gormStore) CreateRoom(ctx context.Context, room *model.Room, equipmentIDs []int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		return replaceEquipments(tx, room, equipmentIDs)
	})
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Preload("Equipments").First(room, room.ID).Error
}

// UpdateRoom saves the room's fields and replaces its equipment set.
func (s *gormStore) UpdateRoom(ctx context.Context, room *model.Room, equipmentIDs []int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Room{}).Where("id = ?", room.ID).Updates(map[string]any{
			"name":     room.Name,
			"capacity": room.Capacity,
			"location": room.Location,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update room %d: %w", room.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return replaceEquipments(tx, room, equipmentIDs)
	})
}

func replaceEquipments(tx *gorm.DB, room *model.Room, equipmentIDs []int64) error {
	var equipments []model.Equipment
	if len(equipmentIDs) > 0 {
		if err := tx.Find(&equipments, equipmentIDs).Error; err != nil {
			return fmt.Errorf("failed to load equipments: %w", err)
		}
	}
	if err := tx.Model(room).Association("Equipments").Replace(&equipments); err != nil {
		return fmt.Errorf("failed to set room equipments: %w", err)
	}
	return nil
}

// DeleteRoom removes a room. Refused with ErrRoomInUse while any
// non-cancelled reservation references it; cancelled reservations are
// removed along with the room.
func (s *gormStore) DeleteRoom(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room model.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load room %d: %w", id, err)
		}

		var active int64
		if err := tx.Model(&model.Reservation{}).
			Where("room_id = ? AND status <> ?", id, model.StatusCancelled).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to count reservations for room %d: %w", id, err)
		}
		if active > 0 {
			return ErrRoomInUse
		}

		if err := tx.Where("room_id = ?", id).Delete(&model.Reservation{}).Error; err != nil {
			return fmt.Errorf("failed to delete reservations for room %d: %w", id, err)
		}
		if err := tx.Model(&room).Association("Equipments").Clear(); err != nil {
			return fmt.Errorf("failed to clear equipments for room %d: %w", id, err)
		}
		if err := tx.Delete(&room).Error; err != nil {
			return fmt.Errorf("failed to delete room %d: %w", id, err)
		}
		return nil
	})
}

func (s *gormStore) ListEquipments(ctx context.Context) ([]model.Equipment, error) {
	var equipments []model.Equipment
	if err := s.db.WithContext(ctx).Find(&equipments).Error; err != nil {
		return nil, fmt.Errorf("failed to list equipments: %w", err)
	}
	return equipments, nil
}

func (s *gormStore) GetEquipment(ctx context.Context, id int64) (*model.Equipment, error) {
	var equipment model.Equipment
	err := s.db.WithContext(ctx).First(&equipment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment %d: %w", id, err)
	}
	return &equipment, nil
}
