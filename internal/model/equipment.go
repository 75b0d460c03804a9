package model

// Equipment is reference data describing what a room offers (projector,
// whiteboard, ...). Associated with rooms many-to-many.
type Equipment struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:256;not null"`

	// Associations
	Rooms []*Room `gorm:"many2many:room_equipments;"`
}
