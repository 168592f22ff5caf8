package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/seemtoseven/registry-backend/pkg/enums"
)

// Unit is one physical, individually identified instance of an item.
// The access code is immutable once generated; the owner reference is a
// non-owning link to an external user and clearing it never deletes the
// unit.
type Unit struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ItemID     uuid.UUID         `gorm:"column:item_id;type:uuid;not null;index:idx_units_item_size"`
	Size       enums.ApparelSize `gorm:"column:size;not null;index:idx_units_item_size"`
	AccessCode string            `gorm:"column:access_code;not null;uniqueIndex:idx_units_access_code"`
	OwnerID    *uuid.UUID        `gorm:"column:owner_id;type:uuid;index"`
	AssignedAt *time.Time        `gorm:"column:assigned_at"`

	Item  *ApparelItem `gorm:"foreignKey:ItemID"`
	Owner *User        `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Owned reports whether the unit currently has an owner attached.
func (u Unit) Owned() bool {
	return u.OwnerID != nil
}
