package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/seemtoseven/registry-backend/pkg/enums"
)

// ApparelItem is a clothing design inside a collection, expanded into
// individually tracked units by the inventory reconciler.
type ApparelItem struct {
	ID           uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	CollectionID uuid.UUID    `gorm:"column:collection_id;type:uuid;not null;uniqueIndex:idx_apparel_items_collection_slug"`
	Name         string       `gorm:"column:name;not null"`
	Slug         string       `gorm:"column:slug;not null;uniqueIndex:idx_apparel_items_collection_slug"`
	Rarity       enums.Rarity `gorm:"column:rarity;not null;default:common"`

	Collection      *Collection     `gorm:"foreignKey:CollectionID"`
	Units           []Unit          `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	SizeInventories []SizeInventory `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
