package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/seemtoseven/registry-backend/pkg/enums"
)

// SizeInventory caches per-(item, size) unit counts for cheap reads.
// It is derived state: quantity_initial mirrors the total unit count and
// quantity_remaining the unowned count, recomputed from units on every
// relevant mutation. Never written outside the reconciler or the unit
// lifecycle service.
type SizeInventory struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ItemID            uuid.UUID         `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_size_inventories_item_size"`
	Size              enums.ApparelSize `gorm:"column:size;not null;uniqueIndex:idx_size_inventories_item_size"`
	QuantityInitial   int               `gorm:"column:quantity_initial;not null;default:0"`
	QuantityRemaining int               `gorm:"column:quantity_remaining;not null;default:0"`

	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
