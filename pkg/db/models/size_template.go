package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/seemtoseven/registry-backend/pkg/enums"
)

// SizeTemplate declares the intended unit count per size for every item in
// a collection. It is the source of truth the reconciler syncs against.
type SizeTemplate struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CollectionID uuid.UUID         `gorm:"column:collection_id;type:uuid;not null;uniqueIndex:idx_size_templates_collection_size"`
	Size         enums.ApparelSize `gorm:"column:size;not null;uniqueIndex:idx_size_templates_collection_size"`
	Quantity     int               `gorm:"column:quantity;not null;check:quantity >= 0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
