package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection groups limited-edition apparel items under one release.
type Collection struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name        string     `gorm:"column:name;not null;uniqueIndex:idx_collections_name"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex:idx_collections_slug"`
	Description string     `gorm:"column:description;not null;default:''"`
	ReleaseDate *time.Time `gorm:"column:release_date;type:date"`

	SizeTemplates []SizeTemplate `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`
	Items         []ApparelItem  `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
