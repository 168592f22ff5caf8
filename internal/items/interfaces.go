package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

// Repository defines persistence operations for apparel items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.ApparelItem) (*models.ApparelItem, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.ApparelItem, error)
	FindItemWithUnits(ctx context.Context, itemID uuid.UUID) (*models.ApparelItem, error)
	FindCollection(ctx context.Context, collectionID uuid.UUID) (*models.Collection, error)
	ListItems(ctx context.Context, collectionID uuid.UUID, params pagination.Params) ([]models.ApparelItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}
