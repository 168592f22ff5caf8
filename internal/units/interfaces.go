package units

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

// Repository defines persistence operations for unit rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindUnit(ctx context.Context, unitID uuid.UUID) (*models.Unit, error)
	FindUnitForUpdate(ctx context.Context, unitID uuid.UUID) (*models.Unit, error)
	FindByAccessCode(ctx context.Context, code string) (*models.Unit, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.ApparelItem, error)
	UpdateOwner(ctx context.Context, unitID uuid.UUID, ownerID *uuid.UUID, assignedAt *time.Time) error
	DeleteUnit(ctx context.Context, unitID uuid.UUID) error
	ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.Unit, error)
}
