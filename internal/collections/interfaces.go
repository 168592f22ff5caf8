package collections

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

// Repository defines persistence operations for collections and their
// size templates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error)
	FindCollection(ctx context.Context, collectionID uuid.UUID) (*models.Collection, error)
	ListCollections(ctx context.Context, params pagination.Params) ([]models.Collection, error)
	UpdateCollection(ctx context.Context, collectionID uuid.UUID, updates map[string]any) error
	DeleteCollection(ctx context.Context, collectionID uuid.UUID) error

	ListTemplates(ctx context.Context, collectionID uuid.UUID) ([]models.SizeTemplate, error)
	FindTemplate(ctx context.Context, collectionID uuid.UUID, size enums.ApparelSize) (*models.SizeTemplate, error)
	UpsertTemplate(ctx context.Context, template *models.SizeTemplate) error
	DeleteTemplate(ctx context.Context, collectionID uuid.UUID, size enums.ApparelSize) error
}
