package collections

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a collections repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

func (r *repository) FindCollection(ctx context.Context, collectionID uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", collectionID).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *repository) ListCollections(ctx context.Context, params pagination.Params) ([]models.Collection, error) {
	q := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where(
			"(created_at > ?) OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var collections []models.Collection
	if err := q.Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *repository) UpdateCollection(ctx context.Context, collectionID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Collection{}).
		Where("id = ?", collectionID).
		Updates(updates).Error
}

func (r *repository) DeleteCollection(ctx context.Context, collectionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", collectionID).
		Delete(&models.Collection{}).Error
}

func (r *repository) ListTemplates(ctx context.Context, collectionID uuid.UUID) ([]models.SizeTemplate, error) {
	var templates []models.SizeTemplate
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repository) FindTemplate(ctx context.Context, collectionID uuid.UUID, size enums.ApparelSize) (*models.SizeTemplate, error) {
	var template models.SizeTemplate
	err := r.db.WithContext(ctx).
		Where("collection_id = ? AND size = ?", collectionID, size).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *repository) UpsertTemplate(ctx context.Context, template *models.SizeTemplate) error {
	existing, err := r.FindTemplate(ctx, template.CollectionID, template.Size)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(template).Error
	case err != nil:
		return err
	}
	template.ID = existing.ID
	return r.db.WithContext(ctx).
		Model(&models.SizeTemplate{}).
		Where("id = ?", existing.ID).
		Update("quantity", template.Quantity).Error
}

func (r *repository) DeleteTemplate(ctx context.Context, collectionID uuid.UUID, size enums.ApparelSize) error {
	return r.db.WithContext(ctx).
		Where("collection_id = ? AND size = ?", collectionID, size).
		Delete(&models.SizeTemplate{}).Error
}
