package units

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a units repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindUnit(ctx context.Context, unitID uuid.UUID) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", unitID).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// FindUnitForUpdate locks the unit row for the rest of the transaction.
// sqlite serializes writers on its own and rejects FOR UPDATE, so the
// locking clause only applies on postgres.
func (r *repository) FindUnitForUpdate(ctx context.Context, unitID uuid.UUID) (*models.Unit, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var unit models.Unit
	if err := q.First(&unit, "id = ?", unitID).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *repository) FindByAccessCode(ctx context.Context, code string) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Item").
		Preload("Item.Collection").
		First(&unit, "access_code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.ApparelItem, error) {
	var item models.ApparelItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateOwner(ctx context.Context, unitID uuid.UUID, ownerID *uuid.UUID, assignedAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("id = ?", unitID).
		Updates(map[string]any{
			"owner_id":    ownerID,
			"assigned_at": assignedAt,
		}).Error
}

func (r *repository) DeleteUnit(ctx context.Context, unitID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", unitID).
		Delete(&models.Unit{}).Error
}

func (r *repository) ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.Unit, error) {
	q := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
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

	var units []models.Unit
	if err := q.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}
