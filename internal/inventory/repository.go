package inventory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
)

// Repository bundles the queries the reconciler and the availability
// calculator run against unit and inventory state.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// TemplatesForCollection returns the declared size->quantity mapping.
func (r *Repository) TemplatesForCollection(ctx context.Context, collectionID uuid.UUID) (map[enums.ApparelSize]int, error) {
	var rows []models.SizeTemplate
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	templates := make(map[enums.ApparelSize]int, len(rows))
	for _, row := range rows {
		templates[row.Size] = row.Quantity
	}
	return templates, nil
}

// CountTemplates reports how many template rows a collection declares.
func (r *Repository) CountTemplates(ctx context.Context, collectionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SizeTemplate{}).
		Where("collection_id = ?", collectionID).
		Count(&count).Error
	return count, err
}

// InventoryRowsForItem returns the cached per-size counters for an item.
func (r *Repository) InventoryRowsForItem(ctx context.Context, itemID uuid.UUID) ([]models.SizeInventory, error) {
	var rows []models.SizeInventory
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SortedInventoryRowsForItem returns the cache rows ordered by size rank
// then id, the ordering the read surface exposes.
func (r *Repository) SortedInventoryRowsForItem(ctx context.Context, itemID uuid.UUID) ([]models.SizeInventory, error) {
	rows, err := r.InventoryRowsForItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].Size.Rank(), rows[j].Size.Rank()
		if ri != rj {
			return ri < rj
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})
	return rows, nil
}

// UnitSizesForItem returns the distinct sizes for which units exist.
func (r *Repository) UnitSizesForItem(ctx context.Context, itemID uuid.UUID) ([]enums.ApparelSize, error) {
	var sizes []enums.ApparelSize
	if err := r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Distinct("size").
		Where("item_id = ?", itemID).
		Pluck("size", &sizes).Error; err != nil {
		return nil, err
	}
	return sizes, nil
}

// CountUnits returns the number of units of the given size for the item.
func (r *Repository) CountUnits(ctx context.Context, itemID uuid.UUID, size enums.ApparelSize) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("item_id = ? AND size = ?", itemID, size).
		Count(&count).Error
	return count, err
}

// CountUnownedUnits returns the number of unowned units of the given size.
func (r *Repository) CountUnownedUnits(ctx context.Context, itemID uuid.UUID, size enums.ApparelSize) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("item_id = ? AND size = ? AND owner_id IS NULL", itemID, size).
		Count(&count).Error
	return count, err
}

// UnownedUnitsNewestFirst returns up to limit unowned units of the size,
// most recently created first. Downsizing removes these before anything
// else; owned units are never candidates.
func (r *Repository) UnownedUnitsNewestFirst(ctx context.Context, itemID uuid.UUID, size enums.ApparelSize, limit int) ([]models.Unit, error) {
	var units []models.Unit
	q := r.db.WithContext(ctx).
		Where("item_id = ? AND size = ? AND owner_id IS NULL", itemID, size).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// DeleteUnits hard-deletes the given unit ids.
func (r *Repository) DeleteUnits(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Unit{}).Error
}

// TotalUnitsForItem counts every unit belonging to the item.
func (r *Repository) TotalUnitsForItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

// RemainingUnitsForItem counts the item's unowned units.
func (r *Repository) RemainingUnitsForItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("item_id = ? AND owner_id IS NULL", itemID).
		Count(&count).Error
	return count, err
}

// TotalUnitsForCollection counts units across every item in the collection.
func (r *Repository) TotalUnitsForCollection(ctx context.Context, collectionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Joins("JOIN apparel_items ON apparel_items.id = units.item_id").
		Where("apparel_items.collection_id = ?", collectionID).
		Count(&count).Error
	return count, err
}

// RemainingUnitsForCollection counts unowned units across the collection.
func (r *Repository) RemainingUnitsForCollection(ctx context.Context, collectionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Joins("JOIN apparel_items ON apparel_items.id = units.item_id").
		Where("apparel_items.collection_id = ? AND units.owner_id IS NULL", collectionID).
		Count(&count).Error
	return count, err
}

// ItemsForCollection loads the collection's items without associations.
func (r *Repository) ItemsForCollection(ctx context.Context, collectionID uuid.UUID) ([]models.ApparelItem, error) {
	var items []models.ApparelItem
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
