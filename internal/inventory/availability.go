package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	pkgerrors "github.com/seemtoseven/registry-backend/pkg/errors"
)

// SizeAvailability is one row of an item's per-size availability view.
type SizeAvailability struct {
	Size              string `json:"size"`
	QuantityInitial   int    `json:"quantity_initial"`
	QuantityRemaining int    `json:"quantity_remaining"`
}

// Availability reads aggregate unit counts straight from the units table.
// The size inventory cache is for per-size listings; totals always come
// from ground truth so a stale cache row cannot skew them.
type Availability struct {
	db *gorm.DB
}

func NewAvailability(db *gorm.DB) *Availability {
	return &Availability{db: db}
}

func (a *Availability) WithTx(tx *gorm.DB) *Availability {
	return &Availability{db: tx}
}

// TotalUnitsForItem returns the full unit count for the item. When the
// item carries preloaded units they are counted in memory instead of
// issuing another query.
func (a *Availability) TotalUnitsForItem(ctx context.Context, item *models.ApparelItem) (int, error) {
	if item.Units != nil {
		return len(item.Units), nil
	}
	total, err := NewRepository(a.db).TotalUnitsForItem(ctx, item.ID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count item units")
	}
	return int(total), nil
}

// RemainingUnitsForItem returns the unowned unit count for the item,
// preferring preloaded units when present.
func (a *Availability) RemainingUnitsForItem(ctx context.Context, item *models.ApparelItem) (int, error) {
	if item.Units != nil {
		remaining := 0
		for i := range item.Units {
			if !item.Units[i].Owned() {
				remaining++
			}
		}
		return remaining, nil
	}
	remaining, err := NewRepository(a.db).RemainingUnitsForItem(ctx, item.ID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count remaining item units")
	}
	return int(remaining), nil
}

// TotalUnitsForCollection sums unit counts over every item in the
// collection.
func (a *Availability) TotalUnitsForCollection(ctx context.Context, collectionID uuid.UUID) (int, error) {
	total, err := NewRepository(a.db).TotalUnitsForCollection(ctx, collectionID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count collection units")
	}
	return int(total), nil
}

// RemainingUnitsForCollection sums unowned unit counts over every item in
// the collection.
func (a *Availability) RemainingUnitsForCollection(ctx context.Context, collectionID uuid.UUID) (int, error) {
	remaining, err := NewRepository(a.db).RemainingUnitsForCollection(ctx, collectionID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count remaining collection units")
	}
	return int(remaining), nil
}

// ListSizeInventory returns the item's cached per-size rows ordered by
// size rank (XS first).
func (a *Availability) ListSizeInventory(ctx context.Context, itemID uuid.UUID) ([]SizeAvailability, error) {
	rows, err := NewRepository(a.db).SortedInventoryRowsForItem(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list size inventories")
	}
	out := make([]SizeAvailability, len(rows))
	for i, row := range rows {
		out[i] = SizeAvailability{
			Size:              row.Size.String(),
			QuantityInitial:   row.QuantityInitial,
			QuantityRemaining: row.QuantityRemaining,
		}
	}
	return out, nil
}
