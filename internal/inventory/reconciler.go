package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/accesscode"
	"github.com/seemtoseven/registry-backend/pkg/db"
	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
	pkgerrors "github.com/seemtoseven/registry-backend/pkg/errors"
	"github.com/seemtoseven/registry-backend/pkg/metrics"
)

// Reconciliation triggers, used as metric labels.
const (
	TriggerItemCreate     = "item_create"
	TriggerTemplateChange = "template_change"
	TriggerUnitMutation   = "unit_mutation"
)

const defaultCodeAttempts = 5

const accessCodeConstraint = "idx_units_access_code"

// Reconciler makes an item's units and size inventory cache match its
// collection's size templates. Every method expects to run inside the
// caller's transaction; a failure rolls the whole operation back and the
// next recompute heals any partially derived state.
type Reconciler struct {
	codeAttempts int
	metrics      *metrics.ReconcileMetrics
}

// NewReconciler builds a reconciler. codeAttempts bounds access-code
// regeneration on uniqueness conflicts; zero selects the default.
func NewReconciler(codeAttempts int, m *metrics.ReconcileMetrics) *Reconciler {
	if codeAttempts <= 0 {
		codeAttempts = defaultCodeAttempts
	}
	return &Reconciler{codeAttempts: codeAttempts, metrics: m}
}

// RequireTemplates enforces the item validation precondition: a collection
// must declare at least one size allocation before items can exist in it.
func (r *Reconciler) RequireTemplates(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID) error {
	count, err := NewRepository(tx).CountTemplates(ctx, collectionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count size templates")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "collection must define size allocations")
	}
	return nil
}

// Reconcile aligns the item with its collection's templates: first the
// cached rows (SyncInventory), then the units themselves (EnsureUnits).
func (r *Reconciler) Reconcile(ctx context.Context, tx *gorm.DB, item *models.ApparelItem, trigger string) error {
	start := time.Now()
	if err := r.SyncInventory(ctx, tx, item); err != nil {
		r.metrics.IncFailure(trigger)
		return err
	}
	if err := r.EnsureUnits(ctx, tx, item, trigger); err != nil {
		r.metrics.IncFailure(trigger)
		return err
	}
	r.metrics.ObserveDuration(trigger, time.Since(start))
	return nil
}

// ResyncCollection reconciles every item of the collection. Called after
// any template mutation; the caller owns the surrounding transaction so
// the template write and the resync commit together.
func (r *Reconciler) ResyncCollection(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, trigger string) error {
	items, err := NewRepository(tx).ItemsForCollection(ctx, collectionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load collection items")
	}
	for i := range items {
		if err := r.Reconcile(ctx, tx, &items[i], trigger); err != nil {
			return err
		}
	}
	return nil
}

// SyncInventory aligns the item's SizeInventory rows with the template
// mapping. Remaining counts are only ever clamped down here; they rise
// exclusively through unit creation or unassignment.
func (r *Reconciler) SyncInventory(ctx context.Context, tx *gorm.DB, item *models.ApparelItem) error {
	repo := NewRepository(tx)

	templates, err := repo.TemplatesForCollection(ctx, item.CollectionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size templates")
	}

	rows, err := repo.InventoryRowsForItem(ctx, item.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size inventories")
	}
	bySize := make(map[enums.ApparelSize]*models.SizeInventory, len(rows))
	for i := range rows {
		bySize[rows[i].Size] = &rows[i]
	}

	for _, size := range sortedSizes(templates) {
		quantity := templates[size]
		row, ok := bySize[size]
		if !ok {
			row = &models.SizeInventory{
				ID:                uuid.New(),
				ItemID:            item.ID,
				Size:              size,
				QuantityInitial:   quantity,
				QuantityRemaining: quantity,
			}
			if err := tx.WithContext(ctx).Create(row).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert size inventory")
			}
			continue
		}

		row.QuantityInitial = quantity
		if row.QuantityRemaining > quantity {
			row.QuantityRemaining = quantity
		}
		if err := tx.WithContext(ctx).
			Model(&models.SizeInventory{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"quantity_initial":   row.QuantityInitial,
				"quantity_remaining": row.QuantityRemaining,
			}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update size inventory")
		}
	}

	for size, row := range bySize {
		if _, offered := templates[size]; offered {
			continue
		}
		if err := tx.WithContext(ctx).
			Where("id = ?", row.ID).
			Delete(&models.SizeInventory{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete size inventory")
		}
	}

	return nil
}

// EnsureUnits reconciles actual unit counts against the template, then
// recomputes the cache rows from ground truth. The template is a target,
// not a hard cap: owned units always survive a shrink.
func (r *Reconciler) EnsureUnits(ctx context.Context, tx *gorm.DB, item *models.ApparelItem, trigger string) error {
	repo := NewRepository(tx)

	templates, err := repo.TemplatesForCollection(ctx, item.CollectionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size templates")
	}

	unitSizes, err := repo.UnitSizesForItem(ctx, item.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load unit sizes")
	}

	touched := make(map[enums.ApparelSize]bool, len(templates)+len(unitSizes))

	for _, size := range sortedSizes(templates) {
		target := templates[size]
		touched[size] = true

		existing, err := repo.CountUnits(ctx, item.ID, size)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count units")
		}

		switch {
		case int(existing) < target:
			created := target - int(existing)
			for i := 0; i < created; i++ {
				if _, err := r.insertUnit(ctx, tx, item.ID, size); err != nil {
					return err
				}
			}
			r.metrics.AddUnitsCreated(trigger, created)

		case int(existing) > target:
			excess := int(existing) - target
			victims, err := repo.UnownedUnitsNewestFirst(ctx, item.ID, size, excess)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: select surplus units")
			}
			// Fewer unowned units than the surplus means owned units keep
			// the count above target until owners release them.
			if err := repo.DeleteUnits(ctx, unitIDs(victims)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete surplus units")
			}
			r.metrics.AddUnitsDeleted(trigger, len(victims))
		}
	}

	for _, size := range unitSizes {
		if touched[size] {
			continue
		}
		touched[size] = true

		// Size no longer offered: unowned units go, owned units stay.
		victims, err := repo.UnownedUnitsNewestFirst(ctx, item.ID, size, 0)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: select retired-size units")
		}
		if err := repo.DeleteUnits(ctx, unitIDs(victims)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete retired-size units")
		}
		r.metrics.AddUnitsDeleted(trigger, len(victims))
	}

	for size := range touched {
		if err := r.RecomputeSize(ctx, tx, item.ID, size); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeSize rewrites one (item, size) cache row from actual unit
// counts. It is idempotent and authoritative: once units exist, their
// counts override anything derived from the template. A size with no
// units loses its row.
func (r *Reconciler) RecomputeSize(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, size enums.ApparelSize) error {
	repo := NewRepository(tx)

	total, err := repo.CountUnits(ctx, itemID, size)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count units for recompute")
	}

	if total == 0 {
		if err := tx.WithContext(ctx).
			Where("item_id = ? AND size = ?", itemID, size).
			Delete(&models.SizeInventory{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete empty size inventory")
		}
		return nil
	}

	unowned, err := repo.CountUnownedUnits(ctx, itemID, size)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count unowned units for recompute")
	}

	var row models.SizeInventory
	err = tx.WithContext(ctx).
		Where("item_id = ? AND size = ?", itemID, size).
		First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.SizeInventory{
			ID:                uuid.New(),
			ItemID:            itemID,
			Size:              size,
			QuantityInitial:   int(total),
			QuantityRemaining: int(unowned),
		}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert recomputed size inventory")
		}
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size inventory for recompute")
	}

	if err := tx.WithContext(ctx).
		Model(&models.SizeInventory{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"quantity_initial":   int(total),
			"quantity_remaining": int(unowned),
		}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update recomputed size inventory")
	}
	return nil
}

// insertUnit creates one unowned unit, regenerating the access code on a
// uniqueness conflict. Each attempt runs under a savepoint so a conflict
// does not poison the surrounding transaction. Unit ids are time-ordered
// (UUIDv7) so "created_at DESC, id DESC" stays newest-first even when
// several units land on the same timestamp tick.
func (r *Reconciler) insertUnit(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, size enums.ApparelSize) (*models.Unit, error) {
	for attempt := 0; attempt < r.codeAttempts; attempt++ {
		code, err := accesscode.Generate()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate access code")
		}

		id, err := uuid.NewV7()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate unit id")
		}

		unit := &models.Unit{
			ID:         id,
			ItemID:     itemID,
			Size:       size,
			AccessCode: code,
		}

		savepoint := fmt.Sprintf("unit_code_%d", attempt)
		tx.SavePoint(savepoint)
		if err := tx.WithContext(ctx).Create(unit).Error; err != nil {
			if db.IsUniqueViolation(err, accessCodeConstraint) {
				tx.RollbackTo(savepoint)
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert unit")
		}
		return unit, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeDependency, "access code generation exhausted retries")
}

// CreateUnit inserts one extra unit for the item outside a template sync
// and refreshes that size's cache row. Used by the unit lifecycle service.
func (r *Reconciler) CreateUnit(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, size enums.ApparelSize) (*models.Unit, error) {
	unit, err := r.insertUnit(ctx, tx, itemID, size)
	if err != nil {
		return nil, err
	}
	r.metrics.AddUnitsCreated(TriggerUnitMutation, 1)
	if err := r.RecomputeSize(ctx, tx, itemID, size); err != nil {
		return nil, err
	}
	return unit, nil
}

func sortedSizes(templates map[enums.ApparelSize]int) []enums.ApparelSize {
	sizes := make([]enums.ApparelSize, 0, len(templates))
	for size := range templates {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i].Rank() < sizes[j].Rank() })
	return sizes
}

func unitIDs(units []models.Unit) []uuid.UUID {
	ids := make([]uuid.UUID, len(units))
	for i, unit := range units {
		ids[i] = unit.ID
	}
	return ids
}
