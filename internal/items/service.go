package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/internal/inventory"
	"github.com/seemtoseven/registry-backend/pkg/db"
	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
	pkgerrors "github.com/seemtoseven/registry-backend/pkg/errors"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// reconciler covers the template precondition and the post-create sync.
type reconciler interface {
	RequireTemplates(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID) error
	Reconcile(ctx context.Context, tx *gorm.DB, item *models.ApparelItem, trigger string) error
}

// availability backs the detail view's aggregates.
type availability interface {
	WithTx(tx *gorm.DB) *inventory.Availability
	TotalUnitsForItem(ctx context.Context, item *models.ApparelItem) (int, error)
	RemainingUnitsForItem(ctx context.Context, item *models.ApparelItem) (int, error)
	ListSizeInventory(ctx context.Context, itemID uuid.UUID) ([]inventory.SizeAvailability, error)
}

// ListItemsInput pages through items, optionally scoped to a collection.
type ListItemsInput struct {
	CollectionID uuid.UUID
	Params       pagination.Params
}

// Service defines apparel item operations.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDetail, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDetail, error)
	ListItems(ctx context.Context, input ListItemsInput) (*ItemList, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*ItemResponse, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

type service struct {
	repo         Repository
	tx           txRunner
	reconciler   reconciler
	availability availability
}

// NewService wires the items service.
func NewService(repo Repository, tx txRunner, rec reconciler, avail availability) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if rec == nil {
		return nil, fmt.Errorf("inventory reconciler required")
	}
	if avail == nil {
		return nil, fmt.Errorf("availability calculator required")
	}
	return &service{repo: repo, tx: tx, reconciler: rec, availability: avail}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDetail, error) {
	if input.CollectionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection id required")
	}
	rarity := enums.RarityCommon
	if input.Rarity != "" {
		parsed, err := enums.ParseRarity(input.Rarity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rarity")
		}
		rarity = parsed
	}

	var detail *ItemDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindCollection(ctx, input.CollectionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection")
		}
		if err := s.reconciler.RequireTemplates(ctx, tx, input.CollectionID); err != nil {
			return err
		}

		item := &models.ApparelItem{
			ID:           uuid.New(),
			CollectionID: input.CollectionID,
			Name:         input.Name,
			Slug:         input.Slug,
			Rarity:       rarity,
		}
		if _, err := repo.CreateItem(ctx, item); err != nil {
			if db.IsUniqueViolation(err, "idx_apparel_items_collection_slug") {
				return pkgerrors.New(pkgerrors.CodeConflict, "item slug already used in collection")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert item")
		}

		if err := s.reconciler.Reconcile(ctx, tx, item, inventory.TriggerItemCreate); err != nil {
			return err
		}

		d, err := s.buildDetail(ctx, tx, item)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDetail, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindItemWithUnits(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return s.buildDetail(ctx, nil, item)
}

func (s *service) ListItems(ctx context.Context, input ListItemsInput) (*ItemList, error) {
	rows, err := s.repo.ListItems(ctx, input.CollectionID, input.Params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	limit := pagination.NormalizeLimit(input.Params.Limit)
	list := &ItemList{Items: make([]ItemResponse, 0, len(rows))}
	if len(rows) > limit {
		list.HasMore = true
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		list.Items = append(list.Items, toItemResponse(&rows[i]))
	}
	return list, nil
}

func (s *service) UpdateItem(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*ItemResponse, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Slug != nil {
		updates["slug"] = *input.Slug
	}
	if input.Rarity != nil {
		rarity, err := enums.ParseRarity(*input.Rarity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rarity")
		}
		updates["rarity"] = rarity
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var out *ItemResponse
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		// Updates re-run the template precondition so an item cannot be
		// saved into a collection that has dropped its allocations.
		if err := s.reconciler.RequireTemplates(ctx, tx, item.CollectionID); err != nil {
			return err
		}
		if err := repo.UpdateItem(ctx, itemID, updates); err != nil {
			if db.IsUniqueViolation(err, "idx_apparel_items_collection_slug") {
				return pkgerrors.New(pkgerrors.CodeConflict, "item slug already used in collection")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}

		updated, err := repo.FindItem(ctx, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload item")
		}
		resp := toItemResponse(updated)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteItem removes the item and everything it owns. Child rows are
// deleted explicitly so the operation does not depend on FK cascade
// being enabled in the backing store.
func (s *service) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindItem(ctx, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		if err := tx.WithContext(ctx).Where("item_id = ?", itemID).Delete(&models.Unit{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item units")
		}
		if err := tx.WithContext(ctx).Where("item_id = ?", itemID).Delete(&models.SizeInventory{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item inventories")
		}
		if err := repo.DeleteItem(ctx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
		}
		return nil
	})
}

func (s *service) buildDetail(ctx context.Context, tx *gorm.DB, item *models.ApparelItem) (*ItemDetail, error) {
	avail := s.availability
	if tx != nil {
		avail = s.availability.WithTx(tx)
	}

	total, err := avail.TotalUnitsForItem(ctx, item)
	if err != nil {
		return nil, err
	}
	remaining, err := avail.RemainingUnitsForItem(ctx, item)
	if err != nil {
		return nil, err
	}
	sizes, err := avail.ListSizeInventory(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	return &ItemDetail{
		ItemResponse:    toItemResponse(item),
		TotalUnits:      total,
		RemainingUnits:  remaining,
		SizeInventories: sizes,
	}, nil
}
