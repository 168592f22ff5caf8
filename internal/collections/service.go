package collections

import (
	"context"
	"errors"
	"fmt"
	"sort"

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

// resyncer propagates template writes to every item in the collection.
type resyncer interface {
	ResyncCollection(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, trigger string) error
}

// ListCollectionsInput pages through collections.
type ListCollectionsInput struct {
	Params pagination.Params
}

// Service defines collection and size template operations.
type Service interface {
	CreateCollection(ctx context.Context, input CreateCollectionInput) (*CollectionResponse, error)
	GetCollection(ctx context.Context, collectionID uuid.UUID) (*CollectionDetail, error)
	ListCollections(ctx context.Context, input ListCollectionsInput) (*CollectionList, error)
	UpdateCollection(ctx context.Context, collectionID uuid.UUID, input UpdateCollectionInput) (*CollectionResponse, error)
	DeleteCollection(ctx context.Context, collectionID uuid.UUID) error

	SetTemplate(ctx context.Context, input SetTemplateInput) (*TemplateResponse, error)
	DeleteTemplate(ctx context.Context, collectionID uuid.UUID, rawSize string) error
	ListTemplates(ctx context.Context, collectionID uuid.UUID) ([]TemplateResponse, error)
}

type service struct {
	repo         Repository
	tx           txRunner
	reconciler   resyncer
	availability *inventory.Availability
	invRepo      *inventory.Repository
}

// NewService wires the collections service.
func NewService(repo Repository, tx txRunner, rec resyncer, avail *inventory.Availability, invRepo *inventory.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("collections repository required")
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
	if invRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo, tx: tx, reconciler: rec, availability: avail, invRepo: invRepo}, nil
}

func (s *service) CreateCollection(ctx context.Context, input CreateCollectionInput) (*CollectionResponse, error) {
	collection := &models.Collection{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ReleaseDate: input.ReleaseDate,
	}
	if _, err := s.repo.CreateCollection(ctx, collection); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "collection name or slug already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert collection")
	}
	resp := toCollectionResponse(collection)
	return &resp, nil
}

func (s *service) GetCollection(ctx context.Context, collectionID uuid.UUID) (*CollectionDetail, error) {
	if collectionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection id required")
	}

	collection, err := s.repo.FindCollection(ctx, collectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection")
	}

	templates, err := s.ListTemplates(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	detail := &CollectionDetail{
		CollectionResponse: toCollectionResponse(collection),
		Templates:          templates,
	}

	total, err := s.availability.TotalUnitsForCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	remaining, err := s.availability.RemainingUnitsForCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	detail.TotalUnits = total
	detail.RemainingUnits = remaining

	items, err := s.invRepo.ItemsForCollection(ctx, collectionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection items")
	}
	detail.Items = make([]ItemSummary, 0, len(items))
	for i := range items {
		item := &items[i]
		itemTotal, err := s.availability.TotalUnitsForItem(ctx, item)
		if err != nil {
			return nil, err
		}
		itemRemaining, err := s.availability.RemainingUnitsForItem(ctx, item)
		if err != nil {
			return nil, err
		}
		sizes, err := s.availability.ListSizeInventory(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		detail.Items = append(detail.Items, ItemSummary{
			ID:              item.ID,
			Name:            item.Name,
			Slug:            item.Slug,
			Rarity:          item.Rarity.String(),
			TotalUnits:      itemTotal,
			RemainingUnits:  itemRemaining,
			SizeInventories: sizes,
		})
	}
	return detail, nil
}

func (s *service) ListCollections(ctx context.Context, input ListCollectionsInput) (*CollectionList, error) {
	rows, err := s.repo.ListCollections(ctx, input.Params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collections")
	}

	limit := pagination.NormalizeLimit(input.Params.Limit)
	list := &CollectionList{Collections: make([]CollectionResponse, 0, len(rows))}
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
		list.Collections = append(list.Collections, toCollectionResponse(&rows[i]))
	}
	return list, nil
}

func (s *service) UpdateCollection(ctx context.Context, collectionID uuid.UUID, input UpdateCollectionInput) (*CollectionResponse, error) {
	if collectionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Slug != nil {
		updates["slug"] = *input.Slug
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ReleaseDate != nil {
		updates["release_date"] = *input.ReleaseDate
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var out *CollectionResponse
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindCollection(ctx, collectionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection")
		}
		if err := repo.UpdateCollection(ctx, collectionID, updates); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "collection name or slug already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update collection")
		}
		updated, err := repo.FindCollection(ctx, collectionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload collection")
		}
		resp := toCollectionResponse(updated)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCollection removes the collection and everything it owns. Child
// rows are deleted explicitly so the operation does not depend on FK
// cascade being enabled in the backing store.
func (s *service) DeleteCollection(ctx context.Context, collectionID uuid.UUID) error {
	if collectionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "collection id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindCollection(ctx, collectionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection")
		}

		items, err := inventory.NewRepository(tx).ItemsForCollection(ctx, collectionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection items")
		}
		for i := range items {
			itemID := items[i].ID
			if err := tx.WithContext(ctx).Where("item_id = ?", itemID).Delete(&models.Unit{}).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item units")
			}
			if err := tx.WithContext(ctx).Where("item_id = ?", itemID).Delete(&models.SizeInventory{}).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item inventories")
			}
		}
		if err := tx.WithContext(ctx).Where("collection_id = ?", collectionID).Delete(&models.ApparelItem{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete collection items")
		}
		if err := tx.WithContext(ctx).Where("collection_id = ?", collectionID).Delete(&models.SizeTemplate{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete collection templates")
		}
		if err := repo.DeleteCollection(ctx, collectionID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete collection")
		}
		return nil
	})
}

// SetTemplate writes one size allocation and resyncs every item of the
// collection inside the same transaction, so the template row and the
// unit counts it implies commit together.
func (s *service) SetTemplate(ctx context.Context, input SetTemplateInput) (*TemplateResponse, error) {
	if input.CollectionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection id required")
	}
	size, err := enums.ParseApparelSize(input.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	var out *TemplateResponse
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindCollection(ctx, input.CollectionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection")
		}

		template := &models.SizeTemplate{
			ID:           uuid.New(),
			CollectionID: input.CollectionID,
			Size:         size,
			Quantity:     input.Quantity,
		}
		if err := repo.UpsertTemplate(ctx, template); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert size template")
		}
		if err := s.reconciler.ResyncCollection(ctx, tx, input.CollectionID, inventory.TriggerTemplateChange); err != nil {
			return err
		}
		out = &TemplateResponse{Size: size.String(), Quantity: input.Quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTemplate removes one size allocation and resyncs in-transaction.
func (s *service) DeleteTemplate(ctx context.Context, collectionID uuid.UUID, rawSize string) error {
	if collectionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "collection id required")
	}
	size, err := enums.ParseApparelSize(rawSize)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindTemplate(ctx, collectionID, size); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "size template not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load size template")
		}
		if err := repo.DeleteTemplate(ctx, collectionID, size); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete size template")
		}
		return s.reconciler.ResyncCollection(ctx, tx, collectionID, inventory.TriggerTemplateChange)
	})
}

func (s *service) ListTemplates(ctx context.Context, collectionID uuid.UUID) ([]TemplateResponse, error) {
	rows, err := s.repo.ListTemplates(ctx, collectionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list size templates")
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Size.Rank() < rows[j].Size.Rank() })
	out := make([]TemplateResponse, len(rows))
	for i, row := range rows {
		out[i] = TemplateResponse{Size: row.Size.String(), Quantity: row.Quantity}
	}
	return out, nil
}
