package units

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/accesscode"
	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
	pkgerrors "github.com/seemtoseven/registry-backend/pkg/errors"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// recomputer refreshes the per-size inventory cache after unit mutations.
type recomputer interface {
	CreateUnit(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, size enums.ApparelSize) (*models.Unit, error)
	RecomputeSize(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, size enums.ApparelSize) error
}

// CreateUnitInput adds one operator-created unit to an item.
type CreateUnitInput struct {
	ItemID uuid.UUID
	Size   string
}

// AssignOwnerInput claims a unit for a user. Overwrite permits replacing
// an existing owner; the default is strict first-claimer-wins.
type AssignOwnerInput struct {
	UnitID    uuid.UUID
	OwnerID   uuid.UUID
	Overwrite bool
}

// DeleteUnitInput removes a unit. Force is required for owned units.
type DeleteUnitInput struct {
	UnitID uuid.UUID
	Force  bool
}

// ListUnitsInput pages through an item's units.
type ListUnitsInput struct {
	ItemID uuid.UUID
	Params pagination.Params
}

// Service defines unit lifecycle operations.
type Service interface {
	CreateUnit(ctx context.Context, input CreateUnitInput) (*UnitResponse, error)
	AssignOwner(ctx context.Context, input AssignOwnerInput) (*UnitResponse, error)
	UnassignOwner(ctx context.Context, unitID uuid.UUID) (*UnitResponse, error)
	DeleteUnit(ctx context.Context, input DeleteUnitInput) error
	ChangeSize(ctx context.Context, unitID uuid.UUID, rawSize string) (*UnitResponse, error)
	LookupByCode(ctx context.Context, code string) (*LookupResponse, error)
	ListUnits(ctx context.Context, input ListUnitsInput) (*UnitList, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	reconciler recomputer
}

// NewService wires the unit lifecycle service.
func NewService(repo Repository, tx txRunner, reconciler recomputer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("units repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("inventory reconciler required")
	}
	return &service{repo: repo, tx: tx, reconciler: reconciler}, nil
}

func (s *service) CreateUnit(ctx context.Context, input CreateUnitInput) (*UnitResponse, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	size, err := enums.ParseApparelSize(input.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
	}

	var out *UnitResponse
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindItem(ctx, input.ItemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		unit, err := s.reconciler.CreateUnit(ctx, tx, input.ItemID, size)
		if err != nil {
			return err
		}
		resp := toUnitResponse(unit)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) AssignOwner(ctx context.Context, input AssignOwnerInput) (*UnitResponse, error) {
	if input.UnitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}

	var out *UnitResponse
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Lock before checking ownership so two concurrent claims cannot
		// both observe an unowned unit.
		unit, err := repo.FindUnitForUpdate(ctx, input.UnitID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
		}

		if unit.Owned() && *unit.OwnerID != input.OwnerID && !input.Overwrite {
			return pkgerrors.New(pkgerrors.CodeConflict, "unit already owned")
		}

		assignedAt := unit.AssignedAt
		if !unit.Owned() {
			now := time.Now().UTC()
			assignedAt = &now
		}
		ownerID := input.OwnerID
		if err := repo.UpdateOwner(ctx, unit.ID, &ownerID, assignedAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign owner")
		}
		if err := s.reconciler.RecomputeSize(ctx, tx, unit.ItemID, unit.Size); err != nil {
			return err
		}

		unit.OwnerID = &ownerID
		unit.AssignedAt = assignedAt
		resp := toUnitResponse(unit)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UnassignOwner(ctx context.Context, unitID uuid.UUID) (*UnitResponse, error) {
	if unitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}

	var out *UnitResponse
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		unit, err := repo.FindUnitForUpdate(ctx, unitID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
		}

		if unit.Owned() {
			if err := repo.UpdateOwner(ctx, unit.ID, nil, nil); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassign owner")
			}
			if err := s.reconciler.RecomputeSize(ctx, tx, unit.ItemID, unit.Size); err != nil {
				return err
			}
		}

		unit.OwnerID = nil
		unit.AssignedAt = nil
		resp := toUnitResponse(unit)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) DeleteUnit(ctx context.Context, input DeleteUnitInput) error {
	if input.UnitID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		unit, err := repo.FindUnitForUpdate(ctx, input.UnitID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
		}
		if unit.Owned() && !input.Force {
			return pkgerrors.New(pkgerrors.CodeConflict, "unit is owned; force required to delete")
		}
		if err := repo.DeleteUnit(ctx, unit.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete unit")
		}
		return s.reconciler.RecomputeSize(ctx, tx, unit.ItemID, unit.Size)
	})
}

func (s *service) LookupByCode(ctx context.Context, code string) (*LookupResponse, error) {
	if !accesscode.IsWellFormed(code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed access code")
	}
	unit, err := s.repo.FindByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no unit with that access code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup access code")
	}
	return toLookupResponse(unit), nil
}

func (s *service) ListUnits(ctx context.Context, input ListUnitsInput) (*UnitList, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	rows, err := s.repo.ListByItem(ctx, input.ItemID, input.Params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list units")
	}

	limit := pagination.NormalizeLimit(input.Params.Limit)
	list := &UnitList{Units: make([]UnitResponse, 0, len(rows))}
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
		list.Units = append(list.Units, toUnitResponse(&rows[i]))
	}
	return list, nil
}

// ChangeSize moves a unit onto another size rung and recomputes both the
// old and the new size's cache rows. Not part of normal operation, kept
// for repair tooling.
func (s *service) ChangeSize(ctx context.Context, unitID uuid.UUID, rawSize string) (*UnitResponse, error) {
	if unitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	newSize, err := enums.ParseApparelSize(rawSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
	}

	var out *UnitResponse
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		unit, err := repo.FindUnitForUpdate(ctx, unitID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
		}
		oldSize := unit.Size
		if oldSize != newSize {
			if err := tx.WithContext(ctx).
				Model(&models.Unit{}).
				Where("id = ?", unit.ID).
				Update("size", newSize).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "change unit size")
			}
			if err := s.reconciler.RecomputeSize(ctx, tx, unit.ItemID, oldSize); err != nil {
				return err
			}
		}
		if err := s.reconciler.RecomputeSize(ctx, tx, unit.ItemID, newSize); err != nil {
			return err
		}
		unit.Size = newSize
		resp := toUnitResponse(unit)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
