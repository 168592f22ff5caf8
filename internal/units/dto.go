package units

import (
	"time"

	"github.com/google/uuid"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
)

// UnitResponse is the wire representation of a unit.
type UnitResponse struct {
	ID         uuid.UUID  `json:"id"`
	ItemID     uuid.UUID  `json:"item_id"`
	Size       string     `json:"size"`
	AccessCode string     `json:"access_code"`
	OwnerID    *uuid.UUID `json:"owner_id,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UnitList is a cursor page of units.
type UnitList struct {
	Units      []UnitResponse `json:"units"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// LookupResponse resolves an access code to its unit and surrounding
// catalog context.
type LookupResponse struct {
	Unit       UnitResponse      `json:"unit"`
	Item       *LookupItem       `json:"item,omitempty"`
	Collection *LookupCollection `json:"collection,omitempty"`
	Owner      *LookupOwner      `json:"owner,omitempty"`
}

// LookupItem is the item summary embedded in a lookup result.
type LookupItem struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Slug   string    `json:"slug"`
	Rarity string    `json:"rarity"`
}

// LookupCollection is the collection summary embedded in a lookup result.
type LookupCollection struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// LookupOwner is the owner summary embedded in a lookup result.
type LookupOwner struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

func toUnitResponse(unit *models.Unit) UnitResponse {
	return UnitResponse{
		ID:         unit.ID,
		ItemID:     unit.ItemID,
		Size:       unit.Size.String(),
		AccessCode: unit.AccessCode,
		OwnerID:    unit.OwnerID,
		AssignedAt: unit.AssignedAt,
		CreatedAt:  unit.CreatedAt,
	}
}

func toLookupResponse(unit *models.Unit) *LookupResponse {
	out := &LookupResponse{Unit: toUnitResponse(unit)}
	if unit.Item != nil {
		out.Item = &LookupItem{
			ID:     unit.Item.ID,
			Name:   unit.Item.Name,
			Slug:   unit.Item.Slug,
			Rarity: unit.Item.Rarity.String(),
		}
		if unit.Item.Collection != nil {
			out.Collection = &LookupCollection{
				ID:   unit.Item.Collection.ID,
				Name: unit.Item.Collection.Name,
				Slug: unit.Item.Collection.Slug,
			}
		}
	}
	if unit.Owner != nil {
		out.Owner = &LookupOwner{
			ID:          unit.Owner.ID,
			DisplayName: unit.Owner.DisplayName,
		}
	}
	return out
}
