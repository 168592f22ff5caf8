package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/seemtoseven/registry-backend/internal/inventory"
	"github.com/seemtoseven/registry-backend/pkg/db/models"
)

// CreateItemInput carries the fields for a new apparel item.
type CreateItemInput struct {
	CollectionID uuid.UUID `json:"collection_id" validate:"required"`
	Name         string    `json:"name" validate:"required,min=1,max=200"`
	Slug         string    `json:"slug" validate:"required,min=1,max=200"`
	Rarity       string    `json:"rarity" validate:"omitempty,oneof=common rare epic legendary"`
}

// UpdateItemInput carries the mutable item fields; nil means unchanged.
type UpdateItemInput struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=200"`
	Slug   *string `json:"slug" validate:"omitempty,min=1,max=200"`
	Rarity *string `json:"rarity" validate:"omitempty,oneof=common rare epic legendary"`
}

// ItemResponse is the wire representation of an item.
type ItemResponse struct {
	ID           uuid.UUID `json:"id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Rarity       string    `json:"rarity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ItemDetail embeds availability aggregates and the per-size breakdown.
type ItemDetail struct {
	ItemResponse
	TotalUnits      int                          `json:"total_units"`
	RemainingUnits  int                          `json:"remaining_units"`
	SizeInventories []inventory.SizeAvailability `json:"size_inventories"`
}

// ItemList is a cursor page of items.
type ItemList struct {
	Items      []ItemResponse `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

func toItemResponse(item *models.ApparelItem) ItemResponse {
	return ItemResponse{
		ID:           item.ID,
		CollectionID: item.CollectionID,
		Name:         item.Name,
		Slug:         item.Slug,
		Rarity:       item.Rarity.String(),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}
