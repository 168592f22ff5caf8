package collections

import (
	"time"

	"github.com/google/uuid"

	"github.com/seemtoseven/registry-backend/internal/inventory"
	"github.com/seemtoseven/registry-backend/pkg/db/models"
)

// CreateCollectionInput carries the fields for a new collection.
type CreateCollectionInput struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Slug        string     `json:"slug" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	ReleaseDate *time.Time `json:"release_date"`
}

// UpdateCollectionInput carries mutable collection fields; nil means
// unchanged.
type UpdateCollectionInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Slug        *string    `json:"slug" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	ReleaseDate *time.Time `json:"release_date"`
}

// SetTemplateInput creates or updates one (collection, size) allocation.
type SetTemplateInput struct {
	CollectionID uuid.UUID
	Size         string `json:"size" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
}

// CollectionResponse is the wire representation of a collection.
type CollectionResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TemplateResponse is one size allocation row.
type TemplateResponse struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// ItemSummary is the per-item availability rollup inside a collection
// detail payload.
type ItemSummary struct {
	ID              uuid.UUID                    `json:"id"`
	Name            string                       `json:"name"`
	Slug            string                       `json:"slug"`
	Rarity          string                       `json:"rarity"`
	TotalUnits      int                          `json:"total_units"`
	RemainingUnits  int                          `json:"remaining_units"`
	SizeInventories []inventory.SizeAvailability `json:"size_inventories"`
}

// CollectionDetail embeds templates, aggregates and per-item summaries.
type CollectionDetail struct {
	CollectionResponse
	Templates      []TemplateResponse `json:"size_templates"`
	TotalUnits     int                `json:"total_units"`
	RemainingUnits int                `json:"remaining_units"`
	Items          []ItemSummary      `json:"items"`
}

// CollectionList is a cursor page of collections.
type CollectionList struct {
	Collections []CollectionResponse `json:"collections"`
	NextCursor  string               `json:"next_cursor,omitempty"`
	HasMore     bool                 `json:"has_more"`
}

func toCollectionResponse(collection *models.Collection) CollectionResponse {
	return CollectionResponse{
		ID:          collection.ID,
		Name:        collection.Name,
		Slug:        collection.Slug,
		Description: collection.Description,
		ReleaseDate: collection.ReleaseDate,
		CreatedAt:   collection.CreatedAt,
		UpdatedAt:   collection.UpdatedAt,
	}
}
