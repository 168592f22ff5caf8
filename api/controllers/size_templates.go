package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seemtoseven/registry-backend/api/responses"
	"github.com/seemtoseven/registry-backend/api/validators"
	collectionsvc "github.com/seemtoseven/registry-backend/internal/collections"
	pkgerrors "github.com/seemtoseven/registry-backend/pkg/errors"
	"github.com/seemtoseven/registry-backend/pkg/logger"
)

// TemplateSet creates or updates a size allocation and resyncs every item
// in the collection.
func TemplateSet(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		collectionID, err := pathUUID(r, "collectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload collectionsvc.SetTemplateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.CollectionID = collectionID

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCollectionID(ctx, collectionID.String())
		}

		template, err := svc.SetTemplate(ctx, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, template)
	}
}

type updateTemplateRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// TemplateUpdate rewrites the quantity of one size allocation, with the
// size taken from the path.
func TemplateUpdate(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		collectionID, err := pathUUID(r, "collectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size := chi.URLParam(r, "size")

		var payload updateTemplateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCollectionID(ctx, collectionID.String())
		}

		template, err := svc.SetTemplate(ctx, collectionsvc.SetTemplateInput{
			CollectionID: collectionID,
			Size:         size,
			Quantity:     payload.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, template)
	}
}

// TemplateDelete removes one size allocation and resyncs.
func TemplateDelete(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		collectionID, err := pathUUID(r, "collectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size := chi.URLParam(r, "size")

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCollectionID(ctx, collectionID.String())
		}

		if err := svc.DeleteTemplate(ctx, collectionID, size); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// TemplateList returns the collection's size allocations ordered by size.
func TemplateList(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		collectionID, err := pathUUID(r, "collectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		templates, err := svc.ListTemplates(r.Context(), collectionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, templates)
	}
}
