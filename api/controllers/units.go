package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seemtoseven/registry-backend/api/responses"
	"github.com/seemtoseven/registry-backend/api/validators"
	unitsvc "github.com/seemtoseven/registry-backend/internal/units"
	pkgerrors "github.com/seemtoseven/registry-backend/pkg/errors"
	"github.com/seemtoseven/registry-backend/pkg/logger"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

type createUnitRequest struct {
	Size string `json:"size" validate:"required"`
}

type assignOwnerRequest struct {
	OwnerID   uuid.UUID `json:"owner_id" validate:"required"`
	Overwrite bool      `json:"overwrite"`
}

// UnitCreate adds one operator-created unit to an item.
func UnitCreate(svc unitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "units service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createUnitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unit, err := svc.CreateUnit(r.Context(), unitsvc.CreateUnitInput{ItemID: itemID, Size: payload.Size})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, unit)
	}
}

// UnitAssign claims a unit for a user.
func UnitAssign(svc unitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "units service unavailable"))
			return
		}

		unitID, err := pathUUID(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignOwnerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithUnitID(ctx, unitID.String())
		}

		unit, err := svc.AssignOwner(ctx, unitsvc.AssignOwnerInput{
			UnitID:    unitID,
			OwnerID:   payload.OwnerID,
			Overwrite: payload.Overwrite,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, unit)
	}
}

// UnitUnassign releases a unit back into the unowned pool.
func UnitUnassign(svc unitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "units service unavailable"))
			return
		}

		unitID, err := pathUUID(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithUnitID(ctx, unitID.String())
		}

		unit, err := svc.UnassignOwner(ctx, unitID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, unit)
	}
}

// UnitDelete removes a unit; owned units need ?force=true.
func UnitDelete(svc unitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "units service unavailable"))
			return
		}

		unitID, err := pathUUID(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		force := strings.EqualFold(r.URL.Query().Get("force"), "true")

		if err := svc.DeleteUnit(r.Context(), unitsvc.DeleteUnitInput{UnitID: unitID, Force: force}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// UnitList pages through an item's units (?item_id= required).
func UnitList(svc unitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "units service unavailable"))
			return
		}

		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListUnits(r.Context(), unitsvc.ListUnitsInput{
			ItemID: itemID,
			Params: pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// UnitLookup resolves an access code to its unit, item and collection.
func UnitLookup(svc unitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "units service unavailable"))
			return
		}

		code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "accessCode")))
		result, err := svc.LookupByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
