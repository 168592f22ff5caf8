package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seemtoseven/registry-backend/api/controllers"
	"github.com/seemtoseven/registry-backend/api/middleware"
	"github.com/seemtoseven/registry-backend/internal/collections"
	"github.com/seemtoseven/registry-backend/internal/items"
	"github.com/seemtoseven/registry-backend/internal/units"
	"github.com/seemtoseven/registry-backend/pkg/config"
	"github.com/seemtoseven/registry-backend/pkg/db"
	"github.com/seemtoseven/registry-backend/pkg/logger"
	"github.com/seemtoseven/registry-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	collectionsService collections.Service,
	itemsService items.Service,
	unitsService units.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/collections", func(r chi.Router) {
			r.Post("/", controllers.CollectionCreate(collectionsService, logg))
			r.Get("/", controllers.CollectionList(collectionsService, logg))
			r.Get("/{collectionId}", controllers.CollectionDetail(collectionsService, logg))
			r.Patch("/{collectionId}", controllers.CollectionUpdate(collectionsService, logg))
			r.Delete("/{collectionId}", controllers.CollectionDelete(collectionsService, logg))

			r.Route("/{collectionId}/sizes", func(r chi.Router) {
				r.Get("/", controllers.TemplateList(collectionsService, logg))
				r.Post("/", controllers.TemplateSet(collectionsService, logg))
				r.Patch("/{size}", controllers.TemplateUpdate(collectionsService, logg))
				r.Delete("/{size}", controllers.TemplateDelete(collectionsService, logg))
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(itemsService, logg))
			r.Get("/", controllers.ItemList(itemsService, logg))
			r.Get("/lookup/{accessCode}", controllers.UnitLookup(unitsService, logg))
			r.Get("/{itemId}", controllers.ItemDetail(itemsService, logg))
			r.Patch("/{itemId}", controllers.ItemUpdate(itemsService, logg))
			r.Delete("/{itemId}", controllers.ItemDelete(itemsService, logg))
			r.Post("/{itemId}/units", controllers.UnitCreate(unitsService, logg))
		})

		r.Route("/units", func(r chi.Router) {
			r.Get("/", controllers.UnitList(unitsService, logg))
			r.Post("/{unitId}/assign", controllers.UnitAssign(unitsService, logg))
			r.Post("/{unitId}/unassign", controllers.UnitUnassign(unitsService, logg))
			r.Delete("/{unitId}", controllers.UnitDelete(unitsService, logg))
		})
	})

	return r
}
