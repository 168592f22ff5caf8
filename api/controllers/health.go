package controllers

import (
	"context"
	"net/http"

	"github.com/seemtoseven/registry-backend/api/responses"
	"github.com/seemtoseven/registry-backend/pkg/config"
	"github.com/seemtoseven/registry-backend/pkg/logger"
)

const envHeader = "X-Registry-Env"

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the backing stores. A nil dependency
// is treated as intentionally disabled and skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	deps := []struct {
		name string
		ping pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		status := map[string]string{"status": "ready"}
		healthy := true
		for _, dep := range deps {
			if dep.ping == nil {
				status[dep.name] = "disabled"
				continue
			}
			if err := dep.ping.Ping(r.Context()); err != nil {
				healthy = false
				status[dep.name] = "unreachable"
				if logg != nil {
					logg.Error(r.Context(), "health."+dep.name, err)
				}
				continue
			}
			status[dep.name] = "ok"
		}

		if !healthy {
			status["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
