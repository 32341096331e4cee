package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthcheckHandler responde 503 apenas quando o banco está indisponível.
// A sessão do WhatsApp é informativa.
func HealthcheckHandler(db Pinger, session whatsapp.WhatsAppIntegrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		database := "ok"
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				log.ForContext(r.Context()).WithError(err).Warn("healthcheck: banco indisponível")
				status = http.StatusServiceUnavailable
				database = "unavailable"
			}
		}

		payload := map[string]any{
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		}
		if session != nil {
			payload["whatsapp"] = session.Status().State
		}

		writeJSON(w, r, status, payload)
	})
}
