package handler

import (
	"net/http"
	"time"

	"github.com/vfg2006/leads-dashboard-api/internal/usecases/reporting"
)

// GetAnalytics sempre responde 200. Em caso de falha o dashboard recebe o
// snapshot zerado com o campo error preenchido.
func GetAnalytics(service reporting.AnalyticsService, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := service.ComputeSnapshot(r.Context(), now())
		if snapshot == nil {
			snapshot = reporting.EmptySnapshot()
		}
		if err != nil {
			snapshot.Error = "Erro ao calcular estatísticas"
		}

		writeJSON(w, r, http.StatusOK, snapshot)
	})
}
