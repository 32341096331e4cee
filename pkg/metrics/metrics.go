// Package metrics expõe os contadores Prometheus do pipeline de ingestão.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LeadsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_imported_total",
			Help: "Linhas de importação processadas por resultado",
		},
		[]string{"outcome"},
	)

	LeadsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_resolved_total",
			Help: "Resoluções de identidade por chave e resultado",
		},
		[]string{"key", "outcome"},
	)

	WhatsAppMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_messages_total",
			Help: "Mensagens do WhatsApp por caminho de ingestão e resultado",
		},
		[]string{"path", "outcome"},
	)
)

// Handler retorna o handler HTTP do endpoint /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
