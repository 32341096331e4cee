package handler

import (
	"net/http"
	"time"

	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	"github.com/vfg2006/leads-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/importing"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/leads"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/reporting"
	"github.com/vfg2006/leads-dashboard-api/pkg/metrics"
	"github.com/vfg2006/leads-dashboard-api/pkg/middleware"
)

func Healthcheck(db Pinger, session whatsapp.WhatsAppIntegrator) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db, session),
		},
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: metrics.Handler(),
		},
	}
}

func Leads(service leads.LeadService, conversation messaging.ConversationService, location *time.Location) []router.Route {
	return []router.Route{
		{
			Path:    "/api/leads",
			Method:  http.MethodGet,
			Handler: ListLeads(service, location),
		},
		{
			Path:    "/api/leads",
			Method:  http.MethodPost,
			Handler: CreateLead(service),
		},
		{
			Path:    "/api/leads/:id",
			Method:  http.MethodGet,
			Handler: GetLead(service),
		},
		{
			Path:    "/api/leads/:id",
			Method:  http.MethodPut,
			Handler: UpdateLead(service),
		},
		{
			Path:    "/api/leads/:id",
			Method:  http.MethodDelete,
			Handler: DeleteLead(service),
		},
		{
			Path:    "/api/leads/:id/messages",
			Method:  http.MethodGet,
			Handler: ListLeadMessages(conversation),
		},
	}
}

// Import só registra POST: o httprouter separa as árvores por método e
// /api/leads/:id não existe em POST.
func Import(service importing.ImportService, maxUploadMB int64) []router.Route {
	return []router.Route{
		{
			Path:    "/api/leads/import",
			Method:  http.MethodPost,
			Handler: ImportLeads(service),
		},
		{
			Path:    "/api/leads/import/file",
			Method:  http.MethodPost,
			Handler: ImportFile(service, maxUploadMB),
		},
		{
			Path:    "/api/leads/import/preview",
			Method:  http.MethodPost,
			Handler: PreviewImport(service, maxUploadMB),
		},
	}
}

// Webhooks são públicos e passam pelo limitador por IP
func Webhooks(service leads.LeadService, limiter *middleware.IPRateLimiter) []router.Route {
	return []router.Route{
		{
			Path:        "/api/webhook/leads",
			Method:      http.MethodPost,
			Handler:     LeadWebhook(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.RateLimit(limiter)},
		},
		{
			Path:        "/api/webhook/form",
			Method:      http.MethodPost,
			Handler:     FormWebhook(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.RateLimit(limiter)},
		},
	}
}

func Analytics(service reporting.AnalyticsService) []router.Route {
	return []router.Route{
		{
			Path:    "/api/analytics",
			Method:  http.MethodGet,
			Handler: GetAnalytics(service, time.Now),
		},
	}
}

func WhatsApp(conversation messaging.ConversationService, session whatsapp.WhatsAppIntegrator, limiter *middleware.IPRateLimiter) []router.Route {
	return []router.Route{
		{
			Path:        "/api/whatsapp/webhook",
			Method:      http.MethodPost,
			Handler:     WhatsAppWebhook(conversation),
			Middlewares: []func(http.Handler) http.Handler{middleware.RateLimit(limiter)},
		},
		{
			Path:    "/api/whatsapp/send",
			Method:  http.MethodPost,
			Handler: SendWhatsAppMessage(conversation),
		},
		{
			Path:    "/api/whatsapp/sync",
			Method:  http.MethodPost,
			Handler: SyncWhatsApp(conversation),
		},
		{
			Path:    "/api/whatsapp/status",
			Method:  http.MethodGet,
			Handler: WhatsAppStatus(session),
		},
		{
			Path:    "/api/whatsapp/session",
			Method:  http.MethodPost,
			Handler: InitWhatsAppSession(session),
		},
		{
			Path:    "/api/whatsapp/session",
			Method:  http.MethodDelete,
			Handler: DestroyWhatsAppSession(session),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
