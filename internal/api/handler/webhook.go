package handler

import (
	"mime"
	"net/http"
	"strings"

	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/leads"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
)

// WebhookSource é a origem atribuída quando o webhook genérico não informa nenhuma
const WebhookSource = "webhook"

type webhookResponse struct {
	Success bool         `json:"success"`
	Created bool         `json:"created"`
	Lead    *domain.Lead `json:"lead"`
}

// LeadWebhook recebe leads de integrações externas. Responde 201 quando o lead
// foi criado e 200 quando o email já existia.
func LeadWebhook(service leads.LeadService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if !decodeJSON(w, r, &body) {
			return
		}

		payload := leads.FlattenJSON(body)
		if !hasSource(payload) {
			payload["source"] = WebhookSource
		}

		createFromPayload(w, r, service, payload)
	})
}

// FormWebhook recebe envios de construtores de formulário em JSON,
// x-www-form-urlencoded ou multipart.
func FormWebhook(service leads.LeadService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := readFormPayload(w, r)
		if !ok {
			return
		}

		log.ForContext(r.Context()).WithField("lead_form_keys", len(payload)).Debug("webhook: formulário recebido")

		createFromPayload(w, r, service, payload)
	})
}

func createFromPayload(w http.ResponseWriter, r *http.Request, service leads.LeadService, payload map[string]string) {
	lead, resolution, err := service.CreateFromForm(r.Context(), payload)
	if err != nil {
		log.ForContext(r.Context()).WithError(err).Warn("webhook: lead rejeitado")
		apiErrors.WriteDomainError(w, err)
		return
	}

	writeJSON(w, r, statusForResolution(resolution), webhookResponse{
		Success: true,
		Created: resolution == domain.ResolutionCreated,
		Lead:    lead,
	})
}

func readFormPayload(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json", "":
		var body map[string]interface{}
		if !decodeJSON(w, r, &body) {
			return nil, false
		}
		return leads.FlattenJSON(body), true

	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseMultipartForm(maxJSONBody); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formulário inválido", nil)
			return nil, false
		}

	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formulário inválido", nil)
			return nil, false
		}
	}

	payload := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	return payload, true
}

func hasSource(payload map[string]string) bool {
	for key, value := range payload {
		switch strings.ToLower(key) {
		case "source", "origem", "utm_source":
			if strings.TrimSpace(value) != "" {
				return true
			}
		}
	}
	return false
}
