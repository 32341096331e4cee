package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"github.com/vfg2006/leads-dashboard-api/pkg/validation"
)

const sessionInitTimeout = 30 * time.Second

// WhatsAppWebhook é o caminho push: o provedor entrega uma mensagem por chamada
func WhatsAppWebhook(service messaging.ConversationService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var message domain.InboundMessage
		if !decodeJSON(w, r, &message) {
			return
		}
		message.MessageID = strings.TrimSpace(message.MessageID)
		message.Sender = strings.TrimSpace(message.Sender)

		if err := validation.Struct(message); err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		result, err := service.HandleInbound(r.Context(), message)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("message_id", message.MessageID).Error("whatsapp: erro ao processar webhook")
			apiErrors.WriteDomainError(w, err)
			return
		}

		status := http.StatusCreated
		if result.Duplicate {
			status = http.StatusOK
		}

		writeJSON(w, r, status, map[string]any{
			"success":   true,
			"duplicate": result.Duplicate,
			"message":   result.Message,
			"lead":      result.Lead,
		})
	})
}

func SendWhatsAppMessage(service messaging.ConversationService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request domain.SendMessageRequest
		if !decodeJSON(w, r, &request) {
			return
		}
		request.Message = strings.TrimSpace(request.Message)

		if err := validation.Struct(request); err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		message, err := service.SendMessage(r.Context(), request)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("lead_id", request.LeadID).Error("whatsapp: erro ao enviar mensagem")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"success": true,
			"message": message,
		})
	})
}

// SyncWhatsApp executa o caminho pull de forma síncrona
func SyncWhatsApp(service messaging.ConversationService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := service.SyncHistory(r.Context())
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("whatsapp: erro na sincronização")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"success": true,
			"results": result,
		})
	})
}

func WhatsAppStatus(session whatsapp.WhatsAppIntegrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, session.Status())
	})
}

func InitWhatsAppSession(session whatsapp.WhatsAppIntegrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), sessionInitTimeout)
		defer cancel()

		if err := session.Init(ctx); err != nil {
			log.ForContext(r.Context()).WithError(err).Warn("whatsapp: falha ao iniciar sessão")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, session.Status())
	})
}

func DestroyWhatsAppSession(session whatsapp.WhatsAppIntegrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := session.Destroy(); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("whatsapp: falha ao encerrar sessão")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, session.Status())
	})
}
