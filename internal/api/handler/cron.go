package handler

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
)

const CronJobTypeWhatsAppSync = "whatsapp-sync"

// SyncJob é o contrato mínimo de um job agendado que pode ser disparado manualmente
type SyncJob interface {
	TriggerManualSync(ctx context.Context) bool
	GetStatus() map[string]any
}

// CronJobServices contém os jobs que podem ser executados manualmente
type CronJobServices struct {
	WhatsAppSyncService SyncJob
}

func (s CronJobServices) byType(cronType string) (SyncJob, bool) {
	switch cronType {
	case CronJobTypeWhatsAppSync:
		return s.WhatsAppSyncService, s.WhatsAppSyncService != nil
	default:
		return nil, false
	}
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		job, ok := services.byType(cronType)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: "+CronJobTypeWhatsAppSync, nil)
			return
		}

		// o job sobrevive ao fim da requisição
		started := job.TriggerManualSync(context.WithoutCancel(r.Context()))

		log.ForContext(r.Context()).WithFields(log.Fields{
			"sync_type":    cronType,
			"sync_started": started,
		}).Info("cron: execução manual solicitada")

		message := "Cron job iniciada com sucesso"
		if !started {
			message = "Cron job já está em execução"
		}

		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"message": message,
			"type":    cronType,
			"started": started,
		})
	})
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.WhatsAppSyncService != nil {
			status[CronJobTypeWhatsAppSync] = services.WhatsAppSyncService.GetStatus()
		}

		writeJSON(w, r, http.StatusOK, status)
	})
}
