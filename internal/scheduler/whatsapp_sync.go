package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vfg2006/leads-dashboard-api/internal/config"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
)

// WhatsAppSyncService agenda o caminho pull da conversa do WhatsApp
type WhatsAppSyncService struct {
	scheduler    *gocron.Scheduler
	config       config.WhatsAppSync
	conversation messaging.ConversationService
	timeout      time.Duration

	syncMutex           sync.Mutex
	syncRunning         bool
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastResult          *domain.SyncResult
	lastError           string
}

func NewWhatsAppSyncService(conversation messaging.ConversationService, appConfig *config.Config) *WhatsAppSyncService {
	location := appConfig.App.Location
	if location == nil {
		location = time.Local
	}

	log.L.WithFields(log.Fields{
		"sync_cron":    appConfig.WhatsAppSync.CronSchedule,
		"sync_enabled": appConfig.WhatsAppSync.Enabled,
	}).Info("Configuração do agendador de sincronização do WhatsApp carregada")

	return &WhatsAppSyncService{
		scheduler:    gocron.NewScheduler(location),
		config:       appConfig.WhatsAppSync,
		conversation: conversation,
		timeout:      2 * time.Minute,
	}
}

// Start inicia o agendador
func (s *WhatsAppSyncService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		log.L.Info("Sincronização do WhatsApp desabilitada por configuração")
		return nil
	}

	log.L.WithField("sync_cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização do WhatsApp")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização do WhatsApp: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		log.L.Info("Parando agendador de sincronização do WhatsApp")
		s.scheduler.Stop()
	}()

	return nil
}

// tryAcquire garante uma única execução por vez
func (s *WhatsAppSyncService) tryAcquire() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	return true
}

func (s *WhatsAppSyncService) runSync(ctx context.Context) {
	if !s.tryAcquire() {
		log.L.Info("Sincronização do WhatsApp já em andamento, ignorando")
		return
	}
	s.sync(ctx)
}

func (s *WhatsAppSyncService) sync(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
	defer cancel()

	result, err := s.conversation.SyncHistory(ctx)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	s.syncRunning = false
	s.lastSyncCompletedAt = time.Now()
	s.lastResult = result
	s.lastError = ""

	if err != nil {
		s.lastError = err.Error()
		log.L.WithError(err).Error("Erro na sincronização agendada do WhatsApp")
		return
	}

	log.L.WithFields(log.Fields{
		"sync_total":   result.Total,
		"sync_saved":   result.Saved,
		"sync_skipped": result.Skipped,
		"sync_errors":  result.Errors,
		"duration_ms":  s.lastSyncCompletedAt.Sub(s.lastSyncStartedAt).Milliseconds(),
	}).Info("Sincronização agendada do WhatsApp concluída")
}

// TriggerManualSync dispara uma sincronização em segundo plano. Retorna false
// quando já existe uma execução em andamento.
func (s *WhatsAppSyncService) TriggerManualSync(ctx context.Context) bool {
	if !s.tryAcquire() {
		log.L.Info("Sincronização do WhatsApp já em andamento, ignorando solicitação manual")
		return false
	}

	log.L.Info("Iniciando sincronização manual do WhatsApp")
	go s.sync(ctx)
	return true
}

// GetStatus retorna o status atual do agendador
func (s *WhatsAppSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.Enabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_result":            s.lastResult,
		"last_error":             s.lastError,
	}
}
