package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/leads-dashboard-api/internal/config"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging/mocks"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func newSyncConfig(enabled bool) *config.Config {
	return &config.Config{
		App: config.App{Location: time.UTC},
		WhatsAppSync: config.WhatsAppSync{
			CronSchedule: "*/15 * * * *",
			Enabled:      enabled,
		},
	}
}

func waitIdle(t *testing.T, s *WhatsAppSyncService) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.GetStatus()["sync_running"] == false
	}, time.Second, 5*time.Millisecond)
}

func TestWhatsAppSyncService_TriggerManualSync(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conversation := mocks.NewMockConversationService(ctrl)
	conversation.EXPECT().
		SyncHistory(gomock.Any()).
		Return(&domain.SyncResult{Total: 3, Saved: 2, Skipped: 1}, nil)

	service := NewWhatsAppSyncService(conversation, newSyncConfig(true))

	assert.True(t, service.TriggerManualSync(context.Background()))
	waitIdle(t, service)

	status := service.GetStatus()
	assert.Equal(t, &domain.SyncResult{Total: 3, Saved: 2, Skipped: 1}, status["last_result"])
	assert.Equal(t, "", status["last_error"])
	assert.False(t, status["last_sync_completed_at"].(time.Time).IsZero())
}

func TestWhatsAppSyncService_ExecucaoUnica(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	conversation := mocks.NewMockConversationService(ctrl)
	conversation.EXPECT().
		SyncHistory(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (*domain.SyncResult, error) {
			<-release
			return &domain.SyncResult{}, nil
		}).
		Times(1)

	service := NewWhatsAppSyncService(conversation, newSyncConfig(true))

	assert.True(t, service.TriggerManualSync(context.Background()))
	assert.False(t, service.TriggerManualSync(context.Background()))

	// a execução agendada também é ignorada enquanto a manual roda
	service.runSync(context.Background())

	close(release)
	waitIdle(t, service)

	assert.True(t, service.tryAcquire())
}

func TestWhatsAppSyncService_Erro(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conversation := mocks.NewMockConversationService(ctrl)
	conversation.EXPECT().
		SyncHistory(gomock.Any()).
		Return(nil, errors.New("gateway indisponível"))

	service := NewWhatsAppSyncService(conversation, newSyncConfig(true))
	service.runSync(context.Background())

	status := service.GetStatus()
	assert.Equal(t, "gateway indisponível", status["last_error"])
	assert.Equal(t, false, status["sync_running"])
}

func TestWhatsAppSyncService_StartDesabilitado(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewWhatsAppSyncService(mocks.NewMockConversationService(ctrl), newSyncConfig(false))
	require.NoError(t, service.Start(context.Background()))
	assert.False(t, service.scheduler.IsRunning())
}

func TestWhatsAppSyncService_StartCronInvalido(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := newSyncConfig(true)
	cfg.WhatsAppSync.CronSchedule = "isso não é cron"

	service := NewWhatsAppSyncService(mocks.NewMockConversationService(ctrl), cfg)
	assert.Error(t, service.Start(context.Background()))
}
