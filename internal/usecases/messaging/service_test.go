package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	wamocks "github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/mocks"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/repository/repositorytest"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/resolving"
	"github.com/vfg2006/leads-dashboard-api/pkg/cache"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"go.uber.org/mock/gomock"
)

const (
	customerPhone = "5511987654321"
	businessPhone = "5511912345678"
)

type fixture struct {
	service  *Service
	leads    *repositorytest.LeadRepository
	messages *repositorytest.MessageRepository
	session  *wamocks.MockWhatsAppIntegrator
}

func newFixture(t *testing.T, guard cache.DeliveryGuard) *fixture {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	leads := repositorytest.NewLeadRepository()
	messages := repositorytest.NewMessageRepository()
	session := wamocks.NewMockWhatsAppIntegrator(ctrl)

	return &fixture{
		service:  NewService(resolving.NewService(leads), leads, messages, session, guard),
		leads:    leads,
		messages: messages,
		session:  session,
	}
}

func inbound(id string) domain.InboundMessage {
	return domain.InboundMessage{
		MessageID: id,
		Sender:    customerPhone + "@c.us",
		Text:      "mensagem " + id,
		Timestamp: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func page(ids ...string) []domain.ProviderMessage {
	result := make([]domain.ProviderMessage, 0, len(ids))
	for _, id := range ids {
		result = append(result, domain.ProviderMessage{
			ID:        id,
			From:      customerPhone + "@c.us",
			To:        businessPhone + "@c.us",
			Text:      "mensagem " + id,
			Timestamp: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		})
	}
	return result
}

func assertUniqueMessageIDs(t *testing.T, messages []domain.Message) {
	t.Helper()
	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		_, duplicated := seen[m.MessageID]
		assert.False(t, duplicated, "message_id duplicado: %s", m.MessageID)
		seen[m.MessageID] = struct{}{}
	}
}

func TestHandleInboundTelefoneDesconhecido(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.service.HandleInbound(context.Background(), inbound("m1"))
	require.NoError(t, err)
	require.NotNil(t, result.Message)
	assert.False(t, result.Duplicate)

	leads := f.leads.All()
	require.Len(t, leads, 1)
	assert.Equal(t, domain.WhatsAppSource, leads[0].Source)
	assert.Equal(t, domain.DefaultLeadStatus, leads[0].Status)
	assert.Equal(t, "WhatsApp User 4321", leads[0].Name)
	assert.Equal(t, "whatsapp_"+customerPhone+"@example.com", leads[0].Email)

	messages := f.messages.All()
	require.Len(t, messages, 1)
	assert.Equal(t, leads[0].ID, messages[0].LeadID)
	assert.False(t, messages[0].IsFromMe)
}

func TestHandleInboundAposEdicaoDoTelefone(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.HandleInbound(ctx, inbound("a1"))
	require.NoError(t, err)

	leads := f.leads.All()
	require.Len(t, leads, 1)
	edited := leads[0]
	edited.Phone = "5511900000000"
	require.NoError(t, f.leads.Update(ctx, &edited))

	// o número original não casa mais por telefone, mas o email do placeholder ainda existe
	result, err := f.service.HandleInbound(ctx, inbound("a2"))
	require.NoError(t, err)
	require.NotNil(t, result.Message)
	assert.Equal(t, edited.ID, result.Message.LeadID)

	assert.Len(t, f.leads.All(), 1)
	messages := f.messages.All()
	require.Len(t, messages, 2)
	assertUniqueMessageIDs(t, messages)
}

func TestHandleInboundCasaLeadDeWebhookComTelefoneNacional(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	lead, _, err := resolving.NewService(f.leads).ResolveByEmail(ctx, domain.LeadFields{
		Name:   "Joana",
		Email:  "joana@x.com",
		Phone:  "(47) 9123-4567",
		Source: "webhook",
	}, resolving.KeepOnMatch)
	require.NoError(t, err)

	message := inbound("n1")
	message.Sender = "554791234567@c.us"
	result, err := f.service.HandleInbound(ctx, message)
	require.NoError(t, err)

	assert.Equal(t, lead.ID, result.Message.LeadID)
	assert.Len(t, f.leads.All(), 1)
}

func TestHandleInboundValidacao(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.service.HandleInbound(context.Background(), domain.InboundMessage{Sender: customerPhone})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.HandleInbound(context.Background(), domain.InboundMessage{MessageID: "m1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, f.messages.All())
}

func TestSyncHistoryComMensagemJaRecebida(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.HandleInbound(ctx, inbound("m1"))
	require.NoError(t, err)

	f.session.EXPECT().FetchRecentMessages(gomock.Any()).Return(page("m1", "m2", "m3"), nil)

	result, err := f.service.SyncHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.SyncResult{Total: 3, Saved: 2, Skipped: 1, Errors: 0}, result)

	assert.Len(t, f.messages.All(), 3)
	assert.Len(t, f.leads.All(), 1)
}

func TestSyncHistoryIdempotente(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.session.EXPECT().FetchRecentMessages(gomock.Any()).Return(page("a", "b", "c", "d"), nil).Times(2)

	first, err := f.service.SyncHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Saved)
	assert.Equal(t, 0, first.Skipped)

	second, err := f.service.SyncHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Saved)
	assert.Equal(t, 4, second.Skipped)

	assert.Len(t, f.messages.All(), 4)
}

func TestSyncHistoryUsaContraparte(t *testing.T) {
	f := newFixture(t, nil)

	outgoing := domain.ProviderMessage{
		ID:     "out-1",
		From:   businessPhone + "@c.us",
		To:     customerPhone + "@c.us",
		Text:   "olá",
		FromMe: true,
	}
	f.session.EXPECT().FetchRecentMessages(gomock.Any()).Return([]domain.ProviderMessage{outgoing}, nil)

	result, err := f.service.SyncHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)

	leads := f.leads.All()
	require.Len(t, leads, 1)
	assert.Equal(t, customerPhone, leads[0].Phone)

	messages := f.messages.All()
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsFromMe)
	assert.False(t, messages[0].Timestamp.IsZero())
}

func TestSyncHistoryFalhaPorMensagemNaoInterrompe(t *testing.T) {
	f := newFixture(t, nil)
	f.messages.FailInsertFor["m2"] = fmt.Errorf("%w: conexão perdida", domain.ErrStore)

	messages := page("m1", "m2", "m3")
	messages = append(messages, domain.ProviderMessage{ID: "", From: customerPhone})
	messages = append(messages, domain.ProviderMessage{ID: "m5", From: "sem-telefone"})

	f.session.EXPECT().FetchRecentMessages(gomock.Any()).Return(messages, nil)

	result, err := f.service.SyncHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.SyncResult{Total: 5, Saved: 2, Skipped: 0, Errors: 3}, result)
	assert.Equal(t, result.Total, result.Saved+result.Skipped+result.Errors)
}

func TestSyncHistoryErroDoProvedor(t *testing.T) {
	f := newFixture(t, nil)

	f.session.EXPECT().
		FetchRecentMessages(gomock.Any()).
		Return(nil, fmt.Errorf("%w: estado atual disconnected", domain.ErrSessionNotReady))

	result, err := f.service.SyncHistory(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)
}

func TestPushEPullSobrepostosEmQualquerOrdem(t *testing.T) {
	t.Run("push antes do pull", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()

		for _, id := range []string{"m1", "m2"} {
			_, err := f.service.HandleInbound(ctx, inbound(id))
			require.NoError(t, err)
		}

		f.session.EXPECT().FetchRecentMessages(gomock.Any()).Return(page("m1", "m2", "m3"), nil)
		result, err := f.service.SyncHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 2, result.Skipped)

		assert.Len(t, f.messages.All(), 3)
		assertUniqueMessageIDs(t, f.messages.All())
	})

	t.Run("pull antes do push", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()

		f.session.EXPECT().FetchRecentMessages(gomock.Any()).Return(page("m1", "m2", "m3"), nil)
		_, err := f.service.SyncHistory(ctx)
		require.NoError(t, err)

		result, err := f.service.HandleInbound(ctx, inbound("m2"))
		require.NoError(t, err)
		assert.True(t, result.Duplicate)
		assert.Nil(t, result.Message)

		assert.Len(t, f.messages.All(), 3)
		assertUniqueMessageIDs(t, f.messages.All())
	})
}

func TestPushEPullConcorrentes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	ids := []string{"c1", "c2", "c3", "c4", "c5", "c6"}
	f.session.EXPECT().FetchRecentMessages(gomock.Any()).Return(page(ids...), nil).AnyTimes()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.SyncHistory(ctx)
			assert.NoError(t, err)
		}()
	}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.service.HandleInbound(ctx, inbound(id))
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Len(t, f.messages.All(), len(ids))
	assertUniqueMessageIDs(t, f.messages.All())
	assert.Len(t, f.leads.All(), 1)
}

func TestHandleInboundComGuardRedis(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	guard := cache.NewRedisDeliveryGuard(client, time.Hour)

	f := newFixture(t, guard)
	ctx := context.Background()

	first, err := f.service.HandleInbound(ctx, inbound("r1"))
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := f.service.HandleInbound(ctx, inbound("r1"))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Nil(t, second.Lead)

	assert.Len(t, f.messages.All(), 1)
}

func TestHandleInboundLiberaGuardEmFalha(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	guard := cache.NewRedisDeliveryGuard(client, time.Hour)

	f := newFixture(t, guard)
	ctx := context.Background()

	f.messages.FailInsertFor["r2"] = fmt.Errorf("%w: timeout", domain.ErrStore)
	_, err := f.service.HandleInbound(ctx, inbound("r2"))
	require.ErrorIs(t, err, domain.ErrStore)

	// a reentrega do provedor é processada normalmente
	delete(f.messages.FailInsertFor, "r2")
	result, err := f.service.HandleInbound(ctx, inbound("r2"))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Len(t, f.messages.All(), 1)
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	lead, _, err := f.leads.UpsertByEmail(ctx, &domain.Lead{
		Name:   "Ana",
		Email:  "ana@x.com",
		Phone:  "(11) 98765-4321",
		Source: "web",
	}, false)
	require.NoError(t, err)

	f.session.EXPECT().SendText(gomock.Any(), customerPhone, "Olá Ana!").Return("wamid.1", nil)
	f.session.EXPECT().Status().Return(whatsapp.SessionStatus{State: whatsapp.StateReady, Phone: businessPhone})

	message, err := f.service.SendMessage(ctx, domain.SendMessageRequest{LeadID: lead.ID, Message: " Olá Ana! "})
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", message.MessageID)
	assert.True(t, message.IsFromMe)
	assert.Equal(t, businessPhone, message.Sender)

	updated, err := f.leads.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.True(t, updated.MessageSent)

	// a sincronização seguinte encontra a mesma mensagem no histórico
	f.session.EXPECT().FetchRecentMessages(gomock.Any()).Return([]domain.ProviderMessage{{
		ID:     "wamid.1",
		From:   businessPhone,
		To:     customerPhone,
		Text:   "Olá Ana!",
		FromMe: true,
	}}, nil)

	result, err := f.service.SyncHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, f.messages.All(), 1)
}

func TestSendMessageErros(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(f *fixture) domain.SendMessageRequest
		expectedErr error
	}{
		{
			name: "lead inexistente",
			setup: func(f *fixture) domain.SendMessageRequest {
				return domain.SendMessageRequest{LeadID: 999, Message: "oi"}
			},
			expectedErr: domain.ErrNotFound,
		},
		{
			name: "mensagem vazia",
			setup: func(f *fixture) domain.SendMessageRequest {
				return domain.SendMessageRequest{LeadID: 1, Message: "   "}
			},
			expectedErr: domain.ErrValidation,
		},
		{
			name: "provedor rejeita o envio",
			setup: func(f *fixture) domain.SendMessageRequest {
				lead, _, _ := f.leads.UpsertByEmail(context.Background(), &domain.Lead{Name: "Ana", Email: "ana@x.com", Phone: customerPhone}, false)
				f.session.EXPECT().
					SendText(gomock.Any(), customerPhone, "oi").
					Return("", &domain.ProviderError{StatusCode: 400, Detail: "número inválido"})
				return domain.SendMessageRequest{LeadID: lead.ID, Message: "oi"}
			},
			expectedErr: domain.ErrExternalProvider,
		},
		{
			name: "sessão não está pronta",
			setup: func(f *fixture) domain.SendMessageRequest {
				lead, _, _ := f.leads.UpsertByEmail(context.Background(), &domain.Lead{Name: "Ana", Email: "ana@x.com", Phone: customerPhone}, false)
				f.session.EXPECT().
					SendText(gomock.Any(), customerPhone, "oi").
					Return("", domain.ErrSessionNotReady)
				return domain.SendMessageRequest{LeadID: lead.ID, Message: "oi"}
			},
			expectedErr: domain.ErrSessionNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			request := tt.setup(f)

			message, err := f.service.SendMessage(context.Background(), request)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectedErr))
			assert.Nil(t, message)
			assert.Empty(t, f.messages.All())
		})
	}
}

func TestListMessages(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.ListMessages(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	result, err := f.service.HandleInbound(ctx, inbound("m1"))
	require.NoError(t, err)

	messages, err := f.service.ListMessages(ctx, result.Lead.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].MessageID)
}
