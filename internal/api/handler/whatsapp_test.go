package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	whatsappmocks "github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/mocks"
	"github.com/vfg2006/leads-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging/mocks"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"github.com/vfg2006/leads-dashboard-api/pkg/middleware"
	"go.uber.org/mock/gomock"
)

type whatsappFixture struct {
	conversation *mocks.MockConversationService
	session      *whatsappmocks.MockWhatsAppIntegrator
	routes       []router.Route
}

func newWhatsAppFixture(t *testing.T) *whatsappFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &whatsappFixture{
		conversation: mocks.NewMockConversationService(ctrl),
		session:      whatsappmocks.NewMockWhatsAppIntegrator(ctrl),
	}
	f.routes = WhatsApp(f.conversation, f.session, middleware.NewIPRateLimiter(100, 100))
	return f
}

func (f *whatsappFixture) do(req *http.Request) *httptest.ResponseRecorder {
	return serve(f.routes, req)
}

func TestWhatsAppWebhook(t *testing.T) {
	log.SetupTestLogger()

	t.Run("mensagem nova", func(t *testing.T) {
		f := newWhatsAppFixture(t)
		f.conversation.EXPECT().
			HandleInbound(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, message domain.InboundMessage) (*domain.InboundResult, error) {
				assert.Equal(t, "wamid.1", message.MessageID)
				assert.Equal(t, "5511999990000", message.Sender)
				assert.Equal(t, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), message.Timestamp.UTC())
				return &domain.InboundResult{
					Message: &domain.Message{MessageID: "wamid.1"},
					Lead:    &domain.Lead{ID: 1},
				}, nil
			})

		rec := f.do(jsonRequest(http.MethodPost, "/api/whatsapp/webhook",
			`{"messageId":"wamid.1","sender":"5511999990000","text":"oi","timestamp":"2024-05-10T12:00:00Z"}`))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("reentrega", func(t *testing.T) {
		f := newWhatsAppFixture(t)
		f.conversation.EXPECT().
			HandleInbound(gomock.Any(), gomock.Any()).
			Return(&domain.InboundResult{Duplicate: true}, nil)

		rec := f.do(jsonRequest(http.MethodPost, "/api/whatsapp/webhook", `{"messageId":"wamid.1","sender":"5511999990000"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"duplicate":true`)
	})

	invalid := []struct {
		name  string
		body  string
		field string
	}{
		{name: "sem messageId", body: `{"sender":"5511999990000"}`, field: "messageId"},
		{name: "sender em branco", body: `{"messageId":"wamid.1","sender":"   "}`, field: "sender"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			// sem EXPECT: o serviço não pode ser chamado
			f := newWhatsAppFixture(t)

			rec := f.do(jsonRequest(http.MethodPost, "/api/whatsapp/webhook", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			apiErr := decodeAPIError(t, rec)
			assert.Equal(t, apiErrors.ErrInvalidFormat, apiErr.Code)
			assert.Equal(t, map[string]any{"field": tt.field}, apiErr.Details)
		})
	}
}

func TestSendWhatsAppMessage(t *testing.T) {
	log.SetupTestLogger()

	tests := []struct {
		name           string
		body           string
		setup          func(f *whatsappFixture)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "enviada",
			body: `{"leadId":3,"message":"  Olá!  "}`,
			setup: func(f *whatsappFixture) {
				f.conversation.EXPECT().
					SendMessage(gomock.Any(), domain.SendMessageRequest{LeadID: 3, Message: "Olá!"}).
					Return(&domain.Message{MessageID: "wamid.out", IsFromMe: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "mensagem vazia",
			body:           `{"leadId":3,"message":"   "}`,
			setup:          func(f *whatsappFixture) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrInvalidFormat,
		},
		{
			name:           "lead ausente",
			body:           `{"message":"oi"}`,
			setup:          func(f *whatsappFixture) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrInvalidFormat,
		},
		{
			name: "lead inexistente",
			body: `{"leadId":99,"message":"oi"}`,
			setup: func(f *whatsappFixture) {
				f.conversation.EXPECT().
					SendMessage(gomock.Any(), gomock.Any()).
					Return(nil, domain.NewNotFoundError("lead não encontrado"))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   apiErrors.ErrLeadNotFound,
		},
		{
			name: "sessão não pronta",
			body: `{"leadId":3,"message":"oi"}`,
			setup: func(f *whatsappFixture) {
				f.conversation.EXPECT().
					SendMessage(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrSessionNotReady)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   apiErrors.ErrCommunication,
		},
		{
			name: "provedor recusou",
			body: `{"leadId":3,"message":"oi"}`,
			setup: func(f *whatsappFixture) {
				f.conversation.EXPECT().
					SendMessage(gomock.Any(), gomock.Any()).
					Return(nil, &domain.ProviderError{StatusCode: 400, Detail: "número inválido"})
			},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   apiErrors.ErrExternalService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWhatsAppFixture(t)
			tt.setup(f)

			rec := f.do(jsonRequest(http.MethodPost, "/api/whatsapp/send", tt.body))
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeAPIError(t, rec).Code)
			}
		})
	}
}

func TestSyncWhatsApp(t *testing.T) {
	log.SetupTestLogger()

	f := newWhatsAppFixture(t)
	f.conversation.EXPECT().
		SyncHistory(gomock.Any()).
		Return(&domain.SyncResult{Total: 3, Saved: 2, Skipped: 1}, nil)

	rec := f.do(jsonRequest(http.MethodPost, "/api/whatsapp/sync", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"results":{"total":3,"saved":2,"skipped":1,"errors":0}}`, rec.Body.String())
}

func TestSyncWhatsAppSessaoNaoPronta(t *testing.T) {
	log.SetupTestLogger()

	f := newWhatsAppFixture(t)
	f.conversation.EXPECT().SyncHistory(gomock.Any()).Return(nil, domain.ErrSessionNotReady)

	assert.Equal(t, http.StatusServiceUnavailable, f.do(jsonRequest(http.MethodPost, "/api/whatsapp/sync", "")).Code)
}

func TestWhatsAppSession(t *testing.T) {
	log.SetupTestLogger()

	ready := whatsapp.SessionStatus{State: whatsapp.StateReady, Ready: true, Phone: "5511900000000"}

	t.Run("status", func(t *testing.T) {
		f := newWhatsAppFixture(t)
		f.session.EXPECT().Status().Return(ready)

		rec := f.do(jsonRequest(http.MethodGet, "/api/whatsapp/status", ""))
		assert.Equal(t, http.StatusOK, rec.Code)

		var status whatsapp.SessionStatus
		decodeBody(t, rec, &status)
		assert.True(t, status.Ready)
		assert.Equal(t, whatsapp.StateReady, status.State)
	})

	t.Run("init", func(t *testing.T) {
		f := newWhatsAppFixture(t)
		f.session.EXPECT().Init(gomock.Any()).Return(nil)
		f.session.EXPECT().Status().Return(ready)

		assert.Equal(t, http.StatusOK, f.do(jsonRequest(http.MethodPost, "/api/whatsapp/session", "")).Code)
	})

	t.Run("init com gateway desconectado", func(t *testing.T) {
		f := newWhatsAppFixture(t)
		f.session.EXPECT().Init(gomock.Any()).Return(domain.ErrSessionNotReady)

		assert.Equal(t, http.StatusServiceUnavailable, f.do(jsonRequest(http.MethodPost, "/api/whatsapp/session", "")).Code)
	})

	t.Run("destroy", func(t *testing.T) {
		f := newWhatsAppFixture(t)
		f.session.EXPECT().Destroy().Return(nil)
		f.session.EXPECT().Status().Return(whatsapp.SessionStatus{State: whatsapp.StateDestroyed})

		rec := f.do(jsonRequest(http.MethodDelete, "/api/whatsapp/session", ""))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"state":"destroyed"`)
	})
}
