package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/leads/mocks"
	messagingmocks "github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging/mocks"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func TestCreateLeadHandler(t *testing.T) {
	log.SetupTestLogger()

	tests := []struct {
		name           string
		body           string
		setup          func(service *mocks.MockLeadService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "lead novo",
			body: `{"name":"Ana","email":"ana@x.com","phone":"11999990000","source":"web"}`,
			setup: func(service *mocks.MockLeadService) {
				service.EXPECT().
					CreateLead(gomock.Any(), domain.LeadFields{Name: "Ana", Email: "ana@x.com", Phone: "11999990000", Source: "web"}).
					Return(&domain.Lead{ID: 1, Name: "Ana"}, domain.ResolutionCreated, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "email existente",
			body: `{"name":"Ana","email":"ana@x.com","phone":"11999990000","source":"web"}`,
			setup: func(service *mocks.MockLeadService) {
				service.EXPECT().
					CreateLead(gomock.Any(), gomock.Any()).
					Return(&domain.Lead{ID: 1, Name: "Ana"}, domain.ResolutionMatched, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "erro de validação",
			body: `{"name":"Ana","email":"invalido"}`,
			setup: func(service *mocks.MockLeadService) {
				service.EXPECT().
					CreateLead(gomock.Any(), gomock.Any()).
					Return(nil, domain.Resolution(""), domain.NewValidationError("email", "email inválido"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrInvalidFormat,
		},
		{
			name:           "json malformado",
			body:           `{"name":`,
			setup:          func(service *mocks.MockLeadService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockLeadService(ctrl)
			tt.setup(service)

			rec := serve(Leads(service, nil, time.UTC), jsonRequest(http.MethodPost, "/api/leads", tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeAPIError(t, rec).Code)
			}
		})
	}
}

func TestListLeadsHandler(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockLeadService(ctrl)
	service.EXPECT().
		ListLeads(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, filters domain.LeadFilters) (*domain.LeadListResponse, error) {
			assert.Equal(t, "Novo", filters.Status)
			assert.Equal(t, "whatsapp", filters.Source)
			assert.Equal(t, uint64(10), filters.Limit)
			assert.Equal(t, uint64(20), filters.Offset)
			require.NotNil(t, filters.CreatedFrom)
			require.NotNil(t, filters.CreatedTo)
			assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *filters.CreatedFrom)
			// created_to inclusivo
			assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *filters.CreatedTo)
			return &domain.LeadListResponse{Leads: []*domain.Lead{{ID: 7}}, Total: 1}, nil
		})

	req := jsonRequest(http.MethodGet, "/api/leads?status=Novo&source=whatsapp&limit=10&offset=20&created_from=2024-05-01&created_to=2024-05-31", "")
	rec := serve(Leads(service, nil, time.UTC), req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response domain.LeadListResponse
	decodeBody(t, rec, &response)
	assert.Equal(t, int64(1), response.Total)
	require.Len(t, response.Leads, 1)
	assert.Equal(t, int64(7), response.Leads[0].ID)
}

func TestListLeadsHandlerParametrosInvalidos(t *testing.T) {
	log.SetupTestLogger()

	for _, query := range []string{"limit=abc", "offset=-1", "created_from=01/05/2024", "created_to=ontem"} {
		t.Run(query, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			rec := serve(Leads(mocks.NewMockLeadService(ctrl), nil, time.UTC), jsonRequest(http.MethodGet, "/api/leads?"+query, ""))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apiErrors.ErrInvalidFormat, decodeAPIError(t, rec).Code)
		})
	}
}

func TestGetLeadHandler(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockLeadService(ctrl)
	service.EXPECT().GetLead(gomock.Any(), int64(42)).Return(&domain.Lead{ID: 42, Name: "Bia"}, nil)
	service.EXPECT().GetLead(gomock.Any(), int64(43)).Return(nil, domain.NewNotFoundError("lead não encontrado"))

	routes := Leads(service, nil, time.UTC)

	rec := serve(routes, jsonRequest(http.MethodGet, "/api/leads/42", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	var lead domain.Lead
	decodeBody(t, rec, &lead)
	assert.Equal(t, "Bia", lead.Name)

	rec = serve(routes, jsonRequest(http.MethodGet, "/api/leads/43", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiErrors.ErrLeadNotFound, decodeAPIError(t, rec).Code)

	rec = serve(routes, jsonRequest(http.MethodGet, "/api/leads/abc", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateLeadHandler(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockLeadService(ctrl)
	service.EXPECT().
		UpdateLead(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, request *domain.UpdateLeadRequest) (*domain.Lead, error) {
			assert.Equal(t, int64(5), request.ID)
			require.NotNil(t, request.Status)
			assert.Equal(t, "Qualificado", *request.Status)
			assert.Nil(t, request.Name)
			return &domain.Lead{ID: 5, Status: "Qualificado"}, nil
		})

	rec := serve(Leads(service, nil, time.UTC), jsonRequest(http.MethodPut, "/api/leads/5", `{"status":"Qualificado"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	var lead domain.Lead
	decodeBody(t, rec, &lead)
	assert.Equal(t, "Qualificado", lead.Status)
}

func TestDeleteLeadHandler(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockLeadService(ctrl)
	service.EXPECT().DeleteLead(gomock.Any(), int64(9)).Return(nil)

	rec := serve(Leads(service, nil, time.UTC), jsonRequest(http.MethodDelete, "/api/leads/9", ""))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListLeadMessagesHandler(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conversation := messagingmocks.NewMockConversationService(ctrl)
	conversation.EXPECT().ListMessages(gomock.Any(), int64(3)).Return(nil, nil)

	rec := serve(Leads(mocks.NewMockLeadService(ctrl), conversation, time.UTC), jsonRequest(http.MethodGet, "/api/leads/3/messages", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}
