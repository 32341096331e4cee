package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	whatsappmocks "github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/mocks"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"go.uber.org/mock/gomock"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthcheck(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	session := whatsappmocks.NewMockWhatsAppIntegrator(ctrl)
	session.EXPECT().Status().Return(whatsapp.SessionStatus{State: whatsapp.StateDisconnected}).Times(2)

	healthy := pingerFunc(func(context.Context) error { return nil })
	rec := serve(Healthcheck(healthy, session), jsonRequest(http.MethodGet, "/healthcheck", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	assert.Contains(t, rec.Body.String(), `"whatsapp":"disconnected"`)

	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })
	rec = serve(Healthcheck(down, session), jsonRequest(http.MethodGet, "/healthcheck", ""))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"unavailable"`)
}

func TestMetricsRoute(t *testing.T) {
	rec := serve(Healthcheck(nil, nil), jsonRequest(http.MethodGet, "/metrics", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRotaInexistente(t *testing.T) {
	rec := serve(Healthcheck(nil, nil), jsonRequest(http.MethodGet, "/nao-existe", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(Healthcheck(nil, nil), jsonRequest(http.MethodPost, "/healthcheck", ""))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
