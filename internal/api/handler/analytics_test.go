package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/leads-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/reporting"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/reporting/mocks"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func analyticsRoutes(service reporting.AnalyticsService, now func() time.Time) []router.Route {
	return []router.Route{{Path: "/api/analytics", Method: http.MethodGet, Handler: GetAnalytics(service, now)}}
}

func TestGetAnalytics(t *testing.T) {
	log.SetupTestLogger()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	fixedNow := func() time.Time { return now }

	t.Run("snapshot calculado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockAnalyticsService(ctrl)
		service.EXPECT().ComputeSnapshot(gomock.Any(), now).Return(&domain.AnalyticsSnapshot{
			TotalLeads: 4,
			TodayLeads: 2,
			SourceData: []domain.SourceStat{{Source: "web", Count: 4, Percentage: 100}},
		}, nil)

		rec := serve(analyticsRoutes(service, fixedNow), jsonRequest(http.MethodGet, "/api/analytics", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"totalLeads":4,"todayLeads":2,"yesterdayLeads":0,"weekLeads":0,"monthLeads":0,
			"growthRate":0,"sourceData":[{"source":"web","count":4,"percentage":100}]
		}`, rec.Body.String())
	})

	t.Run("falha interna vira payload zerado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockAnalyticsService(ctrl)
		service.EXPECT().ComputeSnapshot(gomock.Any(), now).Return(reporting.EmptySnapshot(), errors.New("conexão recusada"))

		rec := serve(analyticsRoutes(service, fixedNow), jsonRequest(http.MethodGet, "/api/analytics", ""))

		assert.Equal(t, http.StatusOK, rec.Code)

		var snapshot domain.AnalyticsSnapshot
		decodeBody(t, rec, &snapshot)
		assert.Equal(t, int64(0), snapshot.TotalLeads)
		assert.NotNil(t, snapshot.SourceData)
		assert.Empty(t, snapshot.SourceData)
		assert.NotEmpty(t, snapshot.Error)
	})

	t.Run("snapshot nulo", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockAnalyticsService(ctrl)
		service.EXPECT().ComputeSnapshot(gomock.Any(), now).Return(nil, errors.New("falhou"))

		rec := serve(analyticsRoutes(service, fixedNow), jsonRequest(http.MethodGet, "/api/analytics", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"sourceData":[]`)
	})
}
