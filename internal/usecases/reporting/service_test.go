package reporting

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/repository/repositorytest"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name      string
		today     int64
		yesterday int64
		expected  float64
	}{
		{name: "ontem zerado com leads hoje", today: 10, yesterday: 0, expected: 0},
		{name: "ontem e hoje zerados", today: 0, yesterday: 0, expected: 0},
		{name: "crescimento", today: 15, yesterday: 10, expected: 50},
		{name: "queda", today: 5, yesterday: 10, expected: -50},
		{name: "arredondamento", today: 1, yesterday: 3, expected: -66.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := GrowthRate(tt.today, tt.yesterday)
			assert.Equal(t, tt.expected, rate)
			assert.False(t, math.IsNaN(rate) || math.IsInf(rate, 0))
		})
	}
}

func TestBuildSnapshot(t *testing.T) {
	t.Run("repositório vazio", func(t *testing.T) {
		snapshot := BuildSnapshot(&domain.LeadStats{})
		assert.Equal(t, int64(0), snapshot.TotalLeads)
		assert.NotNil(t, snapshot.SourceData)
		assert.Empty(t, snapshot.SourceData)
	})

	t.Run("origens ordenadas com percentuais", func(t *testing.T) {
		snapshot := BuildSnapshot(&domain.LeadStats{
			Total:     6,
			Today:     2,
			Yesterday: 1,
			Sources: []domain.SourceCount{
				{Source: "web", Count: 1},
				{Source: "whatsapp", Count: 3},
				{Source: "", Count: 1},
				{Source: "instagram", Count: 1},
			},
		})

		assert.Equal(t, 100.0, snapshot.GrowthRate)
		require.Len(t, snapshot.SourceData, 4)
		assert.Equal(t, domain.SourceStat{Source: "whatsapp", Count: 3, Percentage: 50}, snapshot.SourceData[0])
		assert.Equal(t, domain.UnknownSource, snapshot.SourceData[1].Source)
		assert.Equal(t, "instagram", snapshot.SourceData[2].Source)
		assert.Equal(t, "web", snapshot.SourceData[3].Source)

		var sum float64
		for _, s := range snapshot.SourceData {
			sum += s.Percentage
		}
		assert.InDelta(t, 100, sum, 1e-9)
	})

	t.Run("porcentagens somam 100 com muitas origens do mesmo tamanho", func(t *testing.T) {
		sources := make([]domain.SourceCount, 0, 11)
		for i := 0; i < 11; i++ {
			sources = append(sources, domain.SourceCount{Source: fmt.Sprintf("origem-%02d", i), Count: 1})
		}

		snapshot := BuildSnapshot(&domain.LeadStats{Total: 11, Sources: sources})
		require.Len(t, snapshot.SourceData, 11)

		var sum float64
		for _, s := range snapshot.SourceData {
			assert.Contains(t, []float64{9.09, 9.1}, s.Percentage)
			sum += s.Percentage
		}
		assert.InDelta(t, 100, sum, 1e-9)
		// o resto vai para as primeiras na ordem de exibição
		assert.Equal(t, 9.1, snapshot.SourceData[0].Percentage)
		assert.Equal(t, 9.09, snapshot.SourceData[10].Percentage)
	})

	t.Run("rótulos vazios e Desconhecido são agrupados", func(t *testing.T) {
		snapshot := BuildSnapshot(&domain.LeadStats{
			Total: 3,
			Sources: []domain.SourceCount{
				{Source: domain.UnknownSource, Count: 2},
				{Source: "  ", Count: 1},
			},
		})

		require.Len(t, snapshot.SourceData, 1)
		assert.Equal(t, int64(3), snapshot.SourceData[0].Count)
		assert.Equal(t, 100.0, snapshot.SourceData[0].Percentage)
	})
}

func TestComputeSnapshotJanelas(t *testing.T) {
	loc := saoPaulo(t)
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, loc)

	at := func(days int, hour, minute int) time.Time {
		return time.Date(2024, 5, 10+days, hour, minute, 0, 0, loc)
	}

	repo := repositorytest.NewLeadRepository(
		&domain.Lead{Email: "a@x.com", Source: "web", CreatedAt: at(0, 0, 0)},
		&domain.Lead{Email: "b@x.com", Source: "web", CreatedAt: at(0, 14, 59)},
		&domain.Lead{Email: "c@x.com", Source: "whatsapp", CreatedAt: at(-1, 23, 59)},
		&domain.Lead{Email: "d@x.com", Source: "whatsapp", CreatedAt: at(-1, 0, 0)},
		&domain.Lead{Email: "e@x.com", Source: "", CreatedAt: at(-5, 10, 0)},
		&domain.Lead{Email: "f@x.com", Source: "web", CreatedAt: at(-20, 10, 0)},
		&domain.Lead{Email: "g@x.com", Source: "web", CreatedAt: at(-45, 10, 0)},
	)

	service := NewService(repo, loc)
	snapshot, err := service.ComputeSnapshot(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(7), snapshot.TotalLeads)
	assert.Equal(t, int64(2), snapshot.TodayLeads)
	assert.Equal(t, int64(2), snapshot.YesterdayLeads)
	assert.Equal(t, int64(5), snapshot.WeekLeads)
	assert.Equal(t, int64(6), snapshot.MonthLeads)
	assert.Equal(t, 0.0, snapshot.GrowthRate)

	require.Len(t, snapshot.SourceData, 3)
	assert.Equal(t, "web", snapshot.SourceData[0].Source)
	assert.Equal(t, int64(4), snapshot.SourceData[0].Count)
	assert.Equal(t, 57.14, snapshot.SourceData[0].Percentage)
}

func TestComputeSnapshotFusoHorario(t *testing.T) {
	loc := saoPaulo(t)
	// 01:30 UTC de 11/05 ainda é 10/05 em São Paulo
	now := time.Date(2024, 5, 11, 1, 30, 0, 0, time.UTC)

	repo := repositorytest.NewLeadRepository(
		&domain.Lead{Email: "a@x.com", Source: "web", CreatedAt: time.Date(2024, 5, 10, 4, 0, 0, 0, time.UTC)},
		&domain.Lead{Email: "b@x.com", Source: "web", CreatedAt: time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC)},
	)

	snapshot, err := NewService(repo, loc).ComputeSnapshot(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(1), snapshot.TodayLeads)
	assert.Equal(t, int64(1), snapshot.YesterdayLeads)
}

func TestComputeSnapshotErro(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockLeadRepository(ctrl)
	repo.EXPECT().ReadStats(gomock.Any(), gomock.Any()).Return(nil, domain.ErrStore)

	snapshot, err := NewService(repo, time.UTC).ComputeSnapshot(context.Background(), time.Now())
	assert.ErrorIs(t, err, domain.ErrStore)
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(0), snapshot.TotalLeads)
	assert.Empty(t, snapshot.SourceData)
}

func TestComputeSnapshotUsaMesmoInstante(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

	repo := mocks.NewMockLeadRepository(ctrl)
	repo.EXPECT().
		ReadStats(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, windows domain.AnalyticsWindows) (*domain.LeadStats, error) {
			assert.Equal(t, now, windows.Now)
			assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), windows.TodayStart)
			assert.Equal(t, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), windows.YesterdayStart)
			assert.Equal(t, now.AddDate(0, 0, -7), windows.WeekStart)
			assert.Equal(t, now.AddDate(0, -1, 0), windows.MonthStart)
			return &domain.LeadStats{}, nil
		})

	snapshot, err := NewService(repo, time.UTC).ComputeSnapshot(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, EmptySnapshot(), snapshot)
}
