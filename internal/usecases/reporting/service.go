package reporting

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vfg2006/leads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"github.com/vfg2006/leads-dashboard-api/pkg/utils"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks
type AnalyticsService interface {
	ComputeSnapshot(ctx context.Context, now time.Time) (*domain.AnalyticsSnapshot, error)
}

type Service struct {
	leadRepository repository.LeadRepository
	location       *time.Location
}

func NewService(leadRepository repository.LeadRepository, location *time.Location) AnalyticsService {
	if location == nil {
		location = time.Local
	}

	return &Service{
		leadRepository: leadRepository,
		location:       location,
	}
}

// ComputeSnapshot calcula todas as janelas a partir do mesmo instante e de uma
// única leitura do repositório. Em caso de erro devolve o snapshot zerado
// junto com o erro.
func (s *Service) ComputeSnapshot(ctx context.Context, now time.Time) (*domain.AnalyticsSnapshot, error) {
	windows := domain.NewAnalyticsWindows(now, s.location)

	stats, err := s.leadRepository.ReadStats(ctx, windows)
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("analytics: falha ao ler estatísticas de leads")
		return EmptySnapshot(), err
	}

	return BuildSnapshot(stats), nil
}

func EmptySnapshot() *domain.AnalyticsSnapshot {
	return &domain.AnalyticsSnapshot{SourceData: []domain.SourceStat{}}
}

// BuildSnapshot converte as contagens brutas no payload do dashboard
func BuildSnapshot(stats *domain.LeadStats) *domain.AnalyticsSnapshot {
	if stats == nil || stats.Total == 0 {
		return EmptySnapshot()
	}

	return &domain.AnalyticsSnapshot{
		TotalLeads:     stats.Total,
		TodayLeads:     stats.Today,
		YesterdayLeads: stats.Yesterday,
		WeekLeads:      stats.Week,
		MonthLeads:     stats.Month,
		GrowthRate:     GrowthRate(stats.Today, stats.Yesterday),
		SourceData:     sourceBreakdown(stats.Sources, stats.Total),
	}
}

// GrowthRate é zero quando ontem não teve leads
func GrowthRate(today, yesterday int64) float64 {
	if yesterday == 0 {
		return 0
	}
	return utils.RoundWithTwoDecimalPlace(float64(today-yesterday) / float64(yesterday) * 100)
}

func sourceBreakdown(sources []domain.SourceCount, total int64) []domain.SourceStat {
	counts := make(map[string]int64, len(sources))
	order := make([]string, 0, len(sources))
	for _, sc := range sources {
		label := strings.TrimSpace(sc.Source)
		if label == "" {
			label = domain.UnknownSource
		}
		if _, exists := counts[label]; !exists {
			order = append(order, label)
		}
		counts[label] += sc.Count
	}

	result := make([]domain.SourceStat, 0, len(order))
	for _, label := range order {
		result = append(result, domain.SourceStat{
			Source: label,
			Count:  counts[label],
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Source < result[j].Source
	})

	assignPercentages(result, total)

	return result
}

// assignPercentages arredonda as porcentagens em centésimos pelo maior resto:
// quando as contagens somam o total, a soma fecha exatamente em 100.
func assignPercentages(stats []domain.SourceStat, total int64) {
	if total <= 0 {
		return
	}

	var sum int64
	for _, s := range stats {
		sum += s.Count
	}
	if sum != total {
		for i := range stats {
			stats[i].Percentage = utils.RoundWithTwoDecimalPlace(float64(stats[i].Count) / float64(total) * 100)
		}
		return
	}

	hundredths := make([]int64, len(stats))
	remainders := make([]int64, len(stats))
	var assigned int64
	for i, s := range stats {
		scaled := s.Count * 10000
		hundredths[i] = scaled / total
		remainders[i] = scaled % total
		assigned += hundredths[i]
	}

	byRemainder := make([]int, len(stats))
	for i := range byRemainder {
		byRemainder[i] = i
	}
	sort.SliceStable(byRemainder, func(a, b int) bool {
		return remainders[byRemainder[a]] > remainders[byRemainder[b]]
	})

	for _, i := range byRemainder {
		if assigned >= 10000 {
			break
		}
		hundredths[i]++
		assigned++
	}

	for i := range stats {
		stats[i].Percentage = float64(hundredths[i]) / 100
	}
}
