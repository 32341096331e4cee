package domain

import "time"

type AnalyticsSnapshot struct {
	TotalLeads     int64        `json:"totalLeads"`
	TodayLeads     int64        `json:"todayLeads"`
	YesterdayLeads int64        `json:"yesterdayLeads"`
	WeekLeads      int64        `json:"weekLeads"`
	MonthLeads     int64        `json:"monthLeads"`
	GrowthRate     float64      `json:"growthRate"`
	SourceData     []SourceStat `json:"sourceData"`
	Error          string       `json:"error,omitempty"`
}

type SourceStat struct {
	Source     string  `json:"source"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AnalyticsWindows são os limites das janelas de contagem calculados a partir de um único instante
type AnalyticsWindows struct {
	Now            time.Time
	TodayStart     time.Time
	TodayEnd       time.Time
	YesterdayStart time.Time
	YesterdayEnd   time.Time
	WeekStart      time.Time
	MonthStart     time.Time
}

// NewAnalyticsWindows calcula as janelas de "hoje" e "ontem" no dia civil de loc
// e as janelas móveis de semana e mês a partir de now.
func NewAnalyticsWindows(now time.Time, loc *time.Location) AnalyticsWindows {
	if loc == nil {
		loc = time.Local
	}

	local := now.In(loc)
	todayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	todayEnd := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), loc)

	return AnalyticsWindows{
		Now:            now,
		TodayStart:     todayStart,
		TodayEnd:       todayEnd,
		YesterdayStart: todayStart.AddDate(0, 0, -1),
		YesterdayEnd:   todayEnd.AddDate(0, 0, -1),
		WeekStart:      now.AddDate(0, 0, -7),
		MonthStart:     now.AddDate(0, -1, 0),
	}
}

// LeadStats é o resultado bruto de uma leitura consistente da tabela de leads
type LeadStats struct {
	Total     int64
	Today     int64
	Yesterday int64
	Week      int64
	Month     int64
	Sources   []SourceCount
}

type SourceCount struct {
	Source string
	Count  int64
}
