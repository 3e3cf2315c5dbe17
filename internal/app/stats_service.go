package app

import (
	"context"
	"math"
	"time"

	"ceoacademy/internal/domain/application"
)

const (
	trendMonths        = 6
	approvalRateWindow = 100
)

type StatsSummary struct {
	Total               int                           `json:"total"`
	StatusBreakdown     map[application.Status]int    `json:"statusBreakdown"`
	GenerationBreakdown []application.GenerationCount `json:"generationBreakdown"`
	MonthlyTrend        []application.MonthCount      `json:"monthlyTrend"`
	ApprovalRate        int                           `json:"approvalRate"`
}

// StatsService computes read-only aggregates over the application store.
type StatsService struct {
	repo application.Repository
}

func NewStatsService(repo application.Repository) *StatsService {
	return &StatsService{repo: repo}
}

// Summary aggregates counts for the given generation, or for all generations
// when generation is nil. Empty result sets yield zeros, never errors. The
// status breakdown is zero-filled for every known status, and the approval
// rate is the rounded percentage of APPROVED among the most recently
// submitted applications (at most 100).
func (s *StatsService) Summary(ctx context.Context, generation *int) (*StatsSummary, error) {
	counted, err := s.repo.CountByStatus(ctx, generation)
	if err != nil {
		return nil, err
	}
	breakdown := make(map[application.Status]int, len(application.Statuses))
	total := 0
	for _, status := range application.Statuses {
		breakdown[status] = counted[status]
		total += counted[status]
	}

	generations, err := s.repo.CountByGeneration(ctx, generation)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, -trendMonths, 0)
	trend, err := s.repo.MonthlyCounts(ctx, since, generation)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.RecentStatuses(ctx, approvalRateWindow, generation)
	if err != nil {
		return nil, err
	}
	approvalRate := 0
	if len(recent) > 0 {
		approved := 0
		for _, status := range recent {
			if status == application.StatusApproved {
				approved++
			}
		}
		approvalRate = int(math.Round(float64(approved) / float64(len(recent)) * 100))
	}

	return &StatsSummary{
		Total:               total,
		StatusBreakdown:     breakdown,
		GenerationBreakdown: generations,
		MonthlyTrend:        trend,
		ApprovalRate:        approvalRate,
	}, nil
}
