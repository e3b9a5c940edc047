package dashboard

import (
	"context"

	"github.com/acme/lead-outreach/internal/domain"
	"github.com/acme/lead-outreach/internal/repository"
)

// Service serves dashboard aggregation queries.
type Service struct {
	stats repository.StatsRepository
}

// NewService builds the dashboard service.
func NewService(stats repository.StatsRepository) *Service {
	return &Service{stats: stats}
}

// Overview returns the aggregated activity metrics.
func (s *Service) Overview(ctx context.Context) (*domain.DashboardStats, error) {
	return s.stats.Overview(ctx)
}
