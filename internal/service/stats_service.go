package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sariqmarket/b2b-backend/internal/model"
	"github.com/sariqmarket/b2b-backend/internal/repository"
)

type StatsSummary struct {
	Total      int64                          `json:"total"`
	ByStatus   map[model.PurchaseStatus]int64 `json:"byStatus"`
	FeeRevenue decimal.Decimal                `json:"feeRevenue"`
}

type StatsService interface {
	Summary(ctx context.Context) (*StatsSummary, error)
}

type statsService struct {
	repo repository.PurchaseRepository
}

func NewStatsService(repo repository.PurchaseRepository) StatsService {
	return &statsService{repo: repo}
}

// Summary reports purchase counts per status and the platform fee revenue
// realized on completed purchases.
func (s *statsService) Summary(ctx context.Context) (*StatsSummary, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	byStatus := map[model.PurchaseStatus]int64{
		model.PurchaseStatusPending:   0,
		model.PurchaseStatusApproved:  0,
		model.PurchaseStatusRejected:  0,
		model.PurchaseStatusShipped:   0,
		model.PurchaseStatusDelivered: 0,
		model.PurchaseStatusCompleted: 0,
	}
	var total int64
	for _, c := range counts {
		byStatus[c.Status] = c.Count
		total += c.Count
	}
	revenue, err := s.repo.SumPlatformFees(ctx, model.PurchaseStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return &StatsSummary{
		Total:      total,
		ByStatus:   byStatus,
		FeeRevenue: revenue,
	}, nil
}
