package services

import (
	"context"
	"fmt"

	"github.com/harentsoaR/diagnosia-api/internal/lock"
	"github.com/harentsoaR/diagnosia-api/internal/metrics"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/store"
)

const bannerLock = "banners:active"

type BannerService struct {
	banners store.BannerStore
	locker  lock.Locker
}

func NewBannerService(banners store.BannerStore, locker lock.Locker) *BannerService {
	return &BannerService{banners: banners, locker: locker}
}

// Activate makes id the only active banner.
func (s *BannerService) Activate(ctx context.Context, id string) (models.WriteResult, error) {
	if _, err := store.ParseID(id); err != nil {
		return models.WriteResult{}, err
	}

	var result models.WriteResult
	err := s.locker.WithLock(ctx, bannerLock, func(ctx context.Context) error {
		if _, err := s.banners.DeactivateAll(ctx); err != nil {
			return fmt.Errorf("deactivate banners: %w", err)
		}
		var err error
		result, err = s.banners.SetActive(ctx, id)
		if err != nil {
			return fmt.Errorf("activate banner: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.WriteResult{}, err
	}
	metrics.BannerActivations.Inc()
	return result, nil
}
