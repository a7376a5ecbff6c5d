package service

import (
	"context"
	"encoding/json"

	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/internal/model"
	"github.com/Slok9931/WriteStream/internal/repository"
)

// AnalyticsService tracks off-ledger engagement (views, likes,
// favorites). It never touches ledger state.
type AnalyticsService struct {
	repo  *repository.AnalyticsRepo
	cache *CacheService
}

func NewAnalyticsService(repo *repository.AnalyticsRepo, cache *CacheService) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache}
}

// RecordView counts one view of the article by the account.
func (s *AnalyticsService) RecordView(ctx context.Context, req model.EngagementRequest) error {
	if err := s.repo.RecordView(ctx, req.ArticleID, req.Account); err != nil {
		return err
	}
	s.invalidate(ctx, req.ArticleID)
	return nil
}

// ToggleLike flips the account's like and returns the new state.
func (s *AnalyticsService) ToggleLike(ctx context.Context, req model.EngagementRequest) (*model.EngagementResponse, error) {
	active, err := s.repo.ToggleLike(ctx, req.ArticleID, req.Account)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.ArticleID)
	return &model.EngagementResponse{ArticleID: req.ArticleID, Active: active}, nil
}

// ToggleFavorite flips the account's favorite and returns the new state.
func (s *AnalyticsService) ToggleFavorite(ctx context.Context, req model.EngagementRequest) (*model.EngagementResponse, error) {
	active, err := s.repo.ToggleFavorite(ctx, req.ArticleID, req.Account)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.ArticleID)
	return &model.EngagementResponse{ArticleID: req.ArticleID, Active: active}, nil
}

// GetTotals returns the article's engagement counters, cache-aside.
func (s *AnalyticsService) GetTotals(ctx context.Context, articleID uint64) (*model.ArticleAnalytics, bool, error) {
	if cached, err := s.cache.GetAnalytics(ctx, articleID); err == nil && cached != nil {
		var totals model.ArticleAnalytics
		if json.Unmarshal(cached, &totals) == nil {
			return &totals, true, nil
		}
	}

	totals, err := s.repo.GetTotals(ctx, articleID)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.SetAnalytics(ctx, articleID, totals); err != nil {
		middleware.Logger.Warn().Err(err).Uint64("article_id", articleID).Msg("cache: set analytics failed")
	}
	return totals, false, nil
}

func (s *AnalyticsService) invalidate(ctx context.Context, articleID uint64) {
	if err := s.cache.InvalidateAnalytics(ctx, articleID); err != nil {
		middleware.Logger.Warn().Err(err).Uint64("article_id", articleID).Msg("cache: invalidate analytics failed")
	}
}
