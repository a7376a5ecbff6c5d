package service

import (
	"context"
	"encoding/json"

	"github.com/Slok9931/WriteStream/internal/ledger"
	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/internal/model"
)

// LedgerService fronts the ledger for the HTTP layer: it maps records to
// API responses and keeps the article cache coherent with committed
// transactions. Ledger sentinels pass through untouched so handlers can
// branch on them.
type LedgerService struct {
	ledger *ledger.Ledger
	cache  *CacheService
}

func NewLedgerService(l *ledger.Ledger, cache *CacheService) *LedgerService {
	return &LedgerService{ledger: l, cache: cache}
}

// Publish submits a publish transaction.
func (s *LedgerService) Publish(req model.PublishRequest) (*model.PublishResponse, error) {
	id, err := s.ledger.Publish(ledger.Account(req.Author), req.Title, req.ContentHash, req.Price)
	if err != nil {
		return nil, err
	}
	return &model.PublishResponse{ID: id, ArticleCount: s.ledger.ArticleCount()}, nil
}

// Tip forwards a tip to the article's author.
func (s *LedgerService) Tip(articleID uint64, req model.TipRequest) error {
	return s.ledger.Tip(articleID, ledger.Account(req.From), req.Amount)
}

// Purchase buys access to a paid article and invalidates its cache entry.
func (s *LedgerService) Purchase(ctx context.Context, articleID uint64, req model.PurchaseRequest) error {
	if err := s.ledger.Purchase(articleID, ledger.Account(req.Buyer), req.Payment); err != nil {
		return err
	}
	s.invalidate(ctx, articleID)
	return nil
}

// Vote casts a vote and invalidates the article's cache entry (its
// counters changed).
func (s *LedgerService) Vote(ctx context.Context, articleID uint64, req model.VoteRequest) error {
	if err := s.ledger.Vote(articleID, ledger.Account(req.Voter), req.Upvote); err != nil {
		return err
	}
	s.invalidate(ctx, articleID)
	return nil
}

// GetArticle returns the article response, reporting whether it was
// served from cache and whether the id exists.
func (s *LedgerService) GetArticle(ctx context.Context, articleID uint64) (resp *model.ArticleResponse, fromCache, found bool, err error) {
	if cached, cacheErr := s.cache.GetArticle(ctx, articleID); cacheErr == nil && cached != nil {
		var r model.ArticleResponse
		if json.Unmarshal(cached, &r) == nil {
			return &r, true, true, nil
		}
	}

	art, ok := s.ledger.GetArticle(articleID)
	if !ok {
		return nil, false, false, nil
	}

	r := articleResponse(art)
	if err := s.cache.SetArticle(ctx, articleID, r); err != nil {
		middleware.Logger.Warn().Err(err).Uint64("article_id", articleID).Msg("cache: set article failed")
	}
	return &r, false, true, nil
}

// ListArticles returns a page of article responses starting at the given id.
func (s *LedgerService) ListArticles(from uint64, limit int) *model.ArticleListResponse {
	arts := s.ledger.Articles(from, limit)
	resp := &model.ArticleListResponse{
		Articles:     make([]model.ArticleResponse, 0, len(arts)),
		ArticleCount: s.ledger.ArticleCount(),
		From:         from,
	}
	for _, a := range arts {
		resp.Articles = append(resp.Articles, articleResponse(a))
	}
	return resp
}

// CheckAccess answers the access question for an (article, account)
// pair; an empty account answers for the anonymous reader.
func (s *LedgerService) CheckAccess(articleID uint64, account string) *model.AccessResponse {
	free := s.ledger.IsFree(articleID)
	has := free
	if !free && account != "" {
		has = s.ledger.CheckAccess(articleID, ledger.Account(account))
	}
	return &model.AccessResponse{
		ArticleID: articleID,
		Account:   account,
		Free:      free,
		HasAccess: has,
	}
}

// GetVotes returns the counters, plus the per-account record when an
// account is given.
func (s *LedgerService) GetVotes(articleID uint64, account string) *model.VotesResponse {
	up, down := s.ledger.GetVotes(articleID)
	resp := &model.VotesResponse{ArticleID: articleID, Upvotes: up, Downvotes: down}
	if account != "" {
		hasVoted, isUpvote := s.ledger.VoteOf(articleID, ledger.Account(account))
		resp.HasVoted = &hasVoted
		resp.IsUpvote = &isUpvote
	}
	return resp
}

func (s *LedgerService) invalidate(ctx context.Context, articleID uint64) {
	if err := s.cache.InvalidateArticle(ctx, articleID); err != nil {
		middleware.Logger.Warn().Err(err).Uint64("article_id", articleID).Msg("cache: invalidate article failed")
	}
}

func articleResponse(a ledger.Article) model.ArticleResponse {
	return model.ArticleResponse{
		ID:          a.ID,
		Author:      string(a.Author),
		Title:       a.Title,
		ContentHash: a.ContentHash,
		Price:       a.Price,
		Free:        a.Price == 0,
		Upvotes:     a.Upvotes,
		Downvotes:   a.Downvotes,
	}
}
