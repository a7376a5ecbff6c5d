package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Slok9931/WriteStream/internal/model"
)

// AnalyticsRepo stores the off-ledger engagement counters (views, likes,
// favorites). These never feed back into ledger state.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepo(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// RecordView bumps the per-account view counter for an article.
func (r *AnalyticsRepo) RecordView(ctx context.Context, articleID uint64, account string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO article_views (article_id, account, views)
		VALUES ($1, $2, 1)
		ON CONFLICT (article_id, account) DO UPDATE
		SET views = article_views.views + 1`,
		articleID, account)
	return err
}

// ToggleLike flips the account's like on the article and reports whether
// the like is now active.
func (r *AnalyticsRepo) ToggleLike(ctx context.Context, articleID uint64, account string) (bool, error) {
	return r.toggle(ctx, "article_likes", articleID, account)
}

// ToggleFavorite flips the account's favorite on the article and reports
// whether the favorite is now active.
func (r *AnalyticsRepo) ToggleFavorite(ctx context.Context, articleID uint64, account string) (bool, error) {
	return r.toggle(ctx, "article_favorites", articleID, account)
}

func (r *AnalyticsRepo) toggle(ctx context.Context, table string, articleID uint64, account string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM `+table+` WHERE article_id = $1 AND account = $2`,
		articleID, account)
	if err != nil {
		return false, err
	}

	active := false
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO `+table+` (article_id, account) VALUES ($1, $2)`,
			articleID, account)
		if err != nil {
			return false, err
		}
		active = true
	}

	return active, tx.Commit(ctx)
}

// GetTotals returns the aggregate engagement counters for one article.
func (r *AnalyticsRepo) GetTotals(ctx context.Context, articleID uint64) (*model.ArticleAnalytics, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(views), 0) FROM article_views WHERE article_id = $1) AS views,
			(SELECT COUNT(*) FROM article_likes WHERE article_id = $1) AS likes,
			(SELECT COUNT(*) FROM article_favorites WHERE article_id = $1) AS favorites`

	totals := &model.ArticleAnalytics{ArticleID: articleID}
	err := r.pool.QueryRow(ctx, query, articleID).Scan(
		&totals.Views, &totals.Likes, &totals.Favorites,
	)
	if err != nil {
		return nil, err
	}
	return totals, nil
}
