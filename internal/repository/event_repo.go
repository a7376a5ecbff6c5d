package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Slok9931/WriteStream/internal/ledger"
	"github.com/Slok9931/WriteStream/internal/model"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// EnsureSchema creates the index tables if they do not exist yet. The
// index is rebuildable from ledger events, so there is no migration
// history to preserve.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	// One statement per Exec: pgx's extended protocol rejects batches.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ledger_events (
			id           BIGSERIAL PRIMARY KEY,
			kind         VARCHAR(16) NOT NULL,
			article_id   BIGINT NOT NULL,
			actor        VARCHAR(64) NOT NULL,
			title        VARCHAR(200),
			content_hash VARCHAR(128),
			amount       BIGINT NOT NULL DEFAULT 0,
			is_upvote    BOOLEAN,
			occurred_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_events_occurred ON ledger_events (occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_events_article ON ledger_events (article_id)`,
		`CREATE TABLE IF NOT EXISTS indexed_articles (
			article_id   BIGINT PRIMARY KEY,
			author       VARCHAR(64) NOT NULL,
			title        VARCHAR(200) NOT NULL,
			content_hash VARCHAR(128) NOT NULL,
			price        BIGINT NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS article_views (
			article_id BIGINT NOT NULL,
			account    VARCHAR(64) NOT NULL,
			views      BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (article_id, account)
		)`,
		`CREATE TABLE IF NOT EXISTS article_likes (
			article_id BIGINT NOT NULL,
			account    VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (article_id, account)
		)`,
		`CREATE TABLE IF NOT EXISTS article_favorites (
			article_id BIGINT NOT NULL,
			account    VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (article_id, account)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertBatch writes a batch of ledger events atomically. Publish events
// are additionally upserted into indexed_articles so stats queries do
// not have to replay the feed.
func (r *EventRepo) InsertBatch(ctx context.Context, events []ledger.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, ev := range events {
		var isUpvote *bool
		if ev.Kind == ledger.EventVote {
			v := ev.IsUpvote
			isUpvote = &v
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_events (kind, article_id, actor, title, content_hash, amount, is_upvote, occurred_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)`,
			string(ev.Kind), ev.ArticleID, string(ev.Actor), ev.Title, ev.ContentHash,
			ev.Amount, isUpvote, ev.At)
		if err != nil {
			return err
		}

		if ev.Kind != ledger.EventPublish {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO indexed_articles (article_id, author, title, content_hash, price, published_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (article_id) DO NOTHING`,
			ev.ArticleID, string(ev.Actor), ev.Title, ev.ContentHash, ev.Amount, ev.At)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Feed returns indexed events after the given timestamp, oldest first.
func (r *EventRepo) Feed(ctx context.Context, since time.Time, limit int) ([]model.IndexedEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT kind, article_id, actor, COALESCE(title, ''), COALESCE(content_hash, ''), amount, is_upvote, occurred_at
		FROM ledger_events
		WHERE occurred_at > $1
		ORDER BY occurred_at ASC, id ASC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.IndexedEvent
	for rows.Next() {
		var ev model.IndexedEvent
		var amount int64
		err := rows.Scan(&ev.Kind, &ev.ArticleID, &ev.Actor, &ev.Title, &ev.ContentHash,
			&amount, &ev.IsUpvote, &ev.At)
		if err != nil {
			return nil, err
		}
		ev.Amount = uint64(amount)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetStats returns aggregate counts over the whole index.
func (r *EventRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM indexed_articles) AS total_articles,
			(SELECT COUNT(*) FROM indexed_articles WHERE price = 0) AS free_articles,
			(SELECT COUNT(*) FROM ledger_events WHERE kind = 'purchase') AS total_purchases,
			(SELECT COUNT(*) FROM ledger_events WHERE kind = 'vote') AS total_votes,
			(SELECT COUNT(*) FROM ledger_events WHERE kind = 'tip') AS total_tips,
			(SELECT COALESCE(SUM(amount), 0) FROM ledger_events WHERE kind = 'tip') AS tip_volume,
			(SELECT COUNT(DISTINCT actor) FROM ledger_events) AS distinct_accounts`

	var stats model.StatsResponse
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalArticles, &stats.FreeArticles, &stats.TotalPurchases,
		&stats.TotalVotes, &stats.TotalTips, &stats.TipVolume, &stats.DistinctAccounts,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
