package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping stats db: %w", err)
	}
	return nil
}

// ScalarQuery runs one read-only query expected to produce exactly one row
// with one column. No row and a NULL aggregate both come back as an invalid
// Scalar, not an error.
func (r *Repository) ScalarQuery(ctx context.Context, query string) (Scalar, error) {
	var value sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Scalar{}, nil
		}
		return Scalar{}, fmt.Errorf("scalar query: %w", err)
	}
	if !value.Valid {
		return Scalar{}, nil
	}
	return Scalar{Value: value.Float64, Valid: true}, nil
}

func (r *Repository) UpsertVideo(ctx context.Context, video Video) error {
	query := `
INSERT INTO videos (id, creator_id, video_created_at, views_count,
                    likes_count, comments_count, reports_count,
                    created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    views_count = EXCLUDED.views_count,
    likes_count = EXCLUDED.likes_count,
    comments_count = EXCLUDED.comments_count,
    reports_count = EXCLUDED.reports_count,
    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		video.ID,
		video.CreatorID,
		video.VideoCreatedAt,
		video.ViewsCount,
		video.LikesCount,
		video.CommentsCount,
		video.ReportsCount,
		video.CreatedAt,
		video.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert video %s: %w", video.ID, err)
	}
	return nil
}

func (r *Repository) UpsertSnapshot(ctx context.Context, snapshot Snapshot) error {
	query := `
INSERT INTO video_snapshots (id, video_id, views_count, likes_count,
                             comments_count, reports_count,
                             delta_views_count, delta_likes_count,
                             delta_comments_count, delta_reports_count,
                             created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    views_count = EXCLUDED.views_count,
    likes_count = EXCLUDED.likes_count,
    comments_count = EXCLUDED.comments_count,
    reports_count = EXCLUDED.reports_count,
    delta_views_count = EXCLUDED.delta_views_count,
    delta_likes_count = EXCLUDED.delta_likes_count,
    delta_comments_count = EXCLUDED.delta_comments_count,
    delta_reports_count = EXCLUDED.delta_reports_count,
    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.VideoID,
		snapshot.ViewsCount,
		snapshot.LikesCount,
		snapshot.CommentsCount,
		snapshot.ReportsCount,
		snapshot.DeltaViewsCount,
		snapshot.DeltaLikesCount,
		snapshot.DeltaCommentsCount,
		snapshot.DeltaReportsCount,
		snapshot.CreatedAt,
		snapshot.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", snapshot.ID, err)
	}
	return nil
}
