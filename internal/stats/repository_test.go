package stats

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestScalarQueryReturnsValue(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)

	query := "SELECT COUNT(*) FROM videos WHERE views_count > 10000"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	scalar, err := repo.ScalarQuery(context.Background(), query)
	if err != nil {
		t.Fatalf("ScalarQuery() error = %v", err)
	}
	if !scalar.Valid {
		t.Fatal("Valid should be true")
	}
	if scalar.Value != 42 {
		t.Fatalf("Value = %v", scalar.Value)
	}
	assertSQLMock(t, mock)
}

func TestScalarQueryTreatsNullAggregateAsInvalid(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)

	query := "SELECT SUM(delta_views_count) FROM video_snapshots"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

	scalar, err := repo.ScalarQuery(context.Background(), query)
	if err != nil {
		t.Fatalf("ScalarQuery() error = %v", err)
	}
	if scalar.Valid {
		t.Fatalf("Valid should be false for NULL aggregate, got %+v", scalar)
	}
	assertSQLMock(t, mock)
}

func TestScalarQueryTreatsNoRowsAsInvalid(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)

	query := "SELECT views_count FROM videos WHERE id = 'missing'"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnRows(sqlmock.NewRows([]string{"views_count"}))

	scalar, err := repo.ScalarQuery(context.Background(), query)
	if err != nil {
		t.Fatalf("ScalarQuery() error = %v", err)
	}
	if scalar.Valid {
		t.Fatalf("Valid should be false for empty result, got %+v", scalar)
	}
	assertSQLMock(t, mock)
}

func TestScalarQueryPropagatesErrors(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)

	query := "SELECT COUNT(*) FROM nowhere"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnError(errors.New(`relation "nowhere" does not exist`))

	if _, err := repo.ScalarQuery(context.Background(), query); err == nil {
		t.Fatal("expected error from failing query")
	}
	assertSQLMock(t, mock)
}

func TestUpsertVideo(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`
INSERT INTO videos (id, creator_id, video_created_at, views_count,
                    likes_count, comments_count, reports_count,
                    created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    views_count = EXCLUDED.views_count,
    likes_count = EXCLUDED.likes_count,
    comments_count = EXCLUDED.comments_count,
    reports_count = EXCLUDED.reports_count,
    updated_at = EXCLUDED.updated_at`)).
		WithArgs("video-1", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", now, int64(100), int64(10), int64(5), int64(0), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertVideo(context.Background(), Video{
		ID:             "video-1",
		CreatorID:      "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		VideoCreatedAt: now,
		ViewsCount:     100,
		LikesCount:     10,
		CommentsCount:  5,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("UpsertVideo() error = %v", err)
	}
	assertSQLMock(t, mock)
}

func TestUpsertSnapshot(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO video_snapshots`)).
		WithArgs("snap-1", "video-1", int64(110), int64(11), int64(5), int64(0),
			int64(10), int64(1), int64(0), int64(0), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertSnapshot(context.Background(), Snapshot{
		ID:              "snap-1",
		VideoID:         "video-1",
		ViewsCount:      110,
		LikesCount:      11,
		CommentsCount:   5,
		DeltaViewsCount: 10,
		DeltaLikesCount: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("UpsertSnapshot() error = %v", err)
	}
	assertSQLMock(t, mock)
}
