// Package stats owns the two-table video statistics storage: final per-video
// counters and their hourly snapshots.
package stats

import "time"

// Video is the itemized final state of one video. Rows are written by the
// loader and read-only to the question pipeline.
type Video struct {
	ID             string
	CreatorID      string
	VideoCreatedAt time.Time
	ViewsCount     int64
	LikesCount     int64
	CommentsCount  int64
	ReportsCount   int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Snapshot is one hourly measurement of a video. The creator is reachable
// only by joining through the video row.
type Snapshot struct {
	ID                 string
	VideoID            string
	ViewsCount         int64
	LikesCount         int64
	CommentsCount      int64
	ReportsCount       int64
	DeltaViewsCount    int64
	DeltaLikesCount    int64
	DeltaCommentsCount int64
	DeltaReportsCount  int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Scalar is the outcome of a single-scalar query. Valid is false when the
// query produced no row or a NULL aggregate.
type Scalar struct {
	Value float64
	Valid bool
}
