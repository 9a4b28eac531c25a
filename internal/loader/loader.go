// Package loader imports the JSON statistics dump into the two storage
// tables. Re-running a load over existing data refreshes counters in place.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/vidstat/vidstat/internal/stats"
)

// Upserter is the storage side of a load run.
type Upserter interface {
	UpsertVideo(ctx context.Context, video stats.Video) error
	UpsertSnapshot(ctx context.Context, snapshot stats.Snapshot) error
}

// Summary reports how many rows a load run touched.
type Summary struct {
	Videos    int
	Snapshots int
}

type document struct {
	Videos []videoRecord `json:"videos"`
}

type videoRecord struct {
	ID             string           `json:"id"`
	CreatorID      string           `json:"creator_id"`
	VideoCreatedAt timestamp        `json:"video_created_at"`
	ViewsCount     int64            `json:"views_count"`
	LikesCount     int64            `json:"likes_count"`
	CommentsCount  int64            `json:"comments_count"`
	ReportsCount   int64            `json:"reports_count"`
	CreatedAt      timestamp        `json:"created_at"`
	UpdatedAt      timestamp        `json:"updated_at"`
	Snapshots      []snapshotRecord `json:"snapshots"`
}

type snapshotRecord struct {
	ID                 string    `json:"id"`
	ViewsCount         int64     `json:"views_count"`
	LikesCount         int64     `json:"likes_count"`
	CommentsCount      int64     `json:"comments_count"`
	ReportsCount       int64     `json:"reports_count"`
	DeltaViewsCount    int64     `json:"delta_views_count"`
	DeltaLikesCount    int64     `json:"delta_likes_count"`
	DeltaCommentsCount int64     `json:"delta_comments_count"`
	DeltaReportsCount  int64     `json:"delta_reports_count"`
	CreatedAt          timestamp `json:"created_at"`
	UpdatedAt          timestamp `json:"updated_at"`
}

// timestamp accepts the dump's timestamp spellings, with and without a
// zone designator.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// Load parses one JSON dump and upserts every video and its snapshots.
// Snapshots are written in measurement order.
func Load(ctx context.Context, r io.Reader, upserter Upserter, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Summary{}, fmt.Errorf("decode statistics dump: %w", err)
	}

	var summary Summary
	for _, record := range doc.Videos {
		if record.ID == "" {
			return summary, fmt.Errorf("video record without an id")
		}
		if err := upserter.UpsertVideo(ctx, stats.Video{
			ID:             record.ID,
			CreatorID:      record.CreatorID,
			VideoCreatedAt: record.VideoCreatedAt.Time,
			ViewsCount:     record.ViewsCount,
			LikesCount:     record.LikesCount,
			CommentsCount:  record.CommentsCount,
			ReportsCount:   record.ReportsCount,
			CreatedAt:      record.CreatedAt.Time,
			UpdatedAt:      record.UpdatedAt.Time,
		}); err != nil {
			return summary, err
		}
		summary.Videos++

		snapshots := append([]snapshotRecord(nil), record.Snapshots...)
		sort.Slice(snapshots, func(i, j int) bool {
			return snapshots[i].CreatedAt.Before(snapshots[j].CreatedAt.Time)
		})
		for _, snap := range snapshots {
			if err := upserter.UpsertSnapshot(ctx, stats.Snapshot{
				ID:                 snap.ID,
				VideoID:            record.ID,
				ViewsCount:         snap.ViewsCount,
				LikesCount:         snap.LikesCount,
				CommentsCount:      snap.CommentsCount,
				ReportsCount:       snap.ReportsCount,
				DeltaViewsCount:    snap.DeltaViewsCount,
				DeltaLikesCount:    snap.DeltaLikesCount,
				DeltaCommentsCount: snap.DeltaCommentsCount,
				DeltaReportsCount:  snap.DeltaReportsCount,
				CreatedAt:          snap.CreatedAt.Time,
				UpdatedAt:          snap.UpdatedAt.Time,
			}); err != nil {
				return summary, err
			}
			summary.Snapshots++
		}
	}

	logger.Info("statistics dump loaded", "videos", summary.Videos, "snapshots", summary.Snapshots)
	return summary, nil
}
