package loader

import (
	"context"
	"strings"
	"testing"

	"github.com/vidstat/vidstat/internal/stats"
)

type recordingUpserter struct {
	videos    []stats.Video
	snapshots []stats.Snapshot
}

func (r *recordingUpserter) UpsertVideo(_ context.Context, video stats.Video) error {
	r.videos = append(r.videos, video)
	return nil
}

func (r *recordingUpserter) UpsertSnapshot(_ context.Context, snapshot stats.Snapshot) error {
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

const sampleDump = `{
  "videos": [
    {
      "id": "11111111-1111-1111-1111-111111111111",
      "creator_id": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
      "video_created_at": "2025-11-28T09:00:00",
      "views_count": 200,
      "likes_count": 20,
      "comments_count": 2,
      "reports_count": 0,
      "created_at": "2025-11-28T09:00:00",
      "updated_at": "2025-11-28T12:00:00",
      "snapshots": [
        {
          "id": "snap-late",
          "views_count": 200,
          "likes_count": 20,
          "comments_count": 2,
          "reports_count": 0,
          "delta_views_count": 50,
          "delta_likes_count": 5,
          "delta_comments_count": 1,
          "delta_reports_count": 0,
          "created_at": "2025-11-28T12:00:00",
          "updated_at": "2025-11-28T12:00:00"
        },
        {
          "id": "snap-early",
          "views_count": 150,
          "likes_count": 15,
          "comments_count": 1,
          "reports_count": 0,
          "delta_views_count": 150,
          "delta_likes_count": 15,
          "delta_comments_count": 1,
          "delta_reports_count": 0,
          "created_at": "2025-11-28T11:00:00+00:00",
          "updated_at": "2025-11-28T11:00:00+00:00"
        }
      ]
    }
  ]
}`

func TestLoad(t *testing.T) {
	upserter := &recordingUpserter{}

	summary, err := Load(context.Background(), strings.NewReader(sampleDump), upserter, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if summary.Videos != 1 || summary.Snapshots != 2 {
		t.Fatalf("summary = %+v", summary)
	}

	if len(upserter.videos) != 1 {
		t.Fatalf("videos = %d", len(upserter.videos))
	}
	video := upserter.videos[0]
	if video.CreatorID != "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Fatalf("CreatorID = %q", video.CreatorID)
	}
	if video.ViewsCount != 200 {
		t.Fatalf("ViewsCount = %d", video.ViewsCount)
	}

	if len(upserter.snapshots) != 2 {
		t.Fatalf("snapshots = %d", len(upserter.snapshots))
	}
	if upserter.snapshots[0].ID != "snap-early" || upserter.snapshots[1].ID != "snap-late" {
		t.Fatalf("snapshots not in measurement order: %q, %q",
			upserter.snapshots[0].ID, upserter.snapshots[1].ID)
	}
	for _, snap := range upserter.snapshots {
		if snap.VideoID != video.ID {
			t.Fatalf("snapshot %q bound to video %q", snap.ID, snap.VideoID)
		}
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	upserter := &recordingUpserter{}
	if _, err := Load(context.Background(), strings.NewReader(`{"videos": [`), upserter, nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadRejectsVideoWithoutID(t *testing.T) {
	upserter := &recordingUpserter{}
	dump := `{"videos": [{"creator_id": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"video_created_at": "2025-11-28T09:00:00",
		"created_at": "2025-11-28T09:00:00", "updated_at": "2025-11-28T09:00:00"}]}`
	if _, err := Load(context.Background(), strings.NewReader(dump), upserter, nil); err == nil {
		t.Fatal("expected error for missing video id")
	}
}

func TestLoadRejectsUnknownTimestampFormat(t *testing.T) {
	upserter := &recordingUpserter{}
	dump := `{"videos": [{"id": "v1", "video_created_at": "28.11.2025",
		"created_at": "2025-11-28T09:00:00", "updated_at": "2025-11-28T09:00:00"}]}`
	if _, err := Load(context.Background(), strings.NewReader(dump), upserter, nil); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}
