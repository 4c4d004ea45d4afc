package query

import (
	"context"
	"testing"
	"time"

	"github.com/ryrobes/rewindex/internal/backend"
)

func TestTimelineBucketsVersionsIntoFiveMinuteWindows(t *testing.T) {
	ctx := context.Background()
	e, be := newTestEngine(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	put := func(hash string, offset time.Duration) {
		_ = be.Put(ctx, "versions", hash, backend.Document{
			"project_id": "proj", "file_path": "a.go", "created_at": base.Add(offset).UnixMilli(),
		})
	}
	put("h1", 0)
	put("h2", 1*time.Minute)
	put("h3", 6*time.Minute)

	points, err := e.Timeline(ctx, "proj", nil, base.UnixMilli(), base.Add(10*time.Minute).UnixMilli())
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2 (two 5-minute buckets with activity)", len(points))
	}
	if points[0].Count != 2 {
		t.Errorf("first bucket count = %d, want 2", points[0].Count)
	}
	if points[1].Count != 1 {
		t.Errorf("second bucket count = %d, want 1", points[1].Count)
	}
}

func TestDownsampleCapsAtMaxPreservingTotalCount(t *testing.T) {
	points := make([]TimelinePoint, 0, 1000)
	total := 0
	for i := 0; i < 1000; i++ {
		points = append(points, TimelinePoint{BucketStartMS: int64(i), Count: 1})
		total++
	}
	out := downsample(points, 500)
	if len(out) > 500 {
		t.Fatalf("len(out) = %d, want <= 500", len(out))
	}
	sum := 0
	for _, p := range out {
		sum += p.Count
	}
	if sum != total {
		t.Errorf("sum(out) = %d, want %d (downsample must preserve total count)", sum, total)
	}
}
