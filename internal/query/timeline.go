package query

import (
	"context"

	"github.com/ryrobes/rewindex/internal/apperrors"
	"github.com/ryrobes/rewindex/internal/backend"
)

const (
	timelineBucketMS = 5 * 60 * 1000 // 5-minute buckets
	timelineMaxPoints = 500
)

// Timeline produces a fixed 5-minute-bucket time series over the versions
// index for a project, optionally scoped to a subset of paths. Empty
// buckets are preserved; if the natural bucket count exceeds
// timelineMaxPoints the series is downsampled by striding.
func (e *Engine) Timeline(ctx context.Context, projectID string, paths []string, rangeStartMS, rangeEndMS int64) ([]TimelinePoint, error) {
	if e.versionsIndex == "" {
		return nil, apperrors.InvalidArgument("versions index not configured")
	}
	if rangeEndMS <= rangeStartMS {
		return nil, nil
	}

	// Striding: when the range holds more than timelineMaxPoints 5-minute
	// buckets, each bucket spans a whole number of 5-minute intervals.
	interval := int64(timelineBucketMS)
	if natural := (rangeEndMS - rangeStartMS + interval - 1) / interval; natural > timelineMaxPoints {
		interval *= (natural + timelineMaxPoints - 1) / timelineMaxPoints
	}

	bq := backend.Query{
		MatchAll: true,
		Terms:    map[string][]string{"project_id": {projectID}},
		Size:     0,
		Histogram: &backend.DateHistogramSpec{
			Field:        "created_at",
			IntervalMS:   interval,
			MaxBuckets:   timelineMaxPoints,
			RangeStartMS: rangeStartMS,
			RangeEndMS:   rangeEndMS,
		},
	}
	if len(paths) > 0 {
		bq.Terms["file_path"] = paths
	}

	res, err := e.be.Search(ctx, e.versionsIndex, bq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBackendReportedError, "timeline search", err)
	}

	points := make([]TimelinePoint, 0, len(res.Histogram))
	for _, b := range res.Histogram {
		points = append(points, TimelinePoint{BucketStartMS: b.KeyMS, Count: b.Count})
	}
	return downsample(points, timelineMaxPoints), nil
}

// downsample strides through points so the result never exceeds max,
// summing counts within each stride so total counts are preserved.
func downsample(points []TimelinePoint, max int) []TimelinePoint {
	if max <= 0 || len(points) <= max {
		return points
	}
	stride := (len(points) + max - 1) / max
	out := make([]TimelinePoint, 0, max)
	for i := 0; i < len(points); i += stride {
		end := i + stride
		if end > len(points) {
			end = len(points)
		}
		bucket := TimelinePoint{BucketStartMS: points[i].BucketStartMS}
		for _, p := range points[i:end] {
			bucket.Count += p.Count
		}
		out = append(out, bucket)
	}
	return out
}
