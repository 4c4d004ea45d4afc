package backend

import (
	"fmt"
	"sort"
	"time"

	"github.com/blevesearch/bleve/v2"
)

const histogramFacetName = "timeline"

// addHistogramFacet attaches a date-range facet to req approximating a
// fixed-interval date histogram: bleve has no native histogram aggregation,
// so buckets are materialized as named date ranges up to MaxBuckets, with
// empty buckets preserved by construction (every range is added regardless
// of whether it will contain hits).
func addHistogramFacet(req *bleve.SearchRequest, spec DateHistogramSpec) {
	fr := bleve.NewFacetRequest(spec.Field, spec.MaxBuckets)

	n := bucketCount(spec)
	for i := 0; i < n; i++ {
		start := time.UnixMilli(spec.RangeStartMS + int64(i)*spec.IntervalMS).UTC()
		end := time.UnixMilli(spec.RangeStartMS + int64(i+1)*spec.IntervalMS).UTC()
		fr.AddDateTimeRange(bucketName(i), start, end)
	}

	req.AddFacet(histogramFacetName, fr)
}

func bucketCount(spec DateHistogramSpec) int {
	if spec.IntervalMS <= 0 {
		return 0
	}
	span := spec.RangeEndMS - spec.RangeStartMS
	if span <= 0 {
		return 0
	}
	n := int(span / spec.IntervalMS)
	if span%spec.IntervalMS != 0 {
		n++
	}
	if spec.MaxBuckets > 0 && n > spec.MaxBuckets {
		n = spec.MaxBuckets
	}
	return n
}

func bucketName(i int) string {
	return fmt.Sprintf("b%d", i)
}

func readHistogramFacet(res *bleve.SearchResult, spec DateHistogramSpec) []Bucket {
	facet, ok := res.Facets[histogramFacetName]
	if !ok || facet == nil {
		return nil
	}

	buckets := make([]Bucket, 0, len(facet.DateRanges))
	for _, dr := range facet.DateRanges {
		idx := bucketIndex(dr.Name)
		if idx < 0 {
			continue
		}
		buckets = append(buckets, Bucket{
			KeyMS: spec.RangeStartMS + int64(idx)*spec.IntervalMS,
			Count: dr.Count,
		})
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].KeyMS < buckets[j].KeyMS })
	return buckets
}

func bucketIndex(name string) int {
	var i int
	if _, err := fmt.Sscanf(name, "b%d", &i); err != nil {
		return -1
	}
	return i
}
