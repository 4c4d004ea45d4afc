package backend

import (
	"time"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
)

// buildBleveQuery translates the backend-agnostic Query into a bleve query
// tree: a boosted multi-match over content and file_name.text, AND-composed
// with exact-term, boolean, and date-range filters.
func buildBleveQuery(q Query) bleveQuery.Query {
	var clauses []bleveQuery.Query

	if q.Wildcard != "" {
		wq := bleve.NewWildcardQuery(q.Wildcard)
		if q.WildcardField != "" {
			wq.SetField(q.WildcardField)
		}
		clauses = append(clauses, wq)
	}

	switch {
	case q.Text != "" && q.Text != "*" && !q.MatchAll:
		field := q.Field
		if field == "" {
			field = "content"
		}
		mq := bleve.NewMatchQuery(q.Text)
		mq.SetField(field)
		mq.Operator = bleveQuery.MatchQueryOperatorAnd
		if q.Fuzziness > 0 {
			mq.SetFuzziness(q.Fuzziness)
		}

		if q.BoostField != "" {
			bq := bleve.NewMatchQuery(q.Text)
			bq.SetField(q.BoostField)
			bq.Operator = bleveQuery.MatchQueryOperatorAnd
			if q.Fuzziness > 0 {
				bq.SetFuzziness(q.Fuzziness)
			}
			boost := q.Boost
			if boost <= 0 {
				boost = 2.0
			}
			bq.SetBoost(boost)
			disjunct := bleve.NewDisjunctionQuery(mq, bq)
			clauses = append(clauses, disjunct)
		} else {
			clauses = append(clauses, mq)
		}
	case q.Wildcard == "":
		clauses = append(clauses, bleve.NewMatchAllQuery())
	}

	for field, values := range q.Terms {
		if len(values) == 0 {
			continue
		}
		var termClauses []bleveQuery.Query
		for _, v := range values {
			tq := bleve.NewTermQuery(v)
			tq.SetField(field)
			termClauses = append(termClauses, tq)
		}
		if len(termClauses) == 1 {
			clauses = append(clauses, termClauses[0])
		} else {
			clauses = append(clauses, bleve.NewDisjunctionQuery(termClauses...))
		}
	}

	for field, want := range q.Bools {
		bq := bleve.NewBoolFieldQuery(want)
		bq.SetField(field)
		clauses = append(clauses, bq)
	}

	if q.DateRange != nil && q.DateRangeField != "" {
		var start, end *time.Time
		if q.DateRange.Gte != nil {
			t := time.UnixMilli(*q.DateRange.Gte).UTC()
			start = &t
		}
		if q.DateRange.Lt != nil {
			t := time.UnixMilli(*q.DateRange.Lt).UTC()
			end = &t
		}
		if start != nil || end != nil {
			var zs, ze time.Time
			if start != nil {
				zs = *start
			}
			if end != nil {
				ze = *end
			}
			// Gte is inclusive, Lt is exclusive.
			dq := bleve.NewDateRangeInclusiveQuery(zs, ze, boolPtr(true), boolPtr(false))
			dq.SetField(q.DateRangeField)
			clauses = append(clauses, dq)
		}
	}

	if len(clauses) == 1 {
		return clauses[0]
	}
	return bleve.NewConjunctionQuery(clauses...)
}

func boolPtr(b bool) *bool { return &b }
