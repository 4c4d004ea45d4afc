package query

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp names the kind of change one DiffLine segment represents.
type DiffOp string

const (
	DiffEqual  DiffOp = "equal"
	DiffInsert DiffOp = "insert"
	DiffDelete DiffOp = "delete"
)

// DiffSegment is one contiguous span of a two-way text diff.
type DiffSegment struct {
	Op   DiffOp
	Text string
}

// Diff computes a semantic-cleaned diff between two revisions' content,
// used by the "diff any two revisions" operation to render an inline
// before/after view.
func Diff(oldContent, newContent string) []DiffSegment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	out := make([]DiffSegment, 0, len(diffs))
	for _, d := range diffs {
		out = append(out, DiffSegment{Op: diffOpOf(d.Type), Text: d.Text})
	}
	return out
}

func diffOpOf(t diffmatchpatch.Operation) DiffOp {
	switch t {
	case diffmatchpatch.DiffInsert:
		return DiffInsert
	case diffmatchpatch.DiffDelete:
		return DiffDelete
	default:
		return DiffEqual
	}
}
