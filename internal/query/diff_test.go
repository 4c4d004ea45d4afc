package query

import "testing"

func TestDiffIdenticalContentIsAllEqual(t *testing.T) {
	segs := Diff("package main\n", "package main\n")
	for _, s := range segs {
		if s.Op != DiffEqual {
			t.Fatalf("expected all-equal diff for identical input, got %+v", segs)
		}
	}
}

func TestDiffDetectsInsertionAndDeletion(t *testing.T) {
	segs := Diff("func Old() {}\n", "func New() {}\n")

	var sawInsert, sawDelete bool
	for _, s := range segs {
		switch s.Op {
		case DiffInsert:
			sawInsert = true
		case DiffDelete:
			sawDelete = true
		}
	}
	if !sawInsert || !sawDelete {
		t.Fatalf("expected both insert and delete segments, got %+v", segs)
	}
}
