package detect

import "testing"

func TestReconcileMarksMissingPathAsDeletedWhenNoHashMatch(t *testing.T) {
	prev := map[string]string{"a.go": "hash-a"}
	present := map[string]string{"b.go": "hash-b"}

	res := Reconcile(prev, present)

	if len(res.Deleted) != 1 || res.Deleted[0] != "a.go" {
		t.Errorf("Deleted = %v, want [a.go]", res.Deleted)
	}
	if len(res.Renamed) != 0 {
		t.Errorf("Renamed = %v, want none", res.Renamed)
	}
}

func TestReconcileDetectsSimpleRename(t *testing.T) {
	prev := map[string]string{"old.go": "hash-1"}
	present := map[string]string{"new.go": "hash-1"}

	res := Reconcile(prev, present)

	if len(res.Deleted) != 0 {
		t.Errorf("Deleted = %v, want none", res.Deleted)
	}
	if len(res.Renamed) != 1 || res.Renamed[0] != (RenamePair{OldPath: "old.go", NewPath: "new.go"}) {
		t.Errorf("Renamed = %v, want [old.go -> new.go]", res.Renamed)
	}
}

func TestReconcileUnchangedPathIsNeitherDeletedNorRenamed(t *testing.T) {
	prev := map[string]string{"stable.go": "hash-s"}
	present := map[string]string{"stable.go": "hash-s"}

	res := Reconcile(prev, present)

	if len(res.Deleted) != 0 || len(res.Renamed) != 0 {
		t.Errorf("expected no changes, got deleted=%v renamed=%v", res.Deleted, res.Renamed)
	}
}

func TestReconcileAmbiguousRenamePicksLexicographicallySmallest(t *testing.T) {
	prev := map[string]string{"old.go": "hash-1"}
	present := map[string]string{
		"zeta.go":  "hash-1",
		"alpha.go": "hash-1",
		"beta.go":  "hash-1",
	}

	res := Reconcile(prev, present)

	if len(res.Renamed) != 1 || res.Renamed[0].NewPath != "alpha.go" {
		t.Errorf("Renamed = %v, want old.go -> alpha.go", res.Renamed)
	}
}

func TestReconcileMultipleMissingSharingCandidatesAreAssignedUniquely(t *testing.T) {
	prev := map[string]string{
		"a_old.go": "hash-1",
		"b_old.go": "hash-1",
	}
	present := map[string]string{
		"a_new.go": "hash-1",
		"b_new.go": "hash-1",
	}

	res := Reconcile(prev, present)

	if len(res.Renamed) != 2 {
		t.Fatalf("Renamed = %v, want 2 pairs", res.Renamed)
	}
	seen := map[string]bool{}
	for _, r := range res.Renamed {
		if seen[r.NewPath] {
			t.Fatalf("NewPath %q claimed twice: %v", r.NewPath, res.Renamed)
		}
		seen[r.NewPath] = true
	}
}
