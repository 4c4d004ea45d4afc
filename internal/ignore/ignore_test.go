package ignore

import "testing"

func TestMatchBasenameAnyDepth(t *testing.T) {
	m := New()
	m.AddPattern("node_modules")

	cases := map[string]bool{
		"node_modules":                 true,
		"node_modules/foo.js":          true,
		"src/node_modules/foo.js":      true,
		"src/not_node_modules/foo.js":  false,
		"src/node_modules_extra/x.txt": false,
	}
	for path, want := range cases {
		if got := m.Match(path, false); got != want {
			t.Errorf("Match(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestTrailingSlashIsDirectorySubtree(t *testing.T) {
	m := New()
	m.AddPattern("build/")

	if !m.Match("build", true) {
		t.Error("expected build/ to match directory build")
	}
	if m.Match("build", false) {
		t.Error("build/ should not match a plain file named build")
	}
	if !m.Match("build/output.txt", false) {
		t.Error("expected build/ to match files inside build/")
	}
	if !m.Match("src/build/output.txt", false) {
		t.Error("expected build/ (unanchored) to match nested build/ dirs")
	}
}

func TestDoubleStarGlob(t *testing.T) {
	m := New()
	m.AddPattern("dist/**")

	if !m.Match("dist/bundle.js", false) {
		t.Error("expected dist/** to match dist/bundle.js")
	}
	if !m.Match("dist/nested/deep/file.js", false) {
		t.Error("expected dist/** to match nested paths under dist")
	}
	if m.Match("other/dist/bundle.js", false) {
		t.Error("dist/** is anchored, should not match under other/")
	}
}

func TestNegationNotHonored(t *testing.T) {
	m := New()
	m.AddPattern("*.log")
	m.AddPattern("!important.log")

	if !m.Match("important.log", false) {
		t.Error("negation patterns are not honored; important.log should still be excluded")
	}
}

func TestCommentsAndBlankLinesSkipped(t *testing.T) {
	m := New()
	m.AddPattern("# a comment")
	m.AddPattern("")
	m.AddPattern("   ")

	if !m.Empty() {
		t.Error("expected matcher to remain empty after only comments/blank lines")
	}
}

func TestAddFromFileMissingIsNotError(t *testing.T) {
	m := New()
	if err := m.AddFromFile("/nonexistent/path/.gitignore"); err != nil {
		t.Errorf("expected nil error for missing ignore file, got %v", err)
	}
}
