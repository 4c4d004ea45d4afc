package pathmatch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultExcludesNodeModulesAndVendor(t *testing.T) {
	m, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := map[string]bool{
		"src/app.go":                    true,
		"node_modules/left-pad/index.js": false,
		"vendor/foo/bar.go":             false,
		".git/HEAD":                     false,
		"dist/bundle.js":                false,
		"app.min.js":                    false,
		"yarn.lock":                     false,
		"go.sum":                        false,
		"secrets.pem":                   false,
	}
	for path, want := range cases {
		if got := m.Eligible(path, false, 100); got != want {
			t.Errorf("Eligible(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIndexBinariesStripsBinaryExclusions(t *testing.T) {
	m, err := New(Config{IndexBinaries: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Eligible("logo.png", false, 100) {
		t.Error("expected logo.png to be eligible when IndexBinaries is set")
	}

	m2, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m2.Eligible("logo.png", false, 100) {
		t.Error("expected logo.png to be excluded by default")
	}
}

func TestMaxFileSizeCap(t *testing.T) {
	m, err := New(Config{MaxFileSize: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Eligible("a.go", false, 10) {
		t.Error("expected file at exactly the cap to be eligible")
	}
	if m.Eligible("a.go", false, 11) {
		t.Error("expected file over the cap to be ineligible")
	}
	if !m.Eligible("a.go", false, -1) {
		t.Error("expected unknown size (-1) to skip the size check")
	}
}

func TestIncludeListRequiresMatch(t *testing.T) {
	m, err := New(Config{Include: []string{"*.go"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Eligible("main.go", false, 100) {
		t.Error("expected main.go to match include pattern *.go")
	}
	if m.Eligible("README.md", false, 100) {
		t.Error("expected README.md to be excluded when include list doesn't match")
	}
}

func TestAdditionalExcludeFromConfig(t *testing.T) {
	m, err := New(Config{Exclude: []string{"testdata/**"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Eligible("testdata/fixture.go", false, 100) {
		t.Error("expected testdata/** to be excluded via project config")
	}
}

func TestNestedGitignoreExcludesRelativeToItsOwnDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "pkg", "gen"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "pkg", ".gitignore"), []byte("gen/\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := New(Config{RootDir: root})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if m.Eligible("pkg/gen/output.go", false, 100) {
		t.Error("expected pkg/gen/output.go to be excluded by pkg/.gitignore's gen/ rule")
	}
	if !m.Eligible("pkg/keep.go", false, 100) {
		t.Error("expected pkg/keep.go to remain eligible")
	}

	// A second lookup under the same directory must reuse the cached
	// matcher rather than re-parsing pkg/.gitignore.
	if m.Eligible("pkg/gen/other.go", false, 100) {
		t.Error("expected second lookup under pkg/gen to also be excluded")
	}
	if m.dirCache.Len() == 0 {
		t.Error("expected the nested matcher to be cached")
	}
}

func TestNestedRewindexignoreExcludesRelativeToItsOwnDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "internal", "fixtures"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "internal", ".rewindexignore"), []byte("fixtures/**\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := New(Config{RootDir: root})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if m.Eligible("internal/fixtures/data.json", false, 100) {
		t.Error("expected internal/fixtures/data.json to be excluded by internal/.rewindexignore")
	}
}
