package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Indexing.MaxFileSizeMB != 10 {
		t.Errorf("MaxFileSizeMB = %d, want default 10", cfg.Indexing.MaxFileSizeMB)
	}
	if cfg.Backend.IndexPrefix != "rewindex_${project.id}" {
		t.Errorf("IndexPrefix = %q, want template default", cfg.Backend.IndexPrefix)
	}
}

func TestLoadMergesProjectOverrides(t *testing.T) {
	dir := t.TempDir()
	yamlBody := "project:\n  name: myproj\nindexing:\n  max_file_size_mb: 25\n"
	if err := os.WriteFile(filepath.Join(dir, ".rewindex.yaml"), []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "myproj" {
		t.Errorf("Project.Name = %q, want myproj", cfg.Project.Name)
	}
	if cfg.Indexing.MaxFileSizeMB != 25 {
		t.Errorf("MaxFileSizeMB = %d, want 25", cfg.Indexing.MaxFileSizeMB)
	}
	// Unset fields keep their default.
	if cfg.Versioning.MaxVersionsPerFile != 50 {
		t.Errorf("MaxVersionsPerFile = %d, want default 50", cfg.Versioning.MaxVersionsPerFile)
	}
}

func TestLoadToleratesMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".rewindex.yaml"), []byte("project: [unterminated"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(dir)
	if err == nil {
		t.Fatal("expected a parse error to be returned alongside defaults")
	}
	if cfg == nil || cfg.Indexing.MaxFileSizeMB != 10 {
		t.Fatalf("expected defaults to still be usable on parse error, got %+v", cfg)
	}
}

func TestDeriveProjectIDIsStableForSamePath(t *testing.T) {
	id1 := DeriveProjectID("/home/user/project")
	id2 := DeriveProjectID("/home/user/project")
	if id1 != id2 {
		t.Errorf("DeriveProjectID not stable: %q != %q", id1, id2)
	}

	id3 := DeriveProjectID("/home/user/other")
	if id1 == id3 {
		t.Error("DeriveProjectID should differ across distinct paths")
	}
}

func TestEnsureProjectIdentitySetsIDAndName(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	changed, err := EnsureProjectIdentity(dir, cfg)
	if err != nil {
		t.Fatalf("EnsureProjectIdentity: %v", err)
	}
	if !changed {
		t.Error("expected changed=true on first call")
	}
	if cfg.Project.ID == "default" || cfg.Project.ID == "" {
		t.Errorf("Project.ID not derived: %q", cfg.Project.ID)
	}
	if cfg.Project.Name == "project" || cfg.Project.Name == "" {
		t.Errorf("Project.Name not derived: %q", cfg.Project.Name)
	}

	changed2, err := EnsureProjectIdentity(dir, cfg)
	if err != nil {
		t.Fatalf("EnsureProjectIdentity (second call): %v", err)
	}
	if changed2 {
		t.Error("expected changed=false once identity is already set")
	}
}

func TestResolvedIndexPrefixSubstitutesTemplate(t *testing.T) {
	cfg := Default()
	cfg.Project.ID = "abc123"
	cfg.Project.Name = "demo"
	cfg.Backend.IndexPrefix = "rewindex_${project.id}_${project.name}"

	got := cfg.ResolvedIndexPrefix()
	want := "rewindex_abc123_demo"
	if got != want {
		t.Errorf("ResolvedIndexPrefix = %q, want %q", got, want)
	}
}
