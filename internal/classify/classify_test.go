package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestClassifyDetectsBinaryByNulByte(t *testing.T) {
	path := writeTemp(t, "image.png", []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x01, 0x02})
	res, err := Classify(path)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !res.Binary {
		t.Error("expected binary content to be detected")
	}
}

func TestClassifyTextByExtension(t *testing.T) {
	path := writeTemp(t, "main.go", []byte("package main\n"))
	res, err := Classify(path)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Binary {
		t.Fatal("expected text file to not be binary")
	}
	if res.Language != "go" {
		t.Errorf("Language = %q, want go", res.Language)
	}
}

func TestClassifySpecialBasenames(t *testing.T) {
	cases := map[string]string{
		"Dockerfile":     "dockerfile",
		"Makefile":       "makefile",
		".gitignore":     "ignore",
		"pyproject.toml": "toml",
		".env":           "properties",
		".env.local":     "properties",
	}
	for name, want := range cases {
		if got := LanguageForName(name); got != want {
			t.Errorf("LanguageForName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestClassifyShebangFallback(t *testing.T) {
	path := writeTemp(t, "run", []byte("#!/usr/bin/env python3\nprint('hi')\n"))
	res, err := Classify(path)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Language != "python" {
		t.Errorf("Language = %q, want python", res.Language)
	}
}

func TestClassifyPlaintextFallback(t *testing.T) {
	path := writeTemp(t, "README", []byte("hello world\n"))
	res, err := Classify(path)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Language != "plaintext" {
		t.Errorf("Language = %q, want plaintext", res.Language)
	}
}
