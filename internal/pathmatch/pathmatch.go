// Package pathmatch implements the Path Matcher (C1): the eligibility
// predicate deciding whether a discovered path should be indexed.
package pathmatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ryrobes/rewindex/internal/ignore"
)

// DefaultMaxFileSize is the default maximum file size eligible for indexing (10 MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// dirMatcherCacheSize caps the number of per-directory ignore matchers kept
// in memory, to bound memory growth on projects with many nested
// .gitignore/.rewindexignore files over a long-running watch session.
const dirMatcherCacheSize = 1000

// defaultExcludePatterns are always excluded regardless of project configuration:
// build outputs, VCS internals, rewindex's own config file and data
// directory, lockfiles, and common secret file names.
var defaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/.rewindex/**",
	".rewindex.yaml",
	"**/vendor/**",
	"**/__pycache__/**",
	"**/dist/**",
	"**/build/**",
	"**/*.min.js",
	"**/*.min.css",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"go.sum",
	"*.lock",
	"*.log",
	"*.sqlite",
	"*.db",
	".env",
	".env.*",
	"*.key",
	"*.pem",
	"*.cert",
}

// binarySuffixPatterns are the default-excluded patterns that target known
// binary file suffixes. When Config.IndexBinaries is set these are stripped
// from the exclusion set at load time.
var binarySuffixPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.ico", "*.svg",
	"*.pdf", "*.zip", "*.tar", "*.gz", "*.bz2", "*.7z", "*.rar",
	"*.exe", "*.dll", "*.so", "*.dylib", "*.bin", "*.dat",
	"*.woff", "*.woff2", "*.ttf", "*.eot", "*.otf",
	"*.mp3", "*.mp4", "*.avi", "*.mov", "*.wav",
}

// Config configures the Matcher.
type Config struct {
	// Include, when non-empty, requires at least one pattern to match.
	Include []string
	// Exclude are additional exclude patterns from project configuration.
	Exclude []string
	// MaxFileSize caps eligible file size in bytes. Zero means DefaultMaxFileSize.
	MaxFileSize int64
	// IndexBinaries strips binary-suffix patterns from the exclusion set.
	IndexBinaries bool
	// RootDir is the project root, used to locate .gitignore/.rewindexignore.
	RootDir string
}

// Matcher implements C1's eligibility predicate. It is safe for concurrent use.
type Matcher struct {
	cfg         Config
	maxFileSize int64

	base *ignore.Matcher
	inc  *ignore.Matcher

	// dirCache holds one compiled ignore.Matcher per directory for nested
	// .gitignore/.rewindexignore files below RootDir, built lazily and
	// evicted least-recently-used once dirMatcherCacheSize is reached.
	dirCache *lru.Cache[string, *ignore.Matcher]
}

// New builds a Matcher from configuration, loading .gitignore and
// .rewindexignore from cfg.RootDir if present.
func New(cfg Config) (*Matcher, error) {
	maxFileSize := cfg.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	base := ignore.New()
	for _, p := range defaultExcludePatterns {
		base.AddPattern(p)
	}
	if !cfg.IndexBinaries {
		for _, p := range binarySuffixPatterns {
			base.AddPattern(p)
		}
	}
	for _, p := range cfg.Exclude {
		base.AddPattern(p)
	}
	if cfg.RootDir != "" {
		_ = base.AddFromFile(filepath.Join(cfg.RootDir, ".gitignore"))
		_ = base.AddFromFile(filepath.Join(cfg.RootDir, ".rewindexignore"))
	}

	var inc *ignore.Matcher
	if len(cfg.Include) > 0 {
		inc = ignore.New()
		for _, p := range cfg.Include {
			inc.AddPattern(p)
		}
	}

	dirCache, err := lru.New[string, *ignore.Matcher](dirMatcherCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create ignore matcher cache: %w", err)
	}

	return &Matcher{
		cfg:         cfg,
		maxFileSize: maxFileSize,
		base:        base,
		inc:         inc,
		dirCache:    dirCache,
	}, nil
}

// Eligible reports whether relPath (POSIX-separated, relative to project
// root) should be indexed. size is the file's size in bytes; pass -1 if
// unknown (the size check is skipped in that case).
func (m *Matcher) Eligible(relPath string, isDir bool, size int64) bool {
	relPath = filepath.ToSlash(relPath)

	if m.base.Match(relPath, isDir) {
		return false
	}

	if m.nestedExcluded(relPath, isDir) {
		return false
	}

	if m.inc != nil && !m.inc.Match(relPath, isDir) {
		return false
	}

	if size >= 0 && size > m.maxFileSize {
		return false
	}

	return true
}

// nestedExcluded checks relPath against the .gitignore/.rewindexignore
// files of every directory between RootDir and relPath's parent, the way a
// real gitignore hierarchy layers rules closer to the file over rules
// higher up the tree. Each directory's matcher is compiled once and cached.
func (m *Matcher) nestedExcluded(relPath string, isDir bool) bool {
	if m.cfg.RootDir == "" {
		return false
	}
	dirRel := filepath.ToSlash(filepath.Dir(relPath))
	if dirRel == "." {
		return false
	}

	parts := strings.Split(dirRel, "/")
	dir := m.cfg.RootDir
	prefix := ""
	for _, part := range parts {
		dir = filepath.Join(dir, part)
		if prefix == "" {
			prefix = part
		} else {
			prefix = prefix + "/" + part
		}

		sub := m.getDirMatcher(dir)
		if sub.Empty() {
			continue
		}
		nested := strings.TrimPrefix(relPath, prefix+"/")
		if sub.Match(nested, isDir) {
			return true
		}
	}
	return false
}

// getDirMatcher returns the cached ignore matcher for dir's own
// .gitignore/.rewindexignore files, compiling and caching it on first use.
// A directory with neither file yields an empty (always-cached) matcher.
func (m *Matcher) getDirMatcher(dir string) *ignore.Matcher {
	if cached, ok := m.dirCache.Get(dir); ok {
		return cached
	}

	sub := ignore.New()
	_ = sub.AddFromFile(filepath.Join(dir, ".gitignore"))
	_ = sub.AddFromFile(filepath.Join(dir, ".rewindexignore"))

	m.dirCache.Add(dir, sub)
	return sub
}

// EligibleFile reports eligibility for a file on disk, statting it to
// obtain its size. Missing files are not eligible.
func (m *Matcher) EligibleFile(absPath, relPath string) bool {
	info, err := os.Stat(absPath)
	if err != nil {
		return false
	}
	return m.Eligible(relPath, info.IsDir(), info.Size())
}

// MaxFileSize returns the effective maximum file size in bytes.
func (m *Matcher) MaxFileSize() int64 {
	return m.maxFileSize
}
