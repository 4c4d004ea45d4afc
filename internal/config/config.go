// Package config loads and derives rewindex's per-project configuration:
// the YAML file at <project-root>/.rewindex.yaml, ignore-pattern discovery,
// and the project's stable identity.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// projectIDNamespace mirrors the original implementation's use of
// uuid.NAMESPACE_URL with a "rewindex:<posix-path>" name, so project ids
// derived here are stable across reimplementations given the same path.
var projectIDNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// ProjectConfig identifies the project.
type ProjectConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Root string `yaml:"root"`
}

// BackendConfig configures the embedded search backend.
type BackendConfig struct {
	DataDir     string `yaml:"data_dir"`
	IndexPrefix string `yaml:"index_prefix"`
}

// IndexingWatch configures the filesystem watcher.
type IndexingWatch struct {
	Enabled     bool `yaml:"enabled"`
	DebounceMS  int  `yaml:"debounce_ms"`
	BatchSize   int  `yaml:"batch_size"`
}

// IndexingExtract toggles which metadata extraction fields run.
type IndexingExtract struct {
	Functions bool `yaml:"functions"`
	Classes   bool `yaml:"classes"`
	Imports   bool `yaml:"imports"`
	Todos     bool `yaml:"todos"`
}

// IndexingConfig configures C1/C2 path eligibility and extraction toggles.
type IndexingConfig struct {
	IncludePatterns  []string        `yaml:"include_patterns"`
	ExcludePatterns  []string        `yaml:"exclude_patterns"`
	MaxFileSizeMB    int             `yaml:"max_file_size_mb"`
	IndexBinaries    bool            `yaml:"index_binaries"`
	Watch            IndexingWatch   `yaml:"watch"`
	Extract          IndexingExtract `yaml:"extract"`
}

// SearchDefaults configures default search() options.
type SearchDefaults struct {
	Limit        int  `yaml:"limit"`
	ContextLines int  `yaml:"context_lines"`
	Highlight    bool `yaml:"highlight"`
}

// SearchConfig configures C8 query defaults and field boosts.
type SearchConfig struct {
	Defaults SearchDefaults     `yaml:"defaults"`
	Boost    map[string]float64 `yaml:"boost"`
}

// VersioningConfig configures C5 retention policy.
type VersioningConfig struct {
	KeepAllVersions   bool `yaml:"keep_all_versions"`
	MaxVersionsPerFile int `yaml:"max_versions_per_file"`
	CleanupAfterDays  int  `yaml:"cleanup_after_days"`
}

// MonitoringConfig configures the log level.
type MonitoringConfig struct {
	LogLevel string `yaml:"log_level"`
}

// Config is the root of a project's .rewindex.yaml.
type Config struct {
	Project    ProjectConfig    `yaml:"project"`
	Backend    BackendConfig    `yaml:"backend"`
	Indexing   IndexingConfig   `yaml:"indexing"`
	Search     SearchConfig     `yaml:"search"`
	Versioning VersioningConfig `yaml:"versioning"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{ID: "default", Name: "project", Root: "."},
		Backend: BackendConfig{
			DataDir:     ".rewindex",
			IndexPrefix: "rewindex_${project.id}",
		},
		Indexing: IndexingConfig{
			MaxFileSizeMB: 10,
			IndexBinaries: false,
			Watch:         IndexingWatch{Enabled: true, DebounceMS: 500, BatchSize: 50},
			Extract:       IndexingExtract{Functions: true, Classes: true, Imports: true, Todos: true},
		},
		Search: SearchConfig{
			Defaults: SearchDefaults{Limit: 20, ContextLines: 3, Highlight: false},
			Boost:    map[string]float64{"file_name": 2.0},
		},
		Versioning: VersioningConfig{
			KeepAllVersions:    true,
			MaxVersionsPerFile: 50,
			CleanupAfterDays:   90,
		},
		Monitoring: MonitoringConfig{LogLevel: "info"},
	}
}

// configFileName is the on-disk name of a project's config file.
const configFileName = ".rewindex.yaml"

// Load reads <projectRoot>/.rewindex.yaml over a default Config. A missing
// file is not an error; a malformed file is logged-by-the-caller and
// defaults are returned instead, per the parse-error propagation policy.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()
	cfg.Project.Root = "."

	path := filepath.Join(projectRoot, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	mergeInto(cfg, &parsed)
	return cfg, nil
}

// mergeInto overlays non-zero fields from src onto dst. Exclude patterns
// are appended to dst's rather than replacing them, and boost entries are
// merged key by key.
func mergeInto(dst, src *Config) {
	if src.Project.ID != "" {
		dst.Project.ID = src.Project.ID
	}
	if src.Project.Name != "" {
		dst.Project.Name = src.Project.Name
	}
	if src.Project.Root != "" {
		dst.Project.Root = src.Project.Root
	}
	if src.Backend.DataDir != "" {
		dst.Backend.DataDir = src.Backend.DataDir
	}
	if src.Backend.IndexPrefix != "" {
		dst.Backend.IndexPrefix = src.Backend.IndexPrefix
	}
	if len(src.Indexing.IncludePatterns) > 0 {
		dst.Indexing.IncludePatterns = src.Indexing.IncludePatterns
	}
	if len(src.Indexing.ExcludePatterns) > 0 {
		dst.Indexing.ExcludePatterns = append(dst.Indexing.ExcludePatterns, src.Indexing.ExcludePatterns...)
	}
	if src.Indexing.MaxFileSizeMB != 0 {
		dst.Indexing.MaxFileSizeMB = src.Indexing.MaxFileSizeMB
	}
	dst.Indexing.IndexBinaries = src.Indexing.IndexBinaries
	if src.Indexing.Watch.DebounceMS != 0 {
		dst.Indexing.Watch.DebounceMS = src.Indexing.Watch.DebounceMS
	}
	if src.Indexing.Watch.BatchSize != 0 {
		dst.Indexing.Watch.BatchSize = src.Indexing.Watch.BatchSize
	}
	if src.Search.Defaults.Limit != 0 {
		dst.Search.Defaults.Limit = src.Search.Defaults.Limit
	}
	if src.Search.Defaults.ContextLines != 0 {
		dst.Search.Defaults.ContextLines = src.Search.Defaults.ContextLines
	}
	if src.Search.Defaults.Highlight {
		dst.Search.Defaults.Highlight = true
	}
	if len(src.Search.Boost) > 0 {
		for k, v := range src.Search.Boost {
			dst.Search.Boost[k] = v
		}
	}
	if src.Versioning.MaxVersionsPerFile != 0 {
		dst.Versioning.MaxVersionsPerFile = src.Versioning.MaxVersionsPerFile
	}
	if src.Versioning.CleanupAfterDays != 0 {
		dst.Versioning.CleanupAfterDays = src.Versioning.CleanupAfterDays
	}
	if src.Monitoring.LogLevel != "" {
		dst.Monitoring.LogLevel = src.Monitoring.LogLevel
	}
}

// Save writes cfg to <projectRoot>/.rewindex.yaml.
func Save(projectRoot string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(projectRoot, configFileName), data, 0o644)
}

// DeriveProjectID computes a stable project id from the project's absolute
// path, UUIDv5 over a fixed namespace, mirroring
// uuid.uuid5(NAMESPACE_URL, "rewindex:"+posix_path) from the original
// implementation.
func DeriveProjectID(absProjectRoot string) string {
	name := "rewindex:" + filepath.ToSlash(absProjectRoot)
	return uuid.NewSHA1(projectIDNamespace, []byte(name)).String()
}

// EnsureProjectIdentity assigns a derived id and directory-basename name
// when Config still holds the zero-value defaults, and persists the result.
// Mirrors original_source's ensure_project_config: stable identity written
// to disk on first init so later runs don't need to re-derive it.
func EnsureProjectIdentity(projectRoot string, cfg *Config) (changed bool, err error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return false, fmt.Errorf("resolve project root: %w", err)
	}

	if cfg.Project.ID == "" || cfg.Project.ID == "default" {
		cfg.Project.ID = DeriveProjectID(abs)
		changed = true
	}
	if cfg.Project.Name == "" || cfg.Project.Name == "project" {
		cfg.Project.Name = filepath.Base(abs)
		changed = true
	}
	return changed, nil
}

// ResolvedIndexPrefix substitutes ${project.id} and ${project.name} into
// the configured index prefix template.
func (c *Config) ResolvedIndexPrefix() string {
	prefix := c.Backend.IndexPrefix
	prefix = strings.ReplaceAll(prefix, "${project.id}", c.Project.ID)
	prefix = strings.ReplaceAll(prefix, "${project.name}", c.Project.Name)
	return prefix
}

// DataDir returns the absolute path to the project's rewindex data
// directory, creating it if necessary.
func (c *Config) DataDir(projectRoot string) (string, error) {
	dir := c.Backend.DataDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectRoot, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// MaxFileSizeBytes converts the configured MB cap to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Indexing.MaxFileSizeMB) * 1024 * 1024
}

// FindProjectRoot walks up from start looking for .rewindex.yaml, a
// .rewindex data directory, or a .git directory, falling back to start
// itself when none is found.
func FindProjectRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start dir: %w", err)
	}

	cur := abs
	for {
		if fileExists(filepath.Join(cur, configFileName)) ||
			dirExists(filepath.Join(cur, ".rewindex")) ||
			dirExists(filepath.Join(cur, ".git")) {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		cur = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
