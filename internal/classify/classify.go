// Package classify implements the Content Classifier (C2): binary detection
// and best-effort language identification by extension, special basename,
// and shebang fallback.
package classify

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"unicode/utf8"
)

// binarySniffSize is the number of leading bytes inspected for binary content.
const binarySniffSize = 8192

// languageByExt maps lowercase file extensions (including the leading dot)
// to a language identifier.
var languageByExt = map[string]string{
	".html": "html", ".htm": "html", ".xhtml": "html",
	".css": "css", ".scss": "scss", ".sass": "sass", ".less": "less",
	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".ts": "typescript", ".tsx": "typescript",
	".vue": "html", ".svelte": "html",
	".xml": "xml", ".svg": "xml",
	".json": "json", ".jsonc": "json", ".json5": "json",
	".yml": "yaml", ".yaml": "yaml",
	".toml": "toml", ".ini": "ini", ".cfg": "ini", ".conf": "ini",
	".md": "markdown", ".markdown": "markdown",
	".rst": "restructuredtext", ".tex": "latex",
	".c": "c", ".h": "c",
	".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp", ".hxx": "cpp",
	".rs": "rust", ".go": "go",
	".py": "python", ".pyw": "python", ".pyi": "python",
	".java": "java", ".kt": "kotlin", ".kts": "kotlin", ".scala": "scala",
	".cs": "csharp", ".fs": "fsharp", ".fsx": "fsharp", ".vb": "vb",
	".swift": "swift", ".m": "objective-c", ".mm": "objective-cpp",
	".rb": "ruby", ".erb": "ruby",
	".php": "php", ".php3": "php", ".php4": "php", ".php5": "php", ".phtml": "php",
	".pl": "perl", ".pm": "perl",
	".lua": "lua", ".r": "r",
	".sh": "shell", ".bash": "shell", ".zsh": "shell", ".fish": "shell",
	".bat": "bat", ".cmd": "bat", ".ps1": "powershell",
	".sql": "sql", ".mysql": "mysql", ".pgsql": "pgsql",
	".dockerfile": "dockerfile",
	".graphql": "graphql", ".gql": "graphql",
	".proto": "protobuf", ".dart": "dart",
	".clj": "clojure", ".cljs": "clojure", ".edn": "clojure",
	".ex": "elixir", ".exs": "elixir",
	".erl": "erlang", ".hrl": "erlang",
	".hs": "haskell", ".ml": "ocaml", ".mli": "ocaml",
}

// languageByBasename maps exact lowercase basenames without regard to extension.
var languageByBasename = map[string]string{
	".gitignore":    "ignore",
	".dockerignore": "ignore",
	".editorconfig": "ini",
	".prettierrc":   "ini",
	".eslintrc":     "ini",
	"cargo.toml":    "toml",
	"pyproject.toml": "toml",
}

// shebangLanguages maps a substring found on a script's shebang line to a
// language identifier. Checked in order; first match wins.
var shebangLanguages = []struct {
	substr string
	lang   string
}{
	{"python", "python"},
	{"node", "javascript"},
	{"javascript", "javascript"},
	{"bash", "shell"},
	{"sh", "shell"},
	{"ruby", "ruby"},
	{"perl", "perl"},
}

// Result is the outcome of classifying a file's content.
type Result struct {
	Binary   bool
	Language string
}

// Classify reads up to binarySniffSize bytes from path and determines
// whether it is binary, and if not, its best-guess language.
func Classify(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, binarySniffSize)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// Empty file: not binary, language from name alone.
		return Result{Binary: false, Language: LanguageForName(path)}, nil
	}
	sample := buf[:n]

	if isBinarySample(sample) {
		return Result{Binary: true, Language: ""}, nil
	}

	lang := LanguageForName(path)
	if lang == "plaintext" {
		if shebangLang, ok := detectShebang(sample); ok {
			lang = shebangLang
		}
	}
	return Result{Binary: false, Language: lang}, nil
}

// isBinarySample reports whether sample looks like binary content: a NUL
// byte anywhere, or a sequence that fails to decode as UTF-8.
func isBinarySample(sample []byte) bool {
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	return !utf8.Valid(sample)
}

// LanguageForName returns the best-guess language for a path based solely
// on its extension or basename, without inspecting file content. Returns
// "plaintext" when nothing matches.
func LanguageForName(path string) string {
	base := strings.ToLower(baseName(path))

	if lang, ok := languageByBasename[base]; ok {
		return lang
	}
	if base == "dockerfile" || strings.HasPrefix(base, "dockerfile.") {
		return "dockerfile"
	}
	if base == "makefile" || strings.HasPrefix(base, "makefile.") {
		return "makefile"
	}
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return "properties"
	}

	ext := extOf(base)
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}

	return "plaintext"
}

func detectShebang(sample []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(sample))
	if !scanner.Scan() {
		return "", false
	}
	line := scanner.Text()
	if !strings.HasPrefix(line, "#!") {
		return "", false
	}
	lower := strings.ToLower(line)
	for _, sl := range shebangLanguages {
		if strings.Contains(lower, sl.substr) {
			return sl.lang, true
		}
	}
	return "", false
}

func baseName(path string) string {
	i := strings.LastIndexAny(path, "/\\")
	if i < 0 {
		return path
	}
	return path[i+1:]
}

func extOf(base string) string {
	i := strings.LastIndex(base, ".")
	if i <= 0 {
		return ""
	}
	return base[i:]
}
