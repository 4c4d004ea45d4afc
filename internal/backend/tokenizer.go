package backend

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

// CodeTokenizerName is the name under which the code-aware tokenizer is
// registered with bleve's analyzer registry.
const CodeTokenizerName = "rewindex_code_tokenizer"

// CodeStopFilterName is the name of the small English stop-word filter.
const CodeStopFilterName = "rewindex_code_stop"

// CodeAnalyzerName is the custom analyzer combining the tokenizer, a
// lowercase filter, and the stop filter. It is used at both index and
// query time so "UserService" retrieves "user" and "service" individually
// yet also matches the exact compound, because the original token is
// preserved alongside its parts.
const CodeAnalyzerName = "rewindex_code_analyzer"

func init() {
	_ = registry.RegisterTokenizer(CodeTokenizerName, codeTokenizerConstructor)
	_ = registry.RegisterTokenFilter(CodeStopFilterName, codeStopFilterConstructor)
}

// codeStopWords is a tiny English stop set; it deliberately excludes
// ordinary identifiers so as not to suppress legitimate code terms.
var codeStopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "if": {}, "then": {}, "else": {},
	"a": {}, "an": {}, "of": {}, "to": {}, "in": {}, "is": {},
}

var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// TokenizeCode splits text into code-aware tokens. For every identifier it
// emits both the lowercased split parts (camelCase/PascalCase/snake_case
// and letter/digit boundaries) and the lowercased original token, so exact
// compound matches and part matches both work against the same analyzer at
// query time.
func TokenizeCode(text string) []string {
	var tokens []string

	for _, word := range tokenRegex.FindAllString(text, -1) {
		parts := SplitCodeToken(word)
		lowerWord := strings.ToLower(word)

		if len(parts) > 1 {
			tokens = append(tokens, lowerWord)
		}
		for _, part := range parts {
			lower := strings.ToLower(part)
			if lower != "" {
				tokens = append(tokens, lower)
			}
		}
		if len(parts) == 0 && lowerWord != "" {
			tokens = append(tokens, lowerWord)
		}
	}

	return tokens
}

// SplitCodeToken splits snake_case first, then camelCase within each part.
func SplitCodeToken(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, SplitCamelCase(part)...)
			}
		}
		return result
	}
	return SplitCamelCase(token)
}

// SplitCamelCase splits camelCase and PascalCase identifiers, treating runs
// of uppercase letters as acronyms, and also splits where a run of digits
// starts or ends:
//   - "getUserById"     -> ["get", "User", "By", "Id"]
//   - "HTTPHandler"     -> ["HTTP", "Handler"]
//   - "parseHTTPRequest" -> ["parse", "HTTP", "Request"]
//   - "utf8Decode"      -> ["utf", "8", "Decode"]
func SplitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsDigit(r) != unicode.IsDigit(runes[i-1]) {
			if current.Len() > 0 {
				result = append(result, current.String())
				current.Reset()
			}
		} else if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

func codeTokenizerConstructor(_ map[string]any, _ *registry.Cache) (analysis.Tokenizer, error) {
	return &codeTokenizer{}, nil
}

type codeTokenizer struct{}

func (t *codeTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := TokenizeCode(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0
	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), token)
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}
	return result
}

func codeStopFilterConstructor(_ map[string]any, _ *registry.Cache) (analysis.TokenFilter, error) {
	return &codeStopFilter{stopWords: codeStopWords}, nil
}

type codeStopFilter struct {
	stopWords map[string]struct{}
}

func (f *codeStopFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	result := make(analysis.TokenStream, 0, len(input))
	for _, token := range input {
		term := strings.ToLower(string(token.Term))
		if _, isStop := f.stopWords[term]; !isStop {
			result = append(result, token)
		}
	}
	return result
}
