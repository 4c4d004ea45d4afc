package query

import (
	"regexp"
	"sort"
	"strings"
)

var (
	markedTokenRE = regexp.MustCompile(`(?s)<mark>(.*?)</mark>`)
	markTagRE     = regexp.MustCompile(`</?mark>`)
	wordRE        = regexp.MustCompile(`[A-Za-z0-9_]+`)
)

const maxMatchesPerFile = 10

// reconstructMatches builds up to maxMatchesPerFile line-anchored Matches
// from the backend's highlight fragments, falling back to pure
// content/query inspection when no fragment pins a line. Matches are
// deduplicated by line number.
func reconstructMatches(content, queryText string, fragments []string, contextLines int, highlight bool) []Match {
	if content == "" {
		return nil
	}

	var matches []Match
	seen := make(map[int]bool)

	for _, frag := range fragments {
		if len(matches) >= maxMatchesPerFile {
			break
		}
		lineNo, before, after, hlLine, ok := computeLineContext(content, frag, queryText, contextLines, highlight)
		if !ok || seen[lineNo] {
			continue
		}
		seen[lineNo] = true
		matches = append(matches, Match{Line: lineNo, Highlight: hlLine, Before: before, After: after})
	}

	if len(matches) == 0 {
		if lineNo, before, after, hlLine, ok := computeLineContext(content, "", queryText, contextLines, highlight); ok {
			matches = append(matches, Match{Line: lineNo, Highlight: hlLine, Before: before, After: after})
		}
	}

	return matches
}

// computeLineContext finds the best single line to anchor a match on,
// trying four strategies in order: highlighted-token coverage, full-query
// substring, query-token coverage, and first-token location. Returns ok =
// false when content is empty or none of the strategies locate a line.
func computeLineContext(content, fragment, queryText string, contextLines int, applyMarkup bool) (lineNo int, before, after []string, hlLine string, ok bool) {
	if content == "" {
		return 0, nil, nil, "", false
	}
	lines := strings.Split(content, "\n")

	if tokens := allMarkedTokens(fragment); len(tokens) > 0 {
		if idx, score := bestLineByTokenCoverage(lines, tokens); score > 0 {
			return buildMatch(lines, idx, tokens, contextLines, applyMarkup)
		}
	}

	qFull := strings.TrimSpace(queryText)
	if qFull != "" {
		if pos := indexFold(content, qFull); pos >= 0 {
			idx := strings.Count(content[:pos], "\n")
			if idx >= 0 && idx < len(lines) {
				return buildMatch(lines, idx, []string{qFull}, contextLines, applyMarkup)
			}
		}
	}

	if qTokens := queryTokens(queryText); len(qTokens) > 0 {
		if idx, score := bestLineByTokenCoverage(lines, qTokens); score > 0 {
			return buildMatch(lines, idx, qTokens, contextLines, applyMarkup)
		}
	}

	fragPlain := strings.TrimSpace(stripMarkTags(fragment))
	pos := -1
	if fragPlain != "" {
		pos = strings.Index(content, fragPlain)
	}
	tok := firstMarkedToken(fragment)
	if pos < 0 && tok != "" {
		pos = indexFold(content, tok)
	}
	if pos < 0 {
		if qtok := firstQueryToken(queryText); qtok != "" {
			tok = qtok
			pos = indexFold(content, qtok)
		}
	}
	if pos < 0 {
		return 0, nil, nil, "", false
	}

	idx := strings.Count(content[:pos], "\n")
	if idx < 0 || idx >= len(lines) {
		return 0, nil, nil, "", false
	}
	var tokens []string
	if tok != "" {
		tokens = []string{tok}
	}
	return buildMatch(lines, idx, tokens, contextLines, applyMarkup)
}

func buildMatch(lines []string, idx int, tokens []string, contextLines int, applyMarkup bool) (int, []string, []string, string, bool) {
	lineText := lines[idx]
	hl := lineText
	if applyMarkup {
		hl = markTokens(lineText, tokens)
	}
	if contextLines < 0 {
		contextLines = 0
	}
	start := idx - contextLines
	if start < 0 {
		start = 0
	}
	end := idx + 1 + contextLines
	if end > len(lines) {
		end = len(lines)
	}
	before := append([]string(nil), lines[start:idx]...)
	after := append([]string(nil), lines[idx+1:end]...)
	return idx + 1, before, after, hl, true
}

func bestLineByTokenCoverage(lines []string, tokens []string) (bestIdx, bestScore int) {
	lowered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			lowered = append(lowered, strings.ToLower(t))
		}
	}
	bestIdx, bestScore = -1, -1
	for i, line := range lines {
		l := strings.ToLower(line)
		score := 0
		for _, t := range lowered {
			if strings.Contains(l, t) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx, bestScore
}

func markTokens(line string, tokens []string) string {
	uniq := make(map[string]bool)
	for _, t := range tokens {
		if t != "" {
			uniq[strings.ToLower(t)] = true
		}
	}
	ordered := make([]string, 0, len(uniq))
	for t := range uniq {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	out := line
	for _, tok := range ordered {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(tok))
		if err != nil {
			continue
		}
		out = re.ReplaceAllStringFunc(out, func(m string) string { return "<mark>" + m + "</mark>" })
	}
	return out
}

func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

func stripMarkTags(s string) string {
	return markTagRE.ReplaceAllString(s, "")
}

func firstMarkedToken(s string) string {
	m := markedTokenRE.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func allMarkedTokens(s string) []string {
	matches := markedTokenRE.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func firstQueryToken(q string) string {
	return wordRE.FindString(q)
}

func queryTokens(q string) []string {
	return wordRE.FindAllString(q, -1)
}
