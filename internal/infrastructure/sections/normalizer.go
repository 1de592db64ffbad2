package sections

import (
	"strings"
	"unicode"
)

const listSeparator = " "

// Normalize canonicalizes free text: lower-case, punctuation replaced by
// spaces, whitespace collapsed, known abbreviations expanded. Deterministic
// and side-effect free; empty input yields an empty string.
func (e *Extractor) Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	collapsed := strings.Join(strings.Fields(b.String()), " ")
	return e.expandAliases(collapsed)
}

// NormalizeList normalizes each item and joins them with the stable
// separator, dropping items that normalize to nothing.
func (e *Extractor) NormalizeList(items []string) string {
	var out []string
	for _, item := range items {
		if n := e.Normalize(item); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, listSeparator)
}

// expandAliases walks the token stream left to right, replacing the longest
// alias match at each position. Replacements are not rescanned, so repeated
// and adjacent occurrences of a key all expand in a single pass.
func (e *Extractor) expandAliases(text string) string {
	if text == "" || len(e.table.Aliases) == 0 {
		return text
	}
	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		window := e.maxAliasTokens
		if rest := len(tokens) - i; rest < window {
			window = rest
		}
		matched := false
		for n := window; n >= 1; n-- {
			key := strings.Join(tokens[i:i+n], " ")
			if expansion, ok := e.table.Aliases[key]; ok {
				out = append(out, expansion)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return strings.Join(out, " ")
}

// containsPhrase reports whether the normalized text contains the phrase on
// word boundaries.
func containsPhrase(normalized, phrase string) bool {
	if normalized == "" || phrase == "" {
		return false
	}
	return strings.Contains(" "+normalized+" ", " "+phrase+" ")
}
