package binding

import (
	"regexp"
	"strings"
)

// reserved holds the binding parameter keywords that are never a property path.
var reserved = map[string]bool{
	"mode":               true,
	"converter":          true,
	"relativesource":     true,
	"elementname":        true,
	"source":             true,
	"xpath":              true,
	"stringformat":       true,
	"converterparameter": true,
	"bindinggroupname":   true,
	"binding":            true,
	"multibinding":       true,
	"prioritybinding":    true,
}

var (
	// pathExp matches an explicit Path= segment. The value runs until the next comma.
	// The leading group keeps XPath= from matching.
	pathExp = regexp.MustCompile(`(?:^|[\s,])Path\s*=\s*([^,]*)`)

	// startExp matches the opening of a {Binding ...} markup extension.
	startExp = regexp.MustCompile(`\{\s*Binding(?:\s|\})`)
)

// Expression is a single {Binding ...} occurrence.
type Expression struct {
	// Raw is the matched markup text.
	Raw string
	// Body is the text between "Binding" and the closing brace.
	Body string
}

// ExtractPath returns the property path bound by a binding body, or false when no
// path can be determined. Keyword filtering is case-insensitive, the returned
// path keeps its original casing and any indexers verbatim.
func ExtractPath(body string) (string, bool) {
	if groups := pathExp.FindStringSubmatch(body); groups != nil {
		path := strings.TrimSpace(groups[1])
		return path, path != ""
	}

	candidate := body
	if idx := strings.Index(candidate, ","); idx >= 0 {
		candidate = candidate[:idx]
	}
	candidate = strings.TrimSpace(candidate)

	if candidate == "" || strings.Contains(candidate, "=") {
		return "", false
	}
	if reserved[strings.ToLower(candidate)] {
		return "", false
	}

	return candidate, true
}

// FindExpressions returns every {Binding ...} expression in text, in order.
// Nested markup extensions inside the body are kept intact; an unterminated
// expression runs to the end of text.
func FindExpressions(text string) []Expression {
	var expressions []Expression

	offset := 0
	for offset < len(text) {
		loc := startExp.FindStringIndex(text[offset:])
		if loc == nil {
			break
		}
		start := offset + loc[0]
		bodyStart := offset + loc[1] - 1

		end := closingBrace(text, start)
		body := ""
		if bodyStart < end {
			body = text[bodyStart:end]
		}

		raw := text[start:]
		if end < len(text) {
			raw = text[start : end+1]
		}

		expressions = append(expressions, Expression{
			Raw:  raw,
			Body: strings.TrimSpace(body),
		})

		offset = end + 1
	}

	return expressions
}

// closingBrace returns the index of the brace that closes the one at start, or
// len(text) if it is never closed.
func closingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return len(text)
}
