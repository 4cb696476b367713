package generate

import (
	"doc-tutor/internal/errs"
)

// extractJSONArray returns the first top-level JSON array substring of s.
// Model responses often wrap the array in prose or code fences, so the scan
// is bracket-depth based and string-aware rather than a full JSON parse.
func extractJSONArray(s string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if start == -1 {
			if c == '[' {
				start = i
				depth = 1
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
	}
	return "", errs.New(errs.KindParse, "response contains no complete JSON array")
}
