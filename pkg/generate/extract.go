package generate

import "strings"

// ExtractCode strips markdown fences from model output.
// A fence tagged with lang wins over an untagged one; text without fences
// is returned trimmed.
func ExtractCode(s, lang string) string {
	if lang != "" {
		if body, ok := fenced(s, "```"+lang); ok {
			return body
		}
	}
	if body, ok := fenced(s, "```"); ok {
		return body
	}
	return strings.TrimSpace(s)
}

func fenced(s, open string) (string, bool) {
	i := strings.Index(s, open)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(open):]

	// skip any language tag on the opening line
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		return "", false
	}

	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest), true
}
