package logic

import "strings"

// ExtractJSONObject pulls an embedded JSON object out of a natural-language
// response. Fenced ```json blocks win, then plain ``` fences, then the widest
// brace-delimited span, then the trimmed response itself.
func ExtractJSONObject(response string) string {
	if block, ok := fencedBlock(response); ok {
		return block
	}
	if start := strings.Index(response, "{"); start >= 0 {
		if end := strings.LastIndex(response, "}"); end > start {
			return response[start : end+1]
		}
	}
	return strings.TrimSpace(response)
}

// ExtractJSONArray pulls an embedded JSON array out of a natural-language
// response, with the same precedence as ExtractJSONObject.
func ExtractJSONArray(response string) string {
	if block, ok := fencedBlock(response); ok {
		return block
	}
	if start := strings.Index(response, "["); start >= 0 {
		if end := strings.LastIndex(response, "]"); end > start {
			return response[start : end+1]
		}
	}
	return strings.TrimSpace(response)
}

func fencedBlock(response string) (string, bool) {
	for _, fence := range []string{"```json", "```"} {
		if _, after, found := strings.Cut(response, fence); found {
			if block, _, closed := strings.Cut(after, "```"); closed {
				return strings.TrimSpace(block), true
			}
		}
	}
	return "", false
}
