package convert

import "encoding/json"

// ParseResponse interprets a 2xx body from the conversion service.
//
// Only a JSON object whose "markdown" member is a non-empty string yields
// SourceParsed. Every other body (not JSON, JSON without the member, an empty
// or non-string member, a non-object value) falls back to the raw text.
func ParseResponse(body []byte) (markdown string, source Source) {
	if text, ok := markdownField(body); ok {
		return text, SourceParsed
	}
	return string(body), SourceRawFallback
}

func markdownField(body []byte) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return "", false
	}
	raw, ok := obj["markdown"]
	if !ok {
		return "", false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", false
	}
	return text, text != ""
}
