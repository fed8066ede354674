package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexNumber accepts JSON numbers and numeric strings such as "85" or "85%"
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexNumber(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*f = flexNumber(parsed)
	return nil
}

func (f flexNumber) Int() int {
	return int(math.Round(float64(f)))
}

// flexText accepts a JSON string, number or list of strings
type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = flexText(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*t = flexText(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*t = flexText(strings.Join(list, ", "))
	return nil
}

// stripCodeFence removes a surrounding markdown code fence such as ```json ... ```
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if newline := strings.IndexByte(text, '\n'); newline >= 0 {
		text = text[newline+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractJSON returns the JSON document embedded in a model answer
func extractJSON(text string) string {
	text = stripCodeFence(text)
	if text == "" || text[0] == '{' || text[0] == '[' {
		return text
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return text
	}
	return text[start : end+1]
}

// decodeGenerated unmarshals a model answer into v
func decodeGenerated(text string, v interface{}) error {
	doc := extractJSON(text)
	if doc == "" {
		return fmt.Errorf("empty response")
	}
	return json.Unmarshal([]byte(doc), v)
}

// decodeGeneratedList decodes either a bare JSON array or an object wrapping the array
// under one of wrapperKeys.
func decodeGeneratedList(text string, v interface{}, wrapperKeys ...string) error {
	doc := extractJSON(text)
	if doc == "" {
		return fmt.Errorf("empty response")
	}

	if doc[0] == '[' {
		return json.Unmarshal([]byte(doc), v)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &wrapper); err != nil {
		return err
	}
	for _, key := range wrapperKeys {
		if raw, ok := wrapper[key]; ok {
			return json.Unmarshal(raw, v)
		}
	}
	return fmt.Errorf("response has none of the keys %v", wrapperKeys)
}

func nonEmptyStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
