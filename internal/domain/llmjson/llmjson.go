// Package llmjson recovers structured data from model responses that
// wrap a JSON array in surrounding prose or markdown fences.
package llmjson

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ParseError reports that no parseable JSON array could be recovered
// from a response.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llmjson: %s in response: %q", e.Reason, truncate(e.Raw, 200))
}

// ExtractArray returns the first balanced top-level JSON array
// substring in s. String literals are skipped, so brackets inside
// quoted text do not affect balancing.
func ExtractArray(s string) (string, error) {
	start := -1
	depth := 0
	inStr := false
	esc := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case esc:
			esc = false
		case inStr:
			switch c {
			case '\\':
				esc = true
			case '"':
				inStr = false
			}
		default:
			switch c {
			case '"':
				if start >= 0 {
					inStr = true
				}
			case '[':
				if start < 0 {
					start = i
				}
				depth++
			case ']':
				if start < 0 {
					continue
				}
				depth--
				if depth == 0 {
					sub := s[start : i+1]
					if !gjson.Valid(sub) {
						return "", &ParseError{Reason: "extracted array is not valid JSON", Raw: sub}
					}
					return sub, nil
				}
			}
		}
	}
	if start < 0 {
		return "", &ParseError{Reason: "no array start found", Raw: s}
	}
	return "", &ParseError{Reason: "unbalanced array", Raw: s}
}

// DecodeArray extracts the first balanced array in s and unmarshals
// it into v, which must be a pointer to a slice.
func DecodeArray(s string, v any) error {
	sub, err := ExtractArray(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return &ParseError{Reason: err.Error(), Raw: sub}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
