// Package jsonextract recovers a JSON value from free-form model output.
package jsonextract

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned by Into when the text holds no JSON value.
var ErrNoJSON = errors.New("jsonextract: no JSON value in text")

type Kind int

const (
	// Prose means no JSON value could be recovered.
	Prose Kind = iota
	Direct
	Fenced
	BraceSpan
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Fenced:
		return "fenced"
	case BraceSpan:
		return "brace_span"
	default:
		return "prose"
	}
}

type ParseResult struct {
	Kind  Kind
	Value any
	// Raw is the JSON text that decoded, or the trimmed input for Prose.
	Raw string
}

func (r ParseResult) OK() bool { return r.Kind != Prose }

// Parse tries, in order: the whole text, the first fenced code block, then
// the first balanced [...] or {...} span that decodes.
func Parse(text string) ParseResult {
	s := strings.TrimSpace(text)
	if s == "" {
		return ParseResult{Kind: Prose}
	}
	if v, ok := decode(s); ok {
		return ParseResult{Kind: Direct, Value: v, Raw: s}
	}
	if body, ok := fencedBlock(s); ok {
		if v, ok := decode(body); ok {
			return ParseResult{Kind: Fenced, Value: v, Raw: body}
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}
		end := matchingClose(s, i)
		if end < 0 {
			continue
		}
		span := s[i : end+1]
		if v, ok := decode(span); ok {
			return ParseResult{Kind: BraceSpan, Value: v, Raw: span}
		}
	}
	return ParseResult{Kind: Prose, Raw: s}
}

// Into parses text and decodes the recovered JSON into dst. Text without JSON
// yields Prose and ErrNoJSON.
func Into(text string, dst any) (Kind, error) {
	res := Parse(text)
	if !res.OK() {
		return Prose, ErrNoJSON
	}
	if err := json.Unmarshal([]byte(res.Raw), dst); err != nil {
		return res.Kind, err
	}
	return res.Kind, nil
}

func decode(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '[' && s[0] != '{') {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	// Skip the info string (```json).
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// matchingClose returns the index of the bracket closing s[open], skipping
// string literals, or -1.
func matchingClose(s string, open int) int {
	var stack []byte
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
