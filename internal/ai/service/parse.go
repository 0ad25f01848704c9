package service

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparseable is returned when no JSON object can be recovered from a reply.
var ErrUnparseable = errors.New("could not parse AI response as JSON")

var (
	fencedObject = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*\\})\\s*```")
	bareObject   = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ParseResponse decodes a model reply into out. It tries the whole text,
// then the first fenced json block, then the outermost brace-delimited
// substring.
func ParseResponse(text string, out any) error {
	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), out); err == nil {
			return nil
		}
	}
	if m := fencedObject.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), out); err == nil {
			return nil
		}
	}
	if m := bareObject.FindString(text); m != "" {
		if err := json.Unmarshal([]byte(m), out); err == nil {
			return nil
		}
	}
	return ErrUnparseable
}

// looseInt accepts a JSON number, a numeric string or null. Anything else
// decodes to zero so one odd field does not discard the whole reply.
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = looseInt(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*n = looseInt(v)
			return nil
		}
	}
	*n = 0
	return nil
}

// looseString accepts a JSON string; other values decode to empty.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = looseString(v)
	return nil
}

// looseStrings accepts an array of strings. Non-array values decode to
// nil; non-string elements are skipped.
type looseStrings []string

func (l *looseStrings) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}
