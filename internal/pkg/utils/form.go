package utils

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ParseStringList accepts a JSON array ("[\"a\",\"b\"]") or a comma-separated
// string ("a, b") and returns the trimmed, non-empty items.
func ParseStringList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return []string{}
	}
	var items []string
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			return compact(items)
		}
	}
	return compact(strings.Split(s, ","))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// ParseBool reads checkbox-style form values.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ParseIntLoose returns the leading integer of s, or 0.
func ParseIntLoose(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && s[end] == '-') {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// FlexString decodes a JSON string or number into its textual form.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// FlexBool decodes true/false or their string forms.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexBool(ParseBool(s))
		return nil
	}
	var v bool
	if bytes.Equal(b, []byte("null")) {
		*f = false
		return nil
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexBool(v)
	return nil
}

// FlexInt decodes a number or numeric string; unparsable text becomes 0.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = FlexInt(ParseIntLoose(string(s)))
	return nil
}

// StringList decodes a JSON array of strings, or a string holding a JSON
// array or comma-separated values.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = StringList{}
		return nil
	case len(b) > 0 && b[0] == '[':
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = StringList(compact(items))
		return nil
	default:
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = StringList(ParseStringList(s))
		return nil
	}
}
