package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// legacyName covers the object shapes older clients stored in the names column
type legacyName struct {
	Name      string `json:"name"`
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (n legacyName) String() string {
	switch {
	case strings.TrimSpace(n.FullName) != "":
		return n.FullName
	case strings.TrimSpace(n.Name) != "":
		return n.Name
	default:
		return n.FirstName + " " + n.LastName
	}
}

// ParseNames turns any historical representation of the names field into an ordered list.
//
// Accepted inputs are a JSON array of strings, a JSON array of name objects
// (name, fullName or firstName/lastName), a JSON string, and a plain comma-separated string.
// Blank entries are dropped and inner whitespace is collapsed.
func ParseNames(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			names := make([]string, 0, len(items))
			for _, item := range items {
				var s string
				if err := json.Unmarshal(item, &s); err == nil {
					names = append(names, s)
					continue
				}
				var obj legacyName
				if err := json.Unmarshal(item, &obj); err == nil {
					names = append(names, obj.String())
				}
			}
			return CleanNames(names)
		}
	case '"':
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return ParseNames(s)
		}
	}

	return CleanNames(strings.Split(raw, ","))
}

// CleanNames trims every name, collapses inner whitespace and drops blanks, keeping order
func CleanNames(names []string) []string {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.Join(strings.Fields(name), " ")
		if name != "" {
			cleaned = append(cleaned, name)
		}
	}
	return cleaned
}

// EncodeNames serializes names into the canonical stored form, a JSON array of strings
func EncodeNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(names); err != nil {
		return "", fmt.Errorf("failed to encode names: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
