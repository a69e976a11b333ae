package model

import "strings"

// Columns holds the raw cells of one source row in header order. Typed record
// fields are parsed from it, and scored tables are written back out from it so
// every original column survives in its original position.
type Columns struct {
	Header []string `json:"header"`
	Values []string `json:"values"`
}

// Get returns the raw cell for a column name. The second result is false when
// the column does not exist in this row's header.
func (c Columns) Get(name string) (string, bool) {
	for i, h := range c.Header {
		if h == name {
			if i < len(c.Values) {
				return c.Values[i], true
			}
			return "", true
		}
	}
	return "", false
}

// Optional returns the cell for a column name as an optional value.
// Missing columns and blank cells are both absent.
func (c Columns) Optional(name string) *string {
	v, _ := c.Get(name)
	return Optional(v)
}

// Map returns the row as a column-name keyed map.
func (c Columns) Map() map[string]string {
	m := make(map[string]string, len(c.Header))
	for i, h := range c.Header {
		if i < len(c.Values) {
			m[h] = c.Values[i]
		} else {
			m[h] = ""
		}
	}
	return m
}

// Optional turns a raw cell into an optional value: nil for blank cells.
func Optional(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Present reports whether an optional value is set and non-blank.
func Present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

// Deref returns the value of an optional string or "" when absent.
func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
