// Package colindex maps simplified column names typed by an operator to the
// canonical "<device>_<column>" names assigned during ingestion.
package colindex

import (
	"strings"
)

// MatchMode selects how a requested name is matched against index keys
type MatchMode string

const (
	// MatchSubstring returns the first key, in insertion order, that contains
	// the normalized request.
	MatchSubstring MatchMode = "substring"
	// MatchExactFirst prefers a key equal to the normalized request and falls
	// back to MatchSubstring.
	MatchExactFirst MatchMode = "exact-first"
)

// ParseMatchMode accepts the config spelling of a match mode
func ParseMatchMode(s string) (MatchMode, bool) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSubstring:
		return MatchSubstring, true
	case MatchExactFirst:
		return MatchExactFirst, true
	}
	return "", false
}

// Normalize lowercases s and drops every character that is not a-z
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Index is an insertion-ordered map from normalized key to canonical name.
// Re-registering a key replaces its canonical name but keeps its position.
type Index struct {
	keys  []string
	names map[string]string
	mode  MatchMode
}

// New creates an empty index using substring matching
func New() *Index {
	return &Index{names: make(map[string]string), mode: MatchSubstring}
}

// WithMode sets the match mode and returns the index
func (x *Index) WithMode(mode MatchMode) *Index {
	x.mode = mode
	return x
}

// Mode returns the active match mode
func (x *Index) Mode() MatchMode { return x.mode }

// Register records canonical under its normalized form
func (x *Index) Register(canonical string) {
	key := Normalize(canonical)
	if _, ok := x.names[key]; !ok {
		x.keys = append(x.keys, key)
	}
	x.names[key] = canonical
}

// Len returns the number of keys
func (x *Index) Len() int { return len(x.keys) }

// Resolve maps a requested short name to a canonical column name
func (x *Index) Resolve(requested string) (string, bool) {
	norm := Normalize(requested)
	if x.mode == MatchExactFirst {
		if name, ok := x.names[norm]; ok {
			return name, true
		}
	}
	for _, k := range x.keys {
		if strings.Contains(k, norm) {
			return x.names[k], true
		}
	}
	return "", false
}

// ResolveAll resolves each requested name in order. Hits are deduplicated;
// misses are returned separately so the caller can warn about them.
func (x *Index) ResolveAll(requested []string) (resolved []string, missing []string) {
	seen := make(map[string]bool, len(requested))
	for _, r := range requested {
		name, ok := x.Resolve(r)
		if !ok {
			missing = append(missing, r)
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		resolved = append(resolved, name)
	}
	return resolved, missing
}

// Original returns the first canonical name, in insertion order, contained
// in an output column name such as "A_temp_mean". Falls back to column.
func (x *Index) Original(column string) string {
	for _, k := range x.keys {
		if name := x.names[k]; strings.Contains(column, name) {
			return name
		}
	}
	return column
}
