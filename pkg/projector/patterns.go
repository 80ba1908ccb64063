// File: pkg/projector/patterns.go
package projector

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternSet is an ordered list of glob patterns matched against bare names.
// Supported syntax is `*`, `?`, `[seq]` and `[!seq]`. A `[` without a closing
// `]` matches itself. A nil set matches nothing.
type PatternSet struct {
	patterns []string
}

// NewPatternSet validates and compiles the given patterns into a new set.
func NewPatternSet(patterns ...string) (*PatternSet, error) {
	ps := &PatternSet{}
	if err := ps.Add(patterns...); err != nil {
		return nil, err
	}
	return ps, nil
}

// Add appends patterns to the set, preserving order. Empty patterns are skipped.
func (ps *PatternSet) Add(patterns ...string) error {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		glob := escapeBrackets(p)
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("invalid ignore pattern %q: %w", p, doublestar.ErrBadPattern)
		}
		ps.patterns = append(ps.patterns, glob)
	}
	return nil
}

// escapeBrackets rewrites character classes into doublestar syntax: a `[`
// that is never closed becomes a literal, and a `]` directly after the
// opening bracket (or its negation) is a member of the class.
func escapeBrackets(p string) string {
	if !strings.Contains(p, "[") {
		return p
	}

	var b strings.Builder
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' && i+1 < len(p) {
			b.WriteString(p[i : i+2])
			i++
			continue
		}
		if p[i] != '[' {
			b.WriteByte(p[i])
			continue
		}

		j := i + 1
		if j < len(p) && (p[j] == '!' || p[j] == '^') {
			j++
		}
		leading := j < len(p) && p[j] == ']'
		if leading {
			j++
		}
		end := classEnd(p, j)
		switch {
		case end < 0:
			b.WriteString(`\[`)
			continue
		case leading:
			b.WriteString(p[i : j-1])
			b.WriteString(`\]`)
		default:
			b.WriteString(p[i:j])
		}
		b.WriteString(p[j : end+1])
		i = end
	}
	return b.String()
}

// classEnd returns the index of the `]` closing a class whose members start
// at from, or -1.
func classEnd(p string, from int) int {
	for k := from; k < len(p); k++ {
		switch p[k] {
		case '\\':
			k++
		case ']':
			return k
		}
	}
	return -1
}

// AddFile reads patterns from an ignore file, one per line.
// Blank lines and lines starting with '#' are skipped.
func (ps *PatternSet) AddFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read ignore file: %w", err)
	}

	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ps.Add(line); err != nil {
			return fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
	}
	return nil
}

// Matches reports whether name matches any pattern in the set.
func (ps *PatternSet) Matches(name string) bool {
	_, ok := ps.MatchingPattern(name)
	return ok
}

// MatchingPattern returns the first pattern that matches name.
func (ps *PatternSet) MatchingPattern(name string) (string, bool) {
	if ps == nil {
		return "", false
	}
	for _, p := range ps.patterns {
		// Patterns were validated on Add, so the error is always nil.
		if ok, _ := doublestar.Match(p, name); ok {
			return p, true
		}
	}
	return "", false
}

// Patterns returns a copy of the patterns in insertion order.
func (ps *PatternSet) Patterns() []string {
	if ps == nil {
		return nil
	}
	return append([]string(nil), ps.patterns...)
}

// Len returns the number of patterns.
func (ps *PatternSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.patterns)
}
