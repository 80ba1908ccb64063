package projector

import "strings"

// ExtensionSet is an allow-list of lowercase, dot-prefixed extensions.
// A nil set allows every file.
type ExtensionSet map[string]struct{}

// NormalizeExtension lowercases ext and makes sure it has exactly one leading dot.
func NormalizeExtension(ext string) string {
	return "." + strings.ToLower(strings.TrimLeft(ext, "."))
}

// NewExtensionSet builds an allow-list from user-supplied extensions.
// It returns nil when no non-empty extension is given.
func NewExtensionSet(exts ...string) ExtensionSet {
	var set ExtensionSet
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if set == nil {
			set = make(ExtensionSet)
		}
		set[NormalizeExtension(ext)] = struct{}{}
	}
	return set
}

// Allows reports whether a file called name passes the allow-list.
func (s ExtensionSet) Allows(name string) bool {
	if s == nil {
		return true
	}
	_, ok := s[extension(name)]
	return ok
}

// extension returns the lowercase extension of name, dot included.
// Leading dots do not start an extension, so ".bashrc" has none.
func extension(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	i := strings.LastIndexByte(trimmed, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(trimmed[i:])
}
