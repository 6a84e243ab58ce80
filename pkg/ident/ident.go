// Package ident normalizes raw identifiers into the form a backend stores in
// its dictionary. Every name-based cache key passes through a Normalizer.
package ident

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalizer converts a raw identifier to its backend-appropriate form.
type Normalizer interface {
	Normalize(raw string) string
	Quote(name string) string
}

// Folding normalizes unquoted identifiers by case folding and keeps quoted
// identifiers verbatim (without the quotes).
type Folding struct {
	caser cases.Caser
	upper bool
}

// Upper folds unquoted identifiers to upper case (Oracle).
func Upper() *Folding {
	return &Folding{caser: cases.Upper(language.Und), upper: true}
}

// Lower folds unquoted identifiers to lower case (PostgreSQL, DuckDB).
func Lower() *Folding {
	return &Folding{caser: cases.Lower(language.Und)}
}

// Normalize folds raw unless it is a double-quoted identifier.
func (f *Folding) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return strings.ReplaceAll(raw[1:len(raw)-1], `""`, `"`)
	}
	return f.caser.String(raw)
}

// Quote renders a normalized name for DDL text. Names that would survive
// folding unchanged and contain only simple characters are left bare.
func (f *Folding) Quote(name string) string {
	if name == "" {
		return name
	}
	if f.caser.String(name) == name && isSimple(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isSimple(name string) bool {
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == '_' || r == '$' || r == '#':
			if i == 0 {
				return false
			}
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Verbatim returns names unchanged. Useful for backends that store identifiers
// exactly as written, and for tests.
type Verbatim struct{}

// Normalize trims surrounding whitespace only.
func (Verbatim) Normalize(raw string) string { return strings.TrimSpace(raw) }

// Quote returns the name unchanged.
func (Verbatim) Quote(name string) string { return name }

// Fold returns a case-insensitive comparison key for name.
func Fold(name string) string {
	return folder.String(name)
}

var folder = cases.Fold()
