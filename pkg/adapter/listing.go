package adapter

import (
	"strings"

	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Listing is one dictionary query in two variants: every row of a schema, or
// the rows matching one key (an object name for lookups, a parent name for
// per-parent child loads).
type Listing struct {
	// Select is the statement up to and including the schema filter.
	Select string
	// Key is the column compared by the filtered variant.
	Key     string
	GroupBy string
	OrderBy string
}

// All renders the unfiltered request.
func (l Listing) All(args ...any) query.Request {
	return query.NewRequest(l.render(""), args...)
}

// Filtered renders the request restricted to Key = placeholder.
func (l Listing) Filtered(placeholder string, args ...any) query.Request {
	return query.NewRequest(l.render("\n  AND "+l.Key+" = "+placeholder), args...)
}

// FilteredFold renders the request restricted to a case-insensitive key match.
func (l Listing) FilteredFold(placeholder string, args ...any) query.Request {
	return query.NewRequest(l.render("\n  AND lower("+l.Key+") = lower("+placeholder+")"), args...)
}

func (l Listing) render(filter string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(l.Select))
	b.WriteString(filter)
	if l.GroupBy != "" {
		b.WriteString("\nGROUP BY ")
		b.WriteString(l.GroupBy)
	}
	if l.OrderBy != "" {
		b.WriteString("\nORDER BY ")
		b.WriteString(l.OrderBy)
	}
	return b.String()
}
