package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// PackedEntry is one grandchild decoded from a packed list cell.
type PackedEntry struct {
	Name     string
	Position int
}

// DecodePackedList splits a cell such as "COL1:1,COL2:2" into entries.
// An entry without a position gets position 0 and blank entries are skipped.
func DecodePackedList(cell string) ([]PackedEntry, error) {
	var out []PackedEntry
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, pos, hasPos := strings.Cut(part, ":")
		entry := PackedEntry{Name: strings.TrimSpace(name)}
		if hasPos {
			n, err := strconv.Atoi(strings.TrimSpace(pos))
			if err != nil {
				return nil, fmt.Errorf("invalid position in packed entry %q: %w", part, err)
			}
			entry.Position = n
		}
		if entry.Name == "" {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
