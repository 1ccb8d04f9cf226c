package catalog

import (
	"fmt"
	"sort"
	"strings"

	version "github.com/hashicorp/go-version"
)

// SortOrder selects the ordering of a catalog listing.
type SortOrder string

const (
	SortByName    SortOrder = "name"
	SortNewest    SortOrder = "newest"
	SortByVersion SortOrder = "version"
)

// ParseSortOrder accepts name, newest or version; empty means name.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByName:
		return SortByName, nil
	case SortNewest:
		return SortNewest, nil
	case SortByVersion:
		return SortByVersion, nil
	default:
		return "", fmt.Errorf("%w: sort %q must be name, newest or version", ErrInvalidInput, s)
	}
}

// sortEntries orders entries in place. Name order is the store's order, so it
// is re-applied only to keep the result stable after filtering.
func sortEntries(entries []*SoftwareEntry, order SortOrder) {
	switch order {
	case SortNewest:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	case SortByVersion:
		parsed := make(map[int64]*version.Version, len(entries))
		for _, e := range entries {
			if v, err := version.NewVersion(e.Version); err == nil {
				parsed[e.ID] = v
			}
		}
		sort.SliceStable(entries, func(i, j int) bool {
			vi, vj := parsed[entries[i].ID], parsed[entries[j].ID]
			switch {
			case vi != nil && vj != nil:
				if !vi.Equal(vj) {
					return vi.GreaterThan(vj)
				}
			case vi != nil:
				return true
			case vj != nil:
				return false
			}
			return lessByName(entries[i], entries[j])
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool { return lessByName(entries[i], entries[j]) })
	}
}

func lessByName(a, b *SoftwareEntry) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
