package godss

import (
	"fmt"
	"slices"
)

// DatasetPathCollection is an unordered set of unique DatasetPath values.
// Iteration is always in the lexicographic path order, so enumeration is
// deterministic regardless of insertion order.
//
// The zero value is not usable; construct with NewDatasetPathCollection or
// ParsePaths.
type DatasetPathCollection struct {
	paths map[DatasetPath]struct{}
}

// NewDatasetPathCollection creates a collection holding the given paths.
// Duplicates collapse into one member.
func NewDatasetPathCollection(paths ...DatasetPath) *DatasetPathCollection {
	c := &DatasetPathCollection{paths: make(map[DatasetPath]struct{}, len(paths))}
	for _, p := range paths {
		c.paths[p] = struct{}{}
	}
	return c
}

// ParsePaths creates a collection from path strings.
func ParsePaths(strs ...string) (*DatasetPathCollection, error) {
	c := &DatasetPathCollection{paths: make(map[DatasetPath]struct{}, len(strs))}
	for _, s := range strs {
		p, err := ParsePath(s)
		if err != nil {
			return nil, err
		}
		c.paths[p] = struct{}{}
	}
	return c, nil
}

// Len returns the number of paths in the collection.
func (c *DatasetPathCollection) Len() int {
	return len(c.paths)
}

// Paths returns the members sorted in the lexicographic path order.
func (c *DatasetPathCollection) Paths() []DatasetPath {
	out := make([]DatasetPath, 0, len(c.paths))
	for p := range c.paths {
		out = append(out, p)
	}
	slices.SortFunc(out, DatasetPath.Compare)
	return out
}

// ContainsExact reports whether the exact path is a member.
func (c *DatasetPathCollection) ContainsExact(p DatasetPath) bool {
	_, ok := c.paths[p]
	return ok
}

// Contains reports whether any member matches the path, using the Matches
// relation rather than equality.
func (c *DatasetPathCollection) Contains(p DatasetPath) bool {
	if c.ContainsExact(p) {
		return true
	}
	for member := range c.paths {
		if member.Matches(p) {
			return true
		}
	}
	return false
}

// Equal reports whether two collections hold the same set of paths.
func (c *DatasetPathCollection) Equal(other *DatasetPathCollection) bool {
	if len(c.paths) != len(other.paths) {
		return false
	}
	for p := range c.paths {
		if _, ok := other.paths[p]; !ok {
			return false
		}
	}
	return true
}

// Union returns a new collection with members present in either collection.
func (c *DatasetPathCollection) Union(other *DatasetPathCollection) *DatasetPathCollection {
	out := NewDatasetPathCollection()
	for p := range c.paths {
		out.paths[p] = struct{}{}
	}
	for p := range other.paths {
		out.paths[p] = struct{}{}
	}
	return out
}

// Intersect returns a new collection with members present in both collections.
func (c *DatasetPathCollection) Intersect(other *DatasetPathCollection) *DatasetPathCollection {
	out := NewDatasetPathCollection()
	for p := range c.paths {
		if _, ok := other.paths[p]; ok {
			out.paths[p] = struct{}{}
		}
	}
	return out
}

// Difference returns a new collection with members of c that are not members
// of other.
func (c *DatasetPathCollection) Difference(other *DatasetPathCollection) *DatasetPathCollection {
	out := NewDatasetPathCollection()
	for p := range c.paths {
		if _, ok := other.paths[p]; !ok {
			out.paths[p] = struct{}{}
		}
	}
	return out
}

// HasWildcardMembers reports whether any member carries a wildcard in a
// part other than D. Date-collapsed members do not count: a D-only wildcard
// is the domain's date-chunk convention, not a pattern.
func (c *DatasetPathCollection) HasWildcardMembers() bool {
	for p := range c.paths {
		if p.HasWildcard() {
			return true
		}
	}
	return false
}

// ResolveWildcard expands a pattern into the concrete members it matches.
//
// A pattern without any wildcard never scans the collection: the result is a
// singleton if the path is present by equality, otherwise empty.
//
// Matching is a structured per-part comparison, case-insensitive, with the
// pattern side always being the requested path. Resolving a wildcarded
// pattern against a collection whose members themselves carry non-date
// wildcards is ambiguous and fails with a WildcardError; use ResolveExact
// for the equality-only fallback.
func (c *DatasetPathCollection) ResolveWildcard(pattern DatasetPath) (*DatasetPathCollection, error) {
	if !pattern.HasAnyWildcard() {
		return c.ResolveExact(pattern), nil
	}
	if pattern.HasWildcard() && c.HasWildcardMembers() {
		return nil, newWildcardError(
			"collection contains wildcard paths, cannot resolve another pattern against it",
			pattern.String())
	}
	out := NewDatasetPathCollection()
	for member := range c.paths {
		if subsumes(pattern, member) {
			out.paths[member] = struct{}{}
		}
	}
	return out, nil
}

// ResolveExact is the equality-only resolution fallback: a singleton when
// the path is a member, otherwise an empty collection.
func (c *DatasetPathCollection) ResolveExact(p DatasetPath) *DatasetPathCollection {
	if c.ContainsExact(p) {
		return NewDatasetPathCollection(p)
	}
	return NewDatasetPathCollection()
}

// CollapseDates maps every member's D part to the wildcard marker and
// re-inserts into the set, collapsing date-chunked physical paths onto one
// logical identifier. Idempotent.
func (c *DatasetPathCollection) CollapseDates() *DatasetPathCollection {
	out := NewDatasetPathCollection()
	for p := range c.paths {
		out.paths[p.DropDate()] = struct{}{}
	}
	return out
}

// String returns a short description of the collection.
func (c *DatasetPathCollection) String() string {
	return fmt.Sprintf("DatasetPathCollection(%d paths)", len(c.paths))
}
