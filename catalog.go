package godss

import "fmt"

// Catalog is the full set of dataset paths present in one DSS resource,
// together with the identifier of that resource. Catalogs are usually built
// by an Engine during DSS.ReadCatalog, not by hand.
//
// Catalog members are always concrete: construction rejects paths carrying
// wildcards in the A, B, C, E, or F parts. D-part wildcards are allowed so
// that date-collapsed catalogs remain valid.
type Catalog struct {
	*DatasetPathCollection

	// Src identifies the resource the catalog was read from.
	Src string
}

// NewCatalog creates a catalog from concrete paths.
func NewCatalog(src string, paths ...DatasetPath) (*Catalog, error) {
	for _, p := range paths {
		if p.HasWildcard() {
			return nil, newWildcardError("catalog cannot contain wildcard paths", p.String())
		}
	}
	return &Catalog{
		DatasetPathCollection: NewDatasetPathCollection(paths...),
		Src:                   src,
	}, nil
}

// ParseCatalog creates a catalog from the raw path strings returned by a
// backend enumeration.
func ParseCatalog(src string, strs ...string) (*Catalog, error) {
	paths := make([]DatasetPath, 0, len(strs))
	for _, s := range strs {
		p, err := ParsePath(s)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return NewCatalog(src, paths...)
}

// Find is an alias for ResolveWildcard.
func (c *Catalog) Find(pattern DatasetPath) (*DatasetPathCollection, error) {
	return c.ResolveWildcard(pattern)
}

// CollapseDates returns a catalog with every member's D part collapsed to
// the wildcard marker, preserving the source identifier.
func (c *Catalog) CollapseDates() *Catalog {
	return &Catalog{
		DatasetPathCollection: c.DatasetPathCollection.CollapseDates(),
		Src:                   c.Src,
	}
}

// String returns a short description of the catalog.
func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog(%s, %d paths)", c.Src, c.Len())
}
