package godss

import (
	"fmt"
	"iter"
	"log/slog"
)

// DSS is a handle on one DSS resource, wrapping an Engine with wildcard
// resolution and a cached catalog. It is the orchestration layer: a request
// path, possibly wildcarded, is turned into the concrete reads and writes it
// implies, in deterministic sorted order.
//
// A DSS handle is not safe for concurrent use. The open/close nesting
// counter in particular is unsynchronized; concurrent nested opens or closes
// on one handle are caller-side misuse. Callers needing concurrency must
// provision one handle per goroutine, against resources the native library
// permits to be shared.
type DSS struct {
	src    string
	engine Engine

	// opened counts nested Open calls; the engine physically closes only
	// when the outermost scope exits.
	opened int

	// catalog is populated lazily on first resolution and is never
	// auto-invalidated, not even by writes through this handle. Call
	// InvalidateCatalog after writing when later wildcard resolution must
	// see the new datasets.
	catalog *Catalog
}

// New creates a DSS handle for src using the engine the config selects. The
// handle starts closed.
func New(src string, cfg Config) (*DSS, error) {
	engine := cfg.Backend
	if engine == nil {
		name := cfg.Engine
		if name == "" {
			name = DefaultEngine
		}
		var err error
		engine, err = NewEngine(name, src)
		if err != nil {
			return nil, err
		}
	}
	return &DSS{src: src, engine: engine}, nil
}

// OpenDSS creates a handle with the given config and opens it.
func OpenDSS(src string, cfg Config) (*DSS, error) {
	d, err := New(src, cfg)
	if err != nil {
		return nil, err
	}
	if err := d.Open(); err != nil {
		return nil, err
	}
	return d, nil
}

// String identifies the handle by its source resource.
func (d *DSS) String() string { return fmt.Sprintf("DSS(%s)", d.src) }

// Src returns the resource identifier the handle was created for.
func (d *DSS) Src() string { return d.src }

// Open acquires the underlying resource. Open is reentrant: nested calls
// only increment a nesting counter, and the matching Close calls release
// the resource on the outermost exit.
func (d *DSS) Open() error {
	if d.opened <= 0 {
		slog.Debug("opening dss file", "src", d.src)
		if err := d.engine.Open(); err != nil {
			return err
		}
		d.opened = 0
	}
	d.opened++
	return nil
}

// Close exits one open scope. The engine closes only when the outermost
// scope exits; closing an already closed handle is a no-op.
func (d *DSS) Close() error {
	d.opened--
	if d.opened <= 0 {
		d.opened = 0
		if d.engine.IsOpen() {
			slog.Debug("closing dss file", "src", d.src)
			return d.engine.Close()
		}
	}
	return nil
}

// IsOpen reports whether the handle currently holds an open resource.
func (d *DSS) IsOpen() bool { return d.opened > 0 && d.engine.IsOpen() }

func (d *DSS) checkOpen() error {
	if !d.IsOpen() {
		return ErrClosed
	}
	return nil
}

// Catalog returns the cached catalog, reading it from the engine on first
// use.
func (d *DSS) Catalog() (*Catalog, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if d.catalog == nil {
		catalog, err := d.engine.ReadCatalog()
		if err != nil {
			return nil, err
		}
		slog.Debug("catalog read", "src", d.src, "size", catalog.Len())
		d.catalog = catalog
	}
	return d.catalog, nil
}

// ReadCatalog forces a catalog re-read, replacing the cache. With dropDate
// the returned catalog has every member's date part collapsed.
func (d *DSS) ReadCatalog(dropDate bool) (*Catalog, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	catalog, err := d.engine.ReadCatalog()
	if err != nil {
		return nil, err
	}
	d.catalog = catalog
	if dropDate {
		return catalog.CollapseDates(), nil
	}
	return catalog, nil
}

// InvalidateCatalog discards the cached catalog so the next resolution
// re-reads it. Required after writes when later wildcard resolution must
// see the new datasets; writes never invalidate the cache on their own.
func (d *DSS) InvalidateCatalog() {
	d.catalog = nil
}

// ResolveWildcard expands a wildcarded path against the cached catalog. A
// path with no wildcard in A, B, C, E, or F resolves to itself without
// consulting the catalog. With dropDate the resolved paths have their date
// parts collapsed.
func (d *DSS) ResolveWildcard(path DatasetPath, dropDate bool) (*DatasetPathCollection, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	var resolved *DatasetPathCollection
	if !path.HasWildcard() {
		resolved = NewDatasetPathCollection(path)
	} else {
		catalog, err := d.Catalog()
		if err != nil {
			return nil, err
		}
		resolved, err = catalog.ResolveWildcard(path)
		if err != nil {
			return nil, err
		}
		slog.Debug("resolved wildcard", "pattern", path.String(), "matches", resolved.Len())
	}
	if dropDate {
		resolved = resolved.CollapseDates()
	}
	return resolved, nil
}

// ReadRTS reads the single regular timeseries a path addresses. A concrete
// path reads directly. A wildcarded path is expanded first and must resolve
// to exactly one concrete path, otherwise an *UnexpectedCountError is
// returned; use ReadMultipleRTS when more than one dataset is wanted.
func (d *DSS) ReadRTS(path DatasetPath) (*RegularTimeseries, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if path.HasWildcard() {
		resolved, err := d.ResolveWildcard(path, true)
		if err != nil {
			return nil, err
		}
		paths := resolved.Paths()
		if len(paths) != 1 {
			return nil, &UnexpectedCountError{Path: path.String(), Want: 1, Got: len(paths)}
		}
		path = paths[0]
	}
	return d.engine.ReadRTS(path)
}

// ReadMultipleRTS reads every dataset a possibly wildcarded path expands to.
// The sequence is lazy: resolution happens when iteration starts, each
// element is one backend read, and elements arrive in sorted path order, so
// stopping early never triggers reads for unvisited paths. Ranging over the
// sequence again restarts it.
//
// With dropDate every resolved path's date part is collapsed first, so a
// logical series chunked across many date-bounded records is read once.
// A read failure is yielded as the error element and ends the sequence.
func (d *DSS) ReadMultipleRTS(path DatasetPath, dropDate bool) iter.Seq2[*RegularTimeseries, error] {
	return func(yield func(*RegularTimeseries, error) bool) {
		resolved, err := d.ResolveWildcard(path, dropDate)
		if err != nil {
			yield(nil, err)
			return
		}
		d.yieldReads(resolved, yield)
	}
}

// ReadCollectionRTS is ReadMultipleRTS over a collection: members carrying
// wildcards are each expanded and the expansions unioned before reading.
func (d *DSS) ReadCollectionRTS(paths *DatasetPathCollection, dropDate bool) iter.Seq2[*RegularTimeseries, error] {
	return func(yield func(*RegularTimeseries, error) bool) {
		if err := d.checkOpen(); err != nil {
			yield(nil, err)
			return
		}
		resolved := NewDatasetPathCollection()
		for _, p := range paths.Paths() {
			expansion, err := d.ResolveWildcard(p, dropDate)
			if err != nil {
				yield(nil, err)
				return
			}
			resolved = resolved.Union(expansion)
		}
		d.yieldReads(resolved, yield)
	}
}

func (d *DSS) yieldReads(paths *DatasetPathCollection, yield func(*RegularTimeseries, error) bool) {
	for _, p := range paths.Paths() {
		rts, err := d.engine.ReadRTS(p)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(rts, nil) {
			return
		}
	}
}

// WriteRTS stores a regular timeseries at a concrete destination path.
// Wildcarded destinations are rejected; a dataset already present at the
// exact path fails with ErrDatasetExists rather than being overwritten.
// The cached catalog is left as-is; see InvalidateCatalog.
func (d *DSS) WriteRTS(path DatasetPath, rts *RegularTimeseries) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if path.HasWildcard() {
		return newWildcardError("cannot write to path with non-date wildcard", path.String())
	}
	slog.Debug("writing regular timeseries", "path", path.String())
	return d.engine.WriteRTS(path, rts)
}
