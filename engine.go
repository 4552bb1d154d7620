package godss

import (
	"fmt"
	"slices"
	"time"
)

// Engine is the narrow contract between the catalog/resolution core and a
// native DSS library. One implementation exists per backing library; the
// core never reaches past this interface into library specifics.
//
// Engines are blocking and synchronous. Every method runs to completion or
// returns an error; there are no retries, timeouts, or cancellation in this
// contract.
type Engine interface {
	// Open acquires the underlying resource. Opening an already open engine
	// is an error; reentrancy is handled by the DSS layer.
	Open() error

	// Close releases the underlying resource.
	Close() error

	// IsOpen reports whether the engine currently holds an open resource.
	IsOpen() bool

	// ReadCatalog enumerates every dataset path in the resource.
	ReadCatalog() (*Catalog, error)

	// ReadRTS reads the regular timeseries stored at a path. A path whose D
	// part is the bare wildcard marker addresses the whole logical series,
	// reassembled from its date-bounded chunks. Returns an error wrapping
	// ErrDatasetNotFound when absent.
	ReadRTS(path DatasetPath) (*RegularTimeseries, error)

	// WriteRTS stores a regular timeseries at a concrete path. Returns an
	// error wrapping ErrDatasetExists when the path already holds data;
	// datasets are never silently overwritten.
	WriteRTS(path DatasetPath, rts *RegularTimeseries) error

	// Exists reports whether a dataset is present at the exact path.
	Exists(path DatasetPath) (bool, error)
}

// Engine names accepted by Config.Engine and NewEngine.
const (
	// EngineSQLite stores datasets in a SQLite file. The default.
	EngineSQLite = "sqlite"
	// EngineMemory keeps datasets in process memory. Useful for tests.
	EngineMemory = "memory"
)

// DefaultEngine is the engine used when a Config does not name one.
const DefaultEngine = EngineSQLite

// Compile-time interface checks, one per backing implementation.
var (
	_ Engine = (*SQLiteEngine)(nil)
	_ Engine = (*MemoryEngine)(nil)
)

// NewEngine constructs the named engine for a resource. Engine selection is
// explicit, at construction time: there is no process-global mutable
// default.
func NewEngine(name, src string) (Engine, error) {
	switch name {
	case EngineSQLite:
		return NewSQLiteEngine(src), nil
	case EngineMemory:
		return NewMemoryEngine(src), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

// mergeChunks reassembles one logical series from its date-bounded chunks,
// concatenated in chronological order under the date-collapsed path. Chunk
// metadata is taken from the earliest chunk.
func mergeChunks(path DatasetPath, chunks []*RegularTimeseries) (*RegularTimeseries, error) {
	slices.SortFunc(chunks, func(l, r *RegularTimeseries) int {
		switch {
		case l.Len() == 0 || r.Len() == 0:
			return l.Len() - r.Len()
		default:
			return l.Dates[0].Compare(r.Dates[0])
		}
	})
	var values []float64
	var dates []time.Time
	for _, chunk := range chunks {
		values = append(values, chunk.Values...)
		dates = append(dates, chunk.Dates...)
	}
	first := chunks[0]
	return NewRegularTimeseries(path, values, dates, first.PeriodType, first.Units, first.Interval)
}
