package godss

import "fmt"

// MemoryEngine keeps datasets in process memory. It exists for tests and
// ephemeral scratch work; data does not survive the engine.
type MemoryEngine struct {
	src  string
	open bool
	data map[DatasetPath]*RegularTimeseries
}

// NewMemoryEngine creates an in-memory engine. The src string is carried as
// catalog provenance only.
func NewMemoryEngine(src string) *MemoryEngine {
	return &MemoryEngine{
		src:  src,
		data: make(map[DatasetPath]*RegularTimeseries),
	}
}

func (e *MemoryEngine) Open() error {
	if e.open {
		return fmt.Errorf("engine already open: %s", e.src)
	}
	e.open = true
	return nil
}

func (e *MemoryEngine) Close() error {
	e.open = false
	return nil
}

func (e *MemoryEngine) IsOpen() bool { return e.open }

func (e *MemoryEngine) ReadCatalog() (*Catalog, error) {
	if !e.open {
		return nil, ErrClosed
	}
	paths := make([]DatasetPath, 0, len(e.data))
	for p := range e.data {
		paths = append(paths, p)
	}
	return NewCatalog(e.src, paths...)
}

func (e *MemoryEngine) ReadRTS(path DatasetPath) (*RegularTimeseries, error) {
	if !e.open {
		return nil, ErrClosed
	}
	if rts, ok := e.data[path]; ok {
		out := *rts
		return &out, nil
	}
	// A date-wildcard path addresses a logical series stored as one or more
	// date-bounded chunks.
	if path.D == Wildcard {
		var chunks []*RegularTimeseries
		for p, rts := range e.data {
			if p.DropDate() == path {
				chunks = append(chunks, rts)
			}
		}
		if len(chunks) > 0 {
			return mergeChunks(path, chunks)
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrDatasetNotFound, path, e.src)
}

func (e *MemoryEngine) WriteRTS(path DatasetPath, rts *RegularTimeseries) error {
	if !e.open {
		return ErrClosed
	}
	if len(rts.Values) != len(rts.Dates) {
		return fmt.Errorf("values and dates must match length: %d != %d",
			len(rts.Values), len(rts.Dates))
	}
	if _, ok := e.data[path]; ok {
		return fmt.Errorf("%w: %s in %s", ErrDatasetExists, path, e.src)
	}
	stored := *rts
	stored.Path = path
	e.data[path] = &stored
	return nil
}

func (e *MemoryEngine) Exists(path DatasetPath) (bool, error) {
	if !e.open {
		return false, ErrClosed
	}
	_, ok := e.data[path]
	return ok, nil
}
