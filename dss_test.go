package godss

import (
	"errors"
	"testing"
	"time"
)

func memoryConfig() Config {
	cfg := DefaultConfig()
	cfg.Engine = EngineMemory
	return cfg
}

// openTestDSS builds an open in-memory handle pre-loaded with the given
// series, keyed by their own paths.
func openTestDSS(t *testing.T, series ...*RegularTimeseries) *DSS {
	t.Helper()
	d, err := OpenDSS("test.dss", memoryConfig())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	for _, rts := range series {
		if err := d.WriteRTS(rts.Path, rts); err != nil {
			t.Fatalf("seed write %s: %v", rts.Path, err)
		}
	}
	return d
}

func TestOpenCloseNesting(t *testing.T) {
	d, err := New("test.dss", memoryConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if d.IsOpen() {
		t.Fatalf("new handle must start closed")
	}

	if err := d.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := d.Open(); err != nil {
		t.Fatalf("nested open: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("inner close: %v", err)
	}
	if !d.IsOpen() {
		t.Fatalf("handle must stay open until the outermost close")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("outer close: %v", err)
	}
	if d.IsOpen() {
		t.Fatalf("handle must be closed after the outermost close")
	}

	// Closing a closed handle is a no-op, and reopening works.
	if err := d.Close(); err != nil {
		t.Fatalf("extra close: %v", err)
	}
	if err := d.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !d.IsOpen() {
		t.Fatalf("handle must be open after reopen")
	}
	d.Close()
}

func TestClosedHandleErrors(t *testing.T) {
	d, err := New("test.dss", memoryConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	path := MustParsePath("/A/B/C//1MON/F/")
	rts := newTestRTS(t, path.String(),
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), []float64{1})

	if _, err := d.Catalog(); !errors.Is(err, ErrClosed) {
		t.Errorf("Catalog on closed handle: got %v, want ErrClosed", err)
	}
	if _, err := d.ReadRTS(path); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadRTS on closed handle: got %v, want ErrClosed", err)
	}
	if err := d.WriteRTS(path, rts); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteRTS on closed handle: got %v, want ErrClosed", err)
	}
	for _, err := range d.ReadMultipleRTS(path, true) {
		if !errors.Is(err, ErrClosed) {
			t.Errorf("ReadMultipleRTS on closed handle: got %v, want ErrClosed", err)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	rts := newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/",
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), []float64{1, 2, 3})
	d := openTestDSS(t, rts)

	got, err := d.ReadRTS(rts.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !got.Equal(rts) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rts)
	}
}

func TestWriteNoOverwrite(t *testing.T) {
	rts := newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/",
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), []float64{1})
	d := openTestDSS(t, rts)

	if err := d.WriteRTS(rts.Path, rts); !errors.Is(err, ErrDatasetExists) {
		t.Fatalf("second write: got %v, want ErrDatasetExists", err)
	}
}

func TestWriteRejectsWildcardPath(t *testing.T) {
	rts := newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/",
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), []float64{1})
	d := openTestDSS(t)

	err := d.WriteRTS(MustParsePath("/CALSIM/.*/PRECIP//1MON/L2020A/"), rts)
	if !errors.Is(err, ErrWildcard) {
		t.Fatalf("wildcard write: got %v, want ErrWildcard", err)
	}

	// A date-only wildcard is a concrete destination.
	if err := d.WriteRTS(rts.Path, rts); err != nil {
		t.Fatalf("date-wildcard write: %v", err)
	}
}

func TestReadRTSNotFound(t *testing.T) {
	d := openTestDSS(t)
	_, err := d.ReadRTS(MustParsePath("/A/B/C/01JAN2000/1MON/F/"))
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Fatalf("read missing: got %v, want ErrDatasetNotFound", err)
	}
}

func TestReadRTSWildcardExpectsSingle(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	d := openTestDSS(t,
		newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1}),
		newTestRTS(t, "/CALSIM/MONTH_DAYS/DAY/01JAN2000/1MON/L2020A/", start, []float64{2}),
	)

	got, err := d.ReadRTS(MustParsePath("/CALSIM/PPT.*/.*//1MON/L2020A/"))
	if err != nil {
		t.Fatalf("single wildcard read: %v", err)
	}
	if got.Path.B != "PPT_OROV" {
		t.Errorf("resolved to wrong dataset: %v", got.Path)
	}

	_, err = d.ReadRTS(MustParsePath("/CALSIM/.*/.*//1MON/L2020A/"))
	var countErr *UnexpectedCountError
	if !errors.As(err, &countErr) {
		t.Fatalf("ambiguous wildcard read: got %v, want *UnexpectedCountError", err)
	}
	if countErr.Want != 1 || countErr.Got != 2 {
		t.Errorf("count error: want=%d got=%d", countErr.Want, countErr.Got)
	}
	if !errors.Is(err, ErrUnexpectedCount) {
		t.Errorf("count error must unwrap to ErrUnexpectedCount")
	}

	_, err = d.ReadRTS(MustParsePath("/NOPE/.*/.*//1MON/L2020A/"))
	if !errors.As(err, &countErr) || countErr.Got != 0 {
		t.Fatalf("zero-match wildcard read: got %v", err)
	}
}

func TestReadMultipleRTS(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	d := openTestDSS(t,
		newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1}),
		newTestRTS(t, "/CALSIM/MONTH_DAYS/DAY/01JAN2000/1MON/L2020A/", start, []float64{2}),
		newTestRTS(t, "/OTHER/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{3}),
	)

	seq := d.ReadMultipleRTS(MustParsePath("/CALSIM/.*/.*/.*/.*/.*/"), true)

	var got []*RegularTimeseries
	for rts, err := range seq {
		if err != nil {
			t.Fatalf("iterate: %v", err)
		}
		got = append(got, rts)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 series, got %d", len(got))
	}
	// Sorted path order: MONTH_DAYS before PPT_OROV.
	if got[0].Path.B != "MONTH_DAYS" || got[1].Path.B != "PPT_OROV" {
		t.Errorf("expected sorted order, got %v then %v", got[0].Path, got[1].Path)
	}

	// The sequence is restartable.
	n := 0
	for _, err := range seq {
		if err != nil {
			t.Fatalf("second iteration: %v", err)
		}
		n++
	}
	if n != 2 {
		t.Errorf("second iteration: expected 2 series, got %d", n)
	}

	// Early exit stops cleanly.
	n = 0
	for _, err := range seq {
		if err != nil {
			t.Fatalf("early exit iteration: %v", err)
		}
		n++
		break
	}
	if n != 1 {
		t.Errorf("early exit: expected 1 visit, got %d", n)
	}
}

func TestReadCollectionRTS(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	d := openTestDSS(t,
		newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1}),
		newTestRTS(t, "/CALSIM/MONTH_DAYS/DAY/01JAN2000/1MON/L2020A/", start, []float64{2}),
		newTestRTS(t, "/OTHER/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{3}),
	)

	want := mustParsePaths(t,
		"/CALSIM/MONTH_DAYS/DAY/.*/1MON/L2020A/",
		"/CALSIM/PPT_OROV/PRECIP/.*/1MON/L2020A/",
		"/OTHER/PPT_OROV/PRECIP/.*/1MON/L2020A/",
	)
	request := mustParsePaths(t,
		"/CALSIM/.*/.*/.*/.*/.*/",
		"/OTHER/PPT_OROV/PRECIP//1MON/L2020A/",
		// Overlaps the first member; the union must not read it twice.
		"/CALSIM/PPT.*/.*/.*/.*/.*/",
	)

	seen := NewDatasetPathCollection()
	for rts, err := range d.ReadCollectionRTS(request, true) {
		if err != nil {
			t.Fatalf("iterate: %v", err)
		}
		if seen.ContainsExact(rts.Path) {
			t.Fatalf("dataset read twice: %v", rts.Path)
		}
		seen = seen.Union(NewDatasetPathCollection(rts.Path))
	}
	if !seen.Equal(want) {
		t.Errorf("expected %v, got %v", want.Paths(), seen.Paths())
	}
}

func TestReadRTSReassemblesDateChunks(t *testing.T) {
	chunk1 := newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/",
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), []float64{1, 2})
	chunk2 := newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2001/1MON/L2020A/",
		time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC), []float64{3, 4})
	// Seed out of order; reassembly must come back chronological.
	d := openTestDSS(t, chunk2, chunk1)

	got, err := d.ReadRTS(MustParsePath("/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Len() != 4 {
		t.Fatalf("expected 4 samples across chunks, got %d", got.Len())
	}
	want := []float64{1, 2, 3, 4}
	for i, v := range got.Values {
		if v != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, v, want[i])
		}
	}
	if got.Path.D != Wildcard {
		t.Errorf("reassembled series must carry the collapsed path, got %v", got.Path)
	}
}

func TestCatalogCaching(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	first := newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP//1MON/L2020A/", start, []float64{1})
	d := openTestDSS(t, first)

	cat, err := d.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cat.Len())
	}

	// A write does not invalidate the cache on its own.
	second := newTestRTS(t, "/CALSIM/MONTH_DAYS/DAY//1MON/L2020A/", start, []float64{2})
	if err := d.WriteRTS(second.Path, second); err != nil {
		t.Fatalf("write: %v", err)
	}
	cat, err = d.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("cached catalog must be stale after write, got %d entries", cat.Len())
	}

	d.InvalidateCatalog()
	cat, err = d.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("invalidated catalog must re-read, got %d entries", cat.Len())
	}

	// ReadCatalog forces the re-read without an explicit invalidation.
	third := newTestRTS(t, "/CALSIM/THIRD/FLOW//1MON/L2020A/", start, []float64{3})
	if err := d.WriteRTS(third.Path, third); err != nil {
		t.Fatalf("write: %v", err)
	}
	cat, err = d.ReadCatalog(false)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if cat.Len() != 3 {
		t.Errorf("forced re-read must see the new dataset, got %d entries", cat.Len())
	}
}

func TestReadCatalogDropDate(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	d := openTestDSS(t,
		newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1}),
		newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2001/1MON/L2020A/", start, []float64{2}),
	)

	cat, err := d.ReadCatalog(true)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("expected date chunks collapsed to 1 entry, got %d", cat.Len())
	}
}

func TestResolveWildcardConcretePathSkipsCatalog(t *testing.T) {
	d := openTestDSS(t)
	// Nothing is stored; a concrete path still resolves to itself.
	p := MustParsePath("/A/B/C/01JAN2000/1MON/F/")
	got, err := d.ResolveWildcard(p, false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Len() != 1 || !got.ContainsExact(p) {
		t.Errorf("expected singleton %v, got %v", p, got.Paths())
	}
}
