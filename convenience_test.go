package godss

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// seedSQLite writes series into a fresh SQLite-backed DSS file and returns
// its path.
func seedSQLite(t *testing.T, series ...*RegularTimeseries) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "seed.dss")
	d, err := OpenDSS(src, DefaultConfig())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer d.Close()
	for _, rts := range series {
		if err := d.WriteRTS(rts.Path, rts); err != nil {
			t.Fatalf("seed write %s: %v", rts.Path, err)
		}
	}
	return src
}

func TestConvenienceReadCatalog(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	src := seedSQLite(t,
		newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1}),
		newTestRTS(t, "/CALSIM/MONTH_DAYS/DAY/01JAN2000/1MON/L2020A/", start, []float64{2}),
	)

	cat, err := ReadCatalog(src, DefaultConfig())
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", cat.Len())
	}
	if cat.Src != src {
		t.Errorf("expected src %q, got %q", src, cat.Src)
	}
}

func TestConvenienceReadRTS(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	rts := newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1, 2})
	src := seedSQLite(t, rts)

	got, err := ReadRTS(src, rts.Path, DefaultConfig())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !got.Equal(rts) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rts)
	}
}

func TestConvenienceReadMultipleRTS(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	src := seedSQLite(t,
		newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1}),
		newTestRTS(t, "/CALSIM/MONTH_DAYS/DAY/01JAN2000/1MON/L2020A/", start, []float64{2}),
		newTestRTS(t, "/OTHER/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{3}),
	)

	series, err := ReadMultipleRTS(src, MustParsePath("/CALSIM/.*/.*/.*/.*/.*/"), DefaultConfig())
	if err != nil {
		t.Fatalf("read multiple: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	if series[0].Path.B != "MONTH_DAYS" || series[1].Path.B != "PPT_OROV" {
		t.Errorf("expected sorted order, got %v then %v", series[0].Path, series[1].Path)
	}
}

func TestCopyRTS(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	rts := newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1, 2})
	src := seedSQLite(t, rts)
	dst := filepath.Join(t.TempDir(), "dst.dss")

	dstPath := MustParsePath("/COPY/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/")
	if err := CopyRTS(src, dst, rts.Path, dstPath, DefaultConfig()); err != nil {
		t.Fatalf("copy: %v", err)
	}

	got, err := ReadRTS(dst, dstPath, DefaultConfig())
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if got.Values[1] != 2 {
		t.Errorf("copied data mismatch: %v", got.Values)
	}

	err = CopyRTS(src, dst, MustParsePath("/CALSIM/.*/PRECIP/01JAN2000/1MON/L2020A/"), dstPath, DefaultConfig())
	if !errors.Is(err, ErrWildcard) {
		t.Errorf("wildcard copy: got %v, want ErrWildcard", err)
	}
}

func TestCopyMultipleRTS(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	one := newTestRTS(t, "/CALSIM/ONE/FLOW/01JAN2000/1MON/L2020A/", start, []float64{1})
	two := newTestRTS(t, "/CALSIM/TWO/FLOW/01JAN2000/1MON/L2020A/", start, []float64{2})
	src := seedSQLite(t, one, two)
	dst := filepath.Join(t.TempDir(), "dst.dss")

	pairs := []PathPair{
		{Src: one.Path, Dst: MustParsePath("/COPY/ONE/FLOW/01JAN2000/1MON/L2020A/")},
		{Src: two.Path, Dst: MustParsePath("/COPY/TWO/FLOW/01JAN2000/1MON/L2020A/")},
	}
	if err := CopyMultipleRTS(src, dst, pairs, DefaultConfig()); err != nil {
		t.Fatalf("copy multiple: %v", err)
	}

	cat, err := ReadCatalog(dst, DefaultConfig())
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("expected 2 copied datasets, got %d", cat.Len())
	}
}

func TestExportRTSConvenience(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	src := seedSQLite(t,
		newTestRTS(t, "/CALSIM/PPT_OROV/PRECIP/01JAN2000/1MON/L2020A/", start, []float64{1}),
	)

	store := NewMemoryStore()
	keys, err := ExportRTS(context.Background(), src, WildcardPath(), store, "", DefaultConfig())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(keys) != 1 || keys[0] != "rts_1MON.csv" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	ok, err := store.Exists(context.Background(), keys[0])
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Errorf("expected export object in store")
	}
}
