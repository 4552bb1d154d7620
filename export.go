package godss

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"time"
)

// exportHeaderRows are the row labels keying each column of an export file.
// Together they form the 9-tuple identifying one series.
var exportHeaderRows = []string{"A", "B", "C", "D", "E", "F", "UNITS", "PERIOD_TYPE", "INTERVAL"}

// Exporter writes regular timeseries to an ObjectStore as plaintext tables
// and reads them back. Each distinct interval token gets one CSV object: a
// date-indexed table whose columns are keyed by the series' A-F parts,
// units, period type, and interval.
type Exporter struct {
	store  ObjectStore
	prefix string
}

// NewExporter creates an exporter over a store. The prefix is prepended to
// every object key.
func NewExporter(store ObjectStore, prefix string) *Exporter {
	return &Exporter{store: store, prefix: prefix}
}

func (ex *Exporter) key(interval string) string {
	return ex.prefix + "rts_" + interval + ".csv"
}

// Export drains the sequence and writes one CSV object per distinct
// interval. It returns the written object keys in sorted order. An error
// element in the sequence aborts the export; an empty sequence fails with
// ErrEmptyResult.
func (ex *Exporter) Export(ctx context.Context, seq iter.Seq2[*RegularTimeseries, error]) ([]string, error) {
	groups := make(map[string][]*RegularTimeseries)
	for rts, err := range seq {
		if err != nil {
			return nil, err
		}
		token := rts.Interval.String()
		groups[token] = append(groups[token], rts)
	}
	if len(groups) == 0 {
		return nil, ErrEmptyResult
	}

	var keys []string
	for token, group := range groups {
		data, err := renderExportTable(group)
		if err != nil {
			return nil, err
		}
		key := ex.key(token)
		if err := ex.store.Write(ctx, key, data); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// renderExportTable lays one interval group out as CSV: nine header rows
// keying each column, then one row per date in the union of all date
// arrays. Cells for dates a series does not cover are left blank.
func renderExportTable(group []*RegularTimeseries) ([]byte, error) {
	slices.SortFunc(group, func(l, r *RegularTimeseries) int {
		return l.Path.Compare(r.Path)
	})

	columns := make([]map[int64]float64, len(group))
	dateSet := make(map[int64]time.Time)
	for i, rts := range group {
		columns[i] = make(map[int64]float64, len(rts.Dates))
		for j, d := range rts.Dates {
			columns[i][d.UnixNano()] = rts.Values[j]
			dateSet[d.UnixNano()] = d
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for _, d := range dateSet {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, time.Time.Compare)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, label := range exportHeaderRows {
		row := make([]string, 0, len(group)+1)
		row = append(row, label)
		for _, rts := range group {
			row = append(row, exportHeaderValue(rts, label))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	for _, d := range dates {
		row := make([]string, 0, len(group)+1)
		row = append(row, d.Format(dateLayout))
		for _, col := range columns {
			if v, ok := col[d.UnixNano()]; ok {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportHeaderValue(rts *RegularTimeseries, label string) string {
	switch label {
	case "A":
		return rts.Path.A
	case "B":
		return rts.Path.B
	case "C":
		return rts.Path.C
	case "D":
		return rts.Path.D
	case "E":
		return rts.Path.E
	case "F":
		return rts.Path.F
	case "UNITS":
		return rts.Units
	case "PERIOD_TYPE":
		return rts.PeriodType
	case "INTERVAL":
		return rts.Interval.String()
	}
	return ""
}

// Import reads one export object back into series. Reconstruction is exact
// modulo date-part degeneration: the D part round-trips as the literal
// written into the header, not as the original per-chunk dates.
func (ex *Exporter) Import(ctx context.Context, key string) ([]*RegularTimeseries, error) {
	data, err := ex.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	return parseExportTable(data)
}

// ImportAll reads every export object under the exporter's prefix.
func (ex *Exporter) ImportAll(ctx context.Context) ([]*RegularTimeseries, error) {
	keys, err := ex.store.List(ctx, ex.prefix+"rts_")
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	var out []*RegularTimeseries
	for _, key := range keys {
		series, err := ex.Import(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, series...)
	}
	return out, nil
}

func parseExportTable(data []byte) ([]*RegularTimeseries, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse export table: %w", err)
	}
	if len(records) < len(exportHeaderRows) {
		return nil, fmt.Errorf("export table is truncated: %d rows", len(records))
	}
	header := make(map[string][]string, len(exportHeaderRows))
	for i, label := range exportHeaderRows {
		if records[i][0] != label {
			return nil, fmt.Errorf("export table header mismatch: want %s row, got %s", label, records[i][0])
		}
		header[label] = records[i][1:]
	}

	ncols := len(header["A"])
	dates := make([][]time.Time, ncols)
	values := make([][]float64, ncols)
	for _, row := range records[len(exportHeaderRows):] {
		d, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return nil, fmt.Errorf("cannot parse date %q: %w", row[0], err)
		}
		for i, cell := range row[1:] {
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot parse value %q: %w", cell, err)
			}
			dates[i] = append(dates[i], d)
			values[i] = append(values[i], v)
		}
	}

	out := make([]*RegularTimeseries, 0, ncols)
	for i := 0; i < ncols; i++ {
		path := NewDatasetPath(header["A"][i], header["B"][i], header["C"][i],
			header["D"][i], header["E"][i], header["F"][i])
		interval, err := ParseInterval(header["INTERVAL"][i])
		if err != nil {
			return nil, err
		}
		rts, err := NewRegularTimeseries(path, values[i], dates[i],
			header["PERIOD_TYPE"][i], header["UNITS"][i], interval)
		if err != nil {
			return nil, err
		}
		out = append(out, rts)
	}
	return out, nil
}
