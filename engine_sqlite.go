package godss

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"

	// SQLite driver using pure Go implementation
	_ "modernc.org/sqlite"
)

// SQLiteEngine stores DSS datasets in a SQLite file. The catalog lives in
// the table schema and sample data is held as snappy-compressed JSON blobs,
// so files remain inspectable with standard SQLite tools.
type SQLiteEngine struct {
	src string
	db  *sql.DB
}

// NewSQLiteEngine creates an engine for the SQLite file at src. The file is
// not touched until Open.
func NewSQLiteEngine(src string) *SQLiteEngine {
	return &SQLiteEngine{src: src}
}

func (e *SQLiteEngine) Open() error {
	if e.db != nil {
		return fmt.Errorf("engine already open: %s", e.src)
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", e.src)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return err
	}
	e.db = db
	return nil
}

func initSQLiteSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS datasets (
			path TEXT PRIMARY KEY,
			a TEXT NOT NULL,
			b TEXT NOT NULL,
			c TEXT NOT NULL,
			d TEXT NOT NULL,
			e TEXT NOT NULL,
			f TEXT NOT NULL,
			units TEXT NOT NULL,
			period_type TEXT NOT NULL,
			interval TEXT NOT NULL,
			payload BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_datasets_b ON datasets(b);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (e *SQLiteEngine) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

func (e *SQLiteEngine) IsOpen() bool { return e.db != nil }

func (e *SQLiteEngine) ReadCatalog() (*Catalog, error) {
	if e.db == nil {
		return nil, ErrClosed
	}
	rows, err := e.db.Query(`SELECT path FROM datasets ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate datasets: %w", err)
	}
	defer rows.Close()

	var strs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		strs = append(strs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ParseCatalog(e.src, strs...)
}

// sqlitePayload is the stored blob layout for one dataset's samples.
type sqlitePayload struct {
	Values []float64 `json:"values"`
	Dates  []string  `json:"dates"`
}

func (e *SQLiteEngine) ReadRTS(path DatasetPath) (*RegularTimeseries, error) {
	if e.db == nil {
		return nil, ErrClosed
	}
	var units, periodType, intervalTok string
	var compressed []byte
	err := e.db.QueryRow(
		`SELECT units, period_type, interval, payload FROM datasets WHERE path = ?`,
		path.String(),
	).Scan(&units, &periodType, &intervalTok, &compressed)
	if errors.Is(err, sql.ErrNoRows) {
		if path.D == Wildcard {
			return e.readChunked(path)
		}
		return nil, fmt.Errorf("%w: %s in %s", ErrDatasetNotFound, path, e.src)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return decodeSQLiteRow(path, units, periodType, intervalTok, compressed)
}

// readChunked reassembles a logical series from the date-bounded chunks
// sharing the path's non-date parts.
func (e *SQLiteEngine) readChunked(path DatasetPath) (*RegularTimeseries, error) {
	rows, err := e.db.Query(`
		SELECT d, units, period_type, interval, payload FROM datasets
		WHERE a = ? AND b = ? AND c = ? AND e = ? AND f = ?
	`, path.A, path.B, path.C, path.E, path.F)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*RegularTimeseries
	for rows.Next() {
		var d, units, periodType, intervalTok string
		var compressed []byte
		if err := rows.Scan(&d, &units, &periodType, &intervalTok, &compressed); err != nil {
			return nil, fmt.Errorf("failed to scan dataset chunk: %w", err)
		}
		chunkPath := path
		chunkPath.D = d
		chunk, err := decodeSQLiteRow(chunkPath, units, periodType, intervalTok, compressed)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrDatasetNotFound, path, e.src)
	}
	return mergeChunks(path, chunks)
}

func decodeSQLiteRow(path DatasetPath, units, periodType, intervalTok string,
	compressed []byte) (*RegularTimeseries, error) {
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress dataset payload: %w", err)
	}
	var payload sqlitePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode dataset payload: %w", err)
	}
	interval, err := ParseInterval(intervalTok)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(payload.Dates))
	for i, s := range payload.Dates {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("cannot parse stored date %q: %w", s, err)
		}
		dates[i] = d
	}
	return NewRegularTimeseries(path, payload.Values, dates, periodType, units, interval)
}

func (e *SQLiteEngine) WriteRTS(path DatasetPath, rts *RegularTimeseries) error {
	if e.db == nil {
		return ErrClosed
	}
	if len(rts.Values) != len(rts.Dates) {
		return fmt.Errorf("values and dates must match length: %d != %d",
			len(rts.Values), len(rts.Dates))
	}
	exists, err := e.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s in %s", ErrDatasetExists, path, e.src)
	}

	dates := make([]string, len(rts.Dates))
	for i, d := range rts.Dates {
		dates[i] = d.Format(dateLayout)
	}
	raw, err := json.Marshal(sqlitePayload{Values: rts.Values, Dates: dates})
	if err != nil {
		return fmt.Errorf("failed to encode dataset payload: %w", err)
	}
	compressed := snappy.Encode(nil, raw)

	_, err = e.db.Exec(`
		INSERT INTO datasets (path, a, b, c, d, e, f, units, period_type, interval, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, path.String(), path.A, path.B, path.C, path.D, path.E, path.F,
		rts.Units, rts.PeriodType, rts.Interval.String(), compressed)
	if err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

func (e *SQLiteEngine) Exists(path DatasetPath) (bool, error) {
	if e.db == nil {
		return false, ErrClosed
	}
	var one int
	err := e.db.QueryRow(`SELECT 1 FROM datasets WHERE path = ? LIMIT 1`, path.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return true, nil
}
