package godss

import (
	"encoding/json"
	"fmt"
	"time"
)

// dateLayout is the wire form for timestamps in the JSON interchange and
// plaintext exports. Dates in DSS files are zoneless; parsed values are UTC.
const dateLayout = "2006-01-02T15:04:05"

// RegularTimeseries is a regularly sampled series read from, or destined
// for, one dataset path in a DSS file.
type RegularTimeseries struct {
	// Path is the A-F path the data had, or will have, in the DSS file.
	Path DatasetPath
	// Values holds the samples, aligned with Dates.
	Values []float64
	// Dates holds the sample timestamps. Alignment conventions depend on the
	// interval and the originating engine.
	Dates []time.Time
	// PeriodType is the aggregation semantics of the samples.
	PeriodType string
	// Units is the unit label of the values.
	Units string
	// Interval is the nominal time step between samples.
	Interval Interval
}

// NewRegularTimeseries builds a series, enforcing the value/date length
// invariant at construction time.
func NewRegularTimeseries(path DatasetPath, values []float64, dates []time.Time,
	periodType, units string, interval Interval) (*RegularTimeseries, error) {
	if len(values) != len(dates) {
		return nil, fmt.Errorf("values and dates must match length: %d != %d",
			len(values), len(dates))
	}
	return &RegularTimeseries{
		Path:       path,
		Values:     values,
		Dates:      dates,
		PeriodType: periodType,
		Units:      units,
		Interval:   interval,
	}, nil
}

// Len returns the number of samples.
func (rts *RegularTimeseries) Len() int { return len(rts.Values) }

// String returns a short description of the series.
func (rts *RegularTimeseries) String() string {
	return fmt.Sprintf("RegularTimeseries(path=%s, len=%d)", rts.Path, rts.Len())
}

// Equal reports whether two series hold identical data in every field.
func (rts *RegularTimeseries) Equal(other *RegularTimeseries) bool {
	if other == nil {
		return false
	}
	if rts.Path != other.Path ||
		rts.PeriodType != other.PeriodType ||
		rts.Units != other.Units ||
		!rts.Interval.Equal(other.Interval) ||
		len(rts.Values) != len(other.Values) ||
		len(rts.Dates) != len(other.Dates) {
		return false
	}
	for i := range rts.Values {
		if rts.Values[i] != other.Values[i] {
			return false
		}
	}
	for i := range rts.Dates {
		if !rts.Dates[i].Equal(other.Dates[i]) {
			return false
		}
	}
	return true
}

// WithData returns a copy of the series carrying new values and dates,
// re-validating the length invariant.
func (rts *RegularTimeseries) WithData(values []float64, dates []time.Time) (*RegularTimeseries, error) {
	out := *rts
	return NewRegularTimeseries(out.Path, values, dates, out.PeriodType, out.Units, out.Interval)
}

// Add combines two series sample-wise. See combine for the rules.
func (rts *RegularTimeseries) Add(other *RegularTimeseries) (*RegularTimeseries, error) {
	return rts.combine(other, "+", func(l, r float64) float64 { return l + r })
}

// Sub subtracts other from rts sample-wise. See combine for the rules.
func (rts *RegularTimeseries) Sub(other *RegularTimeseries) (*RegularTimeseries, error) {
	return rts.combine(other, "-", func(l, r float64) float64 { return l - r })
}

// combine implements series arithmetic.
//
// Units, period type, and interval must be identical on both sides and pass
// through unchanged. The result path keeps identical parts and joins
// differing parts with the operator character; two fully identical paths
// force-differentiate the B part so the combined path stays distinguishable.
//
// Samples align strictly on the intersection of the two date arrays, so the
// result length equals the intersection size. Missing samples are never
// fabricated to complete an outer join.
func (rts *RegularTimeseries) combine(other *RegularTimeseries, opChar string,
	op func(l, r float64) float64) (*RegularTimeseries, error) {
	if !rts.Interval.Equal(other.Interval) {
		return nil, fmt.Errorf("cannot combine differing intervals: %s, %s",
			rts.Interval, other.Interval)
	}
	if rts.PeriodType != other.PeriodType {
		return nil, fmt.Errorf("cannot combine differing period types: %s, %s",
			rts.PeriodType, other.PeriodType)
	}
	if rts.Units != other.Units {
		return nil, fmt.Errorf("cannot combine differing units: %s, %s",
			rts.Units, other.Units)
	}

	newPath := combinePaths(rts.Path, other.Path, opChar)

	right := make(map[int64]float64, len(other.Dates))
	for i, d := range other.Dates {
		right[d.UnixNano()] = other.Values[i]
	}
	var dates []time.Time
	var values []float64
	for i, d := range rts.Dates {
		if rv, ok := right[d.UnixNano()]; ok {
			dates = append(dates, d)
			values = append(values, op(rts.Values[i], rv))
		}
	}

	return &RegularTimeseries{
		Path:       newPath,
		Values:     values,
		Dates:      dates,
		PeriodType: rts.PeriodType,
		Units:      rts.Units,
		Interval:   rts.Interval,
	}, nil
}

func combinePaths(left, right DatasetPath, opChar string) DatasetPath {
	lp, rp := left.parts(), right.parts()
	var np [pathPartCount]string
	for i := range lp {
		if lp[i] == rp[i] {
			np[i] = lp[i]
		} else {
			np[i] = lp[i] + opChar + rp[i]
		}
	}
	if left == right {
		np[1] = left.B + opChar + right.B
	}
	return DatasetPath{A: np[0], B: np[1], C: np[2], D: np[3], E: np[4], F: np[5]}
}

// timeseriesJSON is the JSON interchange form of a RegularTimeseries.
type timeseriesJSON struct {
	Path       string    `json:"path"`
	Values     []float64 `json:"values"`
	Dates      []string  `json:"dates"`
	PeriodType string    `json:"period_type"`
	Units      string    `json:"units"`
	Interval   string    `json:"interval"`
}

// MarshalJSON encodes the series in the interchange form: the path and
// interval as canonical strings, dates as ISO strings.
func (rts *RegularTimeseries) MarshalJSON() ([]byte, error) {
	dates := make([]string, len(rts.Dates))
	for i, d := range rts.Dates {
		dates[i] = d.Format(dateLayout)
	}
	return json.Marshal(timeseriesJSON{
		Path:       rts.Path.String(),
		Values:     rts.Values,
		Dates:      dates,
		PeriodType: rts.PeriodType,
		Units:      rts.Units,
		Interval:   rts.Interval.String(),
	})
}

// UnmarshalJSON decodes the interchange form. Round-tripping a series
// through JSON reproduces an equal object.
func (rts *RegularTimeseries) UnmarshalJSON(data []byte) error {
	var raw timeseriesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Values) != len(raw.Dates) {
		return fmt.Errorf("values and dates must match length: %d != %d",
			len(raw.Values), len(raw.Dates))
	}
	path, err := ParsePath(raw.Path)
	if err != nil {
		return err
	}
	interval, err := ParseInterval(raw.Interval)
	if err != nil {
		return err
	}
	dates := make([]time.Time, len(raw.Dates))
	for i, s := range raw.Dates {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return fmt.Errorf("cannot parse date %q: %w", s, err)
		}
		dates[i] = d
	}
	*rts = RegularTimeseries{
		Path:       path,
		Values:     raw.Values,
		Dates:      dates,
		PeriodType: raw.PeriodType,
		Units:      raw.Units,
		Interval:   interval,
	}
	return nil
}
