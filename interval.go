package godss

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// intervalPattern extracts the optional integer multiplier and the unit key
// from an E-part token like "1MON" or "IR-YEAR".
var intervalPattern = regexp.MustCompile(`^(\d+)?([A-Za-z\-]+)$`)

// intervalUnit describes one unit of the DSS E-part vocabulary.
type intervalUnit struct {
	// canonical name, shared by aliases like MON/MONTH
	name string
	// nominal length of one unit in seconds
	seconds int64
	// approx marks units whose true calendar length varies; their seconds
	// value follows the fixed 365-day year / 30-day month / 7-day week
	// convention rather than calendar arithmetic.
	approx bool
}

// Unit values from the DSS time-series documentation. TRI-MONTH is part of
// the vocabulary but deliberately unsupported.
var intervalUnits = map[string]intervalUnit{
	"YEAR":       {"YEAR", 365 * 86400, true},
	"MON":        {"MONTH", 30 * 86400, true},
	"MONTH":      {"MONTH", 30 * 86400, true},
	"SEMI-MONTH": {"SEMI-MONTH", 15 * 86400, true},
	"WEEK":       {"WEEK", 7 * 86400, false},
	"DAY":        {"DAY", 86400, false},
	"HOUR":       {"HOUR", 3600, false},
	"MIN":        {"MINUTE", 60, false},
	"MINUTE":     {"MINUTE", 60, false},
	"SECOND":     {"SECOND", 1, false},
	"IR-CENTURY": {"IR-CENTURY", 100 * 365 * 86400, true},
	"IR-DECADE":  {"IR-DECADE", 10 * 365 * 86400, true},
	"IR-YEAR":    {"IR-YEAR", 365 * 86400, true},
	"IR-MONTH":   {"IR-MONTH", 30 * 86400, true},
	"IR-DAY":     {"IR-DAY", 86400, false},
}

// Interval is the parsed form of a series' E-part time-step token.
//
// Interval carries two deliberately different comparison notions: Equal
// compares the parsed (unit, multiplier) pair, while ordering (Compare,
// Less) compares nominal seconds. "1MON" and "1MONTH" are equal but
// distinct tokens; "60MIN" and "1HOUR" order the same but are not equal.
type Interval struct {
	token      string
	unit       intervalUnit
	multiplier int
}

// ParseInterval parses an E-part token of the form
// "<optional multiplier><unit>". The multiplier defaults to 1. The unit
// lookup is case-insensitive.
func ParseInterval(token string) (Interval, error) {
	m := intervalPattern.FindStringSubmatch(token)
	if m == nil {
		return Interval{}, fmt.Errorf("cannot parse %q as interval", token)
	}
	unit, ok := intervalUnits[strings.ToUpper(m[2])]
	if !ok {
		return Interval{}, fmt.Errorf("unknown interval unit in %q", token)
	}
	multiplier := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Interval{}, fmt.Errorf("invalid interval multiplier in %q", token)
		}
		multiplier = n
	}
	return Interval{token: token, unit: unit, multiplier: multiplier}, nil
}

// MustParseInterval is like ParseInterval but panics on malformed input.
func MustParseInterval(token string) Interval {
	i, err := ParseInterval(token)
	if err != nil {
		panic(err)
	}
	return i
}

// String returns the original token.
func (i Interval) String() string { return i.token }

// Unit returns the canonical unit name, e.g. "MONTH" for a "1MON" token.
func (i Interval) Unit() string { return i.unit.name }

// Multiplier returns the parsed multiplier, defaulting to 1.
func (i Interval) Multiplier() int { return i.multiplier }

// IsIrregular reports whether the token names one of the IR-* variants.
func (i Interval) IsIrregular() bool {
	return strings.HasPrefix(i.unit.name, "IR-")
}

// Seconds returns the nominal length of the interval in seconds. For units
// without a fixed calendar length the value follows the documented
// approximation (365-day year, 30-day month, 7-day week) and a warning is
// logged rather than failing.
func (i Interval) Seconds() int64 {
	if i.unit.approx {
		slog.Warn("interval length is approximate, unit has no fixed calendar length",
			"interval", i.token)
	}
	return i.seconds()
}

func (i Interval) seconds() int64 {
	return int64(i.multiplier) * i.unit.seconds
}

// Compare orders intervals by their nominal seconds.
func (i Interval) Compare(other Interval) int {
	l, r := i.seconds(), other.seconds()
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// Less reports whether i is a shorter time step than other.
func (i Interval) Less(other Interval) bool {
	return i.Compare(other) < 0
}

// Equal compares the parsed unit and multiplier, not seconds. Aliases of the
// same unit ("MON", "MONTH") compare equal; different units with the same
// nominal seconds do not.
func (i Interval) Equal(other Interval) bool {
	return i.unit.name == other.unit.name && i.multiplier == other.multiplier
}
