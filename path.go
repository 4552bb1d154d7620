package godss

import (
	"regexp"
	"strings"
)

// Wildcard is the marker used for path parts that match any literal value.
// Bare "*" and empty parts are normalized to this marker during parsing.
const Wildcard = ".*"

// pathPartCount is the number of hierarchical parts in a DSS dataset path.
const pathPartCount = 6

// DatasetPath addresses a single dataset inside a DSS file using the six
// hierarchical parts A through F. Parts are literal tokens or wildcard
// patterns containing the ".*" marker. The canonical string form is
// "/A/B/C/D/E/F/".
//
// DatasetPath is a comparable value type: == is structural equality over all
// six parts, including wildcard-marker identity. The Matches relation is
// intentionally distinct from equality.
type DatasetPath struct {
	A, B, C, D, E, F string
}

// NewDatasetPath builds a DatasetPath from six parts, normalizing empty and
// bare "*" parts to the wildcard marker.
func NewDatasetPath(a, b, c, d, e, f string) DatasetPath {
	return DatasetPath{
		A: normalizePart(a),
		B: normalizePart(b),
		C: normalizePart(c),
		D: normalizePart(d),
		E: normalizePart(e),
		F: normalizePart(f),
	}
}

// WildcardPath returns the path that matches every dataset.
func WildcardPath() DatasetPath {
	return NewDatasetPath("", "", "", "", "", "")
}

func normalizePart(part string) string {
	if part == "" || part == "*" {
		return Wildcard
	}
	return part
}

// ParsePath parses the canonical "/A/B/C/D/E/F/" form. The surrounding
// slashes are optional. Empty and bare "*" segments are normalized to the
// wildcard marker. Returns a *PathParseError if the segment count is not six.
func ParsePath(s string) (DatasetPath, error) {
	trimmed := strings.Trim(s, "/")
	segments := strings.Split(trimmed, "/")
	if len(segments) != pathPartCount {
		return DatasetPath{}, &PathParseError{
			Input:  s,
			Reason: "path must have exactly 6 parts",
		}
	}
	return NewDatasetPath(segments[0], segments[1], segments[2],
		segments[3], segments[4], segments[5]), nil
}

// MustParsePath is like ParsePath but panics on malformed input. Intended
// for path literals in tests and examples.
func MustParsePath(s string) DatasetPath {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the canonical "/A/B/C/D/E/F/" form.
func (p DatasetPath) String() string {
	return "/" + p.A + "/" + p.B + "/" + p.C + "/" + p.D + "/" + p.E + "/" + p.F + "/"
}

func (p DatasetPath) parts() [pathPartCount]string {
	return [pathPartCount]string{p.A, p.B, p.C, p.D, p.E, p.F}
}

// Compare orders paths lexicographically over the parts A through F. It is
// the total order used for deterministic iteration and sorting.
func (p DatasetPath) Compare(other DatasetPath) int {
	lp, rp := p.parts(), other.parts()
	for i := range lp {
		if c := strings.Compare(lp[i], rp[i]); c != 0 {
			return c
		}
	}
	return 0
}

// HasWildcard reports whether any of the A, B, C, E, or F parts carries a
// wildcard. The D part is deliberately excluded: the date part is routinely
// wildcarded even on fully specified series, because DSS files partition one
// logical series across many date-bounded physical records.
func (p DatasetPath) HasWildcard() bool {
	return isWildcardPart(p.A) || isWildcardPart(p.B) || isWildcardPart(p.C) ||
		isWildcardPart(p.E) || isWildcardPart(p.F)
}

// HasAnyWildcard reports whether any part, including D, carries a wildcard.
func (p DatasetPath) HasAnyWildcard() bool {
	return p.HasWildcard() || isWildcardPart(p.D)
}

// DropDate returns a copy of the path with the D part forced to the
// wildcard marker.
func (p DatasetPath) DropDate() DatasetPath {
	p.D = Wildcard
	return p
}

func isWildcardPart(part string) bool {
	return strings.Contains(part, Wildcard)
}

// Matches reports whether two paths address the same datasets. It is
// distinct from equality: equal paths always match, and otherwise the paths
// match only when exactly one side subsumes the other across all six parts.
// If both sides subsume each other without being equal, intent is ambiguous
// and the paths are treated as non-matching.
//
// The relation is symmetric: p.Matches(q) == q.Matches(p).
func (p DatasetPath) Matches(other DatasetPath) bool {
	if p == other {
		return true
	}
	return subsumes(p, other) != subsumes(other, p)
}

// MatchesStr parses the operand and compares by equality. Raw strings are
// never treated as regex sources; callers wanting pattern semantics must
// parse into a DatasetPath first.
func (p DatasetPath) MatchesStr(s string) (bool, error) {
	other, err := ParsePath(s)
	if err != nil {
		return false, err
	}
	return p == other, nil
}

// subsumes reports whether every part of pattern accepts the corresponding
// part of concrete: either the parts are equal ignoring case, or the pattern
// part carries a wildcard whose compiled pattern covers the concrete part.
func subsumes(pattern, concrete DatasetPath) bool {
	pp, cp := pattern.parts(), concrete.parts()
	for i := range pp {
		if !partSubsumes(pp[i], cp[i]) {
			return false
		}
	}
	return true
}

func partSubsumes(pattern, concrete string) bool {
	if strings.EqualFold(pattern, concrete) {
		return true
	}
	if !isWildcardPart(pattern) {
		return false
	}
	re, err := regexp.Compile("(?i)^(?:" + pattern + ")$")
	if err != nil {
		return false
	}
	return re.MatchString(concrete)
}
