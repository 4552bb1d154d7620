package godss

// Period types from the DSS time-series documentation. The period type
// describes the aggregation semantics of each sample.
const (
	PeriodInstVal = "INST-VAL"
	PeriodInstCum = "INST-CUM"
	PeriodPerAver = "PER-AVER"
	PeriodPerCum  = "PER-CUM"
)

var periodTypes = map[string]struct{}{
	PeriodInstVal: {},
	PeriodInstCum: {},
	PeriodPerAver: {},
	PeriodPerCum:  {},
}

// ValidPeriodType reports whether s is one of the standard DSS period types.
func ValidPeriodType(s string) bool {
	_, ok := periodTypes[s]
	return ok
}
