package analytics

import (
	"fmt"
	"strings"
	"time"
)

// Column names of the sales_data table used by filters and groupings.
const (
	ColumnBrand              = "brand"
	ColumnProductSubcategory = "productSubcategory"
	ColumnStore              = "store"
	ColumnDate               = "date"
)

// filterAll is the sentinel a client sends to disable a dimension.
const filterAll = "all"

// TimePeriod selects a trailing window of records relative to today.
type TimePeriod string

const (
	PeriodDaily      TimePeriod = "daily"
	PeriodWeekly     TimePeriod = "weekly"
	PeriodMonthly    TimePeriod = "monthly"
	PeriodIndefinite TimePeriod = "indefinite"
)

// ParseTimePeriod normalises raw input. Empty and unknown values are indefinite.
func ParseTimePeriod(raw string) TimePeriod {
	switch p := TimePeriod(strings.ToLower(strings.TrimSpace(raw))); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p
	default:
		return PeriodIndefinite
	}
}

// windowDays returns the trailing window length, zero for indefinite.
func (p TimePeriod) windowDays() int {
	switch p {
	case PeriodDaily:
		return 1
	case PeriodWeekly:
		return 7
	case PeriodMonthly:
		return 30
	default:
		return 0
	}
}

// FilterSet scopes one aggregation query. Empty dimensions are unfiltered.
type FilterSet struct {
	Brand              string
	ProductSubcategory string
	Store              string
	TimePeriod         TimePeriod
}

// NewFilterSet builds a FilterSet from raw request values, mapping "all" to
// no filter for each dimension.
func NewFilterSet(brand, productSubcategory, store, timePeriod string) FilterSet {
	return FilterSet{
		Brand:              dimension(brand),
		ProductSubcategory: dimension(productSubcategory),
		Store:              dimension(store),
		TimePeriod:         ParseTimePeriod(timePeriod),
	}
}

func dimension(raw string) string {
	if raw == "" || raw == filterAll {
		return ""
	}
	return raw
}

// Cutoff returns the earliest included date for the time window. Records
// dated on or after the cutoff match.
func (f FilterSet) Cutoff(now time.Time) (time.Time, bool) {
	days := f.TimePeriod.windowDays()
	if days == 0 {
		return time.Time{}, false
	}
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days), true
}

// Predicates builds the WHERE fragments for the filter set. Values are only
// ever carried in Args; Clauses hold column names and placeholders.
func (f FilterSet) Predicates(now time.Time) Predicates {
	var p Predicates
	p.addEquals(ColumnBrand, dimension(f.Brand))
	p.addEquals(ColumnProductSubcategory, dimension(f.ProductSubcategory))
	p.addEquals(ColumnStore, dimension(f.Store))
	if cutoff, ok := f.Cutoff(now); ok {
		p.add(ColumnDate+" >= $%d", cutoff)
	}
	return p
}

// Predicates is an ordered list of SQL conditions with positionally matched
// bound values.
type Predicates struct {
	Clauses []string
	Args    []any
}

func (p *Predicates) addEquals(column, value string) {
	if value == "" {
		return
	}
	p.add(column+" = $%d", value)
}

func (p *Predicates) add(format string, arg any) {
	p.Args = append(p.Args, arg)
	p.Clauses = append(p.Clauses, fmt.Sprintf(format, len(p.Args)))
}

// Empty reports whether no condition applies.
func (p Predicates) Empty() bool {
	return len(p.Clauses) == 0
}

// Where renders the conditions joined with AND, or an empty string.
func (p Predicates) Where() string {
	if p.Empty() {
		return ""
	}
	return "WHERE " + strings.Join(p.Clauses, " AND ")
}
