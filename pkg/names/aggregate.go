package names

import (
	"cmp"
	"slices"
)

type aggKey struct {
	name string
	year int
	sex  Sex
}

// Aggregate sums counts per (name, year, sex). Names are expected to be
// canonical already (see Normalize), so case and accent variants land in the
// same bucket. The result does not depend on input order.
func Aggregate(records []Record) *Table {
	sums := make(map[aggKey]int, len(records))
	for _, r := range records {
		sums[aggKey{r.Name, r.Year, r.Sex}] += r.Count
	}

	out := make([]AggregatedRecord, 0, len(sums))
	for k, c := range sums {
		out = append(out, AggregatedRecord{Name: k.name, Year: k.year, Sex: k.sex, Count: c})
	}
	slices.SortFunc(out, compareRecords)
	return &Table{Records: out}
}

func compareRecords(a, b AggregatedRecord) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	return cmp.Compare(a.Sex, b.Sex)
}

// YearlyTotals returns births and distinct names per year, ascending, for the
// records allowed by sexes. The rare bucket counts toward births but is not
// a name, so it is left out of DistinctNames.
func YearlyTotals(t *Table, sexes SexFilter) []YearlyTotal {
	type acc struct {
		births int
		names  map[string]struct{}
	}
	byYear := make(map[int]*acc)
	for _, r := range t.Records {
		if !sexes.Allows(r.Sex) {
			continue
		}
		a, ok := byYear[r.Year]
		if !ok {
			a = &acc{names: make(map[string]struct{})}
			byYear[r.Year] = a
		}
		a.births += r.Count
		if !t.isRare(r.Name) {
			a.names[r.Name] = struct{}{}
		}
	}

	out := make([]YearlyTotal, 0, len(byYear))
	for y, a := range byYear {
		out = append(out, YearlyTotal{Year: y, TotalBirths: a.births, DistinctNames: len(a.names)})
	}
	slices.SortFunc(out, func(a, b YearlyTotal) int { return cmp.Compare(a.Year, b.Year) })
	return out
}

// NormalizeAndAggregate runs the full cleaning pipeline over raw rows and
// returns the aggregated table with its unfiltered yearly totals. ErrNoData
// is returned when nothing survives normalization.
func NormalizeAndAggregate(raws []RawRecord, opts NormalizeOptions) (*Table, []YearlyTotal, NormalizeReport, error) {
	opts = opts.withDefaults()
	records, rep := Normalize(raws, opts)
	if len(records) == 0 {
		return nil, nil, rep, ErrNoData
	}
	t := Aggregate(records)
	t.RareBucket = Canonicalize(opts.RareBucket)
	return t, YearlyTotals(t, nil), rep, nil
}
