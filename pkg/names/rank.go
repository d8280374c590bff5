package names

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// DefaultPeriods is used when a caller asks for no period at all.
var DefaultPeriods = []int{3, 5, 10, 20}

// ErrInvalidPeriod is returned for a period length below one year.
var ErrInvalidPeriod = errors.New("invalid period length")

// RankQuery selects what RankByPeriods computes.
type RankQuery struct {
	Sexes   SexFilter
	Periods []int
	// CurrentYear is the in-progress year. Windows end the year before it.
	CurrentYear int
}

// PeriodAverage is one name's average yearly births over a period.
type PeriodAverage struct {
	Name    string `json:"name"`
	Period  int    `json:"period"`
	Average int    `json:"average"`
}

// PeriodRanking is the ranking for one period length, highest average first
// and ties ordered by name.
type PeriodRanking struct {
	Period    int             `json:"period"`
	FirstYear int             `json:"first_year"`
	LastYear  int             `json:"last_year"`
	Entries   []PeriodAverage `json:"entries"`
}

// ComparisonRow aligns one name across all requested periods. Averages[i]
// belongs to Comparison.Periods[i].
type ComparisonRow struct {
	Name     string    `json:"name"`
	Averages []Average `json:"averages"`
	Category Category  `json:"category"`
}

// Comparison is the combined multi-period ranking table.
type Comparison struct {
	Periods     []int           `json:"periods"`
	CurrentYear int             `json:"current_year"`
	Rankings    []PeriodRanking `json:"rankings"`
	Rows        []ComparisonRow `json:"rows"`
}

// Truncate keeps the first n rows and the first n entries of every period
// ranking. n <= 0 keeps everything.
func (c *Comparison) Truncate(n int) {
	if n <= 0 {
		return
	}
	if len(c.Rows) > n {
		c.Rows = c.Rows[:n]
	}
	for i := range c.Rankings {
		if len(c.Rankings[i].Entries) > n {
			c.Rankings[i].Entries = c.Rankings[i].Entries[:n]
		}
	}
}

// Periods returns the sorted, de-duplicated period set, falling back to
// DefaultPeriods when none is given.
func Periods(requested []int) ([]int, error) {
	if len(requested) == 0 {
		return slices.Clone(DefaultPeriods), nil
	}
	out := slices.Clone(requested)
	for _, p := range out {
		if p < 1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// RankByPeriods computes, for each period length P, every name's average
// yearly births over the years [CurrentYear-P, CurrentYear-1] and the
// active sexes, then joins the per-period results into one table keyed by
// name and annotated with classes.
//
// A period whose window holds no year of the dataset, or which is longer than
// the dataset's whole year span, yields an empty ranking. The rare bucket is
// never ranked.
func RankByPeriods(t *Table, q RankQuery, classes Classifications) (*Comparison, error) {
	periods, err := Periods(q.Periods)
	if err != nil {
		return nil, err
	}

	comp := &Comparison{
		Periods:     periods,
		CurrentYear: q.CurrentYear,
		Rankings:    make([]PeriodRanking, 0, len(periods)),
	}
	for _, p := range periods {
		comp.Rankings = append(comp.Rankings, rankPeriod(t, q.Sexes, p, q.CurrentYear))
	}

	index := make(map[string]int)
	for col, rk := range comp.Rankings {
		for _, e := range rk.Entries {
			row, ok := index[e.Name]
			if !ok {
				row = len(comp.Rows)
				index[e.Name] = row
				comp.Rows = append(comp.Rows, ComparisonRow{
					Name:     e.Name,
					Averages: make([]Average, len(periods)),
					Category: classes.Of(e.Name),
				})
			}
			comp.Rows[row].Averages[col] = Average{Count: e.Average, Valid: true}
		}
	}
	return comp, nil
}

func rankPeriod(t *Table, sexes SexFilter, period, currentYear int) PeriodRanking {
	rk := PeriodRanking{
		Period:    period,
		FirstYear: currentYear - period,
		LastYear:  currentYear - 1,
		Entries:   []PeriodAverage{},
	}

	first, last, ok := t.YearSpan()
	if !ok || period > last-first+1 {
		return rk
	}
	if rk.LastYear < first || rk.FirstYear > last {
		return rk
	}

	sums := make(map[string]int)
	for _, r := range t.Records {
		if r.Year < rk.FirstYear || r.Year > rk.LastYear || !sexes.Allows(r.Sex) || t.isRare(r.Name) {
			continue
		}
		sums[r.Name] += r.Count
	}

	for name, sum := range sums {
		rk.Entries = append(rk.Entries, PeriodAverage{Name: name, Period: period, Average: sum / period})
	}
	slices.SortFunc(rk.Entries, func(a, b PeriodAverage) int {
		if c := cmp.Compare(b.Average, a.Average); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return rk
}
