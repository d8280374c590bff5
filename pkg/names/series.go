package names

import (
	"cmp"
	"slices"
)

// YearCount is one point of a name's time series.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Series is a name's full history split per sex, each ordered by year.
type Series struct {
	Query  string      `json:"query"`
	Name   string      `json:"name"`
	Male   []YearCount `json:"male"`
	Female []YearCount `json:"female"`
}

// Empty reports whether the name has no record at all.
func (s Series) Empty() bool { return len(s.Male) == 0 && len(s.Female) == 0 }

// Total is the all-time count over both sexes.
func (s Series) Total() int {
	n := 0
	for _, p := range s.Male {
		n += p.Count
	}
	for _, p := range s.Female {
		n += p.Count
	}
	return n
}

// Records flattens the series back to aggregated records ordered by year
// then sex.
func (s Series) Records() []AggregatedRecord {
	out := make([]AggregatedRecord, 0, len(s.Male)+len(s.Female))
	i, j := 0, 0
	for i < len(s.Male) || j < len(s.Female) {
		if j >= len(s.Female) || (i < len(s.Male) && s.Male[i].Year <= s.Female[j].Year) {
			out = append(out, AggregatedRecord{Name: s.Name, Year: s.Male[i].Year, Sex: Male, Count: s.Male[i].Count})
			i++
			continue
		}
		out = append(out, AggregatedRecord{Name: s.Name, Year: s.Female[j].Year, Sex: Female, Count: s.Female[j].Count})
		j++
	}
	return out
}

// SeriesForName canonicalizes query and returns its history. A name that is
// not in the table gives an empty series, not an error.
func SeriesForName(t *Table, query string) Series {
	name := Canonicalize(query)
	s := Series{Query: query, Name: name, Male: []YearCount{}, Female: []YearCount{}}
	if name == "" {
		return s
	}

	// Records are sorted by name first, so the name's rows are contiguous
	// and already ordered by year.
	lo, _ := slices.BinarySearchFunc(t.Records, name, func(r AggregatedRecord, n string) int {
		return cmp.Compare(r.Name, n)
	})
	for _, r := range t.Records[lo:] {
		if r.Name != name {
			break
		}
		p := YearCount{Year: r.Year, Count: r.Count}
		switch r.Sex {
		case Male:
			s.Male = append(s.Male, p)
		case Female:
			s.Female = append(s.Female, p)
		}
	}
	return s
}
