// Package names is the normalization, aggregation and ranking engine for
// birth-name registries (one row per name, year, sex and count).
//
// Every function in this package is a pure transformation: inputs are read,
// never mutated, and each stage returns a fresh value for the next one.
package names

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Sex is the registry sex code.
type Sex int

const (
	Male   Sex = 1
	Female Sex = 2
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return fmt.Sprintf("sex(%d)", int(s))
	}
}

func (s Sex) valid() bool { return s == Male || s == Female }

// ParseSex accepts the registry codes ("1", "2"), SSA letters ("M", "F")
// and the English words.
func ParseSex(v string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "m", "male", "boy", "boys":
		return Male, nil
	case "2", "f", "female", "girl", "girls":
		return Female, nil
	}
	return 0, fmt.Errorf("unknown sex %q", v)
}

// SexFilter is the set of sexes a caller is looking at. An empty filter
// selects both.
type SexFilter []Sex

// ParseSexFilter parses a comma-separated list such as "female,male" or "2".
func ParseSexFilter(v string) (SexFilter, error) {
	var f SexFilter
	for _, part := range strings.Split(v, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := ParseSex(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(f, s) {
			f = append(f, s)
		}
	}
	return f, nil
}

// Allows reports whether records of sex s pass the filter.
func (f SexFilter) Allows(s Sex) bool {
	return len(f) == 0 || slices.Contains(f, s)
}

// Names returns the filter as sex names, both sexes when empty.
func (f SexFilter) Names() []string {
	if len(f) == 0 {
		return []string{Male.String(), Female.String()}
	}
	out := make([]string, len(f))
	for i, s := range f {
		out[i] = s.String()
	}
	return out
}

// RawRecord is one delimited row as read from the source. An empty field
// means the value was missing.
type RawRecord struct {
	Line  int
	Sex   string
	Name  string
	Year  string
	Count string
}

// Record is a cleaned row: canonical name, integer year, known sex.
type Record struct {
	Name  string
	Year  int
	Sex   Sex
	Count int
}

// AggregatedRecord is the summed count for one (name, year, sex) triple.
type AggregatedRecord struct {
	Name  string `json:"name"`
	Year  int    `json:"year"`
	Sex   Sex    `json:"sex"`
	Count int    `json:"count"`
}

// Table is the aggregated registry. Records are unique per (name, year, sex)
// and sorted by name, year, then sex. A Table is never modified after it is
// built; filtering returns a new Table.
type Table struct {
	Records []AggregatedRecord

	// RareBucket is the canonical name of the registry's suppressed
	// low-count bucket (e.g. "_prenoms_rares"). Empty when the source has none.
	RareBucket string
}

// FilterSexes returns a new table holding only the records allowed by f.
func (t *Table) FilterSexes(f SexFilter) *Table {
	out := &Table{RareBucket: t.RareBucket}
	if len(f) == 0 {
		out.Records = slices.Clone(t.Records)
		return out
	}
	out.Records = make([]AggregatedRecord, 0, len(t.Records))
	for _, r := range t.Records {
		if f.Allows(r.Sex) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// YearSpan returns the first and last year present. ok is false for an
// empty table.
func (t *Table) YearSpan() (first, last int, ok bool) {
	if len(t.Records) == 0 {
		return 0, 0, false
	}
	first, last = t.Records[0].Year, t.Records[0].Year
	for _, r := range t.Records[1:] {
		first = min(first, r.Year)
		last = max(last, r.Year)
	}
	return first, last, true
}

// NameCount returns the number of distinct names. The rare bucket is not a
// name and is not counted.
func (t *Table) NameCount() int {
	n := 0
	for i, r := range t.Records {
		if (i == 0 || t.Records[i-1].Name != r.Name) && !t.isRare(r.Name) {
			n++
		}
	}
	return n
}

// isRare reports whether name is the table's rare bucket.
func (t *Table) isRare(name string) bool {
	return t.RareBucket != "" && name == t.RareBucket
}

// YearlyTotal summarises one year of the (sex-filtered) table.
type YearlyTotal struct {
	Year          int `json:"year"`
	TotalBirths   int `json:"total_births"`
	DistinctNames int `json:"distinct_names"`
}

// Category is the sex-skew class of a name.
type Category string

const (
	CategoryMale   Category = "male"
	CategoryFemale Category = "female"
	CategoryMixed  Category = "mixed"
)

// SexClassification pairs a name with its category.
type SexClassification struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Average is a period average that may be absent: a name with no record in a
// window has no average, which is not the same as an average of zero.
type Average struct {
	Count int
	Valid bool
}

// MarshalJSON encodes an absent average as null.
func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Count)
}

// UnmarshalJSON accepts null or an integer.
func (a *Average) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Average{}
		return nil
	}
	if err := json.Unmarshal(data, &a.Count); err != nil {
		return err
	}
	a.Valid = true
	return nil
}
