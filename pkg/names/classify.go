package names

import (
	"cmp"
	"slices"
)

// Classifications maps canonical names to their category.
type Classifications map[string]Category

// Of returns the category of name, or "" if the name was never classified.
func (c Classifications) Of(name string) Category {
	return c[name]
}

// Sorted returns the classifications ordered by name.
func (c Classifications) Sorted() []SexClassification {
	out := make([]SexClassification, 0, len(c))
	for n, cat := range c {
		out = append(out, SexClassification{Name: n, Category: cat})
	}
	slices.SortFunc(out, func(a, b SexClassification) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// ClassifySexes assigns each name a category from its all-time counts over
// both sexes. It must be given the unfiltered table: the category describes
// the name, not the caller's current view.
//
// A sex wins the name when its share is strictly above 99%; the comparison is
// done in integers (count*100 > total*99) so 99/1 stays mixed.
func ClassifySexes(t *Table) Classifications {
	type tally struct{ male, female int }
	tallies := make(map[string]*tally)
	for _, r := range t.Records {
		if t.isRare(r.Name) {
			continue
		}
		tl, ok := tallies[r.Name]
		if !ok {
			tl = &tally{}
			tallies[r.Name] = tl
		}
		switch r.Sex {
		case Male:
			tl.male += r.Count
		case Female:
			tl.female += r.Count
		}
	}

	out := make(Classifications, len(tallies))
	for name, tl := range tallies {
		total := tl.male + tl.female
		if total == 0 {
			continue
		}
		switch {
		case tl.male*100 > total*99:
			out[name] = CategoryMale
		case tl.female*100 > total*99:
			out[name] = CategoryFemale
		default:
			out[name] = CategoryMixed
		}
	}
	return out
}
