package names

import "testing"

func TestClassifySexes_Boundary(t *testing.T) {
	tests := []struct {
		name         string
		male, female int
		want         Category
	}{
		{"exactly 99 percent male", 99, 1, CategoryMixed},
		{"99.1 percent male", 991, 9, CategoryMale},
		{"99.1 percent female", 9, 991, CategoryFemale},
		{"half and half", 50, 50, CategoryMixed},
		{"male only", 12, 0, CategoryMale},
		{"female only", 0, 7, CategoryFemale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recs []Record
			if tt.male > 0 {
				recs = append(recs, Record{Name: "x", Year: 2000, Sex: Male, Count: tt.male})
			}
			if tt.female > 0 {
				recs = append(recs, Record{Name: "x", Year: 2001, Sex: Female, Count: tt.female})
			}
			got := ClassifySexes(Aggregate(recs)).Of("x")
			if got != tt.want {
				t.Errorf("category = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifySexes_IgnoresViewerFilter(t *testing.T) {
	tbl := sampleTable()
	full := ClassifySexes(tbl)

	// camille is 40 male / 115 female over both sexes: mixed, even though the
	// female-only view would contain only female rows.
	if got := full.Of("camille"); got != CategoryMixed {
		t.Errorf("camille = %q, want mixed", got)
	}
	if got := full.Of("hugo"); got != CategoryMale {
		t.Errorf("hugo = %q, want male", got)
	}
	if got := full.Of("emma"); got != CategoryFemale {
		t.Errorf("emma = %q, want female", got)
	}
	if got := full.Of(DefaultRareBucket); got != "" {
		t.Errorf("rare bucket classified as %q", got)
	}
}

func TestClassifySexes_ZeroTotalExcluded(t *testing.T) {
	c := ClassifySexes(Aggregate([]Record{{Name: "nobody", Year: 2000, Sex: Male, Count: 0}}))
	if _, ok := c["nobody"]; ok {
		t.Error("zero-total name should not be classified")
	}
}

func TestClassifications_Sorted(t *testing.T) {
	c := Classifications{"zoe": CategoryFemale, "adam": CategoryMale, "lou": CategoryMixed}
	got := c.Sorted()
	if len(got) != 3 || got[0].Name != "adam" || got[2].Name != "zoe" {
		t.Errorf("Sorted() = %+v", got)
	}
}
