package names

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSeriesForName(t *testing.T) {
	tbl := sampleTable()

	s := SeriesForName(tbl, "  CAMILLE ")
	if s.Name != "camille" {
		t.Errorf("Name = %q, want camille", s.Name)
	}
	if diff := cmp.Diff([]YearCount{{2018, 40}}, s.Male); diff != "" {
		t.Errorf("male series (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]YearCount{{2018, 60}, {2019, 55}}, s.Female); diff != "" {
		t.Errorf("female series (-want +got):\n%s", diff)
	}
	if s.Total() != 155 {
		t.Errorf("Total = %d, want 155", s.Total())
	}

	want := []AggregatedRecord{
		{Name: "camille", Year: 2018, Sex: Male, Count: 40},
		{Name: "camille", Year: 2018, Sex: Female, Count: 60},
		{Name: "camille", Year: 2019, Sex: Female, Count: 55},
	}
	if diff := cmp.Diff(want, s.Records()); diff != "" {
		t.Errorf("Records (-want +got):\n%s", diff)
	}
}

func TestSeriesForName_Accents(t *testing.T) {
	tbl := Aggregate([]Record{{Name: "chloe", Year: 2010, Sex: Female, Count: 9}})
	s := SeriesForName(tbl, "Chloé")
	if s.Empty() || s.Female[0].Count != 9 {
		t.Errorf("series = %+v, want chloe 2010=9", s)
	}
}

func TestSeriesForName_Unknown(t *testing.T) {
	tbl := sampleTable()
	for _, q := range []string{"nobody", "", "   ", "zzz"} {
		s := SeriesForName(tbl, q)
		if !s.Empty() {
			t.Errorf("SeriesForName(%q) = %+v, want empty", q, s)
		}
		if s.Male == nil || s.Female == nil {
			t.Errorf("SeriesForName(%q) should return empty, non-nil slices", q)
		}
	}
}
