package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/dataset"
	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/hazyhaar/prenoms-registry/pkg/source"
)

const testData = "sexe;preusuel;annais;nombre\n" +
	"2;MARIE;2022;100\n" +
	"2;MARIE;2023;200\n" +
	"2;Marie;2024;300\n" +
	"1;LÉO;2022;90\n" +
	"1;LEO;2023;120\n" +
	"1;Leo;2024;150\n" +
	"1;CAMILLE;2024;50\n" +
	"2;CAMILLE;2024;50\n" +
	"1;_PRENOMS_RARES;2024;999\n" +
	"2;JADE;XXXX;5\n"

func testService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "prenoms-fr")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	m := &source.Manifest{ID: "prenoms-fr", Version: "test", Jurisdiction: "fr", Source: "unit test", License: "CC0", DataFile: "data.csv", Format: source.NationalFormat()}
	if err := source.WriteManifest(filepath.Join(dir, "manifest.yaml"), m); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte(testData), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := dataset.NewRegistry(root, "", logger)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewService(reg,
		WithDefaultDataset("prenoms-fr"),
		WithLogger(logger),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

func get(t *testing.T, h http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return w
}

func TestListDatasets(t *testing.T) {
	router := NewRouter(testService(t))

	var resp struct {
		Datasets []dataset.Info `json:"datasets"`
	}
	w := get(t, router, "/v1/datasets", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.Datasets) != 1 {
		t.Fatalf("datasets = %+v", resp.Datasets)
	}
	d := resp.Datasets[0]
	if d.ID != "prenoms-fr" || d.FirstYear != 2022 || d.LastYear != 2024 || d.Dropped != 1 {
		t.Errorf("info = %+v", d)
	}
}

func TestTotals(t *testing.T) {
	router := NewRouter(testService(t))

	tests := []struct {
		query         string
		births, names int
	}{
		{"", 1549, 3},
		{"?sexes=female", 350, 2},
		{"?sexes=2", 350, 2},
		{"?sexes=male,female", 1549, 3},
	}
	for _, tt := range tests {
		var resp totalsResponse
		w := get(t, router, "/v1/datasets/prenoms-fr/totals"+tt.query, &resp)
		if w.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", tt.query, w.Code)
		}
		last := resp.Totals[len(resp.Totals)-1]
		if last.Year != 2024 || last.TotalBirths != tt.births || last.DistinctNames != tt.names {
			t.Errorf("%q: 2024 = %+v, want %d births, %d names", tt.query, last, tt.births, tt.names)
		}
	}
}

func TestTotals_BadSex(t *testing.T) {
	w := get(t, NewRouter(testService(t)), "/v1/datasets/prenoms-fr/totals?sexes=other", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSeries(t *testing.T) {
	router := NewRouter(testService(t))

	var resp seriesResponse
	w := get(t, router, "/v1/datasets/prenoms-fr/names/l%C3%A9o", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if resp.Name != "leo" || resp.Query != "léo" || resp.Total != 360 || resp.Category != names.CategoryMale {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Male) != 3 || len(resp.Female) != 0 {
		t.Errorf("series = %+v / %+v", resp.Male, resp.Female)
	}
}

func TestSeries_UnknownName(t *testing.T) {
	var resp seriesResponse
	w := get(t, NewRouter(testService(t)), "/v1/datasets/prenoms-fr/names/zoubida", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Total != 0 || resp.Male == nil || len(resp.Male) != 0 || resp.Category != "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRankings(t *testing.T) {
	router := NewRouter(testService(t))

	var resp struct {
		Periods     []int `json:"periods"`
		CurrentYear int   `json:"current_year"`
		Rows        []struct {
			Name     string `json:"name"`
			Averages []*int `json:"averages"`
			Category string `json:"category"`
		} `json:"rows"`
	}
	w := get(t, router, "/v1/datasets/prenoms-fr/rankings?periods=5,3", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if resp.CurrentYear != 2025 || len(resp.Periods) != 2 || resp.Periods[0] != 3 {
		t.Fatalf("header = %d %v", resp.CurrentYear, resp.Periods)
	}

	want := []struct {
		name string
		avg  int
		cat  string
	}{{"marie", 200, "female"}, {"leo", 120, "male"}, {"camille", 33, "mixed"}}
	if len(resp.Rows) != len(want) {
		t.Fatalf("rows = %+v", resp.Rows)
	}
	for i, exp := range want {
		row := resp.Rows[i]
		if row.Name != exp.name || row.Averages[0] == nil || *row.Averages[0] != exp.avg || row.Category != exp.cat {
			t.Errorf("row %d = %+v, want %v", i, row, exp)
		}
		// Five years is longer than the dataset's span.
		if row.Averages[1] != nil {
			t.Errorf("row %d: period 5 average = %d, want null", i, *row.Averages[1])
		}
	}
}

func TestRankings_SexFilterAndLimit(t *testing.T) {
	router := NewRouter(testService(t))

	var resp rankResponse
	w := get(t, router, "/v1/datasets/prenoms-fr/rankings?periods=3&sexes=male&limit=1", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].Name != "leo" {
		t.Errorf("rows = %+v", resp.Rows)
	}
	if len(resp.Sexes) != 1 || resp.Sexes[0] != "male" {
		t.Errorf("sexes = %v", resp.Sexes)
	}
}

func TestRankings_LimitCapsEveryPeriod(t *testing.T) {
	var resp rankResponse
	w := get(t, NewRouter(testService(t)), "/v1/datasets/prenoms-fr/rankings?periods=3,1&limit=1", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(resp.Rows))
	}
	if len(resp.Rankings) != 2 {
		t.Fatalf("rankings = %d, want 2", len(resp.Rankings))
	}
	for _, rk := range resp.Rankings {
		if len(rk.Entries) != 1 || rk.Entries[0].Name != "marie" {
			t.Errorf("period %d entries = %+v, want only marie", rk.Period, rk.Entries)
		}
	}
}

func TestRankings_YearOverride(t *testing.T) {
	var resp rankResponse
	get(t, NewRouter(testService(t)), "/v1/datasets/prenoms-fr/rankings?periods=1&year=2023", &resp)
	if resp.CurrentYear != 2023 || len(resp.Rows) != 2 || resp.Rows[0].Name != "marie" {
		t.Errorf("resp = %+v", resp.Comparison)
	}
}

func TestRankings_Errors(t *testing.T) {
	router := NewRouter(testService(t))
	tests := []struct {
		path string
		code int
	}{
		{"/v1/datasets/prenoms-fr/rankings?periods=0", http.StatusBadRequest},
		{"/v1/datasets/prenoms-fr/rankings?periods=x", http.StatusBadRequest},
		{"/v1/datasets/prenoms-fr/rankings?year=soon", http.StatusBadRequest},
		{"/v1/datasets/prenoms-fr/rankings?limit=-1", http.StatusBadRequest},
		{"/v1/datasets/nope/rankings", http.StatusNotFound},
		{"/v1/datasets/nope/totals", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := get(t, router, tt.path, nil)
		if w.Code != tt.code {
			t.Errorf("%s: status = %d, want %d", tt.path, w.Code, tt.code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%s: body = %s", tt.path, w.Body)
		}
	}
}

func TestHealth(t *testing.T) {
	var resp healthResponse
	w := get(t, NewRouter(testService(t)), "/v1/health", &resp)
	if w.Code != http.StatusOK || resp.Status != "ok" || resp.Datasets != 1 || resp.Records == 0 {
		t.Errorf("health = %d %+v", w.Code, resp)
	}
}

func TestRequestID(t *testing.T) {
	router := NewRouter(testService(t))

	w := get(t, router, "/v1/health", nil)
	if id := w.Header().Get("X-Request-ID"); len(id) != 36 {
		t.Errorf("generated id = %q", id)
	}

	const given = "6f1c1a7e-3b2d-4c7a-9f1e-2d3c4b5a6978"
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-Request-ID", given)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != given {
		t.Errorf("id = %q, want client id", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/datasets", nil)
	w := httptest.NewRecorder()
	NewRouter(testService(t)).ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight = %d %v", w.Code, w.Header())
	}
}
