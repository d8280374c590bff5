package source

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
)

const nationalSample = "sexe;preusuel;annais;nombre\n" +
	"1;_PRENOMS_RARES;1900;1249\n" +
	"2;MARIE;2020;100\n" +
	"2;Marie;2020;50\n" +
	"2;MARIE;XXXX;12\n" +
	"1;PAUL;2019\n"

func TestReadRecords_National(t *testing.T) {
	recs, err := ReadRecords(strings.NewReader(nationalSample), NationalFormat())
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("records = %d, want 5", len(recs))
	}
	if recs[1].Name != "MARIE" || recs[1].Year != "2020" || recs[1].Count != "100" || recs[1].Sex != "2" {
		t.Errorf("record[1] = %+v", recs[1])
	}
	if recs[1].Line != 3 {
		t.Errorf("record[1] line = %d, want 3", recs[1].Line)
	}
	if recs[4].Count != "" {
		t.Errorf("short row should have an empty count, got %q", recs[4].Count)
	}

	tbl, _, rep, err := names.NormalizeAndAggregate(recs, NationalFormat().NormalizeOptions())
	if err != nil {
		t.Fatalf("NormalizeAndAggregate: %v", err)
	}
	if rep.SentinelYear != 1 || rep.MissingField != 1 {
		t.Errorf("report = %+v", rep)
	}
	if s := names.SeriesForName(tbl, "marie"); s.Total() != 150 {
		t.Errorf("marie total = %d, want 150", s.Total())
	}
}

func TestReadRecords_ReorderedColumnsAndBOM(t *testing.T) {
	data := "\ufeffannais,nombre,preusuel,sexe\n2001,7,Léo,1\n"
	f := NationalFormat()
	f.Delimiter = ","
	recs, err := ReadRecords(strings.NewReader(data), f)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	want := names.RawRecord{Line: 2, Sex: "1", Name: "Léo", Year: "2001", Count: "7"}
	if recs[0] != want {
		t.Errorf("record = %+v, want %+v", recs[0], want)
	}
}

func TestReadRecords_NoHeader(t *testing.T) {
	f := NationalFormat().WithHeader(false)
	recs, err := ReadRecords(strings.NewReader("2;Jade;2021;30\n"), f)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if recs[0].Name != "Jade" || recs[0].Count != "30" {
		t.Errorf("record = %+v", recs[0])
	}
}

func TestReadRecords_Latin1(t *testing.T) {
	// "Hélène" in ISO-8859-1.
	data := []byte("sexe;preusuel;annais;nombre\n2;H\xe9l\xe8ne;1950;300\n")
	f := NationalFormat()
	f.Encoding = "iso-8859-1"
	recs, err := ReadRecords(strings.NewReader(string(data)), f)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if recs[0].Name != "Hélène" {
		t.Errorf("name = %q, want Hélène", recs[0].Name)
	}
	if got := names.Canonicalize(recs[0].Name); got != "helene" {
		t.Errorf("canonical = %q, want helene", got)
	}
}

func TestReadRecords_MissingColumn(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("sexe;prenom;annais;nombre\n"), NationalFormat())
	if err == nil || !strings.Contains(err.Error(), "preusuel") {
		t.Errorf("err = %v, want missing preusuel column", err)
	}
}

func TestReadRecords_Empty(t *testing.T) {
	for _, data := range []string{"", "sexe;preusuel;annais;nombre\n"} {
		_, err := ReadRecords(strings.NewReader(data), NationalFormat())
		if !errors.Is(err, names.ErrNoData) {
			t.Errorf("ReadRecords(%q) err = %v, want ErrNoData", data, err)
		}
	}
}

func TestReadRecords_UnsupportedEncoding(t *testing.T) {
	f := NationalFormat()
	f.Encoding = "klingon"
	if _, err := ReadRecords(strings.NewReader(nationalSample), f); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestReadFile_Zip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nat.zip")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(out)
	w, _ := zw.Create("readme.txt")
	w.Write([]byte("not data"))
	w, _ = zw.Create("nat2020.csv")
	w.Write([]byte(nationalSample))
	zw.Close()
	out.Close()

	recs, err := ReadFile(path, NationalFormat())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(recs) != 5 {
		t.Errorf("records = %d, want 5", len(recs))
	}
}

func TestReadFile_NotFound(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"), NationalFormat()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	m := &Manifest{ID: "prenoms-fr", Version: "2026-02", Jurisdiction: "fr", Source: "INSEE", License: "CC0", Format: NationalFormat()}
	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if loaded.DataFile != "data.csv" {
		t.Errorf("DataFile = %q, want data.csv default", loaded.DataFile)
	}
	if loaded.Format.Columns.Name != "preusuel" || loaded.Format.SentinelYear != "XXXX" || !loaded.Format.Header() {
		t.Errorf("format = %+v", loaded.Format)
	}
}

func TestLoadManifest_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	os.WriteFile(path, []byte("id: minimal\n"), 0o644)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Format.Delimiter != ";" || m.Format.Columns.Year != "annais" {
		t.Errorf("defaults not applied: %+v", m.Format)
	}
}

func TestLoadManifest_MissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	os.WriteFile(path, []byte("version: x\n"), 0o644)
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected error for manifest without id")
	}
}

func TestLoadManifest_HeaderAndRareBucket(t *testing.T) {
	dir := t.TempDir()
	write := func(body string) *Manifest {
		t.Helper()
		path := filepath.Join(dir, "manifest.yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		m, err := LoadManifest(path)
		if err != nil {
			t.Fatalf("LoadManifest: %v", err)
		}
		return m
	}

	m := write("id: minimal\n")
	if !m.Format.Header() {
		t.Error("omitted has_header should default to true")
	}
	if opts := m.Format.NormalizeOptions(); opts.RareBucket != names.DefaultRareBucket || opts.NoRareBucket {
		t.Errorf("omitted rare_bucket: opts = %+v", opts)
	}
	recs, err := ReadRecords(strings.NewReader(nationalSample), m.Format)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != 5 {
		t.Errorf("records = %d, want 5 (header not read as data)", len(recs))
	}

	m = write("id: raw\nformat:\n  has_header: false\n  rare_bucket: \"\"\n")
	if m.Format.Header() {
		t.Error("explicit has_header: false was overridden")
	}
	if opts := m.Format.NormalizeOptions(); !opts.NoRareBucket {
		t.Errorf("rare_bucket: \"\" should disable the bucket, opts = %+v", opts)
	}

	m = write("id: be\nformat:\n  rare_bucket: _rares\n")
	if opts := m.Format.NormalizeOptions(); opts.RareBucket != "_rares" {
		t.Errorf("RareBucket = %q, want _rares", opts.RareBucket)
	}
}

func TestNormalizeOptions_NoRareBucket(t *testing.T) {
	recs, err := ReadRecords(strings.NewReader(nationalSample), NationalFormat())
	if err != nil {
		t.Fatal(err)
	}
	tbl, _, _, err := names.NormalizeAndAggregate(recs, NationalFormat().WithRareBucket("").NormalizeOptions())
	if err != nil {
		t.Fatalf("NormalizeAndAggregate: %v", err)
	}
	if tbl.RareBucket != "" {
		t.Errorf("RareBucket = %q, want disabled", tbl.RareBucket)
	}
	if tbl.NameCount() != 2 {
		t.Errorf("NameCount = %d, want 2 (marie and the former bucket)", tbl.NameCount())
	}
}
