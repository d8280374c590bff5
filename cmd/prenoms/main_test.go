package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/hazyhaar/prenoms-registry/pkg/source"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, found, err := loadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil || found {
		t.Fatalf("found = %v err = %v", found, err)
	}
	if cfg != defaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prenoms.yaml")
	writeFile(t, path, `addr: ":9000"
datasets_dir: /srv/prenoms
check_interval: 6h
log_level: debug
tls:
  enabled: true
`)
	cfg, found, err := loadConfig(path)
	if err != nil || !found {
		t.Fatalf("found = %v err = %v", found, err)
	}
	if cfg.Addr != ":9000" || cfg.DatasetsDir != "/srv/prenoms" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CheckInterval != 6*time.Hour {
		t.Errorf("CheckInterval = %v", cfg.CheckInterval)
	}
	if cfg.DefaultDataset != "prenoms-fr" || cfg.CacheDir != "cache" {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if !cfg.TLS.Enabled {
		t.Error("tls.enabled not read")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":    "addr: [",
		"log level": "log_level: loud\n",
		"half tls":  "tls:\n  enabled: true\n  cert_file: a.pem\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prenoms.yaml")
			writeFile(t, path, body)
			if _, _, err := loadConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestQueryFlagsParse(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	qf := queryFlags{sexes: "female", periods: "10, 3,3", limit: 5}
	q, err := qf.parse(now)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(q.sexes) != 1 || q.sexes[0] != names.Female {
		t.Errorf("sexes = %v", q.sexes)
	}
	if len(q.rank.Periods) != 2 || q.rank.Periods[0] != 3 || q.rank.Periods[1] != 10 {
		t.Errorf("periods = %v", q.rank.Periods)
	}
	if q.rank.CurrentYear != 2025 || q.limit != 5 {
		t.Errorf("year = %d limit = %d", q.rank.CurrentYear, q.limit)
	}

	q, err = (&queryFlags{year: 2010}).parse(now)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.rank.CurrentYear != 2010 || len(q.rank.Periods) != len(names.DefaultPeriods) {
		t.Errorf("q = %+v", q.rank)
	}

	if _, err := (&queryFlags{periods: "0"}).parse(now); !errors.Is(err, names.ErrInvalidPeriod) {
		t.Errorf("err = %v, want ErrInvalidPeriod", err)
	}
	if _, err := (&queryFlags{periods: "x"}).parse(now); err == nil {
		t.Error("expected error for non-numeric period")
	}
	if _, err := (&queryFlags{sexes: "other"}).parse(now); err == nil {
		t.Error("expected error for unknown sex")
	}
}

func TestParseToolArgs(t *testing.T) {
	args, err := parseToolArgs([]string{"periods=3,5", "limit=10", "dataset=prenoms-fr"})
	if err != nil {
		t.Fatalf("parseToolArgs: %v", err)
	}
	if args["periods"] != "3,5" || args["limit"] != 10 || args["dataset"] != "prenoms-fr" {
		t.Errorf("args = %v", args)
	}
	if _, err := parseToolArgs([]string{"limit"}); err == nil {
		t.Error("expected error without '='")
	}
}

func testConfig(t *testing.T) config {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "prenoms-fr")
	m := &source.Manifest{ID: "prenoms-fr", Version: "test", Jurisdiction: "fr", Source: "unit test", License: "CC0", DataFile: "data.csv", Format: source.NationalFormat()}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := source.WriteManifest(filepath.Join(dir, "manifest.yaml"), m); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "data.csv"), "sexe;preusuel;annais;nombre\n"+
		"2;MARIE;2022;100\n2;MARIE;2023;200\n2;MARIE;2024;300\n"+
		"1;LEO;2022;90\n1;LEO;2023;120\n1;LEO;2024;150\n")
	cfg := defaultConfig()
	cfg.DatasetsDir = root
	cfg.CacheDir = ""
	return cfg
}

func TestComputeAndExport(t *testing.T) {
	cfg := testConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	snap, err := openDataset(cfg, "", logger)
	if err != nil {
		t.Fatalf("openDataset: %v", err)
	}
	q, err := (&queryFlags{periods: "3", limit: 1}).parse(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	b, err := compute(snap, q)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if b.Dataset != "prenoms-fr" || len(b.Totals) != 3 {
		t.Errorf("bundle = %+v", b)
	}
	if len(b.Comparison.Rows) != 1 || b.Comparison.Rows[0].Name != "marie" {
		t.Errorf("rows = %+v", b.Comparison.Rows)
	}

	out := t.TempDir()
	files, err := writeExport(out, "xlsx", b)
	if err != nil {
		t.Fatalf("writeExport: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "prenoms-fr.xlsx" {
		t.Errorf("files = %v", files)
	}
	if _, err := os.Stat(files[0]); err != nil {
		t.Error(err)
	}

	files, err = writeExport(out, "csv", b)
	if err != nil || len(files) != 2 {
		t.Errorf("csv files = %v err = %v", files, err)
	}
}

func TestOpenDataset_Unknown(t *testing.T) {
	cfg := testConfig(t)
	if _, err := openDataset(cfg, "nope", slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("expected error for unknown dataset")
	}
}
