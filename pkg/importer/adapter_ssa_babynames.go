package importer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/hazyhaar/prenoms-registry/pkg/source"
)

func init() {
	Register(&ssaBabyNamesAdapter{})
}

// ssaBabyNamesAdapter converts the SSA yobYYYY.txt files (Name,Sex,Count, one
// file per year) into the national row layout.
type ssaBabyNamesAdapter struct{}

func (a *ssaBabyNamesAdapter) ID() string          { return "ssa-babynames-us" }
func (a *ssaBabyNamesAdapter) DatasetID() string   { return "firstnames-us" }
func (a *ssaBabyNamesAdapter) Description() string { return "SSA baby names US (Social Security Administration)" }
func (a *ssaBabyNamesAdapter) DefaultURL() string  { return "https://www.ssa.gov/oact/babynames/names.zip" }
func (a *ssaBabyNamesAdapter) License() string     { return "Public Domain" }

func (a *ssaBabyNamesAdapter) Import(ctx context.Context, sourceURL, outputDir string) error {
	dlDir := filepath.Join(outputDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return err
	}
	defer os.RemoveAll(dlDir)

	zipPath := filepath.Join(dlDir, "names.zip")
	fmt.Printf("  telechargement %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, zipPath); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	files, err := unzipFile(zipPath, dlDir)
	if err != nil {
		return fmt.Errorf("unzip: %w", err)
	}

	dir := filepath.Join(outputDir, a.DatasetID())
	if err := ensureDir(dir); err != nil {
		return err
	}
	w, err := newRowWriter(filepath.Join(dir, "data.csv"))
	if err != nil {
		return err
	}
	for _, f := range files {
		year, ok := ssaYear(filepath.Base(f))
		if !ok {
			continue
		}
		if err := convertSSAFile(f, year, w); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	fmt.Printf("  %d lignes converties\n", w.n)

	return finishDataset(dir, &source.Manifest{
		ID:           a.DatasetID(),
		Version:      time.Now().Format("2006-01"),
		Jurisdiction: "us",
		Source:       "SSA Baby Names",
		SourceURL:    sourceURL,
		License:      a.License(),
		DataFile:     "data.csv",
		Format:       source.NationalFormat(),
	})
}

// ssaYear extracts the year from a yobYYYY.txt file name.
func ssaYear(base string) (int, bool) {
	if !strings.HasPrefix(base, "yob") || !strings.HasSuffix(base, ".txt") {
		return 0, false
	}
	y, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, "yob"), ".txt"))
	if err != nil {
		return 0, false
	}
	return y, true
}

func convertSSAFile(path string, year int, w *rowWriter) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ",", 3)
		if len(parts) != 3 {
			continue
		}
		sex, err := names.ParseSex(parts[1])
		if err != nil {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			continue
		}
		if err := w.write(sex, strings.TrimSpace(parts[0]), year, count); err != nil {
			return err
		}
	}
	return scanner.Err()
}
