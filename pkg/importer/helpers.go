package importer

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/hazyhaar/prenoms-registry/pkg/source"
)

const downloadAttempts = 3

// downloadFile downloads url to dest with retries and timeout.
func downloadFile(ctx context.Context, url, dest string) error {
	client := &http.Client{Timeout: 10 * time.Minute}

	var lastErr error
	for attempt := 0; attempt < downloadAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = fetchOnce(ctx, client, url, dest)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("download %s failed after %d attempts: %w", url, downloadAttempts, lastErr)
}

func fetchOnce(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// unzipFile extracts a ZIP archive to destDir and returns the extracted
// file paths. Entry names are flattened to their base name.
func unzipFile(src, destDir string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var paths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))
		if err := extractEntry(f, destPath); err != nil {
			return nil, err
		}
		paths = append(paths, destPath)
	}
	return paths, nil
}

func extractEntry(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}

// firstWithSuffix returns the first path whose name ends with suffix
// (case-insensitive).
func firstWithSuffix(paths []string, suffix string) string {
	for _, p := range paths {
		if strings.HasSuffix(strings.ToLower(p), suffix) {
			return p
		}
	}
	return ""
}

// rowWriter writes registry rows in the national sexe;preusuel;annais;nombre
// layout.
type rowWriter struct {
	f  *os.File
	cw *csv.Writer
	n  int
}

func newRowWriter(path string) (*rowWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create data file: %w", err)
	}
	cw := csv.NewWriter(f)
	cw.Comma = ';'
	if err := cw.Write([]string{"sexe", "preusuel", "annais", "nombre"}); err != nil {
		f.Close()
		return nil, err
	}
	return &rowWriter{f: f, cw: cw}, nil
}

func (w *rowWriter) write(sex names.Sex, name string, year, count int) error {
	w.n++
	return w.cw.Write([]string{strconv.Itoa(int(sex)), name, strconv.Itoa(year), strconv.Itoa(count)})
}

func (w *rowWriter) Close() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// finishDataset validates the data file the adapter produced by running it
// through the normalizer, then writes the manifest next to it.
func finishDataset(dir string, m *source.Manifest) error {
	raws, err := source.ReadFile(filepath.Join(dir, m.DataFile), m.Format)
	if err != nil {
		return fmt.Errorf("validate data: %w", err)
	}
	tbl, _, rep, err := names.NormalizeAndAggregate(raws, m.Format.NormalizeOptions())
	if err != nil {
		return fmt.Errorf("validate data: %w", err)
	}
	first, last, _ := tbl.YearSpan()
	fmt.Printf("  %d lignes, %d prenoms, %d-%d, %d lignes ignorees\n",
		rep.Read, tbl.NameCount(), first, last, rep.Dropped())

	return source.WriteManifest(filepath.Join(dir, "manifest.yaml"), m)
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
