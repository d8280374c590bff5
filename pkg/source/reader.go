package source

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ReadRecords reads delimited registry rows. Rows the CSV parser rejects are
// kept as empty records so the normalizer counts them as dropped instead of
// aborting the whole file.
func ReadRecords(r io.Reader, f FormatSpec) ([]names.RawRecord, error) {
	f.applyDefaults()

	// Transcode non-UTF-8 encodings declared in the manifest.
	if enc := f.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.Comma = []rune(f.Delimiter)[0]
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	idx := [4]int{0, 1, 2, 3}
	if f.Header() {
		header, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("read header: %w", names.ErrNoData)
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		idx, err = resolveColumns(header, f.Columns)
		if err != nil {
			return nil, err
		}
	}

	var out []names.RawRecord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			out = append(out, names.RawRecord{Line: perr.Line})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		line, _ := cr.FieldPos(0)
		out = append(out, names.RawRecord{
			Line:  line,
			Sex:   field(record, idx[0]),
			Name:  field(record, idx[1]),
			Year:  field(record, idx[2]),
			Count: field(record, idx[3]),
		})
	}
	if len(out) == 0 {
		return nil, names.ErrNoData
	}
	return out, nil
}

// ReadFile reads a registry file. A .zip archive is searched for its first
// .csv member.
func ReadFile(path string, f FormatSpec) ([]names.RawRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return readZip(path, f)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer fh.Close()
	return ReadRecords(fh, f)
}

func readZip(path string, f FormatSpec) ([]names.RawRecord, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(zf.Name), ".csv") {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", zf.Name, err)
		}
		defer rc.Close()
		return ReadRecords(rc, f)
	}
	return nil, fmt.Errorf("no CSV found in %s: %w", path, names.ErrNoData)
}

func resolveColumns(header []string, cols ColumnSpec) ([4]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		// Strip a UTF-8 BOM on the first column.
		h = strings.TrimPrefix(h, "\ufeff")
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var idx [4]int
	for i, want := range []string{cols.Sex, cols.Name, cols.Year, cols.Count} {
		p, ok := pos[strings.ToLower(want)]
		if !ok {
			return idx, fmt.Errorf("column %q not found in header %v", want, header)
		}
		idx[i] = p
	}
	return idx, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
