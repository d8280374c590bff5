// Package export writes registry results to CSV files and XLSX workbooks.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
)

// Bundle is what one export run writes.
type Bundle struct {
	Dataset    string
	Sexes      names.SexFilter
	Totals     []names.YearlyTotal
	Comparison *names.Comparison
}

const (
	totalsFile  = "totals.csv"
	rankingFile = "ranking.csv"
)

func totalsTable(b Bundle) (header []string, rows [][]string) {
	header = []string{"year", "total_births", "distinct_names"}
	rows = make([][]string, len(b.Totals))
	for i, t := range b.Totals {
		rows[i] = []string{strconv.Itoa(t.Year), strconv.Itoa(t.TotalBirths), strconv.Itoa(t.DistinctNames)}
	}
	return header, rows
}

// rankingTable has one average column per period. Missing averages are
// empty cells.
func rankingTable(c *names.Comparison) (header []string, rows [][]string) {
	header = []string{"rank", "name"}
	if c == nil {
		return append(header, "category"), nil
	}
	for _, p := range c.Periods {
		header = append(header, fmt.Sprintf("avg_%dy", p))
	}
	header = append(header, "category")

	rows = make([][]string, len(c.Rows))
	for i, row := range c.Rows {
		cells := []string{strconv.Itoa(i + 1), row.Name}
		for _, avg := range row.Averages {
			if avg.Valid {
				cells = append(cells, strconv.Itoa(avg.Count))
			} else {
				cells = append(cells, "")
			}
		}
		rows[i] = append(cells, string(row.Category))
	}
	return header, rows
}

// WriteCSV writes totals.csv and ranking.csv into dir and returns their
// paths.
func WriteCSV(dir string, b Bundle) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	totalsPath := filepath.Join(dir, totalsFile)
	header, rows := totalsTable(b)
	if err := writeCSV(totalsPath, header, rows); err != nil {
		return nil, err
	}

	rankingPath := filepath.Join(dir, rankingFile)
	header, rows = rankingTable(b.Comparison)
	if err := writeCSV(rankingPath, header, rows); err != nil {
		return nil, err
	}
	return []string{totalsPath, rankingPath}, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header for %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows for %s: %w", path, err)
	}
	return f.Close()
}
