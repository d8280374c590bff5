package export

import (
	"fmt"
	"strconv"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/hazyhaar/prenoms-registry/pkg/render"
	"github.com/xuri/excelize/v2"
)

const (
	totalsSheet  = "totals"
	rankingSheet = "ranking"
)

// WriteXLSX writes a workbook with a totals sheet and a ranking sheet whose
// rows are filled with their category colour.
func WriteXLSX(path string, b Bundle) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", totalsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(rankingSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	header, rows := totalsTable(b)
	if err := writeSheet(f, totalsSheet, header, rows, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(totalsSheet, "A", "C", 16); err != nil {
		return err
	}

	header, rows = rankingTable(b.Comparison)
	if err := writeSheet(f, rankingSheet, header, rows, headerStyle); err != nil {
		return err
	}
	if err := fillCategories(f, b.Comparison, len(header)); err != nil {
		return err
	}
	if err := f.SetColWidth(rankingSheet, "B", "B", 24); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// writeSheet writes header on row 1 and rows below. Numeric cells are
// stored as numbers.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	for i, row := range rows {
		values := make([]any, len(row))
		for j, cell := range row {
			if n, err := strconv.Atoi(cell); err == nil {
				values[j] = n
			} else if cell != "" {
				values[j] = cell
			}
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func fillCategories(f *excelize.File, c *names.Comparison, cols int) error {
	if c == nil {
		return nil
	}
	styles := make(map[names.Category]int)
	for _, cat := range []names.Category{names.CategoryFemale, names.CategoryMale, names.CategoryMixed} {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{string(render.CategoryColor(cat))}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("%s style: %w", cat, err)
		}
		styles[cat] = id
	}

	last, _ := excelize.ColumnNumberToName(cols)
	for i, row := range c.Rows {
		id, ok := styles[row.Category]
		if !ok {
			continue
		}
		r := i + 2
		if err := f.SetCellStyle(rankingSheet, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", last, r), id); err != nil {
			return fmt.Errorf("ranking row %d style: %w", r, err)
		}
	}
	return nil
}
