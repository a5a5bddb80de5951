// Package report renders a run's result table to files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/haeorum-lab/sosik-monitor/internal/domain"
)

// Header row shared by the CSV and Excel writers.
var columns = []string{"Category", "Media", "Journalist", "Synopsis"}

// utf8BOM makes spreadsheet applications decode the CSV as UTF-8; the result
// tables carry Korean text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV renders the report rows as UTF-8-with-BOM CSV.
func WriteCSV(w io.Writer, rep domain.Report) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rep.Rows {
		record := []string{row.Category, row.Media, row.Journalist, row.Synopsis}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the report to a new file at path.
func SaveCSV(path string, rep domain.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	if err := WriteCSV(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
