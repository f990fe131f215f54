package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/contact-cleaner/internal/types"
)

// Save writes the cleaned record set to path. Rows are written in the order
// given, one record per row, without a row-number column.
func Save(path string, rows []types.Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to flush output file %s: %w", path, err)
	}
	return nil
}

// Write emits contact CSV content to a writer: the fixed seven-column
// header followed by one record per row.
func Write(w io.Writer, rows []types.Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(types.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range rows {
		if err := writer.Write(rows[i].Values()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rows[i].RowNumber, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}

// OutputPath derives the cleaned-output filename from an input path:
// "contacts.csv" becomes "contacts_cleaned.csv".
func OutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	if ext == "" {
		ext = ".csv"
	}
	return base + "_cleaned" + ext
}
