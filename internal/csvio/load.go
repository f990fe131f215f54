// Package csvio reads and writes the seven-column contact CSV format.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/contact-cleaner/internal/types"
)

// utf8BOM is tolerated at the start of input files; spreadsheet exports
// commonly prepend it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomStrippingReader drops a leading UTF-8 byte-order mark, if present.
type bomStrippingReader struct {
	inner   io.Reader
	checked bool
}

func (b *bomStrippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		buffered := bufio.NewReader(b.inner)
		if head, err := buffered.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = buffered.Discard(len(utf8BOM))
		}
		b.inner = buffered
	}
	return b.inner.Read(p)
}

// IngestionError represents a dataset that is missing, malformed, or has the
// wrong column set. It is always raised before any capability is invoked.
type IngestionError struct {
	Path    string
	Message string
	Cause   error
}

func (e *IngestionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to ingest %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to ingest %s: %s", e.Path, e.Message)
}

func (e *IngestionError) Unwrap() error {
	return e.Cause
}

// Load reads a contact CSV file. The header must match the seven expected
// columns exactly; empty cells are preserved as empty strings. Row numbers
// are assigned 1-based in file order, skipping no values.
func Load(path string) ([]types.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IngestionError{Path: path, Message: "cannot open file", Cause: err}
	}
	defer file.Close()

	rows, err := Read(file)
	if err != nil {
		var ingErr *IngestionError
		if errors.As(err, &ingErr) {
			ingErr.Path = path
			return nil, ingErr
		}
		return nil, &IngestionError{Path: path, Message: "cannot read file", Cause: err}
	}
	return rows, nil
}

// Read parses contact CSV content from a reader. Exported separately from
// Load so tests and future transports can ingest without a file.
func Read(r io.Reader) ([]types.Row, error) {
	reader := csv.NewReader(&bomStrippingReader{inner: r})
	reader.FieldsPerRecord = len(types.Columns())

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &IngestionError{Message: "file is empty"}
		}
		return nil, &IngestionError{Message: "cannot read header", Cause: err}
	}

	expected := types.Columns()
	for i := range expected {
		if strings.TrimSpace(header[i]) != expected[i] {
			return nil, &IngestionError{Message: fmt.Sprintf(
				"unexpected columns: want %v, got %v", expected, header)}
		}
	}

	var rows []types.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &IngestionError{Message: fmt.Sprintf("malformed record after row %d", len(rows)), Cause: err}
		}

		row := types.Row{RowNumber: len(rows) + 1}
		for i, column := range expected {
			row.SetField(column, record[i])
		}
		rows = append(rows, row)
	}

	return rows, nil
}
