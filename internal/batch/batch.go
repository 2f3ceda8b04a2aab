// Package batch reads download URLs out of spreadsheet uploads.
package batch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxRows caps how many URLs one upload may submit
const MaxRows = 500

// DefaultColumn is the header looked up when no column is given
const DefaultColumn = "url"

var (
	// ErrColumnNotFound is returned when the column matches neither a header nor a column letter
	ErrColumnNotFound = errors.New("url column not found")

	// ErrNoURLs is returned when the sheet holds no non-blank URL cells
	ErrNoURLs = errors.New("no urls found")

	// ErrInvalidWorkbook is returned when the upload is not a readable .xlsx file
	ErrInvalidWorkbook = errors.New("invalid workbook")

	// ErrTooManyURLs is returned when the sheet holds more than MaxRows URLs
	ErrTooManyURLs = fmt.Errorf("more than %d urls in one upload", MaxRows)
)

// ParseURLs reads the first sheet of an .xlsx workbook and returns the
// non-blank cells of the given column. The first row is the header row;
// column may be a header name (case-insensitive) or a column letter.
func ParseURLs(r io.Reader, column string) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets: %w", ErrNoURLs)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoURLs
	}

	if strings.TrimSpace(column) == "" {
		column = DefaultColumn
	}
	index := findColumnIndex(column, rows[0])
	if index < 0 || index >= widest(rows) {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}

	var urls []string
	for _, row := range rows[1:] {
		if index >= len(row) {
			continue
		}
		url := strings.TrimSpace(row[index])
		if url == "" {
			continue
		}
		if len(urls) == MaxRows {
			return nil, ErrTooManyURLs
		}
		urls = append(urls, url)
	}

	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	return urls, nil
}

// findColumnIndex looks column up by header name first, then as a column letter
func findColumnIndex(column string, headers []string) int {
	column = strings.TrimSpace(column)
	for i, header := range headers {
		if strings.EqualFold(strings.TrimSpace(header), column) {
			return i
		}
	}
	return columnToIndex(column)
}

// columnToIndex converts a column letter (A, B, ..., AA) to a 0-based index
func columnToIndex(column string) int {
	// XFD is the last column excelize allows
	if column == "" || len(column) > 3 {
		return -1
	}
	index, err := excelize.ColumnNameToNumber(strings.ToUpper(column))
	if err != nil {
		return -1
	}
	return index - 1
}

func widest(rows [][]string) int {
	n := 0
	for _, row := range rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}
