package batch

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// workbook builds an .xlsx with rows written from A1 on the first sheet
func workbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("bad coordinates: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("SetCellValue failed: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf
}

func TestParseURLs(t *testing.T) {
	rows := [][]string{
		{"title", "URL", "note"},
		{"first", "https://youtu.be/a", ""},
		{"blank", "  ", "skip me"},
		{"second", " https://x.com/u/status/1 ", ""},
		{"short"},
		{"third", "https://www.instagram.com/p/abc/", "x"},
	}
	want := []string{
		"https://youtu.be/a",
		"https://x.com/u/status/1",
		"https://www.instagram.com/p/abc/",
	}

	tests := []struct {
		name   string
		column string
	}{
		{"default header", ""},
		{"header name", "url"},
		{"column letter", "B"},
		{"lowercase letter", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls, err := ParseURLs(workbook(t, rows), tt.column)
			if err != nil {
				t.Fatalf("ParseURLs failed: %v", err)
			}
			if strings.Join(urls, "|") != strings.Join(want, "|") {
				t.Errorf("Expected %v, got %v", want, urls)
			}
		})
	}
}

func TestParseURLsColumnNotFound(t *testing.T) {
	rows := [][]string{
		{"title", "link"},
		{"a", "https://youtu.be/a"},
	}

	for _, column := range []string{"url", "Z", "not a column"} {
		t.Run(column, func(t *testing.T) {
			_, err := ParseURLs(workbook(t, rows), column)
			if !errors.Is(err, ErrColumnNotFound) {
				t.Errorf("Expected ErrColumnNotFound, got %v", err)
			}
		})
	}
}

func TestParseURLsNoURLs(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"empty sheet", nil},
		{"header only", [][]string{{"url"}}},
		{"blank cells", [][]string{{"url", "x"}, {"", "1"}, {" ", "2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURLs(workbook(t, tt.rows), "url")
			if !errors.Is(err, ErrNoURLs) {
				t.Errorf("Expected ErrNoURLs, got %v", err)
			}
		})
	}
}

func TestParseURLsTooMany(t *testing.T) {
	rows := [][]string{{"url"}}
	for i := 0; i <= MaxRows; i++ {
		rows = append(rows, []string{fmt.Sprintf("https://youtu.be/%d", i)})
	}

	if _, err := ParseURLs(workbook(t, rows), "url"); !errors.Is(err, ErrTooManyURLs) {
		t.Errorf("Expected ErrTooManyURLs, got %v", err)
	}
}

func TestParseURLsNotAWorkbook(t *testing.T) {
	if _, err := ParseURLs(strings.NewReader("url\nhttps://youtu.be/a\n"), "url"); !errors.Is(err, ErrInvalidWorkbook) {
		t.Errorf("Expected ErrInvalidWorkbook, got %v", err)
	}
}

func TestColumnToIndex(t *testing.T) {
	tests := []struct {
		column string
		want   int
	}{
		{"A", 0},
		{"b", 1},
		{"Z", 25},
		{"AA", 26},
		{"", -1},
		{"A1", -1},
		{"ABCD", -1},
	}
	for _, tt := range tests {
		if got := columnToIndex(tt.column); got != tt.want {
			t.Errorf("columnToIndex(%q) = %d, want %d", tt.column, got, tt.want)
		}
	}
}
