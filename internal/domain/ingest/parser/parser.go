// Package parser turns raw spreadsheet bytes into row maps keyed by header.
// It supports .xlsx, .xls and .csv sources transparently, detecting the
// format from the filename extension or, failing that, the leading bytes.
package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
)

// Row is one data row keyed by its original header names. Cells are kept as
// raw strings; normalization happens downstream.
type Row map[string]string

// Format identifies a supported tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// ParseError means the source bytes could not be read as a tabular format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unreadable %s source: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Magic numbers for content-based detection when the extension is missing
// or wrong. XLSX is a ZIP container; XLS is an OLE compound file.
var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat picks the format from the filename extension, falling back to
// the leading bytes. Anything unrecognized is treated as CSV, the most
// lenient reader.
func DetectFormat(data []byte, filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".csv":
		return FormatCSV
	}

	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	if bytes.HasPrefix(data, oleMagic) {
		return FormatXLS
	}
	return FormatCSV
}

// Parse reads all rows from the source, dispatching on the detected format.
func Parse(data []byte, filename string) ([]Row, error) {
	switch DetectFormat(data, filename) {
	case FormatXLSX:
		return parseXLSX(data)
	case FormatXLS:
		return parseXLS(data)
	default:
		return parseCSV(data)
	}
}

func parseCSV(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Format: FormatCSV, Err: fmt.Errorf("empty source")}
	}

	delimiter := detectDelimiter(firstLine(data))

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delimiter
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		return r
	})

	maps, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatCSV, Err: err}
	}

	rows := make([]Row, 0, len(maps))
	for _, m := range maps {
		rows = append(rows, Row(m))
	}
	return rows, nil
}

// detectDelimiter counts candidate delimiters on the header line and takes
// the most frequent, defaulting to comma.
func detectDelimiter(line string) rune {
	best, bestCount := ',', 0
	for _, d := range []rune{';', '\t', ',', '|'} {
		if count := strings.Count(line, string(d)); count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

func firstLine(data []byte) string {
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		data = data[:idx]
	}
	return string(data)
}

// rowsFromMatrix converts a header row plus data rows into row maps. Short
// rows are padded with empty cells so every header resolves.
func rowsFromMatrix(matrix [][]string) []Row {
	if len(matrix) == 0 {
		return nil
	}

	headers := matrix[0]
	rows := make([]Row, 0, len(matrix)-1)
	for _, cells := range matrix[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
