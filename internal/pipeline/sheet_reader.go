package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"i4e-backend/internal/domain/career"

	"github.com/xuri/excelize/v2"
)

const placeholderCell = "-"

var zipMagic = []byte("PK\x03\x04")

// RawRow maps a header to every non-blank cell under it, left to right.
// Headers that were present but blank on this row map to an empty list.
type RawRow struct {
	Number int
	Cells  map[string][]career.Field
}

// Values returns the cell texts under header.
func (r RawRow) Values(header string) []string {
	fields := r.Cells[header]
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.String())
	}
	return out
}

func (r RawRow) Empty() bool {
	for _, fields := range r.Cells {
		if len(fields) > 0 {
			return false
		}
	}
	return true
}

// ReadSheet parses the first sheet of an xlsx workbook, or a CSV file when
// the bytes are not a zip container. Row 0 is the header row.
func ReadSheet(data []byte) ([]RawRow, error) {
	if len(data) == 0 {
		return nil, &MalformedInputError{Reason: "empty file"}
	}

	var (
		grid [][]string
		err  error
	)
	if IsWorkbook(data) {
		grid, err = readWorkbook(data)
	} else {
		grid, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, &MalformedInputError{Reason: "no header row"}
	}

	headers := make([]string, len(grid[0]))
	anyHeader := false
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != "" {
			anyHeader = true
		}
	}
	if !anyHeader {
		return nil, &MalformedInputError{Reason: "header row is blank"}
	}

	rows := make([]RawRow, 0, len(grid)-1)
	for i, cells := range grid[1:] {
		row := RawRow{Number: i + 2, Cells: make(map[string][]career.Field, len(headers))}
		for col, h := range headers {
			if h == "" {
				continue
			}
			if _, seen := row.Cells[h]; !seen {
				row.Cells[h] = []career.Field{}
			}
			if col >= len(cells) || isBlankCell(cells[col]) {
				continue
			}
			row.Cells[h] = append(row.Cells[h], career.Text(cells[col]))
		}
		if row.Empty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// IsWorkbook reports whether data is a zip container, which is what an
// xlsx file is.
func IsWorkbook(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

func isBlankCell(v string) bool {
	t := strings.TrimSpace(v)
	return t == "" || t == placeholderCell
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedInputError{Reason: "unreadable workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MalformedInputError{Reason: "workbook has no sheets"}
	}
	grid, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &MalformedInputError{Reason: "unreadable sheet " + sheets[0], Err: err}
	}
	return grid, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, &MalformedInputError{Reason: "binary content is neither xlsx nor csv"}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var grid [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Reason: "unreadable csv", Err: err}
		}
		grid = append(grid, rec)
	}
	return grid, nil
}
