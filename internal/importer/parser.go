package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/quickmark/qr-management/internal"
)

// ParseFile dispatches on the file extension. CSV parses via encoding/csv;
// .xlsx and .xls go through the spreadsheet reader, first sheet only.
func ParseFile(r io.Reader, filename string, maxRows int) (*ParsedFile, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r, maxRows)
	case ".xlsx", ".xls":
		return ParseSpreadsheet(r, maxRows)
	default:
		return nil, internal.NewValidationError("unsupported file format, expected .csv or .xlsx", internal.ErrCodeValidationFailed)
	}
}

// ParseCSV reads a header row plus data rows into keyed records. Rows where
// every cell is blank are dropped; an import with nothing left is an error.
func ParseCSV(r io.Reader, maxRows int) (*ParsedFile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, internal.NewValidationError("file is empty or has no header row", internal.ErrCodeEmptyImportFile).WithCause(err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	parsed := &ParsedFile{Headers: headers}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, internal.NewValidationError("failed to parse CSV file", internal.ErrCodeValidationFailed).WithCause(err)
		}

		parsed.Rows = append(parsed.Rows, recordToRow(headers, record))
		if maxRows > 0 && len(parsed.Rows) > maxRows {
			return nil, internal.NewValidationError(
				fmt.Sprintf("file exceeds the %d row import limit", maxRows),
				internal.ErrCodeValidationFailed)
		}
	}

	return finishParse(parsed)
}

// ParseSpreadsheet reads the first sheet of a workbook.
func ParseSpreadsheet(r io.Reader, maxRows int) (*ParsedFile, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, internal.NewValidationError("failed to open spreadsheet", internal.ErrCodeValidationFailed).WithCause(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, internal.NewValidationError("workbook has no sheets", internal.ErrCodeEmptyImportFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, internal.NewValidationError("failed to read spreadsheet rows", internal.ErrCodeValidationFailed).WithCause(err)
	}
	if len(rows) == 0 {
		return nil, internal.NewValidationError("file is empty or has no header row", internal.ErrCodeEmptyImportFile)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	parsed := &ParsedFile{Headers: headers}
	for _, record := range rows[1:] {
		parsed.Rows = append(parsed.Rows, recordToRow(headers, record))
		if maxRows > 0 && len(parsed.Rows) > maxRows {
			return nil, internal.NewValidationError(
				fmt.Sprintf("file exceeds the %d row import limit", maxRows),
				internal.ErrCodeValidationFailed)
		}
	}

	return finishParse(parsed)
}

func recordToRow(headers []string, record []string) Row {
	row := make(Row, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			row[h] = strings.TrimSpace(record[i])
		} else {
			row[h] = ""
		}
	}
	return row
}

func finishParse(parsed *ParsedFile) (*ParsedFile, error) {
	filtered := parsed.Rows[:0]
	for _, row := range parsed.Rows {
		if !isEmptyRow(row) {
			filtered = append(filtered, row)
		}
	}
	parsed.Rows = filtered

	if len(parsed.Rows) == 0 {
		return nil, internal.NewValidationError("file contains no usable rows", internal.ErrCodeEmptyImportFile)
	}
	return parsed, nil
}
