// Package wordlist reads known-word lists from spreadsheets, CSV files and
// plain text files.
package wordlist

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phrazzld/wordpath-api/internal/domain"
)

// ErrUnsupportedFormat is returned for files that are not .xlsx, .csv or .txt.
var ErrUnsupportedFormat = errors.New("unsupported word list format")

// ImportConfig selects where words live inside a spreadsheet or CSV file.
type ImportConfig struct {
	WordColumn string // column letter holding the word, e.g. "A"
	SheetName  string // sheet to read; empty means the first sheet
	StartRow   int    // first row to read (1-based)
}

// DefaultImportConfig reads column A of the first sheet, skipping a header row.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn: "A",
		StartRow:   2,
	}
}

// ImportResult holds the normalized words read from a file.
type ImportResult struct {
	Words          []string
	TotalProcessed int
	Skipped        int
}

func (r *ImportResult) add(raw string) {
	r.TotalProcessed++
	word := domain.NormalizeWord(raw)
	if word == "" {
		r.Skipped++
		return
	}
	r.Words = append(r.Words, word)
}

// ReadFile reads words from path. Spreadsheets and CSV files use cfg; text
// files hold one word per line and ignore cfg.
func ReadFile(path string, cfg ImportConfig) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readExcel(path, cfg)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f, cfg)
	case ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open text file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadLines(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readExcel(path string, cfg ImportConfig) (*ImportResult, error) {
	col, err := columnIndex(cfg.WordColumn)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := cfg.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &ImportResult{Words: []string{}}, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	result := &ImportResult{Words: []string{}}
	for i, row := range rows {
		if i+1 < cfg.StartRow {
			continue
		}
		result.add(cell(row, col))
	}
	return result, nil
}

// ReadCSV reads words from CSV data using cfg's column and start row.
func ReadCSV(r io.Reader, cfg ImportConfig) (*ImportResult, error) {
	col, err := columnIndex(cfg.WordColumn)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ImportResult{Words: []string{}}
	for rowNum := 1; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum, err)
		}
		if rowNum < cfg.StartRow {
			continue
		}
		result.add(cell(row, col))
	}
	return result, nil
}

// ReadLines reads one word per line. Blank lines count as skipped.
func ReadLines(r io.Reader) (*ImportResult, error) {
	result := &ImportResult{Words: []string{}}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		result.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return result, nil
}

func columnIndex(column string) (int, error) {
	if column == "" {
		column = "A"
	}
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(column))
	if err != nil {
		return 0, fmt.Errorf("invalid word column %q: %w", column, err)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
