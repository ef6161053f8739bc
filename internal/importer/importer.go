// Package importer reads flashcards from spreadsheets.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

// Config tells which cells hold the two sides of a card.
type Config struct {
	// Sheet defaults to the first sheet of the workbook.
	Sheet       string
	FrontColumn string
	BackColumn  string
	// StartRow is 1-based; rows above it are headers.
	StartRow int
}

func DefaultConfig() Config {
	return Config{
		FrontColumn: "A",
		BackColumn:  "B",
		StartRow:    2,
	}
}

// RowError is a row that could not be turned into a flashcard.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

type Result struct {
	Inputs  []flashcard.Input
	Skipped []RowError
}

// ReadFile reads an .xlsx or .csv file.
func ReadFile(path string, cfg Config) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV(file, cfg)
	case ".xlsx":
		return ReadXLSX(file, cfg)
	default:
		return Result{}, fmt.Errorf("unsupported file type %q: expected .xlsx or .csv", ext)
	}
}

func ReadXLSX(r io.Reader, cfg Config) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("excelize.OpenReader() > %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Result{}, fmt.Errorf("GetRows(%s) > %w", sheet, err)
	}
	return convertRows(rows, cfg)
}

func ReadCSV(r io.Reader, cfg Config) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("csv.Read() > %w", err)
		}
		rows = append(rows, record)
	}
	return convertRows(rows, cfg)
}

func convertRows(rows [][]string, cfg Config) (Result, error) {
	frontIndex, err := columnIndex(cfg.FrontColumn)
	if err != nil {
		return Result{}, err
	}
	backIndex, err := columnIndex(cfg.BackColumn)
	if err != nil {
		return Result{}, err
	}
	startRow := max(cfg.StartRow, 1)

	var result Result
	for i, row := range rows {
		rowNumber := i + 1
		if rowNumber < startRow {
			continue
		}
		front := strings.TrimSpace(cell(row, frontIndex))
		back := strings.TrimSpace(cell(row, backIndex))
		if front == "" && back == "" {
			continue
		}

		in := flashcard.Input{Front: front, Back: back, Source: flashcard.SourceManual}
		if err := store.ValidateInput(in); err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNumber, Reason: err.Error()})
			continue
		}
		result.Inputs = append(result.Inputs, in)
	}
	return result, nil
}

func columnIndex(column string) (int, error) {
	number, err := excelize.ColumnNameToNumber(column)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", column, err)
	}
	return number - 1, nil
}

func cell(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}
