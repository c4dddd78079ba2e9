package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/example/revise/internal/database"
	"github.com/example/revise/pkg/models"
)

// ImportConfig defines where card fields live in the spreadsheet.
type ImportConfig struct {
	FilePath    string // Path to the Excel or CSV file.
	FrontColumn string // Column with the card front.
	BackColumn  string // Column with the card back.
	DeckColumn  string // Column with the deck name (optional).
	SheetName   string // Sheet to import from.
	StartRow    int    // First data row (1-based), letting callers skip a header.
}

// DefaultImportConfig returns the conventional front/back/deck layout.
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:    path,
		FrontColumn: "A",
		BackColumn:  "B",
		DeckColumn:  "C",
		SheetName:   "Sheet1",
		StartRow:    2,
	}
}

// ImportResult summarizes an import run.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Importer bulk-loads flashcards into the repository. Imported cards start
// in the New state, immediately eligible for introduction.
type Importer struct {
	cards database.CardRepository
}

func NewImporter(cards database.CardRepository) *Importer {
	return &Importer{cards: cards}
}

// ImportCards reads cards for the given user from an .xlsx or .csv file.
func (i *Importer) ImportCards(ctx context.Context, cfg ImportConfig, userID int64, now time.Time) (*ImportResult, error) {
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		return i.importFromCSV(ctx, cfg, userID, now)
	}
	return i.importFromExcel(ctx, cfg, userID, now)
}

func (i *Importer) importFromExcel(ctx context.Context, cfg ImportConfig, userID int64, now time.Time) (*ImportResult, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", cfg.SheetName, err)
	}

	frontIdx, err := columnIndex(cfg.FrontColumn)
	if err != nil {
		return nil, err
	}
	backIdx, err := columnIndex(cfg.BackColumn)
	if err != nil {
		return nil, err
	}
	deckIdx := -1
	if cfg.DeckColumn != "" {
		if deckIdx, err = columnIndex(cfg.DeckColumn); err != nil {
			return nil, err
		}
	}

	result := &ImportResult{}
	start := cfg.StartRow
	if start < 1 {
		start = 1
	}
	for rowNum := start; rowNum <= len(rows); rowNum++ {
		row := rows[rowNum-1]
		deck := ""
		if deckIdx >= 0 {
			deck = cell(row, deckIdx)
		}
		i.importRow(ctx, result, userID, now, rowNum, cell(row, frontIdx), cell(row, backIdx), deck)
	}
	return result, nil
}

func (i *Importer) importFromCSV(ctx context.Context, cfg ImportConfig, userID int64, now time.Time) (*ImportResult, error) {
	f, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	result := &ImportResult{}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rowNum++
		if rowNum < cfg.StartRow {
			continue
		}
		i.importRow(ctx, result, userID, now, rowNum, cell(row, 0), cell(row, 1), cell(row, 2))
	}
	return result, nil
}

func (i *Importer) importRow(ctx context.Context, result *ImportResult, userID int64, now time.Time, rowNum int, front, back, deck string) {
	result.TotalProcessed++

	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" || back == "" {
		result.Skipped++
		return
	}

	id := uuid.NewString()
	card := models.Card{
		ID:     id,
		UserID: userID,
		Deck:   strings.TrimSpace(deck),
		Front:  front,
		Back:   back,
	}
	if err := i.cards.CreateCard(ctx, card, models.NewCardMemoryState(id, now)); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
		return
	}
	result.Created++
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// columnIndex converts a column letter ("A", "B", ...) to a zero-based index.
func columnIndex(column string) (int, error) {
	n, err := excelize.ColumnNameToNumber(column)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", column, err)
	}
	return n - 1, nil
}
