package importer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"vocabdrill/internal/models"
)

// Column order of a lesson sheet
const (
	colWord = iota
	colMeaning
	colPronunciation
	colPartOfSpeech
	colExamples
	colAudio
	colImage
)

// examplesDelimiter separates example sentences inside one cell
const examplesDelimiter = ";"

// Sheet is the vocabulary read from one worksheet
type Sheet struct {
	Name    string
	Items   []models.VocabularyItem
	Skipped int // Rows without both a word and a meaning
}

// Workbook is an open lesson spreadsheet
type Workbook struct {
	file *excelize.File
}

// Open opens a workbook file
func Open(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{file: file}, nil
}

// OpenReader reads a workbook from r
func OpenReader(r io.Reader) (*Workbook, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return &Workbook{file: file}, nil
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheets lists the worksheet names in workbook order
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// ReadSheet reads the vocabulary of the named sheet; an empty name selects the first sheet
func (w *Workbook) ReadSheet(name string) (*Sheet, error) {
	sheets := w.Sheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	if name == "" {
		name = sheets[0]
	} else if !slices.Contains(sheets, name) {
		return nil, fmt.Errorf("sheet %q not found, available: %s", name, strings.Join(sheets, ", "))
	}

	rows, err := w.file.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	defer rows.Close()

	sheet := &Sheet{Name: name}
	first := true

	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row in %q: %w", name, err)
		}

		if first {
			first = false
			if isHeader(cols) {
				continue
			}
		}

		item, ok := parseRow(cols)
		if !ok {
			if !blank(cols) {
				sheet.Skipped++
			}
			continue
		}

		item.Position = len(sheet.Items)
		sheet.Items = append(sheet.Items, item)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	return sheet, nil
}

// LoadWorkbook reads one sheet of the workbook at path
func LoadWorkbook(path, sheet string) (*Sheet, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return wb.ReadSheet(sheet)
}

func cell(cols []string, i int) string {
	if i >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[i])
}

func isHeader(cols []string) bool {
	return strings.EqualFold(cell(cols, colWord), "word") &&
		strings.EqualFold(cell(cols, colMeaning), "meaning")
}

func blank(cols []string) bool {
	for i := range cols {
		if cell(cols, i) != "" {
			return false
		}
	}
	return true
}

func parseRow(cols []string) (models.VocabularyItem, bool) {
	if len(cols) < 2 {
		return models.VocabularyItem{}, false
	}

	item := models.VocabularyItem{
		Word:          cell(cols, colWord),
		Meaning:       cell(cols, colMeaning),
		Pronunciation: cell(cols, colPronunciation),
		PartOfSpeech:  cell(cols, colPartOfSpeech),
		AudioRef:      cell(cols, colAudio),
		ImageRef:      cell(cols, colImage),
	}
	if item.Word == "" || item.Meaning == "" {
		return models.VocabularyItem{}, false
	}

	for _, example := range strings.Split(cell(cols, colExamples), examplesDelimiter) {
		if example = strings.TrimSpace(example); example != "" {
			item.Examples = append(item.Examples, example)
		}
	}

	return item, true
}
