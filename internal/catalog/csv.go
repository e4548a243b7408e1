package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"logo-quiz-service/internal/domain"
)

//go:embed data/logos.csv
var defaultCSV []byte

// Parse reads rows of the form
//
//	assetRef,optionA,optionB,optionC,optionD,correctLetter
//
// and returns the resulting catalog along with the number of rows skipped.
// Rows with fewer than six fields or a letter outside A-D are skipped, which
// also drops a header row. Columns past the sixth are ignored.
func Parse(r io.Reader) (domain.Catalog, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var (
		records []domain.QuestionRecord
		skipped int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return domain.Catalog{}, skipped, fmt.Errorf("read catalog: %w", err)
		}
		rec, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return domain.NewCatalog(records), skipped, nil
}

func parseRow(row []string) (domain.QuestionRecord, bool) {
	if len(row) < 6 {
		return domain.QuestionRecord{}, false
	}
	rec := domain.QuestionRecord{PromptAssetRef: strings.TrimSpace(row[0])}
	for i := range rec.Options {
		rec.Options[i] = strings.TrimSpace(row[i+1])
	}
	letter := strings.ToUpper(strings.TrimSpace(row[5]))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'D' {
		return domain.QuestionRecord{}, false
	}
	rec.CorrectAnswer = rec.Options[letter[0]-'A']
	return rec, true
}

// LoadFile parses the CSV catalog at path.
func LoadFile(path string) (domain.Catalog, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Catalog{}, 0, err
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the catalog bundled with the binary.
func Default() (domain.Catalog, int, error) {
	return Parse(bytes.NewReader(defaultCSV))
}

// Load returns the catalog at path, or the bundled one when path is empty.
func Load(path string) (domain.Catalog, int, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
