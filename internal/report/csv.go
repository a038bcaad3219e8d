// Package report writes scored results: the CSV artifact, a console preview
// table, and output verification.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"newsmood/internal/models"
)

// ErrBadHeader reports a CSV whose columns are not the expected ones.
var ErrBadHeader = errors.New("unexpected csv header")

// Header is the fixed output column order. There is no index column; the
// row order itself carries the input order.
var Header = []string{"Title", "Text", "Positive_Score", "Negative_Score", "Polarity_Score", "Subjectivity_Score"}

// WriteCSV writes the records to path, header first, one row per record in
// the given order. Scores render with the shortest decimal form that
// round-trips, so equal runs produce byte-identical files.
func WriteCSV(path string, records []models.SentimentRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Title,
			record.CleanedText,
			formatScore(record.Positive),
			formatScore(record.Negative),
			formatScore(record.Polarity),
			formatScore(record.Subjectivity),
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", record.Ref.ID, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}

// ReadCSV loads a previously written output file. Article references are not
// part of the file format, so the returned records carry empty refs.
func ReadCSV(path string) ([]models.SentimentRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if len(header) != len(Header) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}

	for i, col := range Header {
		if header[i] != col {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
		}
	}

	var records []models.SentimentRecord

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+1, err)
		}

		record := models.SentimentRecord{
			Title:       row[0],
			CleanedText: row[1],
		}

		scores := []*float64{&record.Positive, &record.Negative, &record.Polarity, &record.Subjectivity}
		for i, target := range scores {
			value, err := strconv.ParseFloat(row[2+i], 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse score in row %d: %w", len(records)+1, err)
			}

			*target = value
		}

		records = append(records, record)
	}

	return records, nil
}

// formatScore renders a score deterministically without trailing zeros.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
