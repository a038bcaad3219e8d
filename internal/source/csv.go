// Package source provides article reference providers. A provider turns an
// input location into the (id, url) pairs the pipeline processes: a CSV file
// with configurable columns, or a live RSS/Atom feed.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"newsmood/internal/config"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/pkg/utils"
)

// Provider errors.
var (
	ErrMissingHeader = errors.New("input csv has no header row")
	ErrMissingColumn = errors.New("column not found in input header")
	ErrBadFeed       = errors.New("failed to parse feed")
)

// CSVReader reads article references from a CSV file. The file must carry a
// header row naming the id and url columns; rows missing either value are
// dropped with a warning, a broken file is fatal.
type CSVReader struct {
	idColumn  string
	urlColumn string
	log       *logger.Logger
}

// NewCSVReader creates a CSV reader using the configured column names.
func NewCSVReader(cfg *config.Config, log *logger.Logger) *CSVReader {
	return &CSVReader{
		idColumn:  cfg.Pipeline.Input.IDColumn,
		urlColumn: cfg.Pipeline.Input.URLColumn,
		log:       log,
	}
}

// Read loads all article references from path, preserving file order.
func (r *CSVReader) Read(path string) ([]models.ArticleRef, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeader, path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read input header: %w", err)
	}

	idIdx, err := columnIndex(header, r.idColumn)
	if err != nil {
		return nil, err
	}

	urlIdx, err := columnIndex(header, r.urlColumn)
	if err != nil {
		return nil, err
	}

	var refs []models.ArticleRef

	line := 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read input row %d: %w", line+1, err)
		}

		line++

		if idIdx >= len(row) || urlIdx >= len(row) {
			r.log.Warn("Skipping short input row", "line", line)

			continue
		}

		ref := models.ArticleRef{
			ID:  strings.TrimSpace(row[idIdx]),
			URL: strings.TrimSpace(row[urlIdx]),
		}

		if ref.ID == "" || ref.URL == "" {
			r.log.Warn("Skipping blank input row", "line", line)

			continue
		}

		if err := utils.ValidateURL(ref.URL); err != nil {
			r.log.Warn("Skipping row with invalid URL", "line", line, "url", ref.URL, "error", err)

			continue
		}

		refs = append(refs, ref)
	}

	return refs, nil
}

// columnIndex finds a named column in the header, ignoring case and
// surrounding whitespace.
func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s (header: %s)", ErrMissingColumn, name, strings.Join(header, ", "))
}
