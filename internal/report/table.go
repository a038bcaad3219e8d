package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"newsmood/internal/models"
	"newsmood/pkg/utils"
)

// titlePreviewWidth caps how much of a title the preview shows.
const titlePreviewWidth = 40

// RenderPreview renders up to limit records as an aligned text table for the
// console. Column widths use display width, so CJK titles line up too. A
// zero limit or no records yields an empty string.
func RenderPreview(records []models.SentimentRecord, limit int) string {
	if limit <= 0 || len(records) == 0 {
		return ""
	}

	if limit > len(records) {
		limit = len(records)
	}

	rows := [][]string{{"Title", "Positive", "Negative", "Polarity", "Subjectivity"}}

	for _, record := range records[:limit] {
		rows = append(rows, []string{
			utils.TruncateString(record.Title, titlePreviewWidth),
			fmt.Sprintf("%.3f", record.Positive),
			fmt.Sprintf("%.3f", record.Negative),
			fmt.Sprintf("%.3f", record.Polarity),
			fmt.Sprintf("%.3f", record.Subjectivity),
		})
	}

	return renderTable(rows)
}

// renderTable lays out rows as a pipe-delimited table with a separator under
// the header row.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	colCount := len(rows[0])
	colWidths := make([]int, colCount)

	for _, row := range rows {
		for i := 0; i < len(row) && i < colCount; i++ {
			width := runewidth.StringWidth(row[i])
			if width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	var lines []string

	for i, row := range rows {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			content := ""
			if j < len(row) {
				content = row[j]
			}

			sb.WriteString(content)

			padding := colWidths[j] - runewidth.StringWidth(content)
			if padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}

			sb.WriteString(" |")
		}

		lines = append(lines, sb.String())

		// Separator under the header
		if i == 0 {
			var sep strings.Builder

			sep.WriteString("|")

			for j := 0; j < colCount; j++ {
				sep.WriteString(" ")
				sep.WriteString(strings.Repeat("-", colWidths[j]))
				sep.WriteString(" |")
			}

			lines = append(lines, sep.String())
		}
	}

	return strings.Join(lines, "\n")
}
