// Package format renders Athena result payloads as bounded, pipe-delimited
// text tables for display in MCP tool responses.
package format

import (
	"fmt"
	"strings"
)

// NoResults is returned for a result payload with no rows at all.
const NoResults = "No results found"

// Results renders a raw result grid as a pipe-delimited table. The first row
// is the column header — Athena returns the header as the first result row,
// not as separate metadata. At most maxRows data rows are rendered; when
// more exist, a trailing note states how many were omitted. Rows shorter
// than the header are padded with empty cells.
func Results(rows [][]string, maxRows int) string {
	if len(rows) == 0 {
		return NoResults
	}

	headers := rows[0]
	dataRows := rows[1:]

	var sb strings.Builder
	writeRow(&sb, headers, len(headers))

	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = "---"
	}
	writeRow(&sb, separator, len(headers))

	shown := len(dataRows)
	if shown > maxRows {
		shown = maxRows
	}
	for _, row := range dataRows[:shown] {
		writeRow(&sb, row, len(headers))
	}

	if len(dataRows) > maxRows {
		sb.WriteString(fmt.Sprintf("\n... and %d more rows", len(dataRows)-maxRows))
	}

	return sb.String()
}

// writeRow writes one pipe-delimited row with exactly width cells.
func writeRow(sb *strings.Builder, cells []string, width int) {
	sb.WriteString("| ")
	for i := 0; i < width; i++ {
		if i > 0 {
			sb.WriteString(" | ")
		}
		if i < len(cells) {
			sb.WriteString(cells[i])
		}
	}
	sb.WriteString(" |\n")
}
