package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/matsen/membank/internal/index"
)

// maxColumnWidth caps table columns; longer values are truncated.
const maxColumnWidth = 40

// outputTable writes records as a formatted table with cols in SELECT order.
func outputTable(cols []string, records []index.Record) {
	if len(records) == 0 {
		fmt.Println("(0 rows)")
		return
	}

	// Calculate column widths
	widths := make(map[string]int)
	for _, col := range cols {
		widths[col] = utf8.RuneCountInString(col)
	}
	for _, record := range records {
		for _, col := range cols {
			if n := utf8.RuneCountInString(fmt.Sprintf("%v", record[col])); n > widths[col] {
				widths[col] = n
			}
		}
	}
	for col := range widths {
		if widths[col] > maxColumnWidth {
			widths[col] = maxColumnWidth
		}
	}

	var header []string
	for _, col := range cols {
		header = append(header, padRight(strings.ToUpper(col), widths[col]))
	}
	fmt.Println(keyStyle.Render(strings.Join(header, "  ")))

	for _, record := range records {
		fmt.Println(formatRow(cols, widths, record))
	}

	fmt.Printf("(%d rows)\n", len(records))
}

// formatRow renders one record, truncating cells wider than their column.
func formatRow(cols []string, widths map[string]int, record index.Record) string {
	row := make([]string, 0, len(cols))
	for _, col := range cols {
		valStr := truncateString(fmt.Sprintf("%v", record[col]), widths[col])
		row = append(row, padRight(valStr, widths[col]))
	}
	return strings.Join(row, "  ")
}

// padRight pads a string with spaces on the right to width runes.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
