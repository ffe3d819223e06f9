/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package table renders aggregation rows as a bordered text table.
package table

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// minWidth is the narrowest a column is drawn.
const minWidth = 4

// Render writes columns and rows to w followed by a row count footer. Rows
// shorter than columns are padded with empty cells; nil cells print as NULL.
func Render(w io.Writer, columns []string, rows [][]interface{}) error {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(utf8.RuneCountInString(col), minWidth)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for i := range columns {
			if i >= len(row) {
				continue
			}
			s := FormatValue(row[i])
			cells[r][i] = s
			widths[i] = max(widths[i], utf8.RuneCountInString(s))
		}
	}

	var b strings.Builder
	border(&b, widths)
	line(&b, widths, columns)
	border(&b, widths)
	for _, row := range cells {
		line(&b, widths, row)
	}
	border(&b, widths)
	fmt.Fprintf(&b, "(%d rows)\n", len(rows))
	_, err := io.WriteString(w, b.String())
	return err
}

// Print renders to standard output.
func Print(columns []string, rows [][]interface{}) error {
	return Render(os.Stdout, columns, rows)
}

// FormatValue is the cell text of v.
func FormatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func border(b *strings.Builder, widths []int) {
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
}

func line(b *strings.Builder, widths []int, values []string) {
	b.WriteByte('|')
	for i, w := range widths {
		v := values[i]
		b.WriteByte(' ')
		b.WriteString(v)
		b.WriteString(strings.Repeat(" ", w-utf8.RuneCountInString(v)))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}
