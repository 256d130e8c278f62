package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/wrpfuk/records/internal/domain/display"
)

const columnGap = "  "

// WriteTable writes rows as a plain-text table padded by display width, so
// names with wide or combining characters still line up. An empty result is
// written as "No records found." under the title.
func WriteTable(w io.Writer, title string, rows []display.Row) error {
	lines := make([][]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Strings())
	}
	return writeGrid(w, title, display.Columns, lines, "No records found.")
}

func writeGrid(w io.Writer, title string, header []string, lines [][]string, empty string) error {
	bw := bufio.NewWriter(w)
	if title != "" {
		_, _ = bw.WriteString(title + "\n\n")
	}
	if len(lines) == 0 {
		_, _ = bw.WriteString(empty + "\n")
		return bw.Flush()
	}

	widths := make([]int, len(header))
	for _, line := range append([][]string{header}, lines...) {
		for i, c := range line {
			if cw := runewidth.StringWidth(c); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	writeLine := func(line []string) {
		var sb strings.Builder
		for i, c := range line {
			if i > 0 {
				sb.WriteString(columnGap)
			}
			sb.WriteString(c)
			if i < len(line)-1 {
				if pad := widths[i] - runewidth.StringWidth(c); pad > 0 {
					sb.WriteString(strings.Repeat(" ", pad))
				}
			}
		}
		sb.WriteByte('\n')
		_, _ = bw.WriteString(sb.String())
	}

	writeLine(header)
	sep := make([]string, len(widths))
	for i, wd := range widths {
		sep[i] = strings.Repeat("-", wd)
	}
	writeLine(sep)
	for _, line := range lines {
		writeLine(line)
	}
	return bw.Flush()
}
