// Package report renders a resolution report for human review: a per-version
// status table followed by the ambiguity diagnostics.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/binforge/addrbin/internal/propagate"
)

// Render writes the report as an aligned table plus a diagnostics list. When
// colored is false the output is plain text, suitable for files and pipes.
func Render(w io.Writer, rep *propagate.Report, colored bool) {
	rows := [][]string{{"VERSION", "STATUS", "INHERITED", "FRESH", "NOTE"}}
	for el := rep.Statuses.Front(); el != nil; el = el.Next() {
		st := el.Value
		note := ""
		if st.Err != nil {
			note = st.Err.Error()
		}
		rows = append(rows, []string{
			el.Key.String(),
			st.Status.String(),
			fmt.Sprintf("%d", st.Inherited),
			fmt.Sprintf("%d", st.Fresh),
			note,
		})
	}

	widths := columnWidths(rows)
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			padded := pad(cell, widths[j])
			if colored && i > 0 && j == 1 {
				padded = colorStatus(row[1], padded)
			}
			cells[j] = padded
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	if len(rep.Diagnostics) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d ambiguity diagnostics:\n", len(rep.Diagnostics))
	for _, d := range rep.Diagnostics {
		fmt.Fprintf(w, "  %s %s 0x%X: %s (%s)\n", d.Version, d.Category, d.Address, d.Reason, d.Detail)
	}
}

// columnWidths returns the display width of the widest cell per column.
func columnWidths(rows [][]string) []int {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for j, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}
	return widths
}

// pad right-pads a cell to the column width using display width, so wide
// runes in file-system paths do not break alignment.
func pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

func colorStatus(status, padded string) string {
	switch status {
	case propagate.StatusResolved.String():
		return color.Green.Sprint(padded)
	case propagate.StatusAnchor.String():
		return color.Cyan.Sprint(padded)
	case propagate.StatusUnreachable.String():
		return color.Yellow.Sprint(padded)
	case propagate.StatusFailed.String():
		return color.Red.Sprint(padded)
	default:
		return padded
	}
}
