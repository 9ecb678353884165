package formatters

import (
	"fmt"
	"strings"
)

// reportWriter renders the same report structure as plain text or markdown
type reportWriter struct {
	out      strings.Builder
	markdown bool
}

func (w *reportWriter) title(s string) {
	if w.markdown {
		fmt.Fprintf(&w.out, "# %s\n\n", s)
		return
	}
	fmt.Fprintf(&w.out, "=== %s ===\n\n", strings.ToUpper(s))
}

func (w *reportWriter) section(s string) {
	if w.markdown {
		fmt.Fprintf(&w.out, "## %s\n\n", s)
		return
	}
	fmt.Fprintf(&w.out, "--- %s ---\n", s)
}

func (w *reportWriter) subsection(s string) {
	if w.markdown {
		fmt.Fprintf(&w.out, "### %s\n\n", s)
		return
	}
	fmt.Fprintf(&w.out, "%s:\n", s)
}

func (w *reportWriter) field(label string, value any) {
	if w.markdown {
		fmt.Fprintf(&w.out, "- **%s:** %v\n", label, value)
		return
	}
	fmt.Fprintf(&w.out, "%s: %v\n", label, value)
}

func (w *reportWriter) score(label string, score int) {
	w.field(label, fmt.Sprintf("%d/100", score))
}

func (w *reportWriter) list(items []string) {
	indent := "  "
	if w.markdown {
		indent = ""
	}
	for _, item := range items {
		fmt.Fprintf(&w.out, "%s- %s\n", indent, item)
	}
}

func (w *reportWriter) numbered(items []string) {
	for i, item := range items {
		fmt.Fprintf(&w.out, "%d. %s\n", i+1, item)
	}
}

// table writes a markdown table, or aligned columns in text mode
func (w *reportWriter) table(header []string, rows [][]string) {
	if w.markdown {
		fmt.Fprintf(&w.out, "| %s |\n", strings.Join(header, " | "))
		seps := make([]string, len(header))
		for i := range seps {
			seps[i] = "---"
		}
		fmt.Fprintf(&w.out, "| %s |\n", strings.Join(seps, " | "))
		for _, row := range rows {
			fmt.Fprintf(&w.out, "| %s |\n", strings.Join(row, " | "))
		}
		return
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) && len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}
	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], c)
		}
		w.out.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		w.out.WriteString("\n")
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
}

func (w *reportWriter) blank() {
	w.out.WriteString("\n")
}

func (w *reportWriter) String() string {
	return w.out.String()
}
