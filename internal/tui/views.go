package tui

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/statementkit/colgrid/internal/model"
)

// View renders the editor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderTitle(),
		m.renderGrid(),
		m.renderMapping(),
		m.renderHeaders(),
		m.renderPreviewPanel(),
		m.renderStatus(),
	}

	var out []string
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n\n") + "\n"
}

func (m Model) renderTitle() string {
	preview := m.sess.Preview()
	title := titleStyle.Render("colgrid — " + preview.BankName)
	if len(preview.Warnings) > 0 {
		return title + "\n" + warningStyle.Render("⚠ "+strings.Join(preview.Warnings, "; "))
	}
	return title
}

// renderGrid draws the column band over the page geometry. Until the page
// image has been decoded the transform is not ready and the band stays
// blank, matching the overlay's load-race behavior.
func (m Model) renderGrid() string {
	t := m.sess.Transform(float64(m.gridWidth()))
	if !t.Ready() {
		if m.pageErr != "" {
			return errorStyle.Render("page image failed: " + m.pageErr)
		}
		return subtleStyle.Render("loading page image...")
	}

	cols := m.sess.Columns().Columns()
	activeBoundary := m.ctrl.Boundary()

	var labelRow, typeRow strings.Builder
	for i, c := range cols {
		start := int(math.Round(t.PDFToScreen(c.XMin)))
		end := int(math.Round(t.PDFToScreen(c.XMax)))
		w := end - start
		if w < 2 {
			w = 2
		}

		labelStyle := columnStyle
		if c.Type == model.TypeSkip {
			labelStyle = skipColumnStyle
		}
		if m.focus == FocusColumns && i == m.cursor {
			labelStyle = selectedColumnStyle
		}

		boundary := "│"
		if i == activeBoundary {
			boundary = boundaryStyle.Render("┃")
		}

		labelRow.WriteString(labelStyle.Render(pad(c.Label, w-1)))
		labelRow.WriteString(boundary)
		typeRow.WriteString(typeCellStyle(c.Type).Render(pad(string(c.Type), w-1)))
		typeRow.WriteString(" ")
	}

	grid := labelRow.String() + "\n" + typeRow.String()
	if m.mode == ModeRename {
		grid += "\n" + "rename: " + m.input.View()
	}
	return grid
}

func typeCellStyle(t model.ColumnType) lipgloss.Style {
	if t == model.TypeSkip {
		return skipColumnStyle
	}
	return mappedStyle
}

func (m Model) renderMapping() string {
	mapping := m.sess.Mapping()
	if len(mapping) == 0 {
		return subtleStyle.Render("mapping: (no columns mapped)")
	}

	indices := make([]int, 0, len(mapping))
	for k := range mapping {
		if i, err := strconv.Atoi(k); err == nil {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)

	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, fmt.Sprintf("%d→%s", i, mapping[strconv.Itoa(i)]))
	}
	return subtleStyle.Render("mapping: ") + mappedStyle.Render(strings.Join(parts, "  "))
}

func (m Model) renderHeaders() string {
	fields := m.sess.Headers().Fields()
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render("Header fields"))
	if len(fields) == 0 {
		b.WriteString("\n" + subtleStyle.Render("  (none — press tab, then a to add)"))
		return b.String()
	}

	for i, f := range fields {
		marker := "  "
		if m.focus == FocusHeaders && i == m.headerCursor {
			marker = "▸ "
		}
		value := f.Value
		if m.mode == ModeHeaderValue && i == m.headerCursor {
			value = m.input.View()
		}
		line := fmt.Sprintf("%s%-18s %-16s %s", marker, f.RawLabel, "("+string(f.Type)+")", value)
		if f.Type == model.FieldSkip {
			line = subtleStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func (m Model) renderPreviewPanel() string {
	// A refresh in flight takes precedence over the previous failure, so
	// the panel never shows a stale error while a newer request may fix it.
	switch {
	case m.parsing:
		return subtleStyle.Render("parsing...")
	case m.previewErr != "":
		return errorStyle.Render("preview failed: " + m.previewErr)
	case m.preview == nil:
		return ""
	}

	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-20s  %-26s  %10s  %12s",
		"Date", "Counterparty", "Title", "Amount", "Balance")))
	for _, tx := range m.preview.Transactions {
		b.WriteString(fmt.Sprintf("\n%-10s  %-20s  %-26s  %10.2f  %12.2f",
			pad(tx.Date, 10), pad(tx.Counterparty, 20), pad(tx.Title, 26),
			tx.Amount, tx.BalanceAfter))
	}
	b.WriteString("\n" + subtleStyle.Render(fmt.Sprintf("showing %d of %d rows",
		len(m.preview.Transactions), m.preview.TransactionCount)))
	return b.String()
}

func (m Model) renderStatus() string {
	if m.confirmErr != "" {
		return errorStyle.Render("confirm failed: " + m.confirmErr)
	}

	var help string
	if m.focus == FocusColumns {
		help = "←/→ select  a add  s split  d remove  r rename  t type  drag boundaries with mouse  tab headers  p refresh  c confirm  q quit"
	} else {
		help = "↑/↓ select  a add  d remove  t type  enter edit  tab columns  p refresh  c confirm  q quit"
	}
	return subtleStyle.Render(help)
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > width {
		if width > 1 {
			return string(runes[:width-1]) + "…"
		}
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
