package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"mindmap-cli/internal/autosave"
	"mindmap-cli/internal/keymap"
)

func (m *appModel) View() string {
	th := newTheme(m.darkMode)
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(th.title.Render("mindmap"))
	b.WriteString("  ")
	b.WriteString(th.dim.Render(fmt.Sprintf("zoom %.0f%%", m.zoom*100)))
	if m.crossLinkFrom != "" {
		b.WriteString("  ")
		b.WriteString(th.warn.Render("cross-link: pick a target (x)"))
	}
	b.WriteString("\n\n")

	for _, row := range m.visibleNodes() {
		line := m.renderRow(th, row)
		b.WriteString(ansi.Truncate(line, width, "…"))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString("\n")
		label := "edit"
		if m.editTarget == "" {
			label = "find"
		}
		b.WriteString(th.panel.Render(label + ": " + m.input.View()))
		b.WriteString("\n")
	}

	if panel := m.renderPanels(th, width); panel != "" {
		b.WriteString("\n")
		b.WriteString(panel)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar(th, width))
	return b.String()
}

func (m *appModel) renderRow(th theme, row visibleNode) string {
	indent := strings.Repeat("  ", row.depth)

	marker := "  "
	if len(row.node.Children) > 0 {
		marker = "▾ "
		if m.collapsed[row.node.ID] {
			marker = "▸ "
		}
	}

	content := row.node.Content
	if row.node.Link != "" {
		content += " ↗"
	}
	if row.node.Metadata.Notes != "" {
		content += " ☰"
	}

	switch {
	case row.node.ID == m.selectedID:
		content = th.selected.Render("› " + content)
	case m.multiSel[row.node.ID]:
		content = th.selected.Render("• " + content)
	default:
		content = "  " + content
	}
	return indent + marker + content
}

func (m *appModel) renderPanels(th theme, width int) string {
	var parts []string
	for _, p := range keymap.AllPanels() {
		if !m.panels[p] {
			continue
		}
		switch p {
		case keymap.PanelNotes:
			parts = append(parts, th.panel.Render(m.renderNotes(width)))
		case keymap.PanelShortcuts:
			parts = append(parts, th.panel.Render(m.renderShortcuts()))
		case keymap.PanelHistory:
			parts = append(parts, th.panel.Render("history: run `mindmap history list` for slots"))
		case keymap.PanelFind:
			if !m.editing {
				parts = append(parts, th.panel.Render(fmt.Sprintf("find %q: %d matches", m.findQuery, len(m.findMatches))))
			}
		default:
			parts = append(parts, th.panel.Render(string(p)+" panel"))
		}
	}
	return strings.Join(parts, "\n")
}

// renderNotes shows the selected node's markdown notes through glamour.
func (m *appModel) renderNotes(width int) string {
	sel := m.findByID(m.selectedID)
	if sel == nil || sel.Metadata.Notes == "" {
		return "no notes on this node"
	}
	style := "light"
	if m.darkMode {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(min(width-4, 80)),
	)
	if err != nil {
		return sel.Metadata.Notes
	}
	out, err := r.Render(sel.Metadata.Notes)
	if err != nil {
		return sel.Metadata.Notes
	}
	return strings.TrimRight(out, "\n")
}

func (m *appModel) renderShortcuts() string {
	var b strings.Builder
	b.WriteString("shortcuts\n")
	for _, binding := range keymap.Bindings() {
		fmt.Fprintf(&b, "  %-14s %s\n", binding.Chord(), binding.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *appModel) renderStatusBar(th theme, width int) string {
	status := "saved"
	switch m.currentSaveStatus() {
	case autosave.StatusUnsaved:
		status = "unsaved"
	case autosave.StatusSaving:
		status = "saving…"
	}

	parts := []string{status, fmt.Sprintf("%d nodes", m.tree.CountNodes())}
	if m.conflictLabel != "" {
		parts = append(parts, "conflict: newer copy saved "+m.conflictLabel)
	}
	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}
	if n := len(m.errs.Recent()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", n))
	}
	return ansi.Truncate(th.status.Render(strings.Join(parts, "  ·  ")), width, "…")
}
