package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mindmap-cli/internal/convert"
	"mindmap-cli/internal/keymap"
	"mindmap-cli/internal/model"
)

func (m *appModel) Init() tea.Cmd {
	return nil
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+q" {
		return m, tea.Quit
	}

	if m.editing {
		return m.updateEditing(msg)
	}

	// Plain navigation is not part of the shortcut table.
	switch msg.String() {
	case "up", "k":
		m.moveSelection(-1)
		return m, nil
	case "down", "j":
		m.moveSelection(1)
		return m, nil
	case "x":
		// Cross-link mode: x on the anchor, then x on the target.
		m.toggleCrossLink()
		return m, nil
	}

	keymap.Dispatch(keyEvent(msg), m.keymapState(), keymap.Callbacks{
		Do:             m.perform,
		ClosePanel:     func(p keymap.Panel) { m.panels[p] = false },
		ExitCrossLink:  func() { m.crossLinkFrom = "" },
		ClearSelection: func() { m.multiSel = map[string]bool{} },
	})
	return m, nil
}

// keyEvent normalizes a bubbletea key into the dispatcher's shape.
func keyEvent(msg tea.KeyMsg) keymap.Event {
	s := msg.String()
	ev := keymap.Event{}
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+"):
			ev.Ctrl = true
			s = strings.TrimPrefix(s, "ctrl+")
			continue
		case strings.HasPrefix(s, "shift+"):
			ev.Shift = true
			s = strings.TrimPrefix(s, "shift+")
			continue
		}
		break
	}
	switch s {
	case "esc":
		s = "escape"
	case " ", "space":
		s = " "
	}
	// Terminals report Ctrl+Shift+letter as ctrl+L; a single upper-case rune
	// after ctrl+ means shift was held.
	if ev.Ctrl && len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z' {
		ev.Shift = true
		s = strings.ToLower(s)
	}
	ev.Key = s
	return ev
}

func (m *appModel) perform(action keymap.Action) {
	switch action {
	case keymap.ActionAddChild:
		m.addNode(true)
	case keymap.ActionAddSibling:
		m.addNode(false)
	case keymap.ActionDeleteNode:
		m.deleteSelected()
	case keymap.ActionEditNode:
		m.startEditing()
	case keymap.ActionToggleCollapse:
		m.collapsed[m.selectedID] = !m.collapsed[m.selectedID]
	case keymap.ActionZoomIn:
		m.zoom = keymap.ZoomStep(m.zoom, true)
	case keymap.ActionZoomOut:
		m.zoom = keymap.ZoomStep(m.zoom, false)
	case keymap.ActionZoomFit:
		m.fitZoom()
	case keymap.ActionUndo:
		m.undo()
	case keymap.ActionRedo:
		m.redo()
	case keymap.ActionFind:
		m.startFind()
	case keymap.ActionFindNext:
		m.cycleFind(1)
	case keymap.ActionFindPrev:
		m.cycleFind(-1)
	case keymap.ActionSave:
		if err := m.saver.SaveNow(context.Background(), "manual save"); err != nil {
			m.statusMsg = "save failed: " + err.Error()
		} else {
			m.statusMsg = "saved"
		}
	case keymap.ActionSelectAll:
		m.tree.Walk(func(n *model.TreeNode) { m.multiSel[n.ID] = true })
	case keymap.ActionHelp:
		m.panels[keymap.PanelShortcuts] = true
	case keymap.ActionToggleDarkMode:
		m.darkMode = !m.darkMode
	default:
		if p, ok := strings.CutPrefix(string(action), "toggle-panel:"); ok {
			panel := keymap.Panel(p)
			m.panels[panel] = !m.panels[panel]
		}
	}
}

func (m *appModel) moveSelection(delta int) {
	rows := m.visibleNodes()
	i := m.selectionIndex(rows) + delta
	if i < 0 || i >= len(rows) {
		return
	}
	m.selectedID = rows[i].node.ID
}

func (m *appModel) addNode(asChild bool) {
	sel := m.findByID(m.selectedID)
	if sel == nil {
		return
	}
	parent := sel
	if !asChild {
		parent = m.parentOf(sel.ID)
		if parent == nil {
			// Siblings of the root become children instead.
			parent = sel
		}
	}
	m.pushUndo()
	child := &model.TreeNode{ID: convert.NewNodeID(), Content: "New Node"}
	parent.Children = append(parent.Children, child)
	delete(m.collapsed, parent.ID)
	m.selectedID = child.ID
	m.notifySaver()
	m.startEditing()
}

func (m *appModel) deleteSelected() {
	if m.selectedID == m.tree.ID {
		m.statusMsg = "cannot delete the root node"
		return
	}
	parent := m.parentOf(m.selectedID)
	if parent == nil {
		return
	}
	m.pushUndo()
	kept := parent.Children[:0]
	for _, c := range parent.Children {
		if c.ID != m.selectedID {
			kept = append(kept, c)
		}
	}
	parent.Children = kept
	m.dropDanglingCrossLinks()
	delete(m.multiSel, m.selectedID)
	m.selectedID = parent.ID
	m.notifySaver()
}

// dropDanglingCrossLinks removes cross-links whose endpoint no longer exists.
func (m *appModel) dropDanglingCrossLinks() {
	alive := map[string]bool{}
	m.tree.Walk(func(n *model.TreeNode) { alive[n.ID] = true })
	kept := m.crossLinks[:0]
	for _, e := range m.crossLinks {
		if alive[e.Source] && alive[e.Target] {
			kept = append(kept, e)
		}
	}
	m.crossLinks = kept
}

func (m *appModel) toggleCrossLink() {
	switch {
	case m.crossLinkFrom == "":
		m.crossLinkFrom = m.selectedID
	case m.crossLinkFrom == m.selectedID:
		m.crossLinkFrom = ""
	default:
		m.crossLinks = append(m.crossLinks, model.FlowEdge{
			ID:        convert.NewEdgeID(),
			Source:    m.crossLinkFrom,
			Target:    m.selectedID,
			CrossLink: true,
		})
		m.crossLinkFrom = ""
		m.notifySaver()
	}
}

func (m *appModel) startEditing() {
	sel := m.findByID(m.selectedID)
	if sel == nil {
		return
	}
	m.editing = true
	m.editTarget = sel.ID
	m.input.SetValue(sel.Content)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *appModel) startFind() {
	m.panels[keymap.PanelFind] = true
	m.editing = true
	m.editTarget = ""
	m.input.SetValue(m.findQuery)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *appModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value := m.input.Value()
		m.editing = false
		m.input.Blur()
		if m.editTarget != "" {
			m.applyEdit(value)
		} else {
			m.applyFindQuery(value)
		}
		return m, nil
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		m.panels[keymap.PanelFind] = false
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) applyEdit(value string) {
	sel := m.findByID(m.editTarget)
	if sel == nil || sel.Content == value {
		return
	}
	m.pushUndo()
	sel = m.findByID(m.editTarget)
	sel.Content = value
	m.notifySaver()
}

func (m *appModel) applyFindQuery(q string) {
	m.findQuery = q
	m.findMatches = nil
	m.findIdx = 0
	if q == "" {
		return
	}
	lower := strings.ToLower(q)
	m.tree.Walk(func(n *model.TreeNode) {
		if strings.Contains(strings.ToLower(n.Content), lower) {
			m.findMatches = append(m.findMatches, n.ID)
		}
	})
	if len(m.findMatches) > 0 {
		m.jumpTo(m.findMatches[0])
	} else {
		m.statusMsg = "no matches for " + q
	}
}

func (m *appModel) cycleFind(delta int) {
	if len(m.findMatches) == 0 {
		return
	}
	m.findIdx = (m.findIdx + delta + len(m.findMatches)) % len(m.findMatches)
	m.jumpTo(m.findMatches[m.findIdx])
}

// jumpTo selects a node and expands every collapsed ancestor so it is
// actually visible.
func (m *appModel) jumpTo(id string) {
	m.selectedID = id
	for p := m.parentOf(id); p != nil; p = m.parentOf(p.ID) {
		delete(m.collapsed, p.ID)
	}
}

func (m *appModel) fitZoom() {
	g := convert.TreeToFlow(m.tree, true)
	var w, h float64
	for _, n := range g.Nodes {
		if n.Position.X > w {
			w = n.Position.X
		}
		if n.Position.Y > h {
			h = n.Position.Y
		}
	}
	// Positions are top-left corners; add one node extent.
	w += 180
	h += 48
	m.zoom = keymap.CalculateFitZoom(float64(m.width), float64(m.height), w, h, 40)
}
