package tui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"mindmap-cli/internal/autosave"
	"mindmap-cli/internal/config"
	"mindmap-cli/internal/convert"
	"mindmap-cli/internal/errtrack"
	"mindmap-cli/internal/keymap"
	"mindmap-cli/internal/model"
	"mindmap-cli/internal/store"
)

const maxUndoDepth = 50

type appModel struct {
	local *store.Local
	cfg   config.Config
	saver *autosave.Controller
	errs  *errtrack.Tracker

	width  int
	height int
	// We treat the very first WindowSizeMsg as "initial sizing" rather than a
	// user-driven resize.
	seenWindowSize bool

	tree       *model.TreeNode
	selectedID string
	multiSel   map[string]bool
	collapsed  map[string]bool
	// crossLinkFrom holds the anchor node while cross-link mode is active.
	crossLinkFrom string
	crossLinks    []model.FlowEdge

	zoom float64

	// editing covers both renaming the selected node and typing a find query;
	// while either input has focus no shortcut fires.
	editing    bool
	editTarget string
	input      textinput.Model

	findQuery   string
	findMatches []string
	findIdx     int

	undoStack []*model.TreeNode
	redoStack []*model.TreeNode

	panels   map[keymap.Panel]bool
	darkMode bool

	// saveStatus is written by the autosave debounce timer's goroutine and
	// read by View on the bubbletea goroutine, so it needs its own lock.
	statusMu   sync.Mutex
	saveStatus autosave.Status

	conflictLabel string
	statusMsg     string
}

func (m *appModel) setSaveStatus(s autosave.Status) {
	m.statusMu.Lock()
	m.saveStatus = s
	m.statusMu.Unlock()
}

func (m *appModel) currentSaveStatus() autosave.Status {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.saveStatus
}

func newAppModel(ctx context.Context, local *store.Local, cfg config.Config) (*appModel, error) {
	m := &appModel{
		local:      local,
		cfg:        cfg,
		errs:       errtrack.New(0, nil),
		zoom:       1.0,
		multiSel:   map[string]bool{},
		collapsed:  map[string]bool{},
		panels:     map[keymap.Panel]bool{},
		saveStatus: autosave.StatusSaved,
	}

	latest, err := local.Latest(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case latest != nil && latest.Tree != nil:
		m.tree = latest.Tree
		m.crossLinks = convert.CrossLinks(latest.Edges)
	case latest != nil:
		m.tree = convert.FlowToTree(latest.Nodes, latest.Edges)
		m.crossLinks = convert.CrossLinks(latest.Edges)
	}
	if m.tree == nil {
		m.tree = model.NewDefaultTree(convert.NewNodeID())
	}
	convert.EnsureIDs(m.tree)
	m.selectedID = m.tree.ID

	data := model.Snapshot{Timestamp: time.Now().UTC()}
	if latest != nil {
		g := m.graph()
		data = model.Snapshot{Nodes: g.Nodes, Edges: g.Edges, Timestamp: time.Now().UTC()}
	}
	saver, err := autosave.New(ctx, autosave.Opts{
		Local:             local,
		Data:              data,
		Interval:          cfg.AutosaveInterval,
		ConflictThreshold: cfg.ConflictThreshold,
		OnStatus:          m.setSaveStatus,
		OnConflictFound: func(label string, stale model.Snapshot) {
			m.conflictLabel = label
		},
		Errors: m.errs,
	})
	if err != nil {
		return nil, err
	}
	m.saver = saver

	m.input = textinput.New()
	m.input.CharLimit = 200
	return m, nil
}

// graph projects the tree plus the session's cross-links.
func (m *appModel) graph() model.Graph {
	g := convert.TreeToFlow(m.tree, true)
	g.Edges = append(g.Edges, m.crossLinks...)
	return g
}

func (m *appModel) notifySaver() {
	m.saver.Notify(m.graph(), m.tree)
}

// pushUndo snapshots the tree before a mutation. Any new edit clears the
// redo stack.
func (m *appModel) pushUndo() {
	m.undoStack = append(m.undoStack, m.tree.Clone())
	if len(m.undoStack) > maxUndoDepth {
		m.undoStack = m.undoStack[1:]
	}
	m.redoStack = nil
}

func (m *appModel) undo() {
	if len(m.undoStack) == 0 {
		return
	}
	m.redoStack = append(m.redoStack, m.tree)
	m.tree = m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.afterTreeSwap()
}

func (m *appModel) redo() {
	if len(m.redoStack) == 0 {
		return
	}
	m.undoStack = append(m.undoStack, m.tree)
	m.tree = m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.afterTreeSwap()
}

func (m *appModel) afterTreeSwap() {
	if m.findByID(m.selectedID) == nil {
		m.selectedID = m.tree.ID
	}
	m.multiSel = map[string]bool{}
	m.notifySaver()
}

func (m *appModel) findByID(id string) *model.TreeNode {
	var found *model.TreeNode
	m.tree.Walk(func(n *model.TreeNode) {
		if n.ID == id {
			found = n
		}
	})
	return found
}

// parentOf returns the parent of id, or nil for the root.
func (m *appModel) parentOf(id string) *model.TreeNode {
	var parent *model.TreeNode
	m.tree.Walk(func(n *model.TreeNode) {
		for _, c := range n.Children {
			if c.ID == id {
				parent = n
			}
		}
	})
	return parent
}

// visibleNodes flattens the tree in render order, skipping collapsed
// subtrees. depth is the indent level.
type visibleNode struct {
	node  *model.TreeNode
	depth int
}

func (m *appModel) visibleNodes() []visibleNode {
	var out []visibleNode
	var walk func(n *model.TreeNode, depth int)
	walk = func(n *model.TreeNode, depth int) {
		out = append(out, visibleNode{node: n, depth: depth})
		if m.collapsed[n.ID] {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(m.tree, 0)
	return out
}

func (m *appModel) selectionIndex(rows []visibleNode) int {
	for i, r := range rows {
		if r.node.ID == m.selectedID {
			return i
		}
	}
	return 0
}

func (m *appModel) keymapState() keymap.State {
	open := make(map[keymap.Panel]bool, len(m.panels))
	for p, v := range m.panels {
		if v {
			open[p] = true
		}
	}
	return keymap.State{
		EditingText:    m.editing,
		HasSelection:   m.selectedID != "",
		MultiSelection: len(m.multiSel) > 0,
		CrossLinkMode:  m.crossLinkFrom != "",
		CanUndo:        len(m.undoStack) > 0,
		CanRedo:        len(m.redoStack) > 0,
		OpenPanels:     open,
	}
}
