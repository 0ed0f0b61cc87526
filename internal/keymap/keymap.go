// Package keymap holds the editor's shortcut table as data and a stateless
// dispatcher over it. Effects are pure callback invocations; the dispatcher
// owns nothing beyond the table itself.
package keymap

import "strings"

type Action string

const (
	ActionAddChild       Action = "add-child"
	ActionAddSibling     Action = "add-sibling"
	ActionDeleteNode     Action = "delete-node"
	ActionEditNode       Action = "edit-node"
	ActionToggleCollapse Action = "toggle-collapse"

	ActionZoomIn  Action = "zoom-in"
	ActionZoomOut Action = "zoom-out"
	ActionZoomFit Action = "zoom-fit"

	ActionUndo Action = "undo"
	ActionRedo Action = "redo"

	ActionFind     Action = "find"
	ActionFindNext Action = "find-next"
	ActionFindPrev Action = "find-prev"

	ActionSave      Action = "save"
	ActionSelectAll Action = "select-all"
	ActionHelp      Action = "help"
)

// Panel identifies a toggleable side panel. Escape closes every open one.
type Panel string

const (
	PanelNotes         Panel = "notes"
	PanelHistory       Panel = "history"
	PanelNodeInfo      Panel = "node-info"
	PanelShortcuts     Panel = "shortcuts"
	PanelFind          Panel = "find"
	PanelAssistant     Panel = "assistant"
	PanelComments      Panel = "comments"
	PanelWebhooks      Panel = "webhooks"
	PanelCalendar      Panel = "calendar"
	PanelEmail         Panel = "email"
	PanelPresentation  Panel = "presentation"
	PanelThreeD        Panel = "three-d"
	PanelTemplates     Panel = "templates"
	PanelQuickSettings Panel = "quick-settings"
)

// AllPanels lists panels in the order Escape walks them.
func AllPanels() []Panel {
	return []Panel{
		PanelNotes, PanelHistory, PanelNodeInfo, PanelShortcuts, PanelFind,
		PanelAssistant, PanelComments, PanelWebhooks, PanelCalendar, PanelEmail,
		PanelPresentation, PanelThreeD, PanelTemplates, PanelQuickSettings,
	}
}

const ActionToggleDarkMode Action = "toggle-dark-mode"

func TogglePanel(p Panel) Action { return Action("toggle-panel:" + string(p)) }

// Event is one keydown, normalized: Key is the lowercase key name ("a",
// "tab", "escape", "+", "?") and Ctrl covers both Ctrl and Cmd.
type Event struct {
	Key   string
	Ctrl  bool
	Shift bool
}

// State is the snapshot the dispatcher consults. It never mutates it.
type State struct {
	// EditingText suppresses every shortcut so typing is never hijacked.
	EditingText bool

	HasSelection   bool
	MultiSelection bool
	CrossLinkMode  bool
	CanUndo        bool
	CanRedo        bool

	OpenPanels map[Panel]bool
}

func (s State) panelOpen(p Panel) bool { return s.OpenPanels[p] }

// Callbacks receives the dispatcher's effects.
type Callbacks struct {
	Do func(Action)

	// Escape effects, each invoked only when the matching state is active.
	ClosePanel     func(Panel)
	ExitCrossLink  func()
	ClearSelection func()
}

// Binding pairs a chord with an action and an optional guard. The table is
// evaluated in order; the first matching entry wins.
type Binding struct {
	Key   string
	Ctrl  bool
	Shift bool

	Action Action
	Label  string
	When   func(State) bool
}

func (b Binding) Chord() string {
	var parts []string
	if b.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if b.Shift {
		parts = append(parts, "Shift")
	}
	key := b.Key
	if len(key) == 1 {
		key = strings.ToUpper(key)
	} else {
		key = strings.ToUpper(key[:1]) + key[1:]
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

func selected(s State) bool { return s.HasSelection }
func canUndo(s State) bool  { return s.CanUndo }
func canRedo(s State) bool  { return s.CanRedo }

// Bindings returns the full shortcut table. Note the intentional overlap:
// both Ctrl+Y and Ctrl+Shift+Z redo. Ctrl+Shift+D toggles the calendar and
// Ctrl+Shift+L dark mode (dark mode moved off D when the calendar landed).
func Bindings() []Binding {
	b := []Binding{
		{Key: "tab", Action: ActionAddChild, Label: "Add child node", When: selected},
		{Key: "enter", Action: ActionAddSibling, Label: "Add sibling node", When: selected},
		{Key: "delete", Action: ActionDeleteNode, Label: "Delete node", When: selected},
		{Key: "backspace", Action: ActionDeleteNode, Label: "Delete node", When: selected},
		{Key: "e", Action: ActionEditNode, Label: "Edit node text", When: selected},
		{Key: " ", Action: ActionToggleCollapse, Label: "Collapse/expand node", When: selected},

		{Key: "+", Ctrl: true, Action: ActionZoomIn, Label: "Zoom in"},
		{Key: "=", Ctrl: true, Action: ActionZoomIn, Label: "Zoom in"},
		{Key: "-", Ctrl: true, Action: ActionZoomOut, Label: "Zoom out"},
		{Key: "0", Ctrl: true, Action: ActionZoomFit, Label: "Fit map to view"},

		{Key: "z", Ctrl: true, Action: ActionUndo, Label: "Undo", When: canUndo},
		{Key: "y", Ctrl: true, Action: ActionRedo, Label: "Redo", When: canRedo},
		{Key: "z", Ctrl: true, Shift: true, Action: ActionRedo, Label: "Redo", When: canRedo},

		{Key: "f", Ctrl: true, Action: ActionFind, Label: "Find nodes"},
		{Key: "g", Ctrl: true, Action: ActionFindNext, Label: "Next search result"},
		{Key: "g", Ctrl: true, Shift: true, Action: ActionFindPrev, Label: "Previous search result"},

		{Key: "s", Ctrl: true, Action: ActionSave, Label: "Save snapshot"},
		{Key: "a", Ctrl: true, Action: ActionSelectAll, Label: "Select all nodes"},

		{Key: "n", Ctrl: true, Action: TogglePanel(PanelNotes), Label: "Toggle notes panel"},
		{Key: "h", Ctrl: true, Action: TogglePanel(PanelHistory), Label: "Toggle history panel"},
		{Key: "i", Ctrl: true, Action: TogglePanel(PanelNodeInfo), Label: "Toggle node info panel"},
		{Key: "h", Ctrl: true, Shift: true, Action: TogglePanel(PanelShortcuts), Label: "Toggle shortcut overlay"},

		{Key: "a", Ctrl: true, Shift: true, Action: TogglePanel(PanelAssistant), Label: "Toggle AI assistant"},
		{Key: "c", Ctrl: true, Shift: true, Action: TogglePanel(PanelComments), Label: "Toggle comments"},
		{Key: "w", Ctrl: true, Shift: true, Action: TogglePanel(PanelWebhooks), Label: "Toggle webhooks"},
		{Key: "d", Ctrl: true, Shift: true, Action: TogglePanel(PanelCalendar), Label: "Toggle calendar export"},
		{Key: "e", Ctrl: true, Shift: true, Action: TogglePanel(PanelEmail), Label: "Toggle email panel"},
		{Key: "p", Ctrl: true, Shift: true, Action: TogglePanel(PanelPresentation), Label: "Toggle presentation mode"},
		{Key: "3", Ctrl: true, Shift: true, Action: TogglePanel(PanelThreeD), Label: "Toggle 3D view"},
		{Key: "t", Ctrl: true, Shift: true, Action: TogglePanel(PanelTemplates), Label: "Toggle templates"},
		{Key: "l", Ctrl: true, Shift: true, Action: ActionToggleDarkMode, Label: "Toggle dark mode"},
		{Key: ";", Ctrl: true, Shift: true, Action: TogglePanel(PanelQuickSettings), Label: "Toggle quick settings"},

		{Key: "?", Action: ActionHelp, Label: "Show keyboard help"},
	}
	return b
}

// Dispatch resolves one keydown against the binding table and reports
// whether anything handled it. While a text surface has focus, nothing does.
func Dispatch(ev Event, st State, cb Callbacks) bool {
	if st.EditingText {
		return false
	}

	if ev.Key == "escape" && !ev.Ctrl && !ev.Shift {
		return dispatchEscape(st, cb)
	}

	for _, b := range Bindings() {
		if b.Key != ev.Key || b.Ctrl != ev.Ctrl || b.Shift != ev.Shift {
			continue
		}
		if b.When != nil && !b.When(st) {
			continue
		}
		if cb.Do != nil {
			cb.Do(b.Action)
		}
		return true
	}
	return false
}

// dispatchEscape closes every open panel, exits cross-link mode and clears
// multi-selection. Each effect fires independently, only where that state
// is active.
func dispatchEscape(st State, cb Callbacks) bool {
	handled := false
	for _, p := range AllPanels() {
		if st.panelOpen(p) && cb.ClosePanel != nil {
			cb.ClosePanel(p)
			handled = true
		}
	}
	if st.CrossLinkMode && cb.ExitCrossLink != nil {
		cb.ExitCrossLink()
		handled = true
	}
	if st.MultiSelection && cb.ClearSelection != nil {
		cb.ClearSelection()
		handled = true
	}
	return handled
}
