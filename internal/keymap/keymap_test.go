package keymap

import (
	"math"
	"testing"
)

type recorder struct {
	actions []Action
	closed  []Panel
	exited  bool
	cleared bool
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		Do:             func(a Action) { r.actions = append(r.actions, a) },
		ClosePanel:     func(p Panel) { r.closed = append(r.closed, p) },
		ExitCrossLink:  func() { r.exited = true },
		ClearSelection: func() { r.cleared = true },
	}
}

func TestDispatchTable(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		st   State
		want Action
	}{
		{"tab adds child", Event{Key: "tab"}, State{HasSelection: true}, ActionAddChild},
		{"enter adds sibling", Event{Key: "enter"}, State{HasSelection: true}, ActionAddSibling},
		{"delete removes", Event{Key: "delete"}, State{HasSelection: true}, ActionDeleteNode},
		{"backspace removes", Event{Key: "backspace"}, State{HasSelection: true}, ActionDeleteNode},
		{"e edits", Event{Key: "e"}, State{HasSelection: true}, ActionEditNode},
		{"space collapses", Event{Key: " "}, State{HasSelection: true}, ActionToggleCollapse},
		{"ctrl+plus zooms in", Event{Key: "+", Ctrl: true}, State{}, ActionZoomIn},
		{"ctrl+minus zooms out", Event{Key: "-", Ctrl: true}, State{}, ActionZoomOut},
		{"ctrl+0 fits", Event{Key: "0", Ctrl: true}, State{}, ActionZoomFit},
		{"ctrl+z undoes", Event{Key: "z", Ctrl: true}, State{CanUndo: true}, ActionUndo},
		{"ctrl+y redoes", Event{Key: "y", Ctrl: true}, State{CanRedo: true}, ActionRedo},
		{"ctrl+shift+z redoes", Event{Key: "z", Ctrl: true, Shift: true}, State{CanRedo: true}, ActionRedo},
		{"ctrl+f opens find", Event{Key: "f", Ctrl: true}, State{}, ActionFind},
		{"ctrl+g next match", Event{Key: "g", Ctrl: true}, State{}, ActionFindNext},
		{"ctrl+shift+g previous match", Event{Key: "g", Ctrl: true, Shift: true}, State{}, ActionFindPrev},
		{"ctrl+s saves", Event{Key: "s", Ctrl: true}, State{}, ActionSave},
		{"ctrl+a selects all", Event{Key: "a", Ctrl: true}, State{}, ActionSelectAll},
		{"ctrl+n notes", Event{Key: "n", Ctrl: true}, State{}, TogglePanel(PanelNotes)},
		{"ctrl+h history", Event{Key: "h", Ctrl: true}, State{}, TogglePanel(PanelHistory)},
		{"ctrl+i node info", Event{Key: "i", Ctrl: true}, State{}, TogglePanel(PanelNodeInfo)},
		{"ctrl+shift+h shortcuts", Event{Key: "h", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelShortcuts)},
		{"ctrl+shift+a assistant", Event{Key: "a", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelAssistant)},
		{"ctrl+shift+c comments", Event{Key: "c", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelComments)},
		{"ctrl+shift+w webhooks", Event{Key: "w", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelWebhooks)},
		{"ctrl+shift+d calendar", Event{Key: "d", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelCalendar)},
		{"ctrl+shift+e email", Event{Key: "e", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelEmail)},
		{"ctrl+shift+p presentation", Event{Key: "p", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelPresentation)},
		{"ctrl+shift+3 three-d", Event{Key: "3", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelThreeD)},
		{"ctrl+shift+t templates", Event{Key: "t", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelTemplates)},
		{"ctrl+shift+l dark mode", Event{Key: "l", Ctrl: true, Shift: true}, State{}, ActionToggleDarkMode},
		{"ctrl+shift+semicolon quick settings", Event{Key: ";", Ctrl: true, Shift: true}, State{}, TogglePanel(PanelQuickSettings)},
		{"question mark help", Event{Key: "?"}, State{}, ActionHelp},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			if !Dispatch(tc.ev, tc.st, rec.callbacks()) {
				t.Fatalf("Dispatch(%+v) not handled", tc.ev)
			}
			if len(rec.actions) != 1 || rec.actions[0] != tc.want {
				t.Fatalf("Dispatch(%+v) = %v, want [%s]", tc.ev, rec.actions, tc.want)
			}
		})
	}
}

func TestModifiersMustMatchExactly(t *testing.T) {
	rec := &recorder{}
	// Plain "z" is no binding at all; Ctrl+Z must not fire on it.
	if Dispatch(Event{Key: "z"}, State{CanUndo: true}, rec.callbacks()) {
		t.Fatalf("plain z dispatched %v", rec.actions)
	}
	// Ctrl+Shift+G must not fall through to Ctrl+G.
	rec = &recorder{}
	Dispatch(Event{Key: "g", Ctrl: true, Shift: true}, State{}, rec.callbacks())
	if len(rec.actions) != 1 || rec.actions[0] != ActionFindPrev {
		t.Fatalf("Ctrl+Shift+G dispatched %v", rec.actions)
	}
}

func TestEditingTextSuppressesEverything(t *testing.T) {
	st := State{
		EditingText:    true,
		HasSelection:   true,
		MultiSelection: true,
		CrossLinkMode:  true,
		CanUndo:        true,
		CanRedo:        true,
		OpenPanels:     map[Panel]bool{PanelNotes: true},
	}
	events := []Event{
		{Key: "tab"},
		{Key: "enter"},
		{Key: "delete"},
		{Key: "z", Ctrl: true},
		{Key: "s", Ctrl: true},
		{Key: "a", Ctrl: true, Shift: true},
		{Key: "escape"},
	}
	for _, ev := range events {
		rec := &recorder{}
		if Dispatch(ev, st, rec.callbacks()) {
			t.Errorf("Dispatch(%+v) handled while editing text", ev)
		}
		if len(rec.actions) != 0 || len(rec.closed) != 0 || rec.exited || rec.cleared {
			t.Errorf("Dispatch(%+v) invoked callbacks while editing text: %+v", ev, rec)
		}
	}
}

func TestGuardsBlockWithoutState(t *testing.T) {
	rec := &recorder{}
	if Dispatch(Event{Key: "tab"}, State{}, rec.callbacks()) {
		t.Fatal("tab dispatched without a selection")
	}
	if Dispatch(Event{Key: "z", Ctrl: true}, State{}, rec.callbacks()) {
		t.Fatal("undo dispatched with an empty undo stack")
	}
	if Dispatch(Event{Key: "y", Ctrl: true}, State{}, rec.callbacks()) {
		t.Fatal("redo dispatched with an empty redo stack")
	}
}

func TestEscapeClosesEverythingIndependently(t *testing.T) {
	st := State{
		MultiSelection: true,
		CrossLinkMode:  true,
		OpenPanels:     map[Panel]bool{PanelNotes: true, PanelAssistant: true},
	}
	rec := &recorder{}
	if !Dispatch(Event{Key: "escape"}, st, rec.callbacks()) {
		t.Fatal("escape not handled with panels open")
	}
	if len(rec.closed) != 2 {
		t.Fatalf("expected 2 closed panels, got %v", rec.closed)
	}
	if !rec.exited || !rec.cleared {
		t.Fatalf("escape must also exit cross-link mode and clear the selection: %+v", rec)
	}

	// Nothing open, nothing active: escape is a no-op.
	rec = &recorder{}
	if Dispatch(Event{Key: "escape"}, State{}, rec.callbacks()) {
		t.Fatal("escape handled with nothing to close")
	}
}

func TestCalculateFitZoom(t *testing.T) {
	got := CalculateFitZoom(1000, 800, 900, 400, 50)
	want := math.Min(math.Min((1000-100)/900.0, (800-100)/400.0), 1)
	if math.Abs(got-want) > 1e-5 {
		t.Fatalf("CalculateFitZoom = %v, want %v", got, want)
	}

	// Wide content: the horizontal ratio binds and the result shrinks.
	got = CalculateFitZoom(1000, 800, 3600, 400, 50)
	if math.Abs(got-0.25) > 1e-5 {
		t.Fatalf("CalculateFitZoom wide = %v, want 0.25", got)
	}

	if z := CalculateFitZoom(1000, 800, 0, 0, 50); z != 1.0 {
		t.Fatalf("empty content must fit at 1.0, got %v", z)
	}
	if z := CalculateFitZoom(40, 40, 100, 100, 50); z != MinZoom {
		t.Fatalf("padding larger than canvas clamps to MinZoom, got %v", z)
	}
}

func TestZoomStepClamps(t *testing.T) {
	if z := ZoomStep(MaxZoom, true); z != MaxZoom {
		t.Fatalf("zoom in past max = %v", z)
	}
	if z := ZoomStep(MinZoom, false); z != MinZoom {
		t.Fatalf("zoom out past min = %v", z)
	}
	if z := ZoomStep(1.0, true); math.Abs(z-1.1) > 1e-9 {
		t.Fatalf("one notch in from 1.0 = %v", z)
	}
}

func TestChordLabels(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range Bindings() {
		if b.Label == "" {
			t.Errorf("binding %q has no label", b.Chord())
		}
		seen[b.Chord()] = true
	}
	for _, want := range []string{"Tab", "Ctrl+Shift+A", "Ctrl+0", "Ctrl+Shift+;"} {
		if !seen[want] {
			t.Errorf("missing chord %q", want)
		}
	}
}
