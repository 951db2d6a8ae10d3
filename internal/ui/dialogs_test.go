package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestMenuDigitSelectsImmediately(t *testing.T) {
	m := newMenu("Test", []string{"one", "two", "three"})
	_, result := m.handleKey(keyMsg("2"))
	if result == nil {
		t.Fatal("digit key produced no result")
	}
	if result.index != 1 || result.canceled {
		t.Errorf("result = %+v, want index 1", result)
	}
}

func TestMenuDigitOutOfRangeIgnored(t *testing.T) {
	m := newMenu("Test", []string{"one", "two"})
	_, result := m.handleKey(keyMsg("9"))
	if result != nil {
		t.Errorf("out-of-range digit closed the menu: %+v", result)
	}
}

func TestMenuNavigationAndEnter(t *testing.T) {
	m := newMenu("Test", []string{"one", "two", "three"})
	m.handleKey(keyMsg("down"))
	m.handleKey(keyMsg("down"))
	m.handleKey(keyMsg("down")) // clamps at last item
	_, result := m.handleKey(keyMsg("enter"))
	if result == nil || result.index != 2 {
		t.Errorf("result = %+v, want index 2", result)
	}
}

func TestMenuCancelKeys(t *testing.T) {
	for _, key := range []string{"esc", "q", "Q"} {
		m := newMenu("Test", []string{"one"})
		_, result := m.handleKey(keyMsg(key))
		if result == nil || !result.canceled || result.index != -1 {
			t.Errorf("key %q: result = %+v, want canceled with index -1", key, result)
		}
	}
}

// Menus draw below the title bar, the rule, the box border and the
// dialog title plus a blank line, so item 0 lands on screen row 5. The
// click hit-test must agree with that layout or clicks land on the
// wrong item.
func TestMenuItemRowMatchesLayout(t *testing.T) {
	m := newMenu("Test", []string{"one", "two"})
	if got := m.itemRow(0); got != 5 {
		t.Errorf("itemRow(0) = %d, want 5", got)
	}
	if got := m.itemRow(1); got != 6 {
		t.Errorf("itemRow(1) = %d, want 6", got)
	}
}

func TestMenuClickActivatesItem(t *testing.T) {
	m := newMenu("Test", []string{"one", "two", "three"})
	click := tea.MouseMsg{
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionRelease,
		Y:      m.itemRow(2),
	}

	_, result := m.handleMouse(click)
	if result == nil || result.index != 2 || result.canceled {
		t.Fatalf("click result = %+v, want index 2", result)
	}
	if m.selected != 2 {
		t.Errorf("selected = %d, want 2", m.selected)
	}
}

func TestMenuClickOutsideItemsIgnored(t *testing.T) {
	m := newMenu("Test", []string{"one", "two"})
	click := tea.MouseMsg{
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionRelease,
		Y:      m.itemRow(0) - 1,
	}
	if _, result := m.handleMouse(click); result != nil {
		t.Errorf("click above the items closed the menu: %+v", result)
	}
}

func TestMenuRightClickCancels(t *testing.T) {
	m := newMenu("Test", []string{"one"})
	_, result := m.handleMouse(tea.MouseMsg{
		Button: tea.MouseButtonRight,
		Action: tea.MouseActionRelease,
	})
	if result == nil || !result.canceled {
		t.Errorf("result = %+v, want canceled", result)
	}
}

func TestMenuWheelMovesSelection(t *testing.T) {
	m := newMenu("Test", []string{"one", "two", "three"})
	wheel := tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress}
	m.handleMouse(wheel)
	m.handleMouse(wheel)
	if m.selected != 2 {
		t.Errorf("selected = %d after two wheel downs, want 2", m.selected)
	}
}

func TestTextDialogDefaultOnEmpty(t *testing.T) {
	d := newTextDialog("Name", "prompt", "fallback")
	_, result := d.handleKey(keyMsg("enter"))
	if result == nil || result.text != "fallback" {
		t.Errorf("result = %+v, want default value", result)
	}
}

func TestTextDialogTypedValue(t *testing.T) {
	var d dialog = newTextDialog("Name", "prompt", "fallback")
	for _, r := range "backup1" {
		d, _ = d.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, result := d.handleKey(keyMsg("enter"))
	if result == nil || result.text != "backup1" {
		t.Errorf("result = %+v, want typed text", result)
	}
}

func TestTextDialogEscSubmitsEmpty(t *testing.T) {
	d := newTextDialog("Name", "prompt", "fallback")
	_, result := d.handleKey(keyMsg("esc"))
	if result == nil || result.canceled || result.text != "" {
		t.Errorf("result = %+v, want empty submit, not cancel", result)
	}
}

func TestConfirmDialog(t *testing.T) {
	d := newConfirm("Sure?")
	_, result := d.handleKey(keyMsg("y"))
	if result == nil || !result.yes {
		t.Errorf("y result = %+v", result)
	}

	d = newConfirm("Sure?")
	_, result = d.handleKey(keyMsg("n"))
	if result == nil || result.yes {
		t.Errorf("n result = %+v", result)
	}

	d = newConfirm("Sure?")
	if _, result := d.handleKey(keyMsg("x")); result != nil {
		t.Errorf("unrelated key closed the dialog: %+v", result)
	}
}

func TestFinalWarningRequiresYes(t *testing.T) {
	cases := []struct {
		typed string
		want  bool
	}{
		{"YES", true},
		{"yes", true},
		{"Yes", true},
		{"y", false},
		{"NO", false},
		{"", false},
	}
	for _, tc := range cases {
		var d dialog = newFinalWarning("Wipe it")
		for _, r := range tc.typed {
			d, _ = d.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		_, result := d.handleKey(keyMsg("enter"))
		if result == nil {
			t.Fatalf("%q: no result", tc.typed)
		}
		if result.yes != tc.want {
			t.Errorf("typed %q: yes = %v, want %v", tc.typed, result.yes, tc.want)
		}
	}
}

func TestMessageDialogAnyKeyCloses(t *testing.T) {
	d := newMessage("Info", "line")
	_, result := d.handleKey(keyMsg("x"))
	if result == nil || result.canceled {
		t.Errorf("result = %+v, want plain close", result)
	}
}
