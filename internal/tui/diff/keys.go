package diff

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/colonyops/tinydiff/internal/tui/components"
)

// KeyMap holds every binding of the viewer.
type KeyMap struct {
	// tree
	Up     key.Binding
	Down   key.Binding
	Expand key.Binding
	Parent key.Binding
	First  key.Binding
	Last   key.Binding
	Open   key.Binding

	// diff
	PageDown    key.Binding
	PageUp      key.Binding
	Visual      key.Binding
	NextComment key.Binding
	PrevComment key.Binding

	// comments
	AddComment key.Binding
	Submit     key.Binding
	Cancel     key.Binding
	Resolve    key.Binding
	Edit       key.Binding
	Delete     key.Binding

	// global
	SwitchPane  key.Binding
	ToggleStyle key.Binding
	Refresh     key.Binding
	Retry       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Expand: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "expand")),
		Parent: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "collapse/parent")),
		First:  key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Last:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Open:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open/toggle")),

		PageDown:    key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "half page down")),
		PageUp:      key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "half page up")),
		Visual:      key.NewBinding(key.WithKeys("v", "V"), key.WithHelp("v", "select lines")),
		NextComment: key.NewBinding(key.WithKeys("n"), key.WithHelp("n/N", "next/prev comment")),
		PrevComment: key.NewBinding(key.WithKeys("N")),

		AddComment: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save comment")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Resolve:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resolve")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

		SwitchPane:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		ToggleStyle: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "split/unified")),
		Refresh:     key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "refresh")),
		Retry:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown in the status bar for the focused pane.
func (k KeyMap) ShortHelp(focus FocusedPanel) []key.Binding {
	if focus == FocusFileTree {
		return []key.Binding{k.Down, k.Open, k.SwitchPane, k.ToggleStyle, k.Help, k.Quit}
	}
	return []key.Binding{k.Visual, k.AddComment, k.Resolve, k.Edit, k.Delete, k.SwitchPane, k.Help}
}

// HelpSections groups every binding for the help dialog.
func (k KeyMap) HelpSections() []components.HelpDialogSection {
	return []components.HelpDialogSection{
		{Title: "Files", Bindings: []key.Binding{k.Up, k.Down, k.Expand, k.Parent, k.First, k.Last, k.Open}},
		{Title: "Diff", Bindings: []key.Binding{k.PageDown, k.PageUp, k.Visual, k.NextComment}},
		{Title: "Comments", Bindings: []key.Binding{k.AddComment, k.Submit, k.Cancel, k.Resolve, k.Edit, k.Delete}},
		{Title: "General", Bindings: []key.Binding{k.SwitchPane, k.ToggleStyle, k.Refresh, k.Help, k.Quit}},
	}
}
