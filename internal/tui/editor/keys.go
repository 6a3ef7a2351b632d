package editor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines editor keybindings
type KeyMap struct {
	PlayPause   key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	LayerUp     key.Binding
	LayerDown   key.Binding
	NextBlock   key.Binding
	PickNum     key.Binding
	PalettePrev key.Binding
	PaletteNext key.Binding
	Drop        key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Save        key.Binding
	Preview     key.Binding
	Mute        key.Binding
	NextStep    key.Binding
	PrevStep    key.Binding
	Rewind      key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the editor key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PlayPause:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		ZoomIn:      key.NewBinding(key.WithKeys("ctrl+right", "+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("ctrl+left", "-"), key.WithHelp("-", "zoom out")),
		ScrollLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "scroll")),
		ScrollRight: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "scroll")),
		LayerUp:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "layer up")),
		LayerDown:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "layer down")),
		NextBlock:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next block")),
		PickNum:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "category")),
		PalettePrev: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev categories")),
		PaletteNext: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more categories")),
		Drop:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add at playhead")),
		Edit:        key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Preview:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "preview")),
		Mute:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		NextStep:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next step")),
		PrevStep:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev step")),
		Rewind:      key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "rewind")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// FormKeyMap defines the block editor form bindings.
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Save   key.Binding
	Cancel key.Binding
}

// DefaultFormKeyMap returns the form bindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Save:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// helpBindings lists the bindings shown in the help bar, in order.
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.PlayPause, k.PickNum, k.Drop, k.Edit, k.Delete,
		k.ZoomIn, k.ZoomOut, k.NextStep, k.Preview, k.Save, k.Quit,
	}
}
