package slider

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the slider bindings. It satisfies help.KeyMap.
type KeyMap struct {
	StartBack    key.Binding
	StartForward key.Binding
	EndBack      key.Binding
	EndForward   key.Binding
	Reset        key.Binding
	RotateLeft   key.Binding
	RotateRight  key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		StartBack:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "start -1")),
		StartForward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "start +1")),
		EndBack:      key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("⇧←/H", "end -1")),
		EndForward:   key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("⇧→/L", "end +1")),
		Reset:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "full range")),
		RotateLeft:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "rotate -15°")),
		RotateRight:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "rotate +15°")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartBack, k.StartForward, k.EndBack, k.EndForward, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartBack, k.StartForward, k.EndBack, k.EndForward},
		{k.Reset, k.RotateLeft, k.RotateRight},
		{k.Help, k.Quit},
	}
}
