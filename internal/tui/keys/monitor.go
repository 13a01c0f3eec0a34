package keys

import "github.com/charmbracelet/bubbles/key"

// MonitorKeys drive the lever dashboard
type MonitorKeys struct {
	CommonKeys
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Close     key.Binding
	ForceUp   key.Binding
	ForceDown key.Binding
	SetForce  key.Binding
	Enter     key.Binding
	ClearLog  key.Binding
}

func NewMonitorKeys() MonitorKeys {
	return MonitorKeys{
		CommonKeys: NewCommonKeys(),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous lever"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next lever"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open"),
		),
		Close: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "close"),
		),
		ForceUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more force"),
		),
		ForceDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "less force"),
		),
		SetForce: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "enter force"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply force"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear events"),
		),
	}
}

func (k MonitorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Close, k.ForceUp, k.ForceDown, k.Help, k.Quit}
}

func (k MonitorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Close},
		{k.ForceUp, k.ForceDown, k.SetForce, k.Enter, k.Escape},
		{k.ClearLog, k.Help, k.Quit},
	}
}
