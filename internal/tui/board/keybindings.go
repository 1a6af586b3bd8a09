package board

// helpBinding represents a single keybinding entry for the help view.
type helpBinding struct {
	key  string
	desc string
}

func boardBindings() []helpBinding {
	return []helpBinding{
		{"j", "Next counter"},
		{"k", "Previous counter"},
		{"?", "Help"},
		{"q", "Quit"},
	}
}
