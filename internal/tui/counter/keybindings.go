package counter

// helpBinding represents a single keybinding entry for the help view.
type helpBinding struct {
	key  string
	desc string
}

func counterBindings() []helpBinding {
	return []helpBinding{
		{"space", "Start / pause"},
		{"tab", "Toggle count up / countdown"},
		{"n", "Choose counter name"},
		{"t", "Set target date"},
		{"r", "Reset"},
		{"s", "Save"},
		{"?", "Help"},
		{"q", "Quit"},
	}
}

func editBindings() []helpBinding {
	return []helpBinding{
		{"enter", "Confirm"},
		{"esc", "Cancel"},
	}
}
