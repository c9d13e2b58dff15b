package styles

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name:        "default",
	BorderStyle: "rounded",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Activity: ActivityColors{
		Active:     "41",
		ActiveText: "16",
		Idle:       "243",
	},
	Chrome: ChromeColors{
		Header:        "111",
		Footer:        "110",
		SelectedRow:   "75",
		Progress:      "41",
		ProgressEmpty: "238",
		Error:         "203",
	},
	Borders: BorderColors{
		ActivePane:   "75",
		InactivePane: "240",
		Divider:      "238",
	},
}
