package styles

// HighContrastTheme favors legibility on low-quality terminals.
var HighContrastTheme = Theme{
	Name:        "high-contrast",
	BorderStyle: "sharp",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Activity: ActivityColors{
		Active:     "46",
		ActiveText: "16",
		Idle:       "250",
	},
	Chrome: ChromeColors{
		Header:        "117",
		Footer:        "159",
		SelectedRow:   "51",
		Progress:      "46",
		ProgressEmpty: "244",
		Error:         "196",
	},
	Borders: BorderColors{
		ActivePane:   "231",
		InactivePane: "250",
		Divider:      "248",
	},
}
