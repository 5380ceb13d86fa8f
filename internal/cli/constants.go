package cli

// Formatting constants for CLI output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
)
