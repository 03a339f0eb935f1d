package colours

import "github.com/fatih/color"

// Color scheme for the CLI
var (
	Title   = color.New(color.FgCyan, color.Bold)
	Phase   = color.New(color.FgMagenta, color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Info    = color.New(color.FgBlue)
	Warning = color.New(color.FgYellow)
)
