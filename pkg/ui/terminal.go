package ui

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔══════════════════════════════════════════════════════════╗
    ║ ██╗   ██╗██╗  ██╗    ██████╗ ██████╗  ██████╗ ███████╗    ║
    ║ ██║   ██║██║ ██╔╝    ██╔══██╗██╔══██╗██╔═══██╗██╔════╝    ║
    ║ ██║   ██║█████╔╝     ██████╔╝██████╔╝██║   ██║█████╗      ║
    ║ ╚██╗ ██╔╝██╔═██╗     ██╔═══╝ ██╔══██╗██║   ██║██╔══╝      ║
    ║  ╚████╔╝ ██║  ██╗    ██║     ██║  ██║╚██████╔╝██║         ║
    ║   ╚═══╝  ╚═╝  ╚═╝    ╚═╝     ╚═╝  ╚═╝ ╚═════╝ ╚═╝         ║
    ║          REFERENCE PROFILE & SIMILARITY SCORING           ║
    ╚══════════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var colorEnabled = true

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// DisableColor turns the color functions into pass-throughs
func DisableColor() {
	colorEnabled = false
}

// ColorEnabled reports whether ANSI colors are emitted
func ColorEnabled() bool {
	return colorEnabled
}

// IsTerminal reports whether stdout is an interactive terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Println(Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Println(Magenta(msg))
}
