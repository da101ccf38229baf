package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives command output. Tests may swap it.
var stdout io.Writer = os.Stdout

// Terminal palette (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorAmber  = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorBright = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by command output and the view TUI.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorBright)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconWarning = "!"
	iconArrow   = "→"
)

// status markers, rendered in front of one-line messages
var (
	markSuccess = StyleSuccess.Render("✓")
	markError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	markWarning = StyleWarning.Render(iconWarning)
	markInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
)

func printLine(s string) { fmt.Fprintln(stdout, s) }

func printSuccess(format string, args ...any) {
	printLine(markSuccess + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(markError + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(markWarning + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(markInfo + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the previous message.
func printDetail(format string, args ...any) {
	printLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	printLine("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	printLine(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints "N nodes · M edges · cached|fresh".
func printStats(nodes, edges int, cached bool) {
	parts := []string{fmt.Sprintf("%d nodes", nodes), fmt.Sprintf("%d edges", edges)}
	state := StyleDim.Render("fresh")
	if cached {
		state = StyleSuccess.Render("cached")
	}
	printLine("  " + StyleDim.Render(strings.Join(parts, " · ")+" · ") + state)
}

func printNextStep(description, cmd string) {
	printLine(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { printLine("") }
