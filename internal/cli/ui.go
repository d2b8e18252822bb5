package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Cyan marks the selection, green the seeds, amber the sources.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared with the explore view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray)

	styleSeed     = lipgloss.NewStyle().Foreground(colorGreen)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSource   = lipgloss.NewStyle().Foreground(colorYellow)
)

// status is the leading marker of a one-line message.
type status struct {
	icon  string
	style lipgloss.Style
	body  *lipgloss.Style
}

var (
	statusSuccess = status{icon: "✓", style: lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = status{icon: "✗", style: lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = status{icon: "!", style: StyleWarning, body: &StyleWarning}
	statusInfo    = status{icon: "›", style: styleLabel}
)

// stdout receives all human-readable status output.
var stdout io.Writer = os.Stdout

func (s status) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.body != nil {
		msg = s.body.Render(msg)
	}
	fmt.Fprintln(stdout, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { statusSuccess.print(format, args...) }
func printError(format string, args ...any)   { statusError.print(format, args...) }
func printWarning(format string, args ...any) { statusWarning.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// count is one labeled number for printStats.
type count struct {
	n     int
	label string
}

// printStats prints non-zero counts on one line, then whether the result
// came from the cache.
func printStats(counts []count, cached bool) {
	parts := make([]string, 0, len(counts)+1)
	for _, c := range counts {
		if c.n > 0 {
			parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", c.n, c.label)))
		}
	}
	if cached {
		parts = append(parts, styleSeed.Render("cached"))
	} else {
		parts = append(parts, styleLabel.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
