package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorAccent  = lipgloss.Color("36")  // teal
	colorOK      = lipgloss.Color("35")  // green
	colorWarn    = lipgloss.Color("220") // amber
	colorFail    = lipgloss.Color("167") // soft red
	colorCommand = lipgloss.Color("75")  // light blue
	colorValue   = lipgloss.Color("255") // bright white
	colorLabel   = lipgloss.Color("245") // gray
	colorMuted   = lipgloss.Color("240") // dim gray
)

// Styles shared by the report writer and the error browser.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleDim     = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue   = lipgloss.NewStyle().Foreground(colorValue)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorOK)
	styleIconError   = lipgloss.NewStyle().Foreground(colorFail)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorWarn)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorLabel)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)

	styleLabel   = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorCommand)

	styleCached   = lipgloss.NewStyle().Foreground(colorOK)
	styleComputed = lipgloss.NewStyle().Foreground(colorLabel)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Lines
// =============================================================================

// ui writes human-oriented status lines. Machine-readable output such as
// structured reports never goes through it.
type ui struct {
	w io.Writer
}

func newUI(w io.Writer) ui {
	return ui{w: w}
}

func (u ui) line(icon lipgloss.Style, glyph, msg string) {
	fmt.Fprintln(u.w, icon.Render(glyph)+" "+msg)
}

func (u ui) success(format string, args ...any) {
	u.line(styleIconSuccess, iconSuccess, fmt.Sprintf(format, args...))
}

func (u ui) failure(format string, args ...any) {
	u.line(styleIconError, iconError, fmt.Sprintf(format, args...))
}

func (u ui) warning(format string, args ...any) {
	u.line(styleIconWarning, iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (u ui) info(format string, args ...any) {
	u.line(styleIconInfo, iconInfo, fmt.Sprintf(format, args...))
}

// detail prints an indented, muted line under the previous status line.
func (u ui) detail(format string, args ...any) {
	fmt.Fprintln(u.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written artifact path.
func (u ui) file(path string) {
	fmt.Fprintln(u.w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func (u ui) keyValue(key, value string) {
	fmt.Fprintln(u.w, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// nextStep suggests a follow-up command after a blank line.
func (u ui) nextStep(description, command string) {
	fmt.Fprintln(u.w)
	fmt.Fprintln(u.w, StyleDim.Render(description+":")+" "+styleCommand.Render(command))
}

// diagramStats prints node and relation counts and whether every stage
// came from the cache, e.g. "2 nodes · 1 relation · cached".
func (u ui) diagramStats(nodes, relations int, cached bool) {
	var parts []string
	if nodes > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", nodes, pluralize(nodes, "node", "nodes"))))
	}
	if relations > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", relations, pluralize(relations, "relation", "relations"))))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	fmt.Fprintln(u.w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}
