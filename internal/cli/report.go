package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
	"github.com/ocifkit/ocifkit/pkg/validate"
)

// Report output formats for the validate command.
const (
	reportText = "text"
	reportJSON = "json"
	reportYAML = "yaml"
)

var reportFormats = []string{reportText, reportJSON, reportYAML}

// fileReport is the validation outcome for one input file.
type fileReport struct {
	File            string `json:"file" yaml:"file"`
	validate.Result `yaml:",inline"`

	// Err is set when the file could not be checked at all.
	Err error `json:"-" yaml:"-"`
	// Error is the user-facing form of Err in structured reports.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func validateReportFormat(format string) error {
	for _, f := range reportFormats {
		if format == f {
			return nil
		}
	}
	return ocerrors.New(ocerrors.ErrCodeInvalidFormat, "invalid report format: %q (must be one of: %s)", format, strings.Join(reportFormats, ", "))
}

// writeReports writes reports to w in the given format.
func writeReports(w io.Writer, format string, reports []fileReport) error {
	for i := range reports {
		if reports[i].Err != nil {
			reports[i].Error = ocerrors.UserMessage(reports[i].Err)
		}
		if reports[i].Errors == nil {
			reports[i].Errors = []validate.LocatedError{}
		}
	}

	switch format {
	case reportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case reportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	default:
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeTextReport(w, r)
		}
		return nil
	}
}

// =============================================================================
// Text Report
// =============================================================================

var (
	styleFile     = lipgloss.NewStyle().Bold(true).Foreground(colorValue)
	stylePosition = lipgloss.NewStyle().Foreground(colorAccent)
	stylePath     = lipgloss.NewStyle().Foreground(colorLabel)
	styleGutter   = lipgloss.NewStyle().Foreground(colorMuted)
)

// writeTextReport renders one report for a terminal:
//
//	✗ diagram.json  2 errors
//	  3:12  /nodes/0/size  must be array
//	        got number
//	      │ "size": 5,
func writeTextReport(w io.Writer, r fileReport) {
	switch {
	case r.Err != nil:
		fmt.Fprintf(w, "%s %s  %s\n", styleIconError.Render(iconError), styleFile.Render(r.File), ocerrors.UserMessage(r.Err))
		return
	case r.Valid:
		format := ""
		if r.Format == validate.FormatJSON5 {
			format = StyleDim.Render(" (json5)")
		}
		fmt.Fprintf(w, "%s %s  %s%s\n", styleIconSuccess.Render(iconSuccess), styleFile.Render(r.File), StyleSuccess.Render("valid"), format)
		return
	}

	fmt.Fprintf(w, "%s %s  %s\n", styleIconError.Render(iconError), styleFile.Render(r.File), pluralErrors(len(r.Errors)))
	for _, e := range r.Errors {
		pos := fmt.Sprintf("%d:%d", e.Line, e.Column)
		fmt.Fprintf(w, "  %s  %s  %s\n", stylePosition.Render(pos), stylePath.Render(e.Path), e.Message)
		indent := strings.Repeat(" ", len(pos)+4)
		if e.Details != "" {
			fmt.Fprintf(w, "%s%s\n", indent, StyleDim.Render(e.Details))
		}
		if e.Context != "" {
			fmt.Fprintf(w, "%s%s %s\n", indent[:len(indent)-2], styleGutter.Render("│"), strings.TrimRight(e.Context, " \t\r"))
		}
	}
}

func pluralErrors(n int) string {
	if n == 1 {
		return "1 error"
	}
	return fmt.Sprintf("%d errors", n)
}
