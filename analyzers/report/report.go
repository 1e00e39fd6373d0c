package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers/catalog"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

// Export types supported by SaveReport.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
	FormatHTML  = "html"
)

// Formats lists the supported export types.
var Formats = []string{FormatText, FormatJSON, FormatSARIF, FormatHTML}

// SuccessLine is printed instead of issue lines when nothing was found.
const SuccessLine = "✅ No issues found."

// Options controls where Emit saves the report.
type Options struct {
	// Path is the report file. Empty means stdout only.
	Path string
	// Format is one of Formats; empty means text.
	Format string
	// Target is the analyzed file or executable.
	Target string
	// Rules supplies rule metadata for SARIF and HTML exports.
	Rules catalog.Rules
}

// Lines returns the header line followed by one line per issue, or by the
// success line when there are none.
func Lines(issues []types.Issue, mode string) []string {
	lines := []string{fmt.Sprintf("📋 %s report: %d finding(s).", strings.ToUpper(mode), len(issues))}
	if len(issues) == 0 {
		return append(lines, SuccessLine)
	}

	for _, issue := range issues {
		lines = append(lines, issue.Format())
	}

	return lines
}

// Render returns the text report.
func Render(issues []types.Issue, mode string) string {
	return strings.Join(Lines(issues, mode), "\n")
}

// Emit prints the text report to w and, when opts.Path is set, saves the
// report there in opts.Format, overwriting any existing file.
func Emit(w io.Writer, issues []types.Issue, mode string, opts Options) error {
	for _, line := range Lines(issues, mode) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if opts.Path == "" {
		return nil
	}

	report := types.AnalysisReport{
		Mode:   mode,
		Target: opts.Target,
		Issues: issues,
	}

	return SaveReport(report, opts.Path, opts.Format, opts.Rules)
}

// SaveReport saves the analysis report to the local filesystem.
func SaveReport(report types.AnalysisReport, filename string, exportType string, rules catalog.Rules) error {
	var (
		data []byte
		err  error
	)

	switch exportType {
	case "", FormatText:
		data = []byte(Render(report.Issues, report.Mode))
	case FormatJSON:
		data, err = exportJSON(report)
	case FormatSARIF:
		data, err = exportSARIF(report, rules)
	case FormatHTML:
		data, err = exportHTML(report, rules)
	default:
		return fmt.Errorf("export type %q not supported. supported types include: %s", exportType, strings.Join(Formats, ", "))
	}
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0o644)
}
