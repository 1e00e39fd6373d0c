package types

import "fmt"

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Emoji returns the marker printed in front of a formatted issue.
// Unrecognized severities use the warning marker.
func (s Severity) Emoji() string {
	switch s {
	case SeverityError:
		return "💥"
	case SeverityInfo:
		return "ℹ️"
	default:
		return "⚠️"
	}
}

// Issue codes reported by the static and runtime analyzers.
const (
	CodeXMLSyntax              = "XS001"
	CodeMissingDefaultNS       = "XS002"
	CodeMissingXamlNS          = "XS003"
	CodeUndefinedPrefix        = "XS004"
	CodeBindingPathNotFound    = "XS005"
	CodeBindingPathNull        = "XS006"
	CodeBindingWithoutPath     = "XS007"
	CodeEmptyTextControl       = "XS101"
	CodeUnnamedControl         = "XS102"
	CodeChildEnumerationFailed = "XS103"
)

// Issue is a single finding. Location is the ">"-joined route from the
// document (or window) root to the inspected node.
type Issue struct {
	IssueCode string   `json:"issue_code"`
	Location  string   `json:"location"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
}

// NewIssue creates an issue.
func NewIssue(code, location, message string, severity Severity) Issue {
	return Issue{
		IssueCode: code,
		Location:  location,
		Message:   message,
		Severity:  severity,
	}
}

// Format returns the emoji-prefixed "location: message" line.
func (i Issue) Format() string {
	return fmt.Sprintf("%s %s: %s", i.Severity.Emoji(), i.Location, i.Message)
}

// AnalysisReport is the result of a single analysis run.
type AnalysisReport struct {
	Mode   string  `json:"mode"`
	Target string  `json:"target"`
	Issues []Issue `json:"issues"`
}

// CountBySeverity returns the number of issues for each severity.
func (r AnalysisReport) CountBySeverity() map[Severity]int {
	counts := map[Severity]int{
		SeverityError:   0,
		SeverityWarning: 0,
		SeverityInfo:    0,
	}
	for _, issue := range r.Issues {
		counts[issue.Severity]++
	}

	return counts
}
