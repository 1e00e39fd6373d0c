package types

import (
	"testing"

	"github.com/go-test/deep"
)

func TestIssueFormat(t *testing.T) {
	cases := []struct {
		description string
		issue       Issue
		expected    string
	}{
		{"error uses the explosion marker", NewIssue(CodeXMLSyntax, "document", "broken", SeverityError), "💥 document: broken"},
		{"warning uses the warning marker", NewIssue(CodeBindingPathNotFound, "Window[0]>Grid[0]", "missing", SeverityWarning), "⚠️ Window[0]>Grid[0]: missing"},
		{"info uses the info marker", NewIssue(CodeUnnamedControl, "Window", "unnamed", SeverityInfo), "ℹ️ Window: unnamed"},
		{"unknown severity falls back to warning", NewIssue("X", "loc", "msg", Severity("fatal")), "⚠️ loc: msg"},
	}

	for _, tc := range cases {
		if got := tc.issue.Format(); got != tc.expected {
			t.Errorf("description: %s, got: %q, want: %q", tc.description, got, tc.expected)
		}
	}
}

func TestCountBySeverity(t *testing.T) {
	report := AnalysisReport{
		Issues: []Issue{
			{Severity: SeverityWarning},
			{Severity: SeverityWarning},
			{Severity: SeverityInfo},
		},
	}

	expected := map[Severity]int{
		SeverityError:   0,
		SeverityWarning: 2,
		SeverityInfo:    1,
	}

	if diff := deep.Equal(report.CountBySeverity(), expected); diff != nil {
		t.Error(diff)
	}
}
