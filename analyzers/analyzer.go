package analyzers

import (
	"context"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

// Analyzer is implemented by the static and runtime inspectors.
type Analyzer interface {
	String() string
	Run(ctx context.Context) ([]types.Issue, error)
}

// FilterDisabled drops issues whose code is listed in disabled, preserving order.
func FilterDisabled(issues []types.Issue, disabled []string) []types.Issue {
	if len(disabled) == 0 {
		return issues
	}

	skip := make(map[string]bool, len(disabled))
	for _, code := range disabled {
		skip[code] = true
	}

	filtered := make([]types.Issue, 0, len(issues))
	for _, issue := range issues {
		if !skip[issue.IssueCode] {
			filtered = append(filtered, issue)
		}
	}

	return filtered
}
