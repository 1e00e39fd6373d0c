package xaml

import (
	"fmt"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers/binding"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

// inspectBinding cross-checks every binding expression in value against the
// mock data. source is the attribute name, or "text" for element content.
func (a *Analyzer) inspectBinding(location, source, value string) []types.Issue {
	var issues []types.Issue

	for _, expr := range binding.FindExpressions(value) {
		path, ok := binding.ExtractPath(expr.Body)
		if !ok {
			issues = append(issues, types.NewIssue(
				types.CodeBindingWithoutPath,
				location,
				fmt.Sprintf("%s: binding %s does not expose a Path; consider adding Path=... for clarity.", source, expr.Raw),
				types.SeverityInfo,
			))
			continue
		}

		mockValue, found := a.opts.MockData.Lookup(path)
		switch {
		case !found:
			issues = append(issues, types.NewIssue(
				types.CodeBindingPathNotFound,
				location,
				fmt.Sprintf("%s: binding path '%s' not found in mock data (possible typo).", source, path),
				types.SeverityWarning,
			))
		case mockValue == nil:
			issues = append(issues, types.NewIssue(
				types.CodeBindingPathNull,
				location,
				fmt.Sprintf("%s: binding path '%s' resolves to null in mock data; check the data context.", source, path),
				types.SeverityInfo,
			))
		case a.opts.Verbose:
			fmt.Fprintf(a.opts.Out, "✅ %s: %s binding path '%s' resolved.\n", location, source, path)
		}
	}

	return issues
}
