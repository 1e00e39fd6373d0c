package report

import (
	"bytes"
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers/catalog"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

const (
	toolName           = "xaml-sleuth"
	toolInformationURI = "https://github.com/deepsourcelabs/xaml-sleuth"
)

// exportSARIF converts the analysis report to SARIF 2.1.0. Issue locations are
// recorded as logical locations on the analyzed artifact.
func exportSARIF(report types.AnalysisReport, rules catalog.Rules) ([]byte, error) {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)

	added := map[string]bool{}
	for _, issue := range report.Issues {
		if !added[issue.IssueCode] {
			addRule(run, issue, rules)
			added[issue.IssueCode] = true
		}

		fullyQualifiedName := issue.Location
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(report.Target)),
		)
		location.LogicalLocations = []*sarif.LogicalLocation{
			{FullyQualifiedName: &fullyQualifiedName},
		}

		result := sarif.NewRuleResult(issue.IssueCode).
			WithMessage(sarif.NewTextMessage(issue.Message)).
			WithLevel(toSarifLevel(issue.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	reportSarif.AddRun(run)

	var buf bytes.Buffer
	if err := reportSarif.PrettyWrite(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func addRule(run *sarif.Run, issue types.Issue, rules catalog.Rules) {
	rule := run.AddRule(issue.IssueCode).
		WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: toSarifLevel(issue.Severity),
		})

	meta, ok := rules.Lookup(issue.IssueCode)
	if !ok {
		return
	}

	rule.WithDescription(meta.Title)
	if meta.Name != "" {
		name := meta.Name
		rule.Name = &name
	}
	if meta.Description != "" {
		description := meta.Description
		rule.FullDescription = &sarif.MultiformatMessageString{
			Text:     &description,
			Markdown: &description,
		}
	}
}

func toSarifLevel(severity types.Severity) string {
	switch severity {
	case types.SeverityError:
		return "error"
	case types.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
