package report

import (
	"encoding/json"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

// exportJSON is a helper utility for encoding the analysis report as JSON.
func exportJSON(report types.AnalysisReport) ([]byte, error) {
	if report.Issues == nil {
		report.Issues = []types.Issue{}
	}

	return json.MarshalIndent(report, "", "	")
}
