package report

import (
	"bytes"
	"html/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers/catalog"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

var htmlTemplate = template.Must(template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ upper .Mode }} report: {{ .Target }}</title>
</head>
<body>
<h1>📋 {{ upper .Mode }} report: {{ len .Issues }} finding(s).</h1>
<p>Target: <code>{{ default "-" .Target }}</code></p>
{{- if .Issues }}
<table>
<thead><tr><th>Severity</th><th>Code</th><th>Location</th><th>Message</th></tr></thead>
<tbody>
{{- range .Issues }}
<tr class="{{ .Severity }}"><td>{{ .Severity.Emoji }} {{ .Severity }}</td><td>{{ .IssueCode }}</td><td><code>{{ .Location }}</code></td><td>{{ .Message }}</td></tr>
{{- end }}
</tbody>
</table>
{{- else }}
<p>✅ No issues found.</p>
{{- end }}
{{- range .Rules }}
<section id="{{ .Code }}">
<h2>{{ .Code }}: {{ .Title }}</h2>
{{ .Description }}
</section>
{{- end }}
</body>
</html>
`))

type htmlRule struct {
	Code        string
	Title       string
	Description template.HTML
}

type htmlReport struct {
	types.AnalysisReport
	Rules []htmlRule
}

// exportHTML renders the report as a standalone page. Rule descriptions for the
// reported codes are converted from markdown and sanitized.
func exportHTML(report types.AnalysisReport, rules catalog.Rules) ([]byte, error) {
	data := htmlReport{AnalysisReport: report}

	seen := map[string]bool{}
	for _, issue := range report.Issues {
		if seen[issue.IssueCode] {
			continue
		}
		seen[issue.IssueCode] = true

		rule, ok := rules.Lookup(issue.IssueCode)
		if !ok {
			continue
		}

		description, err := rule.HTMLDescription()
		if err != nil {
			return nil, err
		}

		data.Rules = append(data.Rules, htmlRule{
			Code:  rule.Code,
			Title: rule.Title,
			// sanitized by bluemonday in HTMLDescription
			Description: template.HTML(description),
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
