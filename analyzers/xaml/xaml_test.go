package xaml

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/analysistest"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/mockdata"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

const (
	presentationNS = `xmlns="http://schemas.microsoft.com/winfx/2006/xaml/presentation"`
	xamlNS         = `xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml"`
)

func writeXAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "View.xaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadMock(t *testing.T) mockdata.Table {
	t.Helper()
	table, err := mockdata.Load("testdata/mock.json")
	require.NoError(t, err)
	return table
}

func TestRunFixtures(t *testing.T) {
	cases := []struct {
		description string
		filename    string
	}{
		{"bindings resolved against mock data", "testdata/MainWindow.xaml"},
		{"missing namespaces and nested extensions", "testdata/NoNamespaces.xaml"},
	}

	for _, tc := range cases {
		a := New(Options{Path: tc.filename, MockData: loadMock(t)})

		issues, err := a.Run(context.Background())
		require.NoError(t, err, tc.description)

		if err := analysistest.Verify(issues, tc.filename); err != nil {
			t.Errorf("description: %s, %v", tc.description, err)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	path := writeXAML(t, `<Window `+xamlNS+`><Grid><TextBlock Text="{Binding Missing}"/></Grid></Window>`)

	issues, err := New(Options{Path: path}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, types.SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "default WPF namespace")
	assert.Equal(t, "Window[0]", issues[0].Location)

	assert.Equal(t, types.SeverityWarning, issues[1].Severity)
	assert.Equal(t, types.CodeBindingPathNotFound, issues[1].IssueCode)
	assert.Contains(t, issues[1].Message, "'Missing'")
	assert.Equal(t, "Window[0]>Grid[0]>TextBlock[0]", issues[1].Location)
}

func TestDefaultNamespace(t *testing.T) {
	cases := []struct {
		description string
		root        string
		expectWarn  bool
	}{
		{"missing default namespace", `<Window ` + xamlNS + `/>`, true},
		{"default namespace declared", `<Window ` + presentationNS + ` ` + xamlNS + `/>`, false},
	}

	for _, tc := range cases {
		issues, err := New(Options{Path: writeXAML(t, tc.root)}).Run(context.Background())
		require.NoError(t, err)

		found := false
		for _, issue := range issues {
			if strings.Contains(issue.Message, "default WPF namespace") {
				found = true
				assert.Equal(t, types.SeverityWarning, issue.Severity)
			}
		}
		assert.Equal(t, tc.expectWarn, found, tc.description)
	}
}

func TestBindingResolution(t *testing.T) {
	table := mockdata.Flatten(map[string]interface{}{
		"Present": "value",
		"Null":    nil,
	})

	cases := []struct {
		description string
		path        string
		expected    []types.Severity
	}{
		{"present and non-null", "Present", nil},
		{"present and null", "Null", []types.Severity{types.SeverityInfo}},
		{"absent", "Absent", []types.Severity{types.SeverityWarning}},
	}

	for _, tc := range cases {
		content := `<Window ` + presentationNS + ` ` + xamlNS + `><TextBlock Text="{Binding ` + tc.path + `}"/></Window>`
		issues, err := New(Options{Path: writeXAML(t, content), MockData: table}).Run(context.Background())
		require.NoError(t, err)

		var severities []types.Severity
		for _, issue := range issues {
			severities = append(severities, issue.Severity)
		}
		assert.Equal(t, tc.expected, severities, tc.description)
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("missing path is an invalid argument", func(t *testing.T) {
		_, err := New(Options{}).Run(context.Background())
		assert.True(t, errors.Is(err, analyzers.ErrInvalidArgument))
	})

	t.Run("nonexistent file is not found", func(t *testing.T) {
		_, err := New(Options{Path: filepath.Join(t.TempDir(), "missing.xaml")}).Run(context.Background())
		assert.True(t, errors.Is(err, analyzers.ErrNotFound))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})
}

func TestMalformedXAML(t *testing.T) {
	cases := []struct {
		description string
		content     string
		exactlyOne  bool
	}{
		{"mismatched end tag", `<Window ` + presentationNS + ` ` + xamlNS + `><Grid><TextBlock Text="x"></Grid></Window>`, false},
		{"truncated document", `<Window ` + presentationNS, true},
		{"empty document", ``, true},
		{"two root elements", `<Window ` + presentationNS + ` ` + xamlNS + `/><Window/>`, true},
		{"duplicate attribute", `<Window ` + presentationNS + ` ` + xamlNS + ` Title="a" Title="b"/>`, true},
		{"text after root", `<Window ` + presentationNS + ` ` + xamlNS + `/>junk`, true},
		{"text before root", `junk<Window ` + presentationNS + ` ` + xamlNS + `/>`, true},
		{"duplicate attribute on child", `<Window ` + presentationNS + ` ` + xamlNS + `><Grid x:Name="a" x:Name="b"/></Window>`, true},
	}

	for _, tc := range cases {
		issues, err := New(Options{Path: writeXAML(t, tc.content)}).Run(context.Background())
		require.NoError(t, err, tc.description)
		require.NotEmpty(t, issues, tc.description)

		assert.Equal(t, types.SeverityError, issues[0].Severity, tc.description)
		assert.Equal(t, types.CodeXMLSyntax, issues[0].IssueCode, tc.description)
		assert.Equal(t, "View.xaml", issues[0].Location, tc.description)
		if tc.exactlyOne {
			assert.Len(t, issues, 1, tc.description)
		}
	}
}

func TestIdempotence(t *testing.T) {
	a := New(Options{Path: "testdata/MainWindow.xaml", MockData: loadMock(t)})

	first, err := a.Run(context.Background())
	require.NoError(t, err)
	second, err := a.Run(context.Background())
	require.NoError(t, err)

	if diff := deep.Equal(first, second); diff != nil {
		t.Error(diff)
	}
}

func TestOrdering(t *testing.T) {
	content := `<Window><A Text="{Binding One}"><B Text="{Binding Two}"/></A><C Text="{Binding Three}"/></Window>`

	issues, err := New(Options{Path: writeXAML(t, content)}).Run(context.Background())
	require.NoError(t, err)

	var locations []string
	for _, issue := range issues {
		locations = append(locations, issue.Location)
	}

	expected := []string{
		"Window[0]",
		"Window[0]",
		"Window[0]>A[0]",
		"Window[0]>A[0]>B[0]",
		"Window[0]>C[1]",
	}
	assert.Equal(t, expected, locations)
	assert.Equal(t, types.CodeMissingDefaultNS, issues[0].IssueCode)
	assert.Equal(t, types.CodeMissingXamlNS, issues[1].IssueCode)
}

func TestVerbose(t *testing.T) {
	var out bytes.Buffer
	content := `<Window ` + presentationNS + ` ` + xamlNS + `><TextBlock Text="{Binding Title}"/></Window>`

	a := New(Options{
		Path:     writeXAML(t, content),
		MockData: mockdata.Flatten(map[string]interface{}{"Title": "x"}),
		Verbose:  true,
		Out:      &out,
	})

	issues, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Contains(t, out.String(), "binding path 'Title' resolved")
}

func TestRegisterRule(t *testing.T) {
	content := `<Window ` + presentationNS + ` ` + xamlNS + `><Grid/><Grid/></Window>`

	a := New(Options{Path: writeXAML(t, content)})
	a.RegisterRule(func(e Element) []types.Issue {
		if e.Tag != "Grid" {
			return nil
		}
		return []types.Issue{types.NewIssue("T001", e.Location, "grid", types.SeverityInfo)}
	})

	issues, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "Window[0]>Grid[0]", issues[0].Location)
	assert.Equal(t, "Window[0]>Grid[1]", issues[1].Location)
	assert.Equal(t, "static", a.String())
}
