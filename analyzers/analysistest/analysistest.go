package analysistest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

var (
	// raiseExp matches the annotation body of a fixture comment.
	raiseExp = regexp.MustCompile(`raise:\s*(.+)`)

	// declExp matches XML declarations and processing instructions, which
	// the HTML grammar does not know about.
	declExp = regexp.MustCompile(`<\?[\s\S]*?\?>`)
)

// ParsedIssue represents an issue expected by a "raise:" annotation.
type ParsedIssue struct {
	IssueCode string
	Location  string
	Line      int
}

// ParseAnnotations reads a XAML fixture and returns the issues its comments
// expect. A comment applies to the element that contains it; comments outside
// the root element apply to the document itself.
func ParseAnnotations(filename string) ([]ParsedIssue, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	// blank out declarations without moving any byte offsets
	content = declExp.ReplaceAllFunc(content, func(decl []byte) []byte {
		return []byte(strings.Repeat(" ", len(decl)))
	})

	lang := html.GetLanguage()
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}

	// create a query for fetching comments
	query, err := sitter.NewQuery([]byte("(comment) @comment"), lang)
	if err != nil {
		return nil, err
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var parsedIssues []ParsedIssue
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}

		for _, c := range m.Captures {
			node := c.Node
			body := strings.TrimSuffix(strings.TrimPrefix(node.Content(content), "<!--"), "-->")

			submatches := raiseExp.FindStringSubmatch(body)
			if len(submatches) < 2 {
				continue
			}

			location := route(node, content)
			if location == "" {
				location = filepath.Base(filename)
			}

			for _, issueCode := range strings.Split(submatches[1], ",") {
				parsedIssues = append(parsedIssues, ParsedIssue{
					IssueCode: strings.TrimSpace(issueCode),
					Location:  location,
					Line:      int(node.StartPoint().Row) + 1,
				})
			}
		}
	}

	return parsedIssues, nil
}

// route returns the ">"-joined Tag[index] path of the element enclosing n, or
// an empty string when n sits outside every element.
func route(n *sitter.Node, content []byte) string {
	var segments []string
	for p := n.Parent(); p != nil && !p.IsNull(); p = p.Parent() {
		if p.Type() != "element" {
			continue
		}
		segments = append([]string{fmt.Sprintf("%s[%d]", tagName(p, content), elementIndex(p))}, segments...)
	}

	return strings.Join(segments, ">")
}

// tagName reads the full tag from the element's start tag. The grammar's
// tag_name stops at '.', which XAML property elements use.
func tagName(element *sitter.Node, content []byte) string {
	if element.NamedChildCount() == 0 {
		return ""
	}

	tag := strings.TrimPrefix(element.NamedChild(0).Content(content), "<")
	if end := strings.IndexAny(tag, " \t\r\n/>"); end >= 0 {
		tag = tag[:end]
	}

	return tag
}

// elementIndex counts the element siblings that precede element.
func elementIndex(element *sitter.Node) int {
	parent := element.Parent()
	if parent == nil || parent.IsNull() {
		return 0
	}

	index := 0
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		sibling := parent.NamedChild(i)
		if sibling.StartByte() == element.StartByte() {
			break
		}
		if sibling.Type() == "element" {
			index++
		}
	}

	return index
}

// Verify compares the reported issues with the annotations in filename.
func Verify(issues []types.Issue, filename string) error {
	parsedIssues, err := ParseAnnotations(filename)
	if err != nil {
		return err
	}

	// if number of issues don't match, exit early.
	if len(parsedIssues) != len(issues) {
		return fmt.Errorf("mismatch between the number of reported issues (%d) and annotated issues (%d)", len(issues), len(parsedIssues))
	}

	reported := make([]ParsedIssue, 0, len(issues))
	for _, issue := range issues {
		reported = append(reported, ParsedIssue{IssueCode: issue.IssueCode, Location: issue.Location})
	}

	sortIssues(parsedIssues)
	sortIssues(reported)

	for i := range reported {
		if reported[i].IssueCode != parsedIssues[i].IssueCode || reported[i].Location != parsedIssues[i].Location {
			return fmt.Errorf("mismatch between reported issue %s at %s and annotated issue %s at %s (line %d)",
				reported[i].IssueCode, reported[i].Location, parsedIssues[i].IssueCode, parsedIssues[i].Location, parsedIssues[i].Line)
		}
	}

	return nil
}

func sortIssues(issues []ParsedIssue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Location != issues[j].Location {
			return issues[i].Location < issues[j].Location
		}
		return issues[i].IssueCode < issues[j].IssueCode
	})
}
