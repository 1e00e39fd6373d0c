package xaml

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/hashicorp/go-hclog"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/mockdata"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

// Element is the node handed to rules during the walk.
type Element struct {
	*etree.Element
	// Location is the ">"-joined Tag[index] route from the root to this element.
	Location string
}

// RuleType defines the signature of a rule applied to every element.
type RuleType func(e Element) []types.Issue

// Options configures a static analyzer.
type Options struct {
	// Path is the XAML file to analyze.
	Path string
	// MockData stands in for the data context when resolving binding paths.
	MockData mockdata.Table
	// Verbose prints a confirmation line to Out for every resolved binding.
	Verbose bool
	Out     io.Writer
	Logger  hclog.Logger
}

// Analyzer detects binding and namespace problems in a single XAML file.
type Analyzer struct {
	Name   string
	opts   Options
	logger hclog.Logger
	rules  []RuleType
}

// New creates a static analyzer with the default rules registered.
func New(opts Options) *Analyzer {
	if opts.MockData == nil {
		opts.MockData = mockdata.Table{}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	a := &Analyzer{
		Name:   "static",
		opts:   opts,
		logger: opts.Logger.Named("static"),
	}
	a.RegisterRule(undefinedPrefixRule)
	a.RegisterRule(a.bindingRule)

	return a
}

// String returns the string representation of the analyzer.
func (a *Analyzer) String() string {
	return a.Name
}

// RegisterRule registers a rule applied to every element in document order.
func (a *Analyzer) RegisterRule(rule RuleType) {
	a.rules = append(a.rules, rule)
}

// Run parses the file and returns the issues found, root checks first and then
// element issues in pre-order. A syntax error is reported as an issue; the
// walk continues on the recovered tree when there is one.
func (a *Analyzer) Run(ctx context.Context) ([]types.Issue, error) {
	if a.opts.Path == "" {
		return nil, fmt.Errorf("%w: static analysis requires a XAML file path", analyzers.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(a.opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: XAML file %s: %w", analyzers.ErrNotFound, a.opts.Path, err)
		}
		return nil, err
	}

	issues := []types.Issue{}
	documentLocation := filepath.Base(a.opts.Path)

	doc, err := parseDocument(content)
	if err != nil {
		a.logger.Debug("document is not well-formed", "path", a.opts.Path, "error", err)
		issues = append(issues, types.NewIssue(
			types.CodeXMLSyntax,
			documentLocation,
			fmt.Sprintf("XML syntax error: %v", err),
			types.SeverityError,
		))
	}
	if doc == nil || doc.Root() == nil {
		return issues, nil
	}

	root := doc.Root()
	rootLocation := label(root, 0)
	issues = append(issues, checkRoot(root, rootLocation)...)

	a.walk(root, rootLocation, &issues)
	a.logger.Debug("static analysis finished", "path", a.opts.Path, "issues", len(issues))

	return issues, nil
}

// parseDocument parses strictly first. If that fails the document is re-read in
// permissive mode and the strict error is returned alongside whatever was
// recovered.
func parseDocument(content []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveDuplicateAttrs = true
	strictErr := doc.ReadFromBytes(content)
	if strictErr == nil && doc.Root() != nil {
		return doc, checkWellFormed(doc)
	}
	if strictErr == nil {
		strictErr = fmt.Errorf("document has no root element")
	}

	recovered := etree.NewDocument()
	recovered.ReadSettings.Permissive = true
	if err := recovered.ReadFromBytes(content); err != nil {
		return nil, strictErr
	}

	return recovered, strictErr
}

// checkWellFormed catches what the decoder lets through: extra top-level
// elements, text outside the root and repeated attributes.
func checkWellFormed(doc *etree.Document) error {
	roots := 0
	for _, token := range doc.Child {
		switch t := token.(type) {
		case *etree.Element:
			roots++
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return fmt.Errorf("text %q outside the root element", strings.TrimSpace(t.Data))
			}
		}
	}
	if roots != 1 {
		return fmt.Errorf("document has %d root elements, expected 1", roots)
	}

	return checkAttributes(doc.Root())
}

func checkAttributes(e *etree.Element) error {
	seen := make(map[string]bool, len(e.Attr))
	for _, attr := range e.Attr {
		key := attr.FullKey()
		if seen[key] {
			return fmt.Errorf("attribute '%s' redefined on element '%s'", key, e.FullTag())
		}
		seen[key] = true
	}

	for _, child := range e.ChildElements() {
		if err := checkAttributes(child); err != nil {
			return err
		}
	}

	return nil
}

// walk visits every element depth-first in pre-order.
func (a *Analyzer) walk(e *etree.Element, location string, issues *[]types.Issue) {
	for _, rule := range a.rules {
		*issues = append(*issues, rule(Element{Element: e, Location: location})...)
	}

	for idx, child := range e.ChildElements() {
		a.walk(child, location+">"+label(child, idx), issues)
	}
}

// label returns the Tag[index] segment for an element.
func label(e *etree.Element, index int) string {
	return fmt.Sprintf("%s[%d]", e.FullTag(), index)
}

// checkRoot validates the namespace declarations on the root element.
func checkRoot(root *etree.Element, location string) []types.Issue {
	var hasDefault, hasXaml bool
	for _, attr := range root.Attr {
		switch {
		case attr.Space == "" && attr.Key == "xmlns":
			hasDefault = true
		case attr.Space == "xmlns" && attr.Key == "x":
			hasXaml = true
		}
	}

	var issues []types.Issue
	if !hasDefault {
		issues = append(issues, types.NewIssue(
			types.CodeMissingDefaultNS,
			location,
			"Root element does not declare the default WPF namespace (xmlns=\"http://schemas.microsoft.com/winfx/2006/xaml/presentation\").",
			types.SeverityWarning,
		))
	}
	if !hasXaml {
		issues = append(issues, types.NewIssue(
			types.CodeMissingXamlNS,
			location,
			"Root element does not declare the XAML namespace prefix 'x' (xmlns:x=\"http://schemas.microsoft.com/winfx/2006/xaml\").",
			types.SeverityWarning,
		))
	}

	return issues
}

// undefinedPrefixRule flags attributes whose namespace prefix is not declared
// on the element or any of its ancestors.
func undefinedPrefixRule(e Element) []types.Issue {
	var issues []types.Issue
	for _, attr := range e.Attr {
		if attr.Space == "" || attr.Space == "xmlns" || attr.Space == "xml" {
			continue
		}
		if resolvePrefix(e.Element, attr.Space) {
			continue
		}
		issues = append(issues, types.NewIssue(
			types.CodeUndefinedPrefix,
			e.Location,
			fmt.Sprintf("Attribute '%s' uses undefined namespace prefix '%s'.", attr.FullKey(), attr.Space),
			types.SeverityWarning,
		))
	}

	return issues
}

// resolvePrefix reports whether prefix is declared on e or one of its ancestors.
func resolvePrefix(e *etree.Element, prefix string) bool {
	for ; e != nil; e = e.Parent() {
		for _, attr := range e.Attr {
			if attr.Space == "xmlns" && attr.Key == prefix {
				return true
			}
		}
	}

	return false
}

// bindingRule inspects binding expressions in attribute values and in the
// element's own text.
func (a *Analyzer) bindingRule(e Element) []types.Issue {
	var issues []types.Issue
	for _, attr := range e.Attr {
		if !strings.Contains(attr.Value, "Binding") {
			continue
		}
		issues = append(issues, a.inspectBinding(e.Location, attr.FullKey(), attr.Value)...)
	}

	text := strings.TrimSpace(e.Text())
	if strings.HasPrefix(text, "{") && strings.Contains(text, "Binding") {
		issues = append(issues, a.inspectBinding(e.Location, "text", text)...)
	}

	return issues
}
