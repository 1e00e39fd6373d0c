package uia

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/types"
)

// DefaultSearchTimeout bounds each of the two window search stages.
const DefaultSearchTimeout = 2 * time.Second

// DefaultMaxDepth is the traversal depth used when none is configured.
const DefaultMaxDepth = 5

// Control is a node of the automation tree. Absent properties are empty strings.
type Control interface {
	ControlTypeName() string
	Name() string
	AutomationID() string
	// Value returns the value pattern's current value. ok is false when the
	// control does not expose one.
	Value() (value string, ok bool)
	Children() ([]Control, error)
}

// Backend locates top-level windows. Both searches block until a match is found
// or ctx is done, and return an error wrapping analyzers.ErrNotFound on timeout.
type Backend interface {
	FindWindow(ctx context.Context, name string) (Control, error)
	FindWindowMatching(ctx context.Context, exp *regexp.Regexp) (Control, error)
}

// Options configures a runtime analyzer.
type Options struct {
	// Backend is the automation binding. A nil backend fails with ErrMissingDependency.
	Backend Backend
	// TargetPath is the executable being inspected; its file name stem is the
	// window title used when none is given.
	TargetPath    string
	WindowTitle   string
	MaxDepth      int
	SearchTimeout time.Duration
	Logger        hclog.Logger
}

// Analyzer inspects a live window through UI Automation.
type Analyzer struct {
	Name   string
	opts   Options
	logger hclog.Logger
}

// New creates a runtime analyzer.
func New(opts Options) *Analyzer {
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = DefaultSearchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	return &Analyzer{
		Name:   "runtime",
		opts:   opts,
		logger: opts.Logger.Named("runtime"),
	}
}

// String returns the string representation of the analyzer.
func (a *Analyzer) String() string {
	return a.Name
}

// Run inspects the window configured in Options.
func (a *Analyzer) Run(ctx context.Context) ([]types.Issue, error) {
	return a.Inspect(ctx, a.opts.WindowTitle, a.opts.MaxDepth)
}

// Inspect resolves the window and walks its control tree down to maxDepth.
func (a *Analyzer) Inspect(ctx context.Context, windowTitle string, maxDepth int) ([]types.Issue, error) {
	if a.opts.Backend == nil {
		return nil, fmt.Errorf("%w: no UI Automation backend is available in this build", analyzers.ErrMissingDependency)
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: max depth must not be negative, got %d", analyzers.ErrInvalidArgument, maxDepth)
	}

	title, err := a.resolveTitle(windowTitle)
	if err != nil {
		return nil, err
	}

	window, err := a.findWindow(ctx, title)
	if err != nil {
		return nil, err
	}

	issues := []types.Issue{}
	a.walk(window, label(window, -1), 0, maxDepth, &issues)
	a.logger.Debug("runtime inspection finished", "window", title, "issues", len(issues))

	return issues, nil
}

// resolveTitle returns the explicit title, or the stem of the target file name.
func (a *Analyzer) resolveTitle(windowTitle string) (string, error) {
	if windowTitle != "" {
		return windowTitle, nil
	}
	if a.opts.TargetPath == "" {
		return "", fmt.Errorf("%w: a window title is required when no target executable is configured", analyzers.ErrInvalidArgument)
	}

	base := filepath.Base(a.opts.TargetPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// dot files such as ".hidden" keep their whole name
		stem = base
	}
	if stem == "." || stem == ".." || stem == string(filepath.Separator) {
		return "", fmt.Errorf("%w: cannot derive a window title from target %q", analyzers.ErrInvalidArgument, a.opts.TargetPath)
	}

	return stem, nil
}

// findWindow tries an exact name match, then a case-sensitive containment
// match, each bounded by the search timeout.
func (a *Analyzer) findWindow(ctx context.Context, title string) (Control, error) {
	exactCtx, cancel := context.WithTimeout(ctx, a.opts.SearchTimeout)
	window, err := a.opts.Backend.FindWindow(exactCtx, title)
	cancel()
	if err == nil {
		return window, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	a.logger.Debug("exact window search failed, retrying with a pattern", "title", title, "error", err)

	exp := regexp.MustCompile(".*" + regexp.QuoteMeta(title) + ".*")
	patternCtx, cancel := context.WithTimeout(ctx, a.opts.SearchTimeout)
	window, err = a.opts.Backend.FindWindowMatching(patternCtx, exp)
	cancel()
	if err == nil {
		return window, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	return nil, fmt.Errorf("%w: no window matching title %q", analyzers.ErrNotFound, title)
}

func isNotFound(err error) bool {
	return errors.Is(err, analyzers.ErrNotFound) || errors.Is(err, context.DeadlineExceeded)
}

// walk checks a control and, while depth < maxDepth, its children.
func (a *Analyzer) walk(c Control, location string, depth, maxDepth int, issues *[]types.Issue) {
	*issues = append(*issues, checkControl(c, location)...)

	if depth >= maxDepth {
		return
	}

	children, err := c.Children()
	if err != nil {
		a.logger.Debug("child enumeration failed", "location", location, "error", err)
		*issues = append(*issues, types.NewIssue(
			types.CodeChildEnumerationFailed,
			location,
			fmt.Sprintf("Failed to enumerate children: %v", err),
			types.SeverityInfo,
		))
		return
	}

	for idx, child := range children {
		a.walk(child, location+">"+label(child, idx), depth+1, maxDepth, issues)
	}
}

// label returns ControlType('Name'), ControlType[index] or ControlType.
func label(c Control, index int) string {
	switch {
	case c.Name() != "":
		return fmt.Sprintf("%s('%s')", c.ControlTypeName(), c.Name())
	case index >= 0:
		return fmt.Sprintf("%s[%d]", c.ControlTypeName(), index)
	default:
		return c.ControlTypeName()
	}
}

var textualTypes = map[string]bool{
	"text":     true,
	"edit":     true,
	"document": true,
}

func isTextual(controlType string) bool {
	return textualTypes[strings.ToLower(strings.TrimSuffix(controlType, "Control"))]
}

func checkControl(c Control, location string) []types.Issue {
	var issues []types.Issue

	if isTextual(c.ControlTypeName()) {
		value, _ := c.Value()
		if value == "" && c.Name() == "" {
			issues = append(issues, types.NewIssue(
				types.CodeEmptyTextControl,
				location,
				fmt.Sprintf("%s appears empty, possible binding failure.", c.ControlTypeName()),
				types.SeverityWarning,
			))
		}
	}

	if c.AutomationID() == "" && c.Name() == "" {
		issues = append(issues, types.NewIssue(
			types.CodeUnnamedControl,
			location,
			"Control lacks AutomationId and Name; consider naming it for testing.",
			types.SeverityInfo,
		))
	}

	return issues
}
