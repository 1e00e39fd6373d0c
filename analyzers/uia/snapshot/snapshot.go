// Package snapshot implements a UI Automation backend over a recorded
// accessibility tree, so runtime inspection can run without a live desktop.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/uia"
)

// DefaultPollInterval is how often the snapshot file is re-read while searching.
const DefaultPollInterval = 100 * time.Millisecond

// Node is a recorded control.
type Node struct {
	ControlType  string  `json:"controlType"`
	Name         string  `json:"name,omitempty"`
	AutomationID string  `json:"automationId,omitempty"`
	Value        *string `json:"value,omitempty"`
	// Error, when set, makes child enumeration of this node fail.
	Error    string  `json:"error,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Snapshot is the file format: the top-level windows of a desktop session.
type Snapshot struct {
	Windows []*Node `json:"windows"`
}

// Backend serves window searches from a snapshot file. The file is re-read on
// every poll, so windows written to it during a search are found.
type Backend struct {
	Path         string
	PollInterval time.Duration
	logger       hclog.Logger
}

// New creates a backend for the snapshot at path.
func New(path string, logger hclog.Logger) *Backend {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Backend{
		Path:         path,
		PollInterval: DefaultPollInterval,
		logger:       logger.Named("snapshot"),
	}
}

// Load reads and decodes the snapshot file.
func (b *Backend) Load() (*Snapshot, error) {
	content, err := os.ReadFile(b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: snapshot file %s: %w", analyzers.ErrNotFound, b.Path, err)
		}
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: snapshot %s: %v", analyzers.ErrMalformedInput, b.Path, err)
	}

	return &snapshot, nil
}

// FindWindow returns the first window whose name equals name.
func (b *Backend) FindWindow(ctx context.Context, name string) (uia.Control, error) {
	return b.poll(ctx, fmt.Sprintf("name %q", name), func(n *Node) bool {
		return n.Name == name
	})
}

// FindWindowMatching returns the first window whose name matches exp.
func (b *Backend) FindWindowMatching(ctx context.Context, exp *regexp.Regexp) (uia.Control, error) {
	return b.poll(ctx, fmt.Sprintf("pattern %q", exp.String()), func(n *Node) bool {
		return exp.MatchString(n.Name)
	})
}

func (b *Backend) poll(ctx context.Context, description string, match func(*Node) bool) (uia.Control, error) {
	ticker := time.NewTicker(b.PollInterval)
	defer ticker.Stop()

	for {
		snapshot, err := b.Load()
		if err != nil && !errors.Is(err, analyzers.ErrNotFound) {
			return nil, err
		}
		if snapshot != nil {
			for _, window := range snapshot.Windows {
				if window != nil && match(window) {
					return control{node: window}, nil
				}
			}
		}

		select {
		case <-ctx.Done():
			b.logger.Debug("window search timed out", "search", description)
			return nil, fmt.Errorf("%w: window with %s: %v", analyzers.ErrNotFound, description, ctx.Err())
		case <-ticker.C:
		}
	}
}

// control adapts a Node to uia.Control.
type control struct {
	node *Node
}

func (c control) ControlTypeName() string { return c.node.ControlType }

func (c control) Name() string { return c.node.Name }

func (c control) AutomationID() string { return c.node.AutomationID }

func (c control) Value() (string, bool) {
	if c.node.Value == nil {
		return "", false
	}
	return *c.node.Value, true
}

func (c control) Children() ([]uia.Control, error) {
	if c.node.Error != "" {
		return nil, errors.New(c.node.Error)
	}

	children := make([]uia.Control, 0, len(c.node.Children))
	for _, child := range c.node.Children {
		if child == nil {
			continue
		}
		children = append(children, control{node: child})
	}

	return children, nil
}
