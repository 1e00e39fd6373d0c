package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed rules.toml
var defaultRules []byte

// Rule describes an issue code reported by the analyzers.
type Rule struct {
	Code        string `toml:"code"`
	Name        string `toml:"name"`
	Category    string `toml:"category"`
	Severity    string `toml:"severity"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// Rules is a catalog sorted by code.
type Rules []Rule

// rulesTOML is used for decoding rules from a TOML file.
type rulesTOML struct {
	Rules []map[string]interface{} `toml:"rules"`
}

// Default returns the built-in catalog.
func Default() (Rules, error) {
	return FetchRules(bytes.NewReader(defaultRules))
}

// FetchRules reads a TOML file containing all rules, and returns them sorted by code.
func FetchRules(r io.Reader) (Rules, error) {
	rules, err := readTOML(r)
	if err != nil {
		return nil, err
	}

	// sort rules (based on code) before returning
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Code < rules[j].Code
	})

	return rules, nil
}

// Lookup returns the rule with the given code.
func (r Rules) Lookup(code string) (Rule, bool) {
	for _, rule := range r {
		if rule.Code == code {
			return rule, true
		}
	}

	return Rule{}, false
}

// BuildTOML writes one <code>.toml file per rule to rootDir.
func (r Rules) BuildTOML(rootDir string) error {
	if len(r) == 0 {
		return errors.New("no rules found")
	}

	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return err
	}

	for _, rule := range r {
		// The filename is based on the rule code. Files cannot be generated for rules having an empty code.
		if rule.Code == "" {
			return errors.New("invalid rule code. cannot generate toml")
		}

		f, err := os.Create(filepath.Join(rootDir, fmt.Sprintf("%s.toml", rule.Code)))
		if err != nil {
			return err
		}

		if err := writeTOML(f, rule); err != nil {
			f.Close()
			return err
		}

		if err := f.Close(); err != nil {
			return err
		}
	}

	return nil
}

// HTMLDescription returns the rule description rendered from markdown and sanitized.
func (r Rule) HTMLDescription() (string, error) {
	return readMarkdown(r.Description)
}

// readTOML reads content from a reader and converts the [[rules]] tables to Rules.
func readTOML(r io.Reader) (Rules, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var decoded rulesTOML
	if err := toml.Unmarshal(content, &decoded); err != nil {
		return nil, err
	}

	var rules Rules
	for _, table := range decoded.Rules {
		rules = append(rules, Rule{
			Code:        stringField(table, "code"),
			Name:        stringField(table, "name"),
			Category:    stringField(table, "category"),
			Severity:    stringField(table, "severity"),
			Title:       stringField(table, "title"),
			Description: stringField(table, "description"),
		})
	}

	return rules, nil
}

func stringField(table map[string]interface{}, key string) string {
	if table[key] == nil {
		return ""
	}
	return fmt.Sprintf("%v", table[key])
}

// writeTOML writes the rule data to the writer.
func writeTOML(w io.Writer, rule Rule) error {
	return toml.NewEncoder(w).Encode(rule)
}

// readMarkdown is a helper utility used for parsing and sanitizing markdown content.
func readMarkdown(content string) (string, error) {
	// use the Github-flavored Markdown extension
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}

	// sanitize markdown body
	p := bluemonday.UGCPolicy()
	return p.Sanitize(buf.String()), nil
}
