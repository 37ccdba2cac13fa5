// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/internal/cli/output"
)

// ValidProject is a complete project file that resolves cleanly.
const ValidProject = `android:
  applicationId: com.acme.app
  minPlatformVersion: 23
  versionCode: 7
  versionName: "2.1"
policy:
  minPlatformFloor: 23
`

// SetupTestProject creates a temporary project directory containing a
// leapbuild.yaml with the given content, and makes it the working directory
// for the rest of the test.
func SetupTestProject(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "leapbuild.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to create leapbuild.yaml: %v", err)
	}

	t.Chdir(tmpDir)
	return tmpDir
}

// LoadTestConfig loads the CLI configuration of the current directory
// without flags. Package state is reset when the test ends.
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// TestRenderer is a Renderer whose stdout and stderr are captured.
type TestRenderer struct {
	*output.Renderer
	Out    bytes.Buffer
	ErrOut bytes.Buffer
}

// NewTestRenderer creates a renderer fixed to mode. Text mode simulates a
// terminal; every other mode behaves as if output were piped.
func NewTestRenderer(mode output.OutputMode) *TestRenderer {
	tr := &TestRenderer{}
	tr.Renderer = output.NewRendererWithTTY(&tr.Out, &tr.ErrOut, mode == output.ModeText, mode)
	return tr
}

// NewTestRendererText returns a text-mode test renderer.
func NewTestRendererText() *TestRenderer { return NewTestRenderer(output.ModeText) }

// NewTestRendererMarkdown returns a markdown-mode test renderer.
func NewTestRendererMarkdown() *TestRenderer { return NewTestRenderer(output.ModeMarkdown) }

// NewTestRendererJSON returns a JSON-mode test renderer.
func NewTestRendererJSON() *TestRenderer { return NewTestRenderer(output.ModeJSON) }

// Output returns everything written to stdout.
func (tr *TestRenderer) Output() string { return tr.Out.String() }

// ErrorOutput returns everything written to stderr.
func (tr *TestRenderer) ErrorOutput() string { return tr.ErrOut.String() }

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails the test if s contains terminal escape sequences.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if loc := ansiPattern.FindStringIndex(s); loc != nil {
		t.Errorf("unexpected ANSI escape at offset %d in %q", loc[0], s)
	}
}

// AssertValidMarkdown checks that headers are not empty and that every row
// of a pipe table has as many cells as the table's header row.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	cells := -1
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			if strings.TrimLeft(trimmed, "# ") == "" {
				t.Errorf("line %d: empty header", i+1)
			}
		case strings.HasPrefix(trimmed, "|"):
			n := strings.Count(trimmed, "|")
			if cells < 0 {
				cells = n
			} else if n != cells {
				t.Errorf("line %d: table row has %d separators, header has %d: %q", i+1, n, cells, line)
			}
		default:
			cells = -1
		}
	}
}
