package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)

	n.Success("Added to cart")
	n.Error("Failed to load products")

	assert.Equal(t, "✓ Added to cart\n✗ Failed to load products\n", buf.String())
}

func TestColorize_PlainWriter(t *testing.T) {
	assert.Equal(t, "text", Colorize(&bytes.Buffer{}, "text", ColorRed))
}

func TestSpinner_NoopWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading")
	s.Start()
	s.Stop()
	assert.Empty(t, buf.String())
}

func TestPrompt_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := NewPrompt(strings.NewReader(tt.input), &out)
		assert.Equal(t, tt.want, p.Confirm("Delete product p1?"), "input %q", tt.input)
		assert.Contains(t, out.String(), "Delete product p1? [y/N]: ")
	}
}

func TestPrompt_AssumeYes(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader(""), &out)
	p.AssumeYes = true
	assert.True(t, p.Confirm("Delete?"))
	assert.Empty(t, out.String())
}

func TestWriteCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh"} {
		var buf bytes.Buffer
		require.NoError(t, WriteCompletion(&buf, shell))
		for _, c := range Commands {
			assert.Contains(t, buf.String(), c.Name, "%s script", shell)
		}
	}

	err := WriteCompletion(&bytes.Buffer{}, "fish")
	assert.Error(t, err)
}

func TestInstallCompletion(t *testing.T) {
	home := t.TempDir()

	path, err := InstallCompletion(home, "zsh")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".zsh", "completion", "_laborder"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ZshCompletion, string(data))
}
