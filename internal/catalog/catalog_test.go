package catalog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadTools_DefaultWhenNoPath(t *testing.T) {
	tools := LoadTools("", quiet)
	require.Len(t, tools, 3)
	assert.Equal(t, "ChatGPT", tools[0].Name)
	assert.Equal(t, 1.25, tools[0].Multiplier)
}

func TestLoadTools_FromFile(t *testing.T) {
	path := writeFile(t, `
tools:
  - name: Cursor
    multiplier: 2
    description: AI code editor
  - name: Claude
    multiplier: 1.75
`)
	tools := LoadTools(path, quiet)
	require.Len(t, tools, 2)
	assert.Equal(t, "Cursor", tools[0].Name)
	assert.Equal(t, 2.0, tools[0].Multiplier)
	assert.Equal(t, "AI code editor", tools[0].Description)
	assert.Equal(t, 1.75, tools[1].Multiplier)
}

func TestLoadTools_FailsSoft(t *testing.T) {
	cases := map[string]string{
		"zero multiplier":   "tools:\n  - name: X\n    multiplier: 0\n",
		"negative":          "tools:\n  - name: X\n    multiplier: -1\n",
		"missing name":      "tools:\n  - multiplier: 1\n",
		"unknown field":     "tools:\n  - name: X\n    multiplier: 1\n    color: red\n",
		"not yaml":          "tools: [",
		"duplicate names":   "tools:\n  - name: Copilot\n    multiplier: 1\n  - name: copilot\n    multiplier: 2\n",
		"multiplier string": "tools:\n  - name: X\n    multiplier: fast\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			tools := LoadTools(writeFile(t, body), quiet)
			assert.NotNil(t, tools)
			assert.Empty(t, tools)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		tools := LoadTools(filepath.Join(t.TempDir(), "nope.yaml"), quiet)
		assert.Empty(t, tools)
	})
}

func TestParse_ReportsInvalidCatalog(t *testing.T) {
	_, err := Parse([]byte("tools:\n  - name: X\n    multiplier: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestResolve_CaseInsensitiveExactOnly(t *testing.T) {
	c := New(Default())

	tool, ok := c.Resolve("chatgpt")
	require.True(t, ok)
	assert.Equal(t, "ChatGPT", tool.Name)

	tool, ok = c.Resolve("AMAZON Q DEVELOPER")
	require.True(t, ok)
	assert.Equal(t, "Amazon Q Developer", tool.Name)

	for _, miss := range []string{"chat", "chatgpt4", "amazon q", " copilot", ""} {
		_, ok := c.Resolve(miss)
		assert.False(t, ok, "%q should not resolve", miss)
	}
}

func TestCatalog_IsImmutable(t *testing.T) {
	src := Default()
	c := New(src)
	src[0].Multiplier = 99

	tools := c.Tools()
	tools[1].Name = "changed"

	got, _ := c.Resolve("ChatGPT")
	assert.Equal(t, 1.25, got.Multiplier)
	assert.Equal(t, []string{"ChatGPT", "Copilot", "Amazon Q Developer"}, c.Names())
}

func TestEmptyCatalog(t *testing.T) {
	c := New(nil)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Names())
	_, ok := c.Resolve("ChatGPT")
	assert.False(t, ok)
}
