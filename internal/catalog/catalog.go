// Package catalog holds the tool catalog: the tools users can log time against and the
// multiplier each one applies to credit accrual.
package catalog

import (
	"log/slog"
	"strings"

	"github.com/timebank/backend/internal/models"
)

// Default returns the built-in tool catalog.
func Default() []models.Tool {
	return []models.Tool{
		{Name: "ChatGPT", Multiplier: 1.25, Description: "AI-powered chat assistant"},
		{Name: "Copilot", Multiplier: 1.5, Description: "AI pair programmer"},
		{Name: "Amazon Q Developer", Multiplier: 1.5, Description: "AI-powered coding companion for AWS"},
	}
}

// Catalog is an immutable set of tools. Build it once at start-up and share it.
type Catalog struct {
	tools []models.Tool
}

// New returns a Catalog over a copy of tools.
func New(tools []models.Tool) *Catalog {
	cp := make([]models.Tool, len(tools))
	copy(cp, tools)
	return &Catalog{tools: cp}
}

// Load builds a Catalog from LoadTools(path, log).
func Load(path string, log *slog.Logger) *Catalog {
	return New(LoadTools(path, log))
}

// LoadTools returns the built-in catalog when path is empty, otherwise the tools parsed from
// the YAML file at path. It never fails: any read, parse or validation error is logged and
// an empty slice is returned.
func LoadTools(path string, log *slog.Logger) []models.Tool {
	if log == nil {
		log = slog.Default()
	}
	if path == "" {
		return Default()
	}
	tools, err := ReadFile(path)
	if err != nil {
		log.Error("failed to load tool catalog", "path", path, "error", err)
		return []models.Tool{}
	}
	log.Info("tool catalog loaded", "path", path, "tools", len(tools))
	return tools
}

// Resolve finds a tool by case-insensitive exact name match.
func Resolve(name string, tools []models.Tool) (models.Tool, bool) {
	for _, t := range tools {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return models.Tool{}, false
}

// Resolve finds a tool by case-insensitive exact name match.
func (c *Catalog) Resolve(name string) (models.Tool, bool) {
	return Resolve(name, c.tools)
}

// Tools returns a copy of the catalog in definition order.
func (c *Catalog) Tools() []models.Tool {
	cp := make([]models.Tool, len(c.tools))
	copy(cp, c.tools)
	return cp
}

// Names returns the tool names in definition order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name
	}
	return names
}

func (c *Catalog) Len() int { return len(c.tools) }
