package models

import (
	"errors"
	"strings"
)

// Tool is a productivity tool users can log time against.
type Tool struct {
	Name        string  `json:"name" yaml:"name"`
	Multiplier  float64 `json:"multiplier" yaml:"multiplier"`
	Description string  `json:"description" yaml:"description"`
}

// Validate checks the Tool invariants (non-empty name, multiplier > 0).
func (t Tool) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("tool name is required")
	}
	if t.Multiplier <= 0 {
		return errors.New("tool multiplier must be > 0")
	}
	return nil
}
