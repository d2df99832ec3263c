package node

import (
	"github.com/mohitkumar/flowpilot/model"
)

// ParameterSpec describes one configurable parameter of a node type, used by
// external step selection UIs.
type ParameterSpec struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

type Descriptor struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Group       string          `json:"group"`
	Inputs      int             `json:"inputs"`
	Outputs     int             `json:"outputs"`
	Parameters  []ParameterSpec `json:"parameters,omitempty"`
	// Notify is the plugin's default per node notification flag; a workflow
	// definition may override it per configured node.
	Notify bool `json:"notify"`
}

// Plugin is the capability implementation backing a node type. For each input
// item a plugin may emit any number of items on any output port. Partial
// failures belong inside output items ({"success":false,"error":...}); a
// returned error aborts the whole run.
type Plugin interface {
	Descriptor() Descriptor
	Execute(ctx *ExecutionContext) ([][]model.ExecutionItem, error)
}

// Factory produces a fresh plugin instance per node visit.
type Factory func() Plugin
