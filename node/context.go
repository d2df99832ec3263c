package node

import (
	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/util"
)

// ExecutionContext is the facade bound to one node during one traversal
// visit. It resolves configured parameters against input item data and hands
// out injected capability handles for reserved parameter names.
type ExecutionContext struct {
	node         *model.Node
	inputs       [][]model.ExecutionItem
	capabilities map[string]any
}

func NewExecutionContext(n *model.Node, inputs [][]model.ExecutionItem, capabilities map[string]any) *ExecutionContext {
	return &ExecutionContext{
		node:         n,
		inputs:       inputs,
		capabilities: capabilities,
	}
}

func (ec *ExecutionContext) Node() *model.Node {
	return ec.node
}

// GetParameter returns the node's configured value for name, resolved
// against the json payload of the input item at itemIndex. Reserved names
// return the injected capability handle instead, which is how plugins reach
// external collaborators without the engine knowing their concrete types.
func (ec *ExecutionContext) GetParameter(name string, itemIndex int, defaultValue any) any {
	if handle, ok := ec.capabilities[name]; ok {
		return handle
	}
	value, ok := ec.node.Parameters[name]
	if !ok {
		return defaultValue
	}
	resolved := util.ResolveParamValue(ec.itemData(itemIndex), value)
	if resolved == nil {
		return defaultValue
	}
	return resolved
}

// GetInputData returns the upstream items for port, or a single synthetic
// empty item when none exist so a trigger style node still executes once.
func (ec *ExecutionContext) GetInputData(port int) []model.ExecutionItem {
	if port < len(ec.inputs) && len(ec.inputs[port]) > 0 {
		return ec.inputs[port]
	}
	return []model.ExecutionItem{model.EmptyItem()}
}

func (ec *ExecutionContext) itemData(itemIndex int) map[string]any {
	items := ec.GetInputData(0)
	if itemIndex < 0 || itemIndex >= len(items) {
		itemIndex = 0
	}
	if items[itemIndex].Json == nil {
		return map[string]any{}
	}
	return items[itemIndex].Json
}
