package model

// ExecutionItem is the unit of payload flowing between nodes. Items are
// treated as immutable once produced; plugins build fresh items rather than
// mutating their inputs.
type ExecutionItem struct {
	Json   map[string]any `json:"json"`
	Binary []byte         `json:"binary,omitempty"`
}

func NewExecutionItem(data map[string]any) ExecutionItem {
	if data == nil {
		data = map[string]any{}
	}
	return ExecutionItem{Json: data}
}

// EmptyItem is the synthetic input handed to a node with no upstream data so
// trigger style nodes still execute once.
func EmptyItem() ExecutionItem {
	return ExecutionItem{Json: map[string]any{}}
}
