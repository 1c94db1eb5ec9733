package schema

// ToolCall is a model-issued request to invoke a named tool with the
// given JSON-encoded arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolResult carries a tool's output back for the model to consume,
// keyed to the ToolCall.ID that requested it.
type ToolResult struct {
	CallID  string
	Content []ContentPart
	IsError bool
}

// ToolDefinition describes a tool a ChatModel may choose to call: its
// name, a natural-language description, and a JSON Schema describing its
// input.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}
