package tools

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// Executor is one capability the reasoning model may invoke.
type Executor interface {
	// Definition returns the schema exposed to the model.
	Definition() openai.ChatCompletionToolParam

	// Execute runs the tool with the raw JSON arguments produced by the
	// model and returns a string observation for it to read.
	Execute(ctx context.Context, arguments string) (string, error)
}

// Registry is a static table of the tools available to the agent.
type Registry struct {
	tools map[string]Executor
	names []string
}

func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{
		tools: make(map[string]Executor),
	}
	for _, e := range executors {
		name := e.Definition().Function.Value.Name.Value
		r.tools[name] = e
		r.names = append(r.names, name)
	}
	return r
}

// Definitions returns every registered tool schema in registration order.
func (r *Registry) Definitions() []openai.ChatCompletionToolParam {
	defs := make([]openai.ChatCompletionToolParam, 0, len(r.names))
	for _, name := range r.names {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute runs a tool by name.
func (r *Registry) Execute(ctx context.Context, name, arguments string) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("tool %q not found", name)
	}
	return tool.Execute(ctx, arguments)
}
