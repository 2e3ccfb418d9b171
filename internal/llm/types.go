package llm

import (
	"context"

	"github.com/openai/openai-go"
)

type Provider interface {
	// Chat runs a single completion turn and returns either final text
	// content or a pending function call.
	Chat(ctx context.Context, system string, user string, opts ...Option) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	Tools       []openai.ChatCompletionToolParam
}

// FunctionResponse represents the structured response from a function call
type FunctionResponse struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Response carries the model's output for one turn: text content when the
// model answered, or FunctionCall when it wants a tool invoked.
type Response struct {
	Content      string
	FunctionCall *FunctionResponse
	Usage        Usage
}

func WithTools(tools []openai.ChatCompletionToolParam) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}
