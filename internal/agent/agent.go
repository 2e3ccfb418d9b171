package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gridsphere/kesan/internal/llm"
	"github.com/gridsphere/kesan/internal/tools"
)

const (
	// MaxSteps bounds the reasoning loop.
	MaxSteps = 5

	maxObservationLen = 5000
)

// fallbackAnswer covers the rare case of the model returning empty content
// on its final turn.
const fallbackAnswer = "Sorry, I couldn't find an answer."

type stepData struct {
	StepNumber  int
	ToolName    string
	Arguments   string
	Observation string
}

type agentState struct {
	Steps    int
	Gathered []stepData
}

// Agent runs one question through the tool-augmented reasoning loop and
// returns the model's final text answer. It holds no per-request state, so
// a single Agent serves concurrent requests.
type Agent struct {
	provider llm.Provider
	registry *tools.Registry
	now      func() time.Time
}

func New(provider llm.Provider, registry *tools.Registry) *Agent {
	return &Agent{
		provider: provider,
		registry: registry,
		now:      time.Now,
	}
}

// Ask runs the reasoning loop for a single question about one device.
func (a *Agent) Ask(ctx context.Context, deviceID int64, question string) (string, error) {
	slog.Info("starting agent run", "deviceID", deviceID)

	state := &agentState{
		Gathered: make([]stepData, 0),
	}

	for state.Steps < MaxSteps {
		system := fmt.Sprintf("%s\n\nCurrent step: %d/%d\nPrevious tool results:\n%s\n\n%s",
			composeSystem(a.now(), deviceID), state.Steps+1, MaxSteps,
			summarizeObservations(state.Gathered), historyReminder(state.Gathered))

		resp, err := a.provider.Chat(ctx, system, question, llm.WithTools(a.registry.Definitions()))
		if err != nil {
			slog.Error("model request failed", "error", err)
			return "", fmt.Errorf("model request failed: %w", err)
		}

		if resp.FunctionCall == nil {
			slog.Info("agent run finished", "steps", state.Steps, "tokens", resp.Usage.TotalTokens)
			if resp.Content == "" {
				return fallbackAnswer, nil
			}
			return resp.Content, nil
		}

		a.handleToolCall(ctx, state, resp.FunctionCall)
	}

	// Max steps reached without a final answer, force a summary.
	return a.finalSummary(ctx, deviceID, question, state)
}

// handleToolCall executes the requested tool and records the observation.
// Nothing in here aborts the loop: execution errors (bad arguments,
// unknown tool) are turned into observations so the model can correct
// itself or apologize.
func (a *Agent) handleToolCall(ctx context.Context, state *agentState, call *llm.FunctionResponse) {
	slog.Info("executing tool call", "tool", call.Name)

	// Identical repeated calls reuse the earlier observation instead of
	// hitting the farm API again.
	for _, sd := range state.Gathered {
		if sd.ToolName == call.Name && sd.Arguments == call.Arguments {
			state.Gathered = append(state.Gathered, stepData{
				StepNumber:  state.Steps + 1,
				ToolName:    call.Name,
				Arguments:   call.Arguments,
				Observation: fmt.Sprintf("Same call as step %d, result unchanged: %s", sd.StepNumber, sd.Observation),
			})
			state.Steps++
			return
		}
	}

	observation, err := a.registry.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		slog.Warn("tool execution failed", "tool", call.Name, "error", err)
		observation = fmt.Sprintf("Error: could not run %s: %v. Fix the arguments and try again, or apologize to the user.", call.Name, err)
	}

	state.Gathered = append(state.Gathered, stepData{
		StepNumber:  state.Steps + 1,
		ToolName:    call.Name,
		Arguments:   call.Arguments,
		Observation: truncateString(observation, maxObservationLen),
	})
	state.Steps++
}

func (a *Agent) finalSummary(ctx context.Context, deviceID int64, question string, state *agentState) (string, error) {
	slog.Info("max steps reached, generating final summary")

	system := fmt.Sprintf(`%s

You have reached the maximum number of steps (%d). Do not request any more tool calls.
Using only the tool results below, give your final answer to the user's question now.

Tool results:
%s`, composeSystem(a.now(), deviceID), MaxSteps, summarizeObservations(state.Gathered))

	resp, err := a.provider.Chat(ctx, system, question)
	if err != nil {
		slog.Error("final summary failed", "error", err)
		return "", fmt.Errorf("final summary failed: %w", err)
	}

	if resp.Content == "" {
		return fallbackAnswer, nil
	}
	return resp.Content, nil
}

func summarizeObservations(data []stepData) string {
	if len(data) == 0 {
		return "No tool calls have been made yet."
	}
	summary := ""
	for _, step := range data {
		summary += fmt.Sprintf("Step %d:\n  Tool: %s\n  Arguments: %s\n  Result: %s\n\n",
			step.StepNumber, step.ToolName, step.Arguments, step.Observation)
	}
	return summary
}

func historyReminder(data []stepData) string {
	if len(data) == 0 {
		return ""
	}

	reminder := "Previously made tool calls (do not repeat these exact calls, the results will not change):\n"
	seen := make(map[string]bool)
	for _, sd := range data {
		key := sd.ToolName + sd.Arguments
		if !seen[key] {
			reminder += fmt.Sprintf("- Tool: %s Arguments: %s\n", sd.ToolName, sd.Arguments)
			seen[key] = true
		}
	}
	return reminder
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "\n[truncated]"
	}
	return s
}
