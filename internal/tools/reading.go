package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"

	"github.com/gridsphere/kesan/internal/farm"
)

// ReadingToolName is the function name the model calls to fetch sensor data.
const ReadingToolName = "get_latest_farm_data"

// ReadingTool fetches the most recent sensor reading for a device. Farm API
// failures never cross the tool boundary as errors: they come back as
// descriptive strings so the reasoning loop can keep going and apologize.
type ReadingTool struct {
	source farm.ReadingSource
}

var _ Executor = (*ReadingTool)(nil)

func NewReadingTool(source farm.ReadingSource) *ReadingTool {
	return &ReadingTool{source: source}
}

func (t *ReadingTool) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Type: openai.F(openai.ChatCompletionToolTypeFunction),
		Function: openai.F(openai.FunctionDefinitionParam{
			Name:        openai.String(ReadingToolName),
			Description: openai.String("Fetch the most recent sensor reading for a farm device. Use this for any question about current weather, temperature, humidity, wind, rainfall or pressure on the farm. Returns a JSON object of sensor values including the timestamp the data was recorded."),
			Parameters: openai.F(openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"device_id": map[string]string{
						"type":        "integer",
						"description": "Numeric identifier of the farm device to read",
					},
				},
				"required": []string{"device_id"},
			}),
		}),
	}
}

func (t *ReadingTool) Execute(ctx context.Context, arguments string) (string, error) {
	slog.Info("tool triggered", "tool", ReadingToolName)

	var args struct {
		DeviceID int64 `json:"device_id"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments for %s: %w", ReadingToolName, err)
	}

	reading, err := t.source.FetchLatest(ctx, args.DeviceID)
	if err != nil {
		slog.Error("farm API interaction failed", "deviceID", args.DeviceID, "error", err)
		if errors.Is(err, farm.ErrInvalidData) {
			return "Error: Received invalid data from the farm API.", nil
		}
		return fmt.Sprintf("Error: Could not connect to the farm API. %v", err), nil
	}

	if reading == nil {
		status, err := json.Marshal(map[string]string{
			"status": fmt.Sprintf("No readings available for device %d", args.DeviceID),
		})
		if err != nil {
			return "", err
		}
		return string(status), nil
	}

	return string(reading), nil
}
