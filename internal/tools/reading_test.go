package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsphere/kesan/internal/farm"
)

type stubSource struct {
	reading  json.RawMessage
	err      error
	deviceID int64
}

func (s *stubSource) FetchLatest(ctx context.Context, deviceID int64) (json.RawMessage, error) {
	s.deviceID = deviceID
	return s.reading, s.err
}

func TestReadingToolReturnsFirstReading(t *testing.T) {
	src := &stubSource{reading: json.RawMessage(`{"temp": 21.5, "timestamp": "2025-10-08 14:24:13"}`)}
	tool := NewReadingTool(src)

	out, err := tool.Execute(context.Background(), `{"device_id": 2}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"temp": 21.5, "timestamp": "2025-10-08 14:24:13"}`, out)
	assert.Equal(t, int64(2), src.deviceID)
}

func TestReadingToolNoReadings(t *testing.T) {
	tool := NewReadingTool(&stubSource{})

	out, err := tool.Execute(context.Background(), `{"device_id": 2}`)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"No readings available for device 2"}`, out)
}

func TestReadingToolInvalidUpstreamData(t *testing.T) {
	tool := NewReadingTool(&stubSource{err: fmt.Errorf("%w: bad body", farm.ErrInvalidData)})

	out, err := tool.Execute(context.Background(), `{"device_id": 2}`)
	require.NoError(t, err)
	assert.Equal(t, "Error: Received invalid data from the farm API.", out)
}

func TestReadingToolUnreachableUpstream(t *testing.T) {
	tool := NewReadingTool(&stubSource{err: errors.New("connection refused")})

	out, err := tool.Execute(context.Background(), `{"device_id": 2}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: Could not connect to the farm API.")
	assert.Contains(t, out, "connection refused")
}

func TestReadingToolBadArguments(t *testing.T) {
	src := &stubSource{deviceID: -1}
	tool := NewReadingTool(src)

	_, err := tool.Execute(context.Background(), `{"device_id": "two"`)
	require.Error(t, err)
	assert.Equal(t, int64(-1), src.deviceID, "source must not be called on bad arguments")
}

func TestRegistryDispatch(t *testing.T) {
	src := &stubSource{reading: json.RawMessage(`{"temp": 19}`)}
	registry := NewRegistry(NewReadingTool(src))

	defs := registry.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, ReadingToolName, defs[0].Function.Value.Name.Value)

	out, err := registry.Execute(context.Background(), ReadingToolName, `{"device_id": 4}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"temp": 19}`, out)

	_, err = registry.Execute(context.Background(), "no_such_tool", `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
