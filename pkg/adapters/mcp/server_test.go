package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := abacus.New()
	require.NoError(t, err)
	return NewServer(eng, session.NewManager(memory.NewStore()))
}

func TestEvaluateTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]interface{}
		value   float64
		display string
		errText string
	}{
		{"Arithmetic", map[string]interface{}{"expression": "2+3*4"}, 14, "14", ""},
		{"Radians", map[string]interface{}{"expression": "cos(0)", "angle": "rad"}, 1, "1", ""},
		{"Vars", map[string]interface{}{"expression": "Ans+X", "vars": `{"Ans": 10, "x": 2}`}, 12, "12", ""},
		{"Domain", map[string]interface{}{"expression": "sqrt(-1)"}, 0, "", "Domain Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleEvaluate(ctx, mcp.CallToolRequest{}, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.value, res.Value)
			assert.Equal(t, tt.display, res.Display)
			assert.Equal(t, tt.errText, res.Error)
		})
	}

	_, err := s.handleEvaluate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"expression": "1", "vars": "{"})
	assert.Error(t, err)
}

func TestSessionTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	// 1. Press keys and text in the default session
	res, err := s.handlePressKeys(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"keys": "7 *",
		"text": "6=",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionID, res.SessionID)
	assert.Equal(t, "42", res.View.Result)

	// 2. Display survives between calls
	res, err = s.handleGetDisplay(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "42", res.View.Result)
	assert.Equal(t, domain.ModeShowingResult, res.View.Mode)

	// 3. Ans carries over
	res, err = s.handlePressKeys(ctx, mcp.CallToolRequest{}, map[string]interface{}{"text": "Ans/2="})
	require.NoError(t, err)
	assert.Equal(t, "21", res.View.Result)

	// 4. Clear memory resets Ans
	res, err = s.handleClearMemory(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "0", res.View.Input)

	res, err = s.handlePressKeys(ctx, mcp.CallToolRequest{}, map[string]interface{}{"text": "Ans+1="})
	require.NoError(t, err)
	assert.Equal(t, "1", res.View.Result)
}

func TestPressKeys_InvalidKey(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handlePressKeys(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "x",
		"keys":       "1 BOGUS",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp := s.MCPServer().HandleMessage(context.Background(), msg)
	require.NotNil(t, resp)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"evaluate", "press_keys", "get_display", "clear_memory"} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
