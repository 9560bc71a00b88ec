package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(abacus.New(), session.NewManager(memory.NewStore()))
}

func TestPressKeys(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	view, err := s.handlePressKeys(ctx, mcp.CallToolRequest{}, map[string]any{
		"session_id": "agent",
		"keys":       "9 * 3 =",
	})
	require.NoError(t, err)
	assert.Equal(t, "27", view.Display)
	assert.Equal(t, []string{"9 * 3 = 27"}, view.History)

	view, err = s.handlePressKeys(ctx, mcp.CallToolRequest{}, map[string]any{
		"session_id": "agent",
		"keys":       "/ 0 =",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindDivisionByZero, view.Error)
	assert.Equal(t, "27 / 0", view.Display)

	_, err = s.handlePressKeys(ctx, mcp.CallToolRequest{}, map[string]any{
		"session_id": "agent",
		"keys":       "history",
	})
	assert.Error(t, err)

	_, err = s.handlePressKeys(ctx, mcp.CallToolRequest{}, map[string]any{
		"session_id": "agent",
		"keys":       "sqrt",
	})
	assert.Error(t, err)
}

func TestSendEventAndGetState(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	for _, ev := range []map[string]any{
		{"session_id": "s", "type": "digit", "value": "4"},
		{"session_id": "s", "type": "operator", "value": "-"},
		{"session_id": "s", "type": "digit", "value": "6"},
		{"session_id": "s", "type": "digit", "value": "1"},
	} {
		_, err := s.handleSendEvent(ctx, mcp.CallToolRequest{}, ev)
		require.NoError(t, err)
	}

	view, err := s.handleSendEvent(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s", "type": "equals"})
	require.NoError(t, err)
	assert.Equal(t, "-2", view.Display)

	got, err := s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s"})
	require.NoError(t, err)
	assert.Equal(t, view, got)

	_, err = s.handleGetState(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleSendEvent(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s", "type": "digit", "bogus": 1})
	assert.ErrorContains(t, err, "invalid arguments")

	_, err = s.handleSendEvent(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s", "type": "sqrt"})
	assert.ErrorIs(t, err, domain.ErrUnknownEvent)
}

func TestRejectedKeyIsReported(t *testing.T) {
	s := newTestServer()
	view, err := s.handlePressKeys(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"session_id": "full",
		"keys":       "1 + 2 3",
	})
	require.NoError(t, err)
	assert.Equal(t, "1 + 2", view.Display)
	assert.NotEmpty(t, view.Rejected)
}

func TestClearSessionAndResource(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := s.handlePressKeys(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": id, "keys": "1"})
		require.NoError(t, err)
	}

	contents, err := s.handleSessionsResource(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.JSONEq(t, `["a","b"]`, text.Text)

	req := mcp.CallToolRequest{}
	req.Params.Name = "clear_session"
	req.Params.Arguments = map[string]any{"session_id": "a"}
	result, err := s.handleClearSession(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	contents, err = s.handleSessionsResource(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `["b"]`, contents[0].(mcp.TextResourceContents).Text)
}
