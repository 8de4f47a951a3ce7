package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandevgo/pitchside/internal/config"
	"github.com/sandevgo/pitchside/internal/core"
	"github.com/sandevgo/pitchside/internal/service/chat"
	"github.com/sandevgo/pitchside/internal/service/persona"
)

type stubChat struct {
	result *chat.TurnResult
	err    error

	sessionID string
	personaID string
	query     string
}

func (s *stubChat) Turn(_ context.Context, sessionID, personaID, query string) (*chat.TurnResult, error) {
	s.sessionID, s.personaID, s.query = sessionID, personaID, query
	return s.result, s.err
}

func newTestServer(t *testing.T, stub *stubChat) *Server {
	t.Helper()
	reg, err := persona.NewRegistry(persona.Builtin())
	require.NoError(t, err)
	return NewServer(&config.HTTPConfig{ListenAddr: ":0"}, stub, reg)
}

func postChat(t *testing.T, s *Server, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestChatEndpoint(t *testing.T) {
	stub := &stubChat{result: &chat.TurnResult{
		TurnID:     "t1",
		Response:   "What a strike!",
		StateAfter: core.StateNormal,
	}}
	s := newTestServer(t, stub)

	resp := postChat(t, s, chatRequest{SessionID: "web-1", PersonaID: "terrace-legend", Query: "best goal ever?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out chat.TurnResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "What a strike!", out.Response)
	require.Equal(t, core.StateNormal, out.StateAfter)

	require.Equal(t, "web-1", stub.sessionID)
	require.Equal(t, "terrace-legend", stub.personaID)
	require.Equal(t, "best goal ever?", stub.query)
}

func TestChatValidationErrorIsBadRequest(t *testing.T) {
	stub := &stubChat{err: core.NewValidationError("empty query")}
	s := newTestServer(t, stub)

	resp := postChat(t, s, chatRequest{SessionID: "web-1", PersonaID: "terrace-legend"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatInternalErrorIsOpaque(t *testing.T) {
	stub := &stubChat{err: &core.GenerationError{Err: context.DeadlineExceeded}}
	s := newTestServer(t, stub)

	resp := postChat(t, s, chatRequest{SessionID: "web-1", PersonaID: "terrace-legend", Query: "hi"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPersonasEndpoint(t *testing.T) {
	s := newTestServer(t, &stubChat{})

	req := httptest.NewRequest(http.MethodGet, "/v1/personas", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []personaView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 3)
	require.Equal(t, "radio-gaffer", out[0].ID)
}
