package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/abacus"
	abacushttp "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...abacushttp.Option) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]abacushttp.Option{abacushttp.WithLogger(logger)}, opts...)
	h, err := abacushttp.NewHandler(abacus.New(), session.NewManager(memory.NewStore()), opts...)
	require.NoError(t, err)
	return h
}

func send(t *testing.T, h http.Handler, sessionID string, ev domain.Event) (int, domain.View) {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var view domain.View
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	}
	return rec.Code, view
}

func TestSendEvent_Chain(t *testing.T) {
	h := newTestHandler(t)

	for _, ev := range []domain.Event{
		domain.Digit('7'), domain.Op(domain.OpAdd), domain.Digit('8'),
	} {
		code, _ := send(t, h, "s1", ev)
		require.Equal(t, http.StatusOK, code)
	}
	code, view := send(t, h, "s1", domain.Equals)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "15", view.Display)
	assert.Equal(t, []string{"7 + 8 = 15"}, view.History)
	assert.Equal(t, domain.PhasePartialBinary, view.Phase)
	assert.Empty(t, view.Error)
}

func TestSendEvent_DivisionByZeroIsNotAnHTTPError(t *testing.T) {
	h := newTestHandler(t)
	for _, ev := range []domain.Event{domain.Digit('5'), domain.Op(domain.OpDivide), domain.Digit('0')} {
		send(t, h, "div", ev)
	}

	code, view := send(t, h, "div", domain.Equals)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.KindDivisionByZero, view.Error)
	assert.Equal(t, "Division by zero", view.Message)
	assert.Equal(t, "5 / 0", view.Display)
	assert.Empty(t, view.History)
}

func TestSendEvent_RejectedAppend(t *testing.T) {
	h := newTestHandler(t)
	for _, ev := range []domain.Event{domain.Digit('1'), domain.Op(domain.OpAdd), domain.Digit('2')} {
		send(t, h, "full", ev)
	}

	code, view := send(t, h, "full", domain.Digit('3'))
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, view.Rejected)
	assert.Equal(t, "1 + 2", view.Display)
}

func TestSendEvent_ContractViolations(t *testing.T) {
	h := newTestHandler(t)

	cases := map[string]string{
		"not json":       `{`,
		"unknown type":   `{"type":"sqrt"}`,
		"long value":     `{"type":"digit","value":"12"}`,
		"missing type":   `{"value":"1"}`,
		"unknown fields": `{"type":"digit","value":"1","extra":true}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/sessions/bad/events", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSessions_ListGetDelete(t *testing.T) {
	h := newTestHandler(t)
	send(t, h, "a", domain.Digit('4'))
	send(t, h, "b", domain.Digit('2'))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"a", "b"}, list.Sessions)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/a", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "4", view.Display)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/a", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/a", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthInfoAndDocs(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, strings.TrimSpace(abacus.Version), info["version"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))
	assert.Contains(t, rec.Body.String(), "swagger-ui")
}

func TestMetricsRoute(t *testing.T) {
	h := newTestHandler(t, abacushttp.WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// readEvents collects SSE data lines until n have arrived or the deadline passes.
func readEvents(t *testing.T, r *bufio.Reader, n int) []string {
	t.Helper()
	var out []string
	deadline := time.Now().Add(2 * time.Second)
	for len(out) < n && time.Now().Before(deadline) {
		line, err := r.ReadString('\n')
		if err != nil {
			break
		}
		if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
			out = append(out, data)
		}
	}
	return out
}

func TestSubscribeEvents_Session(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?session_id=sess-1&watch=history,error", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	require.Equal(t, []string{"connected"}, readEvents(t, reader, 1))

	// Display-only changes are filtered out; the evaluation and the error pass.
	for _, ev := range []domain.Event{
		domain.Digit('2'), domain.Op(domain.OpMultiply), domain.Digit('3'), domain.Equals,
		domain.Op(domain.OpDivide), domain.Digit('0'), domain.Equals,
	} {
		send(t, h, "sess-1", ev)
	}

	events := readEvents(t, reader, 2)
	require.Len(t, events, 2)

	var first domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(events[0]), &first))
	require.NotNil(t, first.History)
	assert.Equal(t, []string{"2 * 3 = 6"}, first.History.Appended)

	var second domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(events[1]), &second))
	require.NotNil(t, second.Error)
	assert.Equal(t, domain.KindDivisionByZero, *second.Error)
}
