package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEngine returns a fixed error.
type MockEngine struct {
	Err error
}

func (m *MockEngine) Render(ctx context.Context, req domain.Request) (*domain.Response, error) {
	return nil, m.Err
}

func newTranslator(t *testing.T, opts ...tela.Option) *tela.Translator {
	t.Helper()
	tr, err := tela.New(opts...)
	require.NoError(t, err)
	return tr
}

func post(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/translate", bytes.NewReader(data)))
	return w
}

func TestTranslate(t *testing.T) {
	h := NewHandler(newTranslator(t))

	tests := []struct {
		name     string
		body     TranslateRequest
		status   int
		contains string
	}{
		{"hoa", TranslateRequest{Formula: "a U b"}, http.StatusOK, "Acceptance: 1 Inf(0)"},
		{"mermaid slaa", TranslateRequest{Formula: "a U b", Format: domain.FormatMermaid, Phase: domain.PhaseSLAA}, http.StatusOK, "graph LR"},
		{"config override", TranslateRequest{Formula: "a U b", Config: map[string]any{"fin_to_inf": false}}, http.StatusOK, "Fin(0)"},
		{"syntax error", TranslateRequest{Formula: "a U"}, http.StatusBadRequest, "error"},
		{"empty formula", TranslateRequest{}, http.StatusBadRequest, "formula is required"},
		{"unknown format", TranslateRequest{Formula: "a", Format: "png"}, http.StatusBadRequest, "unsupported format"},
		{"unknown option", TranslateRequest{Formula: "a", Config: map[string]any{"speed": 1}}, http.StatusBadRequest, "unknown option"},
		{"mark budget", TranslateRequest{Formula: "G F a & G F b", Config: map[string]any{"max_marks": 1, "try_negation": false}}, http.StatusUnprocessableEntity, "acceptance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, h, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestTranslate_ResponseBody(t *testing.T) {
	h := NewHandler(newTranslator(t))
	w := post(t, h, TranslateRequest{Formula: "a U b"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Stats.States)
	assert.Equal(t, "basic", resp.Stats.Pass)
	assert.True(t, strings.HasPrefix(resp.Output, "HOA: v1"))
}

func TestTranslate_Query(t *testing.T) {
	h := NewHandler(newTranslator(t))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/translate?formula=G+a&format=dot&phase=1&preset=ltl3ba", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "digraph")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/translate?formula=a&phase=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranslate_EngineFailure(t *testing.T) {
	h := NewHandler(&MockEngine{Err: errors.New("disk on fire")})
	w := post(t, h, TranslateRequest{Formula: "a"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "disk on fire")
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(&MockEngine{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/info", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tela.Version)
	assert.Contains(t, w.Body.String(), "ltl3ba")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/translate", nil))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	h := NewHandler(
		newTranslator(t, tela.WithMetrics(metrics)),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	require.Equal(t, http.StatusOK, post(t, h, TranslateRequest{Formula: "a U b"}).Code)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tela_translations_total{outcome="ok",pass="basic"} 1`)
}

func TestSubscribeEvents(t *testing.T) {
	streams := NewStreamManager()
	tr := newTranslator(t, tela.WithObserver(streams.Observer()))
	srv := httptest.NewServer(NewHandler(tr, WithStreams(streams)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	// the subscription is registered before the ping is written
	_, err = tr.Translate(context.Background(), "(a | b) U G a")
	require.NoError(t, err)

	found := false
	for !found && lines.Scan() {
		found = strings.Contains(lines.Text(), `"type":"mergeable_until"`)
	}
	assert.True(t, found)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe()
	for i := 0; i < 20; i++ {
		sm.Broadcast("x")
	}
	cancel()
	cancel()

	received := 0
	for range ch {
		received++
	}
	assert.Equal(t, 10, received)
}
