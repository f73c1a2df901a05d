package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescon/Unqlocked/internal/logger"
	"github.com/mescon/Unqlocked/internal/metrics"
	"github.com/mescon/Unqlocked/internal/services"
	"github.com/mescon/Unqlocked/internal/statemachine"
	"github.com/mescon/Unqlocked/internal/testutil"
)

type testServer struct {
	server  *RESTServer
	hub     *WebSocketHub
	display *services.Display
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewWebSocketHub("", logger.Nop(), false)
	t.Cleanup(hub.Close)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetricsService(reg, reg)
	hub.SetGauge(m)

	display := services.NewDisplay(services.NewSpriteClock(hub), m, logger.Nop(), hub,
		statemachine.WithObserver(m))
	t.Cleanup(display.Shutdown)

	s := NewRESTServer(ServerDeps{
		Layout:  testutil.TinyLayout(t),
		Display: display,
		Hub:     hub,
		Metrics: m,
	})
	return &testServer{server: s, hub: hub, display: display}
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

// =============================================================================
// Route tests
// =============================================================================

func TestRESTServer_Index(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<title>Unqlocked</title>")
}

func TestRESTServer_Layout(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/layout")
	require.Equal(t, http.StatusOK, w.Code)

	var resp layoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Tiny", resp.Name)
	assert.Equal(t, 5, resp.Width)
	assert.Equal(t, 3, resp.Height)
	assert.Equal(t, []string{"I", "T", "X", "I", "S"}, resp.Matrix[0])
	assert.Equal(t, []string{"00:00:00", "00:05:00", "00:10:00"}, resp.Times)
	assert.Len(t, resp.Hours, 12)
}

func TestRESTServer_LayoutMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewWebSocketHub("", logger.Nop(), false)
	defer hub.Close()
	s := NewRESTServer(ServerDeps{Hub: hub})

	req := httptest.NewRequest(http.MethodGet, "/api/layout", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRESTServer_Frame(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/frame")
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing drawn yet")

	ts.hub.DrawSprites(2)

	w = ts.get(t, "/api/frame")
	require.Equal(t, http.StatusOK, w.Code)
	var frame Frame
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &frame))
	require.NotNil(t, frame.Sprites)
	assert.Equal(t, 2, *frame.Sprites)
	assert.Nil(t, frame.Matrix)
	assert.False(t, frame.UpdatedAt.IsZero())
}

func TestRESTServer_Health(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "sprites", resp["face"])
	assert.Equal(t, "stopped", resp["face_status"])
	assert.Equal(t, float64(services.SpriteDelay), resp["delay_seconds"])
	assert.Equal(t, float64(0), resp["clients"])
}

func TestRESTServer_Metrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unqlocked_connected_clients")
}

func TestRESTServer_NoRoute(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/unknown")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
}

func TestRESTServer_RequestID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/api/health")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36, "generated ids are uuids")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

// =============================================================================
// End to end
// =============================================================================

func TestRESTServer_ConnectStartsFace(t *testing.T) {
	ts := newTestServer(t)
	ts.hub.OnConnect(func() {
		assert.NoError(t, ts.display.Ensure())
	})
	srv := httptest.NewServer(ts.server.Handler())
	t.Cleanup(srv.Close)

	before := time.Now().Minute() % 5
	conn := dial(t, srv, "/api/ws")

	msg := readType(t, conn, MsgSprites)
	after := time.Now().Minute() % 5
	var n int
	require.NoError(t, json.Unmarshal(msg.Data, &n))
	assert.Contains(t, []int{before, after}, n)
	assert.True(t, ts.display.Running())

	w := ts.get(t, "/api/health")
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp["face_status"])
	assert.Equal(t, float64(1), resp["clients"])
}

// =============================================================================
// Helpers
// =============================================================================

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "0m"},
		{5 * time.Minute, "5m"},
		{2*time.Hour + 3*time.Minute, "2h 3m"},
		{49*time.Hour + 10*time.Minute, "2d 1h 10m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUptime(tt.in))
		})
	}
}
