package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/events"
	"receipt-bridge/internal/model"
)

func newEventServer(t *testing.T, allowed []string) (*WebSocketHandler, *events.Bus, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bus := events.NewBus(logger)
	go bus.Run(ctx)

	h := NewWebSocketHandler(bus, &config.SecurityConfig{AllowedOrigins: allowed}, logger)
	go h.Run(ctx)

	engine := gin.New()
	engine.GET("/ws/events", h.HandleEventConnection)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return h, bus, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
}

func TestEventStreamDeliversPrintJobs(t *testing.T) {
	h, bus, url := newEventServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello WebSocketMessage
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello.Type)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	job := events.PrintJob{
		JobID:     "job-1",
		Kind:      "receipt",
		Role:      string(model.RoleReceipt),
		Transport: string(model.TransportNetwork),
		Success:   true,
		Bytes:     128,
		Duration:  40 * time.Millisecond,
	}

	// The forwarder subscribes asynchronously, so keep publishing until one lands.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			bus.Publish(job.Event())
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, events.TypePrintJob, msg.Type)
	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "job-1", data["jobId"])
	assert.Equal(t, "network", data["transport"])
	assert.Equal(t, true, data["success"])
	assert.NotContains(t, data, "error")
}

func TestEventStreamAnswersPing(t *testing.T) {
	_, _, url := newEventServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello WebSocketMessage
	require.NoError(t, conn.ReadJSON(&hello))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var pong WebSocketMessage
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong.Type)
}

func TestEventStreamRejectsForeignOrigin(t *testing.T) {
	_, _, url := newEventServer(t, []string{"http://localhost:3000"})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://localhost:3000")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestConnectionManagerUnregisterIsIdempotent(t *testing.T) {
	cm := NewConnectionManager()
	client := &Client{ID: "a", Send: make(chan []byte, 1)}
	cm.Register(client)
	assert.Equal(t, 1, cm.Count())

	cm.Unregister(client)
	cm.Unregister(client)
	assert.Equal(t, 0, cm.Count())
	assert.False(t, cm.SendTo(client, []byte(`{"type":"late"}`)))
}
