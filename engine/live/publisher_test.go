package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-bench/engine/stats"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesClient(t *testing.T) {
	p := NewPublisher("unused")
	server := httptest.NewServer(http.HandlerFunc(p.handleStats))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration happens in the HTTP handler; give it a moment.
	require.Eventually(t, func() bool { return p.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	want := stats.Sample{ElapsedSeconds: 12.5, FrameTimeMS: 16.6, RawFrameTimeMS: 17.1}
	p.Publish(want)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got stats.Sample
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, want, got)
}

func TestPublishDropsClosedClient(t *testing.T) {
	p := NewPublisher("unused")
	server := httptest.NewServer(http.HandlerFunc(p.handleStats))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return p.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		p.Publish(stats.Sample{})
		return p.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestPublishWithNoClients(t *testing.T) {
	p := NewPublisher("unused")
	assert.NotPanics(t, func() {
		p.Publish(stats.Sample{ElapsedSeconds: 1})
	})
}
