package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type staticCart struct {
	summary model.CartSummary
}

func (s staticCart) GetCart(ctx context.Context, sessionID string) (model.CartSummary, error) {
	return s.summary, nil
}

func sampleSummary() model.CartSummary {
	return model.CartSummary{
		Items: []model.CartLineItem{{
			ProductID:   "b-1",
			DisplayName: "Gold Plated Kada",
			UnitPrice:   1299,
			Size:        "2.6",
			ColorName:   "Gold",
			ColorHex:    "#ffd700",
			Quantity:    2,
			OrderClass:  model.OrderClassRetail,
		}},
		TotalItems:  2,
		TotalAmount: 2598,
	}
}

func setupHubTest(t *testing.T, source CartSource) (*Hub, *httptest.Server) {
	hub := NewHub(source)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, r.URL.Query().Get("session"))
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHub_NotifyCart_ReachesEveryTab(t *testing.T) {
	hub, srv := setupHubTest(t, nil)

	tab1 := dial(t, srv, "session-1")
	tab2 := dial(t, srv, "session-1")
	other := dial(t, srv, "session-2")
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 3 }, 2*time.Second, 10*time.Millisecond)

	hub.NotifyCart("session-1", sampleSummary())

	for _, tab := range []*websocket.Conn{tab1, tab2} {
		event := readEvent(t, tab)
		assert.Equal(t, EventCartUpdated, event["type"])
		assert.Equal(t, float64(2), event["total_items"])
		assert.Equal(t, float64(2598), event["total_amount"])
		assert.Len(t, event["items"], 1)
	}

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_SyncAndPing(t *testing.T) {
	hub, srv := setupHubTest(t, staticCart{summary: sampleSummary()})

	tab := dial(t, srv, "session-1")
	require.Eventually(t, func() bool { return hub.IsSessionOnline("session-1") }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, tab.WriteJSON(ClientMessage{Type: "sync"}))
	event := readEvent(t, tab)
	assert.Equal(t, EventCartUpdated, event["type"])
	assert.Equal(t, float64(2), event["total_items"])

	require.NoError(t, tab.WriteJSON(ClientMessage{Type: "ping"}))
	event = readEvent(t, tab)
	assert.Equal(t, EventPong, event["type"])
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, srv := setupHubTest(t, nil)

	tab := dial(t, srv, "session-1")
	require.Eventually(t, func() bool { return hub.IsSessionOnline("session-1") }, 2*time.Second, 10*time.Millisecond)

	tab.Close()
	assert.Eventually(t, func() bool { return !hub.IsSessionOnline("session-1") }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// No pumps and no buffer: the first broadcast finds the channel full.
	slow := &Client{Hub: hub, SessionID: "session-1", Send: make(chan []byte)}
	hub.Register(slow)
	require.Eventually(t, func() bool { return hub.IsSessionOnline("session-1") }, 2*time.Second, 10*time.Millisecond)

	hub.NotifyCart("session-1", sampleSummary())

	assert.Eventually(t, func() bool { return !hub.IsSessionOnline("session-1") }, 2*time.Second, 10*time.Millisecond)
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestHub_RemoveTwiceIsSafe(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(hub, nil, "session-1")
	hub.clients["session-1"] = []*Client{client}

	hub.remove(client)
	assert.NotPanics(t, func() { hub.remove(client) })
	assert.Zero(t, hub.ConnectionCount())
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := NewClient(hub, nil, "closing-session")
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.IsSessionOnline("closing-session")
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, open := <-client.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_RegisterAfterStopDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// more calls than the channel buffers hold
	clients := make([]*Client, 300)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := range clients {
			clients[i] = NewClient(hub, nil, "late-session")
			hub.Register(clients[i])
		}
		for _, c := range clients {
			hub.Unregister(c)
		}
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked after hub stopped")
	}

	for _, c := range clients {
		_, open := <-c.Send
		assert.False(t, open)
	}
	assert.Equal(t, 0, hub.ConnectionCount())
}
