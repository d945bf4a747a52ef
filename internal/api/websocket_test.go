package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loomworks/loom/internal/events"
)

func dialWS(t *testing.T, handler *WSHandler) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readWSJSON(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("failed to parse message: %v", err)
	}
	return resp
}

func TestWSHandler_Connect(t *testing.T) {
	pub := events.NewMemoryPublisher()
	handler := NewWSHandler(pub, nil)
	ws := dialWS(t, handler)

	if err := ws.WriteJSON(WSMessage{Type: "ping"}); err != nil {
		t.Errorf("failed to send message: %v", err)
	}
	resp := readWSJSON(t, ws)
	if resp["type"] != "pong" {
		t.Errorf("expected type 'pong', got %v", resp["type"])
	}

	if handler.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", handler.ConnectionCount())
	}
}

func TestWSHandler_Subscribe(t *testing.T) {
	pub := events.NewMemoryPublisher()
	handler := NewWSHandler(pub, nil)
	ws := dialWS(t, handler)

	if err := ws.WriteJSON(WSMessage{Type: "subscribe", WorkflowID: "wf-1"}); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}

	resp := readWSJSON(t, ws)
	if resp["type"] != "subscribed" {
		t.Errorf("expected type 'subscribed', got %v", resp["type"])
	}
	if resp["workflow_id"] != "wf-1" {
		t.Errorf("expected workflow_id 'wf-1', got %v", resp["workflow_id"])
	}
}

func TestWSHandler_SubscribeRequiresWorkflowID(t *testing.T) {
	pub := events.NewMemoryPublisher()
	handler := NewWSHandler(pub, nil)
	ws := dialWS(t, handler)

	if err := ws.WriteJSON(WSMessage{Type: "subscribe"}); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}

	resp := readWSJSON(t, ws)
	if resp["type"] != "error" {
		t.Errorf("expected type 'error', got %v", resp["type"])
	}
}

func TestWSHandler_ForwardsEvents(t *testing.T) {
	pub := events.NewMemoryPublisher()
	handler := NewWSHandler(pub, nil)
	ws := dialWS(t, handler)

	if err := ws.WriteJSON(WSMessage{Type: "subscribe", WorkflowID: "wf-1"}); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}
	if resp := readWSJSON(t, ws); resp["type"] != "subscribed" {
		t.Fatalf("expected subscribed ack, got %v", resp["type"])
	}

	pub.Publish(events.NewEvent(events.EventBlockValue, "wf-1", map[string]any{
		"block_id": "agent-1",
	}))

	resp := readWSJSON(t, ws)
	if resp["type"] != "event" {
		t.Fatalf("expected type 'event', got %v", resp["type"])
	}
	if resp["event"] != string(events.EventBlockValue) {
		t.Errorf("expected event %q, got %v", events.EventBlockValue, resp["event"])
	}
	if resp["workflow_id"] != "wf-1" {
		t.Errorf("expected workflow_id 'wf-1', got %v", resp["workflow_id"])
	}
}

func TestWSHandler_GlobalSubscription(t *testing.T) {
	pub := events.NewMemoryPublisher()
	handler := NewWSHandler(pub, nil)
	ws := dialWS(t, handler)

	if err := ws.WriteJSON(WSMessage{Type: "subscribe", WorkflowID: events.GlobalWorkflowID}); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}
	if resp := readWSJSON(t, ws); resp["type"] != "subscribed" {
		t.Fatalf("expected subscribed ack, got %v", resp["type"])
	}

	pub.Publish(events.NewEvent(events.EventWorkflowCreated, "wf-2", nil))

	resp := readWSJSON(t, ws)
	if resp["type"] != "event" {
		t.Fatalf("expected type 'event', got %v", resp["type"])
	}
	if resp["workflow_id"] != "wf-2" {
		t.Errorf("expected workflow_id 'wf-2', got %v", resp["workflow_id"])
	}
}
