package notifications_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sonashow/internal/notifications"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if messageType != websocket.TextMessage {
		return errors.New("unexpected message type")
	}
	if c.fail {
		return errors.New("broken pipe")
	}
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func TestHubBroadcastsEnvelope(t *testing.T) {
	hub := notifications.NewHub(nil)
	a, b := &fakeConn{}, &fakeConn{}
	hub.Add(a)
	hub.Add(b)

	hub.Publish(notifications.EventToast, notifications.Toast{Title: "Search Exhausted", Message: "m"})

	for _, conn := range []*fakeConn{a, b} {
		if len(conn.frames) != 1 {
			t.Fatalf("expected one frame, got %d", len(conn.frames))
		}
		var env struct {
			Event string              `json:"event"`
			Data  notifications.Toast `json:"data"`
		}
		if err := json.Unmarshal(conn.frames[0], &env); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if env.Event != notifications.EventToast || env.Data.Title != "Search Exhausted" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	}
}

func TestHubDropsFailingClients(t *testing.T) {
	hub := notifications.NewHub(nil)
	good, bad := &fakeConn{}, &fakeConn{fail: true}
	hub.Add(good)
	hub.Add(bad)

	hub.Publish(notifications.EventClear, nil)

	if hub.Count() != 1 {
		t.Fatalf("expected failing client to be dropped, have %d", hub.Count())
	}
	if !bad.closed {
		t.Fatal("expected failing client to be closed")
	}
}

func TestHubSendToSingleClient(t *testing.T) {
	hub := notifications.NewHub(nil)
	a, b := &fakeConn{}, &fakeConn{}
	id := hub.Add(a)
	hub.Add(b)

	if err := hub.SendTo(id, notifications.EventSettingsLoaded, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("SendTo returned error: %v", err)
	}
	if len(a.frames) != 1 || len(b.frames) != 0 {
		t.Fatalf("expected only target to receive frame, got %d/%d", len(a.frames), len(b.frames))
	}
	hub.Remove(id)
	if !a.closed || hub.Count() != 1 {
		t.Fatal("expected Remove to close and unregister the client")
	}
}

func TestFanoutAndRecorder(t *testing.T) {
	var first, second notifications.Recorder
	var calls int
	sink := notifications.Fanout{&first, nil, &second, notifications.SinkFunc(func(string, any) { calls++ })}

	sink.Publish(notifications.EventClear, nil)
	sink.Publish(notifications.EventRefreshShow, "x")

	if len(first.Messages()) != 2 || len(second.Messages()) != 2 || calls != 2 {
		t.Fatalf("expected every sink to see both events")
	}
	if got := first.Events(notifications.EventRefreshShow); len(got) != 1 || got[0].Payload != "x" {
		t.Fatalf("unexpected filtered events: %+v", got)
	}
	first.Reset()
	if len(first.Messages()) != 0 {
		t.Fatal("expected Reset to clear messages")
	}
}
