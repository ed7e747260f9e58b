package remote

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestListenerDeliversEvents(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/realtime" {
			t.Errorf("unexpected path %s", r.URL.Path)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := r.Context()
		// A malformed frame first: the listener must drop it and keep
		// the subscription alive.
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{garbage`))
		_ = conn.Write(ctx, websocket.MessageText,
			[]byte(`{"eventType":"INSERT","new":{"id":"srv-1","task":"From feed"}}`))
		_ = conn.Write(ctx, websocket.MessageText,
			[]byte(`{"eventType":"DELETE","old":{"id":"srv-1"}}`))

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	c := testClient(t, ts.URL)
	c.session.Token = "tok"

	events := make(chan Event, 4)
	l := NewListener(c, func(ev Event) { events <- ev })
	l.Start()
	defer l.Stop()

	first := waitEvent(t, events)
	if first.Type != EventInsert || first.New == nil || first.New.ID != "srv-1" {
		t.Errorf("first event = %+v", first)
	}

	second := waitEvent(t, events)
	if second.Type != EventDelete || second.Old == nil || second.Old.ID != "srv-1" {
		t.Errorf("second event = %+v", second)
	}
}

func TestListenerStopUnblocks(t *testing.T) {
	// No server at all: the listener just retries until stopped.
	c := testClient(t, "http://127.0.0.1:1")

	l := NewListener(c, func(Event) {})
	l.Start()

	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestWSURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://localhost:8080", "ws://localhost:8080"},
		{"https://focal.example.com", "wss://focal.example.com"},
		{"ws://already", "ws://already"},
	}
	for _, tt := range tests {
		if got := wsURL(tt.in); got != tt.want {
			t.Errorf("wsURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no event delivered in time")
		return Event{}
	}
}
