package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/existcore/focal/internal/model"
)

// hubTestServer serves a bare upgrade endpoint that registers every
// connection under the user id given in the path.
func hubTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.add(conn, strings.TrimPrefix(r.URL.Path, "/"))
		go hub.readLoop(conn)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func dialHub(t *testing.T, ctx context.Context, ts *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/" + userID
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestHubPublishReachesOwnerOnly(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	ts := hubTestServer(t, hub)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	owner := dialHub(t, ctx, ts, "user-a")
	other := dialHub(t, ctx, ts, "user-b")

	if count := hub.ClientCount(); count != 2 {
		t.Fatalf("Expected 2 clients, got %d", count)
	}

	task := model.Task{ID: "t-1", Task: "Broadcast me", Context: model.ContextPersonal}
	hub.Publish("user-a", Event{Type: EventInsert, New: &task})

	_, data, err := owner.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}
	if ev.Type != EventInsert || ev.New == nil || ev.New.ID != "t-1" {
		t.Errorf("Unexpected event: %+v", ev)
	}

	// The other user's session must see nothing.
	shortCtx, shortCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer shortCancel()
	if _, _, err := other.Read(shortCtx); err == nil {
		t.Error("Event leaked to another user's session")
	}
}

func TestHubDeleteEventCarriesOldID(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	ts := hubTestServer(t, hub)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialHub(t, ctx, ts, "user-a")

	hub.Publish("user-a", Event{Type: EventDelete, Old: &model.Task{ID: "gone"}})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}
	if ev.Type != EventDelete || ev.Old == nil || ev.Old.ID != "gone" || ev.New != nil {
		t.Errorf("Unexpected event: %+v", ev)
	}
}

func TestBuildSetClause(t *testing.T) {
	set, args, err := buildSetClause(map[string]interface{}{"is_deleted": true}, 3)
	if err != nil {
		t.Fatalf("buildSetClause: %v", err)
	}
	if set != "is_deleted = $3" || len(args) != 1 || args[0] != true {
		t.Errorf("clause = %q args = %v", set, args)
	}

	if _, _, err := buildSetClause(map[string]interface{}{"user_id": "x"}, 3); err == nil {
		t.Error("non-patchable column must be rejected")
	}

	if _, _, err := buildSetClause(map[string]interface{}{"deadline": "not-a-time"}, 3); err == nil {
		t.Error("garbage deadline must be rejected")
	}
}
