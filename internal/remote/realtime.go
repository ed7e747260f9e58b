package remote

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
)

// EventType classifies a row change on the remote store.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is a server-pushed row change, independent of the client's own
// request/response cycle. New carries the row after the change, Old the
// row before it (only the id is guaranteed on DELETE).
type Event struct {
	Type EventType   `json:"eventType"`
	New  *model.Task `json:"new,omitempty"`
	Old  *model.Task `json:"old,omitempty"`
}

// Listener maintains one realtime subscription per session and forwards
// events, in delivery order, to a handler.
type Listener struct {
	client  *Client
	handler func(Event)
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewListener creates a listener forwarding events to handler. Call
// Start to begin receiving.
func NewListener(client *Client, handler func(Event)) *Listener {
	return &Listener{
		client:  client,
		handler: handler,
	}
}

// Start connects and begins the read loop in the background. Dropped
// connections are retried with backoff until Stop is called.
func (l *Listener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx)
}

// Stop closes the subscription and waits for the read loop to exit.
func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)

	backoff := time.Second
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Debug("Realtime connection lost", logger.F("error", err), logger.F("retryIn", backoff.String()))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// listen dials the feed and applies events until the connection drops.
func (l *Listener) listen(ctx context.Context) error {
	url := wsURL(l.client.ServerURL()) + "/api/v1/realtime"

	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: map[string][]string{
			"Authorization": {"Bearer " + l.client.session.Token},
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	logger.Info("Realtime subscription established")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			logger.Warn("Dropping malformed realtime event", logger.F("error", err))
			continue
		}

		l.handler(ev)
	}
}

func wsURL(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	}
	return httpURL
}
