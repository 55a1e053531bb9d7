// Package live implements the push channel behind the dashboard watch
// view. The backend emits JSON frames of the shape {"event": ..., "data":
// ...}; the channel decodes the two events the console cares about and
// delivers them in arrival order. Counters are overwritten wholesale on
// every dashboard-update, never merged.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dta-platform/adminctl/internal/model"
)

// Frame is the raw wire envelope for every push event.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event names the backend pushes.
const (
	EventDashboardUpdate = "dashboard-update"
	EventNotification    = "notification"
)

// Event is a decoded push event. Exactly one of Stats and Notice is
// meaningful, selected by Name.
type Event struct {
	Name   string
	Stats  model.DashboardStats
	Notice model.Broadcast
}

// Channel is a live subscription to one backend. It does not reconnect;
// when the peer goes away Events closes and Err reports why.
type Channel struct {
	conn     *websocket.Conn
	fieldMap model.FieldMap
	events   chan Event

	mu  sync.Mutex
	err error
}

// Dial connects to the backend's push endpoint. baseURL is the profile's
// HTTP base URL; the scheme is rewritten for WebSocket and the bearer
// token attached as a header. The returned channel is already reading.
func Dial(ctx context.Context, baseURL, token string, fm model.FieldMap) (*Channel, error) {
	wsURL, err := pushURL(baseURL)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", wsURL, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	if fm == nil {
		fm = model.DefaultFieldMap()
	}
	ch := &Channel{
		conn:     conn,
		fieldMap: fm,
		events:   make(chan Event, 16),
	}
	go ch.readLoop()
	return ch, nil
}

// Events delivers decoded push events in arrival order. The channel closes
// when the connection ends; check Err afterwards.
func (c *Channel) Events() <-chan Event { return c.events }

// Err reports why the event stream ended. Nil while the channel is open or
// after a clean Close.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close tears down the connection. The events channel closes shortly after.
func (c *Channel) Close() error {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline())
	return c.conn.Close()
}

func (c *Channel) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue // malformed frame, skip
		}

		switch frame.Event {
		case EventDashboardUpdate:
			var payload map[string]json.RawMessage
			if err := json.Unmarshal(frame.Data, &payload); err != nil {
				continue
			}
			c.events <- Event{
				Name:  EventDashboardUpdate,
				Stats: model.StatsFromPayload(payload, c.fieldMap),
			}
		case EventNotification:
			var notice model.Broadcast
			if err := json.Unmarshal(frame.Data, &notice); err != nil {
				continue
			}
			c.events <- Event{Name: EventNotification, Notice: notice}
		}
		// Unrecognized events are dropped so newer backends can add
		// event types without breaking older consoles.
	}
}

func deadline() time.Time { return time.Now().Add(time.Second) }

// pushURL derives the WebSocket endpoint from the HTTP base URL.
func pushURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
