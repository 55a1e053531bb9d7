package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dta-platform/adminctl/internal/model"
)

var upgrader = websocket.Upgrader{}

// pushServer upgrades one connection, records the Authorization header,
// writes the given raw frames, then closes cleanly.
func pushServer(t *testing.T, frames []string, gotAuth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		if gotAuth != nil {
			*gotAuth = r.Header.Get("Authorization")
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				t.Errorf("write: %v", err)
				return
			}
		}
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collect(t *testing.T, ch *Channel) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for the event stream to close")
		}
	}
}

func TestDialDecodesEventsInOrder(t *testing.T) {
	var auth string
	srv := pushServer(t, []string{
		`{"event":"dashboard-update","data":{"totalUsers":7,"totalEarnings":90000,"totalTasks":3,"pendingWithdrawals":2}}`,
		`{"event":"notification","data":{"message":"System maintenance at midnight"}}`,
	}, &auth)

	ch, err := Dial(context.Background(), srv.URL, "tok123", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer ch.Close()

	events := collect(t, ch)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if auth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want bearer token", auth)
	}

	want := model.DashboardStats{TotalUsers: 7, TotalEarnings: 90000, TotalTasks: 3, PendingWithdrawals: 2}
	if events[0].Name != EventDashboardUpdate || events[0].Stats != want {
		t.Errorf("event 0 = %+v, want dashboard-update %+v", events[0], want)
	}
	if events[1].Name != EventNotification || events[1].Notice.Message != "System maintenance at midnight" {
		t.Errorf("event 1 = %+v, want notification", events[1])
	}
	if err := ch.Err(); err != nil {
		t.Errorf("Err after clean close = %v, want nil", err)
	}
}

func TestDialNormalizesLegacyFieldNames(t *testing.T) {
	srv := pushServer(t, []string{
		`{"event":"dashboard-update","data":{"totalUsers":4,"totalEarnings":15000,"taskCompletions":9,"totalWithdrawals":1}}`,
	}, nil)

	ch, err := Dial(context.Background(), srv.URL, "", model.DefaultFieldMap())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer ch.Close()

	events := collect(t, ch)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	want := model.DashboardStats{TotalUsers: 4, TotalEarnings: 15000, TotalTasks: 9, PendingWithdrawals: 1}
	if events[0].Stats != want {
		t.Errorf("stats = %+v, want %+v", events[0].Stats, want)
	}
}

func TestDialSkipsMalformedAndUnknownFrames(t *testing.T) {
	srv := pushServer(t, []string{
		`not json at all`,
		`{"event":"presence","data":{"online":3}}`,
		`{"event":"notification","data":{"message":"still here"}}`,
	}, nil)

	ch, err := Dial(context.Background(), srv.URL, "", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer ch.Close()

	events := collect(t, ch)
	if len(events) != 1 || events[0].Notice.Message != "still here" {
		t.Errorf("events = %+v, want only the notification", events)
	}
}

func TestPushURL(t *testing.T) {
	tests := []struct {
		base string
		want string
		ok   bool
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws", true},
		{"https://api.example.com/", "wss://api.example.com/ws", true},
		{"https://api.example.com/v1", "wss://api.example.com/v1/ws", true},
		{"ftp://example.com", "", false},
	}
	for _, tt := range tests {
		got, err := pushURL(tt.base)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("pushURL(%q) = %q, %v; want %q", tt.base, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("pushURL(%q) should fail", tt.base)
		}
	}
}
