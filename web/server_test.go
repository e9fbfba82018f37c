package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// setupTestSockets upgrades incoming connections and hands the
// server-side conn to the test over a channel.
func setupTestSockets(t *testing.T) (*httptest.Server, chan *websocket.Conn, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	accepted := make(chan *websocket.Conn, 2)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade error: %v", err)
			return
		}
		accepted <- conn
	}))

	return ts, accepted, ts.Close
}

func dialTestSocket(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	return conn
}

func TestBroadcastPrunesDeadClients(t *testing.T) {
	ts, accepted, cleanup := setupTestSockets(t)
	defer cleanup()

	s := &Server{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte),
	}

	live := dialTestSocket(t, ts)
	defer live.Close()
	liveConn := <-accepted

	dead := dialTestSocket(t, ts)
	deadConn := <-accepted

	s.clientsMux.Lock()
	s.clients[liveConn] = true
	s.clients[deadConn] = true
	s.clientsMux.Unlock()

	// Tear down the second client so the broadcast write to it fails
	deadConn.Close()
	dead.Close()

	go s.handleBroadcast()
	s.broadcast <- []byte(`{"type":"ping"}`)

	live.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := live.ReadMessage()
	if err != nil {
		t.Fatalf("live client read error: %v", err)
	}
	if string(msg) != `{"type":"ping"}` {
		t.Errorf("message = %q", msg)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		s.clientsMux.RLock()
		_, present := s.clients[deadConn]
		count := len(s.clients)
		s.clientsMux.RUnlock()
		if !present {
			if count != 1 {
				t.Errorf("clients = %d, want 1", count)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("dead client was not removed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
