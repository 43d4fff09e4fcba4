package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestCloseClientsLogsWriteErrors(t *testing.T) {
	var buf bytes.Buffer
	s := New(offlineTracker(t), zerolog.New(&buf))

	// Given a registered client whose connection is already gone
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		conns <- conn
	}))
	defer srv.Close()
	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer peer.Close()
	conn := <-conns
	conn.Close()
	s.clients.Store("c1", &client{id: "c1", conn: conn})

	// When the server shuts down
	s.closeClients()

	// Then the failed close frame is logged
	if !strings.Contains(buf.String(), "Error sending close message") || !strings.Contains(buf.String(), `"client":"c1"`) {
		t.Errorf("log output: %s", buf.String())
	}
}
