package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/net/websocket"
)

// echoHandler replies to each text message with one text and one binary frame.
func echoHandler(ws *websocket.Conn) {
	defer ws.Close()
	for {
		var data string
		if err := websocket.Message.Receive(ws, &data); err != nil {
			return
		}
		if err := websocket.Message.Send(ws, data); err != nil {
			return
		}
		if err := websocket.Message.Send(ws, []byte(data)); err != nil {
			return
		}
	}
}

func TestDialSendRecv(t *testing.T) {
	ts := httptest.NewServer(websocket.Handler(echoHandler))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, err := Dial(context.Background(), url, 0)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	if err := conn.SendText([]byte("hello")); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	msg, err := conn.Recv()
	if err != nil {
		t.Fatalf("failed to receive: %v", err)
	}
	if msg.Kind != KindText {
		t.Errorf("expected text kind, got %v", msg.Kind)
	}
	if string(msg.Data) != "hello" {
		t.Errorf("expected hello, got %q", msg.Data)
	}

	msg, err = conn.Recv()
	if err != nil {
		t.Fatalf("failed to receive: %v", err)
	}
	if msg.Kind != KindBinary {
		t.Errorf("expected binary kind, got %v", msg.Kind)
	}
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/none", 0)
	if err == nil {
		t.Fatal("expected dial error")
	}
}

func TestRecvAfterPeerClose(t *testing.T) {
	handler := websocket.Handler(func(ws *websocket.Conn) {
		_ = ws.Close()
	})
	ts := httptest.NewServer(handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, err := Dial(context.Background(), url, 0)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Recv(); err == nil {
		t.Error("expected error after peer close")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindText, "text"},
		{KindBinary, "binary"},
		{KindUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Kind(%d).String() = %s, want %s", tt.kind, got, tt.expected)
		}
	}
}
