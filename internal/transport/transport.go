// Package transport はサーバーへの双方向メッセージチャネルを提供する
package transport

import (
	"context"
	"fmt"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultMaxMessageSize は1メッセージの最大サイズ（16MiB）
// フルグリッドのスナップショットを1フレームで運べる大きさにする
const DefaultMaxMessageSize = 1 << 24

// Kind は受信メッセージの種別
type Kind int

const (
	KindText    Kind = iota // テキストフレーム（ack）
	KindBinary              // バイナリフレーム（スナップショット）
	KindUnknown             // その他（無視される）
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Message は種別つきの受信メッセージ
type Message struct {
	Kind Kind
	Data []byte
}

// Conn は1本のWebSocket接続を保持する
// 1つのワーカーが専有し、並行アクセスはしない
type Conn struct {
	ws *websocket.Conn
}

// Dial はサーバーに接続する
// maxMessageSizeが0以下の場合はDefaultMaxMessageSizeを使う
func Dial(ctx context.Context, url string, maxMessageSize int64) (*Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	// x/net/websocket servers reject handshakes without an Origin header,
	// so advertise the target host as the origin.
	header := http.Header{}
	if u, err := neturl.Parse(url); err == nil {
		origin := &neturl.URL{Scheme: "http", Host: u.Host}
		if u.Scheme == "wss" {
			origin.Scheme = "https"
		}
		header.Set("Origin", origin.String())
	}
	ws, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	if maxMessageSize <= 0 {
		maxMessageSize = DefaultMaxMessageSize
	}
	ws.SetReadLimit(maxMessageSize)

	return &Conn{ws: ws}, nil
}

// SendText はテキストフレームを送信する
func (c *Conn) SendText(payload []byte) error {
	if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to send: %w", err)
	}
	return nil
}

// Recv は次のメッセージを受信して種別を付けて返す
func (c *Conn) Recv() (Message, error) {
	msgType, data, err := c.ws.ReadMessage()
	if err != nil {
		return Message{}, fmt.Errorf("failed to receive: %w", err)
	}

	switch msgType {
	case websocket.TextMessage:
		return Message{Kind: KindText, Data: data}, nil
	case websocket.BinaryMessage:
		return Message{Kind: KindBinary, Data: data}, nil
	default:
		return Message{Kind: KindUnknown, Data: data}, nil
	}
}

// Close は接続を閉じる（すべての終了経路で呼ばれる）
// クローズハンドシェイクの失敗は接続破棄には影響しない
func (c *Conn) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.ws.Close()
}
