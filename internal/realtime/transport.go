package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one open transport connection owned by the client.
type Conn interface {
	// ReadMessage blocks until the next frame or a transport error.
	ReadMessage() ([]byte, error)

	// Close tears down the connection; ReadMessage then returns an error.
	Close() error
}

// Dialer opens transport connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. The callback must not run synchronously
// inside AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WebSocketURL derives the push endpoint from a relay base URL:
// http -> ws, https -> wss, with "/ws" appended to the path.
func WebSocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse url: missing host in %q", base)
	}

	u.Path = path.Join("/", u.Path, "ws")
	u.RawPath = ""
	return u.String(), nil
}

// WebsocketDialer dials with gorilla/websocket and keeps the connection alive
// with pings when PingInterval is set.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
	PingInterval     time.Duration // 0 disables client pings
	PongTimeout      time.Duration // Max silence before the read fails (default 2*PingInterval)
	WriteTimeout     time.Duration
	Header           http.Header
}

// DefaultWebsocketDialer returns sensible defaults.
func DefaultWebsocketDialer() WebsocketDialer {
	return WebsocketDialer{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PongTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Dial opens a websocket connection, honoring ctx for the handshake.
func (d WebsocketDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}

	header := http.Header{}
	for k, v := range d.Header {
		header[k] = v
	}

	conn, _, err := dialer.DialContext(ctx, rawURL, header)
	if err != nil {
		return nil, err
	}

	wc := &wsConn{
		conn:         conn,
		done:         make(chan struct{}),
		writeTimeout: d.WriteTimeout,
	}
	if wc.writeTimeout <= 0 {
		wc.writeTimeout = 5 * time.Second
	}

	if d.PingInterval > 0 {
		timeout := d.PongTimeout
		if timeout <= 0 {
			timeout = 2 * d.PingInterval
		}
		conn.SetReadDeadline(time.Now().Add(timeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(timeout))
		})
		go wc.heartbeatLoop(d.PingInterval)
	}

	return wc, nil
}

// wsConn adapts *websocket.Conn to Conn.
type wsConn struct {
	conn         *websocket.Conn
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

// Close sends a normal close frame and closes the socket.
func (w *wsConn) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		err = w.conn.Close()
	})
	return err
}

// heartbeatLoop pings the relay; a missing pong surfaces as a read deadline error.
func (w *wsConn) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(w.writeTimeout)
			if err := w.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				return
			}
		}
	}
}
