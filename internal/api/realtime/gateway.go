package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/springmeet/springmeet/pkg/httpx"
	"github.com/springmeet/springmeet/pkg/slogx"

	"github.com/coder/websocket"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsReadLimit    = 4096
)

// Gateway upgrades HTTP requests to websocket room connections. The token is
// carried as an access_token query parameter because browser websocket
// handshakes cannot set custom headers; authorization happens before the
// upgrade so rejected clients get a plain 401 instead of a closed socket.
type Gateway struct {
	Log      *slog.Logger
	Registry *Registry
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	meetupID := r.PathValue("id")
	token := r.URL.Query().Get("access_token")

	userID, err := g.Registry.Authorize(ctx, token, meetupID)
	if err != nil {
		if errors.Is(err, ErrUnauthorizedConn) {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		l.Error("realtime authorize failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}

	sock, err := websocket.Accept(w, r, nil)
	if err != nil {
		l.Info("websocket accept failed", slog.Any("error", err))
		return
	}
	sock.SetReadLimit(wsReadLimit)

	conn := &wsConn{sock: sock}
	defer func() {
		conn.markClosed()
		g.Registry.Leave(meetupID, conn)
		_ = sock.Close(websocket.StatusNormalClosure, "bye")
	}()

	if err := g.Registry.Join(ctx, meetupID, userID, conn); err != nil {
		l.Info("connected ack failed", slog.Any("error", err))
		return
	}

	// Clients only receive on this socket. The read loop exists to observe
	// the close handshake and to drain any frames the peer sends anyway.
	for {
		if _, _, err := sock.Read(ctx); err != nil {
			return
		}
	}
}

// wsConn adapts a websocket connection to the registry's Conn interface.
type wsConn struct {
	sock   *websocket.Conn
	closed atomic.Bool
}

func (c *wsConn) Send(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()

	if err := c.sock.Write(ctx, websocket.MessageText, data); err != nil {
		c.markClosed()
		return err
	}
	return nil
}

func (c *wsConn) IsOpen() bool { return !c.closed.Load() }

func (c *wsConn) markClosed() { c.closed.Store(true) }
