package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/rakshit0111/chat-app/internal/domain"
	"github.com/rakshit0111/chat-app/internal/middleware"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 20 * time.Second
)

// Gateway upgrades authenticated HTTP requests to WebSocket connections and
// pumps frames between the socket and the Service.
type Gateway struct {
	svc    *Service
	logger *slog.Logger
}

// NewGateway creates a gateway serving connections for the given service.
func NewGateway(svc *Service) *Gateway {
	return &Gateway{
		svc:    svc,
		logger: slog.Default().With("service", "realtime-gateway"),
	}
}

// Handler returns the echo handler for the /ws endpoint. The auth middleware
// runs first, so an unauthenticated request never reaches the registry.
func (g *Gateway) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(middleware.UserContextKey).(*domain.User)
		if !ok || user == nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "not authenticated"})
		}

		ws, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // origin is enforced by the CORS layer
		})
		if err != nil {
			g.logger.Error("websocket accept failed", "user_id", user.ID, "error", err)
			return err
		}

		conn := NewConn(user.ID)
		g.svc.Register(conn)

		go g.writePump(ws, conn)
		g.readPump(ws, conn)

		g.svc.Unregister(conn)
		_ = ws.Close(websocket.StatusNormalClosure, "bye")
		return nil
	}
}

// readPump consumes frames until the transport fails or the client leaves,
// handling the joinRoom/leaveRoom control events inline.
func (g *Gateway) readPump(ws *websocket.Conn, conn *Conn) {
	ctx := context.Background()
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				g.logger.Info("websocket closed by client", "user_id", conn.UserID(), "conn_id", conn.ID())
			} else if err != io.EOF {
				g.logger.Warn("websocket read error", "user_id", conn.UserID(), "conn_id", conn.ID(), "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		g.handleControlEvent(conn, data)
	}
}

func (g *Gateway) handleControlEvent(conn *Conn, data []byte) {
	ev, err := DecodeEvent(data)
	if err != nil {
		g.logger.Warn("unparseable client frame", "user_id", conn.UserID(), "error", err)
		return
	}

	var roomID string
	switch ev.Name {
	case EventJoinRoom, EventLeaveRoom:
		if err := json.Unmarshal(ev.Data, &roomID); err != nil || roomID == "" {
			g.logger.Warn("control event without room id", "event", ev.Name, "user_id", conn.UserID())
			return
		}
	default:
		g.logger.Debug("ignoring unknown client event", "event", ev.Name, "user_id", conn.UserID())
		return
	}

	if ev.Name == EventJoinRoom {
		g.svc.Join(roomID, conn.UserID())
	} else {
		g.svc.Leave(roomID, conn.UserID())
	}
}

// writePump drains the connection's outbound queue onto the socket and keeps
// the transport alive with periodic pings. It exits when the queue is closed
// by Unregister or a write fails.
func (g *Gateway) writePump(ws *websocket.Conn, conn *Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-conn.Send():
			if !ok {
				_ = ws.Close(websocket.StatusNormalClosure, "server closed connection")
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := ws.Write(ctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				g.logger.Warn("websocket write error", "user_id", conn.UserID(), "conn_id", conn.ID(), "error", err)
				return
			}
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := ws.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
