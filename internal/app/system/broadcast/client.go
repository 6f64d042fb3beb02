package broadcast

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection for one signed-in user.
type Client struct {
	id     string
	userID primitive.ObjectID
	conn   *websocket.Conn
	hub    *Hub
	out    chan []byte
	log    *zap.Logger
}

// ServeWS upgrades the request to a websocket connection and subscribes it
// to the rooms for groupIDs. It returns once the upgrade has happened; the
// connection's pumps run on their own goroutines.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, groupIDs []primitive.ObjectID) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	connID := uuid.NewString()
	c := &Client{
		id:     connID,
		userID: userID,
		conn:   conn,
		hub:    h,
		out:    make(chan []byte, sendBufferSize),
		log:    h.log.With(zap.String("conn_id", connID), zap.String("user_id", userID.Hex())),
	}

	rooms := make([]string, 0, len(groupIDs))
	for _, gid := range groupIDs {
		rooms = append(rooms, gid.Hex())
	}
	h.register(c, rooms)

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump drains inbound frames so pongs and close frames are processed.
// It exits when the peer goes away, which tears the client down.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		close(c.out)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				c.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump forwards queued frames to the peer and keeps the connection
// alive with periodic pings. One writer per connection; gorilla allows at
// most one concurrent writer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("websocket write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
