package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gourmet-kitchen/ordersys/internal/auth"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // below pongWait
	maxMessageSize = 512               // displays only send control frames
	sendBuffer     = 256
)

var errMissingToken = errors.New("missing token")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Queue displays are browsers on the restaurant LAN, served from any host.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client is one connected queue display.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	topics []string
	send   chan []byte
}

// ServeWS upgrades a queue display connection.
// Endpoint: WS /ws/queue?topics=orders,menu&token=JWT
// The token is only checked when the PIN lock is enabled.
func ServeWS(hub *Hub, jwtSecret string, lockEnabled bool, w http.ResponseWriter, r *http.Request) {
	if lockEnabled {
		if err := authorizeDisplay(r, jwtSecret); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &Client{
		hub:    hub,
		conn:   conn,
		topics: ParseTopics(r.URL.Query().Get("topics")),
		send:   make(chan []byte, sendBuffer),
	}
	hub.register <- c

	go c.writeLoop()
	go c.readLoop()
}

// authorizeDisplay checks the ?token= query parameter. Browsers cannot set
// headers on a websocket handshake.
func authorizeDisplay(r *http.Request, jwtSecret string) error {
	token := r.URL.Query().Get("token")
	if token == "" {
		return errMissingToken
	}
	_, err := auth.ValidateToken(jwtSecret, token)
	if errors.Is(err, auth.ErrTokenExpired) {
		return auth.ErrTokenExpired
	}
	if err != nil {
		return auth.ErrTokenInvalid
	}
	return nil
}

// readLoop keeps the read deadline moving with pongs and reports the
// disconnect to the hub. Anything a display sends is discarded.
func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			c.hub.log.WithError(err).Warn("display disconnected unexpectedly")
		}
		return
	}
}

// writeLoop sends each event as its own text frame so displays can parse
// frames independently, and pings on idle.
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Removed by the hub.
				c.writeFrame(websocket.CloseMessage, nil)
				return
			}
			if err := c.writeFrame(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.writeFrame(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeFrame(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data)
}
