package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second

	closeShutdown  = "server shutting down"
	closeSignedOut = "signed out"
)

// Client is one dashboard connection. Dashboards only listen, so anything
// the browser sends is discarded.
type Client struct {
	hub       *Hub
	conn      *ws.Conn
	email     string
	sessionID int64
	send      chan []byte
	reason    string // set by the hub before it closes send
}

func NewClient(hub *Hub, conn *ws.Conn, email string, sessionID int64) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		email:     email,
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
		reason:    closeShutdown,
	}
}

// Run registers the client and writes queued messages until the peer goes
// away, ctx is cancelled or the hub closes the client.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx = c.conn.CloseRead(ctx)
	c.write(ctx)
}

func (c *Client) write(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(ws.StatusGoingAway, c.reason)
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, ws.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
