package timer

import (
	"context"

	cws "github.com/coder/websocket"
)

// wsChannel adapts a WebSocket connection to the jrpc2 Channel interface.
type wsChannel struct {
	// conn is the WebSocket connection.
	conn *cws.Conn
	// ctx bounds reads and writes.
	ctx context.Context //nolint:containedctx // The channel interface carries no context.
}

// Send writes a JSON-RPC message.
func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

// Recv reads a JSON-RPC message.
func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)

	return data, err
}

// Close shuts down the connection with a normal closure status.
func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}
