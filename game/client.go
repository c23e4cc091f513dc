package game

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	outboxSize   = 256
	pingInterval = 30 * time.Second
)

// Client is one connection attached to this worker's gateway.
type Client struct {
	id     string
	socket Connection

	locker      sync.Mutex
	closed      bool
	closeReason string
	outbox      chan []byte

	chatLimiter    *rate.Limiter
	drawingLimiter *rate.Limiter
}

func NewClient(id string, socket Connection) *Client {
	return &Client{
		id:             id,
		socket:         socket,
		outbox:         make(chan []byte, outboxSize),
		chatLimiter:    rate.NewLimiter(1, 5),
		drawingLimiter: rate.NewLimiter(120, 240),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues a frame without blocking. It reports false when the outbox is full.
func (c *Client) Send(data []byte) bool {
	c.locker.Lock()
	defer c.locker.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.outbox <- data:
		return true
	default:
		return false
	}
}

// Close stops accepting frames. Frames already queued are still written, then the
// socket is closed with the given reason.
func (c *Client) Close(reason string) {
	c.locker.Lock()
	defer c.locker.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.closeReason = reason
	close(c.outbox)
}

func (c *Client) reason() string {
	c.locker.Lock()
	defer c.locker.Unlock()
	return c.closeReason
}

// ReadPump reads frames until the connection fails and hands each decoded frame to handle.
func (c *Client) ReadPump(handle func(*Client, Frame)) {
	for {
		data, err := c.socket.Read()
		if err != nil {
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
			log.Debug().Str("conn", c.id).Msg("dropping undecodable frame")
			continue
		}
		handle(c, frame)
	}
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump(pingEvery time.Duration) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.outbox:
			if !ok {
				c.socket.Close(c.reason())
				return
			}
			if err := c.socket.Write(data); err != nil {
				c.socket.Close("")
				return
			}
		case <-ticker.C:
			if err := c.socket.Ping(); err != nil {
				c.socket.Close("")
				return
			}
		}
	}
}

func encodeFrame(event string, data []byte) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: data})
}
