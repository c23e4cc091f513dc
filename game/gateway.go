package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oxjadex/catchme--catchyou/bus"
	"github.com/oxjadex/catchme--catchyou/metrics"
	"github.com/rs/zerolog/log"
)

const commandTimeout = 5 * time.Second

// Gateway owns the connections attached to this worker. It turns client frames
// into room commands or relayed events, and delivers the room's events to its
// local clients.
type Gateway struct {
	room      string
	fabric    bus.Fabric
	fanout    *Fanout
	pingEvery time.Duration

	locker  sync.RWMutex
	clients map[string]*Client
}

func NewGateway(room string, fabric bus.Fabric) *Gateway {
	return &Gateway{
		room:      room,
		fabric:    fabric,
		fanout:    NewFanout(fabric, room),
		pingEvery: pingInterval,
		clients:   make(map[string]*Client),
	}
}

// Run delivers room events to local clients until ctx is done. started is closed
// once the event subscription is active.
func (g *Gateway) Run(ctx context.Context, started chan struct{}) error {
	sub, err := g.fabric.Subscribe(ctx, EventsTopic(g.room))
	if err != nil {
		return fmt.Errorf("subscribing to room events: %w", err)
	}
	defer sub.Close()

	close(started)
	log.Info().Str("room", g.room).Msg("gateway relaying room events")

	for {
		select {
		case <-ctx.Done():
			g.closeAll(ctx, "server-shutdown")
			return nil
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			g.deliver(msg)
		}
	}
}

// Serve attaches a connection to the room and blocks until it disconnects.
func (g *Gateway) Serve(ctx context.Context, socket Connection) {
	client := NewClient(uuid.NewString(), socket)
	g.register(client)
	go client.WritePump(g.pingEvery)

	if err := g.fanout.SendCommand(ctx, CommandJoin, client.id, nil); err != nil {
		log.Error().Str("room", g.room).Str("conn", client.id).Err(err).Msg("failed to forward join")
		g.disconnect(ctx, client, "unavailable")
		return
	}

	client.ReadPump(func(c *Client, f Frame) { g.handleFrame(ctx, c, f) })
	g.disconnect(ctx, client, "")
}

func (g *Gateway) handleFrame(ctx context.Context, c *Client, f Frame) {
	var err error

	switch f.Event {
	case EventDrawing:
		if !c.drawingLimiter.Allow() {
			return
		}
		err = g.fanout.EmitOthers(ctx, EventDrawing, f.Data, c.id)

	case EventClearCanvas:
		err = g.fanout.EmitOthers(ctx, EventClearCanvas, nil, c.id)

	case EventChatMessage:
		if !c.chatLimiter.Allow() {
			log.Debug().Str("conn", c.id).Msg("chat rate limited")
			if frame, ferr := encodeFrame(EventRateLimited, nil); ferr == nil {
				c.Send(frame)
			}
			return
		}
		msg, perr := ParseChatMessage(f.Data)
		if perr != nil {
			log.Debug().Str("conn", c.id).Err(perr).Msg("rejecting chat message")
			return
		}
		err = g.fanout.SendCommand(ctx, CommandChat, c.id, msg)

	default:
		log.Debug().Str("conn", c.id).Str("event", f.Event).Msg("ignoring unknown event")
		return
	}

	if err != nil {
		log.Error().Str("room", g.room).Str("conn", c.id).Str("event", f.Event).Err(err).Msg("failed to forward frame")
	}
}

func (g *Gateway) deliver(msg bus.Message) {
	frame, err := encodeFrame(msg.Event, msg.Payload)
	if err != nil {
		log.Error().Str("room", g.room).Str("event", msg.Event).Err(err).Msg("failed to encode frame")
		return
	}

	if msg.Target != "" {
		c := g.client(msg.Target)
		if c == nil {
			// attached to another worker
			return
		}
		c.Send(frame)
		if msg.Event == EventGameFull {
			g.unregister(c)
			c.Close(EventGameFull)
		}
		return
	}

	var slow []*Client
	g.locker.RLock()
	for id, c := range g.clients {
		if id == msg.Exclude {
			continue
		}
		if !c.Send(frame) {
			slow = append(slow, c)
		}
	}
	g.locker.RUnlock()

	for _, c := range slow {
		log.Warn().Str("room", g.room).Str("conn", c.id).Msg("outbox full, disconnecting client")
		c.Close("slow-consumer")
	}
}

// disconnect is safe to call more than once for the same client.
func (g *Gateway) disconnect(ctx context.Context, c *Client, reason string) {
	c.Close(reason)
	if !g.unregister(c) {
		return
	}

	g.forwardLeave(ctx, c)
}

func (g *Gateway) forwardLeave(ctx context.Context, c *Client) {
	// the request context is usually gone once the socket dropped
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commandTimeout)
	defer cancel()
	if err := g.fanout.SendCommand(ctx, CommandLeave, c.id, nil); err != nil {
		log.Error().Str("room", g.room).Str("conn", c.id).Err(err).Msg("failed to forward leave")
	}
}

func (g *Gateway) register(c *Client) {
	g.locker.Lock()
	g.clients[c.id] = c
	n := len(g.clients)
	g.locker.Unlock()

	metrics.Connections.Inc()
	log.Debug().Str("room", g.room).Str("conn", c.id).Int("local_clients", n).Msg("client attached")
}

func (g *Gateway) unregister(c *Client) bool {
	g.locker.Lock()
	_, ok := g.clients[c.id]
	delete(g.clients, c.id)
	g.locker.Unlock()

	if ok {
		metrics.Connections.Dec()
	}
	return ok
}

func (g *Gateway) client(id string) *Client {
	g.locker.RLock()
	defer g.locker.RUnlock()
	return g.clients[id]
}

// closeAll detaches every local client and tells the room owner they left, since
// their pumps find them already unregistered.
func (g *Gateway) closeAll(ctx context.Context, reason string) {
	g.locker.Lock()
	clients := g.clients
	g.clients = make(map[string]*Client)
	g.locker.Unlock()

	for _, c := range clients {
		metrics.Connections.Dec()
		c.Close(reason)
		g.forwardLeave(ctx, c)
	}
}

// ClientCount returns the number of connections attached to this worker.
func (g *Gateway) ClientCount() int {
	g.locker.RLock()
	defer g.locker.RUnlock()
	return len(g.clients)
}
