// Package ws bridges the analytics layer to WebSocket clients: each client
// watches one trader address and receives its trades on a fixed poll
// interval, plus leaderboard frames after every successful refresh.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 256

	// pollTimeout bounds one trade-feed fetch inside the poll loop.
	pollTimeout = 15 * time.Second

	// leaderboardChannel is the pub/sub channel used to fan leaderboard
	// frames out across instances when a signal bus is configured.
	leaderboardChannel = "leaderboard"
)

// TradeProvider supplies canonical trades for a watched address.
type TradeProvider interface {
	Trades(ctx context.Context, address string, period domain.Period) ([]domain.CanonicalTrade, error)
}

// upgrader configures the WebSocket upgrade parameters.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins. In production, restrict this to known origins.
		return true
	},
}

// client represents a single WebSocket connection.
type client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	kick  chan struct{}
	watch string
	mu    sync.RWMutex
}

// watchMsg is the JSON message a client sends to change its watched address.
// Both {"action":"watch","address":"0x..."} and the shorthand
// {"watch":"0x..."} are accepted.
type watchMsg struct {
	Action  string `json:"action"`
	Address string `json:"address"`
	Watch   string `json:"watch"`
}

// Hub manages connected WebSocket clients. Trade frames are produced per
// client by polling the trade provider for the watched address; leaderboard
// frames are broadcast to every client after each successful refresh, fanned
// out across instances through the signal bus when one is configured.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{} // closed when Run exits
	trades     TradeProvider
	bus        domain.SignalBus // optional
	poll       time.Duration
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewHub creates a WebSocket hub. bus may be nil for single-instance
// deployments; pollInterval defaults to 15 seconds.
func NewHub(trades TradeProvider, bus domain.SignalBus, pollInterval time.Duration, logger *slog.Logger) *Hub {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Second
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		trades:     trades,
		bus:        bus,
		poll:       pollInterval,
		logger:     logger.With(slog.String("component", "ws_hub")),
	}
}

// Run starts the hub's main event loop. It should be called in a goroutine.
// It handles client registration, unregistration, and broadcast frames.
// The loop exits when the provided context is cancelled.
//
// The hub never closes a client's send channel: the client's pollLoop may be
// mid-fetch when the client disconnects, and its frame send must stay safe.
// Teardown is signalled through c.done (closed by readPump) and by closing
// the connection, which unblocks the pumps.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	if h.bus != nil {
		go h.relayLeaderboard(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.conn.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("ws: client connected",
				slog.Int("total_clients", h.clientCount()),
			)

		case c := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			h.logger.Info("ws: client disconnected",
				slog.Int("total_clients", h.clientCount()),
			)

		case data := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Client's send buffer is full; drop the frame.
					h.logger.Warn("ws: dropping frame for slow client")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastSnapshot pushes a leaderboard frame to every connected client.
// With a signal bus configured the frame goes through pub/sub so every
// instance's clients receive it; the local relay loops it back here.
func (h *Hub) BroadcastSnapshot(snap domain.LeaderboardSnapshot) {
	frame, err := json.Marshal(map[string]any{
		"type":      "leaderboard",
		"snapshot":  snap,
		"fetchedAt": snap.FetchedAt,
	})
	if err != nil {
		h.logger.Error("ws: marshal leaderboard frame failed", slog.String("error", err.Error()))
		return
	}

	if h.bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := h.bus.Publish(ctx, leaderboardChannel, frame); err != nil {
			h.logger.Warn("ws: leaderboard publish failed", slog.String("error", err.Error()))
		}
		return
	}

	select {
	case h.broadcast <- frame:
	default:
		h.logger.Warn("ws: broadcast buffer full, dropping leaderboard frame")
	}
}

// relayLeaderboard subscribes to the leaderboard pub/sub channel and forwards
// received frames to the hub's broadcast channel.
func (h *Hub) relayLeaderboard(ctx context.Context) {
	msgCh, err := h.bus.Subscribe(ctx, leaderboardChannel)
	if err != nil {
		h.logger.Error("ws: failed to subscribe to leaderboard channel",
			slog.String("error", err.Error()),
		)
		return
	}

	h.logger.Info("ws: subscribed to leaderboard channel")

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-msgCh:
			if !ok {
				h.logger.Warn("ws: leaderboard subscription closed")
				return
			}
			select {
			case h.broadcast <- data:
			default:
				// Never stall the relay behind a full broadcast buffer.
				h.logger.Warn("ws: broadcast buffer full, dropping relayed frame")
			}
		}
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub. An optional address query parameter starts the
// watch immediately.
// GET /ws?address=0x...
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
		kick: make(chan struct{}, 1),
	}
	if addr := strings.TrimSpace(r.URL.Query().Get("address")); addr != "" {
		c.watch = strings.ToLower(addr)
		c.kick <- struct{}{}
	}

	h.register <- c

	go c.writePump()
	go c.pollLoop()
	go c.readPump()
}

// clientCount returns the number of currently connected clients.
func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump reads messages from the WebSocket connection. It handles watch
// management requests (JSON text frames) from the client.
func (c *client) readPump() {
	defer func() {
		close(c.done)
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws: unexpected close error",
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var msg watchMsg
		if jsonErr := json.Unmarshal(message, &msg); jsonErr == nil {
			c.handleWatch(msg)
		}
	}
}

// handleWatch updates the client's watched address and kicks an immediate
// poll so the client does not wait a full interval for its first frame.
func (c *client) handleWatch(msg watchMsg) {
	addr := strings.TrimSpace(msg.Watch)
	if addr == "" && msg.Action == "watch" {
		addr = strings.TrimSpace(msg.Address)
	}

	switch {
	case msg.Action == "unwatch":
		c.mu.Lock()
		c.watch = ""
		c.mu.Unlock()
	case addr != "":
		c.mu.Lock()
		c.watch = strings.ToLower(addr)
		c.mu.Unlock()
		select {
		case c.kick <- struct{}{}:
		default:
		}
	}
}

// pollLoop fetches the watched address's trades on the hub interval and on
// every watch change, pushing them as trade frames.
func (c *client) pollLoop() {
	ticker := time.NewTicker(c.hub.poll)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-c.kick:
		case <-ticker.C:
		}
		c.pushTrades()
	}
}

// pushTrades fetches and sends one trade frame for the watched address.
func (c *client) pushTrades() {
	c.mu.RLock()
	addr := c.watch
	c.mu.RUnlock()
	if addr == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	trades, err := c.hub.trades.Trades(ctx, addr, domain.PeriodAll)
	cancel()
	if err != nil {
		c.hub.logger.Warn("ws: trade poll failed",
			slog.String("address", addr),
			slog.String("error", err.Error()),
		)
		return
	}
	if trades == nil {
		trades = []domain.CanonicalTrade{}
	}

	frame, err := json.Marshal(map[string]any{
		"type":    "trades",
		"address": addr,
		"trades":  trades,
	})
	if err != nil {
		return
	}

	select {
	case <-c.done:
		// Client disconnected while the fetch was in flight.
	case c.send <- frame:
	default:
		c.hub.logger.Warn("ws: dropping trade frame for slow client",
			slog.String("address", addr),
		)
	}
}

// writePump pumps frames from the hub to the WebSocket connection as JSON
// text messages and sends periodic ping frames for keepalive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
