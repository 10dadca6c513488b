package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket" //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	"github.com/scrypster/memorykeeper/internal/engine"
	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/pkg/types"
)

const (
	sendBufferSize = 64
	writeTimeout   = 10 * time.Second
	readLimitBytes = 64 << 10
)

// CoachHub manages coach socket connections, grouped by user. Every send and
// every close of a client's channel happens on the Run goroutine.
type CoachHub struct {
	coach          *engine.Coach
	originPatterns []string
	logger         *zap.Logger

	clients    map[string]map[clientInterface]bool
	publish    chan outbound
	direct     chan outbound
	register   chan clientInterface
	unregister chan clientInterface
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
}

type outbound struct {
	userID string
	client clientInterface // set for direct replies
	data   []byte
}

// clientInterface allows for both real clients and mock clients.
type clientInterface interface {
	user() string
	getSendChannel() chan []byte
	close()
}

// Client represents one coach socket.
type Client struct {
	hub    *CoachHub
	userID string
	conn   *websocket.Conn //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	send   chan []byte
}

func (c *Client) user() string { return c.userID }

func (c *Client) getSendChannel() chan []byte {
	return c.send
}

func (c *Client) close() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}
}

// NewCoachHub creates a hub answering frames with coach. originPatterns are
// extra host patterns (path.Match syntax) allowed to open sockets besides
// the server's own host.
func NewCoachHub(coach *engine.Coach, originPatterns []string, logger *zap.Logger) *CoachHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CoachHub{
		coach:          coach,
		originPatterns: originPatterns,
		logger:         logger,
		clients:        make(map[string]map[clientInterface]bool),
		publish:        make(chan outbound, 256),
		direct:         make(chan outbound, 256),
		register:       make(chan clientInterface),
		unregister:     make(chan clientInterface),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Run starts the hub's message processing loop.
func (h *CoachHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set := h.clients[client.user()]
			if set == nil {
				set = make(map[clientInterface]bool)
				h.clients[client.user()] = set
			}
			set[client] = true
			h.mu.Unlock()
			h.logger.Debug("coach socket connected", zap.String("user_id", client.user()))

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
			h.logger.Debug("coach socket disconnected", zap.String("user_id", client.user()))

		case msg := <-h.publish:
			h.mu.Lock()
			for client := range h.clients[msg.userID] {
				h.deliver(client, msg.data)
			}
			h.mu.Unlock()

		case msg := <-h.direct:
			h.mu.Lock()
			if h.clients[msg.client.user()][msg.client] {
				h.deliver(msg.client, msg.data)
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			h.logger.Info("coach hub stopping")
			return
		}
	}
}

// deliver queues data for client, disconnecting it when its buffer is full.
// Callers hold h.mu.
func (h *CoachHub) deliver(client clientInterface, data []byte) {
	select {
	case client.getSendChannel() <- data:
	default:
		h.drop(client)
	}
}

// drop removes client and closes its send channel. Callers hold h.mu.
func (h *CoachHub) drop(client clientInterface) {
	set, ok := h.clients[client.user()]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.user())
	}
	close(client.getSendChannel())
}

// Stop gracefully shuts down the hub.
func (h *CoachHub) Stop() {
	h.cancel()

	h.mu.Lock()
	for _, set := range h.clients {
		for client := range set {
			close(client.getSendChannel())
			client.close()
		}
	}
	h.clients = make(map[string]map[clientInterface]bool)
	h.mu.Unlock()
}

// Publish sends frame to every socket userID has open.
func (h *CoachHub) Publish(userID string, frame ServerFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to marshal coach frame", zap.Error(err))
		return
	}
	select {
	case h.publish <- outbound{userID: userID, data: data}:
	default:
		h.logger.Warn("coach publish channel full, dropping frame", zap.String("user_id", userID))
	}
}

func (h *CoachHub) reply(client clientInterface, frame ServerFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to marshal coach frame", zap.Error(err))
		return
	}
	select {
	case h.direct <- outbound{client: client, data: data}:
	case <-h.ctx.Done():
	}
}

// Register adds a client to the hub.
func (h *CoachHub) Register(client clientInterface) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client from the hub.
func (h *CoachHub) Unregister(client clientInterface) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Connections returns how many sockets userID has open.
func (h *CoachHub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// ServeHTTP handles GET /ws/coach/{userID} upgrade requests.
func (h *CoachHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(extractID(r, "userID"))
	if userID == "" {
		http.Error(w, "user ID is required", http.StatusBadRequest)
		return
	}

	if origin := r.Header.Get("Origin"); origin != "" && !h.originAllowed(origin, r.Host) {
		http.Error(w, "Forbidden: invalid origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{ //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("coach socket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimitBytes)

	client := &Client{
		hub:    h,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	h.Register(client)

	go client.writePump()
	go client.readPump()
}

func (h *CoachHub) originAllowed(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, host) {
		return true
	}
	for _, pattern := range h.originPatterns {
		if ok, _ := path.Match(strings.ToLower(pattern), strings.ToLower(u.Host)); ok {
			return true
		}
	}
	return false
}

// handleFrame answers one client frame. Completions are published to all of
// the user's sockets instead of being answered directly.
func (h *CoachHub) handleFrame(ctx context.Context, client clientInterface, cf ClientFrame) {
	userID := client.user()

	switch cf.Type {
	case FrameTelemetry, FrameHintRequest:
		if cf.Telemetry == nil {
			h.reply(client, ServerFrame{Type: FrameError, Error: "telemetry is required"})
			return
		}
		gc := h.coach.BuildContext(ctx, userID, *cf.Telemetry, cf.Memory)
		var d types.AgentDecision
		if cf.Type == FrameHintRequest {
			d = h.coach.RequestHint(gc)
		} else {
			d = h.coach.Decide(gc)
		}
		h.reply(client, ServerFrame{Type: FrameDecision, Decision: &d, AutoShow: d.ShouldAutoShow()})

	case FrameComplete:
		if cf.Record == nil {
			h.reply(client, ServerFrame{Type: FrameError, Error: "record is required"})
			return
		}
		p, err := h.coach.CompleteGame(ctx, userID, *cf.Record)
		if errors.Is(err, storage.ErrInvalidInput) {
			h.reply(client, ServerFrame{Type: FrameError, Error: err.Error()})
			return
		}
		h.Publish(userID, ServerFrame{Type: FrameProfile, Profile: p})

	default:
		h.reply(client, ServerFrame{Type: FrameError, Error: "unknown frame type " + cf.Type})
	}
}

// writePump sends queued frames to the WebSocket connection.
func (c *Client) writePump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}()

	for message := range c.send {
		ctx, cancel := context.WithTimeout(c.hub.ctx, writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, message) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		cancel()

		if err != nil {
			c.hub.logger.Debug("coach socket write failed", zap.String("user_id", c.userID), zap.Error(err))
			return
		}
	}
}

// readPump decodes client frames and hands them to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}()

	for {
		_, data, err := c.conn.Read(c.hub.ctx) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		if err != nil {
			return
		}

		var cf ClientFrame
		if err := json.Unmarshal(data, &cf); err != nil {
			c.hub.reply(c, ServerFrame{Type: FrameError, Error: "malformed frame"})
			continue
		}
		c.hub.handleFrame(c.hub.ctx, c, cf)
	}
}

// MockClient is a mock client for testing.
type MockClient struct {
	UserID   string
	SendChan chan []byte
}

func (m *MockClient) user() string { return m.UserID }

func (m *MockClient) getSendChannel() chan []byte {
	return m.SendChan
}

func (m *MockClient) close() {
	// No-op for mock client
}
