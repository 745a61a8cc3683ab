// Package wss implements the market-channel WebSocket client.
//
// One connection subscribes to a fixed set of asset ids and multiplexes the
// server's book snapshots, price deltas, tick size changes, and trade prints
// into a single ordered event stream consumed via NextEvent. The client
// mirrors per-asset book state as events arrive (see book.go) and
// auto-reconnects with exponential backoff (1s → 30s max), re-sending the
// subscribe frame and invalidating stored hashes on every reconnect. A read
// deadline ensures silent server failures are detected within ~3 missed
// pings.
package wss

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/howardpen9/polysqueeze/pkg/types"
)

// DefaultURL is the production market channel endpoint.
const DefaultURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

const (
	dialTimeout      = 10 * time.Second // WebSocket handshake deadline
	pingInterval     = 30 * time.Second // how often we send PING to keep alive
	readTimeout      = 90 * time.Second // ~3 missed pings triggers reconnect
	writeTimeout     = 10 * time.Second // deadline for outgoing messages
	maxReconnectWait = 30 * time.Second // cap on exponential backoff
	eventBufferSize  = 256
)

type eventItem struct {
	evt *Event
	err error
}

// Client is a market-data stream client for one fixed asset set.
//
// The read half is owned by a single internal goroutine; NextEvent must not
// be called concurrently. State snapshots (State) may be read from any
// goroutine.
type Client struct {
	url    string
	logger *slog.Logger
	dialer *websocket.Dialer

	assetIDs []string
	store    *bookStore
	events   chan eventItem

	connMu sync.Mutex // protects conn writes and replacement
	conn   *websocket.Conn

	cancel     context.CancelFunc
	subscribed bool
}

// NewClient creates a client for the given endpoint. Pass DefaultURL for
// production.
func NewClient(wsURL string, logger *slog.Logger) *Client {
	return &Client{
		url:    wsURL,
		logger: logger.With("component", "wss_market"),
		dialer: &websocket.Dialer{HandshakeTimeout: dialTimeout},
		store:  newBookStore(),
		events: make(chan eventItem, eventBufferSize),
	}
}

// Subscribe opens the connection and sends the subscribe frame for the
// given asset ids. The set is fixed for the life of the client; adding
// assets requires a new client. ctx bounds the initial dial only.
func (c *Client) Subscribe(ctx context.Context, assetIDs []string) error {
	if len(assetIDs) == 0 {
		return types.NewValidationError("asset id list is empty")
	}
	if c.subscribed {
		return types.NewValidationError("client is already subscribed; create a new client for a different asset set")
	}

	c.assetIDs = append([]string(nil), assetIDs...)

	conn, err := c.dialAndSubscribe(ctx)
	if err != nil {
		return err
	}
	c.subscribed = true

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(runCtx, conn)

	c.logger.Info("subscribed", "assets", len(assetIDs))
	return nil
}

// NextEvent yields the next decoded event in arrival order, or an error.
// ParseError and NetworkError items do not end the stream: malformed frames
// are skipped server-side data, and transport failures are followed by an
// automatic reconnect. After Close the call returns an internal error.
// Single reader only.
func (c *Client) NextEvent(ctx context.Context) (*Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case item, ok := <-c.events:
		if !ok {
			return nil, types.NewInternalError("stream closed", nil)
		}
		return item.evt, item.err
	}
}

// State returns a snapshot of the tracked book state for one asset, and
// whether a book, price_change or last_trade_price event for it has been
// seen on this connection. tick_size_change events are not tracked.
func (c *Client) State(assetID string) (AssetBookState, bool) {
	return c.store.snapshot(assetID)
}

// Close terminates the reader and closes the socket. Safe to call more
// than once.
func (c *Client) Close() error {
	if c.cancel != nil {
		c.cancel()
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) dialAndSubscribe(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, types.NewNetworkError("dial "+c.url, err)
	}

	msg := types.MarketSubscribeMessage{
		AssetIDs: c.assetIDs,
		Type:     "market",
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		conn.Close()
		return nil, types.NewNetworkError("send subscribe frame", err)
	}

	return conn, nil
}

// run drives connect → subscribe → drain as an outer loop so transient
// errors re-enter the loop instead of nesting handlers.
func (c *Client) run(ctx context.Context, conn *websocket.Conn) {
	defer close(c.events)

	backoff := time.Second
	for {
		err := c.readLoop(ctx, conn)
		if ctx.Err() != nil {
			return
		}

		if !c.deliver(ctx, eventItem{err: types.NewNetworkError("websocket disconnected", err)}) {
			return
		}

		for {
			c.logger.Warn("websocket disconnected, reconnecting",
				"error", err,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}

			// Exponential backoff: 1s, 2s, 4s, 8s, ..., 30s max
			backoff *= 2
			if backoff > maxReconnectWait {
				backoff = maxReconnectWait
			}

			// Hashes from the dead connection no longer mean anything.
			c.store.reset()

			conn, err = c.dialAndSubscribe(ctx)
			if err == nil {
				break
			}
			if !c.deliver(ctx, eventItem{err: err}) {
				return
			}
		}

		c.logger.Info("websocket reconnected")
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	defer func() {
		c.connMu.Lock()
		conn.Close()
		c.conn = nil
		c.connMu.Unlock()
	}()

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go c.pingLoop(pingCtx)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if !c.handleFrame(ctx, data) {
			return ctx.Err()
		}
	}
}

// handleFrame decodes one frame, applies it to the book state, and hands it
// to the consumer. Returns false only when ctx is done.
func (c *Client) handleFrame(ctx context.Context, data []byte) bool {
	if string(data) == "PONG" {
		return true // keepalive reply, not an event
	}

	evt, err := decodeEvent(data)
	if err != nil {
		// Malformed frame: surface it, keep the stream alive.
		return c.deliver(ctx, eventItem{err: err})
	}
	if evt == nil {
		c.logger.Debug("ignoring unknown ws event", "frame", string(data))
		return true
	}

	// State mutates before delivery so a consumer reading the event
	// observes a store that already reflects it.
	switch {
	case evt.Book != nil:
		c.store.applyBook(evt.Book)
	case evt.PriceChange != nil:
		c.store.applyPriceChange(evt.PriceChange)
	case evt.LastTrade != nil:
		c.store.applyLastTrade(evt.LastTrade)
	}

	return c.deliver(ctx, eventItem{evt: evt})
}

// deliver queues the item for the consumer, blocking while the event
// buffer is full, preserving arrival order with no coalescing. Returns
// false when ctx is done.
func (c *Client) deliver(ctx context.Context, item eventItem) bool {
	select {
	case <-ctx.Done():
		return false
	case c.events <- item:
		return true
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.writeMessage(websocket.TextMessage, []byte("PING")); err != nil {
				c.logger.Warn("ping failed", "error", err)
				return
			}
		}
	}
}

func (c *Client) writeMessage(msgType int, data []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return types.NewNetworkError("websocket not connected", nil)
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(msgType, data)
}
