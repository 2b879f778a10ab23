package kraken

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/cryptofolio/internal/domain"
)

const (
	publicWSURL = "wss://ws.kraken.com"

	baseReconnectDelay   = 5 * time.Second
	maxReconnectDelay    = 5 * time.Minute
	maxReconnectAttempts = 10
)

// PriceUpdateFunc receives live close prices from the ticker feed.
// The pair uses the feed's naming (e.g. "XBT/USD").
type PriceUpdateFunc func(pair string, close float64)

// TickerFeed subscribes to the exchange's public ticker stream and pushes
// close-price updates to a callback. It is a cache warmer, not a source of
// truth: portfolio builds still take their own price snapshot.
type TickerFeed struct {
	url      string
	pairs    []string
	onUpdate PriceUpdateFunc
	log      zerolog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	stopped bool
	done    chan struct{}
}

// NewTickerFeed creates a ticker feed for the given websocket pair names.
func NewTickerFeed(pairs []string, onUpdate PriceUpdateFunc, log zerolog.Logger) *TickerFeed {
	return &TickerFeed{
		url:      publicWSURL,
		pairs:    pairs,
		onUpdate: onUpdate,
		log:      log.With().Str("component", "ticker-feed").Logger(),
		done:     make(chan struct{}),
	}
}

// Start connects and begins streaming in a background goroutine, with
// exponential-backoff reconnection.
func (f *TickerFeed) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()

	go f.run(ctx)
}

// Stop closes the stream and waits for the run loop to exit. A feed
// that was never started stops immediately.
func (f *TickerFeed) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	if f.cancel == nil {
		// Start was never called, there is no run loop to wait for.
		f.mu.Unlock()
		return
	}
	f.cancel()
	if f.conn != nil {
		_ = f.conn.Close(websocket.StatusNormalClosure, "shutting down")
	}
	f.mu.Unlock()

	<-f.done
}

func (f *TickerFeed) run(ctx context.Context) {
	defer close(f.done)

	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}

		err := f.connectAndStream(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			f.log.Warn().Err(err).Msg("ticker stream interrupted")
		}

		attempts++
		if attempts > maxReconnectAttempts {
			f.log.Error().Int("attempts", attempts).Msg("giving up on ticker feed reconnection")
			return
		}

		delay := baseReconnectDelay * time.Duration(1<<uint(attempts-1))
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
		f.log.Info().Dur("delay", delay).Int("attempt", attempts).Msg("reconnecting ticker feed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (f *TickerFeed) connectAndStream(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	conn, _, err := websocket.Dial(dialCtx, f.url, nil)
	cancel()
	if err != nil {
		return &domain.TransportError{Err: err}
	}

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		f.mu.Lock()
		f.conn = nil
		f.mu.Unlock()
	}()

	subscribe := map[string]interface{}{
		"event": "subscribe",
		"pair":  f.pairs,
		"subscription": map[string]interface{}{
			"name": "ticker",
		},
	}
	payload, err := json.Marshal(subscribe)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return &domain.TransportError{Err: err}
	}

	f.log.Info().Strs("pairs", f.pairs).Msg("subscribed to ticker stream")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return &domain.TransportError{Err: err}
		}
		f.handleMessage(data)
	}
}

// handleMessage parses one frame. Ticker updates arrive as arrays
// [channelID, payload, "ticker", pair]; heartbeats, acks and system
// status arrive as objects. Subscription rejections are logged, the
// rest of the object traffic is ignored.
func (f *TickerFeed) handleMessage(data []byte) {
	if len(data) == 0 {
		return
	}
	if data[0] != '[' {
		f.handleEvent(data)
		return
	}

	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil || len(frame) < 4 {
		return
	}

	var payload struct {
		Close []string `json:"c"`
	}
	if err := json.Unmarshal(frame[1], &payload); err != nil || len(payload.Close) == 0 {
		return
	}

	var pair string
	if err := json.Unmarshal(frame[len(frame)-1], &pair); err != nil {
		return
	}

	close, err := strconv.ParseFloat(payload.Close[0], 64)
	if err != nil {
		return
	}

	if f.onUpdate != nil {
		f.onUpdate(pair, close)
	}
}

// handleEvent inspects object frames for subscription failures. A
// rejected subscription would otherwise leave the feed silently idle.
func (f *TickerFeed) handleEvent(data []byte) {
	var event struct {
		Event        string `json:"event"`
		Status       string `json:"status"`
		Pair         string `json:"pair"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return
	}

	if event.Event == "subscriptionStatus" && event.Status == "error" {
		f.log.Error().
			Str("pair", event.Pair).
			Str("error", event.ErrorMessage).
			Msg("ticker subscription rejected")
	}
}
