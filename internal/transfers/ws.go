package transfers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/observability"
)

// WSConfig configures WebSocket subscriber behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSSubscriber streams live transfer notifications for watched wallets
// over a WebSocket connection, reconnecting and resubscribing on drop.
type WSSubscriber struct {
	endpoint string
	config   WSConfig
	metrics  *observability.Metrics

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps lowercased wallet address to delivery channel; also the
	// resubscription set after reconnect.
	subs   map[string]chan domain.RawTransfer
	subsMu sync.RWMutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// wsNotification is the push message shape for transfer subscriptions.
type wsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result assetTransfer `json:"result"`
	} `json:"params"`
}

// NewWSSubscriber connects to the endpoint and starts the read loop.
func NewWSSubscriber(ctx context.Context, endpoint string, config *WSConfig, metrics *observability.Metrics) (*WSSubscriber, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	s := &WSSubscriber{
		endpoint: endpoint,
		config:   cfg,
		metrics:  metrics,
		subs:     make(map[string]chan domain.RawTransfer),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// connect establishes the WebSocket connection.
func (s *WSSubscriber) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// SubscribeWallet subscribes to outbound transfer notifications for a
// wallet. The returned channel is closed when the subscriber closes.
func (s *WSSubscriber) SubscribeWallet(ctx context.Context, wallet string) (<-chan domain.RawTransfer, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("subscriber closed")
	}

	key := lowerHex(wallet)

	s.subsMu.Lock()
	if _, exists := s.subs[key]; exists {
		s.subsMu.Unlock()
		return nil, fmt.Errorf("wallet %s already subscribed", wallet)
	}
	// Buffered so a slow consumer absorbs bursts without dropping reads.
	ch := make(chan domain.RawTransfer, 1024)
	s.subs[key] = ch
	s.subsMu.Unlock()

	if err := s.sendSubscribe(wallet); err != nil {
		s.subsMu.Lock()
		delete(s.subs, key)
		s.subsMu.Unlock()
		return nil, err
	}

	return ch, nil
}

// sendSubscribe writes one subscription request for a wallet.
func (s *WSSubscriber) sendSubscribe(wallet string) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      s.requestID.Add(1),
		Method:  "alchemy_subscribeTransfers",
		Params: []any{map[string]string{
			"fromAddress": wallet,
		}},
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected")
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the connection and all subscription channels.
func (s *WSSubscriber) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.subsMu.Lock()
	for wallet, ch := range s.subs {
		close(ch)
		delete(s.subs, wallet)
	}
	s.subsMu.Unlock()

	s.wg.Wait()
	return nil
}

// readLoop reads messages and dispatches transfer notifications.
func (s *WSSubscriber) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = s.config.ReconnectDelay

		s.handleMessage(message)
	}
}

// handleMessage routes a transfer notification to its wallet channel.
// Subscription confirmations and unknown methods are ignored.
func (s *WSSubscriber) handleMessage(message []byte) {
	var note wsNotification
	if err := json.Unmarshal(message, &note); err != nil {
		return
	}
	if note.Method == "" {
		return
	}

	transfer := note.Params.Result
	key := lowerHex(transfer.From)

	s.subsMu.RLock()
	ch, ok := s.subs[key]
	s.subsMu.RUnlock()
	if !ok {
		return
	}

	select {
	case ch <- toRawTransfer(transfer):
	default:
		// Consumer stalled past the buffer; drop rather than block reads.
	}
}

// reconnect attempts to reconnect and resubscribe all wallets.
func (s *WSSubscriber) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		return
	}

	if s.metrics != nil {
		s.metrics.WSReconnects.Inc()
	}

	s.subsMu.RLock()
	wallets := make([]string, 0, len(s.subs))
	for wallet := range s.subs {
		wallets = append(wallets, wallet)
	}
	s.subsMu.RUnlock()

	for _, wallet := range wallets {
		if err := s.sendSubscribe(wallet); err != nil {
			return
		}
	}
}

// pingLoop keeps the connection alive with periodic ping frames.
func (s *WSSubscriber) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}
