package ws

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// blockingProvider parks inside Trades until released, so a test can hold a
// poll in flight across a client disconnect.
type blockingProvider struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int64
}

func (p *blockingProvider) Trades(ctx context.Context, address string, period domain.Period) ([]domain.CanonicalTrade, error) {
	p.calls.Add(1)
	p.entered <- struct{}{}
	select {
	case <-p.release:
	case <-ctx.Done():
	}
	return []domain.CanonicalTrade{}, nil
}

func dialHub(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_DisconnectDuringInFlightPoll(t *testing.T) {
	provider := &blockingProvider{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	hub := NewHub(provider, nil, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub, "?address=0x56687bf447db6ffa42ffe2204a05edaa20f55839")

	// The initial watch kicks an immediate poll; wait until it is inside the
	// provider, then drop the connection underneath it.
	select {
	case <-provider.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("poll never reached the trade provider")
	}
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.clientCount() == 0
	}, 2*time.Second, 10*time.Millisecond, "hub never dropped the client")

	// Let the in-flight fetch finish after the disconnect. Its frame send
	// must be a no-op, not a send on a closed channel.
	close(provider.release)
	time.Sleep(100 * time.Millisecond)
	require.EqualValues(t, 1, provider.calls.Load())
}

func TestHub_ShutdownWithConnectedClient(t *testing.T) {
	provider := &blockingProvider{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	close(provider.release)
	hub := NewHub(provider, nil, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	dialHub(t, hub, "")
	require.Eventually(t, func() bool {
		return hub.clientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Cancelling the hub closes client connections and must not strand the
	// readPump on the unregister channel.
	cancel()
	require.Eventually(t, func() bool {
		select {
		case <-hub.done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

// stubBus is an in-process signal bus delivering exactly what is pushed into ch.
type stubBus struct {
	ch chan []byte
}

func (b *stubBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return nil
}

func (b *stubBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return b.ch, nil
}

func TestHub_RelayDropsFramesWhenBroadcastFull(t *testing.T) {
	bus := &stubBus{ch: make(chan []byte)}
	hub := NewHub(nil, bus, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run the relay without the hub loop so nothing drains the broadcast
	// buffer; overfilling it must drop frames, not stall the relay.
	go hub.relayLeaderboard(ctx)

	delivered := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+50; i++ {
			bus.ch <- []byte(`{"type":"leaderboard"}`)
		}
		close(delivered)
	}()

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("relay stalled on a full broadcast buffer")
	}
}
