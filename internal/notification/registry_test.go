package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"swiftmart/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialPair spins up a throwaway server, upgrades one connection and returns
// both ends of it.
func dialPair(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	serverConns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- ws
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverConns:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server connection")
	}
	return server, client
}

func readNotification(t *testing.T, client *websocket.Conn) model.Notification {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var notif model.Notification
	require.NoError(t, json.Unmarshal(data, &notif))
	return notif
}

func TestRegistrySendDeliversToConnectedUser(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())
	userID := uuid.New()

	server, client := dialPair(t)
	registry.Register(userID, server)

	delivered := registry.Send(userID, model.Notification{
		UserID:  userID,
		Type:    model.NotificationOrderPlaced,
		Message: "Your order has been placed.",
	})
	assert.True(t, delivered)

	notif := readNotification(t, client)
	assert.Equal(t, model.NotificationOrderPlaced, notif.Type)
	assert.Equal(t, userID, notif.UserID)
}

func TestRegistrySendToOfflineUserIsDropped(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())

	delivered := registry.Send(uuid.New(), model.Notification{Type: model.NotificationOrderPending})
	assert.False(t, delivered)
	assert.Equal(t, 0, registry.Count())
}

func TestRegistryReconnectReplacesConnection(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())
	userID := uuid.New()

	firstServer, firstClient := dialPair(t)
	registry.Register(userID, firstServer)

	secondServer, secondClient := dialPair(t)
	registry.Register(userID, secondServer)

	assert.Equal(t, 1, registry.Count())

	delivered := registry.Send(userID, model.Notification{
		UserID: userID,
		Type:   model.NotificationOrderStatusUpdate,
	})
	assert.True(t, delivered)

	notif := readNotification(t, secondClient)
	assert.Equal(t, model.NotificationOrderStatusUpdate, notif.Type)

	// The replaced connection receives a close frame, not the message.
	firstClient.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := firstClient.ReadMessage()
	assert.Error(t, err)
}

func TestRegistryUnregisterRemovesConnection(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())
	userID := uuid.New()

	server, _ := dialPair(t)
	registry.Register(userID, server)
	require.True(t, registry.Connected(userID))

	registry.Unregister(userID, server)

	assert.False(t, registry.Connected(userID))
	assert.False(t, registry.Send(userID, model.Notification{Type: model.NotificationOrderPlaced}))
}

func TestRegistryUnregisterIgnoresStaleConnection(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())
	userID := uuid.New()

	oldServer, _ := dialPair(t)
	registry.Register(userID, oldServer)

	newServer, newClient := dialPair(t)
	registry.Register(userID, newServer)

	// Unregistering the already-replaced connection must not evict the
	// current one.
	registry.Unregister(userID, oldServer)
	require.True(t, registry.Connected(userID))

	assert.True(t, registry.Send(userID, model.Notification{UserID: userID, Type: model.NotificationOrderPlaced}))
	notif := readNotification(t, newClient)
	assert.Equal(t, model.NotificationOrderPlaced, notif.Type)
}

func TestRegistryBroadcastReachesAllUsers(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())

	clients := make([]*websocket.Conn, 3)
	for i := range clients {
		server, client := dialPair(t)
		registry.Register(uuid.New(), server)
		clients[i] = client
	}

	orderID := uuid.New()
	delivered := registry.Broadcast(model.StatusBroadcast{
		OrderID:   orderID,
		NewStatus: model.OrderStatusShipped,
	})
	assert.Equal(t, 3, delivered)

	for _, client := range clients {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := client.ReadMessage()
		require.NoError(t, err)

		var broadcast model.StatusBroadcast
		require.NoError(t, json.Unmarshal(data, &broadcast))
		assert.Equal(t, orderID, broadcast.OrderID)
		assert.Equal(t, model.OrderStatusShipped, broadcast.NewStatus)
	}
}

func TestRegistryChurnWithConcurrentSends(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())
	userID := uuid.New()

	servers := make([]*websocket.Conn, 8)
	for i := range servers {
		server, _ := dialPair(t)
		servers[i] = server
	}

	// Senders race the register/unregister churn below. Send must never
	// panic no matter how the teardown interleaves.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					registry.Send(userID, model.Notification{
						UserID: userID,
						Type:   model.NotificationOrderStatusUpdate,
					})
				}
			}
		}()
	}

	for i := 0; i < 400; i++ {
		conn := servers[i%len(servers)]
		registry.Register(userID, conn)
		registry.Unregister(userID, conn)
	}

	close(stop)
	wg.Wait()

	assert.False(t, registry.Connected(userID))
}

func TestRegistryConcurrentSends(t *testing.T) {
	registry := NewRegistry(zerolog.Nop())
	userID := uuid.New()

	server, client := dialPair(t)
	registry.Register(userID, server)

	// Drain on the client side so the send buffer never fills.
	received := make(chan struct{}, 64)
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
			received <- struct{}{}
		}
	}()

	const sends = 20
	var wg sync.WaitGroup
	for i := 0; i < sends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.Send(userID, model.Notification{UserID: userID, Type: model.NotificationOrderStatusUpdate})
		}()
	}
	wg.Wait()

	for i := 0; i < sends; i++ {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d of %d messages", i, sends)
		}
	}
}
