package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/marvelquant/position-monitor/internal/websocket"
)

// MockClient is a mock implementation of a WebSocket client
type MockClient struct {
	mock.Mock
	ID string
}

func (m *MockClient) GetID() string {
	return m.ID
}

func (m *MockClient) Send(message []byte) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestWebSocketHub(t *testing.T) {
	// Create a new WebSocket hub
	hub := websocket.NewHub()
	
	// Start the hub in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	
	// Test registering a client
	t.Run("RegisterClient", func(t *testing.T) {
		// Create a mock client
		client := &MockClient{ID: "client1"}
		
		// Register the client
		hub.Register(client)
		
		// Wait a short time for the registration to be processed
		time.Sleep(100 * time.Millisecond)
		
		// Check that the client is registered (indirectly by broadcasting a message)
		client.On("Send", []byte("test message")).Return(nil)
		
		// Broadcast a message
		hub.Broadcast([]byte("test message"))
		
		// Wait a short time for the broadcast to be processed
		time.Sleep(100 * time.Millisecond)
		
		// Verify that the client received the message
		client.AssertExpectations(t)
	})
	
	// Test unregistering a client
	t.Run("UnregisterClient", func(t *testing.T) {
		// Create a mock client
		client := &MockClient{ID: "client2"}
		
		// Register the client
		hub.Register(client)
		
		// Wait a short time for the registration to be processed
		time.Sleep(100 * time.Millisecond)
		
		// Unregister the client
		hub.Unregister(client)
		
		// Wait a short time for the unregistration to be processed
		time.Sleep(100 * time.Millisecond)
		
		// The client should not receive any messages after unregistering
		// We can't directly assert this, but we can check that no expectations are set
		// and then broadcast a message
		hub.Broadcast([]byte("test message after unregister"))
		
		// Wait a short time for the broadcast to be processed
		time.Sleep(100 * time.Millisecond)
		
		// No expectations were set, so no assertions will fail
	})
	
	// Test broadcasting to multiple clients
	t.Run("BroadcastToMultipleClients", func(t *testing.T) {
		// Create mock clients
		client1 := &MockClient{ID: "client3"}
		client2 := &MockClient{ID: "client4"}
		
		// Register the clients
		hub.Register(client1)
		hub.Register(client2)
		
		// Wait a short time for the registrations to be processed
		time.Sleep(100 * time.Millisecond)
		
		// Set expectations for both clients
		client1.On("Send", []byte("broadcast message")).Return(nil)
		client2.On("Send", []byte("broadcast message")).Return(nil)
		
		// Broadcast a message
		hub.Broadcast([]byte("broadcast message"))
		
		// Wait a short time for the broadcast to be processed
		time.Sleep(100 * time.Millisecond)
		
		// Verify that both clients received the message
		client1.AssertExpectations(t)
		client2.AssertExpectations(t)
	})
	
	// Test broadcasting to a specific topic
	t.Run("BroadcastToTopic", func(t *testing.T) {
		// Create mock clients
		client1 := &MockClient{ID: "client5"}
		client2 := &MockClient{ID: "client6"}
		
		// Register the clients
		hub.Register(client1)
		hub.Register(client2)
		
		// Subscribe client1 to a topic
		hub.Subscribe(client1, "topic1")
		
		// Wait a short time for the subscription to be processed
		time.Sleep(100 * time.Millisecond)
		
		// Set expectations - only client1 should receive the message
		client1.On("Send", []byte("topic message")).Return(nil)
		
		// Broadcast a message to the topic
		hub.BroadcastToTopic("topic1", []byte("topic message"))
		
		// Wait a short time for the broadcast to be processed
		time.Sleep(100 * time.Millisecond)
		
		// Verify that client1 received the message
		client1.AssertExpectations(t)
		
		// client2 should not have received the message, so no expectations were set
	})
	
	// Test unsubscribing from a topic
	t.Run("UnsubscribeFromTopic", func(t *testing.T) {
		// Create a mock client
		client := &MockClient{ID: "client7"}
		
		// Register the client
		hub.Register(client)
		
		// Subscribe the client to a topic
		hub.Subscribe(client, "topic2")
		
		// Wait a short time for the subscription to be processed
		time.Sleep(100 * time.Millisecond)
		
		// Unsubscribe the client from the topic
		hub.Unsubscribe(client, "topic2")
		
		// Wait a short time for the unsubscription to be processed
		time.Sleep(100 * time.Millisecond)
		
		// The client should not receive any messages for the topic after unsubscribing
		// We can't directly assert this, but we can check that no expectations are set
		// and then broadcast a message to the topic
		hub.BroadcastToTopic("topic2", []byte("topic message after unsubscribe"))
		
		// Wait a short time for the broadcast to be processed
		time.Sleep(100 * time.Millisecond)
		
		// No expectations were set, so no assertions will fail
	})
}
