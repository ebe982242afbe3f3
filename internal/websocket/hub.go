// Package websocket implements a WebSocket Hub for broadcasting newly recorded scores.
// Clients subscribe to one topic (a course or a competition) and receive every score
// recorded under it the moment it is saved, without polling the API.
// Publishers never block: a subscriber that cannot keep up is dropped.
package websocket

import (
	"context"
	"encoding/json"
	"sync" // sync provides synchronization primitives like mutexes for safe concurrent access

	"github.com/google/uuid"
)

// CourseTopic is the topic for every new score on a course.
func CourseTopic(id uuid.UUID) string { return "course:" + id.String() }

// CompetitionTopic is the topic for every new score inside a competition.
func CompetitionTopic(id uuid.UUID) string { return "competition:" + id.String() }

// Client represents a single connected WebSocket client.
// Each browser tab watching a live page has one Client instance on the server.
type Client struct {
	Topic string      // What this client is watching, e.g. "course:<id>"; routes messages to the right audience
	Send  chan []byte // Buffered channel of outgoing messages; the Hub sends data here, the WebSocket writes it to the client
}

// NewClient returns a client subscribed to topic with a small outgoing buffer.
func NewClient(topic string) *Client {
	return &Client{Topic: topic, Send: make(chan []byte, 16)}
}

// Message is a unit of data to broadcast to all clients watching a topic.
type Message struct {
	Topic string
	Data  []byte // The raw bytes to send (JSON-encoded score data)
}

// Hub manages all active WebSocket connections, grouped by topic.
// It runs in its own goroutine and processes registration, unregistration, and
// broadcast events through channels, so all map writes happen on a single goroutine.
type Hub struct {
	// clients is a nested map: topic -> set of Client pointers.
	// Using a map[*Client]bool as a "set" is a common Go idiom because Go has no built-in set type.
	clients map[string]map[*Client]bool

	broadcast  chan *Message // Incoming messages to be sent to all clients watching a topic
	register   chan *Client  // Signals that a new client has connected and should be tracked
	unregister chan *Client  // Signals that a client has disconnected and should be removed
	done       chan struct{} // Closed when Run returns so callers never block on a stopped hub

	// mu guards clients for readers outside the Run goroutine (Subscribers).
	mu sync.RWMutex
}

// NewHub creates and initializes a Hub with empty channels and maps.
// The broadcast channel has a buffer of 256 so publishers don't block immediately
// if the Hub goroutine is briefly busy. register and unregister are unbuffered
// because those operations need to complete synchronously.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the Hub's main event loop. It must be called in a goroutine ("go hub.Run(ctx)").
// It processes one event at a time until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for topic, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, topic)
			}
			h.mu.Unlock()
			return

		// New subscriber: file it under its topic
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			h.mu.Unlock()

		// Subscriber left: remove it and close its Send channel
		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients[msg.Topic] {
				select {
				case client.Send <- msg.Data:
				// The client's buffer is full: it is too slow, so drop it rather than
				// block the broadcast loop for everyone else.
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range slow {
				h.remove(client)
			}
		}
	}
}

// remove must only be called from the Run goroutine.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.Topic]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send) // Closing the channel signals the WebSocket writer to stop
	// Drop empty topics so the map does not grow with every course ever watched
	if len(clients) == 0 {
		delete(h.clients, client.Topic)
	}
}

// Broadcast sends data to all clients currently watching topic.
func (h *Hub) Broadcast(topic string, data []byte) {
	select {
	case h.broadcast <- &Message{Topic: topic, Data: data}:
	case <-h.done:
	}
}

// Publish JSON-encodes v and broadcasts it to every topic given.
func (h *Hub) Publish(v any, topics ...string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	for _, topic := range topics {
		h.Broadcast(topic, data)
	}
	return nil
}

// Register adds a client to the Hub so it starts receiving broadcasts for its topic.
// Called when a WebSocket connection is opened.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client from the Hub when its WebSocket connection closes.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers reports how many clients are watching topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
