package progressws

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
)

// Hub fans progress events out to connected physios. Clients are keyed by
// physio id; a physio may hold several connections (phone + desktop).
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan services.ProgressEvent
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	physioID string
	send     chan []byte
}

type eventEnvelope struct {
	Type       string `json:"type"`
	ProgramID  string `json:"program_id"`
	CustomerID string `json:"customer_id"`
	ExerciseID string `json:"exercise_id"`
	Completed  bool   `json:"completed"`
	Timestamp  string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan services.ProgressEvent, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, physioID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		physioID: physioID,
		send:     make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.physioID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.physioID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.physioID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.physioID)
			}
		case event := <-h.events:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PublishProgress implements services.ProgressPublisher. It never blocks the
// recording request: the event channel is buffered and overflow is dropped.
func (h *Hub) PublishProgress(event services.ProgressEvent) {
	select {
	case h.events <- event:
	default:
		log.Printf("progress hub: event buffer full, dropping event for physio %d", event.PhysioID)
	}
}

func (h *Hub) deliver(event services.ProgressEvent) {
	payload, err := json.Marshal(eventEnvelope{
		Type:       "progress",
		ProgramID:  strconv.FormatInt(event.ProgramID, 10),
		CustomerID: strconv.FormatInt(event.CustomerID, 10),
		ExerciseID: strconv.FormatInt(event.ExerciseID, 10),
		Completed:  event.Completed,
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("progress hub encode event: %v", err)
		return
	}

	h.sendToPhysio(strconv.FormatInt(event.PhysioID, 10), payload)
}

func (h *Hub) sendToPhysio(physioID string, payload []byte) {
	set, ok := h.clients[physioID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, physioID)
	}
}

// ReadPump drains the connection so pings and closes are processed; the
// stream is one-way, inbound payloads are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
