package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

// Client represents a WebSocket client watching one task
type Client struct {
	TaskID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub fans pipeline updates out to the browsers watching each task.
// Broadcasts are queued on a channel so publishers never wait on sockets.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	TaskID  string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.TaskID] == nil {
				h.clients[client.TaskID] = make(map[*Client]bool)
			}
			h.clients[client.TaskID][client] = true
			h.mu.Unlock()
			log.Printf("[Hub] client registered for task %s", client.TaskID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.TaskID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.TaskID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[Hub] client unregistered from task %s", client.TaskID)

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.TaskID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastStage reports a finished pipeline stage
func (h *Hub) BroadcastStage(taskID string, stage model.Stage, status model.UserTaskStatus, remoteTaskID string) {
	h.send(taskID, model.WSStageMessage{
		Type:         model.WSMessageTypeStage,
		TaskID:       taskID,
		Stage:        stage,
		Status:       status,
		RemoteTaskID: remoteTaskID,
	})
}

// BroadcastComplete sends the finished record to all task subscribers
func (h *Hub) BroadcastComplete(taskID string, result *model.UserTask) {
	h.send(taskID, model.WSCompleteMessage{
		Type:   model.WSMessageTypeComplete,
		TaskID: taskID,
		Result: result,
	})
}

// BroadcastError sends an error message to all task subscribers
func (h *Hub) BroadcastError(taskID string, code, message string) {
	h.send(taskID, model.WSErrorMessage{
		Type:   model.WSMessageTypeError,
		TaskID: taskID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	})
}

func (h *Hub) send(taskID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Hub] failed to marshal message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		TaskID:  taskID,
		Message: data,
	}
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, taskID string) {
	client := &Client{
		TaskID: taskID,
		Conn:   c,
		Send:   make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Hub] websocket error: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.Send <- data
		}
	}
}
