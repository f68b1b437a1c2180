package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/muletrace/forensics-engine/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced at the router layer
	},
}

// Hub maintains the set of active websocket clients and pushes analysis
// alerts to all of them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan []byte, 256),
		clients:   make(map[*websocket.Conn]bool),
	}
}

func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for client := range h.clients {
			// Write deadline prevents one blocked client from hanging the hub
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe handles incoming websocket connections on GET /api/stream.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.mutex.Unlock()

	log.Printf("[WS] client connected, total %d", total)

	// The hub only pushes down, but the read loop must run to observe
	// disconnects.
	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
			log.Printf("[WS] client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[WS] read error: %v", err)
				}
				break
			}
		}
	}()
}

// Broadcast sends raw JSON to every connected client.
func (h *Hub) Broadcast(data []byte) {
	h.broadcast <- data
}

// BroadcastAnalysisAlert pushes a completed-analysis summary, including
// all of its fraud rings, to all subscribers.
func (h *Hub) BroadcastAnalysisAlert(result *models.AnalysisResponse) {
	payload := gin.H{
		"type":        "analysis_alert",
		"analysis_id": result.AnalysisID,
		"summary":     result.Summary,
		"fraud_rings": result.FraudRings,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] alert marshal error: %v", err)
		return
	}
	h.Broadcast(data)
	log.Printf("[ALERT] analysis %s: %d suspicious accounts, %d rings",
		result.AnalysisID, result.Summary.SuspiciousAccountsFlagged, result.Summary.FraudRingsDetected)
}
