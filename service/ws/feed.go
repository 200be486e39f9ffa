package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// ScheduleEvent is broadcast to subscribers of a doctor's schedule whenever
// an appointment changes state.
type ScheduleEvent struct {
	Type          string `json:"type"` // booked, cancelled, completed
	AppointmentID uint   `json:"appointment_id"`
	DoctorID      uint   `json:"doctor_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
}

// Hub fans schedule events out to websocket subscribers, keyed by doctor.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*websocket.Conn]bool)}
}

func (h *Hub) register(doctorID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[doctorID] == nil {
		h.clients[doctorID] = make(map[*websocket.Conn]bool)
	}
	h.clients[doctorID][conn] = true
}

func (h *Hub) unregister(doctorID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[doctorID], conn)
	conn.Close()
}

// Publish sends the event to every subscriber of the doctor. Dead
// connections are dropped.
func (h *Hub) Publish(event ScheduleEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error encoding schedule event: %v", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[event.DoctorID]))
	for conn := range h.clients[event.DoctorID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.unregister(event.DoctorID, conn)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You might want to implement proper origin checking
	},
}

type FeedHandler struct {
	hub *Hub
}

func NewFeedHandler(hub *Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

func (h *FeedHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/schedule", h.HandleScheduleFeed)
}

// HandleScheduleFeed subscribes the connection to one doctor's schedule
// events until the peer disconnects.
func (h *FeedHandler) HandleScheduleFeed(w http.ResponseWriter, r *http.Request) {
	doctorIDParam := r.URL.Query().Get("doctorId")
	doctorID, err := strconv.ParseUint(doctorIDParam, 10, 64)
	if err != nil {
		http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.hub.register(uint(doctorID), conn)
	log.Printf("Schedule feed subscriber connected for doctor %d", doctorID)

	go func() {
		defer h.hub.unregister(uint(doctorID), conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
