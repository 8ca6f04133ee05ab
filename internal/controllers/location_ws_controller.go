package controllers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"route_dispatch/internal/middleware"
	"route_dispatch/internal/models"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// DispatchEvent is one message pushed to connected dashboards: either a
// driver location fix or a stop status change.
type DispatchEvent struct {
	Type      string    `json:"type"` // "location" or "stop_status"
	RouteID   uint      `json:"route_id"`
	DriverID  uint      `json:"driver_id"`
	StopID    uint      `json:"stop_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DispatchHub fans dispatch events out to admin dashboard connections.
// Clients subscribe to a single route id, or to 0 for everything.
type DispatchHub struct {
	clients   map[uint]map[*websocket.Conn]bool
	broadcast chan DispatchEvent
	mu        sync.Mutex
}

func NewDispatchHub() *DispatchHub {
	hub := &DispatchHub{
		clients:   make(map[uint]map[*websocket.Conn]bool),
		broadcast: make(chan DispatchEvent, 100),
	}
	go hub.run()
	return hub
}

var dispatchHub = NewDispatchHub()

// EmitDriverLocationUpdate publishes a location fix to listening dashboards.
func EmitDriverLocationUpdate(loc models.DriverLocation) {
	evt := DispatchEvent{
		Type:      "location",
		DriverID:  loc.DriverID,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Accuracy:  loc.Accuracy,
		Timestamp: loc.Timestamp,
	}
	if loc.RouteID != nil {
		evt.RouteID = *loc.RouteID
	}
	if loc.StopID != nil {
		evt.StopID = *loc.StopID
	}
	dispatchHub.publish(evt)
}

// EmitStopStatusUpdate publishes a stop transition to listening dashboards.
func EmitStopStatusUpdate(stop models.Stop, driverID uint) {
	dispatchHub.publish(DispatchEvent{
		Type:      "stop_status",
		RouteID:   stop.RouteID,
		DriverID:  driverID,
		StopID:    stop.ID,
		Status:    stop.Status,
		Timestamp: time.Now(),
	})
}

func (h *DispatchHub) publish(evt DispatchEvent) {
	select {
	case h.broadcast <- evt:
	default:
		logrus.Warn("dispatch hub: broadcast channel full, dropping event")
	}
}

// fanoutKeys lists the subscriber buckets one event reaches: its route plus
// the catch-all, collapsed to a single bucket when the event carries no route
// so catch-all clients do not receive it twice.
func fanoutKeys(routeID uint) []uint {
	if routeID == 0 {
		return []uint{0}
	}
	return []uint{routeID, 0}
}

// run delivers each event to the route's subscribers and the catch-all
// subscribers. Dead connections are pruned on write failure.
func (h *DispatchHub) run() {
	for evt := range h.broadcast {
		h.mu.Lock()
		for _, key := range fanoutKeys(evt.RouteID) {
			conns, ok := h.clients[key]
			if !ok {
				continue
			}
			for conn := range conns {
				if err := conn.WriteJSON(evt); err != nil {
					logrus.WithError(err).Debug("dispatch hub: write failed, dropping client")
					conn.Close()
					delete(conns, conn)
				}
			}
		}
		h.mu.Unlock()
	}
}

func (h *DispatchHub) add(routeID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[routeID] == nil {
		h.clients[routeID] = make(map[*websocket.Conn]bool)
	}
	h.clients[routeID][conn] = true
}

func (h *DispatchHub) remove(routeID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[routeID], conn)
}

// HandleLocationWebSocket upgrades an admin dashboard connection. Browsers
// cannot set an Authorization header on websockets, so the bearer token
// rides in the "token" query parameter.
func HandleLocationWebSocket(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing token"})
		return
	}
	token, err := middleware.ValidateToken(tokenStr)
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token claims"})
		return
	}
	role, _ := claims["role"].(string)
	if role != models.RoleAdmin && role != models.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
		return
	}

	routeID := uint(0)
	if raw := c.Query("route_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid route_id"})
			return
		}
		routeID = uint(id)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("dispatch hub: upgrade failed")
		return
	}

	dispatchHub.add(routeID, conn)
	defer func() {
		dispatchHub.remove(routeID, conn)
		conn.Close()
	}()

	// Reads are only used to detect the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
