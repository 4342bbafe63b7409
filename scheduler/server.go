package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/devskill-org/planetary-hours/almanac"
	"github.com/devskill-org/planetary-hours/sun"
	"github.com/gorilla/websocket"
)

// WebServer provides HTTP endpoints for health checking and the planetary
// hours feed
type WebServer struct {
	scheduler *HourScheduler
	server    *http.Server
	port      int
	startTime time.Time
	upgrader  websocket.Upgrader
	clients   sync.Map
	broadcast chan []byte
	notify    chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// wsWriteTimeout bounds a single WebSocket write
const wsWriteTimeout = 10 * time.Second

// wsClient is a connected WebSocket client. gorilla/websocket allows one
// writer per connection, so every write goes through mu.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.Close()
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version,omitempty"`
	Scheduler SchedulerHealth `json:"scheduler"`
	System    SystemHealth    `json:"system"`
}

// SchedulerHealth represents scheduler-specific health information
type SchedulerHealth struct {
	IsRunning       bool       `json:"is_running"`
	HasDay          bool       `json:"has_day"`
	LastRefresh     *time.Time `json:"last_refresh,omitempty"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	SunAlgorithm    string     `json:"sun_algorithm"`
	RefreshInterval string     `json:"refresh_interval"`
}

// SystemHealth represents system-level health information
type SystemHealth struct {
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines,omitempty"`
}

// NewWebServer creates a new web server. It returns nil when port is not positive.
func NewWebServer(scheduler *HourScheduler, port int) *WebServer {
	if port <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	hs := &WebServer{
		scheduler: scheduler,
		port:      port,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		broadcast: make(chan []byte, 256),
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	mux.HandleFunc("/api/health", hs.healthHandler)
	mux.HandleFunc("/api/ready", hs.readinessHandler)
	mux.HandleFunc("/api/hours", hs.hoursHandler)
	mux.HandleFunc("/api/current", hs.currentHandler)
	mux.HandleFunc("/api/history", hs.historyHandler)
	mux.HandleFunc("/api/ws", hs.wsHandler)

	return hs
}

// Start starts the web server
func (hs *WebServer) Start() error {
	if hs == nil {
		return nil
	}

	go hs.handleBroadcasts()
	go hs.broadcastHours()

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			hs.scheduler.logger.Printf("[SERVER] Web server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the web server
func (hs *WebServer) Stop(ctx context.Context) error {
	if hs == nil {
		return nil
	}

	hs.stopOnce.Do(func() { close(hs.done) })

	hs.clients.Range(func(key, value any) bool {
		if client, ok := value.(*wsClient); ok {
			client.close()
		}
		return true
	})

	return hs.server.Shutdown(ctx)
}

// Notify asks the broadcaster to push a fresh snapshot to all clients
func (hs *WebServer) Notify() {
	if hs == nil {
		return
	}
	select {
	case hs.notify <- struct{}{}:
	default:
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (hs *WebServer) buildHealth() HealthResponse {
	status := hs.scheduler.GetStatus()
	config := hs.scheduler.GetConfig()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
		Scheduler: SchedulerHealth{
			IsRunning:       status.IsRunning,
			HasDay:          status.HasDay,
			LastRefresh:     status.LastRefresh,
			Latitude:        config.Latitude,
			Longitude:       config.Longitude,
			SunAlgorithm:    config.SunAlgorithm,
			RefreshInterval: config.RefreshInterval.String(),
		},
		System: SystemHealth{
			Uptime:     formatUptime(time.Since(hs.startTime)),
			Goroutines: runtime.NumGoroutine(),
		},
	}
	if !status.IsRunning {
		health.Status = "unhealthy"
	}
	return health
}

// healthHandler handles the /api/health endpoint
func (hs *WebServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := hs.buildHealth()
	code := http.StatusOK
	if health.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

// readinessHandler handles the /api/ready endpoint. The service is ready
// once a planetary day has been computed.
func (hs *WebServer) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := hs.scheduler.GetStatus()
	ready := status.IsRunning && status.HasDay

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"ready":     ready,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// hoursHandler handles the /api/hours endpoint. Without parameters it
// returns the scheduler's latest day; date (YYYY-MM-DD), lat and lon compute
// another day on demand.
func (hs *WebServer) hoursHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	if q.Get("date") == "" && q.Get("lat") == "" && q.Get("lon") == "" {
		day := hs.scheduler.GetDay()
		if day == nil {
			http.Error(w, "Planetary day not computed yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, day)
		return
	}

	config := hs.scheduler.GetConfig()
	loc, err := config.TimeLocation()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	provider, err := sun.ForAlgorithm(config.SunAlgorithm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	coord := config.Coordinate()
	if v := q.Get("lat"); v != "" {
		if coord.Latitude, err = strconv.ParseFloat(v, 64); err != nil {
			http.Error(w, fmt.Sprintf("invalid lat: %v", err), http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("lon"); v != "" {
		if coord.Longitude, err = strconv.ParseFloat(v, 64); err != nil {
			http.Error(w, fmt.Sprintf("invalid lon: %v", err), http.StatusBadRequest)
			return
		}
	}

	now := hs.scheduler.nowFunc()
	date := almanac.PlanetaryDate(now, coord, loc, provider.SunTimes)
	if v := q.Get("date"); v != "" {
		if date, err = time.ParseInLocation("2006-01-02", v, loc); err != nil {
			http.Error(w, fmt.Sprintf("invalid date: %v", err), http.StatusBadRequest)
			return
		}
	}

	hs.scheduler.mu.RLock()
	natal := hs.scheduler.natal
	hs.scheduler.mu.RUnlock()

	req := almanac.Request{
		Date:       date,
		Coordinate: coord,
		Now:        now,
		Natal:      natal,
		Location:   loc,
		SunTimes:   provider.SunTimes,
	}
	day, err := almanac.Annotate(req)
	if err != nil && natal != nil {
		req.Natal = nil
		day, err = almanac.Annotate(req)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// currentHandler handles the /api/current endpoint
func (hs *WebServer) currentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hour, ok := hs.scheduler.CurrentHour()
	if !ok {
		http.Error(w, "No current planetary hour", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, hour)
}

// historyHandler handles the /api/history endpoint. from defaults to 24h ago.
func (hs *WebServer) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from := time.Now().Add(-24 * time.Hour)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid from: %v", err), http.StatusBadRequest)
			return
		}
		from = t
	}

	hours, err := hs.scheduler.History(r.Context(), from)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(hours),
		"hours": hours,
	})
}

// wsHandler handles WebSocket connections
func (hs *WebServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	logger := hs.scheduler.logger

	conn, err := hs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Printf("[SERVER] WebSocket upgrade error: %v", err)
		return
	}

	client := &wsClient{conn: conn}
	hs.clients.Store(conn, client)
	logger.Printf("[SERVER] New WebSocket client connected. Total clients: %d", hs.clientCount())

	hs.sendHoursToClient(client)

	defer func() {
		hs.clients.Delete(conn)
		client.close()
		logger.Printf("[SERVER] WebSocket client disconnected. Total clients: %d", hs.clientCount())
	}()

	// Read until the client goes away; incoming messages are ignored
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Printf("[SERVER] WebSocket error: %v", err)
			}
			break
		}
	}
}

func (hs *WebServer) clientCount() int {
	n := 0
	hs.clients.Range(func(key, value any) bool {
		n++
		return true
	})
	return n
}

// handleBroadcasts sends messages to all connected clients
func (hs *WebServer) handleBroadcasts() {
	for {
		select {
		case message := <-hs.broadcast:
			hs.clients.Range(func(key, value any) bool {
				client, ok := value.(*wsClient)
				if !ok {
					return true
				}

				if err := client.write(message); err != nil {
					hs.scheduler.logger.Printf("[SERVER] WebSocket write error: %v", err)
					client.close()
					hs.clients.Delete(key)
				}
				return true
			})
		case <-hs.done:
			return
		}
	}
}

// broadcastHours pushes the latest day every broadcast interval and
// whenever Notify is called
func (hs *WebServer) broadcastHours() {
	interval := hs.scheduler.GetConfig().BroadcastInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-hs.notify:
		case <-hs.done:
			return
		}

		if hs.clientCount() == 0 {
			continue
		}

		message, err := json.Marshal(hs.buildHoursUpdate())
		if err != nil {
			hs.scheduler.logger.Printf("[SERVER] Failed to marshal hours update: %v", err)
			continue
		}
		select {
		case hs.broadcast <- message:
		case <-hs.done:
			return
		}
	}
}

// sendHoursToClient sends the latest day to a single client
func (hs *WebServer) sendHoursToClient(client *wsClient) {
	message, err := json.Marshal(hs.buildHoursUpdate())
	if err != nil {
		hs.scheduler.logger.Printf("[SERVER] Failed to marshal initial data: %v", err)
		return
	}
	if err := client.write(message); err != nil {
		hs.scheduler.logger.Printf("[SERVER] Failed to send initial data: %v", err)
	}
}

// buildHoursUpdate builds the hours_update WebSocket message
func (hs *WebServer) buildHoursUpdate() map[string]any {
	msg := map[string]any{
		"type":      "hours_update",
		"health":    hs.buildHealth(),
		"day":       hs.scheduler.GetDay(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if hour, ok := hs.scheduler.CurrentHour(); ok {
		msg["current"] = hour
	}
	return msg
}

// formatUptime formats a duration as a string with seconds rounded to integer
func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
