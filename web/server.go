package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"restlab/collection"
	"restlab/config"
	"restlab/convert"
	"restlab/resolve"
	"restlab/runner"
	"restlab/storage"
)

// Server exposes the collection core to host collaborators: REST
// endpoints for import, export, send, and curl, plus a websocket feed
// carrying request/response events as they happen.
type Server struct {
	config     *config.Config
	tables     *storage.SideTables
	forest     *collection.Forest
	engine     *runner.Engine
	upgrader   websocket.Upgrader
	clients    map[*websocket.Conn]bool
	clientsMux sync.RWMutex
	broadcast  chan []byte

	// forestMux serializes tree mutations against reads; resolution and
	// export read a stable forest for their whole duration.
	forestMux sync.RWMutex
}

type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// RequestEvent mirrors what the editor surface shows while a request
// is in flight: the outgoing line on "request", the result on
// "response".
type RequestEvent struct {
	Type      string                   `json:"type"` // "request" or "response"
	RequestID string                   `json:"request_id"`
	Method    string                   `json:"method"`
	URL       string                   `json:"url"`
	Status    int                      `json:"status,omitempty"`
	Response  *collection.ResponseData `json:"response,omitempty"`
}

func NewServer(cfg *config.Config, tables *storage.SideTables, forest *collection.Forest) *Server {
	engine := runner.NewEngine(time.Duration(cfg.Request.TimeoutSeconds) * time.Second)
	engine.UserAgent = cfg.Request.UserAgent
	return &Server{
		config: cfg,
		tables: tables,
		forest: forest,
		engine: engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte),
	}
}

func (s *Server) Start() error {
	go s.handleBroadcast()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/folders", s.handleFolders)
	mux.HandleFunc("/api/folders/mutate", s.handleFolderMutation)
	mux.HandleFunc("/api/requests/mutate", s.handleRequestMutation)
	mux.HandleFunc("/api/requests/detail", s.handleRequestDetail)
	mux.HandleFunc("/api/import", s.handleImport)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/api/send", s.handleSend)
	mux.HandleFunc("/api/curl", s.handleCurl)

	address := fmt.Sprintf("%s:%d", s.config.Server.ListenHost, s.config.Server.ListenPort)
	log.Printf("Starting API server on http://%s", address)
	return http.ListenAndServe(address, mux)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s.clientsMux.Lock()
	s.clients[conn] = true
	s.clientsMux.Unlock()

	log.Printf("WebSocket client connected from %s", r.RemoteAddr)

	defer func() {
		s.clientsMux.Lock()
		delete(s.clients, conn)
		s.clientsMux.Unlock()
		log.Printf("WebSocket client disconnected")
	}()

	// Keep connection alive
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (s *Server) handleBroadcast() {
	for {
		message := <-s.broadcast
		var dead []*websocket.Conn
		s.clientsMux.RLock()
		for client := range s.clients {
			err := client.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				log.Printf("WebSocket write error: %v", err)
				client.Close()
				dead = append(dead, client)
			}
		}
		s.clientsMux.RUnlock()

		if len(dead) > 0 {
			s.clientsMux.Lock()
			for _, client := range dead {
				delete(s.clients, client)
			}
			s.clientsMux.Unlock()
		}
	}
}

func (s *Server) handleFolders(w http.ResponseWriter, r *http.Request) {
	s.forestMux.RLock()
	roots := s.forest.Roots()
	s.forestMux.RUnlock()

	writeJSON(w, roots)
}

type importRequest struct {
	Content string `json:"content"`
	Format  string `json:"format,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body importRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := convert.ImportCollection(body.Content, convert.Format(body.Format))
	if err != nil {
		http.Error(w, err.Error(), importStatus(err))
		return
	}

	s.forestMux.Lock()
	err = s.tables.MergeImport(s.forest, result.Folders, result.Requests, result.FolderConfigs)
	s.forestMux.Unlock()
	if err != nil {
		http.Error(w, "Failed to store imported collection", http.StatusInternalServerError)
		return
	}

	writeJSON(w, result.Folders)
}

func importStatus(err error) int {
	var parseErr *convert.ParseError
	var unknownErr *convert.UnknownFormatError
	var mismatchErr *convert.FormatMismatchError
	if errors.As(err, &parseErr) || errors.As(err, &unknownErr) || errors.As(err, &mismatchErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	folderID := r.URL.Query().Get("folder")
	if folderID == "" {
		http.Error(w, "Missing folder parameter", http.StatusBadRequest)
		return
	}
	format := convert.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = convert.Format(s.config.Export.Format)
	}

	s.forestMux.RLock()
	out, err := convert.ExportCollection(s.forest, s.snapshot(), folderID, format, s.config.Export.PrettyPrint)
	s.forestMux.RUnlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(out))
}

type sendRequest struct {
	RequestID string `json:"request_id"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body sendRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req, cfg, err := s.resolveRequest(body.RequestID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	exec := runner.Build(req, cfg)
	s.BroadcastEvent("request", RequestEvent{
		Type:      "request",
		RequestID: req.ID,
		Method:    exec.Method,
		URL:       exec.URL,
	})

	response := s.engine.Execute(r.Context(), exec)
	s.BroadcastEvent("response", RequestEvent{
		Type:      "response",
		RequestID: req.ID,
		Method:    exec.Method,
		URL:       exec.URL,
		Status:    response.Status,
		Response:  &response,
	})

	writeJSON(w, response)
}

func (s *Server) handleCurl(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get("request")
	if requestID == "" {
		http.Error(w, "Missing request parameter", http.StatusBadRequest)
		return
	}

	req, cfg, err := s.resolveRequest(requestID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]string{"command": runner.Curl(req, cfg)})
}

// resolveRequest loads the stored request detail and the effective
// folder config it runs under.
func (s *Server) resolveRequest(requestID string) (collection.Request, collection.FolderConfig, error) {
	s.forestMux.RLock()
	defer s.forestMux.RUnlock()

	req, ok, err := s.tables.RequestConfig(requestID)
	if err != nil {
		return collection.Request{}, collection.FolderConfig{}, err
	}
	if !ok {
		summary, found := s.forest.Request(requestID)
		if !found {
			return collection.Request{}, collection.FolderConfig{}, fmt.Errorf("request not found: %s", requestID)
		}
		req = summary
	}

	cfg, err := resolve.New(s.snapshot()).Resolve(req.FolderID)
	if err != nil {
		return collection.Request{}, collection.FolderConfig{}, err
	}
	return req, cfg, nil
}

func (s *Server) snapshot() *storage.Snapshot {
	return storage.NewSnapshot(s.forest, s.tables)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// BroadcastEvent sends an event to all connected WebSocket clients
func (s *Server) BroadcastEvent(eventType string, data interface{}) {
	message := Message{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	select {
	case s.broadcast <- messageBytes:
	default:
		// Channel is full, skip this message
	}
}
