package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"

	"euchre/internal/euchre"
	"euchre/internal/room"
	"euchre/internal/storage"
)

const (
	maxBodyBytes       = 1 << 16
	defaultResultLimit = 20
)

// Results is the read side of the game ledger.
type Results interface {
	ListResults(limit int) ([]storage.ResultRow, error)
}

// Server is the HTTP server.
type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	manager *room.Manager
	results Results
	log     *zap.Logger
}

// New creates a server with all routes. origins lists the CORS origins
// allowed to call the API; "*" allows any.
func New(manager *room.Manager, results Results, logger *zap.Logger, origins []string) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		manager: manager,
		results: results,
		log:     logger,
	}
	s.routes()

	stdlog := zap.NewStdLog(logger.Named("http"))
	var h http.Handler = s.mux
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(stdlog))(h)
	s.handler = handlers.CombinedLoggingHandler(stdlog.Writer(), h)
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	s.mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	s.mux.HandleFunc("POST /api/rooms/{id}/join", s.handleJoin)
	s.mux.HandleFunc("POST /api/rooms/{id}/bots", s.handleAddBot)
	s.mux.HandleFunc("GET /api/rooms/{id}/state", s.handleState)
	s.mux.HandleFunc("GET /api/rooms/{id}/actions", s.handleLegalActions)
	s.mux.HandleFunc("POST /api/rooms/{id}/actions", s.handlePerform)
	s.mux.HandleFunc("POST /api/rooms/{id}/resume", s.handleResume)

	s.mux.HandleFunc("GET /api/results", s.handleResults)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.List())
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.manager.Create()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRoomResponse{RoomID: rm.ID})
}

type joinRequest struct {
	Nickname string `json:"nickname"`
}

type joinResponse struct {
	PlayerID  string            `json:"playerId"`
	RoomState *euchre.GameState `json:"roomState"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rm, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	playerID, view, err := rm.Join(req.Nickname)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{PlayerID: playerID, RoomState: view})
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rm, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := rm.AddBot(strings.TrimSpace(req.PlayerID))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type noChangeResponse struct {
	NoChange bool `json:"noChange"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	playerID := q.Get("playerId")
	if playerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "playerId required"})
		return
	}
	// A missing version means "send everything". This deviates from
	// treating it as 0, which would answer noChange for a fresh lobby.
	version := -1
	if v := q.Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "version must be an integer"})
			return
		}
		version = n
	}

	rm, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, changed := rm.State(playerID, version)
	if !changed {
		writeJSON(w, http.StatusOK, noChangeResponse{NoChange: true})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLegalActions(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "playerId required"})
		return
	}
	rm, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm.LegalActions(playerID))
}

// actionAddBot is accepted on the action route for clients that request
// a bot the same way they send moves.
const actionAddBot = "ADD_BOT"

type performRequest struct {
	PlayerID string `json:"playerId"`
	Action   *struct {
		Type    euchre.ActionType `json:"type"`
		Payload json.RawMessage   `json:"payload"`
	} `json:"action"`
}

func (s *Server) handlePerform(w http.ResponseWriter, r *http.Request) {
	var req performRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" || req.Action == nil || req.Action.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "playerId and action required"})
		return
	}
	rm, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.Action.Type == actionAddBot {
		view, err := rm.AddBot(req.PlayerID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
		return
	}

	action, err := euchre.ParseAction(req.PlayerID, req.Action.Type, req.Action.Payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := rm.Perform(req.PlayerID, action)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleResume lets a seated player restart bots that stopped at the
// per-request step cap.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rm, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := rm.Resume(strings.TrimSpace(req.PlayerID))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	rows, err := s.results.ListResults(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// decodeBody reads a JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrRoomFull):
		return http.StatusForbidden
	case errors.Is(err, room.ErrMissingParameters),
		errors.Is(err, room.ErrInvalidAction),
		errors.Is(err, euchre.ErrMalformedAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
