// Package server exposes one maneuvering board over a WebSocket. Clients
// mutate the plot and request intercept solves; the server broadcasts the
// board state after every change and on every clock tick.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/helmpoint/maneuverboard/core"
	"github.com/helmpoint/maneuverboard/internal/logging"
	"github.com/helmpoint/maneuverboard/internal/observability"
	"github.com/helmpoint/maneuverboard/kb"
	"github.com/helmpoint/maneuverboard/model"
	"github.com/helmpoint/maneuverboard/timectrl"
	"github.com/helmpoint/maneuverboard/units"
)

// isValidOrigin allows same-origin and localhost connections; non-browser
// clients without an Origin header pass through.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		log.Printf("invalid origin URL: %s", origin)
		return false
	}

	if r.Host == originURL.Host {
		return true
	}

	if strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" ||
		originURL.Host == "127.0.0.1" {
		return true
	}

	log.Printf("rejected WebSocket connection from origin: %s", origin)
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// Config carries the server's collaborators. Logger and Metrics may be nil.
type Config struct {
	Board   *kb.Board
	Clock   timectrl.Clock
	System  units.System
	Logger  logging.Logger
	Metrics *observability.BoardCollector
}

// Server manages the board and client connections.
type Server struct {
	mu      sync.RWMutex
	clients map[string]*client

	board   *kb.Board
	clock   timectrl.Clock
	solver  *core.InterceptSolver
	system  units.System
	log     logging.Logger
	metrics *observability.BoardCollector
}

// NewServer constructs a server and subscribes it to board changes so every
// mutation, including those made by the motion loop, reaches all clients.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Noop()
	}
	s := &Server{
		clients: make(map[string]*client),
		board:   cfg.Board,
		clock:   cfg.Clock,
		solver:  core.NewInterceptSolver(cfg.System),
		system:  cfg.System,
		log:     logger,
		metrics: cfg.Metrics,
	}
	s.board.Subscribe(func(kb.Event) { s.BroadcastState() })
	return s
}

// Handler returns the HTTP handler serving the WebSocket endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", logging.Error(err))
		return
	}

	id := uuid.NewString()
	ctx, clog := logging.WithSessionLogger(context.Background(), s.log, id)
	c := &client{
		id:     id,
		conn:   conn,
		send:   make(chan ServerMessage, clientSendBuffer),
		server: s,
		log:    clog,
	}

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()
	s.metrics.SessionOpened()
	clog.Info(ctx, "client connected", logging.String("remote", conn.RemoteAddr().String()))

	go c.writePump()
	c.send <- ServerMessage{Type: MsgTypeBoardState, Data: s.boardState()}
	go c.readPump(ctx)
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	if ok {
		delete(s.clients, c.id)
		close(c.send)
	}
	s.mu.Unlock()
	if ok {
		s.metrics.SessionClosed()
	}
}

// BroadcastState sends the current board snapshot to every connected client.
// The motion loop calls this on each tick.
func (s *Server) BroadcastState() {
	msg := ServerMessage{Type: MsgTypeBoardState, Data: s.boardState()}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.send <- msg:
		default:
			// Slow client; drop the snapshot rather than block the board.
		}
	}
}

func (s *Server) boardState() BoardState {
	unitList := s.board.ListUnits()
	states := make([]UnitState, 0, len(unitList))
	for _, u := range unitList {
		states = append(states, UnitState{
			ID:        u.ID,
			Name:      u.Name,
			Kind:      u.Kind.String(),
			X:         u.Position.X,
			Y:         u.Position.Y,
			CourseDeg: radToDeg(u.CourseRad),
			SpeedMps:  u.SpeedMps,
			Speed:     units.FormatSpeed(u.SpeedMps, s.system),
		})
	}

	wps := s.board.ListWaypoints()
	wpList := make([]WaypointPayload, 0, len(wps))
	for _, w := range wps {
		wpList = append(wpList, WaypointPayload{ID: w.ID, Label: w.Label, X: w.Position.X, Y: w.Position.Y})
	}

	return BoardState{
		Time:      s.clock.Now().UTC().Format(time.RFC3339),
		Units:     states,
		Waypoints: wpList,
	}
}

// handleMessage dispatches one decoded client message. Errors go back to the
// sending client only; successful mutations reach everyone through the board
// subscription.
func (s *Server) handleMessage(ctx context.Context, c *client, msg ClientMessage) {
	switch msg.Type {
	case MsgTypeAddUnit:
		s.handleAddUnit(ctx, c, msg)
	case MsgTypeUpdateUnit:
		s.handleUpdateUnit(ctx, c, msg)
	case MsgTypeRemoveUnit:
		s.handleRemoveUnit(ctx, c, msg)
	case MsgTypeAddWaypoint:
		s.handleAddWaypoint(ctx, c, msg)
	case MsgTypeRemoveWaypoint:
		s.handleRemoveWaypoint(ctx, c, msg)
	case MsgTypeObserve:
		s.handleObserve(ctx, c, msg)
	case MsgTypeSolve:
		s.handleSolve(ctx, c, msg)
	default:
		c.sendError("BAD_REQUEST", "unknown message type: "+msg.Type)
	}
}

func (s *Server) handleAddUnit(ctx context.Context, c *client, msg ClientMessage) {
	var p UnitPayload
	if err := decode(msg, &p); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	u, err := s.unitFromPayload(p)
	if err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := s.board.AddUnit(u); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	c.log.Info(ctx, "unit added", logging.String("unit_id", u.ID), logging.String("kind", u.Kind.String()))
}

func (s *Server) handleUpdateUnit(ctx context.Context, c *client, msg ClientMessage) {
	var p UnitPayload
	if err := decode(msg, &p); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	speed, course, err := s.parseKinematics(p)
	if err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	if err := s.board.UpdateUnitState(p.ID, model.Position{X: p.X, Y: p.Y}, course, speed); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	c.log.Info(ctx, "unit updated", logging.String("unit_id", p.ID))
}

func (s *Server) handleRemoveUnit(ctx context.Context, c *client, msg ClientMessage) {
	var p RemovePayload
	if err := decode(msg, &p); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	if err := s.board.RemoveUnit(p.ID); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	c.log.Info(ctx, "unit removed", logging.String("unit_id", p.ID))
}

func (s *Server) handleAddWaypoint(ctx context.Context, c *client, msg ClientMessage) {
	var p WaypointPayload
	if err := decode(msg, &p); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	w := &model.Waypoint{ID: p.ID, Label: p.Label, Position: model.Position{X: p.X, Y: p.Y}}
	if err := s.board.AddWaypoint(w); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	c.log.Info(ctx, "waypoint added", logging.String("waypoint_id", p.ID))
}

func (s *Server) handleRemoveWaypoint(ctx context.Context, c *client, msg ClientMessage) {
	var p RemovePayload
	if err := decode(msg, &p); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	if err := s.board.RemoveWaypoint(p.ID); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	c.log.Info(ctx, "waypoint removed", logging.String("waypoint_id", p.ID))
}

func (s *Server) unitFromPayload(p UnitPayload) (*model.BoardUnit, error) {
	kind := model.UnitKindFromString(p.Kind)
	speed, course, err := s.parseKinematics(p)
	if err != nil {
		return nil, err
	}
	return &model.BoardUnit{
		ID:        p.ID,
		Name:      p.Name,
		Kind:      kind,
		Position:  model.Position{X: p.X, Y: p.Y},
		CourseRad: course,
		SpeedMps:  speed,
	}, nil
}

func (s *Server) parseKinematics(p UnitPayload) (speedMps, courseRad float64, err error) {
	speedMps = 0
	if p.Speed != "" {
		speedMps, err = units.ParseSpeed(p.Speed, s.system)
		if err != nil {
			return 0, 0, err
		}
	}
	return speedMps, degToRad(p.CourseDeg), nil
}

var errEmptyPayload = errors.New("message carries no payload")

func decode(msg ClientMessage, v interface{}) error {
	if len(msg.Data) == 0 {
		return errEmptyPayload
	}
	return json.Unmarshal(msg.Data, v)
}

func radToDeg(rad float64) float64 {
	deg := math.Mod(rad*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
