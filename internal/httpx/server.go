// Package httpx exposes the game engine over HTTP and WebSocket.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"entangled_chess/internal/game"
	"entangled_chess/internal/store"
)

// Server hosts live games keyed by id. Each game resolves its own forced
// and reactive replies with selectors seeded at creation, so a game is
// fully described by its seed and the submitted moves.
type Server struct {
	app *fiber.App
	log zerolog.Logger
	db  *store.Store

	mu    sync.Mutex
	games map[string]*session
}

type session struct {
	mu   sync.Mutex
	game *game.Game
	seed uint64

	subsMu sync.Mutex
	subs   map[*websocket.Conn]bool
}

func NewServer(log zerolog.Logger, db *store.Store) *Server {
	s := &Server{
		log:   log,
		db:    db,
		games: make(map[string]*session),
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	return s
}

func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http listening")
	return s.app.Listen(addr)
}

func (s *Server) Close() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	api := s.app.Group("/api")
	api.Post("/games", s.handleCreate)
	api.Get("/games", s.handleList)
	api.Get("/games/:id", s.handleState)
	api.Post("/games/:id/move", s.handleMove)
	api.Post("/games/:id/step", s.handleStep)
	api.Post("/games/:id/resign", s.handleResign)

	s.app.Use("/ws/games/:id", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	s.app.Get("/ws/games/:id", websocket.New(s.handleSocket))

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// ---- sessions ----

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	return sess, ok
}

func newSession(seed uint64, explicit *game.Setup) (*session, error) {
	var setup game.Setup
	if explicit != nil {
		setup = *explicit
	} else {
		setup = game.RandomSetup(rand.New(rand.NewPCG(seed, 0x452821e638d01377)))
	}
	white := game.NewRandomSelector(seed ^ 0xbe5466cf34e90c6c)
	black := game.NewRandomSelector(seed ^ 0xc0ac29b7c97c50dd)
	g, err := game.NewGame(setup, white, black)
	if err != nil {
		return nil, err
	}
	return &session{
		game: g,
		seed: seed,
		subs: make(map[*websocket.Conn]bool),
	}, nil
}

func (sess *session) broadcast(v any) {
	sess.subsMu.Lock()
	defer sess.subsMu.Unlock()
	for conn := range sess.subs {
		if err := conn.WriteJSON(v); err != nil {
			conn.Close()
			delete(sess.subs, conn)
		}
	}
}

func (sess *session) subscribe(conn *websocket.Conn) {
	sess.subsMu.Lock()
	sess.subs[conn] = true
	sess.subsMu.Unlock()
}

func (sess *session) unsubscribe(conn *websocket.Conn) {
	sess.subsMu.Lock()
	delete(sess.subs, conn)
	sess.subsMu.Unlock()
}

// ---- handlers ----

type createBody struct {
	Seed  *uint64     `json:"seed"`
	Setup *game.Setup `json:"setup"`
}

func (s *Server) handleCreate(c *fiber.Ctx) error {
	var body createBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid json")
		}
	}
	seed := rand.Uint64()
	if body.Seed != nil {
		seed = *body.Seed
	}

	sess, err := newSession(seed, body.Setup)
	if err != nil {
		if errors.Is(err, game.ErrInvalidSetup) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.games[id] = sess
	s.mu.Unlock()

	s.log.Info().Str("game_id", id).Uint64("seed", seed).Msg("game created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    id,
		"seed":  seed,
		"state": sess.game.Snapshot(),
	})
}

func (s *Server) handleList(c *fiber.Ctx) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	return c.JSON(fiber.Map{"games": ids})
}

func (s *Server) handleState(c *fiber.Ctx) error {
	sess, ok := s.lookup(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "game not found")
	}
	sess.mu.Lock()
	state := sess.game.Snapshot()
	sess.mu.Unlock()
	return c.JSON(fiber.Map{"state": state})
}

type moveBody struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
}

func (s *Server) handleMove(c *fiber.Ctx) error {
	sess, ok := s.lookup(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "game not found")
	}

	var body moveBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	req, err := parseMoveRequest(body)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sess.mu.Lock()
	rec, err := sess.game.Submit(req)
	state := sess.game.Snapshot()
	sess.mu.Unlock()

	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	sess.broadcast(turnEvent(rec, state))
	s.maybePersist(c.Params("id"), sess)
	return c.JSON(fiber.Map{"turn": rec, "state": state})
}

// handleStep plays one self-play turn, for spectating engine games.
func (s *Server) handleStep(c *fiber.Ctx) error {
	sess, ok := s.lookup(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "game not found")
	}

	sess.mu.Lock()
	rec, err := sess.game.PlayTurn()
	state := sess.game.Snapshot()
	sess.mu.Unlock()

	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	sess.broadcast(turnEvent(rec, state))
	s.maybePersist(c.Params("id"), sess)
	return c.JSON(fiber.Map{"turn": rec, "state": state})
}

type resignBody struct {
	Color string `json:"color"`
}

func (s *Server) handleResign(c *fiber.Ctx) error {
	sess, ok := s.lookup(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "game not found")
	}
	var body resignBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	color, ok := game.ParseColor(body.Color)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid color")
	}

	sess.mu.Lock()
	if sess.game.Over() {
		sess.mu.Unlock()
		return fiber.NewError(fiber.StatusConflict, game.ErrGameOver.Error())
	}
	sess.game.Adjudicate(game.Result{
		Outcome:   game.OutcomeResignation,
		Winner:    color.Opposite(),
		HasWinner: true,
	})
	state := sess.game.Snapshot()
	sess.mu.Unlock()

	sess.broadcast(fiber.Map{"type": "result", "state": state})
	s.maybePersist(c.Params("id"), sess)
	return c.JSON(fiber.Map{"state": state})
}

// maybePersist writes a finished game through once it is over.
func (s *Server) maybePersist(id string, sess *session) {
	if s.db == nil {
		return
	}
	sess.mu.Lock()
	over := sess.game.Over()
	if !over {
		sess.mu.Unlock()
		return
	}
	rec := store.GameRecord{
		ID:     id,
		Seed:   sess.seed,
		Result: sess.game.Result(),
		Stats:  sess.game.Stats(),
		Setup:  sess.game.Setup(),
	}
	turns := sess.game.Records()
	sess.mu.Unlock()

	if err := s.db.SaveGame(context.Background(), rec, turns); err != nil {
		s.log.Error().Err(err).Str("game_id", id).Msg("persist failed")
	}
}

// ---- websocket ----

type wsCommand struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
}

func (s *Server) handleSocket(conn *websocket.Conn) {
	id := conn.Params("id")
	sess, ok := s.lookup(id)
	if !ok {
		conn.WriteJSON(fiber.Map{"type": "error", "error": "game not found"})
		conn.Close()
		return
	}
	sess.subscribe(conn)
	defer sess.unsubscribe(conn)

	sess.mu.Lock()
	state := sess.game.Snapshot()
	sess.mu.Unlock()
	if err := conn.WriteJSON(fiber.Map{"type": "state", "state": state}); err != nil {
		return
	}

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var cmd wsCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			conn.WriteJSON(fiber.Map{"type": "error", "error": "invalid json"})
			continue
		}
		if err := s.handleCommand(id, sess, cmd); err != nil {
			conn.WriteJSON(fiber.Map{"type": "error", "error": err.Error()})
		}
	}
}

func (s *Server) handleCommand(id string, sess *session, cmd wsCommand) error {
	switch cmd.Type {
	case "move":
		req, err := parseMoveRequest(moveBody{From: cmd.From, To: cmd.To, Promotion: cmd.Promotion})
		if err != nil {
			return err
		}
		sess.mu.Lock()
		rec, err := sess.game.Submit(req)
		state := sess.game.Snapshot()
		sess.mu.Unlock()
		if err != nil {
			return err
		}
		sess.broadcast(turnEvent(rec, state))
		s.maybePersist(id, sess)
		return nil
	case "step":
		sess.mu.Lock()
		rec, err := sess.game.PlayTurn()
		state := sess.game.Snapshot()
		sess.mu.Unlock()
		if err != nil {
			return err
		}
		sess.broadcast(turnEvent(rec, state))
		s.maybePersist(id, sess)
		return nil
	default:
		return errors.New("unknown command type")
	}
}

func turnEvent(rec *game.TurnRecord, state game.GameState) fiber.Map {
	return fiber.Map{"type": "turn", "turn": rec, "state": state}
}

// ---- parsing ----

func parseMoveRequest(body moveBody) (game.MoveRequest, error) {
	from, ok := game.CoordToSquare(strings.ToLower(strings.TrimSpace(body.From)))
	if !ok {
		return game.MoveRequest{}, errors.New("invalid from square")
	}
	to, ok := game.CoordToSquare(strings.ToLower(strings.TrimSpace(body.To)))
	if !ok {
		return game.MoveRequest{}, errors.New("invalid to square")
	}
	req := game.MoveRequest{From: from, To: to}
	if promotion := strings.TrimSpace(body.Promotion); promotion != "" {
		pt, ok := game.ParsePromotionPiece(promotion)
		if !ok {
			return game.MoveRequest{}, errors.New("invalid promotion choice")
		}
		req.Promotion = pt
		req.HasPromotion = true
	}
	return req, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrGameOver):
		return fiber.StatusConflict
	case errors.Is(err, game.ErrNotYourTurn):
		return fiber.StatusConflict
	case errors.Is(err, game.ErrInvalidMove), errors.Is(err, game.ErrPromotionRequired):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
