package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gridtoe/internal/entity"
	"github.com/rocketscienceinc/gridtoe/internal/usecase"
)

var (
	errUnknownAction  = errors.New("unknown action")
	errSendBufferFull = errors.New("send buffer is full")
)

type gameUseCase interface {
	NewMatch(ctx context.Context, settings usecase.MatchSettings) (*entity.Match, []entity.Event, error)
	MakeTurn(ctx context.Context, matchID string, x, y int) (*entity.Match, []entity.Event, error)
	GetMatch(ctx context.Context, matchID string) (*entity.Match, error)
}

type handlerFunc func(ctx context.Context, c *client, message *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	hub         *Hub
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase, hub *Hub) *Server {
	server := &Server{
		logger:      logger.With("component", "ws"),
		gameUseCase: gameUseCase,
		hub:         hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionNewMatch] = server.handleNewMatch
	server.handlers[actionJoinMatch] = server.handleJoinMatch
	server.handlers[actionTurn] = server.handleTurn

	return server
}

// Handler - the /ws endpoint.
func (that *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", that.serveWS)

	return r
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and processes messages until it closes.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)

	done := make(chan struct{})
	go func() {
		defer close(done)

		if err := c.writePump(); err != nil {
			log.Debug("write pump stopped", "error", err)
		}
	}()

	log.Info("WebSocket connection established")

	that.handleMessages(r.Context(), c)

	that.hub.unregister(c)
	<-done
	_ = conn.Close()
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	c.prepareRead()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			_ = that.sendError(c, actionError, err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("error processing message", "action", message.Action, "error", errUnknownAction)
			_ = that.sendError(c, message.Action, errUnknownAction)
			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) sendMessage(c *client, action string, payload Payload) error {
	msg, err := encodeMessage(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if !c.enqueue(msg) {
		return errSendBufferFull
	}

	return nil
}

func (that *Server) sendError(c *client, action string, cause error) error {
	return that.sendMessage(c, action, Payload{Error: cause.Error()})
}
