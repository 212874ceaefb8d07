package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
	"github.com/rocketscienceinc/gridtoe/internal/entity"
	"github.com/rocketscienceinc/gridtoe/internal/usecase"
)

var errMissingCoordinates = errors.New("both x and y are required")

type gameUseCase interface {
	NewMatch(ctx context.Context, settings usecase.MatchSettings) (*entity.Match, []entity.Event, error)
	MakeTurn(ctx context.Context, matchID string, x, y int) (*entity.Match, []entity.Event, error)
	GetMatch(ctx context.Context, matchID string) (*entity.Match, error)
}

type Handlers interface {
	NewMatch(w http.ResponseWriter, r *http.Request)
	GetMatch(w http.ResponseWriter, r *http.Request)
	MakeTurn(w http.ResponseWriter, r *http.Request)
}

type matchResponse struct {
	Match  *entity.Match  `json:"match"`
	Events []entity.Event `json:"events,omitempty"`
}

type turnRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlersImpl struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func NewHandlers(logger *slog.Logger, gameUseCase gameUseCase) Handlers {
	return &handlersImpl{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}
}

func (that *handlersImpl) NewMatch(w http.ResponseWriter, r *http.Request) {
	var settings usecase.MatchSettings
	// an empty body means the configured defaults
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	match, events, err := that.gameUseCase.NewMatch(r.Context(), settings)
	if err != nil {
		that.writeError(w, statusCode(err), err)
		return
	}

	that.writeJSON(w, http.StatusCreated, matchResponse{Match: match, Events: events})
}

func (that *handlersImpl) GetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := that.gameUseCase.GetMatch(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		that.writeError(w, statusCode(err), err)
		return
	}

	that.writeJSON(w, http.StatusOK, matchResponse{Match: match})
}

func (that *handlersImpl) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.X == nil || req.Y == nil {
		that.writeError(w, http.StatusBadRequest, errMissingCoordinates)
		return
	}

	match, events, err := that.gameUseCase.MakeTurn(r.Context(), chi.URLParam(r, "matchID"), *req.X, *req.Y)
	if err != nil {
		that.writeError(w, statusCode(err), err)
		return
	}

	that.writeJSON(w, http.StatusOK, matchResponse{Match: match, Events: events})
}

// statusCode - maps core errors to HTTP statuses.
func statusCode(err error) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidConfiguration), errors.Is(err, apperror.ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameOver),
		errors.Is(err, apperror.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlersImpl) writeError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (that *handlersImpl) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
