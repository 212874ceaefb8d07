package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
	"github.com/rocketscienceinc/gridtoe/internal/entity"
	"github.com/rocketscienceinc/gridtoe/internal/tictactoe"
)

type matchRepo interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	DeleteByID(ctx context.Context, id string) error
	Update(ctx context.Context, id string, fn func(match *entity.Match) error) error
}

type notifier interface {
	Notify(ctx context.Context, matchID string, events []entity.Event)
}

// BotFactory - builds the search engine for the computer side of a match.
type BotFactory func(side entity.Owner, conf entity.MatchConfig) tictactoe.Bot

// MatchSettings - per-match overrides of the configured defaults. Zero means "use the default".
type MatchSettings struct {
	Width             int `json:"width,omitempty"`
	Length            int `json:"length,omitempty"`
	WinningLineAmount int `json:"winning_line_amount,omitempty"`
}

// Limits - caps on client-chosen settings. A zero field means no cap.
type Limits struct {
	MaxWidth  int
	MaxLength int
	// MaxSearchNodes - upper bound on the leaves one computer move may visit at the configured depth.
	MaxSearchNodes int64
}

// check - rejects configs whose search would run away.
func (that Limits) check(conf entity.MatchConfig) error {
	if that.MaxWidth > 0 && conf.Width > that.MaxWidth {
		return fmt.Errorf("%w: width %d exceeds %d", apperror.ErrInvalidConfiguration, conf.Width, that.MaxWidth)
	}

	if that.MaxLength > 0 && conf.Length > that.MaxLength {
		return fmt.Errorf("%w: length %d exceeds %d", apperror.ErrInvalidConfiguration, conf.Length, that.MaxLength)
	}

	if that.MaxSearchNodes > 0 && searchLeaves(conf, that.MaxSearchNodes) > that.MaxSearchNodes {
		return fmt.Errorf("%w: %dx%d grid at search depth %d exceeds the search budget of %d nodes",
			apperror.ErrInvalidConfiguration, conf.Width, conf.Length, conf.SearchDepthLimit, that.MaxSearchNodes)
	}

	return nil
}

// searchLeaves - leaves of an unpruned search from an empty grid, counted up to ceiling.
func searchLeaves(conf entity.MatchConfig, ceiling int64) int64 {
	cells := int64(conf.Width) * int64(conf.Length)

	leaves := int64(1)
	for depth := int64(0); depth < int64(conf.SearchDepthLimit) && depth < cells; depth++ {
		branches := cells - depth
		if leaves > ceiling/branches {
			return ceiling + 1
		}
		leaves *= branches
	}

	return leaves
}

type Option func(*GameManager)

// WithLimits - caps the grid size and search cost of new matches.
func WithLimits(limits Limits) Option {
	return func(that *GameManager) {
		that.limits = limits
	}
}

// WithCoinFlip - replaces the random choice of the side that moves first.
func WithCoinFlip(coinFlip func() entity.Owner) Option {
	return func(that *GameManager) {
		that.coinFlip = coinFlip
	}
}

// WithNotifier - pushes every match event to subscribers.
func WithNotifier(notifier notifier) Option {
	return func(that *GameManager) {
		that.notifier = notifier
	}
}

type GameManager struct {
	logger *slog.Logger

	matchRepo matchRepo
	notifier  notifier
	newBot    BotFactory

	defaults entity.MatchConfig
	limits   Limits
	coinFlip func() entity.Owner
}

func NewGameManager(logger *slog.Logger, matchRepo matchRepo, newBot BotFactory, defaults entity.MatchConfig, opts ...Option) *GameManager {
	manager := &GameManager{
		logger: logger.With("component", "game_manager"),

		matchRepo: matchRepo,
		newBot:    newBot,

		defaults: defaults,
		coinFlip: entity.RandomSide,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// NewMatch - creates a match where the human plays side A, and plays the computer's opening move if it starts.
func (that *GameManager) NewMatch(ctx context.Context, settings MatchSettings) (*entity.Match, []entity.Event, error) {
	log := that.logger.With("method", "NewMatch")

	conf := that.matchConfig(settings)
	if err := that.limits.check(conf); err != nil {
		return nil, nil, fmt.Errorf("failed to create match: %w", err)
	}

	match, err := entity.NewMatch(uuid.NewString(), conf, entity.OwnerSideA, that.coinFlip())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create match: %w", err)
	}

	log = log.With("matchID", match.ID)

	recorder := &tictactoe.EventRecorder{}
	if err = that.newController(match, recorder).Start(); err != nil {
		that.logSearchFailure(log, err)
		return nil, nil, fmt.Errorf("failed to start match: %w", err)
	}

	if err = that.saveMatch(ctx, match); err != nil {
		return nil, nil, err
	}

	that.notify(ctx, match.ID, recorder.Events)

	log.Info("match created", "status", match.Status.String(), "width", match.Config.Width, "length", match.Config.Length)

	return match, recorder.Events, nil
}

// MakeTurn - the human side of the match occupies (x, y); the computer answers in the same call.
// Concurrent turns on one match are serialized by the repository; the loser is replayed on the new state.
func (that *GameManager) MakeTurn(ctx context.Context, matchID string, x, y int) (*entity.Match, []entity.Event, error) {
	log := that.logger.With("method", "MakeTurn", "matchID", matchID)

	var (
		played   *entity.Match
		recorder *tictactoe.EventRecorder
		turnErr  error
	)

	err := that.matchRepo.Update(ctx, matchID, func(match *entity.Match) error {
		played, recorder = match, &tictactoe.EventRecorder{}

		turnErr = that.newController(match, recorder).AttemptMove(match.Human, x, y)

		// rejected moves change nothing, so there is nothing to save
		if turnErr != nil && len(recorder.Events) == 0 {
			return turnErr
		}

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make turn: %w", err)
	}

	that.notify(ctx, played.ID, recorder.Events)

	if turnErr != nil {
		that.logSearchFailure(log, turnErr)
		return played, recorder.Events, fmt.Errorf("failed to make turn: %w", turnErr)
	}

	if played.IsFinished() {
		log.Info("match finished", "status", played.Status.String(), "turns", played.Turns)
	}

	return played, recorder.Events, nil
}

func (that *GameManager) GetMatch(ctx context.Context, matchID string) (*entity.Match, error) {
	match, err := that.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

func (that *GameManager) matchConfig(settings MatchSettings) entity.MatchConfig {
	conf := that.defaults

	if settings.Width != 0 {
		conf.Width = settings.Width
	}

	if settings.Length != 0 {
		conf.Length = settings.Length
	}

	if settings.WinningLineAmount != 0 {
		conf.WinningLineAmount = settings.WinningLineAmount
	}

	return conf
}

func (that *GameManager) newController(match *entity.Match, listener tictactoe.Listener) *tictactoe.GameController {
	bots := make(map[entity.Owner]tictactoe.Bot, 1)
	if match.Computer.IsSide() {
		bots[match.Computer] = that.newBot(match.Computer, match.Config)
	}

	return tictactoe.NewGameController(match, listener, bots)
}

// saveMatch - live matches are stored, finished ones are dropped.
func (that *GameManager) saveMatch(ctx context.Context, match *entity.Match) error {
	if !match.IsFinished() {
		if err := that.matchRepo.CreateOrUpdate(ctx, match); err != nil {
			return fmt.Errorf("failed to update match: %w", err)
		}

		return nil
	}

	that.deleteMatch(ctx, match)

	return nil
}

func (that *GameManager) deleteMatch(ctx context.Context, match *entity.Match) {
	log := that.logger.With("method", "deleteMatch", "matchID", match.ID)

	err := that.matchRepo.DeleteByID(ctx, match.ID)
	if err != nil && !errors.Is(err, apperror.ErrMatchNotFound) {
		log.Error("failed to delete match", "error", err)
		return
	}

	log.Debug("match deleted")
}

func (that *GameManager) notify(ctx context.Context, matchID string, events []entity.Event) {
	if that.notifier == nil || len(events) == 0 {
		return
	}

	that.notifier.Notify(ctx, matchID, events)
}

func (that *GameManager) logSearchFailure(log *slog.Logger, err error) {
	if errors.Is(err, apperror.ErrNoLegalMove) {
		log.Error("search invoked on a full grid", "error", err)
		return
	}

	log.Error("computer turn failed", "error", err)
}
