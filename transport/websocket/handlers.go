package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gridtoe/internal/usecase"
)

var (
	errMatchIDRequired = errors.New("match_id is required")
	errCellRequired    = errors.New("cell is required")
)

func decodePayload(message *Message) (Payload, error) {
	var payload Payload
	if len(message.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

// handleNewMatch - creates a match and subscribes the connection to it.
func (that *Server) handleNewMatch(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleNewMatch")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendError(c, msg.Action, err)
	}

	settings := usecase.MatchSettings{}
	if payloadReq.Settings != nil {
		settings = *payloadReq.Settings
	}

	match, events, err := that.gameUseCase.NewMatch(ctx, settings)
	if err != nil {
		log.Error("failed to create match", "error", err)
		return that.sendError(c, msg.Action, err)
	}

	that.hub.subscribe(match.ID, c)

	// the connection was not subscribed while the events were emitted, so they go with the reply
	return that.sendMessage(c, msg.Action, Payload{
		MatchID: match.ID,
		Match:   match,
		Events:  events,
	})
}

// handleJoinMatch - subscribes the connection to an existing match.
func (that *Server) handleJoinMatch(ctx context.Context, c *client, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendError(c, msg.Action, err)
	}

	if payloadReq.MatchID == "" {
		return that.sendError(c, msg.Action, errMatchIDRequired)
	}

	match, err := that.gameUseCase.GetMatch(ctx, payloadReq.MatchID)
	if err != nil {
		return that.sendError(c, msg.Action, err)
	}

	that.hub.subscribe(match.ID, c)

	return that.sendMessage(c, msg.Action, Payload{MatchID: match.ID, Match: match})
}

// handleTurn - the human move; resulting events reach every subscriber through the hub.
func (that *Server) handleTurn(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendError(c, msg.Action, err)
	}

	if payloadReq.MatchID == "" {
		return that.sendError(c, msg.Action, errMatchIDRequired)
	}

	if payloadReq.Cell == nil {
		return that.sendError(c, msg.Action, errCellRequired)
	}

	that.hub.subscribe(payloadReq.MatchID, c)

	log = log.With("matchID", payloadReq.MatchID)

	match, _, err := that.gameUseCase.MakeTurn(ctx, payloadReq.MatchID, payloadReq.Cell.X, payloadReq.Cell.Y)
	if err != nil {
		log.Info("turn rejected", "error", err)
		return that.sendError(c, msg.Action, err)
	}

	return that.sendMessage(c, msg.Action, Payload{MatchID: match.ID, Match: match})
}
