package tictactoe

import "github.com/rocketscienceinc/gridtoe/internal/entity"

// Listener - receives the notifications emitted while a match is played.
type Listener interface {
	StatusChanged(status entity.Status)
	MoveApplied(move entity.Move)
	// InteractionChanged - enabled only while a human-driven side is to move.
	InteractionChanged(enabled bool)
	GameEnded(result entity.Status, winningLine []entity.Cell)
}

type NopListener struct{}

func (NopListener) StatusChanged(entity.Status) {}

func (NopListener) MoveApplied(entity.Move) {}

func (NopListener) InteractionChanged(bool) {}

func (NopListener) GameEnded(entity.Status, []entity.Cell) {}

// EventRecorder - a Listener that keeps every notification as an entity.Event.
type EventRecorder struct {
	Events []entity.Event
}

func (that *EventRecorder) StatusChanged(status entity.Status) {
	that.Events = append(that.Events, entity.Event{Kind: entity.EventStatusChanged, Status: &status})
}

func (that *EventRecorder) MoveApplied(move entity.Move) {
	that.Events = append(that.Events, entity.Event{Kind: entity.EventMoveApplied, Move: &move})
}

func (that *EventRecorder) InteractionChanged(enabled bool) {
	that.Events = append(that.Events, entity.Event{Kind: entity.EventInteractionChanged, Interaction: &enabled})
}

func (that *EventRecorder) GameEnded(result entity.Status, winningLine []entity.Cell) {
	that.Events = append(that.Events, entity.Event{Kind: entity.EventGameEnded, Status: &result, WinningLine: winningLine})
}
