package entity

type EventKind string

const (
	EventStatusChanged      EventKind = "status"
	EventMoveApplied        EventKind = "move"
	EventInteractionChanged EventKind = "interaction"
	EventGameEnded          EventKind = "ended"
)

// Event - a single notification emitted by the game controller.
type Event struct {
	Kind        EventKind `json:"kind"`
	Status      *Status   `json:"status,omitempty"`
	Move        *Move     `json:"move,omitempty"`
	Interaction *bool     `json:"interaction,omitempty"`
	WinningLine []Cell    `json:"winning_line,omitempty"`
}
