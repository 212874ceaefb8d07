package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
	"github.com/rocketscienceinc/gridtoe/internal/entity"
	"github.com/rocketscienceinc/gridtoe/internal/usecase"
)

type mockGameUseCase struct {
	mock.Mock
}

func (that *mockGameUseCase) NewMatch(ctx context.Context, settings usecase.MatchSettings) (*entity.Match, []entity.Event, error) {
	args := that.Called(ctx, settings)

	match, _ := args.Get(0).(*entity.Match)
	events, _ := args.Get(1).([]entity.Event)
	return match, events, args.Error(2)
}

func (that *mockGameUseCase) MakeTurn(ctx context.Context, matchID string, x, y int) (*entity.Match, []entity.Event, error) {
	args := that.Called(ctx, matchID, x, y)

	match, _ := args.Get(0).(*entity.Match)
	events, _ := args.Get(1).([]entity.Event)
	return match, events, args.Error(2)
}

func (that *mockGameUseCase) GetMatch(ctx context.Context, matchID string) (*entity.Match, error) {
	args := that.Called(ctx, matchID)

	match, _ := args.Get(0).(*entity.Match)
	return match, args.Error(1)
}

type testServer struct {
	hub         *Hub
	gameUseCase *mockGameUseCase
	url         string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gameUseCase := &mockGameUseCase{}
	hub := NewHub(logger)

	srv := httptest.NewServer(New(logger, gameUseCase, hub).Handler())
	t.Cleanup(func() {
		srv.Close()
		gameUseCase.AssertExpectations(t)
	})

	return &testServer{
		hub:         hub,
		gameUseCase: gameUseCase,
		url:         "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
	}
}

func (that *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(that.url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
}

func receive(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(data, &message))

	var payload Payload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

func newTestMatch(t *testing.T) *entity.Match {
	t.Helper()

	conf := entity.MatchConfig{Width: 3, Length: 3, WinningLineAmount: 3, SearchDepthLimit: 2}
	match, err := entity.NewMatch("match-1", conf, entity.OwnerSideA, entity.OwnerSideA)
	require.NoError(t, err)

	return match
}

func TestServer_NewMatch(t *testing.T) {
	// Given: a connected client
	server := newTestServer(t)
	conn := server.dial(t)

	match := newTestMatch(t)
	events := []entity.Event{{Kind: entity.EventStatusChanged, Status: &match.Status}}
	server.gameUseCase.On("NewMatch", mock.Anything, usecase.MatchSettings{Width: 4}).Return(match, events, nil).Once()

	// When: the client asks for a match
	send(t, conn, `{"action":"match:new","payload":{"settings":{"width":4}}}`)

	// Then: the reply carries the match and its opening events
	action, payload := receive(t, conn)
	assert.Equal(t, actionNewMatch, action)
	assert.Equal(t, "match-1", payload.MatchID)
	require.NotNil(t, payload.Match)
	assert.Equal(t, match.Status, payload.Match.Status)
	assert.Len(t, payload.Events, 1)
	assert.Equal(t, 1, server.hub.subscriberCount("match-1"))
}

func TestServer_TurnEvents(t *testing.T) {
	// Given: a client following a match
	server := newTestServer(t)
	conn := server.dial(t)

	match := newTestMatch(t)
	server.gameUseCase.On("GetMatch", mock.Anything, "match-1").Return(match, nil).Once()

	send(t, conn, `{"action":"match:join","payload":{"match_id":"match-1"}}`)
	action, _ := receive(t, conn)
	require.Equal(t, actionJoinMatch, action)

	move := entity.Move{Cell: entity.Cell{X: 0, Y: 2}, Owner: entity.OwnerSideA}
	events := []entity.Event{{Kind: entity.EventMoveApplied, Move: &move}}
	server.gameUseCase.On("MakeTurn", mock.Anything, "match-1", 0, 2).
		Run(func(args mock.Arguments) {
			server.hub.Notify(args.Get(0).(context.Context), "match-1", events)
		}).
		Return(match, events, nil).
		Once()

	// When: the client moves
	send(t, conn, `{"action":"match:turn","payload":{"match_id":"match-1","cell":{"x":0,"y":2}}}`)

	// Then: the event is pushed before the reply
	action, payload := receive(t, conn)
	assert.Equal(t, actionEvent, action)
	require.NotNil(t, payload.Event)
	assert.Equal(t, move, *payload.Event.Move)

	action, payload = receive(t, conn)
	assert.Equal(t, actionTurn, action)
	assert.Empty(t, payload.Error)
}

func TestServer_Errors(t *testing.T) {
	server := newTestServer(t)
	conn := server.dial(t)

	server.gameUseCase.On("MakeTurn", mock.Anything, "match-1", 1, 1).
		Return(nil, nil, fmt.Errorf("failed to make turn: %w", apperror.ErrCellOccupied)).
		Once()
	server.gameUseCase.On("GetMatch", mock.Anything, "missing").
		Return(nil, apperror.ErrMatchNotFound).
		Once()

	tests := []struct {
		name    string
		message string
		action  string
		error   string
	}{
		{name: "malformed message", message: `{"action":`, action: actionError},
		{name: "unknown action", message: `{"action":"match:undo"}`, action: "match:undo", error: errUnknownAction.Error()},
		{name: "join without id", message: `{"action":"match:join","payload":{}}`, action: actionJoinMatch, error: errMatchIDRequired.Error()},
		{name: "join unknown match", message: `{"action":"match:join","payload":{"match_id":"missing"}}`, action: actionJoinMatch, error: apperror.ErrMatchNotFound.Error()},
		{name: "turn without cell", message: `{"action":"match:turn","payload":{"match_id":"match-1"}}`, action: actionTurn, error: errCellRequired.Error()},
		{name: "occupied cell", message: `{"action":"match:turn","payload":{"match_id":"match-1","cell":{"x":1,"y":1}}}`, action: actionTurn, error: apperror.ErrCellOccupied.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.message)

			action, payload := receive(t, conn)
			assert.Equal(t, tt.action, action)
			require.NotEmpty(t, payload.Error)
			assert.Contains(t, payload.Error, tt.error)
		})
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	// Given: two clients following the same match
	server := newTestServer(t)
	server.gameUseCase.On("GetMatch", mock.Anything, "match-1").Return(newTestMatch(t), nil).Twice()

	first, second := server.dial(t), server.dial(t)
	for _, conn := range []*websocket.Conn{first, second} {
		send(t, conn, `{"action":"match:join","payload":{"match_id":"match-1"}}`)
		action, _ := receive(t, conn)
		require.Equal(t, actionJoinMatch, action)
	}
	require.Equal(t, 2, server.hub.subscriberCount("match-1"))

	// When: one of them disconnects
	require.NoError(t, first.Close())

	// Then: only the other still gets events
	assert.Eventually(t, func() bool {
		return server.hub.subscriberCount("match-1") == 1
	}, 5*time.Second, 10*time.Millisecond)

	status := entity.DrawnStatus()
	server.hub.Notify(context.Background(), "match-1", []entity.Event{{Kind: entity.EventGameEnded, Status: &status}})

	action, payload := receive(t, second)
	assert.Equal(t, actionEvent, action)
	assert.Equal(t, entity.EventGameEnded, payload.Event.Kind)
}
