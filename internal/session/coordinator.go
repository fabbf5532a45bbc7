package session

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dotboxd/dotboxd/internal/config"
	"github.com/dotboxd/dotboxd/internal/game"
	"github.com/dotboxd/dotboxd/internal/protocol"
	"github.com/dotboxd/dotboxd/internal/room"
)

// State is the coordinator's lifecycle state. The only transitions are
// Anonymous → Authenticated → InRoom → Closed, plus re-login (which stays in
// place) and Closed from anywhere.
type State int

const (
	// StateAnonymous is a connection that has not logged in.
	StateAnonymous State = iota
	// StateAuthenticated has a display name bound but no room.
	StateAuthenticated
	// StateInRoom is seated in a room.
	StateInRoom
	// StateClosed processes no further operations.
	StateClosed
)

// Coordinator is the per-connection state machine. It is driven by a single
// worker goroutine (the connection's read loop), so its own fields need no
// locking; all shared state lives in the registry and hub.
type Coordinator struct {
	handle string
	name   string
	roomID string
	state  State

	registry *room.Registry
	hub      *Hub
	cfg      config.GameConfig
	logger   *zap.Logger
	sender   Sender
}

// NewCoordinator creates a coordinator for one connection, minting its
// opaque handle and registering its sender with the hub.
//
// The handle is a fresh UUID rather than any transport-level identifier, so
// nothing about the network socket leaks into room state or onto the wire.
//
// Postcondition: The coordinator is in StateAnonymous and reachable for
// broadcasts.
func NewCoordinator(registry *room.Registry, hub *Hub, cfg config.GameConfig, logger *zap.Logger, sender Sender) *Coordinator {
	handle := uuid.NewString()
	hub.Register(handle, sender)
	return &Coordinator{
		handle:   handle,
		state:    StateAnonymous,
		registry: registry,
		hub:      hub,
		cfg:      cfg,
		logger:   logger.With(zap.String("client", handle)),
		sender:   sender,
	}
}

// Handle returns the connection's opaque identity.
func (c *Coordinator) Handle() string { return c.handle }

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State { return c.state }

// HandleFrame processes one inbound wire frame. Protocol and domain
// failures are answered with ERROR and leave all state unchanged; only
// Close ends the session.
func (c *Coordinator) HandleFrame(line []byte) {
	if c.state == StateClosed {
		return
	}

	op, raw, err := protocol.Decode(line)
	if err != nil {
		switch {
		case errors.Is(err, protocol.ErrMissingOp):
			c.sendError("Missing op")
		default:
			c.sendError("Invalid JSON")
		}
		return
	}

	switch op {
	case protocol.OpLogin:
		c.handleLogin(raw)
	case protocol.OpCreateRoom:
		c.handleCreateRoom(raw)
	case protocol.OpJoinRoom:
		c.handleJoinRoom(raw)
	case protocol.OpListRooms:
		c.handleListRooms()
	case protocol.OpPlaceLine:
		c.handlePlaceLine(raw)
	case protocol.OpPing:
		c.send(protocol.NewPong())
	default:
		c.sendError("Unknown op")
	}
}

func (c *Coordinator) handleLogin(raw []byte) {
	var msg protocol.Login
	if err := protocol.DecodeInto(raw, &msg); err != nil || msg.User == nil || *msg.User == "" {
		c.sendError("Missing username")
		return
	}

	// Re-login simply rebinds the name; an InRoom connection stays seated.
	c.name = *msg.User
	if c.state == StateAnonymous {
		c.state = StateAuthenticated
	}

	c.logger.Info("client logged in", zap.String("user", c.name))
	c.send(protocol.NewLoginOK(c.handle))
}

func (c *Coordinator) handleCreateRoom(raw []byte) {
	if c.state == StateAnonymous {
		c.sendError("Not logged in")
		return
	}
	if c.state == StateInRoom {
		c.sendError("Already in a room")
		return
	}

	var msg protocol.CreateRoom
	if err := protocol.DecodeInto(raw, &msg); err != nil || msg.RoomID == nil || *msg.RoomID == "" {
		c.sendError("Missing room_id")
		return
	}

	gridSize := c.cfg.DefaultGridSize
	if msg.GridSize != nil {
		gridSize = *msg.GridSize
	}

	// Hold on to the requested id rather than the room's field: once the
	// room lock is released, a concurrent teardown may clear the field.
	id := *msg.RoomID

	_, err := c.registry.Create(id, c.handle, c.name, gridSize)
	switch {
	case errors.Is(err, room.ErrRoomExists):
		c.sendError("Room exists")
		return
	case errors.Is(err, room.ErrNoCapacity):
		c.sendError("No room slots")
		return
	case err != nil:
		c.sendError("Invalid request")
		return
	}

	c.roomID = id
	c.state = StateInRoom
	c.logger.Info("room created",
		zap.String("room", id),
		zap.Int("grid_size", gridSize),
	)
	c.send(protocol.NewRoomJoined(id, 0))
}

func (c *Coordinator) handleJoinRoom(raw []byte) {
	if c.state == StateAnonymous {
		c.sendError("Not logged in")
		return
	}
	if c.state == StateInRoom {
		c.sendError("Already in a room")
		return
	}

	var msg protocol.JoinRoom
	if err := protocol.DecodeInto(raw, &msg); err != nil || msg.RoomID == nil || *msg.RoomID == "" {
		c.sendError("Missing room_id")
		return
	}

	id := *msg.RoomID
	r, seat, err := c.registry.Join(id, c.handle, c.name)
	switch {
	case errors.Is(err, room.ErrNotFound):
		c.sendError("Room not found")
		return
	case errors.Is(err, room.ErrSelfJoin):
		c.sendError("You are already in this room")
		return
	case errors.Is(err, room.ErrRoomFull):
		c.sendError("Room full")
		return
	case err != nil:
		c.sendError("Invalid request")
		return
	}

	c.roomID = id
	c.state = StateInRoom
	c.logger.Info("room joined", zap.String("room", id))
	c.send(protocol.NewRoomJoined(id, seat))

	// Snapshot under the room lock, broadcast after releasing it.
	var (
		handles [2]string
		names   [2]string
		snap    game.Snapshot
	)
	r.WithLock(func() {
		for i, s := range r.Seats {
			handles[i] = s.Handle
			names[i] = s.Name
		}
		snap = r.Game.Snapshot()
	})

	start := mustEncode(protocol.NewGameStart(names[0], names[1]))
	state := mustEncode(gameStateMessage(id, snap))
	c.hub.SendAll(handles[:], start, "")
	c.hub.SendAll(handles[:], state, "")
}

func (c *Coordinator) handleListRooms() {
	summaries := c.registry.List()
	rooms := make([]protocol.RoomInfo, 0, len(summaries))
	for _, s := range summaries {
		rooms = append(rooms, protocol.RoomInfo{
			RoomID:      s.ID,
			PlayerCount: s.PlayerCount,
			GridSize:    s.GridSize,
			Status:      s.Status,
			Players:     s.Players,
		})
	}
	c.send(protocol.NewRoomList(rooms))
}

func (c *Coordinator) handlePlaceLine(raw []byte) {
	if c.state != StateInRoom {
		c.sendError("Not in a room")
		return
	}

	r, ok := c.registry.Find(c.roomID)
	if !ok {
		c.sendError("Room not found")
		return
	}

	var msg protocol.PlaceLine
	if err := protocol.DecodeInto(raw, &msg); err != nil ||
		msg.X == nil || msg.Y == nil || msg.Orientation == nil {
		c.sendError("Invalid PLACE_LINE")
		return
	}

	// Read-decide-mutate under the room lock; the wire write happens after
	// release so a stalled peer cannot hold up the room.
	var (
		handles  [2]string
		snap     game.Snapshot
		moveErr  error
		wrongNow bool
	)
	r.WithLock(func() {
		seat, seated := -1, false
		for i := range r.Seats {
			if r.Seats[i].Handle == c.handle {
				seat, seated = i, true
				break
			}
		}
		if !seated {
			moveErr = room.ErrNotFound
			return
		}
		if c.cfg.EnforceTurnOrder && r.Game.Turn() != seat {
			wrongNow = true
			return
		}
		_, moveErr = r.Game.PlaceLine(*msg.X, *msg.Y, game.Orientation(*msg.Orientation), seat)
		if moveErr != nil {
			return
		}
		for i, s := range r.Seats {
			handles[i] = s.Handle
		}
		snap = r.Game.Snapshot()
	})

	switch {
	case wrongNow:
		c.sendError("Not your turn")
		return
	case errors.Is(moveErr, game.ErrAlreadyPlaced):
		c.sendError("Line already placed")
		return
	case errors.Is(moveErr, room.ErrNotFound):
		c.sendError("Room not found")
		return
	case moveErr != nil:
		// Out of bounds, bad orientation, or game over.
		c.logger.Debug("move rejected", zap.Error(moveErr))
		c.sendError("Invalid move")
		return
	}

	state := mustEncode(gameStateMessage(c.roomID, snap))
	c.hub.SendAll(handles[:], state, "")
}

// Close releases the connection's room seat exactly once and stops all
// further processing. An opponent orphaned mid-game is notified before the
// coordinator goes silent.
func (c *Coordinator) Close() {
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed

	res := c.registry.Leave(c.handle)
	if res.RoomID != "" {
		c.logger.Info("left room",
			zap.String("room", res.RoomID),
			zap.Bool("dissolved", res.Dissolved),
		)
	}
	if res.Notify != "" {
		c.hub.Send(res.Notify, mustEncode(protocol.NewError("Opponent disconnected. Room closed.")))
	}
	c.hub.Unregister(c.handle)
}

// gameStateMessage converts an engine snapshot to its wire message.
func gameStateMessage(roomID string, snap game.Snapshot) protocol.GameState {
	return protocol.GameState{
		Op:     protocol.OpGameState,
		RoomID: roomID,
		Turn:   snap.Turn,
		Scores: snap.Scores,
		Board: protocol.Board{
			Horizontal: snap.Board.Horizontal,
			Vertical:   snap.Board.Vertical,
			Boxes:      snap.Board.Boxes,
		},
		GameOver: snap.GameOver,
		Winner:   snap.Winner,
	}
}

func (c *Coordinator) send(msg any) {
	// Write failures surface through the connection's own read loop.
	_ = c.sender.WriteFrame(mustEncode(msg))
}

func (c *Coordinator) sendError(msg string) {
	c.send(protocol.NewError(msg))
}

// mustEncode encodes a server message. The message types are fixed structs,
// so encoding cannot fail at runtime.
func mustEncode(msg any) []byte {
	data, err := protocol.Encode(msg)
	if err != nil {
		panic(err)
	}
	return data
}
