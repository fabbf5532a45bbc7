// Package room manages the bounded pool of two-player game rooms. The
// registry owns slot allocation and lookup; each room serializes mutation of
// its seats and game state behind its own lock.
package room

import (
	"errors"
	"sync"

	"github.com/dotboxd/dotboxd/internal/game"
)

var (
	// ErrRoomExists is returned when creating a room whose id already
	// names an active room.
	ErrRoomExists = errors.New("room: room exists")
	// ErrNoCapacity is returned when every room slot is in use.
	ErrNoCapacity = errors.New("room: no room slots")
	// ErrNotFound is returned when no active room has the given id.
	ErrNotFound = errors.New("room: room not found")
	// ErrSelfJoin is returned when a client tries to join a room it created.
	ErrSelfJoin = errors.New("room: already in this room")
	// ErrRoomFull is returned when both seats are occupied.
	ErrRoomFull = errors.New("room: room full")
)

// Seat is one of the two player slots in a room.
type Seat struct {
	// Handle is the opaque connection identity, empty while the seat is
	// vacant. The registry never interprets it beyond equality.
	Handle string
	// Name is the player's self-declared display name.
	Name string
}

// Room is one active two-player session. Seats and the game state are guarded
// by mu; callers outside this package use WithLock for read-decide-mutate
// sequences and must release the lock before any network write.
type Room struct {
	mu sync.Mutex

	// ID is unique among active rooms; it may be reused once the room is
	// torn down.
	ID string
	// GridSize is the box-count per side the creator asked for.
	GridSize int
	// Seats holds the two player slots; seat 0 is the creator.
	Seats [2]Seat
	// Started becomes true the instant the second seat fills.
	Started bool
	// Game is the room's rule engine.
	Game *game.State
}

// WithLock runs fn while holding the room's lock.
//
// Precondition: fn must not block on network I/O and must not acquire any
// other room's lock.
func (r *Room) WithLock(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// Summary is a point-in-time description of an active room for LIST_ROOMS.
type Summary struct {
	ID          string
	PlayerCount int
	GridSize    int
	Status      string // "waiting" or "playing"
	Players     []string
	GameOver    bool
}

// LeaveResult describes what Leave did, so the caller can notify affected
// connections after all locks are released.
type LeaveResult struct {
	// RoomID is the room the handle was seated in, empty if none.
	RoomID string
	// Dissolved is true when the room was torn down.
	Dissolved bool
	// Notify is the handle of an opponent orphaned by the departure, to be
	// told the room closed. Empty when nobody needs notification.
	Notify string
}

// Registry is a bounded collection of rooms addressed by slot. An empty id
// marks a free slot; ids are safe to reuse after teardown.
//
// The registry lock guards slot allocation and id lookup only. Seat and game
// mutation is per-room, so operations on distinct rooms never contend.
type Registry struct {
	mu     sync.Mutex
	slots  []*Room
	maxDim int
}

// NewRegistry creates a registry with the given slot capacity and maximum
// grid dot-dimension.
//
// Precondition: capacity must be >= 1; maxDim must be >= game.MinDotDim.
func NewRegistry(capacity, maxDim int) *Registry {
	slots := make([]*Room, capacity)
	for i := range slots {
		slots[i] = &Room{}
	}
	return &Registry{slots: slots, maxDim: maxDim}
}

// Create allocates a room, seeds a fresh game, and seats the creator in
// seat 0.
//
// Postcondition: On success the returned room is active with Started false.
// Fails with ErrRoomExists or ErrNoCapacity.
func (reg *Registry) Create(id, handle, name string, gridSize int) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.lookup(id) != nil {
		return nil, ErrRoomExists
	}

	var free *Room
	for _, r := range reg.slots {
		var vacant bool
		r.WithLock(func() { vacant = r.ID == "" })
		if vacant {
			free = r
			break
		}
	}
	if free == nil {
		return nil, ErrNoCapacity
	}

	free.WithLock(func() {
		free.ID = id
		free.GridSize = gridSize
		free.Seats[0] = Seat{Handle: handle, Name: name}
		free.Seats[1] = Seat{}
		free.Started = false
		if free.Game == nil {
			free.Game = game.New(gridSize, reg.maxDim)
		} else {
			free.Game.Reset(gridSize, reg.maxDim)
		}
	})
	return free, nil
}

// Find returns the active room with the given id.
func (reg *Registry) Find(id string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r := reg.lookup(id)
	return r, r != nil
}

// lookup scans for an active room by id, taking each room's lock briefly.
// Caller holds reg.mu, which serializes create-vs-create; teardown happens
// under the room lock alone, which is why the per-room lock is needed here.
func (reg *Registry) lookup(id string) *Room {
	if id == "" {
		return nil
	}
	for _, r := range reg.slots {
		var match bool
		r.WithLock(func() { match = r.ID == id })
		if match {
			return r
		}
	}
	return nil
}

// Join seats the handle in seat 1 of the named room and marks it started.
// Exactly one of two racing joiners can succeed.
//
// Postcondition: On success returns the seat index (always 1) and the room.
// Fails with ErrNotFound, ErrSelfJoin, or ErrRoomFull.
func (reg *Registry) Join(id, handle, name string) (*Room, int, error) {
	reg.mu.Lock()
	r := reg.lookup(id)
	reg.mu.Unlock()
	if r == nil {
		return nil, 0, ErrNotFound
	}

	var err error
	r.WithLock(func() {
		switch {
		case r.ID != id:
			// The room was torn down between lookup and lock.
			err = ErrNotFound
		case r.Seats[0].Handle == handle:
			err = ErrSelfJoin
		case r.Seats[1].Handle != "":
			err = ErrRoomFull
		default:
			r.Seats[1] = Seat{Handle: handle, Name: name}
			r.Started = true
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return r, 1, nil
}

// Leave removes the handle from whichever room seats it. An emptied room is
// freed. A started room that still has an occupant is dissolved outright; a
// started two-seat room never continues with one seat empty. The result
// carries the orphaned occupant's handle so the caller can notify it after
// releasing all locks.
func (reg *Registry) Leave(handle string) LeaveResult {
	if handle == "" {
		return LeaveResult{}
	}

	reg.mu.Lock()
	rooms := make([]*Room, len(reg.slots))
	copy(rooms, reg.slots)
	reg.mu.Unlock()

	var res LeaveResult
	for _, r := range rooms {
		r.WithLock(func() {
			if r.ID == "" {
				return
			}
			seat := -1
			for i := range r.Seats {
				if r.Seats[i].Handle == handle {
					seat = i
					break
				}
			}
			if seat < 0 {
				return
			}

			res.RoomID = r.ID
			r.Seats[seat] = Seat{}

			other := r.Seats[1-seat]
			if other.Handle == "" {
				// Room empty, free the slot.
				teardown(r)
				res.Dissolved = true
				return
			}
			if r.Started {
				res.Notify = other.Handle
				teardown(r)
				res.Dissolved = true
			}
		})
		if res.RoomID != "" {
			return res
		}
	}
	return res
}

// teardown frees a room slot for reuse. Caller holds the room lock.
func teardown(r *Room) {
	r.ID = ""
	r.Seats = [2]Seat{}
	r.Started = false
}

// List returns a best-effort snapshot of every active, not-yet-finished room.
// Each room is snapshotted under its own lock; no global lock is held across
// rooms, so concurrent mutation of other rooms is tolerated.
func (reg *Registry) List() []Summary {
	reg.mu.Lock()
	rooms := make([]*Room, len(reg.slots))
	copy(rooms, reg.slots)
	reg.mu.Unlock()

	summaries := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		var s Summary
		var active bool
		r.WithLock(func() {
			if r.ID == "" {
				return
			}
			s = r.summaryLocked()
			active = true
		})
		if active && !s.GameOver {
			summaries = append(summaries, s)
		}
	}
	return summaries
}

// summaryLocked builds the room's summary. Caller holds the room lock.
func (r *Room) summaryLocked() Summary {
	s := Summary{
		ID:       r.ID,
		GridSize: r.GridSize,
		Status:   "waiting",
		GameOver: r.Game != nil && r.Game.Over(),
	}
	if r.Started {
		s.Status = "playing"
	}
	for _, seat := range r.Seats {
		if seat.Handle != "" {
			s.PlayerCount++
			s.Players = append(s.Players, seat.Name)
		}
	}
	return s
}

// SeatOf resolves the seat index occupied by handle, under the room lock.
//
// Postcondition: Returns (seat, true) when the handle is seated.
func (r *Room) SeatOf(handle string) (int, bool) {
	seat, ok := -1, false
	r.WithLock(func() {
		for i := range r.Seats {
			if r.Seats[i].Handle != "" && r.Seats[i].Handle == handle {
				seat, ok = i, true
				return
			}
		}
	})
	return seat, ok
}
