package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotboxd/dotboxd/internal/game"
)

const testMaxDim = 6

func TestCreate(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	r, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, 3, r.GridSize)
	assert.Equal(t, "alice", r.Seats[0].Name)
	assert.False(t, r.Started)
	require.NotNil(t, r.Game)
	assert.Equal(t, 4, r.Game.DotDim())
}

func TestCreateDuplicateID(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)
	_, err = reg.Create("r1", "h-bob", "bob", 3)
	assert.ErrorIs(t, err, ErrRoomExists)
}

func TestCreateNoCapacity(t *testing.T) {
	reg := NewRegistry(2, testMaxDim)
	_, err := reg.Create("r1", "h1", "p1", 3)
	require.NoError(t, err)
	_, err = reg.Create("r2", "h2", "p2", 3)
	require.NoError(t, err)
	_, err = reg.Create("r3", "h3", "p3", 3)
	assert.ErrorIs(t, err, ErrNoCapacity)
}

func TestFind(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)

	r, ok := reg.Find("r1")
	require.True(t, ok)
	assert.Equal(t, "r1", r.ID)

	_, ok = reg.Find("nope")
	assert.False(t, ok)
	_, ok = reg.Find("")
	assert.False(t, ok)
}

func TestJoin(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)

	r, seat, err := reg.Join("r1", "h-bob", "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, seat)
	assert.True(t, r.Started)
	assert.Equal(t, "bob", r.Seats[1].Name)
}

func TestJoinErrors(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)

	_, _, err = reg.Join("nope", "h-bob", "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = reg.Join("r1", "h-alice", "alice")
	assert.ErrorIs(t, err, ErrSelfJoin)

	_, _, err = reg.Join("r1", "h-bob", "bob")
	require.NoError(t, err)
	_, _, err = reg.Join("r1", "h-carol", "carol")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinRace(t *testing.T) {
	// Exactly one of N racing joiners may win seat 1.
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)

	const joiners = 16
	var wg sync.WaitGroup
	errs := make([]error, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = reg.Join("r1", fmt.Sprintf("h-%d", i), fmt.Sprintf("p%d", i))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrRoomFull)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestLeaveWaitingRoomFreesSlot(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)

	res := reg.Leave("h-alice")
	assert.Equal(t, "r1", res.RoomID)
	assert.True(t, res.Dissolved)
	assert.Empty(t, res.Notify)

	_, ok := reg.Find("r1")
	assert.False(t, ok)
}

func TestLeaveStartedRoomDissolvesAndNotifies(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)
	_, _, err = reg.Join("r1", "h-bob", "bob")
	require.NoError(t, err)

	res := reg.Leave("h-bob")
	assert.Equal(t, "r1", res.RoomID)
	assert.True(t, res.Dissolved)
	assert.Equal(t, "h-alice", res.Notify)

	// A started room never continues half-populated.
	_, ok := reg.Find("r1")
	assert.False(t, ok)
}

func TestLeaveUnknownHandle(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	res := reg.Leave("h-ghost")
	assert.Empty(t, res.RoomID)
	assert.False(t, res.Dissolved)

	res = reg.Leave("")
	assert.Empty(t, res.RoomID)
}

func TestIDReuseAfterTeardown(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)
	reg.Leave("h-alice")

	r, err := reg.Create("r1", "h-bob", "bob", 5)
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, 5, r.GridSize)
	assert.Equal(t, "bob", r.Seats[0].Name)
	assert.Equal(t, [2]int{0, 0}, r.Game.Scores(), "reused slot must carry a fresh game")
	assert.Equal(t, 6, r.Game.DotDim())
}

func TestList(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	_, err := reg.Create("waiting", "h-alice", "alice", 3)
	require.NoError(t, err)
	_, err = reg.Create("playing", "h-bob", "bob", 2)
	require.NoError(t, err)
	_, _, err = reg.Join("playing", "h-carol", "carol")
	require.NoError(t, err)

	summaries := reg.List()
	require.Len(t, summaries, 2)

	byID := map[string]Summary{}
	for _, s := range summaries {
		byID[s.ID] = s
	}

	w := byID["waiting"]
	assert.Equal(t, 1, w.PlayerCount)
	assert.Equal(t, "waiting", w.Status)
	assert.Equal(t, []string{"alice"}, w.Players)
	assert.Equal(t, 3, w.GridSize)

	p := byID["playing"]
	assert.Equal(t, 2, p.PlayerCount)
	assert.Equal(t, "playing", p.Status)
	assert.Equal(t, []string{"bob", "carol"}, p.Players)
}

func TestListSkipsFinishedRooms(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	r, err := reg.Create("done", "h-alice", "alice", 1)
	require.NoError(t, err)
	_, _, err = reg.Join("done", "h-bob", "bob")
	require.NoError(t, err)

	// Play the 2x2-box grid to completion; seat choice is irrelevant here.
	r.WithLock(func() {
		dotDim := r.Game.DotDim()
		for y := 0; y < dotDim; y++ {
			for x := 0; x < dotDim-1; x++ {
				_, _ = r.Game.PlaceLine(x, y, game.Horizontal, game.SeatOne)
			}
		}
		for y := 0; y < dotDim-1; y++ {
			for x := 0; x < dotDim; x++ {
				_, _ = r.Game.PlaceLine(x, y, game.Vertical, game.SeatOne)
			}
		}
		require.True(t, r.Game.Over())
	})

	assert.Empty(t, reg.List())
}

func TestSeatOf(t *testing.T) {
	reg := NewRegistry(10, testMaxDim)
	r, err := reg.Create("r1", "h-alice", "alice", 3)
	require.NoError(t, err)
	_, _, err = reg.Join("r1", "h-bob", "bob")
	require.NoError(t, err)

	seat, ok := r.SeatOf("h-alice")
	require.True(t, ok)
	assert.Equal(t, 0, seat)

	seat, ok = r.SeatOf("h-bob")
	require.True(t, ok)
	assert.Equal(t, 1, seat)

	_, ok = r.SeatOf("h-ghost")
	assert.False(t, ok)
}

func TestConcurrentDistinctRooms(t *testing.T) {
	// Operations on distinct rooms never block each other; hammer the
	// registry from many goroutines and rely on the race detector.
	reg := NewRegistry(10, testMaxDim)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("room-%d", i)
			creator := fmt.Sprintf("h-c%d", i)
			joiner := fmt.Sprintf("h-j%d", i)
			for n := 0; n < 50; n++ {
				if _, err := reg.Create(id, creator, "creator", 3); err != nil {
					continue
				}
				_, _, _ = reg.Join(id, joiner, "joiner")
				reg.List()
				reg.Leave(creator)
				reg.Leave(joiner)
			}
		}(i)
	}
	wg.Wait()
}
