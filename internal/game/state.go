// Package game implements the dots-and-boxes rule engine. The engine is a
// pure state machine: it owns one grid's line, box, and score state and
// performs no I/O and no locking. Callers serialize access per room.
package game

import "errors"

// Orientation selects which edge matrix a placement addresses.
type Orientation string

const (
	// Horizontal is an edge between two horizontally adjacent dots.
	Horizontal Orientation = "H"
	// Vertical is an edge between two vertically adjacent dots.
	Vertical Orientation = "V"
)

// Seat values. SeatNone doubles as the draw sentinel for Winner.
const (
	SeatNone = -1
	SeatOne  = 0
	SeatTwo  = 1
)

// MinDotDim is the smallest playable grid: 3 dots per axis, 2x2 boxes.
const MinDotDim = 3

var (
	// ErrGameOver is returned for placements after the game has ended.
	ErrGameOver = errors.New("game: game is over")
	// ErrOutOfBounds is returned when (x, y) does not address a valid edge
	// for the given orientation.
	ErrOutOfBounds = errors.New("game: edge out of bounds")
	// ErrAlreadyPlaced is returned when the addressed edge is already set.
	ErrAlreadyPlaced = errors.New("game: line already placed")
	// ErrBadOrientation is returned for orientations other than H and V.
	ErrBadOrientation = errors.New("game: unknown orientation")
)

// State holds one room's full game state.
//
// Edge indexing follows the wire convention: horizontal[row][col] is the edge
// from dot (row, col) to dot (row, col+1), so row ranges over [0, dotDim) and
// col over [0, dotDim-1). vertical[row][col] is the edge from dot (row, col)
// to dot (row+1, col), so row ranges over [0, dotDim-1) and col over
// [0, dotDim). boxes[row][col] is the owning seat of the unit box whose
// top-left dot is (row, col), or SeatNone.
type State struct {
	dotDim     int
	horizontal [][]bool
	vertical   [][]bool
	boxes      [][]int
	scores     [2]int
	turn       int
	over       bool
	winner     int
}

// New creates a fresh game for the requested box count per side.
//
// Precondition: maxDim must be >= MinDotDim.
// Postcondition: All edges empty, all boxes unowned, seat 0 to move.
func New(size, maxDim int) *State {
	s := &State{}
	s.Reset(size, maxDim)
	return s
}

// Reset re-initializes the state for a new game. Pure re-initialization;
// there are no error paths.
//
// The caller requests boxes per side, so the dot dimension is size+1,
// clamped to [MinDotDim, maxDim].
func (s *State) Reset(size, maxDim int) {
	dotDim := size + 1
	if dotDim < MinDotDim {
		dotDim = MinDotDim
	}
	if dotDim > maxDim {
		dotDim = maxDim
	}

	s.dotDim = dotDim
	s.horizontal = make([][]bool, dotDim)
	s.vertical = make([][]bool, dotDim-1)
	s.boxes = make([][]int, dotDim-1)
	for row := 0; row < dotDim; row++ {
		s.horizontal[row] = make([]bool, dotDim-1)
	}
	for row := 0; row < dotDim-1; row++ {
		s.vertical[row] = make([]bool, dotDim)
		s.boxes[row] = make([]int, dotDim-1)
		for col := range s.boxes[row] {
			s.boxes[row][col] = SeatNone
		}
	}
	s.scores = [2]int{}
	s.turn = SeatOne
	s.over = false
	s.winner = SeatNone
}

// PlaceLine sets the edge at (x, y) for the acting seat and returns how many
// boxes the move completed.
//
// The engine does not verify that seat matches the current turn; the original
// server allowed either seated player to move at any time, and callers that
// want turn enforcement gate before calling (see config.GameConfig).
//
// Precondition: seat must be SeatOne or SeatTwo.
// Postcondition: On success the edge is set, completed boxes are owned by
// seat, the turn advanced unless a box completed, and the terminal state is
// up to date. On error the state is unchanged.
func (s *State) PlaceLine(x, y int, orientation Orientation, seat int) (int, error) {
	if s.over {
		return 0, ErrGameOver
	}

	boxDim := s.dotDim - 1
	completed := 0

	switch orientation {
	case Horizontal:
		// y is the dot row, x indexes the edge within that row.
		if y < 0 || y >= s.dotDim || x < 0 || x >= boxDim {
			return 0, ErrOutOfBounds
		}
		if s.horizontal[y][x] {
			return 0, ErrAlreadyPlaced
		}
		s.horizontal[y][x] = true

		// The boxes above and below the new edge.
		if y > 0 {
			completed += s.claimIfComplete(y-1, x, seat)
		}
		if y < boxDim {
			completed += s.claimIfComplete(y, x, seat)
		}

	case Vertical:
		// y is the edge row, x is the dot column.
		if y < 0 || y >= boxDim || x < 0 || x >= s.dotDim {
			return 0, ErrOutOfBounds
		}
		if s.vertical[y][x] {
			return 0, ErrAlreadyPlaced
		}
		s.vertical[y][x] = true

		// The boxes left and right of the new edge.
		if x > 0 {
			completed += s.claimIfComplete(y, x-1, seat)
		}
		if x < boxDim {
			completed += s.claimIfComplete(y, x, seat)
		}

	default:
		return 0, ErrBadOrientation
	}

	// Extra-turn rule: completing any box keeps the turn.
	if completed == 0 {
		s.turn = 1 - s.turn
	}

	if s.scores[0]+s.scores[1] >= boxDim*boxDim {
		s.over = true
		switch {
		case s.scores[0] > s.scores[1]:
			s.winner = SeatOne
		case s.scores[1] > s.scores[0]:
			s.winner = SeatTwo
		default:
			s.winner = SeatNone
		}
	}

	return completed, nil
}

// claimIfComplete assigns the box at (row, col) to seat when all four of its
// bounding edges are set and it is not yet owned. Returns 1 on a claim.
func (s *State) claimIfComplete(row, col, seat int) int {
	if s.boxes[row][col] != SeatNone {
		return 0
	}

	top := s.horizontal[row][col]
	bottom := s.horizontal[row+1][col]
	left := s.vertical[row][col]
	right := s.vertical[row][col+1]
	if !(top && bottom && left && right) {
		return 0
	}

	s.boxes[row][col] = seat
	s.scores[seat]++
	return 1
}

// Over reports whether the game has ended.
func (s *State) Over() bool { return s.over }

// Turn returns the seat that moves next.
func (s *State) Turn() int { return s.turn }

// Winner returns the winning seat once the game is over, or SeatNone for a
// draw. Meaningless before Over reports true.
func (s *State) Winner() int { return s.winner }

// Scores returns both seats' box counts.
func (s *State) Scores() [2]int { return s.scores }

// DotDim returns the number of dots per axis.
func (s *State) DotDim() int { return s.dotDim }
