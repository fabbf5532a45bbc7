package game

// Board is the wire representation of the grid: edges as 0/1, boxes as the
// owning seat or -1. Dimensions are horizontal dotDim x (dotDim-1), vertical
// (dotDim-1) x dotDim, boxes (dotDim-1) x (dotDim-1).
type Board struct {
	Horizontal [][]int `json:"horizontal"`
	Vertical   [][]int `json:"vertical"`
	Boxes      [][]int `json:"boxes"`
}

// Snapshot is a point-in-time copy of the full game state, safe to hand to
// code running outside the room lock.
type Snapshot struct {
	Turn     int
	Scores   [2]int
	Board    Board
	GameOver bool
	Winner   int
}

// Snapshot copies the current state into its wire representation.
//
// Postcondition: The returned value shares no memory with the engine.
func (s *State) Snapshot() Snapshot {
	boxDim := s.dotDim - 1

	board := Board{
		Horizontal: make([][]int, s.dotDim),
		Vertical:   make([][]int, boxDim),
		Boxes:      make([][]int, boxDim),
	}
	for row := 0; row < s.dotDim; row++ {
		board.Horizontal[row] = make([]int, boxDim)
		for col := 0; col < boxDim; col++ {
			if s.horizontal[row][col] {
				board.Horizontal[row][col] = 1
			}
		}
	}
	for row := 0; row < boxDim; row++ {
		board.Vertical[row] = make([]int, s.dotDim)
		for col := 0; col < s.dotDim; col++ {
			if s.vertical[row][col] {
				board.Vertical[row][col] = 1
			}
		}
		board.Boxes[row] = make([]int, boxDim)
		copy(board.Boxes[row], s.boxes[row])
	}

	return Snapshot{
		Turn:     s.turn,
		Scores:   s.scores,
		Board:    board,
		GameOver: s.over,
		Winner:   s.winner,
	}
}
