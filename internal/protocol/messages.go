// Package protocol defines the typed wire messages and the newline-framed
// JSON codec. Every message is one JSON object per line, UTF-8, tagged by an
// "op" field.
package protocol

// Op tags a wire message with its operation.
type Op string

// Client-to-server operations.
const (
	OpLogin      Op = "LOGIN"
	OpCreateRoom Op = "CREATE_ROOM"
	OpJoinRoom   Op = "JOIN_ROOM"
	OpListRooms  Op = "LIST_ROOMS"
	OpPlaceLine  Op = "PLACE_LINE"
	OpPing       Op = "PING"
)

// Server-to-client operations.
const (
	OpLoginOK    Op = "LOGIN_OK"
	OpRoomJoined Op = "ROOM_JOINED"
	OpGameStart  Op = "GAME_START"
	OpGameState  Op = "GAME_STATE"
	OpRoomList   Op = "ROOM_LIST"
	OpError      Op = "ERROR"
	OpPong       Op = "PONG"
)

// Pointer fields on request messages distinguish an absent field from a zero
// value, so missing-field protocol errors can be reported precisely.

// Login binds a display name to the connection.
type Login struct {
	User *string `json:"user"`
}

// CreateRoom requests a new room. GridSize is the box count per side and is
// optional; the server default applies when absent.
type CreateRoom struct {
	RoomID   *string `json:"room_id"`
	GridSize *int    `json:"grid_size"`
}

// JoinRoom requests seat 1 of an existing room.
type JoinRoom struct {
	RoomID *string `json:"room_id"`
}

// PlaceLine places the edge at (x, y) with orientation "H" or "V".
type PlaceLine struct {
	X           *int    `json:"x"`
	Y           *int    `json:"y"`
	Orientation *string `json:"orientation"`
}

// LoginOK acknowledges a login with the opaque per-connection identifier.
type LoginOK struct {
	Op       Op     `json:"op"`
	PlayerID string `json:"player_id"`
}

// RoomJoined confirms a create or join, carrying the assigned seat.
type RoomJoined struct {
	Op        Op     `json:"op"`
	RoomID    string `json:"room_id"`
	PlayerNum int    `json:"player_num"`
}

// GameStart announces both display names when the second seat fills.
type GameStart struct {
	Op      Op     `json:"op"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// Board is the wire form of the grid: edges as 0/1, boxes as owning seat
// or -1.
type Board struct {
	Horizontal [][]int `json:"horizontal"`
	Vertical   [][]int `json:"vertical"`
	Boxes      [][]int `json:"boxes"`
}

// GameState is the authoritative state snapshot broadcast after every
// successful move and at game start.
type GameState struct {
	Op       Op     `json:"op"`
	RoomID   string `json:"room_id"`
	Turn     int    `json:"turn"`
	Scores   [2]int `json:"scores"`
	Board    Board  `json:"board"`
	GameOver bool   `json:"game_over"`
	Winner   int    `json:"winner"`
}

// RoomInfo is one entry of a ROOM_LIST reply.
type RoomInfo struct {
	RoomID      string   `json:"room_id"`
	PlayerCount int      `json:"player_count"`
	GridSize    int      `json:"grid_size"`
	Status      string   `json:"status"`
	Players     []string `json:"players"`
}

// RoomList is the reply to LIST_ROOMS.
type RoomList struct {
	Op    Op         `json:"op"`
	Rooms []RoomInfo `json:"rooms"`
}

// Error carries a protocol or domain error; the connection stays open.
type Error struct {
	Op  Op     `json:"op"`
	Msg string `json:"msg"`
}

// Pong is the reply to PING.
type Pong struct {
	Op Op `json:"op"`
}

// NewLoginOK builds a LOGIN_OK reply.
func NewLoginOK(playerID string) LoginOK {
	return LoginOK{Op: OpLoginOK, PlayerID: playerID}
}

// NewRoomJoined builds a ROOM_JOINED reply.
func NewRoomJoined(roomID string, playerNum int) RoomJoined {
	return RoomJoined{Op: OpRoomJoined, RoomID: roomID, PlayerNum: playerNum}
}

// NewGameStart builds a GAME_START broadcast.
func NewGameStart(player1, player2 string) GameStart {
	return GameStart{Op: OpGameStart, Player1: player1, Player2: player2}
}

// NewRoomList builds a ROOM_LIST reply. The rooms slice is never nil so the
// wire form is always a JSON array.
func NewRoomList(rooms []RoomInfo) RoomList {
	if rooms == nil {
		rooms = []RoomInfo{}
	}
	return RoomList{Op: OpRoomList, Rooms: rooms}
}

// NewError builds an ERROR reply.
func NewError(msg string) Error {
	return Error{Op: OpError, Msg: msg}
}

// NewPong builds a PONG reply.
func NewPong() Pong {
	return Pong{Op: OpPong}
}
