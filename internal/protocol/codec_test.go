package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValid(t *testing.T) {
	op, raw, err := Decode([]byte(`{"op":"LOGIN","user":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, OpLogin, op)

	var msg Login
	require.NoError(t, DecodeInto(raw, &msg))
	require.NotNil(t, msg.User)
	assert.Equal(t, "alice", *msg.User)
}

func TestDecodeInvalidJSON(t *testing.T) {
	for _, line := range []string{"", "not json", `{"op":`, `[1,2]`} {
		_, _, err := Decode([]byte(line))
		assert.ErrorIs(t, err, ErrInvalidJSON, "line %q", line)
	}
}

func TestDecodeMissingOp(t *testing.T) {
	_, _, err := Decode([]byte(`{"user":"alice"}`))
	assert.ErrorIs(t, err, ErrMissingOp)

	_, _, err = Decode([]byte(`{"op":""}`))
	assert.ErrorIs(t, err, ErrMissingOp)
}

func TestDecodeFieldPresence(t *testing.T) {
	_, raw, err := Decode([]byte(`{"op":"CREATE_ROOM","room_id":"r1"}`))
	require.NoError(t, err)

	var msg CreateRoom
	require.NoError(t, DecodeInto(raw, &msg))
	require.NotNil(t, msg.RoomID)
	assert.Equal(t, "r1", *msg.RoomID)
	assert.Nil(t, msg.GridSize, "absent grid_size must stay nil")

	_, raw, err = Decode([]byte(`{"op":"PLACE_LINE","x":0,"y":2,"orientation":"H"}`))
	require.NoError(t, err)
	var place PlaceLine
	require.NoError(t, DecodeInto(raw, &place))
	require.NotNil(t, place.X)
	require.NotNil(t, place.Y)
	assert.Equal(t, 0, *place.X, "a present zero must not read as absent")
	assert.Equal(t, 2, *place.Y)
}

func TestEncodeFraming(t *testing.T) {
	data, err := Encode(NewPong())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Equal(t, 1, strings.Count(string(data), "\n"), "exactly one frame delimiter")
	assert.JSONEq(t, `{"op":"PONG"}`, strings.TrimSuffix(string(data), "\n"))
}

func TestEncodeError(t *testing.T) {
	data, err := Encode(NewError("Room full"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"ERROR","msg":"Room full"}`, strings.TrimSpace(string(data)))
}

func TestEncodeGameState(t *testing.T) {
	msg := GameState{
		Op:     OpGameState,
		RoomID: "r1",
		Turn:   1,
		Scores: [2]int{2, 1},
		Board: Board{
			Horizontal: [][]int{{1, 0}, {0, 0}, {0, 1}},
			Vertical:   [][]int{{1, 0, 0}, {0, 0, 1}},
			Boxes:      [][]int{{-1, 0}, {1, -1}},
		},
		GameOver: false,
		Winner:   -1,
	}
	data, err := Encode(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "GAME_STATE", decoded["op"])
	assert.Equal(t, "r1", decoded["room_id"])
	assert.Equal(t, false, decoded["game_over"])
	assert.Contains(t, decoded, "board")
}

func TestRoomListNeverNil(t *testing.T) {
	data, err := Encode(NewRoomList(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"ROOM_LIST","rooms":[]}`, strings.TrimSpace(string(data)))
}
