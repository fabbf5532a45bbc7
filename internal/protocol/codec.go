package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidJSON is returned for lines that do not parse as a JSON
	// object.
	ErrInvalidJSON = errors.New("protocol: invalid JSON")
	// ErrMissingOp is returned for objects without an "op" field.
	ErrMissingOp = errors.New("protocol: missing op")
)

type envelope struct {
	Op *Op `json:"op"`
}

// Decode parses one wire line into its operation tag and returns the raw
// object for a subsequent DecodeInto.
//
// Postcondition: On success the returned Op is non-empty.
func Decode(line []byte) (Op, json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return "", nil, ErrInvalidJSON
	}
	if env.Op == nil || *env.Op == "" {
		return "", nil, ErrMissingOp
	}
	return *env.Op, json.RawMessage(line), nil
}

// DecodeInto unmarshals a raw object produced by Decode into the typed
// request message for its op.
//
// Precondition: raw must have been returned by Decode.
func DecodeInto(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrInvalidJSON
	}
	return nil
}

// Encode marshals a reply message and appends the newline frame delimiter.
//
// Precondition: v must be one of this package's server message types.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}
	return append(data, '\n'), nil
}
