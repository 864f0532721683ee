package engine

import (
	"errors"
	"fmt"
)

const (
	DISCONNECTED = 0x0001
	CONNECTED    = 0x0002
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 41451

	// ClientVersion and MinServerVersion follow the simulator's own client handshake.
	ClientVersion    = 1
	MinServerVersion = 1
)

// msgpack-rpc message kinds
const (
	requestType  = 0
	responseType = 1
)

var (
	ErrNotConnected = errors.New("simulator client is not connected")
	ErrPingFailed   = errors.New("simulator did not answer ping")
)

// RPCError is an error reported by the simulator for a single call.
type RPCError struct {
	Method string
	Detail any
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Method, e.Detail)
}
