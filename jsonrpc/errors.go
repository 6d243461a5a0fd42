package jsonrpc

import (
	"errors"
	"io"
)

// ErrInvalidData is matched (via errors.Is) by every packet-fatal framing
// error. The stream is still usable after such an error.
var ErrInvalidData = errors.New("invalid data")

var (
	// ErrAlreadyResponded is returned by a ResponseHandle that has already sent its reply.
	ErrAlreadyResponded = errors.New("jsonrpc: response already sent")

	// ErrNoResponseHandle is returned when replying through a nil ResponseHandle.
	ErrNoResponseHandle = errors.New("jsonrpc: request has no response handle")

	// ErrInvalidResult is returned by Success or Failure when the result or
	// error data could not be marshaled. An internal error reply has already
	// been sent in its place.
	ErrInvalidResult = errors.New("jsonrpc: result cannot be marshaled")
)

// PacketError reports a packet that was present on the wire but could not be
// framed. Only the offending packet is lost.
type PacketError struct {
	Reason string
	Err    error
}

func (e *PacketError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *PacketError) Unwrap() error { return e.Err }

func (e *PacketError) Is(target error) bool { return target == ErrInvalidData }

// IsPacketError reports whether err is confined to a single packet, either a
// framing problem or a JSON-RPC envelope problem.
func IsPacketError(err error) bool {
	var pe *PacketError
	if errors.As(err, &pe) {
		return true
	}
	var pf *ParseFailure
	return errors.As(err, &pf)
}

// IsStreamFatal reports whether err means no further packets can be read.
func IsStreamFatal(err error) bool {
	return err != nil && !IsPacketError(err)
}

// IsClosed reports whether err is the end-of-stream condition produced when
// the peer goes away.
func IsClosed(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF)
}
