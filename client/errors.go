package client

import (
	"errors"
	"fmt"
	"io/fs"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/messages"
)

// ErrTimeout is returned when the server stayed silent for the timeout
// window after the last retransmission.
var ErrTimeout = errors.New("transfer timed out")

// ServerError is an ERROR packet received from the server.
type ServerError struct {
	Code    messages.ErrorCode
	Message string
}

func (e *ServerError) Error() string {
	return messages.Error{Code: e.Code, Message: e.Message}.Text()
}

// LocalFileError wraps failures of the local file, e.g. a missing upload
// source or an unwritable download destination.
type LocalFileError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalFileError) Error() string {
	// *fs.PathError already names the operation and the path
	var perr *fs.PathError
	if errors.As(e.Err, &perr) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalFileError) Unwrap() error {
	return e.Err
}

// ProtocolError is raised for packets that have no place in the transfer:
// unknown opcodes, malformed datagrams or the wrong packet kind.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", messages.IllegalOperation, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", messages.IllegalOperation, e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
