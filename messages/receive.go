package messages

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// WrongPacketLengthError is returned for datagrams too short for their
// opcode, ACKs with trailing bytes and DATA with more than BlockSize bytes.
type WrongPacketLengthError struct {
	Opcode Opcode
	Length int
}

func (e *WrongPacketLengthError) Error() string {
	return fmt.Sprintf("wrong packet length %d for %s", e.Length, e.Opcode)
}

type UnsupportedOpcodeError struct {
	Opcode Opcode
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unsupported opcode: %d", uint16(e.Opcode))
}

// MissingTerminatorError is returned when a string field is not NUL terminated.
type MissingTerminatorError struct {
	Opcode Opcode
	Field  string
}

func (e *MissingTerminatorError) Error() string {
	return fmt.Sprintf("%s: %s is not NUL terminated", e.Opcode, e.Field)
}

// Receive waits until deadline for one datagram on conn. Timeouts are
// returned unwrapped so that os.IsTimeout matches them.
func Receive(conn net.PacketConn, deadline time.Time) (net.Addr, []byte, error) {
	// one spare byte so oversized DATA is detected instead of truncated
	buffer := make([]byte, MaxPacketSize+1)

	err := conn.SetReadDeadline(deadline)
	if err != nil {
		return nil, nil, fmt.Errorf("creating the timeout deadline: %w", err)
	}
	n, addr, err := conn.ReadFrom(buffer)
	if err != nil {
		return nil, nil, err
	}
	return addr, buffer[:n], nil
}

// Parse decodes one TFTP datagram. The returned DATA payload aliases data.
func Parse(data []byte) (Packet, error) {
	if len(data) < 2 {
		return nil, &WrongPacketLengthError{Length: len(data)}
	}
	op := Opcode(binary.BigEndian.Uint16(data))
	body := data[2:]

	switch op {
	case OpRRQ, OpWRQ:
		filename, rest, ok := cstring(body)
		if !ok {
			return nil, &MissingTerminatorError{Opcode: op, Field: "filename"}
		}
		mode, _, ok := cstring(rest)
		if !ok {
			return nil, &MissingTerminatorError{Opcode: op, Field: "mode"}
		}
		if op == OpWRQ {
			return WriteRequest{Filename: filename, Mode: mode}, nil
		}
		return ReadRequest{Filename: filename, Mode: mode}, nil

	case OpDATA:
		if len(data) < HeaderSize || len(data) > MaxPacketSize {
			return nil, &WrongPacketLengthError{Opcode: op, Length: len(data)}
		}
		return Data{Block: binary.BigEndian.Uint16(body), Payload: data[HeaderSize:]}, nil

	case OpACK:
		if len(data) != HeaderSize {
			return nil, &WrongPacketLengthError{Opcode: op, Length: len(data)}
		}
		return Ack{Block: binary.BigEndian.Uint16(body)}, nil

	case OpERROR:
		if len(data) < HeaderSize {
			return nil, &WrongPacketLengthError{Opcode: op, Length: len(data)}
		}
		msg, _, ok := cstring(data[HeaderSize:])
		if !ok {
			// some servers omit the terminator, keep what was sent
			msg = string(data[HeaderSize:])
		}
		return Error{Code: ErrorCode(binary.BigEndian.Uint16(body)), Message: msg}, nil
	}
	return nil, &UnsupportedOpcodeError{Opcode: op}
}

func cstring(b []byte) (string, []byte, bool) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", nil, false
	}
	return string(b[:i]), b[i+1:], true
}
