package messages

import (
	"encoding/binary"
)

// opcodes
type Opcode uint16

const (
	OpRRQ   Opcode = 1
	OpWRQ   Opcode = 2
	OpDATA  Opcode = 3
	OpACK   Opcode = 4
	OpERROR Opcode = 5
)

func (o Opcode) String() string {
	switch o {
	case OpRRQ:
		return "RRQ"
	case OpWRQ:
		return "WRQ"
	case OpDATA:
		return "DATA"
	case OpACK:
		return "ACK"
	case OpERROR:
		return "ERROR"
	}
	return "UNKNOWN"
}

const (
	BlockSize     = 512
	HeaderSize    = 4
	MaxPacketSize = HeaderSize + BlockSize
	DefaultPort   = 69
	ModeOctet     = "octet"
)

// error codes
type ErrorCode uint16

const (
	NotDefined        ErrorCode = 0
	FileNotFound      ErrorCode = 1
	AccessViolation   ErrorCode = 2
	DiskFull          ErrorCode = 3
	IllegalOperation  ErrorCode = 4
	UnknownTransferID ErrorCode = 5
	FileExists        ErrorCode = 6
	NoSuchUser        ErrorCode = 7
)

var errorText = map[ErrorCode]string{
	NotDefined:        "Not defined, see error message",
	FileNotFound:      "File not found",
	AccessViolation:   "Access violation",
	DiskFull:          "Disk full or allocation exceeded",
	IllegalOperation:  "Illegal TFTP operation",
	UnknownTransferID: "Unknown transfer ID",
	FileExists:        "File already exists",
	NoSuchUser:        "No such user",
}

func (c ErrorCode) String() string {
	if text, ok := errorText[c]; ok {
		return text
	}
	return "Unknown error"
}

type Packet interface {
	Opcode() Opcode
	Marshal() []byte
}

// RRQ/WRQ
//
//	2 bytes     string    1 byte    string    1 byte
//	-------------------------------------------------
//	| Opcode |  Filename  |   0  |    Mode    |   0  |
//	-------------------------------------------------
type ReadRequest struct {
	Filename string
	Mode     string
}

type WriteRequest struct {
	Filename string
	Mode     string
}

// DATA
//
//	2 bytes    2 bytes     n bytes
//	---------------------------------
//	| Opcode |   Block #  |   Data   |
//	---------------------------------
type Data struct {
	Block   uint16
	Payload []byte
}

// ACK
//
//	2 bytes    2 bytes
//	-------------------
//	| Opcode | Block # |
//	-------------------
type Ack struct {
	Block uint16
}

// ERROR
//
//	2 bytes     2 bytes      string    1 byte
//	-----------------------------------------
//	| Opcode |  ErrorCode |   ErrMsg   |  0  |
//	-----------------------------------------
type Error struct {
	Code    ErrorCode
	Message string
}

func (ReadRequest) Opcode() Opcode  { return OpRRQ }
func (WriteRequest) Opcode() Opcode { return OpWRQ }
func (Data) Opcode() Opcode         { return OpDATA }
func (Ack) Opcode() Opcode          { return OpACK }
func (Error) Opcode() Opcode        { return OpERROR }

// NewRequest returns a RRQ if write is false and a WRQ otherwise.
func NewRequest(write bool, filename string, mode string) Packet {
	if write {
		return WriteRequest{Filename: filename, Mode: mode}
	}
	return ReadRequest{Filename: filename, Mode: mode}
}

// NewError builds an ERROR packet carrying the table text for code.
func NewError(code ErrorCode) Error {
	return Error{Code: code, Message: code.String()}
}

func (e Error) Text() string {
	if e.Code == NotDefined && e.Message != "" {
		return e.Message
	}
	return e.Code.String()
}

func header(op Opcode, field uint16, size int) []byte {
	b := make([]byte, HeaderSize, HeaderSize+size)
	binary.BigEndian.PutUint16(b, uint16(op))
	binary.BigEndian.PutUint16(b[2:], field)
	return b
}

func marshalRequest(op Opcode, filename string, mode string) []byte {
	b := make([]byte, 2, 2+len(filename)+1+len(mode)+1)
	binary.BigEndian.PutUint16(b, uint16(op))
	b = append(b, filename...)
	b = append(b, 0)
	b = append(b, mode...)
	return append(b, 0)
}
