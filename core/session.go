package core

import (
	"net"

	"github.com/google/uuid"
)

// TransferSession is the state of exactly one file transfer. It owns the
// socket from the moment the request is sent until Close.
type TransferSession struct {
	ID   uuid.UUID
	Conn net.PacketConn

	// RequestAddr is the well-known request port of the server. DataAddr is
	// the transfer ID the server answers from and stays nil until the first
	// response has been accepted.
	RequestAddr *net.UDPAddr
	DataAddr    *net.UDPAddr

	// Block is the last accepted (download) or acknowledged (upload) block.
	Block uint16
	Done  bool

	closed bool
}

func NewTransferSession(conn net.PacketConn, requestAddr *net.UDPAddr) *TransferSession {
	return &TransferSession{
		ID:          uuid.New(),
		Conn:        conn,
		RequestAddr: requestAddr,
	}
}

// Accept reports whether a datagram from addr belongs to this transfer.
// The first datagram from the request host fixes DataAddr; afterwards only
// that exact host and port are accepted.
func (s *TransferSession) Accept(addr net.Addr) bool {
	udp, ok := addr.(*net.UDPAddr)
	if !ok {
		return false
	}
	if s.DataAddr != nil {
		return udp.Port == s.DataAddr.Port && udp.IP.Equal(s.DataAddr.IP)
	}
	if !udp.IP.Equal(s.RequestAddr.IP) {
		return false
	}
	learned := *udp
	s.DataAddr = &learned
	return true
}

// Peer is where the next packet of the transfer goes.
func (s *TransferSession) Peer() *net.UDPAddr {
	if s.DataAddr != nil {
		return s.DataAddr
	}
	return s.RequestAddr
}

func (s *TransferSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.Conn.Close()
}
