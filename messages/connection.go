package messages

import (
	"fmt"
	"net"
	"strconv"
)

// ResolveServer resolves the well-known request address of a server.
func ResolveServer(host string, port int) (*net.UDPAddr, error) {
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("error resolving addr: %w", err)
	}
	return raddr, nil
}

// CreateClientSocket binds an ephemeral local port. The socket is not
// connected since the server answers from a new port per transfer.
func CreateClientSocket() (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("error creating ListenUDP: %w", err)
	}
	return conn, nil
}
