package markov

import (
	"fmt"
	"net"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/messages"
)

// Wrap returns conn unchanged when no loss is configured.
func Wrap(conn *net.UDPConn, p float64, q float64) net.PacketConn {
	if p == 0 && q == 0 {
		return conn
	}
	return &MarkovConn{
		UDPConn: conn,
		P:       p,
		Q:       q,
	}
}

// CreateClientSocket opens an ephemeral client socket that loses outgoing
// datagrams according to p and q.
func CreateClientSocket(p float64, q float64) (net.PacketConn, error) {
	if p > 1 || p < 0 || q > 1 || q < 0 {
		return nil, fmt.Errorf("p and/or q values for the markov chain are invalid")
	}
	conn, err := messages.CreateClientSocket()
	if err != nil {
		return nil, err
	}
	return Wrap(conn, p, q), nil
}
