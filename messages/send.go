package messages

import (
	"fmt"
	"net"
)

func (m ReadRequest) Marshal() []byte {
	return marshalRequest(OpRRQ, m.Filename, m.Mode)
}

func (m WriteRequest) Marshal() []byte {
	return marshalRequest(OpWRQ, m.Filename, m.Mode)
}

func (m Data) Marshal() []byte {
	b := header(OpDATA, m.Block, len(m.Payload))
	return append(b, m.Payload...)
}

func (m Ack) Marshal() []byte {
	return header(OpACK, m.Block, 0)
}

func (m Error) Marshal() []byte {
	b := header(OpERROR, uint16(m.Code), len(m.Message)+1)
	b = append(b, m.Message...)
	return append(b, 0)
}

// Send writes p as a single datagram to addr. A refused datagram is not
// reported by UDP here; it shows up later as a receive timeout.
func Send(conn net.PacketConn, addr net.Addr, p Packet) error {
	_, err := conn.WriteTo(p.Marshal(), addr)
	if err != nil {
		return fmt.Errorf("sending %s: %w", p.Opcode(), err)
	}
	return nil
}
