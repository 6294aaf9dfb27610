package markov

import (
	"math/rand"
	"net"
	"time"
)

// MarkovConn drops outgoing datagrams following a two state Markov chain
// (Gilbert-Elliott). P is the loss probability after a delivered packet,
// Q the loss probability after a dropped one.
type MarkovConn struct {
	UDPConn *net.UDPConn
	P       float64
	Q       float64

	lastDropped bool
	rand        *rand.Rand
	dropped     int
}

func (mc *MarkovConn) drop() bool {
	threshold := mc.P
	if mc.lastDropped {
		threshold = mc.Q
	}
	mc.lastDropped = mc.roll() < threshold
	if mc.lastDropped {
		mc.dropped++
	}
	return mc.lastDropped
}

func (mc *MarkovConn) roll() float64 {
	if mc.rand == nil {
		return rand.Float64()
	}
	return mc.rand.Float64()
}

// Seed makes the drop decisions reproducible.
func (mc *MarkovConn) Seed(seed int64) {
	mc.rand = rand.New(rand.NewSource(seed))
}

// Dropped returns the number of datagrams swallowed so far.
func (mc *MarkovConn) Dropped() int {
	return mc.dropped
}

// Implement the interface for net.PacketConn
func (mc *MarkovConn) ReadFrom(p []byte) (n int, addr net.Addr, err error) {
	return mc.UDPConn.ReadFrom(p)
}

func (mc *MarkovConn) WriteTo(p []byte, addr net.Addr) (n int, err error) {
	if mc.drop() {
		return len(p), nil
	}
	return mc.UDPConn.WriteTo(p, addr)
}

func (mc *MarkovConn) Close() error {
	return mc.UDPConn.Close()
}

func (mc *MarkovConn) LocalAddr() net.Addr {
	return mc.UDPConn.LocalAddr()
}

func (mc *MarkovConn) SetDeadline(t time.Time) error {
	return mc.UDPConn.SetDeadline(t)
}

func (mc *MarkovConn) SetReadDeadline(t time.Time) error {
	return mc.UDPConn.SetReadDeadline(t)
}

func (mc *MarkovConn) SetWriteDeadline(t time.Time) error {
	return mc.UDPConn.SetWriteDeadline(t)
}
