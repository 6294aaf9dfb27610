package markov_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/markov"
)

func listen(t *testing.T) *net.UDPConn {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestCreateClientSocket(t *testing.T) {
	conn, err := markov.CreateClientSocket(0.5, 0.6)
	if err != nil {
		t.Fatalf("Could not create client socket: %v", err)
	}
	_, ok := conn.(*markov.MarkovConn)
	assert.True(t, ok, "lossy socket expected")
	err = conn.Close()
	if err != nil {
		t.Fatalf("Could not close client socket: %v", err)
	}
}

func TestCreateClientSocketNoLoss(t *testing.T) {
	conn, err := markov.CreateClientSocket(0, 0)
	require.NoError(t, err)
	defer conn.Close()
	_, ok := conn.(*net.UDPConn)
	assert.True(t, ok, "plain socket expected without loss")
}

func TestInvalidProbabilities(t *testing.T) {
	_, err := markov.CreateClientSocket(1.5, 0)
	assert.Error(t, err)
	_, err = markov.CreateClientSocket(0, -0.1)
	assert.Error(t, err)
}

func TestDropAll(t *testing.T) {
	server := listen(t)
	client := listen(t)
	mc := &markov.MarkovConn{UDPConn: client, P: 1, Q: 1}

	n, err := mc.WriteTo([]byte("lost"), server.LocalAddr())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 1, mc.Dropped())

	require.NoError(t, server.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = server.ReadFrom(make([]byte, 16))
	assert.Error(t, err)
}

func TestDeliverWhenNoLoss(t *testing.T) {
	server := listen(t)
	client := listen(t)
	mc := &markov.MarkovConn{UDPConn: client, P: 0, Q: 0}

	_, err := mc.WriteTo([]byte("kept"), server.LocalAddr())
	require.NoError(t, err)

	buf := make([]byte, 16)
	require.NoError(t, server.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, _, err := server.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(buf[:n]))
	assert.Zero(t, mc.Dropped())
}

func TestSeededDropsAreReproducible(t *testing.T) {
	client := listen(t)
	server := listen(t)
	pattern := func() []bool {
		mc := &markov.MarkovConn{UDPConn: client, P: 0.3, Q: 0.7}
		mc.Seed(42)
		var out []bool
		for i := 0; i < 32; i++ {
			before := mc.Dropped()
			_, err := mc.WriteTo([]byte{byte(i)}, server.LocalAddr())
			require.NoError(t, err)
			out = append(out, mc.Dropped() > before)
		}
		return out
	}
	assert.Equal(t, pattern(), pattern())
}
