package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/messages"
)

// exchange is one transfer as seen by the fake server: the request port,
// a fresh data port and the client's transfer ID.
type exchange struct {
	req    *net.UDPConn
	data   *net.UDPConn
	client *net.UDPAddr
	first  messages.Packet
}

type script func(x *exchange) error

type fakeServer struct {
	port int
	g    *errgroup.Group
}

func listenLoopback() (*net.UDPConn, error) {
	return net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
}

func recvFrom(conn *net.UDPConn, timeout time.Duration) (messages.Packet, *net.UDPAddr, error) {
	addr, data, err := messages.Receive(conn, time.Now().Add(timeout))
	if err != nil {
		return nil, nil, err
	}
	p, err := messages.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return p, addr.(*net.UDPAddr), nil
}

// startServer answers exactly one request on a loopback port with run.
func startServer(t *testing.T, run script) *fakeServer {
	reqConn, err := listenLoopback()
	require.NoError(t, err)
	t.Cleanup(func() { reqConn.Close() })

	g := new(errgroup.Group)
	g.Go(func() error {
		first, from, err := recvFrom(reqConn, 5*time.Second)
		if err != nil {
			return fmt.Errorf("waiting for request: %w", err)
		}
		dataConn, err := listenLoopback()
		if err != nil {
			return err
		}
		defer dataConn.Close()
		return run(&exchange{req: reqConn, data: dataConn, client: from, first: first})
	})
	return &fakeServer{port: reqConn.LocalAddr().(*net.UDPAddr).Port, g: g}
}

func (s *fakeServer) wait(t *testing.T) {
	require.NoError(t, s.g.Wait())
}

func (x *exchange) send(p messages.Packet) error {
	return messages.Send(x.data, x.client, p)
}

func (x *exchange) recv() (messages.Packet, error) {
	p, from, err := recvFrom(x.data, 5*time.Second)
	if err != nil {
		return nil, err
	}
	if from.Port != x.client.Port {
		return nil, fmt.Errorf("packet from unexpected port %d", from.Port)
	}
	return p, nil
}

// expectSilence fails if the client sends anything within d.
func (x *exchange) expectSilence(d time.Duration) error {
	p, _, err := recvFrom(x.data, d)
	if os.IsTimeout(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("unexpected packet %#v", p)
}

func (x *exchange) recvAck() (uint16, error) {
	p, err := x.recv()
	if err != nil {
		return 0, err
	}
	ack, ok := p.(messages.Ack)
	if !ok {
		return 0, fmt.Errorf("expected ACK, got %#v", p)
	}
	return ack.Block, nil
}

func chunkOf(content []byte, block uint16) []byte {
	off := int(block-1) * messages.BlockSize
	end := min(off+messages.BlockSize, len(content))
	return content[off:end]
}

// serveFile answers a RRQ with content and records every ACK seen.
func serveFile(content []byte, acks *[]uint16) script {
	return func(x *exchange) error {
		if _, ok := x.first.(messages.ReadRequest); !ok {
			return fmt.Errorf("expected RRQ, got %#v", x.first)
		}
		for block := uint16(1); ; block++ {
			chunk := chunkOf(content, block)
			if err := x.send(messages.Data{Block: block, Payload: chunk}); err != nil {
				return err
			}
			for {
				got, err := x.recvAck()
				if err != nil {
					return err
				}
				*acks = append(*acks, got)
				if got == block {
					break
				}
			}
			if len(chunk) < messages.BlockSize {
				return nil
			}
		}
	}
}

// receiveFile answers a WRQ and stores the uploaded blocks.
func receiveFile(store *bytes.Buffer, sizes *[]int) script {
	return func(x *exchange) error {
		if _, ok := x.first.(messages.WriteRequest); !ok {
			return fmt.Errorf("expected WRQ, got %#v", x.first)
		}
		if err := x.send(messages.Ack{Block: 0}); err != nil {
			return err
		}
		expected := uint16(1)
		for {
			p, err := x.recv()
			if err != nil {
				return err
			}
			data, ok := p.(messages.Data)
			if !ok {
				return fmt.Errorf("expected DATA, got %#v", p)
			}
			if data.Block != expected {
				if err := x.send(messages.Ack{Block: expected - 1}); err != nil {
					return err
				}
				continue
			}
			store.Write(data.Payload)
			*sizes = append(*sizes, len(data.Payload))
			if err := x.send(messages.Ack{Block: expected}); err != nil {
				return err
			}
			if len(data.Payload) < messages.BlockSize {
				return nil
			}
			expected++
		}
	}
}

func testConfig(timeout time.Duration, retries int) *Config {
	cfg := DefaultConfig
	cfg.Timeout = timeout
	cfg.Retries = retries
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return &cfg
}

func content(size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(i*7 + i/512)
	}
	return b
}

var errNotRequest = errors.New("not a request")

func requestName(p messages.Packet) (string, error) {
	switch r := p.(type) {
	case messages.ReadRequest:
		return r.Filename, nil
	case messages.WriteRequest:
		return r.Filename, nil
	}
	return "", errNotRequest
}
