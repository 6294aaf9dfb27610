package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/core"
	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/markov"
	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/messages"
)

// Stats summarises a finished or aborted transfer.
type Stats struct {
	// Blocks counts DATA blocks accepted (download) or sent (upload),
	// retransmissions excluded.
	Blocks          int
	Bytes           int64
	Retransmissions int
	Duration        time.Duration
	ContentType     string
}

type transfer struct {
	*core.TransferSession
	cfg   *Config
	log   *slog.Logger
	local string
	stats Stats
}

// handler inspects one packet of the current exchange. It returns true
// once the awaited packet was consumed.
type handler func(p messages.Packet) (bool, error)

func newTransfer(host string, port int, remote string, local string, cfg *Config) (*transfer, error) {
	raddr, err := messages.ResolveServer(host, port)
	if err != nil {
		return nil, err
	}
	conn, err := markov.CreateClientSocket(cfg.MarkovP, cfg.MarkovQ)
	if err != nil {
		return nil, fmt.Errorf("create client socket: %w", err)
	}
	s := core.NewTransferSession(conn, raddr)
	return &transfer{
		TransferSession: s,
		cfg:             cfg,
		local:           local,
		log: cfg.logger().With(
			"session", s.ID.String(),
			"file", remote,
			"server", raddr.String(),
		),
	}, nil
}

func config(cfg *Config) (*Config, error) {
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SendRequest sends the RRQ (write false) or WRQ to the request port of
// the server. Nothing is awaited here.
func SendRequest(s *core.TransferSession, write bool, filename string, mode string) error {
	return messages.Send(s.Conn, s.RequestAddr, messages.NewRequest(write, filename, mode))
}

// send is fire and forget, a lost datagram surfaces as a receive timeout.
func (t *transfer) send(p messages.Packet, addr net.Addr) {
	err := messages.Send(t.Conn, addr, p)
	if err != nil {
		t.log.Warn("send failed", "opcode", p.Opcode().String(), "to", addr.String(), "error", err)
	}
}

// request sends the RRQ or WRQ and returns it for retransmission.
func (t *transfer) request(write bool, remote string) messages.Packet {
	err := SendRequest(t.TransferSession, write, remote, t.cfg.Mode)
	if err != nil {
		t.log.Warn("request failed", "error", err)
	}
	return messages.NewRequest(write, remote, t.cfg.Mode)
}

// await feeds every packet of the transfer to handle until it reports
// completion. out is the packet just sent; on timeout it is sent again, up
// to cfg.Retries times, each time with a fresh timeout window.
func (t *transfer) await(out messages.Packet, handle handler) error {
	attempts := 0
	deadline := time.Now().Add(t.cfg.Timeout)
	for {
		addr, data, err := messages.Receive(t.Conn, deadline)
		if err != nil {
			if !os.IsTimeout(err) {
				return fmt.Errorf("read from UDP: %w", err)
			}
			if attempts >= t.cfg.Retries {
				return ErrTimeout
			}
			attempts++
			t.stats.Retransmissions++
			t.log.Debug("timeout, retransmitting", "opcode", out.Opcode().String(), "attempt", attempts)
			t.send(out, t.Peer())
			deadline = time.Now().Add(t.cfg.Timeout)
			continue
		}

		if !t.Accept(addr) {
			t.log.Warn("datagram from unknown transfer ID", "from", addr.String())
			t.send(messages.NewError(messages.UnknownTransferID), addr)
			continue
		}

		p, err := messages.Parse(data)
		if err != nil {
			return t.abort(&ProtocolError{Reason: "malformed packet", Err: err})
		}
		if e, ok := p.(messages.Error); ok {
			t.log.Debug("server error", "code", uint16(e.Code), "message", e.Message)
			return &ServerError{Code: e.Code, Message: e.Message}
		}

		done, err := handle(p)
		if err != nil {
			var perr *ProtocolError
			if errors.As(err, &perr) {
				return t.abort(perr)
			}
			return err
		}
		if done {
			return nil
		}
	}
}

// abort tells the peer why the transfer ends before returning err.
func (t *transfer) abort(err *ProtocolError) error {
	t.send(messages.Error{Code: messages.IllegalOperation, Message: err.Reason}, t.Peer())
	return err
}

func unexpected(p messages.Packet, awaited string) error {
	return &ProtocolError{Reason: fmt.Sprintf("unexpected %s while awaiting %s", p.Opcode(), awaited)}
}

// complete refuses to report success for a transfer that never reached
// its final block.
func (t *transfer) complete(err error) error {
	if err == nil && !t.Done {
		return &ProtocolError{Reason: fmt.Sprintf("transfer ended after block %d without the final block", t.Block)}
	}
	return err
}

func (t *transfer) finish(start time.Time, err error) {
	t.stats.Duration = time.Since(start)
	if err != nil {
		t.log.Error("transfer failed", "blocks", t.stats.Blocks, "error", err)
		return
	}
	if mtype, derr := mimetype.DetectFile(t.local); derr == nil {
		t.stats.ContentType = mtype.String()
	}
	t.log.Info("transfer complete",
		"blocks", t.stats.Blocks,
		"bytes", t.stats.Bytes,
		"retransmissions", t.stats.Retransmissions,
		"content_type", t.stats.ContentType,
		"duration", t.stats.Duration,
	)
}
