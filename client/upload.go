package client

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/messages"
)

// Upload sends local to the server at host:port under the name remote.
// A missing or unreadable local file fails before anything is sent.
func Upload(host string, port int, local string, remote string, cfg *Config) (*Stats, error) {
	cfg, err := config(cfg)
	if err != nil {
		return nil, err
	}

	localFile, err := os.Open(local)
	if err != nil {
		return nil, &LocalFileError{Op: "open", Path: local, Err: err}
	}
	defer localFile.Close()
	info, err := localFile.Stat()
	if err != nil {
		return nil, &LocalFileError{Op: "stat", Path: local, Err: err}
	}
	if info.IsDir() {
		return nil, &LocalFileError{Op: "open", Path: local, Err: errors.New("is a directory")}
	}

	t, err := newTransfer(host, port, remote, local, cfg)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	start := time.Now()
	t.log.Debug("sending file", "local", local, "size", info.Size())
	err = t.complete(t.upload(remote, localFile))
	t.finish(start, err)
	return &t.stats, err
}

func (t *transfer) upload(remote string, r io.Reader) error {
	// ACK 0 answers the WRQ
	block := uint16(0)
	final := false
	chunk := make([]byte, messages.BlockSize)
	out := t.request(true, remote)

	for {
		err := t.await(out, func(p messages.Packet) (bool, error) {
			ack, ok := p.(messages.Ack)
			if !ok {
				return false, unexpected(p, fmt.Sprintf("ACK %d", block))
			}
			if ack.Block != block {
				t.log.Debug("stale ACK ignored", "got", ack.Block, "expected", block)
				return false, nil
			}
			return true, nil
		})
		if err != nil {
			return err
		}
		t.Block = block
		if final {
			t.Done = true
			return nil
		}

		// chunk is only refilled after the previous DATA was acknowledged
		n, err := io.ReadFull(r, chunk)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			t.send(messages.Error{Code: messages.NotDefined, Message: "read error"}, t.Peer())
			return &LocalFileError{Op: "read", Path: t.local, Err: err}
		}
		block++
		out = messages.Data{Block: block, Payload: chunk[:n]}
		final = n < messages.BlockSize
		t.send(out, t.Peer())
		t.stats.Blocks++
		t.stats.Bytes += int64(n)
	}
}
