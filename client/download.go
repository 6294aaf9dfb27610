package client

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/messages"
)

// Download fetches remote from the server at host:port into local. The
// local file is removed again if the transfer does not complete.
func Download(host string, port int, remote string, local string, cfg *Config) (*Stats, error) {
	cfg, err := config(cfg)
	if err != nil {
		return nil, err
	}

	localFile, err := os.Create(local)
	if err != nil {
		return nil, &LocalFileError{Op: "create", Path: local, Err: err}
	}

	t, err := newTransfer(host, port, remote, local, cfg)
	if err != nil {
		localFile.Close()
		os.Remove(local)
		return nil, err
	}
	defer t.Close()

	start := time.Now()
	t.log.Debug("requesting file", "local", local)
	err = t.complete(t.download(remote, localFile))
	if cerr := localFile.Close(); err == nil && cerr != nil {
		err = &LocalFileError{Op: "close", Path: local, Err: cerr}
	}
	if err != nil {
		if rerr := os.Remove(local); rerr != nil {
			t.log.Warn("could not remove partial file", "local", local, "error", rerr)
		}
	}
	t.finish(start, err)
	return &t.stats, err
}

func (t *transfer) download(remote string, w io.Writer) error {
	expected := uint16(1)
	out := t.request(false, remote)

	for {
		var block messages.Data
		err := t.await(out, func(p messages.Packet) (bool, error) {
			data, ok := p.(messages.Data)
			if !ok {
				return false, unexpected(p, fmt.Sprintf("DATA %d", expected))
			}
			if data.Block != expected {
				// never write twice, only confirm what we already have
				t.log.Debug("out of order block", "got", data.Block, "expected", expected)
				t.send(messages.Ack{Block: expected - 1}, t.Peer())
				return false, nil
			}
			block = data
			return true, nil
		})
		if err != nil {
			return err
		}

		if _, err := w.Write(block.Payload); err != nil {
			t.send(writeFailure(err), t.Peer())
			return &LocalFileError{Op: "write", Path: t.local, Err: err}
		}
		t.Block = expected
		t.stats.Blocks++
		t.stats.Bytes += int64(len(block.Payload))

		out = messages.Ack{Block: expected}
		expected++
		t.send(out, t.Peer())
		if len(block.Payload) < messages.BlockSize {
			t.Done = true
			return nil
		}
	}
}

// writeFailure is the ERROR sent to the server when the local file cannot
// take a block. Only a full disk maps to code 3.
func writeFailure(err error) messages.Error {
	if errors.Is(err, syscall.ENOSPC) {
		return messages.NewError(messages.DiskFull)
	}
	return messages.Error{Code: messages.NotDefined, Message: err.Error()}
}
