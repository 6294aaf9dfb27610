package client

import (
	"errors"
	"log/slog"
	"time"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/messages"
)

type Config struct {
	// Timeout bounds every blocking receive.
	Timeout time.Duration
	// Retries is how often the last packet is sent again after a timeout
	// before the transfer gives up. Zero disables retransmission.
	Retries int
	Mode    string

	// Loss probabilities of the markov chain applied to outgoing packets.
	MarkovP float64
	MarkovQ float64

	Logger *slog.Logger
}

var DefaultConfig = Config{
	Timeout: 5 * time.Second,
	Retries: 5,
	Mode:    messages.ModeOctet,
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Retries < 0 {
		return errors.New("retries cannot be negative")
	}
	if c.Mode != messages.ModeOctet {
		return errors.New("only octet mode is supported")
	}
	if c.MarkovP > 1 || c.MarkovP < 0 || c.MarkovQ > 1 || c.MarkovQ < 0 {
		return errors.New("p and/or q values for the markov chain are invalid")
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
