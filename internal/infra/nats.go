package infra

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// NewNATSConn connects to NATS when a URL is configured. A nil connection
// (no error) means event publishing falls back to in-process handling.
func NewNATSConn(cfg *Config) (*nats.Conn, error) {
	if cfg == nil || cfg.NATSURL == "" {
		return nil, nil
	}
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("wellspring"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}
