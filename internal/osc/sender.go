package osc

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hypebeast/go-osc/osc"

	"github.com/Faultbox/incubatio/internal/skeleton"
)

// Sender publishes snapshots in the format Receiver understands.
type Sender struct {
	client *osc.Client
	prefix string
}

// NewSender creates a sender targeting addr (host:port).
func NewSender(addr, prefix string) (*Sender, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("parsing address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parsing port %q: %w", portStr, err)
	}
	return &Sender{
		client: osc.NewClient(host, port),
		prefix: normalizePrefix(prefix),
	}, nil
}

// Send publishes positions, then rotations, as two messages.
func (s *Sender) Send(snap skeleton.Snapshot) error {
	for _, msg := range EncodeSnapshot(s.prefix, snap) {
		if err := s.client.Send(msg); err != nil {
			return fmt.Errorf("sending %s: %w", msg.Address, err)
		}
	}
	return nil
}

// EncodeSnapshot builds the positions and rotations messages for snap.
func EncodeSnapshot(prefix string, snap skeleton.Snapshot) []*osc.Message {
	prefix = normalizePrefix(prefix)

	pos := osc.NewMessage(prefix + positionsSuffix)
	for _, p := range snap.Positions {
		pos.Append(p.X)
		pos.Append(p.Y)
		pos.Append(p.Z)
	}

	rot := osc.NewMessage(prefix + rotationsSuffix)
	for _, r := range snap.Rotations {
		for _, c := range r {
			rot.Append(c)
		}
	}
	return []*osc.Message{pos, rot}
}
