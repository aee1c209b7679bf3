// Package osc receives skeleton joint data over OSC and feeds it into a
// skeleton store.
//
// Two addresses are served under a configurable prefix:
//
//	<prefix>/positions  3N floats: x, y, z per joint
//	<prefix>/rotations  4N floats: x, y, z, w per joint
package osc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/hypebeast/go-osc/osc"
	"go.uber.org/zap"

	"github.com/Faultbox/incubatio/internal/skeleton"
	"github.com/Faultbox/incubatio/pkg/math"
)

const (
	positionsSuffix = "/positions"
	rotationsSuffix = "/rotations"
)

// ErrBadArguments is returned when a message does not carry a whole number
// of float joints.
var ErrBadArguments = errors.New("bad OSC arguments")

// Receiver serves OSC messages into a store.
type Receiver struct {
	addr   string
	prefix string
	store  *skeleton.Store
	log    *zap.Logger

	dispatcher *osc.StandardDispatcher
}

// NewReceiver registers the joint handlers. addr is a UDP host:port.
func NewReceiver(addr, prefix string, store *skeleton.Store, log *zap.Logger) (*Receiver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Receiver{
		addr:       addr,
		prefix:     normalizePrefix(prefix),
		store:      store,
		log:        log,
		dispatcher: osc.NewStandardDispatcher(),
	}

	if err := r.dispatcher.AddMsgHandler(r.PositionsAddress(), r.handlePositions); err != nil {
		return nil, fmt.Errorf("registering %s: %w", r.PositionsAddress(), err)
	}
	if err := r.dispatcher.AddMsgHandler(r.RotationsAddress(), r.handleRotations); err != nil {
		return nil, fmt.Errorf("registering %s: %w", r.RotationsAddress(), err)
	}
	return r, nil
}

// PositionsAddress returns the OSC address for joint positions.
func (r *Receiver) PositionsAddress() string {
	return r.prefix + positionsSuffix
}

// RotationsAddress returns the OSC address for joint rotations.
func (r *Receiver) RotationsAddress() string {
	return r.prefix + rotationsSuffix
}

// Run listens on the receiver's address until ctx is cancelled.
func (r *Receiver) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", r.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", r.addr, err)
	}
	return r.Serve(ctx, conn)
}

// maxPacketSize is the largest UDP payload.
const maxPacketSize = 65535

// Serve reads packets from conn until ctx is cancelled. conn is closed on
// return. Packets that do not parse are logged and dropped. Packets are
// dispatched in arrival order on the calling goroutine.
func (r *Receiver) Serve(ctx context.Context, conn net.PacketConn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	r.log.Info("receiving OSC",
		zap.String("addr", conn.LocalAddr().String()),
		zap.String("positions", r.PositionsAddress()),
		zap.String("rotations", r.RotationsAddress()))

	buf := make([]byte, maxPacketSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading OSC packet: %w", err)
		}

		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			r.log.Warn("dropping malformed packet",
				zap.Stringer("from", from),
				zap.Int("bytes", n),
				zap.Error(err))
			continue
		}
		r.dispatcher.Dispatch(packet)
	}
}

func (r *Receiver) handlePositions(msg *osc.Message) {
	positions, err := DecodePositions(msg)
	if err != nil {
		r.log.Warn("dropping positions message", zap.Error(err))
		return
	}
	r.store.SetPositions(positions)
}

func (r *Receiver) handleRotations(msg *osc.Message) {
	rotations, err := DecodeRotations(msg)
	if err != nil {
		r.log.Warn("dropping rotations message", zap.Error(err))
		return
	}
	r.store.SetRotations(rotations)
}

// DecodePositions reads 3N float arguments as N joint positions.
func DecodePositions(msg *osc.Message) ([]math.Vec3, error) {
	vals, err := floatArgs(msg, 3)
	if err != nil {
		return nil, err
	}
	out := make([]math.Vec3, len(vals)/3)
	for i := range out {
		out[i] = math.Vec3{X: vals[3*i], Y: vals[3*i+1], Z: vals[3*i+2]}
	}
	return out, nil
}

// DecodeRotations reads 4N float arguments as N (x, y, z, w) quaternions.
func DecodeRotations(msg *osc.Message) ([]math.Vec4, error) {
	vals, err := floatArgs(msg, 4)
	if err != nil {
		return nil, err
	}
	out := make([]math.Vec4, len(vals)/4)
	for i := range out {
		copy(out[i][:], vals[4*i:4*i+4])
	}
	return out, nil
}

func floatArgs(msg *osc.Message, stride int) ([]float32, error) {
	if len(msg.Arguments)%stride != 0 {
		return nil, fmt.Errorf("%w: %s has %d arguments, want a multiple of %d",
			ErrBadArguments, msg.Address, len(msg.Arguments), stride)
	}
	vals := make([]float32, len(msg.Arguments))
	for i, arg := range msg.Arguments {
		switch v := arg.(type) {
		case float32:
			vals[i] = v
		case float64:
			vals[i] = float32(v)
		case int32:
			vals[i] = float32(v)
		case int64:
			vals[i] = float32(v)
		default:
			return nil, fmt.Errorf("%w: %s argument %d is %T", ErrBadArguments, msg.Address, i, arg)
		}
	}
	return vals, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
