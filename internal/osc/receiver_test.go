package osc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/incubatio/internal/skeleton"
	"github.com/Faultbox/incubatio/pkg/math"
)

func TestAddresses(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"/mocap", "/mocap/positions"},
		{"/mocap/", "/mocap/positions"},
		{"xsens", "/xsens/positions"},
		{"", "/positions"},
	}

	for _, tt := range tests {
		r, err := NewReceiver("127.0.0.1:0", tt.prefix, skeleton.NewStore(), nil)
		require.NoError(t, err, tt.prefix)
		assert.Equal(t, tt.want, r.PositionsAddress(), tt.prefix)
	}
}

func TestDecodePositions(t *testing.T) {
	msg := osc.NewMessage("/mocap/positions", float32(1), float32(2), float32(3), float32(4), float64(5), int32(6))

	got, err := DecodePositions(msg)
	require.NoError(t, err)
	assert.Equal(t, []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, got)
}

func TestDecodeRotations(t *testing.T) {
	msg := osc.NewMessage("/mocap/rotations", float32(0), float32(0), float32(0), float32(1))

	got, err := DecodeRotations(msg)
	require.NoError(t, err)
	assert.Equal(t, []math.Vec4{{0, 0, 0, 1}}, got)
}

func TestDecodeBadArguments(t *testing.T) {
	tests := []struct {
		name string
		msg  *osc.Message
		dec  func(*osc.Message) error
	}{
		{
			name: "positions not multiple of 3",
			msg:  osc.NewMessage("/p", float32(1), float32(2)),
			dec:  func(m *osc.Message) error { _, err := DecodePositions(m); return err },
		},
		{
			name: "rotations not multiple of 4",
			msg:  osc.NewMessage("/r", float32(1), float32(2), float32(3)),
			dec:  func(m *osc.Message) error { _, err := DecodeRotations(m); return err },
		},
		{
			name: "string argument",
			msg:  osc.NewMessage("/p", float32(1), "two", float32(3)),
			dec:  func(m *osc.Message) error { _, err := DecodePositions(m); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dec(tt.msg)
			assert.True(t, errors.Is(err, ErrBadArguments), "got %v", err)
		})
	}
}

func TestDispatchUpdatesStore(t *testing.T) {
	store := skeleton.NewStore()
	r, err := NewReceiver("127.0.0.1:0", "/mocap", store, nil)
	require.NoError(t, err)

	snap := skeleton.Snapshot{
		Positions: []math.Vec3{{X: 1}, {Y: 2}},
		Rotations: []math.Vec4{{0, 0, 0, 1}, {0, 1, 0, 0}},
	}
	for _, msg := range EncodeSnapshot("/mocap", snap) {
		r.dispatcher.Dispatch(msg)
	}

	got := store.Snapshot()
	assert.Equal(t, uint64(2), got.Frame)
	assert.Equal(t, snap.Positions, got.Positions)
	assert.Equal(t, snap.Rotations, got.Rotations)
}

func TestDispatchDropsMalformed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := skeleton.NewStore()
	r, err := NewReceiver("127.0.0.1:0", "/mocap", store, zap.New(core))
	require.NoError(t, err)

	r.dispatcher.Dispatch(osc.NewMessage("/mocap/rotations", float32(1)))

	assert.Equal(t, uint64(0), store.Frame())
	assert.Equal(t, 1, logs.FilterMessage("dropping rotations message").Len())
}

func TestServeOverUDP(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	store := skeleton.NewStore()
	r, err := NewReceiver(conn.LocalAddr().String(), "/mocap", store, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- r.Serve(ctx, conn) }()

	sender, err := NewSender(conn.LocalAddr().String(), "/mocap")
	require.NoError(t, err)

	snap := skeleton.Snapshot{
		Positions: []math.Vec3{{X: 0.5, Y: 1, Z: 1.5}},
		Rotations: []math.Vec4{{0, 0, 0.7071068, 0.7071068}},
	}
	require.NoError(t, sender.Send(snap))

	require.Eventually(t, func() bool {
		got := store.Snapshot()
		return got.JointCount() == 1 && got.Frame >= 2
	}, 2*time.Second, 10*time.Millisecond)

	got := store.Snapshot()
	assert.Equal(t, snap.Positions, got.Positions)
	assert.Equal(t, snap.Rotations, got.Rotations)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeSurvivesMalformedPacket(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	store := skeleton.NewStore()
	r, err := NewReceiver(conn.LocalAddr().String(), "/mocap", store, zap.New(core))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- r.Serve(ctx, conn) }()

	raw, err := net.Dial("udp", conn.LocalAddr().String())
	require.NoError(t, err)
	defer raw.Close()

	// Float type tag with no payload.
	_, err = raw.Write([]byte("/mocap/positions\x00\x00\x00\x00,f\x00"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("dropping malformed packet").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case err := <-served:
		t.Fatalf("Serve returned after a malformed packet: %v", err)
	default:
	}

	sender, err := NewSender(conn.LocalAddr().String(), "/mocap")
	require.NoError(t, err)
	snap := skeleton.Snapshot{
		Positions: []math.Vec3{{X: 1, Y: 2, Z: 3}},
		Rotations: []math.Vec4{{0, 0, 0, 1}},
	}
	require.NoError(t, sender.Send(snap))

	require.Eventually(t, func() bool {
		got := store.Snapshot()
		return got.JointCount() == 1 && got.Frame >= 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, snap.Positions, store.Snapshot().Positions)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestNewSenderBadAddress(t *testing.T) {
	_, err := NewSender("no-port", "/mocap")
	assert.Error(t, err)

	_, err = NewSender("localhost:abc", "/mocap")
	assert.Error(t, err)
}
