package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/incubatio/internal/config"
	"github.com/Faultbox/incubatio/internal/frame"
	"github.com/Faultbox/incubatio/internal/logger"
	"github.com/Faultbox/incubatio/internal/osc"
	"github.com/Faultbox/incubatio/internal/skeleton"
	"github.com/Faultbox/incubatio/pkg/texpack"
)

func newSink(cfg *config.Config) (*frame.Sink, error) {
	opts := frame.SinkOptions{
		PreviewRange: cfg.Output.PreviewRange,
		PreviewScale: cfg.Output.PreviewScale,
	}
	if cfg.Output.Preview != "" {
		f, err := texpack.ParseFormat(cfg.Output.Preview)
		if err != nil {
			return nil, err
		}
		opts.Preview = f
	}
	return frame.NewSink(cfg.Output.Dir, cfg.Output.Name, opts, logger.Named("sink"))
}

func cmdPack(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}
	if len(config.Args()) < 1 {
		return fmt.Errorf("usage: texpack pack [options] <frame.yaml>")
	}

	snap, err := frame.LoadFile(config.Args()[0])
	if err != nil {
		return err
	}

	buf, err := newBuilder(cfg).Build(snap)
	if err != nil {
		return err
	}
	if buf == nil {
		logger.Warn("frame file has no joints, nothing written")
		return nil
	}

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}
	if err := sink.Write(buf); err != nil {
		return err
	}

	fmt.Printf("Packed %d joints (%dx%d texels, %d floats) -> %s\n",
		buf.Height, buf.Width, buf.Height, buf.Len(), sink.RawPath())
	if p := sink.PreviewPath(); p != "" {
		fmt.Printf("Preview: %s\n", p)
	}
	return nil
}

func cmdInspect(args []string) error {
	if _, err := setup(args); err != nil {
		return err
	}
	if len(config.Args()) < 1 {
		return fmt.Errorf("usage: texpack inspect <file.f32>")
	}

	data, err := os.ReadFile(config.Args()[0])
	if err != nil {
		return err
	}
	buf, err := texpack.Decode(data)
	if err != nil {
		return err
	}
	if buf == nil {
		fmt.Println("Empty payload")
		return nil
	}

	fmt.Printf("Texture: %dx%d RGBA32F, %d matrices\n", buf.Width, buf.Height, buf.Height)
	for i := 0; i < buf.Height; i++ {
		fmt.Printf("\n[%d]\n", i)
		for x := 0; x < buf.Width; x++ {
			texel, err := buf.Texel(x, i)
			if err != nil {
				return err
			}
			fmt.Printf("  %10.4f %10.4f %10.4f %10.4f\n", texel[0], texel[1], texel[2], texel[3])
		}
	}
	return nil
}

func cmdColumn(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}
	rest := config.Args()
	if len(rest) < 3 {
		return fmt.Errorf("usage: texpack column <frame.yaml> <joint> <index>")
	}

	joint, err := strconv.Atoi(rest[1])
	if err != nil {
		return fmt.Errorf("invalid joint %q: %w", rest[1], err)
	}
	index, err := strconv.Atoi(rest[2])
	if err != nil {
		return fmt.Errorf("invalid column %q: %w", rest[2], err)
	}

	snap, err := frame.LoadFile(rest[0])
	if err != nil {
		return err
	}
	ms, err := newBuilder(cfg).Matrices(snap)
	if err != nil {
		return err
	}
	if joint < 0 || joint >= len(ms) {
		return fmt.Errorf("joint %d out of range, frame has %d joints", joint, len(ms))
	}

	col, err := ms[joint].Column(index)
	if err != nil {
		logger.Warn("column out of bounds", zap.Int("index", index))
		return err
	}
	fmt.Printf("%g %g %g %g\n", col[0], col[1], col[2], col[3])
	return nil
}

func cmdListen(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := skeleton.NewStore()
	receiver, err := osc.NewReceiver(cfg.OSC.Listen, cfg.OSC.Prefix, store, logger.Named("osc"))
	if err != nil {
		return err
	}
	sink, err := newSink(cfg)
	if err != nil {
		return err
	}
	loop := &frame.Loop{
		Store:    store,
		Builder:  newBuilder(cfg),
		Writer:   sink,
		Interval: cfg.Output.Interval,
		Log:      logger.Named("loop"),
	}

	logger.Info("writing frames",
		zap.String("path", sink.RawPath()),
		zap.Duration("interval", cfg.Output.Interval))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return receiver.Run(ctx) })
	g.Go(func() error { return loop.Run(ctx) })
	return g.Wait()
}

func cmdRecord(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}
	if len(config.Args()) < 1 {
		return fmt.Errorf("usage: texpack record [options] <out.yaml>")
	}
	out := config.Args()[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := skeleton.NewStore()
	receiver, err := osc.NewReceiver(cfg.OSC.Listen, cfg.OSC.Prefix, store, logger.Named("osc"))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	g.Go(func() error { return receiver.Run(ctx) })

	var snap skeleton.Snapshot
	g.Go(func() error {
		defer cancel()
		ticker := time.NewTicker(cfg.Output.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			s := store.Snapshot()
			if s.JointCount() > 0 {
				snap = s
				return nil
			}
		}
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if snap.JointCount() <= 0 {
		return fmt.Errorf("stopped before a complete frame arrived")
	}

	f, err := frame.FromSnapshot(snap)
	if err != nil {
		return err
	}
	if err := f.Save(out); err != nil {
		return err
	}
	fmt.Printf("Recorded %d joints (frame %d) -> %s\n", len(f.Joints), snap.Frame, out)
	return nil
}

func cmdSend(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}
	rest := config.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: texpack send <frame.yaml> [host:port]")
	}
	addr := cfg.OSC.Listen
	if len(rest) > 1 {
		addr = rest[1]
	}

	snap, err := frame.LoadFile(rest[0])
	if err != nil {
		return err
	}
	sender, err := osc.NewSender(addr, cfg.OSC.Prefix)
	if err != nil {
		return err
	}
	if err := sender.Send(snap); err != nil {
		return err
	}
	logger.Info("sent frame", zap.String("addr", addr), zap.Int("joints", len(snap.Positions)))
	return nil
}

func cmdInitConfig(args []string) error {
	if err := config.ParseFlags(args); err != nil {
		return err
	}
	cfg := config.Default()

	if len(config.Args()) > 0 {
		path := config.Args()[0]
		if err := cfg.SaveTo(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}
