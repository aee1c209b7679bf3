// texpack packs motion capture joint transforms into 32-bit float matrix
// textures, either from recorded frame files or from a live OSC feed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/incubatio/internal/bone"
	"github.com/Faultbox/incubatio/internal/config"
	"github.com/Faultbox/incubatio/internal/frame"
	"github.com/Faultbox/incubatio/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "pack":
		err = cmdPack(args)
	case "inspect":
		err = cmdInspect(args)
	case "column", "col":
		err = cmdColumn(args)
	case "listen":
		err = cmdListen(args)
	case "record":
		err = cmdRecord(args)
	case "send":
		err = cmdSend(args)
	case "init-config":
		err = cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`texpack - pack joint transforms into float matrix textures

Usage:
  texpack <command> [options] [args]

Commands:
  pack <frame.yaml>                  Pack a frame file to <dir>/<name>.f32
  inspect <file.f32>                 Print the matrices in a packed file
  column <frame.yaml> <joint> <i>    Print column i of a joint's matrix
  listen                             Receive OSC joints and write frames
  record <out.yaml>                  Capture one OSC frame to a frame file
  send <frame.yaml> [host:port]      Send a frame file over OSC
  init-config [path]                 Write the default config

Options:
  -config <file>    Config file (default ./texpack.yaml or user config dir)
  -debug            Debug logging
  -listen <addr>    OSC listen address
  -o <dir>          Output directory
  -preview <fmt>    Also write a preview image (png, webp, tiff, tga)
  -interval <dur>   Frame write interval for listen
  -fix-root         Pin joint 0 at the origin

Examples:
  texpack pack -preview png frames/t-pose.yaml
  texpack column frames/t-pose.yaml 0 3
  texpack listen -listen 0.0.0.0:9007 -o /tmp/mocap`)
}

// setup parses flags, loads configuration and starts logging.
func setup(args []string) (*config.Config, error) {
	if err := config.ParseFlags(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts := logger.Options{Level: cfg.Logging.Level, Console: true}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
		opts.File.JSON = cfg.Logging.JSON
	}
	if err := logger.Init(opts); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}

// newAdjuster builds the bone adjuster described by cfg.
func newAdjuster(cfg *config.Config) *bone.Adjuster {
	table := bone.ParseTable(cfg.Bones.Offsets)
	adj := bone.NewAdjuster(table)
	if o := cfg.Bones.Override; o.Enabled {
		adj.SetOverride(o.Bone, bone.RotatorFromTriple(o.Offset))
	}
	if !adj.Empty() {
		logger.Info("bone offsets active",
			zap.Ints("joints", table.Indices()),
			zap.Bool("override", cfg.Bones.Override.Enabled))
	}
	return adj
}

func newBuilder(cfg *config.Config) *frame.Builder {
	return frame.NewBuilder(newAdjuster(cfg),
		frame.WithFixRoot(cfg.Bones.FixRoot),
		frame.WithLogger(logger.Named("builder")))
}
