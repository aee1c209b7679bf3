package config

import (
	"flag"
	"time"
)

var (
	flags *flag.FlagSet

	flagConfig   *string
	flagDebug    *bool
	flagListen   *string
	flagOut      *string
	flagPreview  *string
	flagInterval *time.Duration
	flagFixRoot  *bool
)

func init() {
	flags = newFlagSet()
}

// newFlagSet returns a fresh set so values never carry over between
// subcommand invocations.
func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("texpack", flag.ContinueOnError)

	flagConfig = fs.String("config", "", "Path to config file")
	flagDebug = fs.Bool("debug", false, "Enable debug logging")
	flagListen = fs.String("listen", "", "OSC listen address (host:port)")
	flagOut = fs.String("o", "", "Output directory")
	flagPreview = fs.String("preview", "", "Write a preview image (png, webp, tiff, tga)")
	flagInterval = fs.Duration("interval", 0, "Frame write interval in listen mode")
	flagFixRoot = fs.Bool("fix-root", false, "Pin joint 0 at the origin")
	return fs
}

// ParseFlags parses command-line flags for a subcommand. Call this early
// with the arguments that follow the subcommand name. Flags from a previous
// call are discarded.
func ParseFlags(args []string) error {
	flags = newFlagSet()
	return flags.Parse(args)
}

// Args returns the positional arguments left after ParseFlags.
func Args() []string {
	return flags.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagListen != "" {
		cfg.OSC.Listen = *flagListen
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagPreview != "" {
		cfg.Output.Preview = *flagPreview
	}
	if *flagInterval > 0 {
		cfg.Output.Interval = *flagInterval
	}
	if *flagFixRoot {
		cfg.Bones.FixRoot = true
	}
}
