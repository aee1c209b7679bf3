package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/incubatio/internal/skeleton"
	"github.com/Faultbox/incubatio/pkg/texpack"
)

// Writer receives packed frames. *Sink implements it.
type Writer interface {
	Write(buf *texpack.Buffer) error
}

// Loop packs the latest snapshot from a store every interval and hands it
// to a writer. Frames that did not change since the last tick are skipped.
type Loop struct {
	Store    *skeleton.Store
	Builder  *Builder
	Writer   Writer
	Interval time.Duration
	Log      *zap.Logger
}

// ErrBadInterval is returned by Run when Interval is not positive.
var ErrBadInterval = errors.New("frame interval must be positive")

// Run ticks until ctx is cancelled. Build and write failures are logged and
// the loop keeps going; a bad frame must not stop the feed.
func (l *Loop) Run(ctx context.Context) error {
	if l.Interval <= 0 {
		return fmt.Errorf("%w: %v", ErrBadInterval, l.Interval)
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	var last uint64
	var written, failed int
	for {
		select {
		case <-ctx.Done():
			log.Info("frame loop stopped",
				zap.Int("written", written),
				zap.Int("failed", failed))
			return nil
		case <-ticker.C:
		}

		snap := l.Store.Snapshot()
		if snap.Frame == last {
			continue
		}
		last = snap.Frame

		buf, err := l.Builder.Build(snap)
		if err != nil {
			failed++
			log.Warn("skipping frame", zap.Uint64("frame", snap.Frame), zap.Error(err))
			continue
		}
		if err := l.Writer.Write(buf); err != nil {
			failed++
			log.Error("writing frame", zap.Uint64("frame", snap.Frame), zap.Error(err))
			continue
		}
		if buf != nil {
			written++
		}
	}
}
