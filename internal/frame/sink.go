package frame

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/incubatio/pkg/texpack"
)

// RawExt is the extension of raw float payload files.
const RawExt = ".f32"

// Sink writes packed buffers to a directory. Each write replaces the
// previous file atomically, so readers never see a partial frame.
type Sink struct {
	dir  string
	name string

	preview      texpack.Format
	previewRange float32
	previewScale int

	log *zap.Logger
}

// SinkOptions controls optional preview output.
type SinkOptions struct {
	// Preview is empty to skip preview images.
	Preview      texpack.Format
	PreviewRange float32
	PreviewScale int
}

// NewSink creates the output directory if needed.
func NewSink(dir, name string, opts SinkOptions, log *zap.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{
		dir:          dir,
		name:         name,
		preview:      opts.Preview,
		previewRange: opts.PreviewRange,
		previewScale: opts.PreviewScale,
		log:          log,
	}, nil
}

// RawPath returns the path of the raw payload file.
func (s *Sink) RawPath() string {
	return filepath.Join(s.dir, s.name+RawExt)
}

// PreviewPath returns the path of the preview image, or "" when disabled.
func (s *Sink) PreviewPath() string {
	if s.preview == "" {
		return ""
	}
	return filepath.Join(s.dir, s.name+s.preview.Ext())
}

// Write stores buf. A nil buffer means no joints and leaves existing files
// untouched.
func (s *Sink) Write(buf *texpack.Buffer) error {
	if buf == nil {
		s.log.Debug("nothing to write")
		return nil
	}

	if err := writeAtomic(s.RawPath(), func(f *os.File) error {
		_, err := buf.WriteTo(f)
		return err
	}); err != nil {
		return fmt.Errorf("writing %s: %w", s.RawPath(), err)
	}

	if s.preview != "" {
		img := texpack.Preview(buf, s.previewRange, s.previewScale)
		if err := writeAtomic(s.PreviewPath(), func(f *os.File) error {
			return texpack.EncodePreview(f, img, s.preview)
		}); err != nil {
			return fmt.Errorf("writing %s: %w", s.PreviewPath(), err)
		}
	}

	s.log.Debug("wrote frame",
		zap.String("path", s.RawPath()),
		zap.Int("height", buf.Height))
	return nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it over path.
func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
