package stagefx

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshotter writes labeled PNG snapshots of composed frames. Labels are
// queued with Queue and written by the next Flush call.
type Screenshotter struct {
	Dir   string
	queue []string
	// Now stamps file names; nil uses time.Now.
	Now func() time.Time
}

// NewScreenshotter writes into dir.
func NewScreenshotter(dir string) *Screenshotter {
	return &Screenshotter{Dir: dir}
}

// Queue requests a snapshot of the next flushed frame.
func (s *Screenshotter) Queue(label string) {
	s.queue = append(s.queue, label)
}

// Pending returns the number of queued labels.
func (s *Screenshotter) Pending() int {
	return len(s.queue)
}

// FlushBuffer writes one PNG per queued label from a premultiplied pixel
// buffer and returns the written paths. A nil buffer (nothing to draw)
// drops the queue.
func (s *Screenshotter) FlushBuffer(pb *PixelBuffer) []string {
	if len(s.queue) == 0 {
		return nil
	}
	if pb == nil {
		Logger().Warn("screenshot: no frame to capture", "labels", len(s.queue))
		s.queue = s.queue[:0]
		return nil
	}
	return s.flush(unpremultiply(pb.Pix, pb.Width, pb.Height))
}

// FlushScreen writes one PNG per queued label from an ebiten image. Call it
// at the end of Draw.
func (s *Screenshotter) FlushScreen(screen *ebiten.Image) []string {
	if len(s.queue) == 0 {
		return nil
	}
	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	return s.flush(unpremultiply(pixels, b.Dx(), b.Dy()))
}

func (s *Screenshotter) flush(img *image.NRGBA) []string {
	defer func() { s.queue = s.queue[:0] }()
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		Logger().Warn("screenshot: mkdir failed", "dir", s.Dir, "error", err)
		return nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	stamp := now().Format("20060102_150405")

	var paths []string
	for i, label := range s.queue {
		path := filepath.Join(s.Dir, fmt.Sprintf("%s_%02d_%s.png", stamp, i, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			Logger().Warn("screenshot: write failed", "error", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// unpremultiply converts premultiplied RGBA to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
