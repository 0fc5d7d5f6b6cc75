// Package annotator produces hint maps from images. The arithmetic detectors
// (edges, thresholds, tone maps) are implemented here directly; model-backed
// detectors go through a Backend, typically a remote ComfyUI host, registered
// at startup. Wrapper sources that need a backend fail to load when none is
// configured, which is how those units end up in discovery diagnostics
// instead of the registry.
package annotator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rowanvale/auxpack/imaging"
)

// Task is one model-backed detection request.
type Task struct {
	Detector   string
	Model      string
	Image      *imaging.Image
	Resolution int
	Params     map[string]interface{}
}

// Detection is a backend's answer: the hint map plus detector specific side
// output such as pose keypoints.
type Detection struct {
	Image *imaging.Image
	Aux   interface{}
}

// Backend serves model-backed detectors.
type Backend interface {
	Name() string
	Detect(ctx context.Context, task Task) (*Detection, error)
}

// ErrNoBackend is returned by Default when no inference backend was
// registered.
var ErrNoBackend = errors.New("no inference backend registered")

var (
	backendMu sync.RWMutex
	backends  = make(map[string]Backend)
	active    string
)

// RegisterBackend makes a backend available and selects it as the default.
// Registering a name twice overwrites the earlier backend. Backends register
// during startup wiring, before discovery runs.
func RegisterBackend(b Backend) {
	backendMu.Lock()
	defer backendMu.Unlock()
	if _, ok := backends[b.Name()]; ok {
		slog.Warn("overwriting inference backend", "name", b.Name())
	}
	backends[b.Name()] = b
	active = b.Name()
}

// Default returns the active backend.
func Default() (Backend, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if active == "" {
		return nil, ErrNoBackend
	}
	return backends[active], nil
}

// ResetBackends clears the registry; tests use it for isolation.
func ResetBackends() {
	backendMu.Lock()
	defer backendMu.Unlock()
	backends = make(map[string]Backend)
	active = ""
}

// Run scales a batch to the detector resolution and applies fn frame by
// frame, reassembling the outputs into one batch. Every frame must come back
// the same size.
func Run(ctx context.Context, img *imaging.Image, resolution int, fn func(ctx context.Context, frame *imaging.Image) (*imaging.Image, error)) (*imaging.Image, error) {
	scaled := imaging.ScaleShortSide(img, resolution)
	var out *imaging.Image
	for b := 0; b < scaled.Batch; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := fn(ctx, scaled.Frame(b))
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", b, err)
		}
		if out == nil {
			out = imaging.New(scaled.Batch, frame.Height, frame.Width, frame.Channels)
		} else if frame.Height != out.Height || frame.Width != out.Width || frame.Channels != out.Channels {
			return nil, fmt.Errorf("frame %d: detector output %s does not match batch %s", b, frame, out)
		}
		copy(out.Frame(b).Pix, frame.Pix)
	}
	return out, nil
}
