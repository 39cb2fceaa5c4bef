// Package headless implements the Backend interface for automated testing
// and batch processing: no display, no input, optional frame snapshots.
package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend runs a fixed number of ticks and then signals quit.
type Backend struct {
	config         backend.BackendConfig
	tickCount      int
	maxTicks       int
	snapshotConfig SnapshotConfig
}

// SnapshotConfig holds configuration for frame snapshots.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N ticks
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
}

func New(maxTicks int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxTicks:       maxTicks,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	slog.SetDefault(slog.New(handler))

	slog.Info("Running headless mode",
		"ticks", h.maxTicks,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update counts ticks, saves snapshots and signals quit once the tick
// budget is spent.
func (h *Backend) Update(frame *video.FrameBuffer, redraw bool) ([]backend.InputEvent, error) {
	var events []backend.InputEvent

	h.tickCount++

	if h.snapshotConfig.Enabled && h.tickCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.tickCount%60 == 0 {
		slog.Info("Tick progress", "completed", h.tickCount, "total", h.maxTicks)
	}

	if h.tickCount >= h.maxTicks {
		if h.snapshotConfig.Enabled && h.tickCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(frame)
		}

		slog.Info("Headless execution completed", "ticks", h.maxTicks)
		events = append(events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	}

	return events, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "chip8-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = directory
	}

	config.ROMName = filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(config.ROMName, filepath.Ext(config.ROMName))

	return config, nil
}

// saveSnapshot writes the frame as text art, one character per pixel. The
// display is 1-bit so text captures it losslessly.
func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	name := fmt.Sprintf("%s_tick_%d.txt", h.snapshotConfig.ROMName, h.tickCount)
	path := filepath.Join(h.snapshotConfig.Directory, name)

	if err := os.WriteFile(path, []byte(RenderText(frame)), 0644); err != nil {
		slog.Error("Failed to save snapshot", "tick", h.tickCount, "path", path, "error", err)
		return
	}
	slog.Info("Saved frame snapshot", "tick", h.tickCount, "path", path)
}

// RenderText renders the frame buffer as text art, '#' for set pixels and
// '.' for unset ones, one row per line.
func RenderText(frame *video.FrameBuffer) string {
	var sb strings.Builder
	sb.Grow((video.FramebufferWidth + 1) * video.FramebufferHeight)

	for y := uint(0); y < video.FramebufferHeight; y++ {
		for x := uint(0); x < video.FramebufferWidth; x++ {
			if frame.GetPixel(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
