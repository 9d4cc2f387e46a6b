package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrCaptureCanceled reports that the user dismissed the camera without
// taking a photo. Callers leave session state unchanged and surface nothing.
var ErrCaptureCanceled = errors.New("capture canceled")

// CameraProvider captures a single photo and returns the path of the file
// it produced.
type CameraProvider interface {
	// Available reports whether the capture capability is usable at all.
	Available(ctx context.Context) error
	// Capture takes one photo. A cancellation is reported as
	// ErrCaptureCanceled, anything else as a capture failure.
	Capture(ctx context.Context) (string, error)
}

// ExecCamera shells out to a capture command. Command is a format string
// receiving the output path, e.g. "libcamera-still -n -o %s". A command
// that exits zero without producing the file is treated as a cancellation
// (interactive tools exit cleanly when the user dismisses them).
type ExecCamera struct {
	Command   string
	OutputDir string
}

func (c *ExecCamera) binary() string {
	fields := strings.Fields(c.Command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Available checks the capture binary can be resolved.
func (c *ExecCamera) Available(ctx context.Context) error {
	bin := c.binary()
	if bin == "" {
		return errors.New("camera command not configured")
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("camera command %q not found: %w", bin, err)
	}
	return nil
}

// Capture runs the capture command and returns the photo path.
func (c *ExecCamera) Capture(ctx context.Context) (string, error) {
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}
	out := filepath.Join(c.OutputDir, fmt.Sprintf("capture_%d.jpg", time.Now().UnixNano()))

	cmd := exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf(c.Command, out))
	if raw, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("camera capture failed: %s", msg)
	}
	if _, err := os.Stat(out); err != nil {
		// Clean exit, no photo: the user backed out.
		return "", ErrCaptureCanceled
	}
	return out, nil
}
