package device

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Thomazoide/superform-av/internal/utils"
)

// Capability names used in permission errors.
const (
	CapabilityCamera   = "camera"
	CapabilityMedia    = "media"
	CapabilityLocation = "location"
)

// Checker probes the capabilities a capture flow needs, once, before the
// flow starts. A denial is blocking: there is no retry, the user fixes
// access externally and runs again.
type Checker struct {
	Camera   CameraProvider
	Locator  LocationProvider
	MediaDir string
}

// Check probes all capabilities concurrently and returns the first denial
// as a permission-kind error naming the capability.
func (c *Checker) Check(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.Camera.Available(ctx); err != nil {
			return utils.New(utils.KindPermission, fmt.Sprintf("%s access unavailable: %v", CapabilityCamera, err))
		}
		return nil
	})
	g.Go(func() error {
		if err := c.Locator.Available(ctx); err != nil {
			return utils.New(utils.KindPermission, fmt.Sprintf("%s access unavailable: %v", CapabilityLocation, err))
		}
		return nil
	})
	g.Go(func() error {
		if err := probeMediaDir(c.MediaDir); err != nil {
			return utils.New(utils.KindPermission, fmt.Sprintf("%s access unavailable: %v", CapabilityMedia, err))
		}
		return nil
	})

	return g.Wait()
}

// probeMediaDir verifies captured photos can actually be written.
func probeMediaDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".superform_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
