package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Thomazoide/superform-av/internal/models"
)

// LocationProvider resolves the device's current position. A failed fetch
// means the dependent operation (typically a submit) must be aborted.
type LocationProvider interface {
	Available(ctx context.Context) error
	CurrentFix(ctx context.Context) (*models.Fix, error)
}

// HTTPLocator resolves a fix from a geolocation service answering JSON,
// e.g. http://ip-api.com/json.
type HTTPLocator struct {
	URL    string
	Client *http.Client
}

// NewHTTPLocator builds a locator with a dedicated, timeouted client so a
// slow geo service cannot stall the rest of the flow indefinitely.
func NewHTTPLocator(url string, timeout time.Duration) *HTTPLocator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   6 * time.Second,
		KeepAlive: 15 * time.Second,
	}
	return &HTTPLocator{
		URL: url,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{DialContext: dialer.DialContext},
		},
	}
}

// geoResponse covers the common field spellings of public geo services.
type geoResponse struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
}

// Available checks the service answers at all.
func (l *HTTPLocator) Available(ctx context.Context) error {
	_, err := l.CurrentFix(ctx)
	return err
}

// CurrentFix fetches a high-accuracy current position.
func (l *HTTPLocator) CurrentFix(ctx context.Context) (*models.Fix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("location fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location service returned status %d", resp.StatusCode)
	}

	var geo geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return nil, fmt.Errorf("decode location response: %w", err)
	}
	lat, lon := geo.Lat, geo.Lon
	if lat == nil {
		lat = geo.Latitude
	}
	if lon == nil {
		lon = geo.Longitude
	}
	if lat == nil || lon == nil {
		return nil, errors.New("location response missing coordinates")
	}
	return &models.Fix{
		Latitude:  *lat,
		Longitude: *lon,
		Accuracy:  geo.Accuracy,
		Timestamp: time.Now().UTC(),
	}, nil
}

// StaticLocator returns fixed coordinates from configuration. Meant for
// bench setups and tests where no geo service is reachable.
type StaticLocator struct {
	Lat float64
	Lng float64
}

func (l *StaticLocator) Available(ctx context.Context) error {
	return nil
}

func (l *StaticLocator) CurrentFix(ctx context.Context) (*models.Fix, error) {
	return &models.Fix{
		Latitude:  l.Lat,
		Longitude: l.Lng,
		Timestamp: time.Now().UTC(),
	}, nil
}
