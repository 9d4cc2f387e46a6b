package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Thomazoide/superform-av/internal/config"
)

var (
	// ErrInvalidCredentials is returned when a device ID or key does not match.
	ErrInvalidCredentials = errors.New("invalid device credentials")
)

// DeviceKeys checks field-unit credentials against the provisioned bcrypt
// hashes from configuration.
type DeviceKeys struct {
	hashes map[string]string
}

// NewDeviceKeys indexes the provisioned devices by ID.
func NewDeviceKeys(devices []config.DeviceKey) *DeviceKeys {
	hashes := make(map[string]string, len(devices))
	for _, d := range devices {
		hashes[d.ID] = d.KeyHash
	}
	return &DeviceKeys{hashes: hashes}
}

// Verify checks a presented device key against the provisioned hash.
func (d *DeviceKeys) Verify(deviceID, key string) error {
	hash, ok := d.hashes[deviceID]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashKey produces the bcrypt hash to provision for a device key.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
