package utils

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
)

// Getenv returns env var value or default.
func Getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// RandString returns a short, safe random string (hex) of length n.
func RandString(n int) string {
	if n <= 0 {
		n = 6
	}
	b := make([]byte, (n+1)/2)
	_, _ = rand.Read(b)
	s := hex.EncodeToString(b)
	if len(s) > n {
		return s[:n]
	}
	return s
}

// DeviceID returns a stable identifier for the current host, used as the
// default device_id on token requests. Falls back to the hostname when no
// hardware UUID is readable.
func DeviceID() string {
	if out, err := os.ReadFile("/sys/class/dmi/id/product_uuid"); err == nil {
		if id := strings.TrimSpace(string(out)); id != "" {
			return id
		}
	}
	if out, err := os.ReadFile("/etc/machine-id"); err == nil {
		if id := strings.TrimSpace(string(out)); id != "" {
			return id
		}
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown-device"
	}
	return host
}
