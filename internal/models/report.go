package models

import "time"

// ===== Domain Models =====

// Fix is a single resolved location reading.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Report is a received submission as stored by the ingest server.
type Report struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	PhotoPath   string    `json:"photo_path"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}

// SubmitResponse is the JSON shape the report endpoint answers with.
// Error is true on every non-success response; clients decide success by
// HTTP status alone and only use Message/Data when the body parses.
type SubmitResponse struct {
	Message string  `json:"message"`
	Data    *Report `json:"data,omitempty"`
	Error   bool    `json:"error"`
}

// TokenRequest is the body for POST /api/devices/token.
type TokenRequest struct {
	DeviceID  string `json:"device_id"`
	DeviceKey string `json:"device_key"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
