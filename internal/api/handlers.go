package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Thomazoide/superform-av/internal/auth"
	"github.com/Thomazoide/superform-av/internal/files"
	"github.com/Thomazoide/superform-av/internal/models"
	"github.com/Thomazoide/superform-av/internal/store"
	"github.com/Thomazoide/superform-av/internal/utils"
)

// maxUploadBytes bounds the multipart body held in memory per request.
const maxUploadBytes = 16 << 20

// maxDescriptionLen mirrors the client-side cap; re-checked here because
// the endpoint is reachable without the client.
const maxDescriptionLen = 300

// Handlers carries the ingest server's dependencies.
type Handlers struct {
	Store       *store.ReportStore
	Photos      *files.PhotoStore
	Keys        *auth.DeviceKeys
	Tokens      *auth.TokenIssuer
	Log         *utils.Logger
	AuthEnabled bool
}

// GetTimeHandler returns the current server time in RFC3339 format.
func (h *Handlers) GetTimeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"time": "` + time.Now().Format(time.RFC3339) + `"}`))
}

// PostReportHandler accepts one multipart report: photo part "foto",
// string-encoded "lat"/"lng", optional "description".
func (h *Handlers) PostReportHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	photo, header, err := r.FormFile(submitFieldPhoto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing photo")
		return
	}
	defer photo.Close()

	lat, err := strconv.ParseFloat(r.FormValue("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lat")
		return
	}
	lng, err := strconv.ParseFloat(r.FormValue("lng"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lng")
		return
	}
	desc := strings.TrimSpace(r.FormValue("description"))
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		writeError(w, http.StatusBadRequest, "description too long")
		return
	}

	path, err := h.Photos.Save(header.Filename, photo)
	if err != nil {
		h.Log.Error("save photo: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	report := models.Report{
		ID:          "r--" + uuid.NewString(),
		PhotoPath:   path,
		Latitude:    lat,
		Longitude:   lng,
		Description: desc,
		ReceivedAt:  time.Now().UTC(),
	}
	if err := h.Store.Create(r.Context(), &report); err != nil {
		h.Log.Error("store report: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store report")
		return
	}

	h.Log.Info("report %s received (%.5f, %.5f)", report.ID, lat, lng)
	writeJSON(w, http.StatusCreated, models.SubmitResponse{
		Message: "report received",
		Data:    &report,
		Error:   false,
	})
}

// ListReportsHandler returns stored reports, newest first.
func (h *Handlers) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Store.List(r.Context())
	if err != nil {
		h.Log.Error("list reports: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// IssueTokenHandler exchanges provisioned device credentials for a bearer
// token.
func (h *Handlers) IssueTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.Keys.Verify(req.DeviceID, req.DeviceKey); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid device credentials")
		return
	}
	token, expires, err := h.Tokens.Issue(req.DeviceID, auth.DefaultTokenTTL)
	if err != nil {
		h.Log.Error("issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: expires})
}

// RequireAuth wraps a handler with bearer-token verification when auth is
// enabled.
func (h *Handlers) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.AuthEnabled {
			next(w, r)
			return
		}
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		deviceID, err := h.Tokens.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		h.Log.Info("authenticated device %s", deviceID)
		next(w, r)
	}
}

// submitFieldPhoto is the multipart field the client sends the binary in.
const submitFieldPhoto = "foto"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.SubmitResponse{Message: msg, Error: true})
}
