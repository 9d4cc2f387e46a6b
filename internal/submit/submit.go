package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Thomazoide/superform-av/internal/models"
	"github.com/Thomazoide/superform-av/internal/utils"
)

// Multipart field names expected by the report endpoint.
const (
	FieldPhoto       = "foto"
	FieldLat         = "lat"
	FieldLng         = "lng"
	FieldDescription = "description"
)

// Payload is built fresh per submit attempt, never stored.
type Payload struct {
	PhotoPath   string
	Description string
	Latitude    float64
	Longitude   float64
}

// Client posts capture payloads to the report endpoint.
type Client struct {
	Endpoint string
	Token    string
	HTTP     *http.Client
}

// NewClient builds a submit client. No request timeout is imposed beyond
// the transport defaults.
func NewClient(endpoint, token string) *Client {
	return &Client{
		Endpoint: endpoint,
		Token:    token,
		HTTP:     &http.Client{},
	}
}

// Submit encodes the payload as multipart/form-data and posts it. The
// returned response may be nil on success when the body was not parseable;
// success is decided by HTTP status alone. A non-2xx status becomes an
// error carrying the server message when one was parseable.
func (c *Client) Submit(ctx context.Context, p Payload) (*models.SubmitResponse, error) {
	photo, err := os.Open(p.PhotoPath)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer photo.Close()

	name := FileName(p.PhotoPath)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := createPhotoPart(w, name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, photo); err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	w.WriteField(FieldLat, FormatCoord(p.Latitude))
	w.WriteField(FieldLng, FormatCoord(p.Longitude))
	if desc := strings.TrimSpace(p.Description); desc != "" {
		w.WriteField(FieldDescription, desc)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	parsed := parseResponse(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if parsed != nil && parsed.Message != "" {
			return nil, utils.New(utils.KindSubmission, parsed.Message)
		}
		return nil, utils.New(utils.KindSubmission,
			fmt.Sprintf("report rejected with status %d", resp.StatusCode))
	}
	return parsed, nil
}

// createPhotoPart writes the binary part header with the inferred MIME type
// (multipart.Writer.CreateFormFile would hardcode octet-stream).
func createPhotoPart(w *multipart.Writer, name string) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldPhoto, name))
	h.Set("Content-Type", MIMEType(name))
	return w.CreatePart(h)
}

// parseResponse decodes the body defensively: anything unparseable yields
// nil rather than an error.
func parseResponse(raw []byte) *models.SubmitResponse {
	var r models.SubmitResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil
	}
	return &r
}

// FileName derives the upload name from the photo path, falling back to a
// timestamp-based name when the path carries none.
func FileName(path string) string {
	name := filepath.Base(strings.TrimSpace(path))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Sprintf("photo_%d.jpg", time.Now().UnixNano())
	}
	return name
}

// MIMEType infers the photo content type from the extension: png maps to
// image/png, everything else to image/jpeg.
func MIMEType(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

// FormatCoord renders decimal degrees with minimal digits (40.0 -> "40").
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
