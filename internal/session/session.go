// Package session holds the in-memory state for one photo/description/
// location submission attempt and enforces its gating rules.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/Thomazoide/superform-av/internal/device"
	"github.com/Thomazoide/superform-av/internal/models"
	"github.com/Thomazoide/superform-av/internal/submit"
	"github.com/Thomazoide/superform-av/internal/utils"
)

// MaxDescriptionLen caps the free-text description, enforced at entry.
const MaxDescriptionLen = 300

var (
	// ErrNoPhoto rejects a submit before any network call is made.
	ErrNoPhoto = errors.New("no photo captured")
	// ErrSubmitInFlight rejects a second submit while one is running.
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrDescriptionTooLong rejects description input over the cap.
	ErrDescriptionTooLong = fmt.Errorf("description exceeds %d characters", MaxDescriptionLen)
)

// Submitter posts a built payload; satisfied by *submit.Client.
type Submitter interface {
	Submit(ctx context.Context, p submit.Payload) (*models.SubmitResponse, error)
}

// Session is created empty, mutated by user actions and provider callbacks,
// and cleared on successful submission.
type Session struct {
	mu          sync.Mutex
	photoPath   string
	description string
	lastFix     *models.Fix
	inFlight    bool
	prefetch    sync.WaitGroup

	camera    device.CameraProvider
	locator   device.LocationProvider
	submitter Submitter
}

// New builds an empty capture session over the given providers.
func New(camera device.CameraProvider, locator device.LocationProvider, submitter Submitter) *Session {
	return &Session{
		camera:    camera,
		locator:   locator,
		submitter: submitter,
	}
}

// Capture invokes the camera. On success the photo path is stored and a
// fire-and-forget location pre-fetch starts so the fix is likely warm by
// submit time. On cancellation state is left unchanged and
// device.ErrCaptureCanceled is returned for the caller to ignore quietly.
func (s *Session) Capture(ctx context.Context) (string, error) {
	path, err := s.camera.Capture(ctx)
	if err != nil {
		if errors.Is(err, device.ErrCaptureCanceled) {
			return "", err
		}
		return "", utils.New(utils.KindCapture, err.Error())
	}

	s.mu.Lock()
	s.photoPath = path
	s.mu.Unlock()

	s.prefetch.Add(1)
	go func() {
		defer s.prefetch.Done()
		fix, err := s.locator.CurrentFix(context.Background())
		if err != nil {
			return
		}
		s.mu.Lock()
		s.lastFix = fix
		s.mu.Unlock()
	}()

	return path, nil
}

// SetDescription stores the free-text description, rejecting input over
// the cap. Trimming happens at submit time, not here.
func (s *Session) SetDescription(text string) error {
	if utf8.RuneCountInString(text) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	s.mu.Lock()
	s.description = text
	s.mu.Unlock()
	return nil
}

// Submit runs the submission sequence: gate on photo and in-flight state,
// resolve a fresh fix, post the payload, and reset state on success. The
// in-flight flag is cleared on every exit path.
func (s *Session) Submit(ctx context.Context) (*models.SubmitResponse, error) {
	s.mu.Lock()
	if s.photoPath == "" {
		s.mu.Unlock()
		return nil, ErrNoPhoto
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.inFlight = true
	photo, desc := s.photoPath, s.description
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	// Always a fresh fix relative to the submit action; the pre-fetch only
	// warms the provider.
	fix, err := s.locator.CurrentFix(ctx)
	if err != nil {
		return nil, utils.New(utils.KindLocation, fmt.Sprintf("could not resolve location: %v", err))
	}

	resp, err := s.submitter.Submit(ctx, submit.Payload{
		PhotoPath:   photo,
		Description: desc,
		Latitude:    fix.Latitude,
		Longitude:   fix.Longitude,
	})
	if err != nil {
		return nil, err
	}

	s.Reset()
	return resp, nil
}

// Reset clears photo, description and fix, returning the session to its
// post-mount state. The form survives failed submits; only success resets.
func (s *Session) Reset() {
	s.mu.Lock()
	s.photoPath = ""
	s.description = ""
	s.lastFix = nil
	s.mu.Unlock()
}

// PhotoPath returns the captured photo path, empty until a capture succeeds.
func (s *Session) PhotoPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photoPath
}

// Description returns the current description text.
func (s *Session) Description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.description
}

// LastFix returns the most recent pre-fetched fix, nil when none resolved.
func (s *Session) LastFix() *models.Fix {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFix
}

// InFlight reports whether a submission is currently running.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// WaitPrefetch blocks until any pending location pre-fetch finished.
func (s *Session) WaitPrefetch() {
	s.prefetch.Wait()
}
