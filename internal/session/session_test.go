package session

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Thomazoide/superform-av/internal/device"
	"github.com/Thomazoide/superform-av/internal/models"
	"github.com/Thomazoide/superform-av/internal/submit"
	"github.com/Thomazoide/superform-av/internal/utils"
)

type fakeCamera struct {
	path string
	err  error
}

func (f *fakeCamera) Available(ctx context.Context) error { return nil }
func (f *fakeCamera) Capture(ctx context.Context) (string, error) {
	return f.path, f.err
}

type fakeLocator struct {
	fix   *models.Fix
	err   error
	calls int32
}

func (f *fakeLocator) Available(ctx context.Context) error { return f.err }
func (f *fakeLocator) CurrentFix(ctx context.Context) (*models.Fix, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.fix, f.err
}

type fakeSubmitter struct {
	calls   int32
	payload submit.Payload
	resp    *models.SubmitResponse
	err     error
	release chan struct{} // when set, Submit blocks until closed
}

func (f *fakeSubmitter) Submit(ctx context.Context, p submit.Payload) (*models.SubmitResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	f.payload = p
	if f.release != nil {
		<-f.release
	}
	return f.resp, f.err
}

func newFix(lat, lng float64) *models.Fix {
	return &models.Fix{Latitude: lat, Longitude: lng, Timestamp: time.Now().UTC()}
}

func TestSubmitRejectedWithoutPhoto(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(&fakeCamera{}, &fakeLocator{fix: newFix(1, 2)}, sub)

	_, err := s.Submit(context.Background())
	if !errors.Is(err, ErrNoPhoto) {
		t.Fatalf("err = %v, want ErrNoPhoto", err)
	}
	if atomic.LoadInt32(&sub.calls) != 0 {
		t.Error("submitter was called despite missing photo")
	}
}

func TestSubmitRejectedWhenLocationUnavailable(t *testing.T) {
	sub := &fakeSubmitter{}
	loc := &fakeLocator{err: errors.New("gps timeout")}
	s := New(&fakeCamera{path: "/tmp/photo.jpg"}, loc, sub)

	if _, err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	s.WaitPrefetch()

	_, err := s.Submit(context.Background())
	if err == nil {
		t.Fatal("expected location error")
	}
	if utils.KindOf(err) != utils.KindLocation {
		t.Errorf("error kind = %q, want location", utils.KindOf(err))
	}
	if atomic.LoadInt32(&sub.calls) != 0 {
		t.Error("submitter was called despite missing fix")
	}
	if s.PhotoPath() == "" {
		t.Error("photo was cleared on a failed submit")
	}
}

func TestDescriptionCap(t *testing.T) {
	s := New(&fakeCamera{}, &fakeLocator{}, &fakeSubmitter{})

	if err := s.SetDescription(strings.Repeat("a", MaxDescriptionLen)); err != nil {
		t.Fatalf("300-char description rejected: %v", err)
	}
	if err := s.SetDescription(strings.Repeat("a", MaxDescriptionLen+1)); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("err = %v, want ErrDescriptionTooLong", err)
	}
	// The rejected input must not replace the stored one.
	if got := s.Description(); len(got) != MaxDescriptionLen {
		t.Errorf("stored description length = %d, want %d", len(got), MaxDescriptionLen)
	}
}

func TestSubmitResetsStateOnSuccess(t *testing.T) {
	sub := &fakeSubmitter{resp: &models.SubmitResponse{Message: "report received"}}
	loc := &fakeLocator{fix: newFix(40, -75)}
	s := New(&fakeCamera{path: "/tmp/photo.jpg"}, loc, sub)

	if _, err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if err := s.SetDescription("Bridge view"); err != nil {
		t.Fatalf("SetDescription() failed: %v", err)
	}
	s.WaitPrefetch()

	resp, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if resp.Message != "report received" {
		t.Errorf("message = %q", resp.Message)
	}
	if sub.payload.PhotoPath != "/tmp/photo.jpg" || sub.payload.Latitude != 40 || sub.payload.Longitude != -75 {
		t.Errorf("unexpected payload: %+v", sub.payload)
	}
	if s.PhotoPath() != "" || s.Description() != "" || s.LastFix() != nil {
		t.Error("session state not reset after successful submit")
	}
	if s.InFlight() {
		t.Error("in-flight flag not cleared")
	}
}

func TestSubmitStatePreservedOnFailure(t *testing.T) {
	sub := &fakeSubmitter{err: utils.New(utils.KindSubmission, "X")}
	s := New(&fakeCamera{path: "/tmp/photo.jpg"}, &fakeLocator{fix: newFix(1, 2)}, sub)

	if _, err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if err := s.SetDescription("keep me"); err != nil {
		t.Fatalf("SetDescription() failed: %v", err)
	}

	_, err := s.Submit(context.Background())
	if err == nil || err.Error() != "X" {
		t.Fatalf("err = %v, want the server message", err)
	}
	if s.PhotoPath() == "" || s.Description() != "keep me" {
		t.Error("form state must survive a failed submit so the user can retry")
	}
	if s.InFlight() {
		t.Error("in-flight flag not cleared after failure")
	}
}

func TestSecondSubmitRejectedWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	sub := &fakeSubmitter{resp: &models.SubmitResponse{}, release: release}
	s := New(&fakeCamera{path: "/tmp/photo.jpg"}, &fakeLocator{fix: newFix(1, 2)}, sub)

	if _, err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	s.WaitPrefetch()

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	// Wait for the first submit to reach the in-flight section.
	deadline := time.Now().Add(2 * time.Second)
	for !s.InFlight() {
		if time.Now().After(deadline) {
			t.Fatal("first submit never became in-flight")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("second submit err = %v, want ErrSubmitInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
}

func TestCaptureCancellationLeavesStateUntouched(t *testing.T) {
	s := New(&fakeCamera{err: device.ErrCaptureCanceled}, &fakeLocator{fix: newFix(1, 2)}, &fakeSubmitter{})

	_, err := s.Capture(context.Background())
	if !errors.Is(err, device.ErrCaptureCanceled) {
		t.Fatalf("err = %v, want ErrCaptureCanceled", err)
	}
	if s.PhotoPath() != "" {
		t.Error("cancelled capture must not set a photo")
	}
}

func TestCaptureFailureTagged(t *testing.T) {
	s := New(&fakeCamera{err: errors.New("lens fell off")}, &fakeLocator{}, &fakeSubmitter{})

	_, err := s.Capture(context.Background())
	if err == nil {
		t.Fatal("expected capture error")
	}
	if utils.KindOf(err) != utils.KindCapture {
		t.Errorf("error kind = %q, want capture", utils.KindOf(err))
	}
}

func TestCapturePrefetchesLocation(t *testing.T) {
	loc := &fakeLocator{fix: newFix(40, -75)}
	s := New(&fakeCamera{path: "/tmp/photo.jpg"}, loc, &fakeSubmitter{resp: &models.SubmitResponse{}})

	if _, err := s.Capture(context.Background()); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	s.WaitPrefetch()
	if s.LastFix() == nil {
		t.Fatal("capture did not warm a fix")
	}

	// Submit still resolves a fresh fix instead of reusing the warm one.
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if got := atomic.LoadInt32(&loc.calls); got != 2 {
		t.Errorf("locator calls = %d, want 2 (prefetch + submit)", got)
	}
}
