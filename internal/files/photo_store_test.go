package files

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSaveKeepsExtension(t *testing.T) {
	s := NewPhotoStore(t.TempDir())

	path, err := s.Save("IMG_0042.PNG", bytes.NewReader([]byte("pngbytes")))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("stored path = %q, want lowercase .png suffix", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored photo: %v", err)
	}
	if string(data) != "pngbytes" {
		t.Errorf("stored bytes = %q", data)
	}
}

func TestSaveDefaultsToJPG(t *testing.T) {
	s := NewPhotoStore(t.TempDir())

	path, err := s.Save("noextension", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("stored path = %q, want .jpg fallback", path)
	}
}

func TestSaveNamesDoNotCollide(t *testing.T) {
	s := NewPhotoStore(t.TempDir())

	a, err := s.Save("photo.jpg", bytes.NewReader([]byte("a")))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	b, err := s.Save("photo.jpg", bytes.NewReader([]byte("b")))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if a == b {
		t.Errorf("two saves produced the same path %q", a)
	}
}
