package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemStore() *Store {
	return NewStore(afero.NewMemMapFs(), testLogger())
}

// pngBytes encodes a solid-color test image.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 0x80, B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestStoreSave_EncodesWebpUnderContentHash(t *testing.T) {
	store := newMemStore()

	saved, err := store.Save(bytes.NewReader(pngBytes(t, 100, 60)), "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !strings.HasSuffix(saved.Name, ".webp") {
		t.Errorf("stored name %q should be webp", saved.Name)
	}
	if saved.Size <= 0 {
		t.Errorf("stored size = %d, want > 0", saved.Size)
	}
	if !store.Exists(saved.Name) {
		t.Error("saved image not found in store")
	}
}

func TestStoreSave_SameContentSameName(t *testing.T) {
	store := newMemStore()
	data := pngBytes(t, 80, 80)

	first, err := store.Save(bytes.NewReader(data), "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := store.Save(bytes.NewReader(data), "")
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if first.Name != second.Name {
		t.Errorf("identical uploads stored under different names: %q vs %q", first.Name, second.Name)
	}
	list, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("store holds %d files, want 1", len(list))
	}
}

func TestStoreSave_OversizedImageFitted(t *testing.T) {
	store := newMemStore()

	saved, err := store.Save(bytes.NewReader(pngBytes(t, 3200, 400)), "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rc, err := store.Open(saved.Name)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()

	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		t.Fatalf("failed to decode stored image: %v", err)
	}
	if cfg.Width > maxUploadWidth || cfg.Height > maxUploadHeight {
		t.Errorf("stored image %dx%d exceeds upload bounds", cfg.Width, cfg.Height)
	}
}

func TestStoreSave_NamedUploadReplaces(t *testing.T) {
	store := newMemStore()

	first, err := store.Save(bytes.NewReader(pngBytes(t, 40, 40)), "hero-image")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if first.Name != "hero-image.webp" {
		t.Errorf("named upload stored as %q, want hero-image.webp", first.Name)
	}

	// A different image under the same name replaces the file
	second, err := store.Save(bytes.NewReader(pngBytes(t, 90, 30)), "hero-image")
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if second.Name != first.Name {
		t.Errorf("replacement changed the name: %q vs %q", second.Name, first.Name)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Size != second.Size {
		t.Errorf("store should hold the replacement only, listing: %+v", list)
	}
}

func TestStoreSave_GarbageRejected(t *testing.T) {
	store := newMemStore()

	if _, err := store.Save(strings.NewReader("not an image"), ""); err == nil {
		t.Error("expected an error for undecodable input")
	}
}

func TestStoreListAndDelete(t *testing.T) {
	store := newMemStore()
	if err := store.SaveRaw("bb.webp", []byte{1}); err != nil {
		t.Fatalf("SaveRaw failed: %v", err)
	}
	if err := store.SaveRaw("aa.webp", []byte{2}); err != nil {
		t.Fatalf("SaveRaw failed: %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "aa.webp" || list[1].Name != "bb.webp" {
		t.Errorf("unexpected listing: %+v", list)
	}

	if err := store.Delete("aa.webp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists("aa.webp") {
		t.Error("deleted image still exists")
	}
	if err := store.Delete("aa.webp"); err == nil {
		t.Error("deleting a missing image should fail")
	}
}
