package images

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sort"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

const (
	// maxUploadWidth bounds processed uploads; larger images are fitted down.
	maxUploadWidth  = 1600
	maxUploadHeight = 1600

	webpQuality = 85
)

// Saved describes one stored image file.
type Saved struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Store holds processed image files behind an afero filesystem, so tests
// run against an in-memory fs and production against the data directory.
// Files are named by content hash: re-uploading the same image is a no-op.
type Store struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewStore creates an image store rooted at the given fs.
func NewStore(fs afero.Fs, logger *slog.Logger) *Store {
	return &Store{fs: fs, logger: logger}
}

func hashName(data []byte) string {
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:8]) + ".webp"
}

// Save decodes an uploaded image, fits it into the upload bounds, encodes
// it as webp, and stores it. A non-empty name stores the file as
// name+".webp", replacing any previous image of that name; without one the
// file is named by content hash and re-uploading the same image is a no-op.
func (s *Store) Save(r io.Reader, name string) (Saved, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return Saved{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() > maxUploadWidth || bounds.Dy() > maxUploadHeight {
		src = imaging.Fit(src, maxUploadWidth, maxUploadHeight, imaging.Lanczos)
	}

	data, err := encodeWebp(src)
	if err != nil {
		return Saved{}, err
	}

	fileName := hashName(data)
	if name != "" {
		fileName = name + ".webp"
		if err := afero.WriteFile(s.fs, fileName, data, 0644); err != nil {
			return Saved{}, fmt.Errorf("failed to write image %s: %w", fileName, err)
		}
	} else if err := s.SaveRaw(fileName, data); err != nil {
		return Saved{}, err
	}

	s.logger.Info("image stored", "name", fileName, "bytes", len(data))
	return Saved{Name: fileName, Size: int64(len(data))}, nil
}

// SaveRaw writes already-encoded bytes under name. Existing files are left
// alone: names are content hashes, so a hit means identical content.
func (s *Store) SaveRaw(name string, data []byte) error {
	if ok, _ := afero.Exists(s.fs, name); ok {
		return nil
	}
	if err := afero.WriteFile(s.fs, name, data, 0644); err != nil {
		return fmt.Errorf("failed to write image %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is stored.
func (s *Store) Exists(name string) bool {
	ok, _ := afero.Exists(s.fs, name)
	return ok
}

// Open returns a reader for the stored file.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("image %s not found: %w", name, err)
	}
	return f, nil
}

// List returns all stored images sorted by name.
func (s *Store) List() ([]Saved, error) {
	infos, err := afero.ReadDir(s.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	var out []Saved
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		out = append(out, Saved{Name: info.Name(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a stored image.
func (s *Store) Delete(name string) error {
	if err := s.fs.Remove(name); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", name, err)
	}
	return nil
}

func encodeWebp(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
