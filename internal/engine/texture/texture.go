// Package texture uploads block-compressed mip chains to the GPU and owns the
// resulting texture handles.
package texture

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/assetforge/internal/logger"
	"github.com/Faultbox/assetforge/pkg/formats"
)

// Upload error kinds, matched with errors.Is against an *UploadError.
var (
	ErrResourceCreationFailed = errors.New("texture resource creation failed")
	ErrInvalidSourceData      = errors.New("invalid texture source data")
	ErrBackendRejected        = errors.New("backend rejected texture upload")
	ErrHandleInvalid          = errors.New("texture handle is invalid")
)

// Backend is the graphics API boundary. Handles are non-zero on success.
// All calls for one handle must come from the thread owning the context.
type Backend interface {
	CreateTexture() (uint32, error)
	UploadCompressed(handle uint32, level int, width, height uint32, format formats.PixelFormat, data []byte) error
	Bind(handle, unit uint32) error
	Release(handle uint32)
}

// UploadError reports a failed texture operation. Level is -1 unless the
// failure belongs to one mip level.
type UploadError struct {
	Path  string
	Kind  error
	Level int
	Err   error
}

func (e *UploadError) Error() string {
	msg := e.Kind.Error()
	if e.Level >= 0 {
		msg = fmt.Sprintf("%s at mip level %d", msg, e.Level)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *UploadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Texture owns one backend texture. A zero id means nothing is owned.
type Texture struct {
	path    string
	id      uint32
	levels  int
	backend Backend
}

// CreateFromBlocks creates a texture and uploads every mip level of img.
// On failure no backend resource is left allocated and the returned texture is nil.
func CreateFromBlocks(backend Backend, path string, img formats.BlockImage) (*Texture, error) {
	id, err := backend.CreateTexture()
	if err != nil || id == 0 {
		if err == nil {
			err = errors.New("backend returned a zero handle")
		}
		return nil, &UploadError{Path: path, Kind: ErrResourceCreationFailed, Level: -1, Err: err}
	}

	log := logger.Named("texture").With(zap.String("path", path), zap.Uint32("id", id))

	levels, err := sourceLevels(img)
	if err != nil {
		backend.Release(id)
		log.Error("invalid texture data", zap.Error(err))
		return nil, &UploadError{Path: path, Kind: ErrInvalidSourceData, Level: -1, Err: err}
	}

	for _, lvl := range levels {
		if err := backend.UploadCompressed(id, lvl.Index, lvl.Width, lvl.Height, img.Format, lvl.Bytes(img.ImageData)); err != nil {
			backend.Release(id)
			log.Error("mip level upload failed", zap.Int("level", lvl.Index), zap.Error(err))
			return nil, &UploadError{Path: path, Kind: ErrBackendRejected, Level: lvl.Index, Err: err}
		}
		log.Debug("mip level uploaded",
			zap.Int("level", lvl.Index),
			zap.Uint32("width", lvl.Width),
			zap.Uint32("height", lvl.Height),
			zap.Uint64("offset", lvl.Offset),
			zap.Uint64("bytes", lvl.Length),
		)
	}

	log.Info("texture created",
		zap.Stringer("format", img.Format),
		zap.Uint32("width", img.Width),
		zap.Uint32("height", img.Height),
		zap.Int("levels", len(levels)),
	)
	return &Texture{path: path, id: id, levels: len(levels), backend: backend}, nil
}

// sourceLevels computes the whole chain up front so that no level is uploaded
// from a payload that is corrupt further down.
func sourceLevels(img formats.BlockImage) ([]formats.MipLevel, error) {
	if img.ImageData == nil {
		return nil, errors.New("no image data")
	}
	return formats.ComputeMipChain(img)
}

// ID returns the backend handle, or zero once released.
func (t *Texture) ID() uint32 {
	return t.id
}

// Path returns the source path the texture was created from.
func (t *Texture) Path() string {
	return t.path
}

// Levels returns the number of uploaded mip levels.
func (t *Texture) Levels() int {
	return t.levels
}

// Bind makes the texture active on the given texture unit.
func (t *Texture) Bind(unit uint32) error {
	if t == nil || t.id == 0 {
		path := ""
		if t != nil {
			path = t.path
		}
		return &UploadError{Path: path, Kind: ErrHandleInvalid, Level: -1}
	}
	if err := t.backend.Bind(t.id, unit); err != nil {
		return &UploadError{Path: t.path, Kind: ErrBackendRejected, Level: -1, Err: err}
	}
	return nil
}

// Release frees the backend texture. Releasing twice is a no-op.
func (t *Texture) Release() {
	if t == nil || t.id == 0 {
		return
	}
	t.backend.Release(t.id)
	logger.Debug("texture released", zap.String("path", t.path), zap.Uint32("id", t.id))
	t.id = 0
}
