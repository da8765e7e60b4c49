package texture

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/assetforge/pkg/formats"
)

// S3TC internal formats (EXT_texture_compression_s3tc), absent from the core profile bindings.
const (
	glCompressedRGBS3TCDXT1  = 0x83F0
	glCompressedRGBAS3TCDXT5 = 0x83F3
)

var glInternalFormats = map[formats.PixelFormat]uint32{
	formats.FormatBC1: glCompressedRGBS3TCDXT1,
	formats.FormatBC3: glCompressedRGBAS3TCDXT5,
}

// GLBackend uploads textures through OpenGL. gl.Init must have been called
// on the current thread with a context bound.
type GLBackend struct{}

// NewGLBackend returns an OpenGL backend for the current context.
func NewGLBackend() *GLBackend {
	return &GLBackend{}
}

// CreateTexture generates a 2D texture name and sets its sampling state.
func (GLBackend) CreateTexture() (uint32, error) {
	var texID uint32
	gl.GenTextures(1, &texID)
	if texID == 0 {
		return 0, fmt.Errorf("glGenTextures returned no name (GL error 0x%X)", gl.GetError())
	}
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := checkError("create texture"); err != nil {
		gl.DeleteTextures(1, &texID)
		return 0, err
	}
	return texID, nil
}

// UploadCompressed stores one mip level and raises TEXTURE_MAX_LEVEL to it.
func (GLBackend) UploadCompressed(handle uint32, level int, width, height uint32, format formats.PixelFormat, data []byte) error {
	internal, ok := glInternalFormats[format]
	if !ok {
		return fmt.Errorf("%w: %s", formats.ErrUnsupportedFormat, format)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty level data")
	}

	gl.BindTexture(gl.TEXTURE_2D, handle)
	defer gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.CompressedTexImage2D(gl.TEXTURE_2D, int32(level), internal,
		int32(width), int32(height), 0, int32(len(data)), gl.Ptr(data))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(level))
	return checkError("glCompressedTexImage2D")
}

// Bind activates texture unit GL_TEXTURE0+unit and binds the handle to it.
func (GLBackend) Bind(handle, unit uint32) error {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, handle)
	return checkError("bind texture")
}

// Release deletes the texture name.
func (GLBackend) Release(handle uint32) {
	gl.DeleteTextures(1, &handle)
}

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%X", op, code)
	}
	return nil
}
