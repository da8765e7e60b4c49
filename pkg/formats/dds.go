// DDS (DirectDraw Surface) container parser for block-compressed textures.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// DDS format errors.
var (
	ErrInvalidDDSMagic    = errors.New("invalid DDS magic: expected 'DDS '")
	ErrTruncatedDDSHeader = errors.New("truncated DDS header")
)

const (
	ddsMagic       = "DDS "
	ddsHeaderSize  = 124
	ddsDX10Size    = 20
	ddsPixelFormat = 0x4 // DDPF_FOURCC
)

// DXGI formats accepted through the DX10 extension header.
const (
	dxgiBC1UNorm     = 71
	dxgiBC1UNormSRGB = 72
	dxgiBC3UNorm     = 77
	dxgiBC3UNormSRGB = 78
)

type ddsPixelFormatHeader struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type ddsHeader struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       ddsPixelFormatHeader
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

type ddsDX10Header struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// DDS is a parsed DDS file. Image shares memory with the input buffer.
type DDS struct {
	FourCC string
	Image  BlockImage
}

// ParseDDS parses the DDS framing and returns the block image it carries.
// Only the header is validated here; mip chain layout is checked by ComputeMipChain.
func ParseDDS(data []byte) (*DDS, error) {
	if len(data) < 4 {
		return nil, ErrTruncatedDDSHeader
	}
	if string(data[:4]) != ddsMagic {
		return nil, ErrInvalidDDSMagic
	}
	if len(data) < 4+ddsHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedDDSHeader, len(data))
	}

	r := bytes.NewReader(data[4:])
	var hdr ddsHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedDDSHeader, err)
	}
	if hdr.Size != ddsHeaderSize {
		return nil, fmt.Errorf("%w: header size %d", ErrTruncatedDDSHeader, hdr.Size)
	}

	payload := 4 + ddsHeaderSize
	fourCC := string(hdr.PixelFormat.FourCC[:])
	format := FormatUnknown

	if hdr.PixelFormat.Flags&ddsPixelFormat != 0 {
		switch fourCC {
		case "DXT1":
			format = FormatBC1
		case "DXT5":
			format = FormatBC3
		case "DX10":
			var ext ddsDX10Header
			if err := binary.Read(r, binary.LittleEndian, &ext); err != nil {
				return nil, fmt.Errorf("%w: reading DX10 header", ErrTruncatedDDSHeader)
			}
			payload += ddsDX10Size
			switch ext.DXGIFormat {
			case dxgiBC1UNorm, dxgiBC1UNormSRGB:
				format = FormatBC1
			case dxgiBC3UNorm, dxgiBC3UNormSRGB:
				format = FormatBC3
			default:
				return nil, fmt.Errorf("%w: DXGI format %d", ErrUnsupportedFormat, ext.DXGIFormat)
			}
		}
	}
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: fourCC %q", ErrUnsupportedFormat, fourCC)
	}

	mipCount := hdr.MipMapCount
	if mipCount == 0 {
		mipCount = 1
	}

	image := data[payload:]
	return &DDS{
		FourCC: fourCC,
		Image: BlockImage{
			Width:         hdr.Width,
			Height:        hdr.Height,
			Format:        format,
			MipLevelCount: mipCount,
			ImageData:     image,
			ImageDataSize: uint64(len(image)),
		},
	}, nil
}

// ParseDDSFile parses a DDS file from disk.
func ParseDDSFile(path string) (*DDS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DDS file: %w", err)
	}
	return ParseDDS(data)
}

// DDS header flags written by WriteDDS.
const (
	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPixelFormat = 0x1000
	ddsdMipMapCount = 0x20000
	ddsdLinearSize  = 0x80000

	ddsCapsTexture = 0x1000
	ddsCapsMipMap  = 0x400000
	ddsCapsComplex = 0x8
)

// WriteDDS writes img as a DDS file with a DXT1 or DXT5 fourCC header.
func WriteDDS(w io.Writer, img BlockImage) error {
	var fourCC string
	switch img.Format {
	case FormatBC1:
		fourCC = "DXT1"
	case FormatBC3:
		fourCC = "DXT5"
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, img.Format)
	}
	top, err := LevelSize(img.Width, img.Height, img.Format)
	if err != nil {
		return err
	}

	hdr := ddsHeader{
		Size:              ddsHeaderSize,
		Flags:             ddsdCaps | ddsdHeight | ddsdWidth | ddsdPixelFormat | ddsdLinearSize,
		Height:            img.Height,
		Width:             img.Width,
		PitchOrLinearSize: uint32(top),
		MipMapCount:       img.MipLevelCount,
		Caps:              ddsCapsTexture,
	}
	if img.MipLevelCount > 1 {
		hdr.Flags |= ddsdMipMapCount
		hdr.Caps |= ddsCapsMipMap | ddsCapsComplex
	}
	hdr.PixelFormat.Size = 32
	hdr.PixelFormat.Flags = ddsPixelFormat
	copy(hdr.PixelFormat.FourCC[:], fourCC)

	if _, err := io.WriteString(w, ddsMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	_, err = w.Write(img.ImageData)
	return err
}
