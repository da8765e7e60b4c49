package formats

import (
	"errors"
	"fmt"
	"math/bits"
)

// Block layout errors.
var (
	// ErrCorruptData is the parent of every error caused by a malformed payload.
	ErrCorruptData = errors.New("corrupt block data")

	ErrTruncatedData     = fmt.Errorf("%w: image data is smaller than its mip chain", ErrCorruptData)
	ErrTrailingData      = fmt.Errorf("%w: image data has bytes past its last mip level", ErrCorruptData)
	ErrSizeMismatch      = fmt.Errorf("%w: buffer length differs from declared image size", ErrCorruptData)
	ErrInvalidDimensions = fmt.Errorf("%w: width or height out of range", ErrCorruptData)
	ErrTooManyLevels     = fmt.Errorf("%w: more mip levels than the dimensions allow", ErrCorruptData)

	// ErrUnsupportedFormat is a caller input error and does not match ErrCorruptData.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
)

// PixelFormat identifies a block-compressed pixel encoding.
type PixelFormat uint8

const (
	FormatUnknown PixelFormat = iota
	FormatBC1                 // DXT1, RGB with 1-bit alpha
	FormatBC3                 // DXT5, RGBA with interpolated alpha
)

const (
	// BlockDim is the edge length in pixels of one compressed block.
	BlockDim = 4

	// MaxDimension bounds width and height so level sizes cannot overflow.
	MaxDimension = 1 << 16
)

// blockSizes maps each supported format to the byte size of one 4x4 block.
var blockSizes = map[PixelFormat]uint64{
	FormatBC1: 8,
	FormatBC3: 16,
}

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatBC1:
		return "BC1"
	case FormatBC3:
		return "BC3"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// BlockSize returns the byte size of one block of this format.
func (f PixelFormat) BlockSize() (uint64, error) {
	size, ok := blockSizes[f]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return size, nil
}

// BlockImage describes a block-compressed image payload and its declared mip chain.
type BlockImage struct {
	Width         uint32
	Height        uint32
	Format        PixelFormat
	MipLevelCount uint32
	ImageData     []byte // may be nil when only the layout is needed
	ImageDataSize uint64
}

// MipLevel is the byte extent of one mip level inside BlockImage.ImageData.
type MipLevel struct {
	Index  int
	Width  uint32
	Height uint32
	Offset uint64
	Length uint64
}

// End returns the offset one past the last byte of the level.
func (l MipLevel) End() uint64 {
	return l.Offset + l.Length
}

// Bytes returns the level's slice of data.
func (l MipLevel) Bytes(data []byte) []byte {
	return data[l.Offset:l.End()]
}

// FormatError reports a mip chain layout failure.
// Level is -1 when the failure is not tied to one level. Corrupt payloads
// match ErrCorruptData; an unknown pixel format matches only ErrUnsupportedFormat.
type FormatError struct {
	Level int
	Err   error
}

func (e *FormatError) Error() string {
	if e.Level < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("mip level %d: %v", e.Level, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// MaxMipLevels returns the length of a full mip chain for a width x height
// image: floor(log2(max(width, height))) + 1.
func MaxMipLevels(width, height uint32) uint32 {
	return uint32(bits.Len32(max(width, height)))
}

// LevelSize returns the byte length of a width x height level in the given format.
func LevelSize(width, height uint32, format PixelFormat) (uint64, error) {
	blockSize, err := format.BlockSize()
	if err != nil {
		return 0, err
	}
	return levelSize(width, height, blockSize), nil
}

func levelSize(width, height uint32, blockSize uint64) uint64 {
	blocksWide := (uint64(width) + BlockDim - 1) / BlockDim
	blocksHigh := (uint64(height) + BlockDim - 1) / BlockDim
	return blocksWide * blocksHigh * blockSize
}

// MipIterator walks a mip chain one level at a time.
//
//	it := NewMipIterator(img)
//	for it.Next() {
//		lvl := it.Level()
//	}
//	if err := it.Err(); err != nil { ... }
type MipIterator struct {
	img       BlockImage
	blockSize uint64
	index     int
	width     uint32
	height    uint32
	cursor    uint64
	level     MipLevel
	err       error
	done      bool
}

// NewMipIterator prepares iteration over img's mip chain.
// Descriptor problems surface from the first call to Next.
func NewMipIterator(img BlockImage) *MipIterator {
	it := &MipIterator{img: img, width: img.Width, height: img.Height}

	blockSize, err := img.Format.BlockSize()
	switch {
	case err != nil:
		it.fail(-1, err)
	case img.Width == 0 || img.Height == 0 || img.Width > MaxDimension || img.Height > MaxDimension:
		it.fail(-1, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, img.Width, img.Height))
	case img.MipLevelCount > MaxMipLevels(img.Width, img.Height):
		it.fail(-1, fmt.Errorf("%w: %d levels declared for %dx%d, at most %d",
			ErrTooManyLevels, img.MipLevelCount, img.Width, img.Height, MaxMipLevels(img.Width, img.Height)))
	case img.ImageData != nil && uint64(len(img.ImageData)) != img.ImageDataSize:
		it.fail(-1, fmt.Errorf("%w: have %d bytes, header declares %d",
			ErrSizeMismatch, len(img.ImageData), img.ImageDataSize))
	}
	it.blockSize = blockSize
	return it
}

func (it *MipIterator) fail(level int, err error) {
	it.err = &FormatError{Level: level, Err: err}
	it.done = true
}

// Next advances to the next level. It returns false when the chain is exhausted
// or an error occurred.
func (it *MipIterator) Next() bool {
	if it.done {
		return false
	}
	if it.index >= int(it.img.MipLevelCount) {
		it.done = true
		if it.cursor != it.img.ImageDataSize {
			it.err = &FormatError{Level: -1, Err: fmt.Errorf("%w: %d of %d bytes used",
				ErrTrailingData, it.cursor, it.img.ImageDataSize)}
		}
		return false
	}

	length := levelSize(it.width, it.height, it.blockSize)
	if it.cursor+length > it.img.ImageDataSize {
		it.fail(it.index, fmt.Errorf("%w: level needs bytes [%d, %d) of %d",
			ErrTruncatedData, it.cursor, it.cursor+length, it.img.ImageDataSize))
		return false
	}

	it.level = MipLevel{
		Index:  it.index,
		Width:  it.width,
		Height: it.height,
		Offset: it.cursor,
		Length: length,
	}
	it.cursor += length
	it.index++
	it.width = max(it.width/2, 1)
	it.height = max(it.height/2, 1)
	return true
}

// Level returns the level produced by the last successful Next.
func (it *MipIterator) Level() MipLevel {
	return it.level
}

// Err returns the first error encountered, if any.
func (it *MipIterator) Err() error {
	return it.err
}

// ComputeMipChain returns every level of img's mip chain, validating that the
// declared image size is exactly the sum of the level sizes.
func ComputeMipChain(img BlockImage) ([]MipLevel, error) {
	levels := make([]MipLevel, 0, min(img.MipLevelCount, 32))
	it := NewMipIterator(img)
	for it.Next() {
		levels = append(levels, it.Level())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return levels, nil
}
