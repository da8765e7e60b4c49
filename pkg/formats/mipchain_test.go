package formats

import (
	"errors"
	"testing"
)

func TestPixelFormat_BlockSize(t *testing.T) {
	tests := []struct {
		format  PixelFormat
		want    uint64
		wantErr bool
	}{
		{FormatBC1, 8, false},
		{FormatBC3, 16, false},
		{FormatUnknown, 0, true},
		{PixelFormat(42), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			got, err := tt.format.BlockSize()
			if (err != nil) != tt.wantErr {
				t.Fatalf("BlockSize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BlockSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLevelSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		format        PixelFormat
		want          uint64
	}{
		{"bc1 8x8", 8, 8, FormatBC1, 4 * 8},
		{"bc3 8x8", 8, 8, FormatBC3, 4 * 16},
		{"bc1 1x1 rounds up to one block", 1, 1, FormatBC1, 8},
		{"bc3 5x3 rounds up", 5, 3, FormatBC3, 2 * 1 * 16},
		{"bc1 256x128", 256, 128, FormatBC1, 64 * 32 * 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LevelSize(tt.width, tt.height, tt.format)
			if err != nil {
				t.Fatalf("LevelSize: %v", err)
			}
			if got != tt.want {
				t.Errorf("LevelSize(%d, %d, %s) = %d, want %d", tt.width, tt.height, tt.format, got, tt.want)
			}
		})
	}
}

// chainSize sums the level sizes of a count-level chain starting at width x height.
func chainSize(t *testing.T, width, height, count uint32, format PixelFormat) uint64 {
	t.Helper()
	var total uint64
	for i := uint32(0); i < count; i++ {
		size, err := LevelSize(width, height, format)
		if err != nil {
			t.Fatalf("LevelSize: %v", err)
		}
		total += size
		width = max(width/2, 1)
		height = max(height/2, 1)
	}
	return total
}

func TestComputeMipChain_Dimensions(t *testing.T) {
	img := BlockImage{Width: 8, Height: 8, Format: FormatBC1, MipLevelCount: 4}
	img.ImageDataSize = chainSize(t, 8, 8, 4, FormatBC1)

	levels, err := ComputeMipChain(img)
	if err != nil {
		t.Fatalf("ComputeMipChain: %v", err)
	}

	want := [][2]uint32{{8, 8}, {4, 4}, {2, 2}, {1, 1}}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(levels))
	}
	for i, lvl := range levels {
		if lvl.Index != i {
			t.Errorf("level %d: index %d", i, lvl.Index)
		}
		if lvl.Width != want[i][0] || lvl.Height != want[i][1] {
			t.Errorf("level %d: expected %dx%d, got %dx%d", i, want[i][0], want[i][1], lvl.Width, lvl.Height)
		}
	}
}

func TestComputeMipChain_NonSquareClampsToOne(t *testing.T) {
	img := BlockImage{Width: 16, Height: 2, Format: FormatBC3, MipLevelCount: 5}
	img.ImageDataSize = chainSize(t, 16, 2, 5, FormatBC3)

	levels, err := ComputeMipChain(img)
	if err != nil {
		t.Fatalf("ComputeMipChain: %v", err)
	}

	want := [][2]uint32{{16, 2}, {8, 1}, {4, 1}, {2, 1}, {1, 1}}
	for i, lvl := range levels {
		if lvl.Width != want[i][0] || lvl.Height != want[i][1] {
			t.Errorf("level %d: expected %dx%d, got %dx%d", i, want[i][0], want[i][1], lvl.Width, lvl.Height)
		}
		if lvl.Width == 0 || lvl.Height == 0 {
			t.Errorf("level %d has zero dimension", i)
		}
	}
}

func TestComputeMipChain_RoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		levels        uint32
		format        PixelFormat
	}{
		{"bc1 single level", 64, 64, 1, FormatBC1},
		{"bc1 full chain", 256, 256, 9, FormatBC1},
		{"bc3 full chain", 128, 32, 8, FormatBC3},
		{"bc3 odd size", 100, 60, 7, FormatBC3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sizes []uint64
			w, h := tt.width, tt.height
			var total uint64
			for i := uint32(0); i < tt.levels; i++ {
				size, _ := LevelSize(w, h, tt.format)
				sizes = append(sizes, size)
				total += size
				w, h = max(w/2, 1), max(h/2, 1)
			}

			img := BlockImage{
				Width:         tt.width,
				Height:        tt.height,
				Format:        tt.format,
				MipLevelCount: tt.levels,
				ImageData:     make([]byte, total),
				ImageDataSize: total,
			}

			levels, err := ComputeMipChain(img)
			if err != nil {
				t.Fatalf("ComputeMipChain: %v", err)
			}
			if len(levels) != len(sizes) {
				t.Fatalf("expected %d levels, got %d", len(sizes), len(levels))
			}

			var sum, offset uint64
			for i, lvl := range levels {
				if lvl.Length != sizes[i] {
					t.Errorf("level %d: length %d, want %d", i, lvl.Length, sizes[i])
				}
				if lvl.Offset != offset {
					t.Errorf("level %d: offset %d, want %d", i, lvl.Offset, offset)
				}
				if got := len(lvl.Bytes(img.ImageData)); uint64(got) != lvl.Length {
					t.Errorf("level %d: Bytes returned %d bytes, want %d", i, got, lvl.Length)
				}
				offset = lvl.End()
				sum += lvl.Length
			}
			if sum != img.ImageDataSize {
				t.Errorf("sum of level lengths %d != image size %d", sum, img.ImageDataSize)
			}
		})
	}
}

func TestComputeMipChain_OffByOne(t *testing.T) {
	total := chainSize(t, 32, 32, 6, FormatBC1)

	tests := []struct {
		name    string
		size    uint64
		wantErr error
	}{
		{"exact", total, nil},
		{"one byte short", total - 1, ErrTruncatedData},
		{"one byte long", total + 1, ErrTrailingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := BlockImage{Width: 32, Height: 32, Format: FormatBC1, MipLevelCount: 6, ImageDataSize: tt.size}
			_, err := ComputeMipChain(img)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrCorruptData) {
				t.Errorf("expected error to match ErrCorruptData: %v", err)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %T", err)
			}
		})
	}
}

func TestComputeMipChain_TruncatedReportsLevel(t *testing.T) {
	// Room for the first two levels of 16x16 BC1 (128 + 32 bytes) but not the third.
	img := BlockImage{Width: 16, Height: 16, Format: FormatBC1, MipLevelCount: 5, ImageDataSize: 160}

	_, err := ComputeMipChain(img)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
	if fe.Level != 2 {
		t.Errorf("expected failure at level 2, got %d", fe.Level)
	}
	if !errors.Is(err, ErrTruncatedData) {
		t.Errorf("expected ErrTruncatedData, got %v", err)
	}
}

func TestComputeMipChain_UnsupportedFormat(t *testing.T) {
	img := BlockImage{Width: 4, Height: 4, Format: FormatUnknown, MipLevelCount: 1, ImageDataSize: 8}

	_, err := ComputeMipChain(img)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if errors.Is(err, ErrCorruptData) {
		t.Error("unsupported format must not be reported as corrupt data")
	}
}

func TestComputeMipChain_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		img     BlockImage
		wantErr error
	}{
		{
			name:    "zero width",
			img:     BlockImage{Width: 0, Height: 4, Format: FormatBC1, MipLevelCount: 1, ImageDataSize: 8},
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "too wide",
			img:     BlockImage{Width: MaxDimension + 1, Height: 4, Format: FormatBC1, MipLevelCount: 1, ImageDataSize: 8},
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "more levels than a 4x4 chain has",
			img:     BlockImage{Width: 4, Height: 4, Format: FormatBC1, MipLevelCount: 1000, ImageDataSize: 8000},
			wantErr: ErrTooManyLevels,
		},
		{
			name:    "one level past a full non-square chain",
			img:     BlockImage{Width: 16, Height: 2, Format: FormatBC1, MipLevelCount: 6, ImageDataSize: 64},
			wantErr: ErrTooManyLevels,
		},
		{
			name:    "buffer shorter than declared",
			img:     BlockImage{Width: 4, Height: 4, Format: FormatBC1, MipLevelCount: 1, ImageData: make([]byte, 7), ImageDataSize: 8},
			wantErr: ErrSizeMismatch,
		},
		{
			name:    "no levels but payload present",
			img:     BlockImage{Width: 4, Height: 4, Format: FormatBC1, MipLevelCount: 0, ImageDataSize: 8},
			wantErr: ErrTrailingData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeMipChain(tt.img)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMipIterator_Lazy(t *testing.T) {
	img := BlockImage{Width: 8, Height: 8, Format: FormatBC3, MipLevelCount: 4}
	img.ImageDataSize = chainSize(t, 8, 8, 4, FormatBC3)

	it := NewMipIterator(img)
	if !it.Next() {
		t.Fatalf("expected first level, err=%v", it.Err())
	}
	first := it.Level()
	if first.Index != 0 || first.Offset != 0 || first.Length != 64 {
		t.Errorf("unexpected first level: %+v", first)
	}

	count := 1
	for it.Next() {
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 levels, got %d", count)
	}
	if it.Next() {
		t.Error("Next should stay false after exhaustion")
	}
}

func TestMaxMipLevels(t *testing.T) {
	tests := []struct {
		width, height uint32
		want          uint32
	}{
		{1, 1, 1},
		{4, 4, 3},
		{8, 8, 4},
		{16, 2, 5},
		{100, 60, 7},
		{256, 256, 9},
		{MaxDimension, 1, 17},
	}

	for _, tt := range tests {
		if got := MaxMipLevels(tt.width, tt.height); got != tt.want {
			t.Errorf("MaxMipLevels(%d, %d) = %d, want %d", tt.width, tt.height, got, tt.want)
		}
	}
}

func TestComputeMipChain_FullChainAccepted(t *testing.T) {
	// 4x4 BC1 full chain: 4x4, 2x2, 1x1 at one block each.
	img := BlockImage{Width: 4, Height: 4, Format: FormatBC1, MipLevelCount: 3, ImageDataSize: 24}
	levels, err := ComputeMipChain(img)
	if err != nil {
		t.Fatalf("ComputeMipChain: %v", err)
	}
	if len(levels) != 3 {
		t.Errorf("expected 3 levels, got %d", len(levels))
	}

	img.MipLevelCount = 4
	img.ImageDataSize = 32
	if _, err := ComputeMipChain(img); !errors.Is(err, ErrTooManyLevels) {
		t.Errorf("expected ErrTooManyLevels, got %v", err)
	}
}
