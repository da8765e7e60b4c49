// Package meshbuild packs structured mesh assets into the packed mesh binary.
//
// An asset is a table with three sequences:
//
//	vertices           = { {x, y, z, r, g, b}, ... }  -- colors in [0, 1]
//	texturecoordinates = { {u, v}, ... }              -- one per vertex
//	indices            = { i0, i1, i2, ... }          -- vertex indices from 0
package meshbuild

import (
	"errors"
	"fmt"

	"github.com/Faultbox/assetforge/pkg/formats"
	"github.com/Faultbox/assetforge/pkg/records"
)

// Build error kinds, matched with errors.Is against a *BuildError.
var (
	ErrMissingVertices       = errors.New("invalid vertices section")
	ErrMissingTexCoords      = errors.New("invalid texturecoordinates section")
	ErrMissingIndices        = errors.New("invalid indices section")
	ErrSectionLengthMismatch = errors.New("vertices and texturecoordinates differ in length")
	ErrTooManyRecords        = errors.New("section has more than 65535 records")
	ErrIndexOutOfRange       = errors.New("index does not reference a vertex")
	ErrUnsupportedSource     = errors.New("unsupported asset source")
	ErrSourceFailed          = errors.New("asset source could not be loaded")
	ErrWriteFailed           = errors.New("writing mesh failed")
)

// Section keys in the asset table.
const (
	KeyVertices  = "vertices"
	KeyTexCoords = "texturecoordinates"
	KeyIndices   = "indices"
)

// BuildError reports a mesh build failure. Path is empty when the mesh was
// packed from an in-memory table.
type BuildError struct {
	Path string
	Kind error
	Err  error
}

func (e *BuildError) Error() string {
	msg := e.Kind.Error()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *BuildError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func buildErr(kind, err error) *BuildError {
	return &BuildError{Kind: kind, Err: err}
}

// Options controls how a mesh is packed.
type Options struct {
	// Mirrored reverses triangle winding and shifts texture coordinates by -1,
	// matching the left-handed target's conventions.
	Mirrored bool
}

// Packer converts asset tables into meshes.
type Packer struct {
	opts Options
}

// NewPacker creates a packer.
func NewPacker(opts Options) *Packer {
	return &Packer{opts: opts}
}

// Mesh walks root and returns the mesh it describes.
func (p *Packer) Mesh(src records.Source, root records.Value) (*formats.Mesh, error) {
	vertices, err := p.readVertices(src, root)
	if err != nil {
		return nil, err
	}
	if err := p.readTexCoords(src, root, vertices); err != nil {
		return nil, err
	}
	indices, err := p.readIndices(src, root, len(vertices))
	if err != nil {
		return nil, err
	}
	return &formats.Mesh{Vertices: vertices, Indices: indices}, nil
}

// Pack walks root and returns the packed mesh binary.
func (p *Packer) Pack(src records.Source, root records.Value) ([]byte, error) {
	mesh, err := p.Mesh(src, root)
	if err != nil {
		return nil, err
	}
	data, err := mesh.MarshalBinary()
	if err != nil {
		return nil, buildErr(ErrTooManyRecords, err)
	}
	return data, nil
}

func (p *Packer) readVertices(src records.Source, root records.Value) ([]formats.Vertex, error) {
	table, err := records.NamedTable(src, root, KeyVertices)
	if err != nil {
		return nil, buildErr(ErrMissingVertices, err)
	}
	n := src.Len(table)
	if n > formats.MaxMeshRecords {
		return nil, buildErr(ErrTooManyRecords, fmt.Errorf("%s has %d", KeyVertices, n))
	}

	vertices := make([]formats.Vertex, n)
	err = records.WalkSequence(src, table, func(elem records.Value, i int) error {
		rec, err := records.Element(src, elem, i)
		if err != nil {
			return err
		}
		v := &vertices[i-1]
		if v.X, err = records.Float32(src, rec, 1); err != nil {
			return err
		}
		if v.Y, err = records.Float32(src, rec, 2); err != nil {
			return err
		}
		if v.Z, err = records.Float32(src, rec, 3); err != nil {
			return err
		}
		if v.R, err = records.ColorChannel(src, rec, 4); err != nil {
			return err
		}
		if v.G, err = records.ColorChannel(src, rec, 5); err != nil {
			return err
		}
		if v.B, err = records.ColorChannel(src, rec, 6); err != nil {
			return err
		}
		v.A = 255
		return nil
	})
	if err != nil {
		return nil, buildErr(ErrMissingVertices, err)
	}
	return vertices, nil
}

func (p *Packer) readTexCoords(src records.Source, root records.Value, vertices []formats.Vertex) error {
	table, err := records.NamedTable(src, root, KeyTexCoords)
	if err != nil {
		return buildErr(ErrMissingTexCoords, err)
	}
	if n := src.Len(table); n != len(vertices) {
		return buildErr(ErrSectionLengthMismatch,
			fmt.Errorf("%d vertices, %d texture coordinates", len(vertices), n))
	}

	err = records.WalkSequence(src, table, func(elem records.Value, i int) error {
		rec, err := records.Element(src, elem, i)
		if err != nil {
			return err
		}
		v := &vertices[i-1]
		if v.U, err = records.Float32(src, rec, 1); err != nil {
			return err
		}
		if v.V, err = records.Float32(src, rec, 2); err != nil {
			return err
		}
		if p.opts.Mirrored {
			v.U -= 1
			v.V -= 1
		}
		return nil
	})
	if err != nil {
		return buildErr(ErrMissingTexCoords, err)
	}
	return nil
}

func (p *Packer) readIndices(src records.Source, root records.Value, vertexCount int) ([]uint16, error) {
	table, err := records.NamedTable(src, root, KeyIndices)
	if err != nil {
		return nil, buildErr(ErrMissingIndices, err)
	}
	n := src.Len(table)
	if n > formats.MaxMeshRecords {
		return nil, buildErr(ErrTooManyRecords, fmt.Errorf("%s has %d", KeyIndices, n))
	}

	indices := make([]uint16, n)
	kind := ErrMissingIndices
	err = records.WalkSequence(src, table, func(elem records.Value, i int) error {
		idx, err := records.Uint16(src, elem, i)
		if err != nil {
			return err
		}
		if int(idx) >= vertexCount {
			kind = ErrIndexOutOfRange
			return fmt.Errorf("index %d with %d vertices", idx, vertexCount)
		}
		indices[i-1] = idx
		return nil
	})
	if err != nil {
		return nil, buildErr(kind, err)
	}

	if p.opts.Mirrored {
		for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
			indices[i], indices[j] = indices[j], indices[i]
		}
	}
	return indices, nil
}
