// Packed mesh binary: [u16 vertexCount][vertices][u16 indexCount][u16 indices].
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Mesh format errors.
var (
	ErrTruncatedMeshData = errors.New("truncated mesh data")
	ErrTrailingMeshData  = errors.New("mesh data has trailing bytes")
	ErrMeshTooLarge      = errors.New("mesh section exceeds 65535 records")
)

// VertexSize is the packed size of one Vertex in bytes: five float32 and four uint8.
const VertexSize = 24

// MaxMeshRecords is the largest count a u16 length prefix can hold.
const MaxMeshRecords = math.MaxUint16

// Vertex is one packed vertex record. Field order is the on-disk order.
type Vertex struct {
	X, Y, Z    float32
	U, V       float32
	R, G, B, A uint8
}

// Mesh is a decoded packed mesh.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// WriteTo writes the packed binary form of m to w.
func (m *Mesh) WriteTo(w io.Writer) (int64, error) {
	if len(m.Vertices) > MaxMeshRecords {
		return 0, fmt.Errorf("%w: %d vertices", ErrMeshTooLarge, len(m.Vertices))
	}
	if len(m.Indices) > MaxMeshRecords {
		return 0, fmt.Errorf("%w: %d indices", ErrMeshTooLarge, len(m.Indices))
	}

	le := binary.LittleEndian
	buf := make([]byte, 0, m.Size())
	buf = le.AppendUint16(buf, uint16(len(m.Vertices)))
	for _, v := range m.Vertices {
		for _, f := range [...]float32{v.X, v.Y, v.Z, v.U, v.V} {
			buf = le.AppendUint32(buf, math.Float32bits(f))
		}
		buf = append(buf, v.R, v.G, v.B, v.A)
	}
	buf = le.AppendUint16(buf, uint16(len(m.Indices)))
	for _, idx := range m.Indices {
		buf = le.AppendUint16(buf, idx)
	}

	n, err := w.Write(buf)
	return int64(n), err
}

// MarshalBinary returns the packed binary form of m.
func (m *Mesh) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Size returns the packed size of m in bytes.
func (m *Mesh) Size() int {
	return 2 + len(m.Vertices)*VertexSize + 2 + len(m.Indices)*2
}

// ParseMesh parses a packed mesh binary.
func ParseMesh(data []byte) (*Mesh, error) {
	r := bytes.NewReader(data)

	var vertexCount uint16
	if err := binary.Read(r, binary.LittleEndian, &vertexCount); err != nil {
		return nil, fmt.Errorf("%w: reading vertex count", ErrTruncatedMeshData)
	}
	if r.Len() < int(vertexCount)*VertexSize {
		return nil, fmt.Errorf("%w: %d vertices need %d bytes, %d left",
			ErrTruncatedMeshData, vertexCount, int(vertexCount)*VertexSize, r.Len())
	}
	mesh := &Mesh{Vertices: make([]Vertex, vertexCount)}
	if err := binary.Read(r, binary.LittleEndian, mesh.Vertices); err != nil {
		return nil, fmt.Errorf("%w: reading vertices", ErrTruncatedMeshData)
	}

	var indexCount uint16
	if err := binary.Read(r, binary.LittleEndian, &indexCount); err != nil {
		return nil, fmt.Errorf("%w: reading index count", ErrTruncatedMeshData)
	}
	if r.Len() < int(indexCount)*2 {
		return nil, fmt.Errorf("%w: %d indices need %d bytes, %d left",
			ErrTruncatedMeshData, indexCount, int(indexCount)*2, r.Len())
	}
	mesh.Indices = make([]uint16, indexCount)
	if err := binary.Read(r, binary.LittleEndian, mesh.Indices); err != nil {
		return nil, fmt.Errorf("%w: reading indices", ErrTruncatedMeshData)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingMeshData, r.Len())
	}
	return mesh, nil
}

// ParseMeshFile parses a packed mesh file from disk.
func ParseMeshFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	return ParseMesh(data)
}
