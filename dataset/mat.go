package dataset

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"unsafe"

	"github.com/hupe1980/annrecall/blobstore"
)

// ErrInvalidMatrix is returned when a matrix blob's size is not a whole number of rows.
var ErrInvalidMatrix = errors.New("dataset: matrix size is not a multiple of the row size")

// ErrIDNotRowIndex is returned by EncodeMat when an identifier differs from its row.
type ErrIDNotRowIndex struct {
	Row int
	ID  uint32
}

func (e *ErrIDNotRowIndex) Error() string {
	return fmt.Sprintf("dataset: row %d has identifier %d; matrix identifiers are row indices", e.Row, e.ID)
}

var littleEndianHost = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Mat is a row-major float32 matrix. Row i has identifier i.
type Mat struct {
	dim   int
	rows  int
	data  []float32
	close func() error
}

var _ Dataset = (*Mat)(nil)

// NewMat interprets raw as a little-endian float32 matrix with dim columns.
// When the host is little-endian and raw is 4-byte aligned the bytes are used
// in place; raw must then outlive the Mat and must not be modified.
func NewMat(raw []byte, dim int) (*Mat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dataset: invalid dimension %d", dim)
	}
	rowSize := 4 * dim
	if len(raw)%rowSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes, %d bytes per row", ErrInvalidMatrix, len(raw), rowSize)
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	n := len(raw) / 4
	var data []float32
	if littleEndianHost && uintptr(unsafe.Pointer(&raw[0]))%4 == 0 {
		data = unsafe.Slice((*float32)(unsafe.Pointer(&raw[0])), n)
	} else {
		data = make([]float32, n)
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	}

	return &Mat{dim: dim, rows: len(raw) / rowSize, data: data}, nil
}

// OpenMat opens a matrix blob. Uncompressed blobs from a mapping store are
// used without copying and stay open until Close.
func OpenMat(ctx context.Context, store blobstore.Store, name string, dim int) (*Mat, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	c := CompressionFor(name)
	if c == CompressionNone {
		raw, err := blobstore.ReadAll(ctx, blob)
		if err != nil {
			_ = blob.Close()
			return nil, err
		}
		m, err := NewMat(raw, dim)
		if err != nil {
			_ = blob.Close()
			return nil, err
		}
		m.close = blob.Close
		return m, nil
	}

	defer func() { _ = blob.Close() }()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	r, err := Decompress(rc, c)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewMat(raw, dim)
}

// Close releases the underlying blob, if any. The Mat must not be used afterwards.
func (m *Mat) Close() error {
	if m.close == nil {
		return nil
	}
	err := m.close()
	m.close = nil
	return err
}

// Len implements Dataset.
func (m *Mat) Len() int {
	return m.rows
}

// Dimension implements Dataset.
func (m *Mat) Dimension() int {
	return m.dim
}

// At implements Dataset.
func (m *Mat) At(i int) (uint32, []float32) {
	off := i * m.dim
	return uint32(i), m.data[off : off+m.dim : off+m.dim]
}

// All implements Dataset.
func (m *Mat) All() iter.Seq2[uint32, []float32] {
	return all(m)
}

// EncodeMat serializes ds as a little-endian float32 matrix.
// Identifiers must equal their row index.
func EncodeMat(ds Dataset) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 4*ds.Len()*ds.Dimension()))
	var word [4]byte
	row := 0
	for id, vec := range ds.All() {
		if id != uint32(row) {
			return nil, &ErrIDNotRowIndex{Row: row, ID: id}
		}
		for _, f := range vec {
			binary.LittleEndian.PutUint32(word[:], math.Float32bits(f))
			buf.Write(word[:])
		}
		row++
	}
	return buf.Bytes(), nil
}

// WriteMat encodes ds and stores it under name, compressing by name suffix.
func WriteMat(ctx context.Context, store blobstore.Store, name string, ds Dataset) error {
	raw, err := EncodeMat(ds)
	if err != nil {
		return err
	}
	raw, err = Compress(raw, CompressionFor(name))
	if err != nil {
		return err
	}
	return store.Put(ctx, name, raw)
}
