// Copyright 2024 The Concord Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package collective coordinates collective data-exchange operations across
// the ranks of a process group, each owning one accelerator device.  It
// validates the participating buffers, reconciles irregular per-rank payload
// layouts onto the flat transfers the underlying engine understands, caches
// one communicator per device set, and wraps every submitted operation as an
// asynchronous Work the caller awaits.
package collective

import (
	"fmt"
	"unsafe"

	"github.com/concord-ml/concord/engine"
	"github.com/x448/float16"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Scalar enumerates the element types a Buffer can hold.
type Scalar interface {
	~uint8 | ~int8 | ~int32 | ~int64 | ~float32 | ~float64 | float16.Float16
}

// Buffer describes one dense, device-resident buffer participating in a
// collective.  Its descriptor fields are fixed for the duration of an
// operation.
type Buffer struct {
	// Data is the raw buffer content in element order.
	Data []byte

	// Elem is the element type.
	Elem engine.Datatype

	// Shape holds the dimension sizes, leading dimension first.
	Shape []int

	// Device is the owning device.
	Device engine.Device

	// Contiguous reports whether the elements are laid out densely in
	// row-major order without gaps.
	Contiguous bool

	// Sparse marks a sparse buffer; collectives require dense buffers.
	Sparse bool

	// parent is set when this buffer is a view into a flattened parent,
	// starting offset elements in.  View metadata is what makes "already
	// flat" detection provable rather than assumed.
	parent *Buffer
	offset int
}

func dtypeOf[T Scalar]() engine.Datatype {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return engine.Uint8
	case int8:
		return engine.Int8
	case int32:
		return engine.Int32
	case int64:
		return engine.Int64
	case float16.Float16:
		return engine.Float16
	case float32:
		return engine.Float32
	case float64:
		return engine.Float64
	default:
		panic(fmt.Sprintf("collective: unsupported scalar type %T", zero))
	}
}

func newBuffer(dtype engine.Datatype, device engine.Device, shape ...int) *Buffer {
	elements := 1
	for _, dim := range shape {
		elements *= dim
	}
	return &Buffer{
		Data:       make([]byte, elements*dtype.Size()),
		Elem:       dtype,
		Shape:      shape,
		Device:     device,
		Contiguous: true,
	}
}

// Zeros allocates a zero-filled buffer of the given shape on device.
func Zeros[T Scalar](device engine.Device, shape ...int) *Buffer {
	return newBuffer(dtypeOf[T](), device, shape...)
}

// FromSlice allocates a buffer of the given shape on device, initialized
// with a copy of data.  The shape must account for exactly len(data)
// elements.
func FromSlice[T Scalar](device engine.Device, data []T, shape ...int) *Buffer {
	b := newBuffer(dtypeOf[T](), device, shape...)
	if b.Len() != len(data) {
		panic(fmt.Sprintf("collective: shape %v does not hold %d elements", shape, len(data)))
	}
	copy(b.Data, unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(b.Data)))
	return b
}

// AsSlice reinterprets the buffer content as a slice of T, sharing the
// underlying storage.
func AsSlice[T Scalar](b *Buffer) []T {
	if dtypeOf[T]() != b.Elem {
		panic(fmt.Sprintf("collective: buffer holds %s elements", b.Elem))
	}
	if b.Len() == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b.Data))), b.Len())
}

// Len returns the number of elements in the buffer.
func (b *Buffer) Len() int {
	elements := 1
	for _, dim := range b.Shape {
		elements *= dim
	}
	return elements
}

// stride returns the number of elements covered by one leading-dimension
// index.
func (b *Buffer) stride() int {
	if len(b.Shape) == 0 || b.Shape[0] == 0 {
		return 0
	}
	return b.Len() / b.Shape[0]
}

// Split returns views of b partitioned along the leading dimension by the
// given element counts.  The views share b's storage; counts must sum to
// b.Len().
func (b *Buffer) Split(counts []int) ([]*Buffer, error) {
	total := 0
	for _, count := range counts {
		if count < 0 {
			return nil, status.Error(codes.InvalidArgument, "split counts must be non-negative")
		}
		total += count
	}
	if total != b.Len() {
		return nil, status.Errorf(codes.InvalidArgument,
			"split counts sum to %d, buffer holds %d elements", total, b.Len())
	}

	views := make([]*Buffer, 0, len(counts))
	offset := 0
	for _, count := range counts {
		views = append(views, &Buffer{
			Data:       b.Data[offset*b.Elem.Size() : (offset+count)*b.Elem.Size()],
			Elem:       b.Elem,
			Shape:      []int{count},
			Device:     b.Device,
			Contiguous: true,
			parent:     b,
			offset:     offset,
		})
		offset += count
	}
	return views, nil
}
