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

package loopback

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"

	"github.com/concord-ml/concord/engine"
)

// reduceInto folds count elements of src into dst element-wise with op.
func reduceInto(dst, src []byte, count int, dtype engine.Datatype, op engine.ReduceOp) error {
	// A zero-element reduction has no bytes to reinterpret.
	if count == 0 {
		return nil
	}
	switch dtype {
	case engine.Uint8:
		return reduceSlice(bytesTo[uint8](dst, count), bytesTo[uint8](src, count), op)
	case engine.Int8:
		return reduceSlice(bytesTo[int8](dst, count), bytesTo[int8](src, count), op)
	case engine.Int32:
		return reduceSlice(bytesTo[int32](dst, count), bytesTo[int32](src, count), op)
	case engine.Int64:
		return reduceSlice(bytesTo[int64](dst, count), bytesTo[int64](src, count), op)
	case engine.Float16:
		return reduceFloat16(bytesTo[uint16](dst, count), bytesTo[uint16](src, count), op)
	case engine.Float32:
		return reduceSlice(bytesTo[float32](dst, count), bytesTo[float32](src, count), op)
	case engine.Float64:
		return reduceSlice(bytesTo[float64](dst, count), bytesTo[float64](src, count), op)
	default:
		return errors.Errorf("loopback: cannot reduce datatype %v", dtype)
	}
}

// bytesTo reinterprets b as a slice of count scalars.
func bytesTo[T any](b []byte, count int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), count)
}

func reduceSlice[T constraints.Integer | constraints.Float](dst, src []T, op engine.ReduceOp) error {
	switch op {
	case engine.Sum:
		for i, v := range src {
			dst[i] += v
		}
	case engine.Prod:
		for i, v := range src {
			dst[i] *= v
		}
	case engine.Min:
		for i, v := range src {
			if v < dst[i] {
				dst[i] = v
			}
		}
	case engine.Max:
		for i, v := range src {
			if v > dst[i] {
				dst[i] = v
			}
		}
	default:
		return errors.Errorf("loopback: unknown reduce op %v", op)
	}
	return nil
}

// reduceFloat16 widens each half to float32, reduces, and narrows back.
func reduceFloat16(dst, src []uint16, op engine.ReduceOp) error {
	for i, bits := range src {
		a := float16.Frombits(dst[i]).Float32()
		b := float16.Frombits(bits).Float32()
		switch op {
		case engine.Sum:
			a += b
		case engine.Prod:
			a *= b
		case engine.Min:
			if b < a {
				a = b
			}
		case engine.Max:
			if b > a {
				a = b
			}
		default:
			return errors.Errorf("loopback: unknown reduce op %v", op)
		}
		dst[i] = float16.Fromfloat32(a).Bits()
	}
	return nil
}
