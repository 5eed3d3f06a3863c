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

package engine

import "fmt"

// DeviceType identifies a kind of device.
type DeviceType uint8

const (
	CPU DeviceType = iota
	XPU
)

func (t DeviceType) String() string {
	switch t {
	case CPU:
		return "cpu"
	case XPU:
		return "xpu"
	default:
		return "unknown"
	}
}

// Device identifies one device of the local process.
type Device struct {
	Type  DeviceType
	Index int
}

func (d Device) String() string {
	return fmt.Sprintf("%s:%d", d.Type, d.Index)
}

// Datatype tags the element type of a transfer.
type Datatype uint8

const (
	Uint8 Datatype = iota
	Int8
	Int32
	Int64
	Float16
	Float32
	Float64
)

// Size returns the size of one element in bytes.
func (d Datatype) Size() int {
	switch d {
	case Uint8, Int8:
		return 1
	case Float16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		panic("engine: invalid datatype")
	}
}

func (d Datatype) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Int8:
		return "int8"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "invalid"
	}
}

// ReduceOp tags the operator of a reduction collective.  The numerical
// semantics belong to the communication library; Concord only forwards the
// tag.
type ReduceOp uint8

const (
	Sum ReduceOp = iota
	Prod
	Min
	Max
)

func (o ReduceOp) String() string {
	switch o {
	case Sum:
		return "sum"
	case Prod:
		return "prod"
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return "invalid"
	}
}
