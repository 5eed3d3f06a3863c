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

package collective

import (
	"golang.org/x/exp/slices"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
)

// checkBuffers verifies that the given buffers may participate in one
// collective: the list is nonempty and no larger than the number of local
// devices, every buffer is dense and contiguous, element types match,
// shapes match when the operation requires symmetric shapes, device types
// match, and the buffers sit on pairwise-distinct devices.  It returns the
// common device type.  Pure; retains no state.
func checkBuffers(buffers []*Buffer, deviceCount int, symmetricShapes bool) (engine.DeviceType, error) {
	if len(buffers) == 0 {
		return 0, status.Error(codes.InvalidArgument, "buffer list must be nonempty")
	}
	if len(buffers) > deviceCount {
		return 0, status.Error(codes.InvalidArgument,
			"buffer list must not be larger than the number of available devices")
	}

	first := buffers[0]
	used := make(map[engine.Device]struct{}, len(buffers))

	for _, b := range buffers {
		if b.Sparse {
			return 0, status.Error(codes.InvalidArgument, "buffers must be dense")
		}
		if b.Elem != first.Elem {
			return 0, status.Error(codes.InvalidArgument, "buffers must have identical element type")
		}
		if symmetricShapes && !slices.Equal(b.Shape, first.Shape) {
			return 0, status.Error(codes.InvalidArgument, "buffers must have identical shape")
		}
		if !b.Contiguous {
			return 0, status.Error(codes.InvalidArgument, "buffers must be contiguous")
		}
		if b.Device.Type != first.Device.Type {
			return 0, status.Error(codes.InvalidArgument, "buffers must be on the same device type")
		}
		if _, ok := used[b.Device]; ok {
			return 0, status.Error(codes.InvalidArgument, "buffers must be on distinct devices")
		}
		used[b.Device] = struct{}{}
	}

	return first.Device.Type, nil
}

// checkSingleBuffer verifies that exactly one dense, contiguous buffer was
// supplied, as required by operations driving one device per process.
func checkSingleBuffer(buffers []*Buffer) (*Buffer, error) {
	if len(buffers) != 1 {
		return nil, status.Errorf(codes.InvalidArgument,
			"expected exactly one buffer per process, got %d", len(buffers))
	}
	b := buffers[0]
	if b.Sparse {
		return nil, status.Error(codes.InvalidArgument, "buffers must be dense")
	}
	if !b.Contiguous {
		return nil, status.Error(codes.InvalidArgument, "buffers must be contiguous")
	}
	return b, nil
}

// devicesOf returns the ordered device set the given buffers occupy.
func devicesOf(buffers []*Buffer) []engine.Device {
	devices := make([]engine.Device, 0, len(buffers))
	for _, b := range buffers {
		devices = append(devices, b.Device)
	}
	return devices
}
