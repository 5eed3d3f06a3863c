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
	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
)

// SplitSpec carries the per-rank element counts governing how a flattened
// buffer is apportioned across the participants of an irregular collective,
// plus the staging buffer when one had to be allocated.  Computed per call,
// never cached.
type SplitSpec struct {
	SendCounts []int
	RecvCounts []int
	Staging    *Buffer
}

// uniformSplit returns groupSize equal per-rank counts covering elements.
func uniformSplit(groupSize, elements int) ([]int, error) {
	if elements%groupSize != 0 {
		return nil, status.Errorf(codes.OutOfRange,
			"%d elements do not divide evenly across %d ranks", elements, groupSize)
	}
	counts := make([]int, groupSize)
	for i := range counts {
		counts[i] = elements / groupSize
	}
	return counts, nil
}

// explicitSplit scales caller-supplied per-rank split sizes, expressed in
// leading-dimension indices, into element counts.  dim0 is the size of the
// buffer's leading dimension and stride the number of elements one leading
// index covers.
func explicitSplit(sizes []int64, groupSize, dim0, stride int) ([]int, error) {
	if len(sizes) != groupSize {
		return nil, status.Errorf(codes.OutOfRange,
			"number of split sizes (%d) does not match group size (%d)", len(sizes), groupSize)
	}
	var total int64
	for _, size := range sizes {
		if size < 0 {
			return nil, status.Error(codes.InvalidArgument, "split sizes must be non-negative")
		}
		total += size
	}
	if total != int64(dim0) {
		return nil, status.Errorf(codes.OutOfRange,
			"split sizes sum to %d, leading dimension holds %d", total, dim0)
	}

	counts := make([]int, groupSize)
	for i, size := range sizes {
		counts[i] = int(size) * stride
	}
	return counts, nil
}

// flatten prepares the single flat buffer an irregular multi-buffer
// collective is expressed through, together with the per-rank element
// counts.  When the buffers are provably one contiguous allocation in rank
// order, the shared parent serves as the flat view and no staging is
// allocated; the fast path is an optimization taken only when it is
// equivalent.  Otherwise a staging buffer of the combined size is allocated
// on the first buffer's device.  Content is not copied; see pack and
// unflatten.
func flatten(buffers []*Buffer) (flat *Buffer, counts []int, alreadyFlat bool, err error) {
	if len(buffers) == 0 {
		return nil, nil, false, status.Error(codes.InvalidArgument, "buffer list must be nonempty")
	}

	counts = make([]int, len(buffers))
	total := 0
	for i, b := range buffers {
		if b.Elem != buffers[0].Elem {
			return nil, nil, false, status.Error(codes.InvalidArgument,
				"buffers must have identical element type")
		}
		counts[i] = b.Len()
		total += counts[i]
	}

	if parent := commonParent(buffers); parent != nil && parent.Len() == total {
		return parent, counts, true, nil
	}

	flat = newBuffer(buffers[0].Elem, buffers[0].Device, total)
	glog.V(1).Infof("allocated %s staging buffer for %d-way irregular collective",
		humanize.IBytes(uint64(len(flat.Data))), len(buffers))
	return flat, counts, false, nil
}

// commonParent returns the parent buffer the given views cover contiguously
// in rank order, or nil when no such parent exists.
func commonParent(buffers []*Buffer) *Buffer {
	parent := buffers[0].parent
	if parent == nil || buffers[0].offset != 0 {
		return nil
	}
	offset := 0
	for _, b := range buffers {
		if b.parent != parent || b.offset != offset {
			return nil
		}
		offset += b.Len()
	}
	return parent
}

// pack copies each source buffer into its split of the staging buffer,
// preparing the flat send side of an irregular collective.
func pack(flat *Buffer, counts []int, srcs []*Buffer) error {
	views, err := flat.Split(counts)
	if err != nil {
		return err
	}
	for i, src := range srcs {
		if src.Len() != counts[i] {
			return status.Errorf(codes.InvalidArgument,
				"buffer %d holds %d elements, split expects %d", i, src.Len(), counts[i])
		}
		copy(views[i].Data, src.Data)
	}
	return nil
}

// unflatten splits the staging buffer by the per-rank counts and copies
// each split into the corresponding destination.  It must only be invoked
// after the operation's completion signal has fired: the staging memory is
// not a subview of the destinations, and a premature copy would race the
// in-flight transfer.
func unflatten(flat *Buffer, counts []int, dsts []*Buffer) error {
	views, err := flat.Split(counts)
	if err != nil {
		return err
	}
	for i, dst := range dsts {
		if dst.Len() != counts[i] {
			return status.Errorf(codes.InvalidArgument,
				"destination %d holds %d elements, split carries %d", i, dst.Len(), counts[i])
		}
		copy(dst.Data, views[i].Data)
	}
	return nil
}

// placeholder returns the minimally-sized buffer a rank that receives no
// output must still hand to the engine, which requires symmetric non-nil
// addresses across ranks even when no data is produced locally.
func placeholder(dtype engine.Datatype, device engine.Device) *Buffer {
	return newBuffer(dtype, device, 1)
}
