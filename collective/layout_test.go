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
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
)

func TestUniformSplit(t *testing.T) {
	counts, err := uniformSplit(4, 16)
	if err != nil {
		t.Fatalf("even split rejected: %v", err)
	}
	for _, count := range counts {
		if count != 4 {
			t.Fatalf("expected 4 elements per rank, got %v", counts)
		}
	}

	if _, err = uniformSplit(4, 15); status.Code(err) != codes.OutOfRange {
		t.Fatalf("uneven split: expected %v, got %v", codes.OutOfRange, status.Code(err))
	}
}

func TestExplicitSplit(t *testing.T) {
	// A buffer shaped [6, 2]: leading dimension 6, stride 2.
	counts, err := explicitSplit([]int64{1, 2, 3}, 3, 6, 2)
	if err != nil {
		t.Fatalf("valid split rejected: %v", err)
	}
	want := []int{2, 4, 6}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, counts)
		}
	}

	if _, err = explicitSplit([]int64{1, 2}, 3, 6, 2); status.Code(err) != codes.OutOfRange {
		t.Fatalf("length mismatch: expected %v, got %v", codes.OutOfRange, status.Code(err))
	}
	if _, err = explicitSplit([]int64{1, 2, 4}, 3, 6, 2); status.Code(err) != codes.OutOfRange {
		t.Fatalf("sum mismatch: expected %v, got %v", codes.OutOfRange, status.Code(err))
	}
	if _, err = explicitSplit([]int64{-1, 3, 4}, 3, 6, 2); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("negative size: expected %v, got %v", codes.InvalidArgument, status.Code(err))
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	srcs := []*Buffer{
		FromSlice(cpu(0), []int32{1}, 1),
		FromSlice(cpu(0), []int32{2, 3, 4}, 3),
		FromSlice(cpu(0), []int32{5, 6}, 2),
	}
	flat, counts, alreadyFlat, err := flatten(srcs)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	if alreadyFlat {
		t.Fatal("independent buffers reported as flat")
	}
	if flat.Len() != 6 {
		t.Fatalf("expected 6 elements, got %d", flat.Len())
	}

	if err = pack(flat, counts, srcs); err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	for i, want := range []int32{1, 2, 3, 4, 5, 6} {
		if got := AsSlice[int32](flat)[i]; got != want {
			t.Fatalf("flat[%d] = %d, want %d", i, got, want)
		}
	}

	dsts := []*Buffer{
		Zeros[int32](cpu(0), 1),
		Zeros[int32](cpu(0), 3),
		Zeros[int32](cpu(0), 2),
	}
	if err = unflatten(flat, counts, dsts); err != nil {
		t.Fatalf("unflatten failed: %v", err)
	}
	if got := AsSlice[int32](dsts[1]); got[0] != 2 || got[2] != 4 {
		t.Fatalf("unexpected middle buffer: %v", got)
	}
}

func TestFlattenDetectsFlatViews(t *testing.T) {
	parent := FromSlice(cpu(0), []float64{1, 2, 3, 4, 5, 6}, 6)
	views, err := parent.Split([]int{2, 1, 3})
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	flat, counts, alreadyFlat, err := flatten(views)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	if !alreadyFlat {
		t.Fatal("contiguous views not recognized as flat")
	}
	if flat != parent {
		t.Fatal("expected the parent buffer back")
	}
	for i, want := range []int{2, 1, 3} {
		if counts[i] != want {
			t.Fatalf("expected counts [2 1 3], got %v", counts)
		}
	}

	// Reordered views no longer cover the parent front to back.
	if _, _, alreadyFlat, err = flatten([]*Buffer{views[1], views[0], views[2]}); err != nil {
		t.Fatalf("flatten failed: %v", err)
	} else if alreadyFlat {
		t.Fatal("reordered views reported as flat")
	}
}

func TestPlaceholder(t *testing.T) {
	b := placeholder(engine.Float32, cpu(0))
	if b.Len() != 1 {
		t.Fatalf("expected a 1-element buffer, got %d", b.Len())
	}
}
