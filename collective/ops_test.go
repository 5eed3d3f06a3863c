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
	"context"
	"sync"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
	"github.com/concord-ml/concord/internal/loopback"
	"github.com/concord-ml/concord/rendezvous"
)

// runGroup drives worldSize ranks concurrently, each with its own loopback
// engine and process group over a shared in-process store.  Checks inside
// body must use t.Errorf; Fatalf is unsafe off the test goroutine.
func runGroup(t *testing.T, worldSize int, body func(g *ProcessGroup)) {
	t.Helper()
	store := rendezvous.NewInProcessStore()

	var wg sync.WaitGroup
	for rank := 0; rank < worldSize; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			eng := loopback.New(1)
			defer eng.Close()

			group, err := NewProcessGroup(eng, store, rank, worldSize)
			if err != nil {
				t.Errorf("rank %d: failed to create process group: %v", rank, err)
				return
			}
			body(group)
		}(rank)
	}
	wg.Wait()
}

func TestAllReduce(t *testing.T) {
	const worldSize = 4
	runGroup(t, worldSize, func(g *ProcessGroup) {
		buffer := FromSlice(cpu(0), []float32{float32(g.Rank() + 1), float32(g.Rank() + 1)}, 2)

		work, err := g.AllReduce(context.Background(), []*Buffer{buffer}, AllReduceOptions{Op: engine.Sum})
		if err != nil {
			t.Errorf("rank %d: allreduce failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
			return
		}

		// 1 + 2 + 3 + 4
		for i, got := range AsSlice[float32](buffer) {
			if got != 10 {
				t.Errorf("rank %d: element %d = %v, want 10", g.Rank(), i, got)
			}
		}
	})
}

func TestAllReduceEmptyBuffer(t *testing.T) {
	const worldSize = 2
	runGroup(t, worldSize, func(g *ProcessGroup) {
		buffer := Zeros[float32](cpu(0), 0)

		work, err := g.AllReduce(context.Background(), []*Buffer{buffer}, AllReduceOptions{Op: engine.Sum})
		if err != nil {
			t.Errorf("rank %d: allreduce failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
		}
	})
}

func TestBroadcast(t *testing.T) {
	const (
		worldSize = 4
		root      = 2
	)
	runGroup(t, worldSize, func(g *ProcessGroup) {
		var buffer *Buffer
		if g.Rank() == root {
			buffer = FromSlice(cpu(0), []int64{5, 6, 7}, 3)
		} else {
			buffer = Zeros[int64](cpu(0), 3)
		}

		work, err := g.Broadcast(context.Background(), []*Buffer{buffer}, BroadcastOptions{RootRank: root})
		if err != nil {
			t.Errorf("rank %d: broadcast failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
			return
		}

		for i, want := range []int64{5, 6, 7} {
			if got := AsSlice[int64](buffer)[i]; got != want {
				t.Errorf("rank %d: element %d = %d, want %d", g.Rank(), i, got, want)
			}
		}
	})
}

func TestReduce(t *testing.T) {
	const (
		worldSize = 4
		root      = 1
	)
	runGroup(t, worldSize, func(g *ProcessGroup) {
		buffer := FromSlice(cpu(0), []int32{int32(g.Rank()), 10}, 2)

		work, err := g.Reduce(context.Background(), []*Buffer{buffer}, ReduceOptions{Op: engine.Max, RootRank: root})
		if err != nil {
			t.Errorf("rank %d: reduce failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
			return
		}

		got := AsSlice[int32](buffer)
		if g.Rank() == root {
			if got[0] != worldSize-1 || got[1] != 10 {
				t.Errorf("root: got %v, want [3 10]", got)
			}
		} else if got[0] != int32(g.Rank()) || got[1] != 10 {
			// Non-root buffers stay untouched.
			t.Errorf("rank %d: buffer mutated to %v", g.Rank(), got)
		}
	})
}

func TestAllGather(t *testing.T) {
	const worldSize = 4
	runGroup(t, worldSize, func(g *ProcessGroup) {
		input := FromSlice(cpu(0), []int32{int32(2 * g.Rank()), int32(2*g.Rank() + 1)}, 2)
		outputs := make([]*Buffer, worldSize)
		for i := range outputs {
			outputs[i] = Zeros[int32](cpu(0), 2)
		}

		work, err := g.AllGather(context.Background(), [][]*Buffer{outputs}, []*Buffer{input}, AllGatherOptions{})
		if err != nil {
			t.Errorf("rank %d: allgather failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
			return
		}

		for rank, out := range outputs {
			got := AsSlice[int32](out)
			if got[0] != int32(2*rank) || got[1] != int32(2*rank+1) {
				t.Errorf("rank %d: contribution of rank %d = %v", g.Rank(), rank, got)
			}
		}
	})
}

func TestGather(t *testing.T) {
	const (
		worldSize = 4
		root      = 0
	)
	runGroup(t, worldSize, func(g *ProcessGroup) {
		input := FromSlice(cpu(0), []int64{int64(g.Rank()), int64(-g.Rank())}, 2)

		var outputs [][]*Buffer
		if g.Rank() == root {
			dsts := make([]*Buffer, worldSize)
			for i := range dsts {
				dsts[i] = Zeros[int64](cpu(0), 2)
			}
			outputs = [][]*Buffer{dsts}
		}

		work, err := g.Gather(context.Background(), outputs, []*Buffer{input}, GatherOptions{RootRank: root})
		if err != nil {
			t.Errorf("rank %d: gather failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
			return
		}

		if g.Rank() == root {
			for rank, out := range outputs[0] {
				got := AsSlice[int64](out)
				if got[0] != int64(rank) || got[1] != int64(-rank) {
					t.Errorf("contribution of rank %d = %v", rank, got)
				}
			}
		}

		// The input is send-only.
		if got := AsSlice[int64](input); got[0] != int64(g.Rank()) {
			t.Errorf("rank %d: input mutated to %v", g.Rank(), got)
		}
	})
}

func TestGatherRejectsNonRootOutputs(t *testing.T) {
	group, err := NewProcessGroup(loopback.New(1), rendezvous.NewInProcessStore(), 1, 2)
	if err != nil {
		t.Fatalf("failed to create process group: %v", err)
	}
	input := FromSlice(cpu(0), []int32{1}, 1)
	outputs := [][]*Buffer{{Zeros[int32](cpu(0), 1), Zeros[int32](cpu(0), 1)}}

	_, err = group.Gather(context.Background(), outputs, []*Buffer{input}, GatherOptions{RootRank: 0})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected %v, got %v", codes.InvalidArgument, err)
	}
}

func TestAllToAll(t *testing.T) {
	const worldSize = 2
	// Irregular per-peer buffers: rank 0 sends 1 and 2 elements, rank 1
	// sends 3 and 1.  Receive sizes mirror the peers' send sizes.
	sendSizes := [worldSize][worldSize]int{{1, 2}, {3, 1}}

	runGroup(t, worldSize, func(g *ProcessGroup) {
		inputs := make([]*Buffer, worldSize)
		outputs := make([]*Buffer, worldSize)
		for peer := 0; peer < worldSize; peer++ {
			data := make([]int32, sendSizes[g.Rank()][peer])
			for i := range data {
				data[i] = int32(100*g.Rank() + 10*peer + i)
			}
			inputs[peer] = FromSlice(cpu(0), data, len(data))
			outputs[peer] = Zeros[int32](cpu(0), sendSizes[peer][g.Rank()])
		}

		work, err := g.AllToAll(context.Background(), outputs, inputs, AllToAllOptions{})
		if err != nil {
			t.Errorf("rank %d: alltoall failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
			return
		}

		for peer, out := range outputs {
			for i, got := range AsSlice[int32](out) {
				if want := int32(100*peer + 10*g.Rank() + i); got != want {
					t.Errorf("rank %d: from rank %d element %d = %d, want %d", g.Rank(), peer, i, got, want)
				}
			}
		}
	})
}

func TestAllToAllSingleUniform(t *testing.T) {
	const worldSize = 4
	runGroup(t, worldSize, func(g *ProcessGroup) {
		data := make([]int64, 2*worldSize)
		for i := range data {
			data[i] = int64(100*g.Rank() + i)
		}
		input := FromSlice(cpu(0), data, len(data))
		output := Zeros[int64](cpu(0), len(data))

		work, err := g.AllToAllSingle(context.Background(), output, input, nil, nil, AllToAllOptions{})
		if err != nil {
			t.Errorf("rank %d: alltoall failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
			return
		}

		got := AsSlice[int64](output)
		for peer := 0; peer < worldSize; peer++ {
			for i := 0; i < 2; i++ {
				if want := int64(100*peer + 2*g.Rank() + i); got[2*peer+i] != want {
					t.Errorf("rank %d: block %d element %d = %d, want %d", g.Rank(), peer, i, got[2*peer+i], want)
				}
			}
		}
	})
}

func TestAllToAllSingleUniformRejectsRaggedInput(t *testing.T) {
	group, err := NewProcessGroup(loopback.New(1), rendezvous.NewInProcessStore(), 0, 4)
	if err != nil {
		t.Fatalf("failed to create process group: %v", err)
	}
	input := FromSlice(cpu(0), []int64{1, 2, 3, 4, 5, 6}, 6)
	output := Zeros[int64](cpu(0), 6)

	_, err = group.AllToAllSingle(context.Background(), output, input, nil, nil, AllToAllOptions{})
	if status.Code(err) != codes.OutOfRange {
		t.Fatalf("expected %v, got %v", codes.OutOfRange, err)
	}
}

func TestAllToAllSingleExplicitSplits(t *testing.T) {
	const worldSize = 2
	inputSplits := [worldSize][]int64{{1, 3}, {2, 2}}
	outputSplits := [worldSize][]int64{{1, 2}, {3, 2}}

	runGroup(t, worldSize, func(g *ProcessGroup) {
		in := inputSplits[g.Rank()]
		out := outputSplits[g.Rank()]

		total := int(in[0] + in[1])
		data := make([]int32, total)
		for i := range data {
			data[i] = int32(100*g.Rank() + i)
		}
		input := FromSlice(cpu(0), data, total)
		output := Zeros[int32](cpu(0), int(out[0]+out[1]))

		work, err := g.AllToAllSingle(context.Background(), output, input, out, in, AllToAllOptions{})
		if err != nil {
			t.Errorf("rank %d: alltoall failed: %v", g.Rank(), err)
			return
		}
		if err = work.Wait(); err != nil {
			t.Errorf("rank %d: wait failed: %v", g.Rank(), err)
			return
		}

		got := AsSlice[int32](output)
		off := 0
		for peer := 0; peer < worldSize; peer++ {
			peerOff := 0
			for r := 0; r < g.Rank(); r++ {
				peerOff += int(inputSplits[peer][r])
			}
			for i := 0; i < int(outputSplits[g.Rank()][peer]); i++ {
				if want := int32(100*peer + peerOff + i); got[off+i] != want {
					t.Errorf("rank %d: from rank %d element %d = %d, want %d", g.Rank(), peer, i, got[off+i], want)
				}
			}
			off += int(outputSplits[g.Rank()][peer])
		}
	})
}
