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

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
)

// Every adapter follows one template: validate the inputs, derive the
// split spec and root rank as needed, obtain the device set's communicator
// from the cache, wrap the operation-specific submission as a Work and
// trigger it immediately.  The returned Work is awaited by the caller;
// validation failures abort synchronously with no partial side effects.

// AllReduce reduces each buffer across all ranks with the configured
// operator, leaving the result in place on every rank.
func (g *ProcessGroup) AllReduce(ctx context.Context, buffers []*Buffer, opts AllReduceOptions) (*Work, error) {
	if _, err := checkBuffers(buffers, g.eng.DeviceCount(), true); err != nil {
		return nil, err
	}
	devices := devicesOf(buffers)
	comms, err := g.getOrCreate(ctx, deviceSetKey(devices), devices)
	if err != nil {
		return nil, err
	}

	work := newWork(OpAllReduce, g.rank, "concord::allreduce", opts.Timeout, comms, &allReduceOp{
		buffer: buffers[0],
		op:     opts.Op,
	})
	return execute(work), nil
}

// Reduce reduces each buffer across all ranks with the configured
// operator, leaving the result on the root rank only.
func (g *ProcessGroup) Reduce(ctx context.Context, buffers []*Buffer, opts ReduceOptions) (*Work, error) {
	if _, err := checkBuffers(buffers, g.eng.DeviceCount(), true); err != nil {
		return nil, err
	}
	if err := g.checkRoot(opts.RootRank); err != nil {
		return nil, err
	}
	if opts.RootBuffer < 0 || opts.RootBuffer >= len(buffers) {
		return nil, status.Errorf(codes.InvalidArgument,
			"root buffer %d out of range for %d buffers", opts.RootBuffer, len(buffers))
	}
	devices := devicesOf(buffers)
	comms, err := g.getOrCreate(ctx, deviceSetKey(devices), devices)
	if err != nil {
		return nil, err
	}

	root := opts.RootRank*devicesPerProcess + opts.RootBuffer
	work := newWork(OpReduce, g.rank, "concord::reduce", opts.Timeout, comms, &reduceOp{
		buffer: buffers[0],
		op:     opts.Op,
		root:   root,
	})
	return execute(work), nil
}

// Broadcast copies the root rank's buffer content into each rank's buffer.
func (g *ProcessGroup) Broadcast(ctx context.Context, buffers []*Buffer, opts BroadcastOptions) (*Work, error) {
	if _, err := checkBuffers(buffers, g.eng.DeviceCount(), true); err != nil {
		return nil, err
	}
	if err := g.checkRoot(opts.RootRank); err != nil {
		return nil, err
	}
	if opts.RootBuffer < 0 || opts.RootBuffer >= len(buffers) {
		return nil, status.Errorf(codes.InvalidArgument,
			"root buffer %d out of range for %d buffers", opts.RootBuffer, len(buffers))
	}
	devices := devicesOf(buffers)
	comms, err := g.getOrCreate(ctx, deviceSetKey(devices), devices)
	if err != nil {
		return nil, err
	}

	root := opts.RootRank*devicesPerProcess + opts.RootBuffer
	work := newWork(OpBroadcast, g.rank, "concord::broadcast", opts.Timeout, comms, &broadcastOp{
		buffer: buffers[0],
		root:   root,
	})
	return execute(work), nil
}

// AllGather gathers each rank's input buffer into every rank's output
// buffers in rank order.  outputs holds one buffer list per local device;
// the list carries one destination buffer per rank of the group.
func (g *ProcessGroup) AllGather(ctx context.Context, outputs [][]*Buffer, inputs []*Buffer, opts AllGatherOptions) (*Work, error) {
	input, err := checkSingleBuffer(inputs)
	if err != nil {
		return nil, err
	}
	if len(outputs) != 1 {
		return nil, status.Errorf(codes.InvalidArgument,
			"allgather: expected one output buffer list per process, got %d", len(outputs))
	}
	if len(outputs[0]) != g.size {
		return nil, status.Errorf(codes.InvalidArgument,
			"allgather: number of output buffers (%d) should equal the group size (%d)", len(outputs[0]), g.size)
	}
	for _, out := range outputs[0] {
		if out.Elem != input.Elem {
			return nil, status.Error(codes.InvalidArgument, "buffers must have identical element type")
		}
	}
	devices := devicesOf(inputs)
	comms, err := g.getOrCreate(ctx, deviceSetKey(devices), devices)
	if err != nil {
		return nil, err
	}

	work := newWork(OpAllGather, g.rank, "concord::allgather", opts.Timeout, comms, &allGatherOp{
		input:   input,
		outputs: outputs[0],
		rank:    g.rank,
	})
	return execute(work), nil
}

// Gather collects each rank's input buffer on the root rank in rank
// order.  Non-root ranks must supply zero output buffer lists; the root
// supplies exactly one, carrying one destination buffer per rank.
func (g *ProcessGroup) Gather(ctx context.Context, outputs [][]*Buffer, inputs []*Buffer, opts GatherOptions) (*Work, error) {
	input, err := checkSingleBuffer(inputs)
	if err != nil {
		return nil, err
	}
	if err := g.checkRoot(opts.RootRank); err != nil {
		return nil, err
	}
	if g.rank != opts.RootRank {
		if len(outputs) != 0 {
			return nil, status.Error(codes.InvalidArgument,
				"gather: number of output buffer lists should be 0 for non-root")
		}
	} else {
		if len(outputs) != 1 {
			return nil, status.Error(codes.InvalidArgument,
				"gather: multi-device collective is not supported")
		}
		if len(outputs[0]) != g.size {
			return nil, status.Errorf(codes.InvalidArgument,
				"gather: number of output buffers (%d) should equal the group size (%d)", len(outputs[0]), g.size)
		}
	}
	devices := devicesOf(inputs)
	comms, err := g.getOrCreate(ctx, deviceSetKey(devices), devices)
	if err != nil {
		return nil, err
	}

	op := &gatherOp{input: input, root: opts.RootRank * devicesPerProcess, rank: g.rank, size: g.size}
	if g.rank == opts.RootRank {
		op.outputs = outputs[0]
	}
	work := newWork(OpGather, g.rank, "concord::gather", opts.Timeout, comms, op)
	return execute(work), nil
}

// AllToAll exchanges one buffer with every rank: inputs[i] is sent to rank
// i and the buffer received from rank i lands in outputs[i].  Per-rank
// buffer sizes may differ; irregular layouts are staged through a
// flattened transfer.
func (g *ProcessGroup) AllToAll(ctx context.Context, outputs, inputs []*Buffer, opts AllToAllOptions) (*Work, error) {
	if len(inputs) != g.size || len(outputs) != g.size {
		return nil, status.Errorf(codes.InvalidArgument,
			"alltoall: expected %d input and output buffers, got %d and %d", g.size, len(inputs), len(outputs))
	}
	for _, buffers := range [][]*Buffer{inputs, outputs} {
		for _, b := range buffers {
			if b.Sparse {
				return nil, status.Error(codes.InvalidArgument, "buffers must be dense")
			}
			if !b.Contiguous {
				return nil, status.Error(codes.InvalidArgument, "buffers must be contiguous")
			}
			if b.Elem != inputs[0].Elem {
				return nil, status.Error(codes.InvalidArgument, "buffers must have identical element type")
			}
		}
	}
	devices := []engine.Device{inputs[0].Device}
	comms, err := g.getOrCreate(ctx, deviceSetKey(devices), devices)
	if err != nil {
		return nil, err
	}

	work := newWork(OpAllToAll, g.rank, "concord::alltoall", opts.Timeout, comms, &allToAllOp{
		inputs:  inputs,
		outputs: outputs,
	})
	return execute(work), nil
}

// AllToAllSingle exchanges equal or explicitly-sized splits of a single
// input buffer with every rank, placing the received splits in the single
// output buffer in rank order.  Empty split-size lists request the uniform
// split, which requires the leading dimension to divide evenly across the
// group.
func (g *ProcessGroup) AllToAllSingle(ctx context.Context, output, input *Buffer, outputSplitSizes, inputSplitSizes []int64, opts AllToAllOptions) (*Work, error) {
	if _, err := checkSingleBuffer([]*Buffer{input}); err != nil {
		return nil, err
	}
	if _, err := checkSingleBuffer([]*Buffer{output}); err != nil {
		return nil, err
	}
	devices := []engine.Device{input.Device}

	if len(outputSplitSizes) == 0 && len(inputSplitSizes) == 0 {
		if output.Len() != input.Len() || output.Elem != input.Elem {
			return nil, status.Error(codes.InvalidArgument,
				"alltoall: buffers are not equal in size or element type")
		}
		if len(output.Shape) == 0 || output.Shape[0]%g.size != 0 {
			return nil, status.Errorf(codes.OutOfRange,
				"alltoall: leading dimension does not divide evenly across group size %d", g.size)
		}
		counts, err := uniformSplit(g.size, output.Len())
		if err != nil {
			return nil, err
		}
		comms, err := g.getOrCreate(ctx, deviceSetKey(devices), devices)
		if err != nil {
			return nil, err
		}
		work := newWork(OpAllToAllSingle, g.rank, "concord::alltoall_single", opts.Timeout, comms, &allToAllSingleOp{
			input:  input,
			output: output,
			count:  counts[0],
		})
		return execute(work), nil
	}

	sendCounts, err := splitCounts(inputSplitSizes, input, g.size)
	if err != nil {
		return nil, err
	}
	recvCounts, err := splitCounts(outputSplitSizes, output, g.size)
	if err != nil {
		return nil, err
	}
	comms, err := g.getOrCreate(ctx, deviceSetKey(devices), devices)
	if err != nil {
		return nil, err
	}
	work := newWork(OpAllToAllSingle, g.rank, "concord::alltoall_single", opts.Timeout, comms, &allToAllSingleOp{
		input:  input,
		output: output,
		spec:   &SplitSpec{SendCounts: sendCounts, RecvCounts: recvCounts},
	})
	return execute(work), nil
}

// splitCounts resolves one side's per-rank element counts: explicit sizes
// are scaled by the buffer's leading-dimension stride, an empty list
// requests the uniform split.
func splitCounts(sizes []int64, b *Buffer, groupSize int) ([]int, error) {
	if len(sizes) == 0 {
		return uniformSplit(groupSize, b.Len())
	}
	if len(b.Shape) == 0 {
		return nil, status.Error(codes.InvalidArgument, "alltoall: buffer must have a leading dimension")
	}
	return explicitSplit(sizes, groupSize, b.Shape[0], b.stride())
}

// allReduceOp submits one allreduce transfer.
type allReduceOp struct {
	buffer *Buffer
	op     engine.ReduceOp
}

func (o *allReduceOp) submit(comms *communicator) (engine.Event, error) {
	submitMu.Lock()
	defer submitMu.Unlock()
	return comms.comm.AllReduce(o.buffer.Data, o.buffer.Data, o.buffer.Len(), o.buffer.Elem, o.op, comms.stream())
}

// reduceOp submits one rooted reduce transfer.
type reduceOp struct {
	buffer *Buffer
	op     engine.ReduceOp
	root   int
}

func (o *reduceOp) submit(comms *communicator) (engine.Event, error) {
	submitMu.Lock()
	defer submitMu.Unlock()
	return comms.comm.Reduce(o.buffer.Data, o.buffer.Data, o.buffer.Len(), o.buffer.Elem, o.op, o.root, comms.stream())
}

// broadcastOp submits one broadcast transfer.
type broadcastOp struct {
	buffer *Buffer
	root   int
}

func (o *broadcastOp) submit(comms *communicator) (engine.Event, error) {
	submitMu.Lock()
	defer submitMu.Unlock()
	return comms.comm.Broadcast(o.buffer.Data, o.buffer.Len(), o.buffer.Elem, o.root, comms.stream())
}

// allGatherOp submits one allgatherv transfer into per-rank destinations.
type allGatherOp struct {
	input   *Buffer
	outputs []*Buffer
	rank    int
}

func (o *allGatherOp) submit(comms *communicator) (engine.Event, error) {
	recvCounts := make([]int, len(o.outputs))
	recvBufs := make([][]byte, len(o.outputs))
	for i, out := range o.outputs {
		recvCounts[i] = out.Len()
		recvBufs[i] = out.Data
	}
	if o.input.Len() != recvCounts[o.rank] {
		return nil, status.Error(codes.InvalidArgument, "allgather: send and recv count don't match")
	}

	submitMu.Lock()
	defer submitMu.Unlock()
	return comms.comm.AllGatherV(o.input.Data, o.input.Len(), recvBufs, recvCounts, o.input.Elem, comms.stream())
}

// gatherOp expresses a rooted gather as an alltoallv in which only the
// root receives.  The root demultiplexes the flattened result into its
// destination buffers once the completion signal fires.
type gatherOp struct {
	input   *Buffer
	outputs []*Buffer // root only
	root    int
	rank    int
	size    int
}

func (o *gatherOp) submit(comms *communicator) (engine.Event, error) {
	spec := &SplitSpec{
		SendCounts: make([]int, o.size),
		RecvCounts: make([]int, o.size),
	}
	spec.SendCounts[o.root] = o.input.Len()

	alreadyFlat := false
	if o.rank == o.root {
		flat, counts, isFlat, err := flatten(o.outputs)
		if err != nil {
			return nil, err
		}
		spec.Staging, alreadyFlat = flat, isFlat
		copy(spec.RecvCounts, counts)
		if spec.SendCounts[o.rank] != spec.RecvCounts[o.rank] {
			return nil, status.Error(codes.InvalidArgument, "gather: send and recv count don't match")
		}
	} else {
		spec.Staging = placeholder(o.input.Elem, o.input.Device)
	}

	submitMu.Lock()
	event, err := comms.comm.AllToAllV(o.input.Data, spec.SendCounts, spec.Staging.Data, spec.RecvCounts, o.input.Elem, comms.stream())
	submitMu.Unlock()
	if err != nil {
		return nil, err
	}

	if o.rank == o.root && !alreadyFlat {
		if err := event.Wait(0); err != nil {
			return nil, err
		}
		if err := unflatten(spec.Staging, spec.RecvCounts, o.outputs); err != nil {
			return nil, err
		}
	}
	return event, nil
}

// allToAllOp submits one alltoallv transfer between per-rank buffer lists,
// staging irregular layouts through flattened buffers on both sides.
type allToAllOp struct {
	inputs  []*Buffer
	outputs []*Buffer
}

func (o *allToAllOp) submit(comms *communicator) (engine.Event, error) {
	flatIn, sendCounts, inputFlat, err := flatten(o.inputs)
	if err != nil {
		return nil, err
	}
	flatOut, recvCounts, outputFlat, err := flatten(o.outputs)
	if err != nil {
		return nil, err
	}
	if !inputFlat {
		if err := pack(flatIn, sendCounts, o.inputs); err != nil {
			return nil, err
		}
	}

	submitMu.Lock()
	event, err := comms.comm.AllToAllV(flatIn.Data, sendCounts, flatOut.Data, recvCounts, flatIn.Elem, comms.stream())
	submitMu.Unlock()
	if err != nil {
		return nil, err
	}

	if !outputFlat {
		if err := event.Wait(0); err != nil {
			return nil, err
		}
		if err := unflatten(flatOut, recvCounts, o.outputs); err != nil {
			return nil, err
		}
	}
	return event, nil
}

// allToAllSingleOp submits one alltoall transfer between single flat
// buffers, either uniformly split or by an explicit split spec.
type allToAllSingleOp struct {
	input  *Buffer
	output *Buffer
	count  int        // uniform per-rank count when spec is nil
	spec   *SplitSpec // explicit per-rank counts
}

func (o *allToAllSingleOp) submit(comms *communicator) (engine.Event, error) {
	submitMu.Lock()
	defer submitMu.Unlock()
	if o.spec == nil {
		return comms.comm.AllToAll(o.input.Data, o.output.Data, o.count, o.input.Elem, comms.stream())
	}
	return comms.comm.AllToAllV(o.input.Data, o.spec.SendCounts, o.output.Data, o.spec.RecvCounts, o.input.Elem, comms.stream())
}
