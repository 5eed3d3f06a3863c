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

// Package engine defines the surface Concord expects from an underlying
// collective-communication library.  An Engine owns the accelerator devices
// visible to the local process and establishes communicators among the ranks
// of a process group; a Communicator issues the actual transfers against an
// execution stream and hands back a completion Event.  The wire protocol and
// the device runtime belong entirely to the implementation.
package engine

import (
	"context"
	"time"

	"github.com/concord-ml/concord/rendezvous"
)

// Engine is the entry point into the communication library.
type Engine interface {
	// DeviceCount returns the number of accelerator devices the local
	// process is able to drive.
	DeviceCount() int

	// DefaultStream returns the default compute stream of the given device.
	// Concord submits communication on the compute stream as well, so
	// transfers and kernels on one device are ordered relative to each
	// other by stream order.
	DefaultStream(device Device) Stream

	// Connect establishes a communicator among size ranks, of which the
	// caller is rank, bound to the given local device.  Peers agree on a
	// shared root context through one blocking rendezvous round-trip on
	// the given store.
	Connect(ctx context.Context, size, rank int, device Device, store rendezvous.Store) (Communicator, error)
}

// Communicator represents an established channel among all ranks of a
// process group for one device set.  The submission calls place the transfer
// on the given stream and return immediately; the returned Event fires once
// the device-side operation has completed.
//
// Implementations need not be safe for concurrent submission; callers are
// expected to serialize submissions process-wide.
type Communicator interface {
	// Rank returns the global rank of the local process.
	Rank() int

	// Size returns the number of ranks in the communicator.
	Size() int

	// AllReduce reduces count elements from send across all ranks with op
	// and leaves the result in recv on every rank.
	AllReduce(send, recv []byte, count int, dtype Datatype, op ReduceOp, stream Stream) (Event, error)

	// Reduce reduces count elements from send across all ranks with op and
	// leaves the result in recv on root only.
	Reduce(send, recv []byte, count int, dtype Datatype, op ReduceOp, root int, stream Stream) (Event, error)

	// Broadcast copies count elements of buf on root into buf on every
	// other rank.
	Broadcast(buf []byte, count int, dtype Datatype, root int, stream Stream) (Event, error)

	// AllGatherV gathers sendCount elements from send on every rank into
	// the per-rank recv buffers; recv[i] receives recvCounts[i] elements
	// contributed by rank i, on every rank.
	AllGatherV(send []byte, sendCount int, recv [][]byte, recvCounts []int, dtype Datatype, stream Stream) (Event, error)

	// AllToAll exchanges count elements with every rank: the i-th count
	// element block of send goes to rank i, and the block received from
	// rank i lands in the i-th block of recv.
	AllToAll(send, recv []byte, count int, dtype Datatype, stream Stream) (Event, error)

	// AllToAllV is the irregular variant of AllToAll: sendCounts[i]
	// elements of send go to rank i and recvCounts[i] elements from rank i
	// are placed in recv, both apportioned in rank order.
	AllToAllV(send []byte, sendCounts []int, recv []byte, recvCounts []int, dtype Datatype, stream Stream) (Event, error)

	// Close releases the communicator.
	Close() error
}

// Stream is an ordered queue of device-side operations; operations submitted
// to the same stream execute in submission order.
type Stream interface {
	// Device returns the device the stream is bound to.
	Device() Device
}

// Event is the completion signal of one submitted operation.
type Event interface {
	// Wait blocks until the operation has completed or the timeout
	// elapses.  A non-positive timeout means no deadline.  Wait may be
	// called repeatedly; it re-evaluates the already-recorded outcome
	// without re-running anything.
	Wait(timeout time.Duration) error
}
