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
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
	"github.com/concord-ml/concord/rendezvous"
)

// submitMu serializes all submissions into the engine process-wide.  The
// engine's internal state is not safe for concurrent submission from
// multiple adapters, even though the resulting transfers execute
// concurrently on-device.  Held only around the submission call, never
// around the full transfer.
var submitMu sync.Mutex

// ProcessGroup drives collectives for the local rank of a group of
// cooperating processes.  All state is process-memory-resident for the
// process's lifetime.
type ProcessGroup struct {
	rank  int
	size  int
	eng   engine.Engine
	store rendezvous.Store
	cache commCache
}

// NewProcessGroup creates the local view of a process group of the given
// size, with this process at the given rank, on top of the given engine
// and rendezvous store.
func NewProcessGroup(eng engine.Engine, store rendezvous.Store, rank, size int) (*ProcessGroup, error) {
	if eng == nil || store == nil {
		return nil, status.Error(codes.InvalidArgument, "engine and store must be non-nil")
	}
	if size <= 0 || rank < 0 || rank >= size {
		return nil, status.Errorf(codes.InvalidArgument,
			"rank %d out of range for group size %d", rank, size)
	}
	return &ProcessGroup{
		rank:  rank,
		size:  size,
		eng:   eng,
		store: store,
		cache: commCache{comms: make(map[string]*communicator)},
	}, nil
}

// Rank returns the rank of the local process within the group.
func (g *ProcessGroup) Rank() int {
	return g.rank
}

// Size returns the number of processes in the group.
func (g *ProcessGroup) Size() int {
	return g.size
}

// BroadcastOptions configures Broadcast.  RootRank designates the source
// rank and RootBuffer selects which of its buffers is the source.
type BroadcastOptions struct {
	RootRank   int
	RootBuffer int
	Timeout    time.Duration
}

// ReduceOptions configures Reduce.
type ReduceOptions struct {
	Op         engine.ReduceOp
	RootRank   int
	RootBuffer int
	Timeout    time.Duration
}

// AllReduceOptions configures AllReduce.
type AllReduceOptions struct {
	Op      engine.ReduceOp
	Timeout time.Duration
}

// AllGatherOptions configures AllGather.
type AllGatherOptions struct {
	Timeout time.Duration
}

// GatherOptions configures Gather.
type GatherOptions struct {
	RootRank int
	Timeout  time.Duration
}

// AllToAllOptions configures AllToAll and AllToAllSingle.
type AllToAllOptions struct {
	Timeout time.Duration
}

// checkRoot validates a rooted operation's root rank.
func (g *ProcessGroup) checkRoot(rootRank int) error {
	if rootRank < 0 || rootRank >= g.size {
		return status.Errorf(codes.InvalidArgument,
			"root rank %d out of range for group size %d", rootRank, g.size)
	}
	return nil
}
