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
	"sync"

	"github.com/pkg/errors"

	"github.com/concord-ml/concord/engine"
)

type opKind uint8

const (
	opAllReduce opKind = iota
	opReduce
	opBroadcast
	opAllGatherV
	opAllToAll
	opAllToAllV
)

// call carries one rank's contribution to a collective exchange.
type call struct {
	kind  opKind
	rank  int
	dtype engine.Datatype
	op    engine.ReduceOp
	root  int

	send  []byte
	recv  []byte
	count int

	gather     [][]byte // allgatherv destinations, one per rank
	sendCounts []int
	recvCounts []int
}

// fabric is the meeting point of all ranks of one group.  Each rank joins
// once per communicator; the n-th join of every rank lands on the same
// channel, which is how multiple communicators over the same group keep
// their submission sequences apart.
type fabric struct {
	size int

	mu    sync.Mutex
	refs  int
	joins map[int]int
	chans map[int]*channel
}

func newFabric(size int) *fabric {
	return &fabric{
		size:  size,
		joins: make(map[int]int, size),
		chans: make(map[int]*channel),
	}
}

func (f *fabric) join(rank int) *channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs++
	ordinal := f.joins[rank]
	f.joins[rank]++
	ch, ok := f.chans[ordinal]
	if !ok {
		ch = &channel{size: f.size, next: make(map[int]uint64, f.size), slots: make(map[uint64]*slot)}
		f.chans[ordinal] = ch
	}
	return ch
}

// detach drops one joined communicator's reference and reports whether the
// fabric is now unused.
func (f *fabric) detach() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs--
	return f.refs == 0
}

// channel matches the ranks' submissions by per-rank sequence number: the
// n-th call of every rank joins slot n.  Ranks must therefore submit
// collectives in the same order, the usual contract of a communicator.
type channel struct {
	size int

	mu    sync.Mutex
	next  map[int]uint64
	slots map[uint64]*slot
}

// slot is one in-flight exchange awaiting contributions.
type slot struct {
	calls   []*call
	pending int
	done    chan struct{}
	err     error
}

// rendezvous files the rank's call into its sequence slot and blocks until
// the exchange completes.  The last-arriving rank performs the exchange on
// behalf of everyone.
func (ch *channel) rendezvous(c *call) error {
	ch.mu.Lock()
	seq := ch.next[c.rank]
	ch.next[c.rank]++
	s, ok := ch.slots[seq]
	if !ok {
		s = &slot{calls: make([]*call, ch.size), pending: ch.size, done: make(chan struct{})}
		ch.slots[seq] = s
	}
	s.calls[c.rank] = c
	s.pending--
	last := s.pending == 0
	if last {
		delete(ch.slots, seq)
	}
	ch.mu.Unlock()

	if last {
		s.err = execute(s.calls)
		close(s.done)
	}
	<-s.done
	return s.err
}

// execute performs one matched exchange across all ranks' buffers.
func execute(calls []*call) error {
	kind, dtype := calls[0].kind, calls[0].dtype
	for _, c := range calls {
		if c.kind != kind {
			return errors.Errorf("loopback: mismatched collective: rank %d submitted %d, rank %d submitted %d",
				calls[0].rank, kind, c.rank, c.kind)
		}
		if c.dtype != dtype {
			return errors.Errorf("loopback: mismatched datatype: rank %d uses %v, rank %d uses %v",
				calls[0].rank, dtype, c.rank, c.dtype)
		}
	}

	switch kind {
	case opAllReduce:
		return executeReduce(calls, true)
	case opReduce:
		return executeReduce(calls, false)
	case opBroadcast:
		return executeBroadcast(calls)
	case opAllGatherV:
		return executeAllGatherV(calls)
	case opAllToAll:
		return executeAllToAll(calls)
	case opAllToAllV:
		return executeAllToAllV(calls)
	default:
		return errors.Errorf("loopback: unknown collective %d", kind)
	}
}

// executeReduce folds every rank's send buffer into an accumulator and
// writes the result to all ranks (allreduce) or the root only (reduce).
// The accumulator keeps aliased send/recv buffers safe.
func executeReduce(calls []*call, all bool) error {
	count, op, root := calls[0].count, calls[0].op, calls[0].root
	for _, c := range calls {
		if c.count != count || c.op != op || c.root != root {
			return errors.Errorf("loopback: mismatched reduce arguments on rank %d", c.rank)
		}
	}
	width := count * calls[0].dtype.Size()

	acc := make([]byte, width)
	copy(acc, calls[0].send[:width])
	for _, c := range calls[1:] {
		if err := reduceInto(acc, c.send[:width], count, c.dtype, op); err != nil {
			return err
		}
	}

	for _, c := range calls {
		if all || c.rank == root {
			copy(c.recv[:width], acc)
		}
	}
	return nil
}

func executeBroadcast(calls []*call) error {
	count, root := calls[0].count, calls[0].root
	for _, c := range calls {
		if c.count != count || c.root != root {
			return errors.Errorf("loopback: mismatched broadcast arguments on rank %d", c.rank)
		}
	}
	width := count * calls[0].dtype.Size()
	src := calls[root].send[:width]
	for _, c := range calls {
		if c.rank != root {
			copy(c.recv[:width], src)
		}
	}
	return nil
}

func executeAllGatherV(calls []*call) error {
	esz := calls[0].dtype.Size()
	counts := calls[0].recvCounts
	for _, c := range calls {
		if c.count != counts[c.rank] {
			return errors.Errorf("loopback: rank %d sends %d elements but peers expect %d",
				c.rank, c.count, counts[c.rank])
		}
	}
	for _, dst := range calls {
		for _, src := range calls {
			if dst.recvCounts[src.rank] != counts[src.rank] {
				return errors.Errorf("loopback: mismatched allgatherv counts between ranks %d and %d",
					dst.rank, src.rank)
			}
			copy(dst.gather[src.rank], src.send[:src.count*esz])
		}
	}
	return nil
}

func executeAllToAll(calls []*call) error {
	count := calls[0].count
	for _, c := range calls {
		if c.count != count {
			return errors.Errorf("loopback: mismatched alltoall count on rank %d", c.rank)
		}
	}
	width := count * calls[0].dtype.Size()
	for _, dst := range calls {
		for _, src := range calls {
			copy(dst.recv[src.rank*width:(src.rank+1)*width], src.send[dst.rank*width:(dst.rank+1)*width])
		}
	}
	return nil
}

func executeAllToAllV(calls []*call) error {
	esz := calls[0].dtype.Size()
	for _, dst := range calls {
		for _, src := range calls {
			if src.sendCounts[dst.rank] != dst.recvCounts[src.rank] {
				return errors.Errorf("loopback: rank %d sends %d elements to rank %d, which expects %d",
					src.rank, src.sendCounts[dst.rank], dst.rank, dst.recvCounts[src.rank])
			}
		}
	}
	for _, dst := range calls {
		off := 0
		for _, src := range calls {
			srcOff := 0
			for r := 0; r < dst.rank; r++ {
				srcOff += src.sendCounts[r]
			}
			width := src.sendCounts[dst.rank] * esz
			copy(dst.recv[off*esz:off*esz+width], src.send[srcOff*esz:srcOff*esz+width])
			off += dst.recvCounts[src.rank]
		}
	}
	return nil
}
