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
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
)

// OpType identifies a collective kind.
type OpType uint8

const (
	OpBroadcast OpType = iota
	OpReduce
	OpAllReduce
	OpAllGather
	OpGather
	OpAllToAll
	OpAllToAllSingle
)

func (o OpType) String() string {
	switch o {
	case OpBroadcast:
		return "broadcast"
	case OpReduce:
		return "reduce"
	case OpAllReduce:
		return "allreduce"
	case OpAllGather:
		return "allgather"
	case OpGather:
		return "gather"
	case OpAllToAll:
		return "alltoall"
	case OpAllToAllSingle:
		return "alltoall_single"
	default:
		return "invalid"
	}
}

// DefaultTimeout bounds Wait when the caller's options carry no explicit
// timeout.
const DefaultTimeout = 30 * time.Minute

type workState uint8

const (
	workCreated workState = iota
	workRunning
	workCompleted
	workFailed
)

// A submitter issues one collective kind against an established
// communicator and returns the engine's completion event.  Each operation
// adapter provides its own implementation, keeping the dispatch skeleton in
// Work free of operation-specific logic.
type submitter interface {
	submit(comms *communicator) (engine.Event, error)
}

// Work identifies one in-flight or completed collective operation.  It is
// exclusively owned by the caller the adapter returns it to; neither the
// communicator cache nor the layout code retains a reference.
type Work struct {
	kind    OpType
	rank    int
	name    string
	timeout time.Duration

	comms *communicator
	op    submitter

	mu    sync.Mutex
	state workState
	event engine.Event
	err   error
	done  chan struct{}
}

func newWork(kind OpType, rank int, name string, timeout time.Duration, comms *communicator, op submitter) *Work {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Work{
		kind:    kind,
		rank:    rank,
		name:    name,
		timeout: timeout,
		comms:   comms,
		op:      op,
		done:    make(chan struct{}),
	}
}

// Kind returns the collective kind of the work.
func (w *Work) Kind() OpType {
	return w.kind
}

// Rank returns the originating rank of the work.
func (w *Work) Rank() int {
	return w.rank
}

func (w *Work) String() string {
	return w.name
}

// Done reports whether the work has reached a terminal state.
func (w *Work) Done() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// run drives the work to a terminal state.  A failure raised by the
// submission is captured rather than propagated; it surfaces when the
// caller waits.
func (w *Work) run() {
	w.mu.Lock()
	w.state = workRunning
	w.mu.Unlock()

	event, err := w.op.submit(w.comms)

	w.mu.Lock()
	if err != nil {
		w.state = workFailed
		w.err = transferError(w.name, err)
	} else {
		w.state = workCompleted
		w.event = event
	}
	w.mu.Unlock()
	close(w.done)
}

// execute triggers run on the given work exactly once.  Submission is
// fire-and-forget; completion is observed later via Wait.
func execute(w *Work) *Work {
	glog.V(1).Infof("%s: submitted from rank %d", w.name, w.rank)
	w.run()
	return w
}

// Wait blocks until the work reaches a terminal state and the underlying
// completion signal fires, using the timeout the operation was submitted
// with.
func (w *Work) Wait() error {
	return w.WaitFor(w.timeout)
}

// WaitFor blocks until the work reaches a terminal state and the
// underlying completion signal fires, or the timeout elapses.  A captured
// failure is returned as-is.  WaitFor is idempotent: repeated calls
// re-evaluate the already-terminal state without re-running the operation.
func (w *Work) WaitFor(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	select {
	case <-w.done:
	case <-time.After(time.Until(deadline)):
		return status.Errorf(codes.DeadlineExceeded, "%s: wait timed out after %v", w.name, timeout)
	}

	w.mu.Lock()
	state, event, err := w.state, w.event, w.err
	w.mu.Unlock()

	if state == workFailed {
		return err
	}
	// A non-positive remainder must not reach the event: the engine treats
	// it as no deadline at all.
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return status.Errorf(codes.DeadlineExceeded, "%s: wait timed out after %v", w.name, timeout)
	}
	if err := event.Wait(remaining); err != nil {
		return waitError(w.name, err)
	}
	return nil
}

// transferError classifies a failure captured during submission.
func transferError(name string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Errorf(codes.Internal, "%s: transfer failed: %v", name, err)
}

// waitError classifies a failure reported by the completion signal.
func waitError(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Errorf(codes.DeadlineExceeded, "%s: wait timed out", name)
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Errorf(codes.Internal, "%s: transfer failed: %v", name, err)
}
