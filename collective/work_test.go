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
	"testing"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
)

// stubEvent completes immediately with a fixed outcome, or never when
// pending is set.
type stubEvent struct {
	err     error
	pending bool
}

func (e *stubEvent) Wait(timeout time.Duration) error {
	if !e.pending {
		return e.err
	}
	if timeout <= 0 {
		select {}
	}
	time.Sleep(timeout)
	return context.DeadlineExceeded
}

// stubOp hands back a canned event or submission error.
type stubOp struct {
	event engine.Event
	err   error
}

func (o *stubOp) submit(*communicator) (engine.Event, error) {
	return o.event, o.err
}

func TestWorkCompletes(t *testing.T) {
	w := execute(newWork(OpAllReduce, 0, "concord::allreduce", 0, nil, &stubOp{event: &stubEvent{}}))

	if !w.Done() {
		t.Fatal("work not done after submission")
	}
	if err := w.Wait(); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	// Waiting again re-evaluates the recorded outcome.
	if err := w.Wait(); err != nil {
		t.Fatalf("repeated wait failed: %v", err)
	}
	if w.Kind() != OpAllReduce || w.Rank() != 0 {
		t.Fatalf("unexpected identity: %v from rank %d", w.Kind(), w.Rank())
	}
}

func TestWorkCapturesSubmissionFailure(t *testing.T) {
	w := execute(newWork(OpBroadcast, 1, "concord::broadcast", 0, nil, &stubOp{
		err: status.Error(codes.InvalidArgument, "bad root"),
	}))

	if !w.Done() {
		t.Fatal("failed work not done")
	}
	for i := 0; i < 2; i++ {
		if err := w.Wait(); status.Code(err) != codes.InvalidArgument {
			t.Fatalf("wait %d: expected %v, got %v", i, codes.InvalidArgument, err)
		}
	}
}

func TestWorkWrapsForeignFailure(t *testing.T) {
	w := execute(newWork(OpReduce, 0, "concord::reduce", 0, nil, &stubOp{
		err: errors.New("device lost"),
	}))

	if err := w.Wait(); status.Code(err) != codes.Internal {
		t.Fatalf("expected %v, got %v", codes.Internal, err)
	}
}

func TestWorkWaitTimeout(t *testing.T) {
	w := execute(newWork(OpAllGather, 0, "concord::allgather", time.Hour, nil, &stubOp{
		event: &stubEvent{pending: true},
	}))

	if err := w.WaitFor(10 * time.Millisecond); status.Code(err) != codes.DeadlineExceeded {
		t.Fatalf("expected %v, got %v", codes.DeadlineExceeded, err)
	}
}

func TestWorkWaitExpiredDeadline(t *testing.T) {
	w := execute(newWork(OpAllGather, 0, "concord::allgather", time.Hour, nil, &stubOp{
		event: &stubEvent{pending: true},
	}))

	// An already-elapsed deadline must fail immediately rather than hand
	// the event a non-positive timeout, which it reads as no deadline.
	done := make(chan error, 1)
	go func() {
		done <- w.WaitFor(-time.Nanosecond)
	}()
	select {
	case err := <-done:
		if status.Code(err) != codes.DeadlineExceeded {
			t.Fatalf("expected %v, got %v", codes.DeadlineExceeded, err)
		}
	case <-time.After(time.Second):
		t.Fatal("wait blocked on an expired deadline")
	}
}

func TestWorkEventFailure(t *testing.T) {
	w := execute(newWork(OpAllToAll, 0, "concord::alltoall", 0, nil, &stubOp{
		event: &stubEvent{err: errors.New("partial transfer")},
	}))

	if err := w.Wait(); status.Code(err) != codes.Internal {
		t.Fatalf("expected %v, got %v", codes.Internal, err)
	}
}
