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

// Package loopback provides an in-process engine whose ranks exchange data
// through shared memory instead of a network or device fabric.  Each rank
// of a process group holds its own Engine; the first Connect publishes a
// fabric identifier through the rendezvous store and the remaining ranks
// attach to it.  The engine backs the test suite and single-host smoke
// runs; it drives plain host memory and models each device stream as one
// goroutine draining a task queue.
package loopback

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/concord-ml/concord/engine"
	"github.com/concord-ml/concord/rendezvous"
)

// kvsKey is the store key under which rank 0 publishes the fabric
// identifier shared by all ranks of the group.
const kvsKey = "concord/loopback/kvs"

// fabrics maps published fabric identifiers to their live fabrics.  The
// map is process-global because every rank's Engine must reach the same
// fabric object.
var (
	fabrics    sync.Map
	registerMu sync.Mutex
)

// Engine drives a fixed number of loopback devices backed by host memory.
// One Engine serves exactly one rank; sharing an Engine between ranks of
// the same group deadlocks, since a rank's submissions block its stream
// goroutine until the peers arrive.
type Engine struct {
	devices []engine.Device

	mu      sync.Mutex
	streams map[engine.Device]*stream
	joined  []string
}

// New creates an engine exposing deviceCount loopback devices.
func New(deviceCount int) *Engine {
	devices := make([]engine.Device, deviceCount)
	for i := range devices {
		devices[i] = engine.Device{Type: engine.CPU, Index: i}
	}
	return &Engine{
		devices: devices,
		streams: make(map[engine.Device]*stream, deviceCount),
	}
}

// DeviceCount implements engine.Engine.
func (e *Engine) DeviceCount() int {
	return len(e.devices)
}

// DefaultStream implements engine.Engine.  The stream goroutine is started
// on first use and runs until Close.
func (e *Engine) DefaultStream(device engine.Device) engine.Stream {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.streams[device]
	if !ok {
		s = newStream(device)
		e.streams[device] = s
	}
	return s
}

// Connect implements engine.Engine.  Rank 0 registers a fresh fabric and
// publishes its identifier on the store; the remaining ranks block until
// the identifier appears and attach to the same fabric.  Repeated Connect
// calls on the same group yield independent channels matched by call
// order, so each communicator gets its own submission sequence.
func (e *Engine) Connect(ctx context.Context, size, rank int, device engine.Device, store rendezvous.Store) (engine.Communicator, error) {
	if size <= 0 || rank < 0 || rank >= size {
		return nil, errors.Errorf("loopback: rank %d out of range for size %d", rank, size)
	}

	var id string
	if rank == 0 {
		registerMu.Lock()
		if value, err := store.Get(ctx, kvsKey); err == nil {
			id = string(value)
		} else {
			id = uuid.NewString()
			fabrics.Store(id, newFabric(size))
			if err := store.Set(ctx, kvsKey, []byte(id)); err != nil {
				registerMu.Unlock()
				return nil, errors.Wrap(err, "loopback: publish fabric")
			}
			glog.V(1).Infof("registered loopback fabric %s for %d ranks", id, size)
		}
		registerMu.Unlock()
	} else {
		if err := store.Wait(ctx, kvsKey); err != nil {
			return nil, errors.Wrap(err, "loopback: await fabric")
		}
		value, err := store.Get(ctx, kvsKey)
		if err != nil {
			return nil, errors.Wrap(err, "loopback: fetch fabric")
		}
		id = string(value)
	}

	v, ok := fabrics.Load(id)
	if !ok {
		return nil, errors.Errorf("loopback: unknown fabric %q", id)
	}
	f := v.(*fabric)
	if f.size != size {
		return nil, errors.Errorf("loopback: fabric %s holds %d ranks, requested %d", id, f.size, size)
	}
	ch := f.join(rank)
	e.mu.Lock()
	e.joined = append(e.joined, id)
	e.mu.Unlock()
	return &comm{rank: rank, size: size, ch: ch}, nil
}

// Close stops the stream goroutines and drops the engine's fabric
// references; a fabric no engine holds is removed from the registry.
// Submissions after Close panic.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.streams {
		s.close()
	}
	e.streams = make(map[engine.Device]*stream)

	for _, id := range e.joined {
		if v, ok := fabrics.Load(id); ok && v.(*fabric).detach() {
			fabrics.Delete(id)
		}
	}
	e.joined = nil
}

// stream executes submitted tasks in order on a dedicated goroutine,
// mirroring the in-order completion semantics of a device queue.
type stream struct {
	device engine.Device
	tasks  chan func()
}

func newStream(device engine.Device) *stream {
	s := &stream{device: device, tasks: make(chan func(), 128)}
	go func() {
		for task := range s.tasks {
			task()
		}
	}()
	return s
}

// Device implements engine.Stream.
func (s *stream) Device() engine.Device {
	return s.device
}

func (s *stream) close() {
	close(s.tasks)
}

// event is the completion signal of one submitted loopback transfer.
type event struct {
	done chan struct{}
	err  error
}

func newEvent() *event {
	return &event{done: make(chan struct{})}
}

func (e *event) finish(err error) {
	e.err = err
	close(e.done)
}

// Wait implements engine.Event.
func (e *event) Wait(timeout time.Duration) error {
	if timeout <= 0 {
		<-e.done
		return e.err
	}
	select {
	case <-e.done:
		return e.err
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}

// comm implements engine.Communicator over one fabric channel.  Each
// submission enqueues the rank's contribution on the stream and returns
// immediately; the stream goroutine blocks in the channel rendezvous
// until every rank has contributed its matching call.
type comm struct {
	rank, size int
	ch         *channel
}

// Rank implements engine.Communicator.
func (c *comm) Rank() int {
	return c.rank
}

// Size implements engine.Communicator.
func (c *comm) Size() int {
	return c.size
}

func (c *comm) submit(s engine.Stream, call *call) (engine.Event, error) {
	local, ok := s.(*stream)
	if !ok {
		return nil, errors.Errorf("loopback: foreign stream %v", s)
	}
	call.rank = c.rank
	ev := newEvent()
	local.tasks <- func() {
		ev.finish(c.ch.rendezvous(call))
	}
	return ev, nil
}

// AllReduce implements engine.Communicator.
func (c *comm) AllReduce(send, recv []byte, count int, dtype engine.Datatype, op engine.ReduceOp, stream engine.Stream) (engine.Event, error) {
	return c.submit(stream, &call{
		kind: opAllReduce, send: send, recv: recv, count: count, dtype: dtype, op: op,
	})
}

// Reduce implements engine.Communicator.
func (c *comm) Reduce(send, recv []byte, count int, dtype engine.Datatype, op engine.ReduceOp, root int, stream engine.Stream) (engine.Event, error) {
	if root < 0 || root >= c.size {
		return nil, errors.Errorf("loopback: root %d out of range for size %d", root, c.size)
	}
	return c.submit(stream, &call{
		kind: opReduce, send: send, recv: recv, count: count, dtype: dtype, op: op, root: root,
	})
}

// Broadcast implements engine.Communicator.
func (c *comm) Broadcast(buf []byte, count int, dtype engine.Datatype, root int, stream engine.Stream) (engine.Event, error) {
	if root < 0 || root >= c.size {
		return nil, errors.Errorf("loopback: root %d out of range for size %d", root, c.size)
	}
	return c.submit(stream, &call{
		kind: opBroadcast, send: buf, recv: buf, count: count, dtype: dtype, root: root,
	})
}

// AllGatherV implements engine.Communicator.
func (c *comm) AllGatherV(send []byte, sendCount int, recv [][]byte, recvCounts []int, dtype engine.Datatype, stream engine.Stream) (engine.Event, error) {
	if len(recv) != c.size || len(recvCounts) != c.size {
		return nil, errors.Errorf("loopback: allgatherv expects %d recv buffers, got %d", c.size, len(recv))
	}
	return c.submit(stream, &call{
		kind: opAllGatherV, send: send, count: sendCount, gather: recv, recvCounts: recvCounts, dtype: dtype,
	})
}

// AllToAll implements engine.Communicator.
func (c *comm) AllToAll(send, recv []byte, count int, dtype engine.Datatype, stream engine.Stream) (engine.Event, error) {
	return c.submit(stream, &call{
		kind: opAllToAll, send: send, recv: recv, count: count, dtype: dtype,
	})
}

// AllToAllV implements engine.Communicator.
func (c *comm) AllToAllV(send []byte, sendCounts []int, recv []byte, recvCounts []int, dtype engine.Datatype, stream engine.Stream) (engine.Event, error) {
	if len(sendCounts) != c.size || len(recvCounts) != c.size {
		return nil, errors.Errorf("loopback: alltoallv expects %d counts per side, got %d and %d",
			c.size, len(sendCounts), len(recvCounts))
	}
	return c.submit(stream, &call{
		kind: opAllToAllV, send: send, recv: recv, sendCounts: sendCounts, recvCounts: recvCounts, dtype: dtype,
	})
}

// Close implements engine.Communicator.  The channel stays attached to the
// fabric so late peers can still drain in-flight slots.
func (c *comm) Close() error {
	return nil
}
