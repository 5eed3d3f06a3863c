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
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concord-ml/concord/engine"
)

// devicesPerProcess is the number of devices one process drives; this
// design supports exactly one.
const devicesPerProcess = 1

// communicator owns an established engine channel plus one execution
// stream per local device.  Created once per device-set key and process
// group, shared by all subsequent collectives on that key.
type communicator struct {
	comm    engine.Communicator
	streams []engine.Stream
}

func (c *communicator) stream() engine.Stream {
	return c.streams[0]
}

// deviceSetKey derives the cache key identifying the ordered set of
// devices one collective call uses.
func deviceSetKey(devices []engine.Device) string {
	indices := make([]string, 0, len(devices))
	for _, device := range devices {
		indices = append(indices, strconv.Itoa(device.Index))
	}
	return strings.Join(indices, ",")
}

// commCache memoizes communicators by device-set key for one process
// group.  Entries are never evicted during the group's lifetime.
type commCache struct {
	mu     sync.RWMutex
	comms  map[string]*communicator
	flight singleflight.Group
}

// getOrCreate returns the cached communicator for the given device set,
// establishing it on first use.  Construction is deduplicated per key, so
// concurrent first-time callers share one handle and one rendezvous
// round-trip; subsequent calls are read-only cache hits.
func (g *ProcessGroup) getOrCreate(ctx context.Context, key string, devices []engine.Device) (*communicator, error) {
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "device set key must be nonempty")
	}
	if len(devices) != devicesPerProcess {
		return nil, status.Errorf(codes.Unimplemented,
			"%d devices per process requested; concord supports exactly %d", len(devices), devicesPerProcess)
	}

	g.cache.mu.RLock()
	comms, ok := g.cache.comms[key]
	g.cache.mu.RUnlock()
	if ok {
		return comms, nil
	}

	v, err, _ := g.cache.flight.Do(key, func() (any, error) {
		// An earlier flight may have landed between the miss and here.
		g.cache.mu.RLock()
		comms, ok := g.cache.comms[key]
		g.cache.mu.RUnlock()
		if ok {
			return comms, nil
		}

		baseRank := g.rank * devicesPerProcess
		glog.V(1).Infof("establishing communicator for device set %q as rank %d of %d",
			key, baseRank, g.size*devicesPerProcess)

		// Communication reuses the device's compute stream: kernels and
		// transfers on one device stay ordered by stream order, at the
		// cost of overlap between them.
		streams := make([]engine.Stream, 0, len(devices))
		for _, device := range devices {
			streams = append(streams, g.eng.DefaultStream(device))
		}

		comm, err := g.eng.Connect(ctx, g.size*devicesPerProcess, baseRank, devices[0], g.store)
		if err != nil {
			return nil, rendezvousError(key, err)
		}

		comms = &communicator{comm: comm, streams: streams}
		g.cache.mu.Lock()
		g.cache.comms[key] = comms
		g.cache.mu.Unlock()
		return comms, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*communicator), nil
}

func rendezvousError(key string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Errorf(codes.Internal, "rendezvous failed for device set %q: %v", key, err)
}
