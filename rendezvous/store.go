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

// Package rendezvous implements the key-value store the ranks of a process
// group bootstrap their communicators through.  Rank 0 publishes a root
// context under an agreed key and the remaining ranks block until it
// appears.  The store is available in-process for single-process use and as
// a gRPC service for multi-process groups.
package rendezvous

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store is the key-value surface a process group hands to its communication
// engine.  Values written once are never evicted during the group's
// lifetime.
type Store interface {
	// Set stores value under key, overwriting any previous value, and
	// releases all ranks waiting on key.
	Set(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, or a NotFound error if the
	// key has not been set.
	Get(ctx context.Context, key string) ([]byte, error)

	// Wait blocks until every given key has been set or ctx is done.
	Wait(ctx context.Context, keys ...string) error
}

// inProcessStore is a Store shared by ranks living in one process.
type inProcessStore struct {
	mu      sync.Mutex
	kv      map[string][]byte
	waiters map[string][]chan struct{}
}

// NewInProcessStore creates a Store for ranks within a single process.
func NewInProcessStore() Store {
	return &inProcessStore{
		kv:      make(map[string][]byte),
		waiters: make(map[string][]chan struct{}),
	}
}

func (s *inProcessStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kv[key] = value
	for _, ch := range s.waiters[key] {
		close(ch)
	}
	delete(s.waiters, key)

	return nil
}

func (s *inProcessStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.kv[key]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "rendezvous: key %q not set", key)
	}
	return value, nil
}

func (s *inProcessStore) Wait(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.mu.Lock()
		if _, ok := s.kv[key]; ok {
			s.mu.Unlock()
			continue
		}
		ch := make(chan struct{})
		s.waiters[key] = append(s.waiters[key], ch)
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		}
	}
	return nil
}
