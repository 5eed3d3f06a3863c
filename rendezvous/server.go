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

package rendezvous

import (
	"context"

	"github.com/golang/glog"
	"github.com/golang/protobuf/ptypes/empty"
)

// rendezvousServer implements the server API for Rendezvous service.
type rendezvousServer struct {
	UnimplementedRendezvousServer
	store Store
}

// NewRendezvousServer creates a new rendezvous server backed by an
// in-process store.
func NewRendezvousServer() RendezvousServer {
	return &rendezvousServer{
		store: NewInProcessStore(),
	}
}

// Set stores the given value and releases the ranks waiting on its key.
func (s *rendezvousServer) Set(ctx context.Context, in *SetRequest) (*empty.Empty, error) {
	glog.V(1).Infof("Set called with key %q (%d bytes)", in.GetKey(), len(in.GetValue()))

	if err := s.store.Set(ctx, in.GetKey(), in.GetValue()); err != nil {
		return nil, err
	}
	return new(empty.Empty), nil
}

// Get retrieves the value stored under the given key.
func (s *rendezvousServer) Get(ctx context.Context, in *GetRequest) (*GetResponse, error) {
	glog.V(1).Infof("Get called with key %q", in.GetKey())

	value, err := s.store.Get(ctx, in.GetKey())
	if err != nil {
		return nil, err
	}
	return &GetResponse{Value: value}, nil
}

// Wait blocks until all given keys have been set.
func (s *rendezvousServer) Wait(ctx context.Context, in *WaitRequest) (*empty.Empty, error) {
	glog.V(1).Infof("Wait called with keys %v", in.GetKeys())

	if err := s.store.Wait(ctx, in.GetKeys()...); err != nil {
		return nil, err
	}
	return new(empty.Empty), nil
}

// grpcStore adapts a Rendezvous service client to the Store interface.
type grpcStore struct {
	client RendezvousClient
}

// NewStore creates a Store backed by the given rendezvous service client.
func NewStore(client RendezvousClient) Store {
	return &grpcStore{client: client}
}

func (s *grpcStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.Set(ctx, &SetRequest{Key: key, Value: value})
	return err
}

func (s *grpcStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.Get(ctx, &GetRequest{Key: key})
	if err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

func (s *grpcStore) Wait(ctx context.Context, keys ...string) error {
	_, err := s.client.Wait(ctx, &WaitRequest{Keys: keys})
	return err
}
