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
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

func TestInProcessStore(t *testing.T) {
	store := NewInProcessStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.Equal(t, codes.NotFound, status.Code(err))

	require.NoError(t, store.Set(ctx, "rank/0", []byte("addr")))
	value, err := store.Get(ctx, "rank/0")
	require.NoError(t, err)
	require.Equal(t, []byte("addr"), value)

	// Overwrites are visible to later readers.
	require.NoError(t, store.Set(ctx, "rank/0", []byte("other")))
	value, err = store.Get(ctx, "rank/0")
	require.NoError(t, err)
	require.Equal(t, []byte("other"), value)
}

func TestInProcessStoreWait(t *testing.T) {
	store := NewInProcessStore()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- store.Wait(ctx, "a", "b")
	}()

	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	select {
	case err := <-done:
		t.Fatalf("wait returned before all keys were published: %v", err)
	case <-time.After(10 * time.Millisecond):
	}

	require.NoError(t, store.Set(ctx, "b", []byte("2")))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after all keys were published")
	}
}

func TestInProcessStoreWaitCancellation(t *testing.T) {
	store := NewInProcessStore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- store.Wait(ctx, "never")
	}()
	cancel()

	select {
	case err := <-done:
		require.Equal(t, codes.Canceled, status.Code(err))
	case <-time.After(time.Second):
		t.Fatal("wait did not observe cancellation")
	}
}

func TestGRPCStoreRoundTrip(t *testing.T) {
	lis, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	server := grpc.NewServer()
	RegisterRendezvousServer(server, NewRendezvousServer())
	go server.Serve(lis)
	defer server.Stop()

	conn, err := grpc.Dial(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	store := NewStore(NewRendezvousClient(conn))
	ctx := context.Background()

	_, err = store.Get(ctx, "missing")
	require.Equal(t, codes.NotFound, status.Code(err))

	require.NoError(t, store.Set(ctx, "fabric", []byte("id-0")))

	require.NoError(t, store.Wait(ctx, "fabric"))
	value, err := store.Get(ctx, "fabric")
	require.NoError(t, err)
	require.Equal(t, []byte("id-0"), value)
}
