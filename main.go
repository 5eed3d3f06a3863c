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

//go:generate protoc --proto_path=proto/ --go_out=rendezvous/ --go_opt=paths=source_relative --go-grpc_out=rendezvous/ --go-grpc_opt=paths=source_relative rendezvous.proto

// Package main implements the rendezvous server. The server hosts the
// key-value store the ranks of a process group bootstrap their
// communicators through; it holds no state beyond the published keys and
// can be restarted between training runs.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"google.golang.org/grpc"

	"github.com/concord-ml/concord/rendezvous"
)

func main() {
	port := flag.Int("p", 29500, "The server port")
	flag.Parse()

	if err := serve(*port); err != nil {
		glog.Fatalf("failed to serve: %v", err)
	}
}

func serve(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}

	server := newServer()
	glog.Infof("rendezvous server listening at %v", lis.Addr())

	return server.Serve(lis)
}

func newServer() *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_recovery.UnaryServerInterceptor(),
		),
	)
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func(done <-chan os.Signal, server *grpc.Server) {
		<-done
		server.GracefulStop()
	}(done, server)

	rendezvous.RegisterRendezvousServer(server, rendezvous.NewRendezvousServer())

	return server
}
