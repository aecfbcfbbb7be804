// mintlock-registryd hosts a collection registry over the admin Registry
// gRPC service, with a pluggable metadata backend and an optional remote
// event sink.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"

	"mintlock.io/mintlock/adminrpc"
	"mintlock.io/mintlock/collection"
	"mintlock.io/mintlock/eventlog"
	"mintlock.io/mintlock/eventlog/grpcsink"
	"mintlock.io/mintlock/opfilter"
	"mintlock.io/mintlock/storage/backendreg"

	_ "mintlock.io/mintlock/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("mintlock-registryd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7780", "listen address")
	backend := fs.String("metadata-backend", "mem", "metadata store backend name")
	listBackends := fs.Bool("list-backends", false, "List supported metadata backends and exit")
	sinkTarget := fs.String("sink", "", "Sink gRPC target for event mirroring (empty: discard)")
	sinkTimeout := fs.Duration("sink-timeout", 5*time.Second, "per-emit sink RPC timeout")

	backendreg.RegisterFlags(fs, backendreg.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range backendreg.List(backendreg.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	cas, closeFn, err := backendreg.Open(*backend, backendreg.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	var sink eventlog.Sink = eventlog.Discard{}
	if *sinkTarget != "" {
		client, err := grpcsink.Dial(*sinkTarget, grpcsink.DialOptions{Timeout: *sinkTimeout})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		defer client.Close()
		sink = client
	}

	host := collection.NewRegistry(cas, sink)
	filter := opfilter.NewMemory()

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	adminrpc.RegisterRegistryServer(s, adminrpc.NewServer(host, filter))

	fmt.Fprintf(os.Stderr, "mintlock-registryd listening on %s (metadata-backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
