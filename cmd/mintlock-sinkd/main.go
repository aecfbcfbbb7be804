// mintlock-sinkd is a standalone event sink: it serves the Sink gRPC service
// and appends every received event as one JSON line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"google.golang.org/grpc"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/eventlog"
	"mintlock.io/mintlock/eventlog/grpcsink"
)

// jsonlSink appends events to w as newline-delimited JSON.
type jsonlSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *jsonlSink) Emit(collection addr.Address, name string, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(eventlog.Event{Collection: collection, Name: name, Payload: payload})
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = s.w.Write(b)
	return err
}

func main() {
	fs := flag.NewFlagSet("mintlock-sinkd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7781", "listen address")
	out := fs.String("out", "-", "output file for the JSONL event log ('-' for stdout)")
	_ = fs.Parse(os.Args[1:])

	w := io.Writer(os.Stdout)
	if *out != "-" {
		f, err := os.OpenFile(*out, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		defer f.Close()
		w = f
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcsink.RegisterSinkServer(s, &grpcsink.Server{Sink: &jsonlSink{w: w}})

	fmt.Fprintf(os.Stderr, "mintlock-sinkd listening on %s (out=%s)\n", lis.Addr().String(), *out)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
