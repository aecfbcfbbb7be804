package grpcsink

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/eventlog"
)

func TestSinkRoundTrip(t *testing.T) {
	mem := eventlog.NewMemory()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterSinkServer(srv, &Server{Sink: mem})

	go func() {
		_ = srv.Serve(lis)
	}()
	defer srv.Stop()

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	defer cc.Close()

	client := &Client{cc: cc, client: NewSinkClient(cc), Timeout: 2 * time.Second}

	coll := addr.MustParse("0x00112233445566778899aabbccddeeff00112233")
	payload := map[string]any{
		"manager": "locked",
		"ids":     []any{"1", "2"},
		"frozen":  true,
	}
	if err := client.Emit(coll, eventlog.GranularTokenManagersSet, payload); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := client.Emit(coll, eventlog.SupplyFrozen, nil); err != nil {
		t.Fatalf("Emit(nil payload): %v", err)
	}

	events := mem.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	ev := events[0]
	if ev.Collection != coll || ev.Name != eventlog.GranularTokenManagersSet {
		t.Fatalf("unexpected event header: %+v", ev)
	}
	if ev.Payload["manager"] != "locked" {
		t.Fatalf("payload field lost: %+v", ev.Payload)
	}
	ids, ok := ev.Payload["ids"].([]any)
	if !ok || len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("ids payload mismatch: %+v", ev.Payload["ids"])
	}
	if ev.Payload["frozen"] != true {
		t.Fatalf("bool payload lost: %+v", ev.Payload)
	}
	if events[1].Payload != nil && len(events[1].Payload) != 0 {
		t.Fatalf("empty payload must arrive empty, got %+v", events[1].Payload)
	}
}

func TestServerRejectsBadRequests(t *testing.T) {
	mem := eventlog.NewMemory()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterSinkServer(srv, &Server{Sink: mem})
	go func() {
		_ = srv.Serve(lis)
	}()
	defer srv.Stop()

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	defer cc.Close()
	client := &Client{cc: cc, client: NewSinkClient(cc)}

	// Zero address is parseable; an empty name is not allowed.
	if err := client.Emit(addr.Zero, "", nil); err == nil {
		t.Fatalf("expected error for missing event name")
	}
	if len(mem.Events()) != 0 {
		t.Fatalf("rejected emit must not be recorded")
	}
}
