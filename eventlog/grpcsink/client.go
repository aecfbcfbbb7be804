package grpcsink

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/eventlog"
)

// Client implements eventlog.Sink over the Sink gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client SinkClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ eventlog.Sink = (*Client)(nil)

type DialOptions struct {
	// Timeout applies per RPC when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

// Dial connects to a Sink service at target.
func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts, grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
		))
	}
	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewSinkClient(cc), Timeout: opts.Timeout}, nil
}

// NewClient wraps an existing connection (e.g. a bufconn in tests).
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewSinkClient(cc)}
}

func (c *Client) Close() error { return c.cc.Close() }

func (c *Client) Emit(collection addr.Address, name string, payload map[string]any) error {
	body := map[string]any{
		"collection": collection.String(),
		"name":       name,
	}
	if payload != nil {
		body["payload"] = payload
	}
	st, err := structpb.NewStruct(body)
	if err != nil {
		return fmt.Errorf("grpcsink: encode event: %w", err)
	}

	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	_, err = c.client.Emit(ctx, st)
	return err
}
