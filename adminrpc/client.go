package adminrpc

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"mintlock.io/mintlock/keys"
	"mintlock.io/mintlock/model"
)

// Client wraps the Registry gRPC client with envelope plumbing.
type Client struct {
	cc *grpc.ClientConn
	rc RegistryClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

// Dial connects to a Registry service at target.
func Dial(target string, opts DialOptions) (*Client, error) {
	cc, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, rc: NewRegistryClient(cc), Timeout: opts.Timeout}, nil
}

// NewClient wraps an existing connection (e.g. a bufconn in tests).
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, rc: NewRegistryClient(cc)}
}

func (c *Client) Close() error { return c.cc.Close() }

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	return context.Background(), func() {}
}

// Invoke sends a signed envelope. The returned response carries either a
// result or a coded error; transport failures surface as plain errors.
func (c *Client) Invoke(env *model.Envelope) (*model.Response, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.Invoke(ctx, wrapperspb.Bytes(b))
	if err != nil {
		return nil, err
	}
	return decodeResponse(out)
}

// Query sends an unsigned read.
func (c *Client) Query(q *model.Query) (*model.Response, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.Query(ctx, wrapperspb.Bytes(b))
	if err != nil {
		return nil, err
	}
	return decodeResponse(out)
}

func decodeResponse(out *wrapperspb.BytesValue) (*model.Response, error) {
	var resp model.Response
	if err := json.Unmarshal(out.GetValue(), &resp); err != nil {
		return nil, fmt.Errorf("adminrpc: malformed response: %w", err)
	}
	return &resp, nil
}

// SignEnvelopeEd25519 fills in the envelope's actor key and signature from an
// Ed25519 seed. The nonce and all operation fields must be final first.
func SignEnvelopeEd25519(env *model.Envelope, seed []byte) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("adminrpc: seed must be %d bytes", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	env.ActorKey = keys.ActorKeyFromPublicKey(keys.AlgEd25519, priv.Public().(ed25519.PublicKey))
	sb, err := env.SigningBytes()
	if err != nil {
		return err
	}
	env.Signature = keys.SignEd25519(sb, priv)
	return nil
}

// SignEnvelopeDilithium3 fills in the envelope's actor key and signature from
// a Dilithium3 keypair.
func SignEnvelopeDilithium3(env *model.Envelope, pub *mode3.PublicKey, priv *mode3.PrivateKey) error {
	if pub == nil || priv == nil {
		return fmt.Errorf("adminrpc: missing keypair")
	}
	env.ActorKey = keys.ActorKeyFromPublicKey(keys.AlgDilithium3, pub.Bytes())
	sb, err := env.SigningBytes()
	if err != nil {
		return err
	}
	sig, err := keys.SignDilithium3(sb, priv)
	if err != nil {
		return err
	}
	env.Signature = sig
	return nil
}
