package adminrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/collection"
	"mintlock.io/mintlock/keys"
	"mintlock.io/mintlock/model"
	"mintlock.io/mintlock/opfilter"
	"mintlock.io/mintlock/policy"
	"mintlock.io/mintlock/policy/builtin"
	"mintlock.io/mintlock/royalty"
)

// Server serves the admin Registry over a hosted collection.Registry.
//
// Envelope verification: the signature must check out against the embedded
// actor key, the actor address is derived from that key, and the nonce must
// be strictly greater than the last accepted nonce for that actor. A nonce is
// consumed once the signature verifies, whether or not the operation itself
// succeeds, so a rejected operation cannot be replayed either.
type Server struct {
	UnimplementedRegistryServer

	Host *collection.Registry

	// Filter is the operator-filter registry collections link against via
	// set_operator_filter. Nil disables those two operations.
	Filter opfilter.Registry

	mu     sync.Mutex
	nonces map[addr.Address]uint64
}

// NewServer creates a Server over host.
func NewServer(host *collection.Registry, filter opfilter.Registry) *Server {
	return &Server{Host: host, Filter: filter, nonces: make(map[addr.Address]uint64)}
}

func respond(result any, err error) (*wrapperspb.BytesValue, error) {
	resp := model.Response{Error: model.FromError(err)}
	if err == nil && result != nil {
		b, merr := json.Marshal(result)
		if merr != nil {
			return nil, status.Error(codes.Internal, merr.Error())
		}
		resp.Result = b
	}
	b, merr := json.Marshal(resp)
	if merr != nil {
		return nil, status.Error(codes.Internal, merr.Error())
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Invoke(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Host == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing registry")
	}

	var env model.Envelope
	if err := json.Unmarshal(in.GetValue(), &env); err != nil {
		return respond(nil, model.NewError(model.CodeInvalidRequest, "malformed envelope"))
	}

	alg, pub, err := keys.ParseActorKey(env.ActorKey)
	if err != nil {
		return respond(nil, model.NewError(model.CodeInvalidRequest, err.Error()))
	}
	sb, err := env.SigningBytes()
	if err != nil {
		return respond(nil, model.NewError(model.CodeInvalidRequest, err.Error()))
	}
	if err := keys.Verify(alg, pub, sb, env.Signature); err != nil {
		return respond(nil, model.NewError(model.CodeBadSignature, err.Error()))
	}
	actor := addr.FromPublicKey(pub)

	s.mu.Lock()
	if env.Nonce <= s.nonces[actor] {
		last := s.nonces[actor]
		s.mu.Unlock()
		return respond(nil, model.NewError(model.CodeBadNonce,
			fmt.Sprintf("nonce %d is not greater than %d", env.Nonce, last)))
	}
	s.nonces[actor] = env.Nonce
	s.mu.Unlock()

	result, err := s.dispatch(&env, actor)
	return respond(result, err)
}

func (s *Server) dispatch(env *model.Envelope, actor addr.Address) (any, error) {
	if env.Op == model.OpCreateCollection {
		var p model.CreateCollectionParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		c, err := s.Host.Create(collection.Config{
			Name:      p.Name,
			Symbol:    p.Symbol,
			Owner:     actor,
			SupplyCap: p.SupplyCap,
		})
		if err != nil {
			return nil, err
		}
		return model.CreateCollectionResult{Collection: c.Addr().String()}, nil
	}

	c, err := s.target(env.Collection)
	if err != nil {
		return nil, err
	}

	switch env.Op {
	case model.OpSetDefaultTokenManager:
		m, err := managerParam(env.Params)
		if err != nil {
			return nil, err
		}
		return nil, c.SetDefaultTokenManager(actor, m)

	case model.OpRemoveDefaultTokenManager:
		return nil, c.RemoveDefaultTokenManager(actor)

	case model.OpSetGranularTokenManagers:
		var p model.GranularManagersParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		ms := make([]policy.Manager, len(p.Managers))
		for i, spec := range p.Managers {
			m, err := builtin.Resolve(spec)
			if err != nil {
				return nil, model.NewError(model.CodeInvalidRequest, err.Error())
			}
			ms[i] = m
		}
		return nil, c.SetGranularTokenManagers(actor, p.IDs, ms)

	case model.OpRemoveGranularTokenManagers:
		var p model.RemoveGranularParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		return nil, c.RemoveGranularTokenManagers(actor, p.IDs)

	case model.OpSetDefaultRoyalty:
		var p model.SetDefaultRoyaltyParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		rec, err := royaltyRecord(p.Record)
		if err != nil {
			return nil, err
		}
		return nil, c.SetDefaultRoyalty(actor, rec)

	case model.OpSetGranularRoyalties:
		var p model.GranularRoyaltiesParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		recs := make([]royalty.Record, len(p.Records))
		for i, r := range p.Records {
			rec, err := royaltyRecord(r)
			if err != nil {
				return nil, err
			}
			recs[i] = rec
		}
		return nil, c.SetGranularRoyalties(actor, p.IDs, recs)

	case model.OpSetRoyaltyManager:
		m, err := managerParam(env.Params)
		if err != nil {
			return nil, err
		}
		return nil, c.SetRoyaltyManager(actor, m)

	case model.OpRemoveRoyaltyManager:
		return nil, c.RemoveRoyaltyManager(actor)

	case model.OpRegisterMinter, model.OpUnregisterMinter:
		var p model.MinterParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		m, err := parseAddr(p.Minter)
		if err != nil {
			return nil, err
		}
		if env.Op == model.OpRegisterMinter {
			return nil, c.RegisterMinter(actor, m)
		}
		return nil, c.UnregisterMinter(actor, m)

	case model.OpSetOperatorFilter:
		if s.Filter == nil {
			return nil, model.NewError(model.CodeInvalidRequest, "no operator-filter registry configured")
		}
		var p model.SetOperatorFilterParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		regAddr, err := parseAddr(p.Registry)
		if err != nil {
			return nil, err
		}
		subscribeTo := addr.Zero
		if p.SubscribeTo != "" {
			if subscribeTo, err = parseAddr(p.SubscribeTo); err != nil {
				return nil, err
			}
		}
		return nil, c.SetOperatorFilter(actor, s.Filter, regAddr, subscribeTo)

	case model.OpClearOperatorFilter:
		return nil, c.ClearOperatorFilter(actor)

	case model.OpMint:
		var p model.MintParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		to, err := parseAddr(p.To)
		if err != nil {
			return nil, err
		}
		id, err := c.Mint(actor, to)
		if err != nil {
			return nil, err
		}
		return model.MintResult{ID: id}, nil

	case model.OpMintAt:
		var p model.MintParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		to, err := parseAddr(p.To)
		if err != nil {
			return nil, err
		}
		if err := c.MintAt(actor, to, p.ID); err != nil {
			return nil, err
		}
		return model.MintResult{ID: p.ID}, nil

	case model.OpFreezeSupply:
		return nil, c.FreezeSupply(actor)

	case model.OpApprove:
		var p model.ApproveParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		// An empty approved address clears the approval.
		approved := addr.Zero
		if p.Approved != "" {
			var err error
			if approved, err = parseAddr(p.Approved); err != nil {
				return nil, err
			}
		}
		return nil, c.Approve(actor, approved, p.ID)

	case model.OpSetApprovalForAll:
		var p model.SetApprovalForAllParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		operator, err := parseAddr(p.Operator)
		if err != nil {
			return nil, err
		}
		return nil, c.SetApprovalForAll(actor, operator, p.Approved)

	case model.OpTransferFrom, model.OpSafeTransferFrom:
		var p model.TransferFromParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		from, err := parseAddr(p.From)
		if err != nil {
			return nil, err
		}
		to, err := parseAddr(p.To)
		if err != nil {
			return nil, err
		}
		if env.Op == model.OpSafeTransferFrom {
			return nil, c.SafeTransferFrom(actor, from, to, p.ID, p.Data)
		}
		return nil, c.TransferFrom(actor, from, to, p.ID)

	case model.OpSetTokenMetadata:
		var p model.SetTokenMetadataParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		mcid, err := c.SetTokenMetadata(actor, p.ID, p.Metadata)
		if err != nil {
			return nil, err
		}
		return model.SetTokenMetadataResult{CID: mcid.String()}, nil

	case model.OpTransferOwnership:
		var p model.TransferOwnershipParams
		if err := unmarshalParams(env.Params, &p); err != nil {
			return nil, err
		}
		newOwner, err := parseAddr(p.NewOwner)
		if err != nil {
			return nil, err
		}
		return nil, c.TransferOwnership(actor, newOwner)
	}

	return nil, model.NewError(model.CodeInvalidRequest, fmt.Sprintf("unknown op %q", env.Op))
}

func (s *Server) Query(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Host == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing registry")
	}

	var q model.Query
	if err := json.Unmarshal(in.GetValue(), &q); err != nil {
		return respond(nil, model.NewError(model.CodeInvalidRequest, "malformed query"))
	}

	if q.Op == model.QueryListCollections {
		list := s.Host.List()
		out := make([]model.CollectionInfo, len(list))
		for i, c := range list {
			out[i] = collectionInfo(c)
		}
		return respond(out, nil)
	}

	c, err := s.target(q.Collection)
	if err != nil {
		return respond(nil, err)
	}
	result, err := s.query(&q, c)
	return respond(result, err)
}

func (s *Server) query(q *model.Query, c *collection.Collection) (any, error) {
	switch q.Op {
	case model.QueryCollectionInfo:
		return collectionInfo(c), nil

	case model.QueryOwnerOf:
		var p model.TokenParams
		if err := unmarshalParams(q.Params, &p); err != nil {
			return nil, err
		}
		owner, err := c.OwnerOf(p.ID)
		if err != nil {
			return nil, err
		}
		return model.AddressResult{Address: owner.String()}, nil

	case model.QueryBalanceOf:
		var p model.AddressParams
		if err := unmarshalParams(q.Params, &p); err != nil {
			return nil, err
		}
		a, err := parseAddr(p.Address)
		if err != nil {
			return nil, err
		}
		return model.Uint64Result{Value: c.BalanceOf(a)}, nil

	case model.QueryGetApproved:
		var p model.TokenParams
		if err := unmarshalParams(q.Params, &p); err != nil {
			return nil, err
		}
		approved, err := c.GetApproved(p.ID)
		if err != nil {
			return nil, err
		}
		return model.AddressResult{Address: approved.String()}, nil

	case model.QueryIsApprovedForAll:
		var p model.OwnerOperatorParams
		if err := unmarshalParams(q.Params, &p); err != nil {
			return nil, err
		}
		owner, err := parseAddr(p.Owner)
		if err != nil {
			return nil, err
		}
		operator, err := parseAddr(p.Operator)
		if err != nil {
			return nil, err
		}
		return model.BoolResult{Value: c.IsApprovedForAll(owner, operator)}, nil

	case model.QueryTokenManagerOf:
		var p model.TokenParams
		if err := unmarshalParams(q.Params, &p); err != nil {
			return nil, err
		}
		return model.StringResult{Value: policy.Describe(c.TokenManagerOf(p.ID))}, nil

	case model.QueryRoyaltyInfo:
		var p model.RoyaltyInfoParams
		if err := unmarshalParams(q.Params, &p); err != nil {
			return nil, err
		}
		recipient, amount := c.RoyaltyInfo(p.ID, p.SalePrice)
		return model.RoyaltyInfoResult{Recipient: recipient.String(), Amount: amount}, nil

	case model.QueryTokenMetadata:
		var p model.TokenParams
		if err := unmarshalParams(q.Params, &p); err != nil {
			return nil, err
		}
		b, mcid, err := c.TokenMetadata(p.ID)
		if err != nil {
			return nil, err
		}
		return model.TokenMetadataResult{CID: mcid.String(), Metadata: b}, nil

	case model.QueryMinters:
		ms := c.Minters()
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.String()
		}
		return model.AddressListResult{Addresses: out}, nil

	case model.QueryEvents:
		evs := c.Events()
		out := make([]model.EventRecord, len(evs))
		for i, ev := range evs {
			out[i] = model.EventRecord{
				Collection: ev.Collection.String(),
				Name:       ev.Name,
				Payload:    ev.Payload,
			}
		}
		return model.EventsResult{Events: out}, nil
	}

	return nil, model.NewError(model.CodeInvalidRequest, fmt.Sprintf("unknown query %q", q.Op))
}

func (s *Server) target(collectionAddr string) (*collection.Collection, error) {
	a, err := parseAddr(collectionAddr)
	if err != nil {
		return nil, err
	}
	return s.Host.Get(a)
}

func collectionInfo(c *collection.Collection) model.CollectionInfo {
	info := model.CollectionInfo{
		Collection:  c.Addr().String(),
		Name:        c.Name(),
		Symbol:      c.Symbol(),
		Owner:       c.Owner().String(),
		SupplyCap:   c.SupplyCap(),
		TotalMinted: c.TotalMinted(),
		Frozen:      c.Frozen(),
	}
	if filter := c.OperatorFilterAddr(); filter.Defined() {
		info.OperatorFilter = filter.String()
	}
	return info
}

func unmarshalParams(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return model.NewError(model.CodeInvalidRequest, "missing params")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return model.NewError(model.CodeInvalidRequest, "malformed params: "+err.Error())
	}
	return nil
}

func managerParam(raw json.RawMessage) (policy.Manager, error) {
	var p model.SetManagerParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	m, err := builtin.Resolve(p.Manager)
	if err != nil {
		return nil, model.NewError(model.CodeInvalidRequest, err.Error())
	}
	return m, nil
}

func parseAddr(s string) (addr.Address, error) {
	a, err := addr.Parse(s)
	if err != nil {
		return addr.Zero, model.NewError(model.CodeInvalidRequest, err.Error())
	}
	return a, nil
}

func royaltyRecord(r model.RoyaltyRecord) (royalty.Record, error) {
	recipient, err := parseAddr(r.Recipient)
	if err != nil {
		return royalty.Record{}, err
	}
	return royalty.Record{Recipient: recipient, BPS: r.BPS}, nil
}
