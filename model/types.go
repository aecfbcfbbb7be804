package model

// Signed operation names carried in Envelope.Op.
const (
	OpCreateCollection            = "create_collection"
	OpSetDefaultTokenManager      = "set_default_token_manager"
	OpRemoveDefaultTokenManager   = "remove_default_token_manager"
	OpSetGranularTokenManagers    = "set_granular_token_managers"
	OpRemoveGranularTokenManagers = "remove_granular_token_managers"
	OpSetDefaultRoyalty           = "set_default_royalty"
	OpSetGranularRoyalties        = "set_granular_royalties"
	OpSetRoyaltyManager           = "set_royalty_manager"
	OpRemoveRoyaltyManager        = "remove_royalty_manager"
	OpRegisterMinter              = "register_minter"
	OpUnregisterMinter            = "unregister_minter"
	OpSetOperatorFilter           = "set_operator_filter"
	OpClearOperatorFilter         = "clear_operator_filter"
	OpMint                        = "mint"
	OpMintAt                      = "mint_at"
	OpFreezeSupply                = "freeze_supply"
	OpApprove                     = "approve"
	OpSetApprovalForAll           = "set_approval_for_all"
	OpTransferFrom                = "transfer_from"
	OpSafeTransferFrom            = "safe_transfer_from"
	OpSetTokenMetadata            = "set_token_metadata"
	OpTransferOwnership           = "transfer_ownership"
)

// Unsigned query names carried in Query.Op.
const (
	QueryCollectionInfo   = "collection_info"
	QueryListCollections  = "list_collections"
	QueryOwnerOf          = "owner_of"
	QueryBalanceOf        = "balance_of"
	QueryGetApproved      = "get_approved"
	QueryIsApprovedForAll = "is_approved_for_all"
	QueryTokenManagerOf   = "token_manager_of"
	QueryRoyaltyInfo      = "royalty_info"
	QueryTokenMetadata    = "token_metadata"
	QueryMinters          = "minters"
	QueryEvents           = "events"
)

// Managers travel as builtin specs ("locked", "owneronly:0x...") resolved
// server-side; addresses travel 0x-hex; token ids are JSON numbers.

type CreateCollectionParams struct {
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	SupplyCap uint64 `json:"supplyCap,omitempty"`
}

type CreateCollectionResult struct {
	Collection string `json:"collection"`
}

type SetManagerParams struct {
	Manager string `json:"manager"`
}

type GranularManagersParams struct {
	IDs      []uint64 `json:"ids"`
	Managers []string `json:"managers"`
}

type RemoveGranularParams struct {
	IDs []uint64 `json:"ids"`
}

type RoyaltyRecord struct {
	Recipient string `json:"recipient"`
	BPS       uint32 `json:"bps"`
}

type SetDefaultRoyaltyParams struct {
	Record RoyaltyRecord `json:"record"`
}

type GranularRoyaltiesParams struct {
	IDs     []uint64        `json:"ids"`
	Records []RoyaltyRecord `json:"records"`
}

type MinterParams struct {
	Minter string `json:"minter"`
}

type SetOperatorFilterParams struct {
	Registry    string `json:"registry"`
	SubscribeTo string `json:"subscribeTo,omitempty"`
}

type MintParams struct {
	To string `json:"to"`
	// ID is required for mint_at and ignored for mint.
	ID uint64 `json:"id,omitempty"`
}

type MintResult struct {
	ID uint64 `json:"id"`
}

type ApproveParams struct {
	Approved string `json:"approved"`
	ID       uint64 `json:"id"`
}

type SetApprovalForAllParams struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type TransferFromParams struct {
	From string `json:"from"`
	To   string `json:"to"`
	ID   uint64 `json:"id"`
	// Data is only honored by safe_transfer_from; base64 in JSON.
	Data []byte `json:"data,omitempty"`
}

type SetTokenMetadataParams struct {
	ID uint64 `json:"id"`
	// Metadata is base64 in JSON (encoding/json []byte convention).
	Metadata []byte `json:"metadata"`
}

type SetTokenMetadataResult struct {
	CID string `json:"cid"`
}

type TransferOwnershipParams struct {
	NewOwner string `json:"newOwner"`
}

type TokenParams struct {
	ID uint64 `json:"id"`
}

type AddressParams struct {
	Address string `json:"address"`
}

type OwnerOperatorParams struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

type RoyaltyInfoParams struct {
	ID        uint64 `json:"id"`
	SalePrice uint64 `json:"salePrice"`
}

type RoyaltyInfoResult struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

type CollectionInfo struct {
	Collection     string `json:"collection"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	Owner          string `json:"owner"`
	SupplyCap      uint64 `json:"supplyCap"`
	TotalMinted    uint64 `json:"totalMinted"`
	Frozen         bool   `json:"frozen"`
	OperatorFilter string `json:"operatorFilter,omitempty"`
}

type AddressResult struct {
	Address string `json:"address"`
}

type BoolResult struct {
	Value bool `json:"value"`
}

type Uint64Result struct {
	Value uint64 `json:"value"`
}

type StringResult struct {
	Value string `json:"value"`
}

type AddressListResult struct {
	Addresses []string `json:"addresses"`
}

type TokenMetadataResult struct {
	CID      string `json:"cid"`
	Metadata []byte `json:"metadata"`
}

type EventRecord struct {
	Collection string         `json:"collection"`
	Name       string         `json:"name"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type EventsResult struct {
	Events []EventRecord `json:"events"`
}
