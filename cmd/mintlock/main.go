// mintlock is the operator CLI: local key management plus signed admin
// operations and queries against a mintlock-registryd.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"mintlock.io/mintlock/adminrpc"
	"mintlock.io/mintlock/keys"
	"mintlock.io/mintlock/model"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "collection":
		return cmdCollection(args[1:], out, errOut)
	case "manager":
		return cmdManager(args[1:], out, errOut)
	case "royalty":
		return cmdRoyalty(args[1:], out, errOut)
	case "minter":
		return cmdMinter(args[1:], out, errOut)
	case "filter":
		return cmdFilter(args[1:], out, errOut)
	case "mint":
		return cmdMint(args[1:], out, errOut)
	case "freeze":
		return cmdFreeze(args[1:], out, errOut)
	case "approve":
		return cmdApprove(args[1:], out, errOut)
	case "approve-all":
		return cmdApproveAll(args[1:], out, errOut)
	case "transfer":
		return cmdTransfer(args[1:], out, errOut)
	case "metadata":
		return cmdMetadata(args[1:], out, errOut)
	case "ownership":
		return cmdOwnership(args[1:], out, errOut)
	case "query":
		return cmdQuery(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "mintlock: collection administration CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mintlock key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  mintlock key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  mintlock key list")
	fmt.Fprintln(w, "  mintlock key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  mintlock key addr --name <name> [--role <role>]")
	fmt.Fprintln(w, "  mintlock collection create --name <n> --symbol <s> [--supply-cap <n>] <signer>")
	fmt.Fprintln(w, "  mintlock manager set-default|remove-default|set-granular|remove-granular ... <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock royalty set-default|set-granular|set-manager|remove-manager ... <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock minter register|unregister --minter <0x..> <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock filter set --registry <0x..> [--subscribe-to <0x..>] | clear  <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock mint --to <0x..> [--id <n>] <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock freeze <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock approve --approved <0x..> --id <n> <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock approve-all --operator <0x..> [--revoke] <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock transfer --from <0x..> --to <0x..> --id <n> [--data <hex>] <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock metadata set --id <n> --file <path> <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock ownership transfer --new-owner <0x..> <signer> --collection <0x..>")
	fmt.Fprintln(w, "  mintlock query <op> [--collection <0x..>] [--params <json>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Signer flags (one of):")
	fmt.Fprintln(w, "  --signer <name> [--signer-role <role>]   key from ~/.mintlock/keys")
	fmt.Fprintln(w, "  --seed-hex <64hex>                       literal ed25519 seed")
	fmt.Fprintln(w, "  --key-file <path>                        seed file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common flags: --rpc <host:port> (default 127.0.0.1:7780), --nonce <n>,")
	fmt.Fprintln(w, "  --keys-dir <dir>. Nonces default to the current unix nano time; they")
	fmt.Fprintln(w, "  must be strictly increasing per signing key.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manager specs: locked | owneronly:<0x..>")
}

// common carries the flags shared by every signed command.
type common struct {
	rpc        string
	timeout    time.Duration
	collection string

	signer     string
	signerRole string
	seedHex    string
	keyFile    string
	keysDir    string
	nonce      uint64
}

func (c *common) register(fs *flag.FlagSet, needsCollection bool) {
	fs.StringVar(&c.rpc, "rpc", "127.0.0.1:7780", "registry daemon address")
	fs.DurationVar(&c.timeout, "timeout", 10*time.Second, "per-RPC timeout")
	if needsCollection {
		fs.StringVar(&c.collection, "collection", "", "collection address (0x..)")
	}
	fs.StringVar(&c.signer, "signer", "", "signing key name")
	fs.StringVar(&c.signerRole, "signer-role", "", "signing key role")
	fs.StringVar(&c.seedHex, "seed-hex", "", "literal ed25519 seed (64 hex chars)")
	fs.StringVar(&c.keyFile, "key-file", "", "seed file path")
	fs.StringVar(&c.keysDir, "keys-dir", "", "keystore directory (default ~/.mintlock/keys)")
	fs.Uint64Var(&c.nonce, "nonce", 0, "envelope nonce (default: unix nano time)")
}

func (c *common) seed(errOut io.Writer) ([]byte, bool) {
	ks, err := keys.OpenStore(c.keysDir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return nil, false
	}
	seed, err := ks.ResolveSeed(c.seedHex, c.signer, c.signerRole, c.keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "signer: %v\n", err)
		return nil, false
	}
	return seed, true
}

// invoke signs and sends one envelope, printing the result or coded error.
func (c *common) invoke(out, errOut io.Writer, op string, needsCollection bool, params any) int {
	if needsCollection && c.collection == "" {
		fmt.Fprintln(errOut, "missing --collection")
		return 2
	}
	seed, ok := c.seed(errOut)
	if !ok {
		return 2
	}

	env := &model.Envelope{Op: op, Collection: c.collection, Nonce: c.nonce}
	if env.Nonce == 0 {
		env.Nonce = uint64(time.Now().UnixNano())
	}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			fmt.Fprintf(errOut, "params: %v\n", err)
			return 1
		}
		env.Params = b
	}
	if err := adminrpc.SignEnvelopeEd25519(env, seed); err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}

	client, err := adminrpc.Dial(c.rpc, adminrpc.DialOptions{Timeout: c.timeout})
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer client.Close()

	resp, err := client.Invoke(env)
	if err != nil {
		fmt.Fprintf(errOut, "rpc: %v\n", err)
		return 1
	}
	return printResponse(out, errOut, resp)
}

func printResponse(out, errOut io.Writer, resp *model.Response) int {
	if resp.Error != nil {
		fmt.Fprintln(errOut, resp.Error.Error())
		return 1
	}
	if len(resp.Result) == 0 {
		fmt.Fprintln(out, "OK")
		return 0
	}
	var pretty any
	if err := json.Unmarshal(resp.Result, &pretty); err == nil {
		b, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Fprintln(out, string(b))
		return 0
	}
	fmt.Fprintln(out, string(resp.Result))
	return 0
}

// uintList collects repeated --id flags.
type uintList []uint64

func (l *uintList) String() string { return fmt.Sprint([]uint64(*l)) }

func (l *uintList) Set(s string) error {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*l = append(*l, v)
	return nil
}

// stringList collects repeated string flags.
type stringList []string

func (l *stringList) String() string { return fmt.Sprint([]string(*l)) }

func (l *stringList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

// uint32List collects repeated --bps flags.
type uint32List []uint32

func (l *uint32List) String() string { return fmt.Sprint([]uint32(*l)) }

func (l *uint32List) Set(s string) error {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*l = append(*l, uint32(v))
	return nil
}

// --- key ---

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: mintlock key init|derive|list|export|addr ...")
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut, false)
	case "addr":
		return cmdKeyExport(args[1:], out, errOut, true)
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var name, seedHex, dir string
	var force bool
	fs.StringVar(&name, "name", "", "Key name (directory under the keystore)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible demos)")
	fs.StringVar(&dir, "keys-dir", "", "keystore directory")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}

	ks, err := keys.OpenStore(dir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	var seed []byte
	if seedHex != "" {
		if seed, err = keys.ParseSeedHex(seedHex); err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	actorKey, rootPath, err := ks.InitRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", actorKey)
	fmt.Fprintf(out, "Address: %s\n", mustAddr(actorKey))
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var from, role, dir string
	var force bool
	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. minting, royalty)")
	fs.StringVar(&dir, "keys-dir", "", "keystore directory")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" || role == "" {
		fmt.Fprintln(errOut, "missing --from or --role")
		return 2
	}

	ks, err := keys.OpenStore(dir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	actorKey, rolePath, err := ks.DeriveRoleKey(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", actorKey)
	fmt.Fprintf(out, "Address: %s\n", mustAddr(actorKey))
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var dir string
	fs.StringVar(&dir, "keys-dir", "", "keystore directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.OpenStore(dir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.List()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		if len(e.Roles) == 0 {
			fmt.Fprintln(out, e.Name)
			continue
		}
		fmt.Fprintf(out, "%s\troles: %v\n", e.Name, e.Roles)
	}
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer, addrOnly bool) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var name, role, dir string
	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports derived role key)")
	fs.StringVar(&dir, "keys-dir", "", "keystore directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	ks, err := keys.OpenStore(dir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	actorKey, err := ks.ActorKey(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	if addrOnly {
		fmt.Fprintln(out, mustAddr(actorKey))
		return 0
	}
	fmt.Fprintln(out, actorKey)
	return 0
}

func mustAddr(actorKey string) string {
	a, err := keys.ActorAddress(actorKey)
	if err != nil {
		return "(invalid)"
	}
	return a.String()
}

// --- collection ---

func cmdCollection(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "create" {
		fmt.Fprintln(errOut, "usage: mintlock collection create --name <n> --symbol <s> [--supply-cap <n>] <signer>")
		return 2
	}
	fs := flag.NewFlagSet("collection create", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, false)
	var name, symbol string
	var supplyCap uint64
	fs.StringVar(&name, "name", "", "collection name")
	fs.StringVar(&symbol, "symbol", "", "collection symbol")
	fs.Uint64Var(&supplyCap, "supply-cap", 0, "mint cap (0: unbounded)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if name == "" || symbol == "" {
		fmt.Fprintln(errOut, "missing --name or --symbol")
		return 2
	}
	return c.invoke(out, errOut, model.OpCreateCollection, false, model.CreateCollectionParams{
		Name: name, Symbol: symbol, SupplyCap: supplyCap,
	})
}

// --- manager ---

func cmdManager(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: mintlock manager set-default|remove-default|set-granular|remove-granular ...")
		return 2
	}
	fs := flag.NewFlagSet("manager "+args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var manager string
	var ids uintList
	var managers stringList
	fs.StringVar(&manager, "manager", "", "manager spec (set-default)")
	fs.Var(&ids, "id", "token id (repeatable)")
	fs.Var(&managers, "granular-manager", "manager spec per --id (repeatable, set-granular)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch args[0] {
	case "set-default":
		if manager == "" {
			fmt.Fprintln(errOut, "missing --manager")
			return 2
		}
		return c.invoke(out, errOut, model.OpSetDefaultTokenManager, true, model.SetManagerParams{Manager: manager})
	case "remove-default":
		return c.invoke(out, errOut, model.OpRemoveDefaultTokenManager, true, nil)
	case "set-granular":
		if len(ids) == 0 || len(ids) != len(managers) {
			fmt.Fprintln(errOut, "need matching --id and --granular-manager flags")
			return 2
		}
		return c.invoke(out, errOut, model.OpSetGranularTokenManagers, true, model.GranularManagersParams{
			IDs: ids, Managers: managers,
		})
	case "remove-granular":
		if len(ids) == 0 {
			fmt.Fprintln(errOut, "missing --id")
			return 2
		}
		return c.invoke(out, errOut, model.OpRemoveGranularTokenManagers, true, model.RemoveGranularParams{IDs: ids})
	default:
		fmt.Fprintf(errOut, "unknown manager subcommand: %s\n", args[0])
		return 2
	}
}

// --- royalty ---

func cmdRoyalty(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: mintlock royalty set-default|set-granular|set-manager|remove-manager ...")
		return 2
	}
	fs := flag.NewFlagSet("royalty "+args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var recipient, manager string
	var bpsOne uint64
	var ids uintList
	var recipients stringList
	var bps uint32List
	fs.StringVar(&recipient, "recipient", "", "royalty recipient (set-default)")
	fs.Uint64Var(&bpsOne, "bps", 0, "royalty basis points, 0..10000 (set-default)")
	fs.StringVar(&manager, "manager", "", "manager spec (set-manager)")
	fs.Var(&ids, "id", "token id (repeatable, set-granular)")
	fs.Var(&recipients, "granular-recipient", "recipient per --id (repeatable)")
	fs.Var(&bps, "granular-bps", "basis points per --id (repeatable)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch args[0] {
	case "set-default":
		if recipient == "" {
			fmt.Fprintln(errOut, "missing --recipient")
			return 2
		}
		return c.invoke(out, errOut, model.OpSetDefaultRoyalty, true, model.SetDefaultRoyaltyParams{
			Record: model.RoyaltyRecord{Recipient: recipient, BPS: uint32(bpsOne)},
		})
	case "set-granular":
		if len(ids) == 0 || len(ids) != len(recipients) || len(ids) != len(bps) {
			fmt.Fprintln(errOut, "need matching --id, --granular-recipient, and --granular-bps flags")
			return 2
		}
		recs := make([]model.RoyaltyRecord, len(ids))
		for i := range ids {
			recs[i] = model.RoyaltyRecord{Recipient: recipients[i], BPS: bps[i]}
		}
		return c.invoke(out, errOut, model.OpSetGranularRoyalties, true, model.GranularRoyaltiesParams{
			IDs: ids, Records: recs,
		})
	case "set-manager":
		if manager == "" {
			fmt.Fprintln(errOut, "missing --manager")
			return 2
		}
		return c.invoke(out, errOut, model.OpSetRoyaltyManager, true, model.SetManagerParams{Manager: manager})
	case "remove-manager":
		return c.invoke(out, errOut, model.OpRemoveRoyaltyManager, true, nil)
	default:
		fmt.Fprintf(errOut, "unknown royalty subcommand: %s\n", args[0])
		return 2
	}
}

// --- minter ---

func cmdMinter(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: mintlock minter register|unregister --minter <0x..> ...")
		return 2
	}
	fs := flag.NewFlagSet("minter "+args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var m string
	fs.StringVar(&m, "minter", "", "minter address (0x..)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if m == "" {
		fmt.Fprintln(errOut, "missing --minter")
		return 2
	}

	switch args[0] {
	case "register":
		return c.invoke(out, errOut, model.OpRegisterMinter, true, model.MinterParams{Minter: m})
	case "unregister":
		return c.invoke(out, errOut, model.OpUnregisterMinter, true, model.MinterParams{Minter: m})
	default:
		fmt.Fprintf(errOut, "unknown minter subcommand: %s\n", args[0])
		return 2
	}
}

// --- filter ---

func cmdFilter(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: mintlock filter set|clear ...")
		return 2
	}
	fs := flag.NewFlagSet("filter "+args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var registry, subscribeTo string
	fs.StringVar(&registry, "registry", "", "registry address (0x..)")
	fs.StringVar(&subscribeTo, "subscribe-to", "", "registrant whose filtered set to subscribe to")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch args[0] {
	case "set":
		if registry == "" {
			fmt.Fprintln(errOut, "missing --registry")
			return 2
		}
		return c.invoke(out, errOut, model.OpSetOperatorFilter, true, model.SetOperatorFilterParams{
			Registry: registry, SubscribeTo: subscribeTo,
		})
	case "clear":
		return c.invoke(out, errOut, model.OpClearOperatorFilter, true, nil)
	default:
		fmt.Fprintf(errOut, "unknown filter subcommand: %s\n", args[0])
		return 2
	}
}

// --- supply and transfers ---

func cmdMint(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var to string
	var id uint64
	fs.StringVar(&to, "to", "", "recipient address (0x..)")
	fs.Uint64Var(&id, "id", 0, "explicit token id (0: next sequential)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if to == "" {
		fmt.Fprintln(errOut, "missing --to")
		return 2
	}
	if id != 0 {
		return c.invoke(out, errOut, model.OpMintAt, true, model.MintParams{To: to, ID: id})
	}
	return c.invoke(out, errOut, model.OpMint, true, model.MintParams{To: to})
}

func cmdFreeze(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("freeze", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	return c.invoke(out, errOut, model.OpFreezeSupply, true, nil)
}

func cmdApprove(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("approve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var approved string
	var id uint64
	fs.StringVar(&approved, "approved", "", "approved address (empty clears)")
	fs.Uint64Var(&id, "id", 0, "token id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	return c.invoke(out, errOut, model.OpApprove, true, model.ApproveParams{Approved: approved, ID: id})
}

func cmdApproveAll(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("approve-all", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var operator string
	var revoke bool
	fs.StringVar(&operator, "operator", "", "operator address (0x..)")
	fs.BoolVar(&revoke, "revoke", false, "revoke instead of grant")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if operator == "" {
		fmt.Fprintln(errOut, "missing --operator")
		return 2
	}
	return c.invoke(out, errOut, model.OpSetApprovalForAll, true, model.SetApprovalForAllParams{
		Operator: operator, Approved: !revoke,
	})
}

func cmdTransfer(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var from, to, dataHex string
	var id uint64
	fs.StringVar(&from, "from", "", "current holder (0x..)")
	fs.StringVar(&to, "to", "", "recipient (0x..)")
	fs.Uint64Var(&id, "id", 0, "token id")
	fs.StringVar(&dataHex, "data", "", "hex data to attach (uses safe_transfer_from)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" || to == "" {
		fmt.Fprintln(errOut, "missing --from or --to")
		return 2
	}
	p := model.TransferFromParams{From: from, To: to, ID: id}
	op := model.OpTransferFrom
	if dataHex != "" {
		data, err := hex.DecodeString(strings.TrimPrefix(dataHex, "0x"))
		if err != nil {
			fmt.Fprintln(errOut, "bad --data:", err)
			return 2
		}
		p.Data = data
		op = model.OpSafeTransferFrom
	}
	return c.invoke(out, errOut, op, true, p)
}

// --- metadata ---

func cmdMetadata(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: mintlock metadata set|get ...")
		return 2
	}
	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("metadata set", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var c common
		c.register(fs, true)
		var id uint64
		var file string
		fs.Uint64Var(&id, "id", 0, "token id")
		fs.StringVar(&file, "file", "", "metadata file ('-' for stdin)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if file == "" {
			fmt.Fprintln(errOut, "missing --file")
			return 2
		}
		var b []byte
		var err error
		if file == "-" {
			b, err = io.ReadAll(os.Stdin)
		} else {
			b, err = os.ReadFile(file)
		}
		if err != nil {
			fmt.Fprintf(errOut, "read metadata: %v\n", err)
			return 1
		}
		return c.invoke(out, errOut, model.OpSetTokenMetadata, true, model.SetTokenMetadataParams{ID: id, Metadata: b})
	case "get":
		fs := flag.NewFlagSet("metadata get", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var c common
		c.register(fs, true)
		var id uint64
		fs.Uint64Var(&id, "id", 0, "token id")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return c.query(out, errOut, model.QueryTokenMetadata, model.TokenParams{ID: id})
	default:
		fmt.Fprintf(errOut, "unknown metadata subcommand: %s\n", args[0])
		return 2
	}
}

// --- ownership ---

func cmdOwnership(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "transfer" {
		fmt.Fprintln(errOut, "usage: mintlock ownership transfer --new-owner <0x..> ...")
		return 2
	}
	fs := flag.NewFlagSet("ownership transfer", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var newOwner string
	fs.StringVar(&newOwner, "new-owner", "", "new owner address (0x..)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if newOwner == "" {
		fmt.Fprintln(errOut, "missing --new-owner")
		return 2
	}
	return c.invoke(out, errOut, model.OpTransferOwnership, true, model.TransferOwnershipParams{NewOwner: newOwner})
}

// --- queries ---

func (c *common) query(out, errOut io.Writer, op string, params any) int {
	q := &model.Query{Op: op, Collection: c.collection}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			fmt.Fprintf(errOut, "params: %v\n", err)
			return 1
		}
		q.Params = b
	}
	client, err := adminrpc.Dial(c.rpc, adminrpc.DialOptions{Timeout: c.timeout})
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer client.Close()
	resp, err := client.Query(q)
	if err != nil {
		fmt.Fprintf(errOut, "rpc: %v\n", err)
		return 1
	}
	return printResponse(out, errOut, resp)
}

func cmdQuery(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: mintlock query <op> [--collection <0x..>] [--params <json>]")
		fmt.Fprintln(errOut, "ops: collection_info, list_collections, owner_of, balance_of, get_approved,")
		fmt.Fprintln(errOut, "     is_approved_for_all, token_manager_of, royalty_info, token_metadata,")
		fmt.Fprintln(errOut, "     minters, events")
		return 2
	}
	op := args[0]
	fs := flag.NewFlagSet("query "+op, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var c common
	c.register(fs, true)
	var params string
	fs.StringVar(&params, "params", "", "raw JSON query parameters")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	var raw json.RawMessage
	if params != "" {
		raw = json.RawMessage(params)
	}
	q := &model.Query{Op: op, Collection: c.collection, Params: raw}
	client, err := adminrpc.Dial(c.rpc, adminrpc.DialOptions{Timeout: c.timeout})
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer client.Close()
	resp, err := client.Query(q)
	if err != nil {
		fmt.Fprintf(errOut, "rpc: %v\n", err)
		return 1
	}
	return printResponse(out, errOut, resp)
}
