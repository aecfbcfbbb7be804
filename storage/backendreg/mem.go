package backendreg

import (
	"flag"

	"mintlock.io/mintlock/storage"
)

// The in-memory backend has no configuration and is always linked: it is the
// daemon default and the baseline for tests.
func init() {
	MustRegister(Backend{
		Name:        "mem",
		Description: "In-memory metadata store (contents lost on exit)",
		Usage:       UsageCLI | UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (storage.CAS, func() error, error) {
			return storage.NewMemory(), nil, nil
		},
	})
}
