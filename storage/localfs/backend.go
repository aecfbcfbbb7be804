package localfs

import (
	"flag"
	"fmt"

	"mintlock.io/mintlock/storage"
	"mintlock.io/mintlock/storage/backendreg"
)

var flagLocalDir string

func init() {
	backendreg.MustRegister(backendreg.Backend{
		Name:        "localfs",
		Description: "Local filesystem metadata store (directory)",
		Usage:       backendreg.UsageCLI | backendreg.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "Metadata store directory (for --metadata-backend=localfs)")
		},
		Open: func() (storage.CAS, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			cas, err := New(flagLocalDir)
			return cas, nil, err
		},
	})
}
