// Command rpa is a robotic process automation toolkit for scripts and
// scheduled jobs.
package main

import (
	"os"

	"github.com/custodia-labs/rpa-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rpa-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/rpa-cli/internal/core/ports/driven"
)

// version is injected at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetConfigStoreOpener(func(dir string) (driven.ConfigStore, error) {
		return file.NewConfigStore(dir)
	})

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
